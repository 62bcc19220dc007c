package errors

import (
	"errors"
	"fmt"
)

// Domain error types for business logic

var (
	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput indicates invalid input parameters
	ErrInvalidInput = errors.New("invalid input")

	// ErrInternal indicates an internal error
	ErrInternal = errors.New("internal error")

	// ErrExternal indicates an upstream service failure
	ErrExternal = errors.New("external service error")

	// ErrTimeout indicates an operation timeout
	ErrTimeout = errors.New("operation timeout")
)

// Data availability errors. These are recovered locally: tool handlers turn
// them into textual results so the model can reason around missing data.

var (
	// ErrQuoteUnavailable indicates a market quote could not be fetched
	ErrQuoteUnavailable = errors.New("market quote unavailable")

	// ErrNewsUnavailable indicates the news store could not be queried
	ErrNewsUnavailable = errors.New("news store unavailable")
)

// Tool routing errors, recovered the same way.

var (
	// ErrUnknownTool indicates the model requested an unregistered tool
	ErrUnknownTool = errors.New("unknown tool")

	// ErrToolArguments indicates tool arguments failed to parse
	ErrToolArguments = errors.New("invalid tool arguments")
)

// Cycle-level errors. These abort the current symbol's cycle without
// touching the portfolio, and must not stop a multi-symbol batch.

var (
	// ErrInvalidDecision indicates the model's final answer did not match
	// the decision schema
	ErrInvalidDecision = errors.New("invalid decision format")

	// ErrInsufficientFunds indicates a BUY exceeding available cash
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInsufficientHoldings indicates a SELL with nothing held
	ErrInsufficientHoldings = errors.New("insufficient holdings")

	// ErrStorage indicates the portfolio backing medium failed
	ErrStorage = errors.New("portfolio storage unavailable")
)

// Helper functions

// Is checks if err is or wraps target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target type
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap wraps an error with context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

func New(message string) error {
	return errors.New(message)
}

func Newf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}
