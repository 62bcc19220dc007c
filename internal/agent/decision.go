package agent

import (
	"encoding/json"
	"strings"

	"newsquant/pkg/errors"
)

// Action is a decision verb.
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
	ActionHold Action = "HOLD"
)

// Decision is the structured trade instruction produced by the model in
// execution mode. The wire contract is exactly these four fields; extra or
// missing fields are a format error.
type Decision struct {
	Symbol     string  `json:"symbol"`
	Action     Action  `json:"action"`
	AmountUSDT float64 `json:"amount_usdt"`
	Reason     string  `json:"reason"`
}

var decisionFields = []string{"symbol", "action", "amount_usdt", "reason"}

// ParseDecision validates the model's final answer against the decision
// schema. The raw text is preserved by callers for diagnostics; parsing
// never touches the portfolio.
func ParseDecision(text string) (*Decision, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, errors.Wrap(errors.ErrInvalidDecision, "empty answer")
	}

	var raw map[string]json.RawMessage
	dec := json.NewDecoder(strings.NewReader(trimmed))
	if err := dec.Decode(&raw); err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidDecision, "not a JSON object: %v", err)
	}
	if dec.More() {
		return nil, errors.Wrap(errors.ErrInvalidDecision, "trailing content after JSON object")
	}

	for _, field := range decisionFields {
		if _, ok := raw[field]; !ok {
			return nil, errors.Wrapf(errors.ErrInvalidDecision, "missing field %q", field)
		}
	}
	if len(raw) != len(decisionFields) {
		for key := range raw {
			if !isDecisionField(key) {
				return nil, errors.Wrapf(errors.ErrInvalidDecision, "unexpected field %q", key)
			}
		}
	}

	var d Decision
	strict := json.NewDecoder(strings.NewReader(trimmed))
	strict.DisallowUnknownFields()
	if err := strict.Decode(&d); err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidDecision, "%v", err)
	}

	if err := d.Validate(); err != nil {
		return nil, err
	}

	return &d, nil
}

// Validate checks field-level constraints.
func (d *Decision) Validate() error {
	if d.Symbol == "" {
		return errors.Wrap(errors.ErrInvalidDecision, "symbol is empty")
	}

	switch d.Action {
	case ActionBuy, ActionSell, ActionHold:
	default:
		return errors.Wrapf(errors.ErrInvalidDecision, "action %q is not one of BUY, SELL, HOLD", d.Action)
	}

	if d.AmountUSDT < 0 {
		return errors.Wrapf(errors.ErrInvalidDecision, "amount_usdt %v is negative", d.AmountUSDT)
	}

	return nil
}

func isDecisionField(name string) bool {
	for _, field := range decisionFields {
		if name == field {
			return true
		}
	}
	return false
}
