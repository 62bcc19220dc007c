package exchanges

import "errors"

var (
	// ErrInvalidRequest indicates validation failures before hitting the exchange API.
	ErrInvalidRequest = errors.New("invalid exchange request")

	// ErrRateLimited indicates HTTP 429 or throttling.
	ErrRateLimited = errors.New("exchange rate limited the request")
)
