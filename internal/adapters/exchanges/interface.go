package exchanges

import "context"

// MarketData is the read-only exchange contract the assistant consumes.
// Every call is a fresh network query; nothing is cached between cycles.
type MarketData interface {
	Name() string

	// GetTicker returns 24hr rolling statistics for a trading pair.
	GetTicker(ctx context.Context, symbol string) (*Ticker, error)

	// GetOHLCV returns up to limit candles, oldest first.
	GetOHLCV(ctx context.Context, symbol string, timeframe string, limit int) ([]OHLCV, error)
}
