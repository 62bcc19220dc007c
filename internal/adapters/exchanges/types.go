package exchanges

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Ticker holds 24hr rolling statistics for a trading pair.
type Ticker struct {
	Symbol       string
	LastPrice    decimal.Decimal
	BidPrice     decimal.Decimal
	AskPrice     decimal.Decimal
	High24h      decimal.Decimal
	Low24h       decimal.Decimal
	Change24hPct decimal.Decimal
	Timestamp    time.Time
}

// OHLCV is a single candle.
type OHLCV struct {
	Symbol    string
	Timeframe string
	OpenTime  time.Time
	CloseTime time.Time
	Open      decimal.Decimal
	High      decimal.Decimal
	Low       decimal.Decimal
	Close     decimal.Decimal
	Volume    decimal.Decimal
}

// BaseAsset extracts the base asset from a BASE/QUOTE pair ("BTC/USDT" -> "BTC").
func BaseAsset(symbol string) string {
	if i := strings.IndexAny(symbol, "/-"); i > 0 {
		return strings.ToUpper(symbol[:i])
	}
	return strings.ToUpper(symbol)
}

// QuoteAsset extracts the quote currency from a BASE/QUOTE pair.
func QuoteAsset(symbol string) string {
	if i := strings.IndexAny(symbol, "/-"); i >= 0 && i < len(symbol)-1 {
		return strings.ToUpper(symbol[i+1:])
	}
	return ""
}
