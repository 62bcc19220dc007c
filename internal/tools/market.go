package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"newsquant/internal/adapters/exchanges"
	"newsquant/pkg/errors"
)

// NewGetMarketQuote builds the live quote tool.
func NewGetMarketQuote(market exchanges.MarketData) Tool {
	return Tool{
		Name:        "get_market_quote",
		Description: "Get the current price and 24h percentage change for a trading pair.",
		Parameters: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"symbol": map[string]interface{}{
					"type":        "string",
					"description": "Trading pair in BASE/QUOTE form, e.g. 'BTC/USDT'.",
				},
			},
			"required": []string{"symbol"},
		},
		Handler: func(ctx context.Context, args json.RawMessage) (string, error) {
			var params struct {
				Symbol string `json:"symbol"`
			}
			if err := json.Unmarshal(args, &params); err != nil {
				return "", errors.Wrapf(errors.ErrToolArguments, "%v", err)
			}
			if params.Symbol == "" {
				return "", errors.Wrap(errors.ErrToolArguments, "symbol is required")
			}

			ticker, err := market.GetTicker(ctx, params.Symbol)
			if err != nil {
				return "", err
			}

			quote := exchanges.QuoteAsset(params.Symbol)
			if quote == "" {
				quote = "USDT"
			}

			return fmt.Sprintf("%s last price: %s %s, 24h change: %s%%",
				params.Symbol,
				ticker.LastPrice.StringFixed(2),
				quote,
				ticker.Change24hPct.StringFixed(2),
			), nil
		},
	}
}

// NewGetMarketCandles builds the historical candles tool.
func NewGetMarketCandles(market exchanges.MarketData) Tool {
	return Tool{
		Name:        "get_market_candles",
		Description: "Get recent OHLCV candles for a trading pair, oldest first.",
		Parameters: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"symbol": map[string]interface{}{
					"type":        "string",
					"description": "Trading pair in BASE/QUOTE form, e.g. 'BTC/USDT'.",
				},
				"interval": map[string]interface{}{
					"type":        "string",
					"description": "Candle interval, e.g. '15m', '1h', '4h', '1d'. Default '1h'.",
				},
				"count": map[string]interface{}{
					"type":        "integer",
					"description": "Number of candles to return, default 24.",
				},
			},
			"required": []string{"symbol"},
		},
		Handler: func(ctx context.Context, args json.RawMessage) (string, error) {
			var params struct {
				Symbol   string `json:"symbol"`
				Interval string `json:"interval"`
				Count    int    `json:"count"`
			}
			if err := json.Unmarshal(args, &params); err != nil {
				return "", errors.Wrapf(errors.ErrToolArguments, "%v", err)
			}
			if params.Symbol == "" {
				return "", errors.Wrap(errors.ErrToolArguments, "symbol is required")
			}
			if params.Interval == "" {
				params.Interval = "1h"
			}
			if params.Count <= 0 {
				params.Count = 24
			}

			candles, err := market.GetOHLCV(ctx, params.Symbol, params.Interval, params.Count)
			if err != nil {
				return "", err
			}
			if len(candles) == 0 {
				return fmt.Sprintf("No candle data available for %s at interval %s.", params.Symbol, params.Interval), nil
			}

			var b strings.Builder
			fmt.Fprintf(&b, "%s %s candles (oldest first):\n", params.Symbol, params.Interval)
			for _, c := range candles {
				fmt.Fprintf(&b, "%s O:%s H:%s L:%s C:%s V:%s\n",
					c.OpenTime.UTC().Format("2006-01-02 15:04"),
					c.Open.StringFixed(2), c.High.StringFixed(2),
					c.Low.StringFixed(2), c.Close.StringFixed(2),
					c.Volume.StringFixed(2),
				)
			}
			return strings.TrimRight(b.String(), "\n"), nil
		},
	}
}
