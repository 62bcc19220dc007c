package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"newsquant/internal/adapters/exchanges"
	"newsquant/pkg/errors"
)

const (
	spotBaseURL        = "https://api.binance.com"
	defaultHTTPTimeout = 10 * time.Second
)

// Config configures the Binance market data client.
type Config struct {
	// BaseURL overrides the production endpoint, mainly for tests.
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// NewClient creates a new Binance spot market data adapter. Only public
// endpoints are used; no API key is required.
func NewClient(cfg Config) exchanges.MarketData {
	if cfg.BaseURL == "" {
		cfg.BaseURL = spotBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = defaultHTTPTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: httpClient,
	}
}

type client struct {
	baseURL    string
	httpClient *http.Client
}

func (c *client) Name() string {
	return "binance"
}

func (c *client) GetTicker(ctx context.Context, symbol string) (*exchanges.Ticker, error) {
	if symbol == "" {
		return nil, errors.Wrap(exchanges.ErrInvalidRequest, "symbol is required")
	}

	params := url.Values{"symbol": []string{normalizeSymbol(symbol)}}

	data, err := c.get(ctx, "/api/v3/ticker/24hr", params)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrQuoteUnavailable, "%s ticker: %v", symbol, err)
	}

	var res struct {
		Symbol             string `json:"symbol"`
		LastPrice          string `json:"lastPrice"`
		BidPrice           string `json:"bidPrice"`
		AskPrice           string `json:"askPrice"`
		HighPrice          string `json:"highPrice"`
		LowPrice           string `json:"lowPrice"`
		PriceChangePercent string `json:"priceChangePercent"`
		CloseTime          int64  `json:"closeTime"`
	}

	if err := json.Unmarshal(data, &res); err != nil {
		return nil, errors.Wrapf(errors.ErrQuoteUnavailable, "%s ticker decode: %v", symbol, err)
	}

	return &exchanges.Ticker{
		Symbol:       res.Symbol,
		LastPrice:    parseDecimal(res.LastPrice),
		BidPrice:     parseDecimal(res.BidPrice),
		AskPrice:     parseDecimal(res.AskPrice),
		High24h:      parseDecimal(res.HighPrice),
		Low24h:       parseDecimal(res.LowPrice),
		Change24hPct: parseDecimal(res.PriceChangePercent),
		Timestamp:    time.UnixMilli(res.CloseTime),
	}, nil
}

func (c *client) GetOHLCV(ctx context.Context, symbol string, timeframe string, limit int) ([]exchanges.OHLCV, error) {
	if symbol == "" {
		return nil, errors.Wrap(exchanges.ErrInvalidRequest, "symbol is required")
	}
	if limit <= 0 {
		limit = 100
	}

	params := url.Values{
		"symbol":   []string{normalizeSymbol(symbol)},
		"interval": []string{timeframe},
		"limit":    []string{strconv.Itoa(limit)},
	}

	data, err := c.get(ctx, "/api/v3/klines", params)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrQuoteUnavailable, "%s klines: %v", symbol, err)
	}

	var raw [][]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrapf(errors.ErrQuoteUnavailable, "%s klines decode: %v", symbol, err)
	}

	candles := make([]exchanges.OHLCV, 0, len(raw))
	for _, row := range raw {
		if len(row) < 7 {
			continue
		}
		candles = append(candles, exchanges.OHLCV{
			Symbol:    normalizeSymbol(symbol),
			Timeframe: timeframe,
			OpenTime:  time.UnixMilli(toInt64(row[0])),
			CloseTime: time.UnixMilli(toInt64(row[6])),
			Open:      parseDecimal(fmt.Sprint(row[1])),
			High:      parseDecimal(fmt.Sprint(row[2])),
			Low:       parseDecimal(fmt.Sprint(row[3])),
			Close:     parseDecimal(fmt.Sprint(row[4])),
			Volume:    parseDecimal(fmt.Sprint(row[5])),
		})
	}

	return candles, nil
}

func (c *client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	reqURL := c.baseURL + path
	if query := params.Encode(); query != "" {
		reqURL = reqURL + "?" + query
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		return nil, parseAPIError(resp.StatusCode, payload)
	}

	return payload, nil
}

func parseAPIError(status int, payload []byte) error {
	if status == http.StatusTooManyRequests {
		return exchanges.ErrRateLimited
	}

	var apiErr struct {
		Code int    `json:"code"`
		Msg  string `json:"msg"`
	}
	if err := json.Unmarshal(payload, &apiErr); err == nil && apiErr.Msg != "" {
		return fmt.Errorf("binance API error %d (code %d): %s", status, apiErr.Code, apiErr.Msg)
	}

	return fmt.Errorf("binance API error %d: %s", status, string(payload))
}

func parseDecimal(v string) decimal.Decimal {
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func toInt64(v interface{}) int64 {
	switch val := v.(type) {
	case float64:
		return int64(val)
	case int64:
		return val
	case json.Number:
		n, _ := val.Int64()
		return n
	}
	return 0
}

func normalizeSymbol(symbol string) string {
	symbol = strings.ReplaceAll(symbol, "/", "")
	return strings.ToUpper(strings.ReplaceAll(symbol, "-", ""))
}
