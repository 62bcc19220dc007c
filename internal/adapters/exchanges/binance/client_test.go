package binance

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsquant/pkg/errors"
)

func TestGetTicker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v3/ticker/24hr", r.URL.Path)
		require.Equal(t, "BTCUSDT", r.URL.Query().Get("symbol"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"symbol": "BTCUSDT",
			"lastPrice": "50000.00",
			"bidPrice": "49999.50",
			"askPrice": "50000.50",
			"highPrice": "51000.00",
			"lowPrice": "48000.00",
			"priceChangePercent": "2.31",
			"closeTime": 1700000000000
		}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})

	ticker, err := c.GetTicker(context.Background(), "BTC/USDT")
	require.NoError(t, err)
	assert.Equal(t, "BTCUSDT", ticker.Symbol)
	assert.Equal(t, "50000", ticker.LastPrice.String())
	assert.Equal(t, "2.31", ticker.Change24hPct.String())
}

func TestGetTicker_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code": -1121, "msg": "Invalid symbol."}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})

	_, err := c.GetTicker(context.Background(), "NOPE/USDT")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrQuoteUnavailable))
	assert.Contains(t, err.Error(), "Invalid symbol")
}

func TestGetOHLCV(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v3/klines", r.URL.Path)
		require.Equal(t, "1h", r.URL.Query().Get("interval"))
		require.Equal(t, "2", r.URL.Query().Get("limit"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			[1699996400000, "49000.0", "49500.0", "48800.0", "49400.0", "120.5", 1699999999999],
			[1700000000000, "49400.0", "50100.0", "49300.0", "50000.0", "98.2", 1700003599999]
		]`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})

	candles, err := c.GetOHLCV(context.Background(), "BTC/USDT", "1h", 2)
	require.NoError(t, err)
	require.Len(t, candles, 2)

	// Oldest first
	assert.True(t, candles[0].OpenTime.Before(candles[1].OpenTime))
	assert.Equal(t, "49400", candles[0].Close.String())
	assert.Equal(t, "50000", candles[1].Close.String())
}
