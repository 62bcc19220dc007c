package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsquant/pkg/errors"
)

func TestParseDecision_Valid(t *testing.T) {
	d, err := ParseDecision(`{"symbol": "BTC/USDT", "action": "BUY", "amount_usdt": 1000, "reason": "ETF inflows accelerating"}`)
	require.NoError(t, err)

	assert.Equal(t, "BTC/USDT", d.Symbol)
	assert.Equal(t, ActionBuy, d.Action)
	assert.Equal(t, 1000.0, d.AmountUSDT)
	assert.Equal(t, "ETF inflows accelerating", d.Reason)
}

func TestParseDecision_HoldWithZeroAmount(t *testing.T) {
	d, err := ParseDecision(`{"symbol": "ETH/USDT", "action": "HOLD", "amount_usdt": 0, "reason": "mixed signals"}`)
	require.NoError(t, err)

	assert.Equal(t, ActionHold, d.Action)
	assert.Zero(t, d.AmountUSDT)
}

func TestParseDecision_SurroundingWhitespace(t *testing.T) {
	_, err := ParseDecision("\n  {\"symbol\": \"BTC/USDT\", \"action\": \"SELL\", \"amount_usdt\": 50, \"reason\": \"taking profit\"}  \n")
	assert.NoError(t, err)
}

func TestParseDecision_Rejections(t *testing.T) {
	cases := map[string]string{
		"empty":             "",
		"not json":          "I think you should buy bitcoin.",
		"json array":        `[{"symbol": "BTC/USDT"}]`,
		"missing reason":    `{"symbol": "BTC/USDT", "action": "BUY", "amount_usdt": 100}`,
		"extra field":       `{"symbol": "BTC/USDT", "action": "BUY", "amount_usdt": 100, "reason": "x", "confidence": 0.9}`,
		"unknown action":    `{"symbol": "BTC/USDT", "action": "SHORT", "amount_usdt": 100, "reason": "x"}`,
		"lowercase action":  `{"symbol": "BTC/USDT", "action": "buy", "amount_usdt": 100, "reason": "x"}`,
		"negative amount":   `{"symbol": "BTC/USDT", "action": "BUY", "amount_usdt": -5, "reason": "x"}`,
		"empty symbol":      `{"symbol": "", "action": "HOLD", "amount_usdt": 0, "reason": "x"}`,
		"amount as string":  `{"symbol": "BTC/USDT", "action": "BUY", "amount_usdt": "100", "reason": "x"}`,
		"trailing content":  `{"symbol": "BTC/USDT", "action": "HOLD", "amount_usdt": 0, "reason": "x"} trailing`,
		"prose around json": "Here is my decision:\n{\"symbol\": \"BTC/USDT\", \"action\": \"HOLD\", \"amount_usdt\": 0, \"reason\": \"x\"}",
	}

	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseDecision(input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrInvalidDecision), "expected ErrInvalidDecision, got %v", err)
		})
	}
}
