package trading

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsquant/internal/adapters/exchanges"
	"newsquant/internal/agent"
	"newsquant/internal/portfolio"
	"newsquant/pkg/errors"
)

type fakeMarket struct {
	price       decimal.Decimal
	err         error
	tickerCalls int
}

func (m *fakeMarket) Name() string { return "fake" }

func (m *fakeMarket) GetTicker(ctx context.Context, symbol string) (*exchanges.Ticker, error) {
	m.tickerCalls++
	if m.err != nil {
		return nil, m.err
	}
	return &exchanges.Ticker{Symbol: symbol, LastPrice: m.price}, nil
}

func (m *fakeMarket) GetOHLCV(ctx context.Context, symbol, timeframe string, limit int) ([]exchanges.OHLCV, error) {
	return nil, nil
}

type recordingNotifier struct {
	messages []string
}

func (n *recordingNotifier) Notify(ctx context.Context, text string) {
	n.messages = append(n.messages, text)
}

func newTestStore(t *testing.T) *portfolio.Store {
	t.Helper()
	return portfolio.NewStore(filepath.Join(t.TempDir(), "portfolio.json"), 10000)
}

func TestExecute_BuyDebitsCashAndCreditsHolding(t *testing.T) {
	store := newTestStore(t)
	market := &fakeMarket{price: decimal.NewFromInt(50000)}
	notifier := &recordingNotifier{}
	executor := NewExecutor(store, market, notifier)

	result, err := executor.Execute(context.Background(), &agent.Decision{
		Symbol: "BTC/USDT", Action: agent.ActionBuy, AmountUSDT: 1000, Reason: "test",
	})
	require.NoError(t, err)

	assert.True(t, result.Executed)
	assert.InDelta(t, 0.02, result.Quantity, 1e-12)

	p, err := store.Load()
	require.NoError(t, err)
	assert.InDelta(t, 9000, p.Cash, 1e-9)
	assert.InDelta(t, 0.02, p.Holding("BTC"), 1e-12)

	require.Len(t, notifier.messages, 1)
	assert.Contains(t, notifier.messages[0], "BUY BTC/USDT")
}

func TestExecute_BuyExceedingCashFailsWithoutMutation(t *testing.T) {
	store := newTestStore(t)
	executor := NewExecutor(store, &fakeMarket{price: decimal.NewFromInt(50000)}, nil)

	_, err := executor.Execute(context.Background(), &agent.Decision{
		Symbol: "BTC/USDT", Action: agent.ActionBuy, AmountUSDT: 10001, Reason: "overreach",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInsufficientFunds))

	p, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, 10000.0, p.Cash)
	assert.Zero(t, p.Holding("BTC"))
}

func TestExecute_SellClampsToHolding(t *testing.T) {
	store := newTestStore(t)
	market := &fakeMarket{price: decimal.NewFromInt(50000)}
	executor := NewExecutor(store, market, nil)

	_, err := executor.Execute(context.Background(), &agent.Decision{
		Symbol: "BTC/USDT", Action: agent.ActionBuy, AmountUSDT: 1000, Reason: "establish position",
	})
	require.NoError(t, err)

	// Price drops; selling "1000 USDT worth" now maps to 0.025 BTC but only
	// 0.02 is held. The fill clamps and proceeds come from the clamped size.
	market.price = decimal.NewFromInt(40000)

	result, err := executor.Execute(context.Background(), &agent.Decision{
		Symbol: "BTC/USDT", Action: agent.ActionSell, AmountUSDT: 1000, Reason: "exit",
	})
	require.NoError(t, err)

	assert.True(t, result.Clamped)
	assert.InDelta(t, 0.02, result.Quantity, 1e-12)

	p, err := store.Load()
	require.NoError(t, err)
	assert.InDelta(t, 9800, p.Cash, 1e-9) // 9000 + 0.02*40000
	assert.Zero(t, p.Holding("BTC"))
}

func TestExecute_SellWithinHoldingIsNotClamped(t *testing.T) {
	store := newTestStore(t)
	market := &fakeMarket{price: decimal.NewFromInt(50000)}
	executor := NewExecutor(store, market, nil)

	_, err := executor.Execute(context.Background(), &agent.Decision{
		Symbol: "BTC/USDT", Action: agent.ActionBuy, AmountUSDT: 1000, Reason: "establish position",
	})
	require.NoError(t, err)

	result, err := executor.Execute(context.Background(), &agent.Decision{
		Symbol: "BTC/USDT", Action: agent.ActionSell, AmountUSDT: 500, Reason: "trim",
	})
	require.NoError(t, err)

	assert.False(t, result.Clamped)
	assert.InDelta(t, 0.01, result.Quantity, 1e-12)

	p, err := store.Load()
	require.NoError(t, err)
	assert.InDelta(t, 9500, p.Cash, 1e-9)
	assert.InDelta(t, 0.01, p.Holding("BTC"), 1e-12)
}

func TestExecute_SellWithNothingHeldFails(t *testing.T) {
	store := newTestStore(t)
	executor := NewExecutor(store, &fakeMarket{price: decimal.NewFromInt(50000)}, nil)

	_, err := executor.Execute(context.Background(), &agent.Decision{
		Symbol: "ETH/USDT", Action: agent.ActionSell, AmountUSDT: 100, Reason: "nothing to sell",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInsufficientHoldings))
}

func TestExecute_HoldIsANoOp(t *testing.T) {
	store := newTestStore(t)
	market := &fakeMarket{price: decimal.NewFromInt(50000)}
	notifier := &recordingNotifier{}
	executor := NewExecutor(store, market, notifier)

	result, err := executor.Execute(context.Background(), &agent.Decision{
		Symbol: "BTC/USDT", Action: agent.ActionHold, AmountUSDT: 0, Reason: "wait and see",
	})
	require.NoError(t, err)

	assert.False(t, result.Executed)
	assert.Zero(t, market.tickerCalls, "HOLD must not fetch a price")
	require.Len(t, notifier.messages, 1)
	assert.Contains(t, notifier.messages[0], "HOLD")
}

func TestExecute_ZeroAmountBuyIsANoOp(t *testing.T) {
	store := newTestStore(t)
	market := &fakeMarket{price: decimal.NewFromInt(50000)}
	executor := NewExecutor(store, market, nil)

	result, err := executor.Execute(context.Background(), &agent.Decision{
		Symbol: "BTC/USDT", Action: agent.ActionBuy, AmountUSDT: 0, Reason: "no conviction",
	})
	require.NoError(t, err)
	assert.False(t, result.Executed)
	assert.Zero(t, market.tickerCalls)
}

func TestExecute_QuoteFailureLeavesPortfolioUntouched(t *testing.T) {
	store := newTestStore(t)
	market := &fakeMarket{err: errors.Wrap(errors.ErrQuoteUnavailable, "venue down")}
	executor := NewExecutor(store, market, nil)

	_, err := executor.Execute(context.Background(), &agent.Decision{
		Symbol: "BTC/USDT", Action: agent.ActionBuy, AmountUSDT: 100, Reason: "test",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrQuoteUnavailable))

	p, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, 10000.0, p.Cash)
}

func TestExecute_PriceRefetchedPerExecution(t *testing.T) {
	store := newTestStore(t)
	market := &fakeMarket{price: decimal.NewFromInt(50000)}
	executor := NewExecutor(store, market, nil)

	_, err := executor.Execute(context.Background(), &agent.Decision{
		Symbol: "BTC/USDT", Action: agent.ActionBuy, AmountUSDT: 500, Reason: "first",
	})
	require.NoError(t, err)

	market.price = decimal.NewFromInt(100000)

	result, err := executor.Execute(context.Background(), &agent.Decision{
		Symbol: "BTC/USDT", Action: agent.ActionBuy, AmountUSDT: 500, Reason: "second",
	})
	require.NoError(t, err)

	assert.Equal(t, 2, market.tickerCalls)
	assert.InDelta(t, 0.005, result.Quantity, 1e-12)
}

func TestExecute_InvalidDecisionRejected(t *testing.T) {
	store := newTestStore(t)
	executor := NewExecutor(store, &fakeMarket{price: decimal.NewFromInt(50000)}, nil)

	_, err := executor.Execute(context.Background(), &agent.Decision{
		Symbol: "BTC/USDT", Action: "SHORT", AmountUSDT: 100, Reason: "bad verb",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidDecision))
}
