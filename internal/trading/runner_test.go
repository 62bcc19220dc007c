package trading

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsquant/internal/agent"
	"newsquant/pkg/errors"
)

type scriptedDecider struct {
	decisions map[string]*agent.Decision
	errs      map[string]error
}

func (d *scriptedDecider) Decide(ctx context.Context, symbol string) (*agent.Decision, string, error) {
	if err, ok := d.errs[symbol]; ok {
		return nil, "model said something unparseable", err
	}
	return d.decisions[symbol], "raw", nil
}

func TestRun_OneOutcomePerSymbolInOrder(t *testing.T) {
	store := newTestStore(t)
	executor := NewExecutor(store, &fakeMarket{price: decimal.NewFromInt(50000)}, nil)
	decider := &scriptedDecider{
		decisions: map[string]*agent.Decision{
			"BTC/USDT": {Symbol: "BTC/USDT", Action: agent.ActionBuy, AmountUSDT: 1000, Reason: "a"},
			"ETH/USDT": {Symbol: "ETH/USDT", Action: agent.ActionHold, AmountUSDT: 0, Reason: "b"},
		},
	}
	runner := NewRunner(decider, executor, nil, []string{"BTC/USDT", "ETH/USDT"})

	outcomes := runner.Run(context.Background())
	require.Len(t, outcomes, 2)

	assert.Equal(t, "BTC/USDT", outcomes[0].Symbol)
	assert.NoError(t, outcomes[0].Err)
	assert.True(t, outcomes[0].Result.Executed)

	assert.Equal(t, "ETH/USDT", outcomes[1].Symbol)
	assert.NoError(t, outcomes[1].Err)
	assert.False(t, outcomes[1].Result.Executed)
}

func TestRun_FailedCycleDoesNotAbortBatch(t *testing.T) {
	store := newTestStore(t)
	executor := NewExecutor(store, &fakeMarket{price: decimal.NewFromInt(50000)}, nil)
	notifier := &recordingNotifier{}
	decider := &scriptedDecider{
		decisions: map[string]*agent.Decision{
			"SOL/USDT": {Symbol: "SOL/USDT", Action: agent.ActionBuy, AmountUSDT: 100, Reason: "c"},
		},
		errs: map[string]error{
			"BTC/USDT": errors.Wrap(errors.ErrInvalidDecision, "missing field"),
		},
	}
	runner := NewRunner(decider, executor, notifier, []string{"BTC/USDT", "SOL/USDT"})

	outcomes := runner.Run(context.Background())
	require.Len(t, outcomes, 2)

	require.Error(t, outcomes[0].Err)
	assert.True(t, errors.Is(outcomes[0].Err, errors.ErrInvalidDecision))
	assert.Equal(t, "model said something unparseable", outcomes[0].RawText)

	assert.NoError(t, outcomes[1].Err)
	assert.True(t, outcomes[1].Result.Executed)

	// The failure was surfaced to the notifier.
	found := false
	for _, msg := range notifier.messages {
		if strings.Contains(msg, "BTC/USDT") && strings.Contains(msg, "failed") {
			found = true
		}
	}
	assert.True(t, found, "expected a failure notification for BTC/USDT, got %v", notifier.messages)
}

func TestRun_ExecutionErrorRecordedWithDecision(t *testing.T) {
	store := newTestStore(t)
	executor := NewExecutor(store, &fakeMarket{price: decimal.NewFromInt(50000)}, nil)
	decider := &scriptedDecider{
		decisions: map[string]*agent.Decision{
			"BTC/USDT": {Symbol: "BTC/USDT", Action: agent.ActionSell, AmountUSDT: 100, Reason: "nothing held"},
		},
	}
	runner := NewRunner(decider, executor, nil, []string{"BTC/USDT"})

	outcomes := runner.Run(context.Background())
	require.Len(t, outcomes, 1)

	require.Error(t, outcomes[0].Err)
	assert.True(t, errors.Is(outcomes[0].Err, errors.ErrInsufficientHoldings))
	require.NotNil(t, outcomes[0].Decision)
	assert.Equal(t, agent.ActionSell, outcomes[0].Decision.Action)
}
