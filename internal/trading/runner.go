package trading

import (
	"context"
	"fmt"

	"newsquant/internal/agent"
	"newsquant/pkg/logger"
)

// Decider produces a trade decision for one trading pair.
type Decider interface {
	Decide(ctx context.Context, symbol string) (*agent.Decision, string, error)
}

// CycleOutcome records what happened for one symbol in a batch run.
type CycleOutcome struct {
	Symbol   string
	Decision *agent.Decision
	RawText  string
	Result   *Result
	Err      error
}

// Runner drives one decision-and-execution cycle per configured symbol,
// sequentially. A failed cycle is recorded and reported; it never aborts the
// rest of the batch.
type Runner struct {
	decider  Decider
	executor *Executor
	notifier Notifier
	symbols  []string
	log      *logger.Logger
}

// NewRunner creates a batch runner. notifier may be nil.
func NewRunner(decider Decider, executor *Executor, notifier Notifier, symbols []string) *Runner {
	return &Runner{
		decider:  decider,
		executor: executor,
		notifier: notifier,
		symbols:  symbols,
		log:      logger.Get().With("component", "batch_runner"),
	}
}

// Run processes every configured symbol and returns one outcome per symbol,
// in order. The returned slice always has len(symbols) entries.
func (r *Runner) Run(ctx context.Context) []CycleOutcome {
	outcomes := make([]CycleOutcome, 0, len(r.symbols))

	for _, symbol := range r.symbols {
		outcome := r.runCycle(ctx, symbol)
		if outcome.Err != nil {
			r.log.Errorw("cycle failed", "symbol", symbol, "error", outcome.Err)
			r.notify(ctx, fmt.Sprintf("Cycle for %s failed: %v", symbol, outcome.Err))
		}
		outcomes = append(outcomes, outcome)
	}

	return outcomes
}

func (r *Runner) runCycle(ctx context.Context, symbol string) CycleOutcome {
	outcome := CycleOutcome{Symbol: symbol}

	decision, raw, err := r.decider.Decide(ctx, symbol)
	outcome.RawText = raw
	if err != nil {
		outcome.Err = err
		return outcome
	}
	outcome.Decision = decision

	result, err := r.executor.Execute(ctx, decision)
	if err != nil {
		outcome.Err = err
		return outcome
	}
	outcome.Result = result

	return outcome
}

func (r *Runner) notify(ctx context.Context, text string) {
	if r.notifier == nil {
		return
	}
	r.notifier.Notify(ctx, text)
}
