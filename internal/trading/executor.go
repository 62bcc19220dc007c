package trading

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"newsquant/internal/adapters/exchanges"
	"newsquant/internal/agent"
	"newsquant/internal/portfolio"
	"newsquant/pkg/errors"
	"newsquant/pkg/logger"
)

// Notifier receives human-readable trade reports. Delivery is best effort;
// implementations must not fail the trade.
type Notifier interface {
	Notify(ctx context.Context, text string)
}

// Result summarizes the outcome of applying one decision.
type Result struct {
	Decision *agent.Decision
	Executed bool    // a trade mutated the portfolio
	Quantity float64 // base asset units traded
	Price    float64 // execution price in USDT
	Clamped  bool    // SELL size was reduced to the available holding
	Message  string
}

// Executor applies validated decisions to the paper portfolio at live market
// prices. The price is always re-fetched at execution time; the model may
// have quoted a price during deliberation, but fills never reuse it.
//
// The mutex covers the whole load-mutate-save cycle so concurrent callers
// cannot interleave on the same portfolio file.
type Executor struct {
	store    *portfolio.Store
	market   exchanges.MarketData
	notifier Notifier
	mu       sync.Mutex
	log      *logger.Logger
}

// NewExecutor creates an executor. notifier may be nil.
func NewExecutor(store *portfolio.Store, market exchanges.MarketData, notifier Notifier) *Executor {
	return &Executor{
		store:    store,
		market:   market,
		notifier: notifier,
		log:      logger.Get().With("component", "trade_executor"),
	}
}

// Execute applies one decision. HOLD and zero-amount decisions are no-ops
// that never touch storage. BUY and SELL load the portfolio, check funds or
// holdings, mutate and persist before reporting.
func (e *Executor) Execute(ctx context.Context, d *agent.Decision) (*Result, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	if d.Action == agent.ActionHold || d.AmountUSDT == 0 {
		result := &Result{
			Decision: d,
			Message:  fmt.Sprintf("HOLD %s: %s", d.Symbol, d.Reason),
		}
		e.notify(ctx, result.Message)
		return result, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	ticker, err := e.market.GetTicker(ctx, d.Symbol)
	if err != nil {
		return nil, err
	}
	price := ticker.LastPrice
	if price.Sign() <= 0 {
		return nil, errors.Wrapf(errors.ErrQuoteUnavailable, "non-positive price %s for %s", price, d.Symbol)
	}

	p, err := e.store.Load()
	if err != nil {
		return nil, err
	}

	var result *Result
	switch d.Action {
	case agent.ActionBuy:
		result, err = e.buy(p, d, price)
	case agent.ActionSell:
		result, err = e.sell(p, d, price)
	}
	if err != nil {
		return nil, err
	}

	if err := e.store.Save(p); err != nil {
		return nil, err
	}

	e.log.Infow("trade executed",
		"symbol", d.Symbol,
		"action", d.Action,
		"quantity", result.Quantity,
		"price", result.Price,
		"clamped", result.Clamped,
		"cash_after", p.Cash,
	)
	e.notify(ctx, result.Message)

	return result, nil
}

func (e *Executor) buy(p *portfolio.Portfolio, d *agent.Decision, price decimal.Decimal) (*Result, error) {
	amount := decimal.NewFromFloat(d.AmountUSDT)
	cash := decimal.NewFromFloat(p.Cash)

	if amount.GreaterThan(cash) {
		return nil, errors.Wrapf(errors.ErrInsufficientFunds,
			"BUY %s for %s USDT with only %s USDT cash", d.Symbol, amount, cash)
	}

	base := exchanges.BaseAsset(d.Symbol)
	qty := amount.Div(price)
	held := decimal.NewFromFloat(p.Holding(base))

	p.Cash = cash.Sub(amount).InexactFloat64()
	p.SetHolding(base, held.Add(qty).InexactFloat64())

	return &Result{
		Decision: d,
		Executed: true,
		Quantity: qty.InexactFloat64(),
		Price:    price.InexactFloat64(),
		Message: fmt.Sprintf("BUY %s: spent %s USDT for %s %s at %s. Reason: %s",
			d.Symbol, amount.StringFixed(2), qty.String(), base, price.StringFixed(2), d.Reason),
	}, nil
}

func (e *Executor) sell(p *portfolio.Portfolio, d *agent.Decision, price decimal.Decimal) (*Result, error) {
	base := exchanges.BaseAsset(d.Symbol)
	held := decimal.NewFromFloat(p.Holding(base))

	if held.Sign() <= 0 {
		return nil, errors.Wrapf(errors.ErrInsufficientHoldings,
			"SELL %s with no %s held", d.Symbol, base)
	}

	// The requested USDT amount is converted to a quantity at the live
	// price, then clamped to the actual holding. Prices move between the
	// model's deliberation and execution, so an honest "sell everything"
	// request can overshoot slightly; clamping fills what exists instead
	// of failing the trade.
	qty := decimal.NewFromFloat(d.AmountUSDT).Div(price)
	clamped := false
	if qty.GreaterThan(held) {
		qty = held
		clamped = true
	}

	proceeds := qty.Mul(price)
	remaining := held.Sub(qty)

	p.Cash = decimal.NewFromFloat(p.Cash).Add(proceeds).InexactFloat64()
	p.SetHolding(base, remaining.InexactFloat64())

	msg := fmt.Sprintf("SELL %s: sold %s %s for %s USDT at %s. Reason: %s",
		d.Symbol, qty.String(), base, proceeds.StringFixed(2), price.StringFixed(2), d.Reason)
	if clamped {
		msg = fmt.Sprintf("%s (request exceeded holding, sold entire %s position)", msg, base)
	}

	return &Result{
		Decision: d,
		Executed: true,
		Quantity: qty.InexactFloat64(),
		Price:    price.InexactFloat64(),
		Clamped:  clamped,
		Message:  msg,
	}, nil
}

func (e *Executor) notify(ctx context.Context, text string) {
	if e.notifier == nil {
		return
	}
	e.notifier.Notify(ctx, text)
}
