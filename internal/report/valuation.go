package report

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"newsquant/internal/adapters/exchanges"
	"newsquant/internal/portfolio"
	"newsquant/pkg/logger"
)

// Position is one held asset marked to the live market.
type Position struct {
	Asset    string
	Quantity float64
	Price    float64
	Value    float64
	Priced   bool // false when the live quote could not be fetched
}

// Valuation is a point-in-time snapshot of the paper portfolio marked to
// market, with profit measured against the starting endowment.
type Valuation struct {
	Cash        float64
	InitialCash float64
	Positions   []Position
	TotalValue  float64 // cash plus every priced position
	PnL         float64
	PnLPct      float64
	Partial     bool // at least one position could not be priced
}

// Builder assembles valuations from the portfolio store and live quotes.
type Builder struct {
	store  *portfolio.Store
	market exchanges.MarketData
	log    *logger.Logger
}

// NewBuilder creates a valuation builder.
func NewBuilder(store *portfolio.Store, market exchanges.MarketData) *Builder {
	return &Builder{
		store:  store,
		market: market,
		log:    logger.Get().With("component", "valuation"),
	}
}

// Build loads the portfolio and prices every non-zero holding at the live
// ticker. A failed quote marks that position unpriced and the valuation
// partial instead of failing the whole report.
func (b *Builder) Build(ctx context.Context) (*Valuation, error) {
	p, err := b.store.Load()
	if err != nil {
		return nil, err
	}

	v := &Valuation{
		Cash:        p.Cash,
		InitialCash: b.store.InitialCash(),
	}
	total := decimal.NewFromFloat(p.Cash)

	assets := make([]string, 0, len(p.Holdings))
	for asset, qty := range p.Holdings {
		if qty > 0 {
			assets = append(assets, asset)
		}
	}
	sort.Strings(assets)

	for _, asset := range assets {
		qty := p.Holding(asset)
		pos := Position{Asset: asset, Quantity: qty}

		ticker, err := b.market.GetTicker(ctx, asset+"/USDT")
		if err != nil {
			b.log.Warnw("could not price holding", "asset", asset, "error", err)
			v.Partial = true
			v.Positions = append(v.Positions, pos)
			continue
		}

		value := ticker.LastPrice.Mul(decimal.NewFromFloat(qty))
		pos.Price = ticker.LastPrice.InexactFloat64()
		pos.Value = value.InexactFloat64()
		pos.Priced = true
		total = total.Add(value)

		v.Positions = append(v.Positions, pos)
	}

	v.TotalValue = total.InexactFloat64()
	v.PnL = total.Sub(decimal.NewFromFloat(v.InitialCash)).InexactFloat64()
	if v.InitialCash > 0 {
		v.PnLPct = v.PnL / v.InitialCash * 100
	}

	return v, nil
}

// Render formats the valuation as a plain-text report.
func (v *Valuation) Render() string {
	var b strings.Builder

	b.WriteString("Paper portfolio valuation\n")
	fmt.Fprintf(&b, "  Cash: %s USDT\n", humanize.CommafWithDigits(v.Cash, 2))

	for _, pos := range v.Positions {
		if !pos.Priced {
			fmt.Fprintf(&b, "  %s: %.8f @ N/A (quote unavailable)\n", pos.Asset, pos.Quantity)
			continue
		}
		fmt.Fprintf(&b, "  %s: %.8f @ %s = %s USDT\n",
			pos.Asset, pos.Quantity,
			humanize.CommafWithDigits(pos.Price, 2),
			humanize.CommafWithDigits(pos.Value, 2),
		)
	}

	fmt.Fprintf(&b, "  Total: %s USDT", humanize.CommafWithDigits(v.TotalValue, 2))
	if v.Partial {
		b.WriteString(" (partial, some holdings unpriced)")
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "  PnL vs %s starting cash: %+.2f USDT (%+.2f%%)\n",
		humanize.CommafWithDigits(v.InitialCash, 2), v.PnL, v.PnLPct)

	return strings.TrimRight(b.String(), "\n")
}
