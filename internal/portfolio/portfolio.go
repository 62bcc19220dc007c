package portfolio

// Portfolio is the virtual paper-trading ledger: quote-currency cash plus
// per-asset holdings. The JSON shape matches the persisted file contract:
//
//	{ "USDT": 10000.0, "holdings": { "BTC": 0.02 } }
//
// Invariants after any committed operation: cash >= 0 and every holding
// quantity >= 0.
type Portfolio struct {
	Cash     float64            `json:"USDT"`
	Holdings map[string]float64 `json:"holdings"`
}

// New creates a portfolio with the given cash endowment and no holdings.
func New(cash float64) *Portfolio {
	return &Portfolio{
		Cash:     cash,
		Holdings: make(map[string]float64),
	}
}

// Holding returns the quantity held for an asset, zero if absent.
func (p *Portfolio) Holding(asset string) float64 {
	if p.Holdings == nil {
		return 0
	}
	return p.Holdings[asset]
}

// SetHolding stores a quantity for an asset, allocating the map if needed.
func (p *Portfolio) SetHolding(asset string, quantity float64) {
	if p.Holdings == nil {
		p.Holdings = make(map[string]float64)
	}
	p.Holdings[asset] = quantity
}
