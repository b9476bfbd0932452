package model

// Position is an open holding in a single stock. At most one position
// exists per stock code; repeated buys fold into the weighted average cost
// and a full sell removes the position entirely.
type Position struct {
	StockCode    string  `json:"stock_code"`
	StockName    string  `json:"stock_name"`
	Shares       int64   `json:"shares"`
	CostPrice    float64 `json:"cost_price"`  // weighted average entry price
	CostAmount   float64 `json:"cost_amount"` // authoritative running cost basis
	CurrentPrice float64 `json:"current_price"`
	MarketValue  float64 `json:"market_value"`
	Profit       float64 `json:"profit"`
	ProfitRate   float64 `json:"profit_rate"` // percent of cost amount
}

// NewPosition opens a position from a first buy at the given price.
func NewPosition(code, name string, shares int64, price float64) *Position {
	p := &Position{
		StockCode:  code,
		StockName:  name,
		Shares:     shares,
		CostPrice:  price,
		CostAmount: price * float64(shares),
	}
	p.Reprice(price)
	return p
}

// Reprice marks the position to the given market price and refreshes the
// derived market value and profit fields.
func (p *Position) Reprice(price float64) {
	p.CurrentPrice = price
	p.MarketValue = float64(p.Shares) * price
	p.Profit = p.MarketValue - p.CostAmount
	if p.CostAmount > 0 {
		p.ProfitRate = p.Profit / p.CostAmount * 100
	} else {
		p.ProfitRate = 0
	}
}
