// Package model defines the core domain types shared across the paper
// trading system: the account, open positions, executed trades, and the
// market data shapes returned by the quote provider.
//
// Money is kept as float64 yuan throughout. The account and position
// aggregates are always derived from cash and open positions; they are
// recomputed after every mutation and never patched incrementally.
package model

import "time"

// Account is the single simulated trading account.
type Account struct {
	InitialCapital float64   `json:"initial_capital"`
	AvailableCash  float64   `json:"available_cash"`
	TotalAssets    float64   `json:"total_assets"`
	TotalProfit    float64   `json:"total_profit"`
	ProfitRate     float64   `json:"profit_rate"` // percent of initial capital
	CreatedAt      time.Time `json:"created_at"`
}

// NewAccount creates a fresh account holding only cash.
func NewAccount(initialCapital float64) *Account {
	return &Account{
		InitialCapital: initialCapital,
		AvailableCash:  initialCapital,
		TotalAssets:    initialCapital,
		CreatedAt:      time.Now(),
	}
}

// Recompute derives total assets, profit, and profit rate from available
// cash plus the market value of all open positions.
func (a *Account) Recompute(positions []Position) {
	marketValue := 0.0
	for i := range positions {
		marketValue += positions[i].MarketValue
	}
	a.TotalAssets = a.AvailableCash + marketValue
	a.TotalProfit = a.TotalAssets - a.InitialCapital
	a.ProfitRate = a.TotalProfit / a.InitialCapital * 100
}
