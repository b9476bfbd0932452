// Package ledger implements the single-account trading ledger: cash,
// open positions, and the append-only trade log.
//
// The ledger is process-wide mutable state. It is loaded from the store
// once at construction and flushed back in full after every mutating
// call. A mutex serializes mutation so concurrent buy/sell requests
// cannot race on the in-memory positions.
package ledger

import (
	"fmt"
	"log/slog"
	"sync"

	"papertrader/internal/model"
)

// Config carries the ledger's trading parameters.
type Config struct {
	InitialCapital float64
	CommissionRate float64
	MinCommission  float64
}

// Ledger owns the account, positions, and trade log.
type Ledger struct {
	mu  sync.RWMutex
	cfg Config

	store     model.LedgerStore
	account   *model.Account
	positions []model.Position
	trades    []model.Trade
}

// New loads ledger state from the store, creating a fresh account at the
// configured initial capital when none has been persisted yet.
func New(cfg Config, store model.LedgerStore) (*Ledger, error) {
	account, err := store.LoadAccount()
	if err != nil {
		return nil, fmt.Errorf("load account: %w", err)
	}
	if account == nil {
		account = model.NewAccount(cfg.InitialCapital)
	}
	positions, err := store.LoadPositions()
	if err != nil {
		return nil, fmt.Errorf("load positions: %w", err)
	}
	trades, err := store.LoadTrades()
	if err != nil {
		return nil, fmt.Errorf("load trades: %w", err)
	}

	slog.Info("ledger loaded",
		slog.Float64("available_cash", account.AvailableCash),
		slog.Int("positions", len(positions)),
		slog.Int("trades", len(trades)))

	return &Ledger{
		cfg:       cfg,
		store:     store,
		account:   account,
		positions: positions,
		trades:    trades,
	}, nil
}

// Commission computes the fee for a trade of the given notional amount:
// the rate applied to the amount, floored at the minimum commission.
func (l *Ledger) Commission(amount float64) float64 {
	commission := amount * l.cfg.CommissionRate
	if commission < l.cfg.MinCommission {
		return l.cfg.MinCommission
	}
	return commission
}

// Buy executes a buy order. The total cost (notional plus commission) is
// debited from cash; an existing position is folded into a new weighted
// average cost, otherwise a position is opened at the buy price.
func (l *Ledger) Buy(code, name string, price float64, shares int64) error {
	if price <= 0 || shares <= 0 {
		return ErrInvalidOrder
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	amount := price * float64(shares)
	commission := l.Commission(amount)
	totalCost := amount + commission

	if totalCost > l.account.AvailableCash {
		return ErrInsufficientFunds
	}

	l.account.AvailableCash -= totalCost

	if pos := l.findPosition(code); pos != nil {
		totalShares := pos.Shares + shares
		totalCostAmount := pos.CostAmount + amount
		pos.Shares = totalShares
		pos.CostPrice = totalCostAmount / float64(totalShares)
		pos.CostAmount = totalCostAmount
		pos.Reprice(price)
	} else {
		l.positions = append(l.positions, *model.NewPosition(code, name, shares, price))
	}

	trade := model.NewTrade(model.TradeBuy, code, name, shares, price, amount, commission)
	l.trades = append(l.trades, trade)

	l.account.Recompute(l.positions)
	if err := l.persist(); err != nil {
		return err
	}

	slog.Info("buy executed",
		slog.String("stock_code", code),
		slog.Int64("shares", shares),
		slog.Float64("price", price),
		slog.Float64("commission", commission))
	return nil
}

// Sell executes a sell order against an open position. The proceeds net
// of commission are credited to cash. Selling every share removes the
// position; a partial sell removes the sold shares' cost basis at the
// pre-sale average cost, not the sale price.
func (l *Ledger) Sell(code, name string, price float64, shares int64) error {
	if price <= 0 || shares <= 0 {
		return ErrInvalidOrder
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	pos := l.findPosition(code)
	if pos == nil {
		return ErrNoPosition
	}
	if shares > pos.Shares {
		return ErrInsufficientShares
	}

	amount := price * float64(shares)
	commission := l.Commission(amount)

	l.account.AvailableCash += amount - commission

	if shares == pos.Shares {
		l.removePosition(code)
	} else {
		pos.Shares -= shares
		pos.CostAmount -= pos.CostPrice * float64(shares)
		pos.Reprice(price)
	}

	trade := model.NewTrade(model.TradeSell, code, name, shares, price, amount, commission)
	l.trades = append(l.trades, trade)

	l.account.Recompute(l.positions)
	if err := l.persist(); err != nil {
		return err
	}

	slog.Info("sell executed",
		slog.String("stock_code", code),
		slog.Int64("shares", shares),
		slog.Float64("price", price),
		slog.Float64("commission", commission))
	return nil
}

// UpdatePrice reprices the open position in the given stock, if held.
// Positions in other stocks are untouched.
func (l *Ledger) UpdatePrice(code string, price float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if pos := l.findPosition(code); pos != nil {
		pos.Reprice(price)
	}
	l.account.Recompute(l.positions)
	return l.persist()
}

// UpdateAllPrices reprices every open position that has an entry in the
// price map. Codes without an entry keep their last price.
func (l *Ledger) UpdateAllPrices(prices map[string]float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i := range l.positions {
		if price, ok := prices[l.positions[i].StockCode]; ok {
			l.positions[i].Reprice(price)
		}
	}
	l.account.Recompute(l.positions)
	return l.persist()
}

// Reset replaces the account with a fresh one at the configured initial
// capital and clears all positions and trades.
func (l *Ledger) Reset() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.account = model.NewAccount(l.cfg.InitialCapital)
	l.positions = nil
	l.trades = nil

	slog.Info("ledger reset", slog.Float64("initial_capital", l.cfg.InitialCapital))
	return l.persist()
}

// Account returns a copy of the current account state.
func (l *Ledger) Account() model.Account {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return *l.account
}

// Positions returns a snapshot of all open positions.
func (l *Ledger) Positions() []model.Position {
	l.mu.RLock()
	defer l.mu.RUnlock()
	cp := make([]model.Position, len(l.positions))
	copy(cp, l.positions)
	return cp
}

// Trades returns a snapshot of the trade log in execution order.
func (l *Ledger) Trades() []model.Trade {
	l.mu.RLock()
	defer l.mu.RUnlock()
	cp := make([]model.Trade, len(l.trades))
	copy(cp, l.trades)
	return cp
}

// findPosition returns a pointer into the positions slice, or nil.
// Callers must hold the mutex.
func (l *Ledger) findPosition(code string) *model.Position {
	for i := range l.positions {
		if l.positions[i].StockCode == code {
			return &l.positions[i]
		}
	}
	return nil
}

func (l *Ledger) removePosition(code string) {
	for i := range l.positions {
		if l.positions[i].StockCode == code {
			l.positions = append(l.positions[:i], l.positions[i+1:]...)
			return
		}
	}
}

// persist writes the full ledger snapshot through the store.
// Callers must hold the mutex.
func (l *Ledger) persist() error {
	if err := l.store.SaveAccount(l.account); err != nil {
		return fmt.Errorf("save account: %w", err)
	}
	if err := l.store.SavePositions(l.positions); err != nil {
		return fmt.Errorf("save positions: %w", err)
	}
	if err := l.store.SaveTrades(l.trades); err != nil {
		return fmt.Errorf("save trades: %w", err)
	}
	return nil
}
