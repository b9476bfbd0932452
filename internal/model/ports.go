package model

import "context"

// These interfaces decouple the ledger and strategy engine from concrete
// market data and storage implementations (EastMoney HTTP, Redis cache,
// SQLite). Calls block; callers bound them with context timeouts.

// MarketDataSource provides real-time quotes and historical bars.
type MarketDataSource interface {
	// Quote returns the current quote for a stock code.
	// A nil error implies a non-nil quote.
	Quote(ctx context.Context, code string) (*Quote, error)

	// History returns up to count historical bars for the given period
	// ("day", "week", "month"), ordered oldest to newest. May return an
	// empty slice when no history exists.
	History(ctx context.Context, code, period string, count int) ([]Bar, error)
}

// LedgerStore is the durable snapshot store for ledger state. Each save
// replaces the full snapshot of its record set.
type LedgerStore interface {
	// LoadAccount returns the stored account, or nil if none was saved yet.
	LoadAccount() (*Account, error)

	// SaveAccount replaces the stored account snapshot.
	SaveAccount(account *Account) error

	// LoadPositions returns all stored open positions.
	LoadPositions() ([]Position, error)

	// SavePositions replaces the stored position snapshot.
	SavePositions(positions []Position) error

	// LoadTrades returns all stored trades in execution order.
	LoadTrades() ([]Trade, error)

	// SaveTrades replaces the stored trade log.
	SaveTrades(trades []Trade) error

	// Close releases underlying resources.
	Close() error
}
