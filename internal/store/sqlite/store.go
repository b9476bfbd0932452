// Package sqlite persists the ledger snapshot (account, positions,
// trades) in a SQLite database.
package sqlite

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"papertrader/internal/model"

	_ "github.com/mattn/go-sqlite3"
)

// Store is a single-writer SQLite implementation of model.LedgerStore.
// Each save replaces the full snapshot of its record set in one
// transaction, so a crash never leaves a half-written snapshot.
type Store struct {
	db      *sql.DB
	saveDur func(time.Duration) // optional persist-latency observer
}

// DB returns the underlying sql.DB for health checks.
func (s *Store) DB() *sql.DB { return s.db }

// New opens (or creates) the ledger database with WAL mode and schema.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}

	// Single writer: the ledger serializes mutation anyway
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}

	log.Printf("[sqlite] opened ledger database at %s", dbPath)
	return &Store{db: db}, nil
}

// WithSaveObserver installs an observer called with the duration of every
// snapshot save. Used for Prometheus persist-latency metrics.
func (s *Store) WithSaveObserver(obs func(time.Duration)) *Store {
	s.saveDur = obs
	return s
}

func createSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS account (
			id              INTEGER PRIMARY KEY CHECK (id = 1),
			initial_capital REAL NOT NULL,
			available_cash  REAL NOT NULL,
			total_assets    REAL NOT NULL,
			total_profit    REAL NOT NULL,
			profit_rate     REAL NOT NULL,
			created_at      TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS positions (
			stock_code    TEXT PRIMARY KEY,
			stock_name    TEXT NOT NULL,
			shares        INTEGER NOT NULL,
			cost_price    REAL NOT NULL,
			cost_amount   REAL NOT NULL,
			current_price REAL NOT NULL,
			market_value  REAL NOT NULL,
			profit        REAL NOT NULL,
			profit_rate   REAL NOT NULL
		);

		CREATE TABLE IF NOT EXISTS trades (
			seq          INTEGER PRIMARY KEY AUTOINCREMENT,
			trade_id     TEXT NOT NULL,
			trade_type   TEXT NOT NULL,
			stock_code   TEXT NOT NULL,
			stock_name   TEXT NOT NULL,
			shares       INTEGER NOT NULL,
			price        REAL NOT NULL,
			amount       REAL NOT NULL,
			commission   REAL NOT NULL,
			total_amount REAL NOT NULL,
			created_at   TEXT NOT NULL
		);
	`)
	return err
}

func (s *Store) observe(start time.Time) {
	if s.saveDur != nil {
		s.saveDur(time.Since(start))
	}
}

// LoadAccount returns the stored account, or nil if none was saved yet.
func (s *Store) LoadAccount() (*model.Account, error) {
	var a model.Account
	var createdAt string
	err := s.db.QueryRow(`
		SELECT initial_capital, available_cash, total_assets, total_profit, profit_rate, created_at
		FROM account WHERE id = 1
	`).Scan(&a.InitialCapital, &a.AvailableCash, &a.TotalAssets, &a.TotalProfit, &a.ProfitRate, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite load account: %w", err)
	}
	a.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("sqlite parse account created_at: %w", err)
	}
	return &a, nil
}

// SaveAccount replaces the stored account snapshot.
func (s *Store) SaveAccount(account *model.Account) error {
	defer s.observe(time.Now())
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO account (id, initial_capital, available_cash, total_assets, total_profit, profit_rate, created_at)
		VALUES (1, ?, ?, ?, ?, ?, ?)
	`, account.InitialCapital, account.AvailableCash, account.TotalAssets,
		account.TotalProfit, account.ProfitRate, account.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("sqlite save account: %w", err)
	}
	return nil
}

// LoadPositions returns all stored open positions.
func (s *Store) LoadPositions() ([]model.Position, error) {
	rows, err := s.db.Query(`
		SELECT stock_code, stock_name, shares, cost_price, cost_amount,
		       current_price, market_value, profit, profit_rate
		FROM positions ORDER BY stock_code
	`)
	if err != nil {
		return nil, fmt.Errorf("sqlite load positions: %w", err)
	}
	defer rows.Close()

	var positions []model.Position
	for rows.Next() {
		var p model.Position
		if err := rows.Scan(&p.StockCode, &p.StockName, &p.Shares, &p.CostPrice, &p.CostAmount,
			&p.CurrentPrice, &p.MarketValue, &p.Profit, &p.ProfitRate); err != nil {
			return nil, fmt.Errorf("sqlite scan position: %w", err)
		}
		positions = append(positions, p)
	}
	return positions, rows.Err()
}

// SavePositions replaces the stored position snapshot in one transaction.
func (s *Store) SavePositions(positions []model.Position) error {
	defer s.observe(time.Now())

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("sqlite begin: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM positions`); err != nil {
		tx.Rollback()
		return fmt.Errorf("sqlite clear positions: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO positions (stock_code, stock_name, shares, cost_price, cost_amount,
		                       current_price, market_value, profit, profit_rate)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("sqlite prepare positions: %w", err)
	}
	defer stmt.Close()

	for _, p := range positions {
		if _, err := stmt.Exec(p.StockCode, p.StockName, p.Shares, p.CostPrice, p.CostAmount,
			p.CurrentPrice, p.MarketValue, p.Profit, p.ProfitRate); err != nil {
			tx.Rollback()
			return fmt.Errorf("sqlite insert position: %w", err)
		}
	}
	return tx.Commit()
}

// LoadTrades returns all stored trades in execution order.
func (s *Store) LoadTrades() ([]model.Trade, error) {
	rows, err := s.db.Query(`
		SELECT trade_id, trade_type, stock_code, stock_name, shares,
		       price, amount, commission, total_amount, created_at
		FROM trades ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("sqlite load trades: %w", err)
	}
	defer rows.Close()

	var trades []model.Trade
	for rows.Next() {
		var t model.Trade
		var tradeType, createdAt string
		if err := rows.Scan(&t.TradeID, &tradeType, &t.StockCode, &t.StockName, &t.Shares,
			&t.Price, &t.Amount, &t.Commission, &t.TotalAmount, &createdAt); err != nil {
			return nil, fmt.Errorf("sqlite scan trade: %w", err)
		}
		t.TradeType = model.TradeType(tradeType)
		t.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("sqlite parse trade created_at: %w", err)
		}
		trades = append(trades, t)
	}
	return trades, rows.Err()
}

// SaveTrades replaces the stored trade log in one transaction.
func (s *Store) SaveTrades(trades []model.Trade) error {
	defer s.observe(time.Now())

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("sqlite begin: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM trades`); err != nil {
		tx.Rollback()
		return fmt.Errorf("sqlite clear trades: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO trades (trade_id, trade_type, stock_code, stock_name, shares,
		                    price, amount, commission, total_amount, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("sqlite prepare trades: %w", err)
	}
	defer stmt.Close()

	for _, t := range trades {
		if _, err := stmt.Exec(t.TradeID, string(t.TradeType), t.StockCode, t.StockName, t.Shares,
			t.Price, t.Amount, t.Commission, t.TotalAmount, t.CreatedAt.Format(time.RFC3339Nano)); err != nil {
			tx.Rollback()
			return fmt.Errorf("sqlite insert trade: %w", err)
		}
	}
	return tx.Commit()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
