package model

import (
	"time"

	"github.com/google/uuid"
)

// TradeType distinguishes the two sides of an executed trade.
type TradeType string

const (
	TradeBuy  TradeType = "buy"
	TradeSell TradeType = "sell"
)

// Trade is an immutable record of one executed buy or sell. Trades are
// append-only and kept in execution order.
type Trade struct {
	TradeID     string    `json:"trade_id"`
	TradeType   TradeType `json:"trade_type"`
	StockCode   string    `json:"stock_code"`
	StockName   string    `json:"stock_name"`
	Shares      int64     `json:"shares"`
	Price       float64   `json:"price"`
	Amount      float64   `json:"amount"` // price * shares, before commission
	Commission  float64   `json:"commission"`
	TotalAmount float64   `json:"total_amount"` // cash moved: amount+commission on buy, amount-commission on sell
	CreatedAt   time.Time `json:"created_at"`
}

// NewTrade builds a trade record for an executed order.
func NewTrade(tradeType TradeType, code, name string, shares int64, price, amount, commission float64) Trade {
	total := amount + commission
	if tradeType == TradeSell {
		total = amount - commission
	}
	return Trade{
		TradeID:     uuid.NewString(),
		TradeType:   tradeType,
		StockCode:   code,
		StockName:   name,
		Shares:      shares,
		Price:       price,
		Amount:      amount,
		Commission:  commission,
		TotalAmount: total,
		CreatedAt:   time.Now(),
	}
}
