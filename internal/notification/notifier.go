// Package notification delivers trade and system alerts to external
// channels (webhooks, Telegram). Delivery is best effort: a failed alert
// is logged and dropped, it never blocks or fails the trade itself.
package notification

import (
	"context"
	"fmt"
	"log/slog"

	"papertrader/internal/model"
)

// AlertLevel represents the severity of an alert.
type AlertLevel string

const (
	AlertInfo     AlertLevel = "INFO"
	AlertWarning  AlertLevel = "WARNING"
	AlertCritical AlertLevel = "CRITICAL"
)

// Alert represents a notification to be sent.
type Alert struct {
	Level   AlertLevel     `json:"level"`
	Title   string         `json:"title"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

// Notifier is the interface for all notification backends.
type Notifier interface {
	// Send delivers an alert. Returns error if delivery fails.
	Send(ctx context.Context, alert Alert) error
}

// TradeExecuted builds the alert for a filled order.
func TradeExecuted(trade model.Trade) Alert {
	verb := "Bought"
	if trade.TradeType == model.TradeSell {
		verb = "Sold"
	}
	return Alert{
		Level: AlertInfo,
		Title: fmt.Sprintf("%s %s (%s)", verb, trade.StockName, trade.StockCode),
		Message: fmt.Sprintf("%d shares at %.2f, commission %.2f, total %.2f",
			trade.Shares, trade.Price, trade.Commission, trade.TotalAmount),
		Data: map[string]any{
			"trade_id":     trade.TradeID,
			"trade_type":   string(trade.TradeType),
			"stock_code":   trade.StockCode,
			"shares":       trade.Shares,
			"price":        trade.Price,
			"total_amount": trade.TotalAmount,
		},
	}
}

// LogNotifier writes alerts to the structured log. Used when no external
// channel is configured.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier { return &LogNotifier{} }

func (n *LogNotifier) Send(ctx context.Context, alert Alert) error {
	slog.Info("[notify] "+alert.Title,
		"level", string(alert.Level), "message", alert.Message)
	return nil
}
