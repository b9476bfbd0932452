// Package strategy provides the signal engine: six technical analyzers
// that map a real-time quote plus historical closes to a buy/sell/hold
// signal with a human-readable reason and a step-by-step calculation trace.
//
// Analyzers are pure functions of their inputs. They never fail: short or
// missing history degrades to documented fallbacks instead of errors.
package strategy

import (
	"fmt"
	"math"

	"papertrader/internal/model"
)

// Signal is a trading recommendation.
type Signal string

const (
	SignalBuy  Signal = "buy"
	SignalSell Signal = "sell"
	SignalHold Signal = "hold"
)

// Kind identifies one of the six analyzers.
type Kind string

const (
	KindMA        Kind = "ma"
	KindMomentum  Kind = "momentum"
	KindVolume    Kind = "volume"
	KindMACD      Kind = "macd"
	KindRSI       Kind = "rsi"
	KindBollinger Kind = "bollinger"
)

// ParseKind validates a strategy kind string.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindMA, KindMomentum, KindVolume, KindMACD, KindRSI, KindBollinger:
		return Kind(s), nil
	}
	return "", fmt.Errorf("unknown strategy kind %q", s)
}

// Step is one named entry in an analyzer's calculation trace.
type Step struct {
	Step        int            `json:"step"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Data        map[string]any `json:"data,omitempty"`
}

// Evaluation is the outcome of one analyzer run.
type Evaluation struct {
	Signal     Signal             `json:"signal"`
	Reason     string             `json:"reason"`
	Indicators map[string]float64 `json:"indicators"`
	Steps      []Step             `json:"calculation_steps"`
}

// Report is an Evaluation packaged with the analyzed stock's identity.
type Report struct {
	StockCode    string  `json:"stock_code"`
	StockName    string  `json:"stock_name"`
	CurrentPrice float64 `json:"current_price"`
	Strategy     Kind    `json:"strategy_type"`
	Evaluation
}

// Analyzer evaluates a quote against historical closes.
type Analyzer interface {
	// Kind returns the analyzer's strategy kind.
	Kind() Kind

	// Evaluate produces a signal from the quote and the ordered
	// (oldest to newest) close-price history.
	Evaluate(quote *model.Quote, closes []float64) Evaluation
}

// round2 and round4 mirror the precision the indicators are reported at.
// Signal ladders always compare unrounded values.
func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round4(v float64) float64 { return math.Round(v*10000) / 10000 }
