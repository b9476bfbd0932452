package strategy

import (
	"fmt"

	"papertrader/internal/model"
)

// MA generates signals from the alignment of the price against its 5, 10,
// and 20 day simple moving averages.
//
// Any window with insufficient history falls back to the current price for
// that average, so a missing average compares equal to price rather than
// tripping a sentinel branch.
type MA struct{}

func (MA) Kind() Kind { return KindMA }

// sma returns the simple mean of the last n values, or the fallback when
// fewer than n values exist.
func sma(closes []float64, n int, fallback float64) float64 {
	if len(closes) < n {
		return fallback
	}
	sum := 0.0
	for _, c := range closes[len(closes)-n:] {
		sum += c
	}
	return sum / float64(n)
}

func (MA) Evaluate(quote *model.Quote, closes []float64) Evaluation {
	price := quote.CurrentPrice
	changePct := quote.ChangePercent

	steps := []Step{{
		Step:        1,
		Name:        "collect quote data",
		Description: "base fields from the real-time quote",
		Data: map[string]any{
			"current_price":  price,
			"pre_close":      quote.PreClose,
			"change_percent": changePct,
		},
	}}

	ma5 := sma(closes, 5, price)
	ma10 := sma(closes, 10, price)
	ma20 := sma(closes, 20, price)

	steps = append(steps, Step{
		Step:        2,
		Name:        "compute moving averages",
		Description: "simple means of the trailing 5/10/20 closes; short windows fall back to the current price",
		Data: map[string]any{
			"ma5":     round2(ma5),
			"ma10":    round2(ma10),
			"ma20":    round2(ma20),
			"history": len(closes),
		},
	})

	steps = append(steps, Step{
		Step: 3,
		Name: "compare price against averages",
		Data: map[string]any{
			"price > ma5":  price > ma5,
			"price > ma10": price > ma10,
			"price > ma20": price > ma20,
			"ma5 > ma10":   ma5 > ma10,
			"ma10 > ma20":  ma10 > ma20,
		},
	})

	var signal Signal
	var reason string
	switch {
	case price > ma5 && price > ma10 && price > ma20 && changePct > 3:
		signal = SignalBuy
		reason = fmt.Sprintf("price broke above all moving averages, strong rally of %.2f%%", changePct)
	case price > ma5 && price > ma10 && price > ma20:
		signal = SignalBuy
		reason = "price stands above all moving averages, bullish alignment"
	case price < ma5 && price < ma10:
		signal = SignalSell
		reason = "price fell below the short-term averages, trend weakening"
	case ma5 < ma10 && ma10 < ma20:
		signal = SignalSell
		reason = "moving averages in full bearish alignment, downtrend"
	default:
		signal = SignalHold
		reason = "price oscillating around its moving averages, stay on the sidelines"
	}

	steps = append(steps, Step{
		Step:        4,
		Name:        "generate signal",
		Description: "first matching rule in the average-alignment ladder wins",
		Data:        map[string]any{"signal": string(signal), "reason": reason},
	})

	return Evaluation{
		Signal: signal,
		Reason: reason,
		Indicators: map[string]float64{
			"ma5":  round2(ma5),
			"ma10": round2(ma10),
			"ma20": round2(ma20),
		},
		Steps: steps,
	}
}
