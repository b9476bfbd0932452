package strategy

import (
	"fmt"

	"papertrader/internal/model"
)

// rsiPeriod is the classic 14-day RSI window.
const rsiPeriod = 14

// RSI generates signals from the Relative Strength Index: day-over-day
// close deltas split into gains and losses, averaged with Wilder
// smoothing after a 14-value simple-mean seed. With fewer than 14 deltas
// the simple mean of whatever exists is used; with no history at all the
// RSI defaults to a neutral 50.
type RSI struct{}

func (RSI) Kind() Kind { return KindRSI }

func (RSI) Evaluate(quote *model.Quote, closes []float64) Evaluation {
	price := quote.CurrentPrice
	changePct := quote.ChangePercent

	steps := []Step{{
		Step: 1,
		Name: "collect quote data",
		Data: map[string]any{
			"current_price":  price,
			"pre_close":      quote.PreClose,
			"change_percent": changePct,
		},
	}}

	var gains, losses []float64
	for i := 1; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gains = append(gains, delta)
			losses = append(losses, 0)
		} else {
			gains = append(gains, 0)
			losses = append(losses, -delta)
		}
	}

	upDays := 0
	downDays := 0
	for i := range gains {
		if gains[i] > 0 {
			upDays++
		}
		if losses[i] > 0 {
			downDays++
		}
	}
	steps = append(steps, Step{
		Step:        2,
		Name:        "compute daily deltas",
		Description: "close-to-close changes split into gain and loss series",
		Data: map[string]any{
			"history":   len(closes),
			"deltas":    len(gains),
			"up_days":   upDays,
			"down_days": downDays,
		},
	})

	avgGain := 0.0
	avgLoss := 0.0
	if len(gains) >= rsiPeriod {
		for i := 0; i < rsiPeriod; i++ {
			avgGain += gains[i]
			avgLoss += losses[i]
		}
		avgGain /= rsiPeriod
		avgLoss /= rsiPeriod
		// Wilder smoothing for the remainder of the series
		for i := rsiPeriod; i < len(gains); i++ {
			avgGain = (avgGain*(rsiPeriod-1) + gains[i]) / rsiPeriod
			avgLoss = (avgLoss*(rsiPeriod-1) + losses[i]) / rsiPeriod
		}
	} else if len(gains) > 0 {
		for i := range gains {
			avgGain += gains[i]
			avgLoss += losses[i]
		}
		avgGain /= float64(len(gains))
		avgLoss /= float64(len(losses))
	}

	steps = append(steps, Step{
		Step:        3,
		Name:        "average gains and losses",
		Description: "14-value simple-mean seed then Wilder smoothing (avg*13 + value)/14",
		Data: map[string]any{
			"avg_gain": round4(avgGain),
			"avg_loss": round4(avgLoss),
		},
	})

	rsi := 50.0 // neutral default with no history at all
	switch {
	case len(gains) == 0:
	case avgLoss == 0:
		rsi = 100
	case avgGain == 0:
		rsi = 0
	default:
		rs := avgGain / avgLoss
		rsi = 100 - 100/(1+rs)
	}

	steps = append(steps, Step{
		Step:        4,
		Name:        "compute RSI",
		Description: "RSI = 100 - 100/(1+RS) with RS = avg_gain/avg_loss",
		Data:        map[string]any{"rsi": round2(rsi)},
	})

	oversold := rsi < 30
	overbought := rsi > 70
	low := rsi >= 30 && rsi < 40
	high := rsi > 60 && rsi <= 70

	steps = append(steps, Step{
		Step: 5,
		Name: "classify RSI state",
		Data: map[string]any{
			"oversold (<30)":    oversold,
			"overbought (>70)":  overbought,
			"low (30-40)":       low,
			"high (60-70)":      high,
			"sharp drop (<-3%)": changePct < -3,
			"sharp rise (>3%)":  changePct > 3,
		},
	})

	var signal Signal
	var reason string
	switch {
	case oversold:
		signal = SignalBuy
		if changePct < -3 {
			reason = fmt.Sprintf("RSI oversold at %.1f after a sharp drop, rebound likely", rsi)
		} else {
			reason = fmt.Sprintf("RSI oversold at %.1f", rsi)
		}
	case overbought:
		signal = SignalSell
		if changePct > 3 {
			reason = fmt.Sprintf("RSI overbought at %.1f after a sharp rise, pullback likely", rsi)
		} else {
			reason = fmt.Sprintf("RSI overbought at %.1f", rsi)
		}
	case low:
		signal = SignalBuy
		reason = fmt.Sprintf("RSI on the low side at %.1f, consider buying", rsi)
	case high:
		signal = SignalSell
		reason = fmt.Sprintf("RSI on the high side at %.1f, consider selling", rsi)
	default:
		signal = SignalHold
		reason = fmt.Sprintf("RSI neutral at %.1f, stay on the sidelines", rsi)
	}

	steps = append(steps, Step{
		Step: 6,
		Name: "generate signal",
		Data: map[string]any{"signal": string(signal), "reason": reason},
	})

	// Today's own gain/loss from the live quote, reported alongside RSI.
	currentChange := price - quote.PreClose
	currentGain := 0.0
	currentLoss := 0.0
	if currentChange > 0 {
		currentGain = currentChange
	} else {
		currentLoss = -currentChange
	}

	return Evaluation{
		Signal: signal,
		Reason: reason,
		Indicators: map[string]float64{
			"rsi":  round2(rsi),
			"gain": round2(currentGain),
			"loss": round2(currentLoss),
		},
		Steps: steps,
	}
}
