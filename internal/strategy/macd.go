package strategy

import "papertrader/internal/model"

// MACD generates signals from the DIF/DEA position relative to the zero
// axis and to each other.
//
// Both EMAs are seeded at the earliest available close and the DEA is the
// 9-period EMA of the full DIF series, recomputed from scratch over the
// whole history on every call. No state is carried between calls; the
// unconventional seeding is deliberate and must not be replaced with an
// N-period seed average, as that changes the emitted signals.
type MACD struct{}

func (MACD) Kind() Kind { return KindMACD }

const (
	fastPeriod   = 12
	slowPeriod   = 26
	signalPeriod = 9
)

// emaStep applies one step of the recursive EMA formula for period n.
func emaStep(prev, close float64, n int) float64 {
	return close*2/float64(n+1) + prev*float64(n-1)/float64(n+1)
}

func (MACD) Evaluate(quote *model.Quote, closes []float64) Evaluation {
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

	// With no history the EMAs collapse to the current price and every
	// derived value is zero.
	ema12 := price
	ema26 := price
	dif := 0.0
	dea := 0.0

	if len(closes) > 0 {
		ema12 = closes[0]
		ema26 = closes[0]
		deaSeeded := false
		for _, close := range closes[1:] {
			ema12 = emaStep(ema12, close, fastPeriod)
			ema26 = emaStep(ema26, close, slowPeriod)
			d := ema12 - ema26
			if !deaSeeded {
				dea = d
				deaSeeded = true
			} else {
				dea = emaStep(dea, d, signalPeriod)
			}
		}
		dif = ema12 - ema26
		if !deaSeeded {
			dea = dif
		}
	}

	steps = append(steps, Step{
		Step:        2,
		Name:        "compute EMAs",
		Description: "12 and 26 period exponential averages seeded at the earliest close",
		Data:        map[string]any{"ema12": round2(ema12), "ema26": round2(ema26)},
	})
	steps = append(steps, Step{
		Step:        3,
		Name:        "compute DIF",
		Description: "DIF = EMA12 - EMA26",
		Data:        map[string]any{"dif": round4(dif)},
	})
	steps = append(steps, Step{
		Step:        4,
		Name:        "compute DEA",
		Description: "9 period exponential average of the DIF series",
		Data:        map[string]any{"dea": round4(dea)},
	})

	macdBar := (dif - dea) * 2
	steps = append(steps, Step{
		Step:        5,
		Name:        "compute MACD histogram",
		Description: "MACD bar = (DIF - DEA) * 2",
		Data:        map[string]any{"macd_bar": round4(macdBar)},
	})

	steps = append(steps, Step{
		Step: 6,
		Name: "classify MACD state",
		Data: map[string]any{
			"dif > dea":      dif > dea,
			"dif above zero": dif > 0,
			"dea above zero": dea > 0,
		},
	})

	var signal Signal
	var reason string
	switch {
	case dif > 0 && dea > 0 && dif > dea:
		signal = SignalBuy
		if changePct > 2 {
			reason = "MACD golden cross above the zero axis, bullish alignment"
		} else {
			reason = "MACD holding above the zero axis, bullish trend"
		}
	case dif < 0 && dea < 0 && dif < dea:
		signal = SignalSell
		reason = "MACD death cross below the zero axis, bearish alignment"
	case dif > 0 && dea <= 0:
		signal = SignalBuy
		reason = "MACD golden cross, trend reversing upward"
	case dif <= 0 && dea > 0:
		signal = SignalSell
		reason = "MACD death cross, trend reversing downward"
	default:
		signal = SignalHold
		reason = "MACD inconclusive, stay on the sidelines"
	}

	steps = append(steps, Step{
		Step: 7,
		Name: "generate signal",
		Data: map[string]any{"signal": string(signal), "reason": reason},
	})

	return Evaluation{
		Signal: signal,
		Reason: reason,
		Indicators: map[string]float64{
			"dif":      round4(dif),
			"dea":      round4(dea),
			"macd_bar": round4(macdBar),
			"ema12":    round2(ema12),
			"ema26":    round2(ema26),
		},
		Steps: steps,
	}
}
