package strategy

import (
	"math"

	"papertrader/internal/model"
)

// bollingerWindow is the 20-day band window.
const bollingerWindow = 20

// Bollinger generates signals from the price's position inside the
// 20-day bands (middle band ± 2 population standard deviations) and from
// the normalized band width. Short history degrades to the mean and
// deviation of whatever closes exist.
type Bollinger struct{}

func (Bollinger) Kind() Kind { return KindBollinger }

func (Bollinger) Evaluate(quote *model.Quote, closes []float64) Evaluation {
	price := quote.CurrentPrice

	steps := []Step{{
		Step: 1,
		Name: "collect quote data",
		Data: map[string]any{
			"current_price": price,
			"high_price":    quote.HighPrice,
			"low_price":     quote.LowPrice,
			"pre_close":     quote.PreClose,
		},
	}}

	window := closes
	if len(closes) >= bollingerWindow {
		window = closes[len(closes)-bollingerWindow:]
	}

	ma20 := price
	if len(window) > 0 {
		sum := 0.0
		for _, c := range window {
			sum += c
		}
		ma20 = sum / float64(len(window))
	}

	steps = append(steps, Step{
		Step:        2,
		Name:        "compute middle band",
		Description: "mean of the trailing 20 closes, or of all available closes",
		Data:        map[string]any{"ma20": round2(ma20), "window": len(window)},
	})

	std := 0.0
	if len(window) > 1 {
		variance := 0.0
		for _, c := range window {
			variance += (c - ma20) * (c - ma20)
		}
		variance /= float64(len(window))
		std = math.Sqrt(variance)
	}

	steps = append(steps, Step{
		Step:        3,
		Name:        "compute standard deviation",
		Description: "population standard deviation over the band window",
		Data:        map[string]any{"std": round2(std)},
	})

	upper := ma20 + 2*std
	lower := ma20 - 2*std

	steps = append(steps, Step{
		Step:        4,
		Name:        "compute upper and lower bands",
		Description: "middle band ± 2 standard deviations",
		Data:        map[string]any{"upper_band": round2(upper), "lower_band": round2(lower)},
	})

	bandwidth := 0.0
	if ma20 != 0 {
		bandwidth = (upper - lower) / ma20 * 100
	}

	steps = append(steps, Step{
		Step:        5,
		Name:        "compute bandwidth",
		Description: "bandwidth = (upper - lower) / ma20 * 100",
		Data:        map[string]any{"bandwidth": round2(bandwidth)},
	})

	aboveUpper := price > upper
	belowLower := price < lower
	aboveMiddle := price > ma20
	wide := bandwidth > 10
	narrow := bandwidth < 5

	steps = append(steps, Step{
		Step: 6,
		Name: "classify band position",
		Data: map[string]any{
			"price above upper band": aboveUpper,
			"price below lower band": belowLower,
			"price above middle":     aboveMiddle,
			"wide bands (>10%)":      wide,
			"narrow bands (<5%)":     narrow,
		},
	})

	var signal Signal
	var reason string
	switch {
	case aboveUpper:
		signal = SignalSell
		reason = "price broke above the upper band, overbought"
	case belowLower:
		signal = SignalBuy
		reason = "price broke below the lower band, oversold"
	case aboveMiddle && wide:
		signal = SignalBuy
		reason = "price above the middle band with bands opening, momentum building"
	case !aboveMiddle && wide:
		signal = SignalSell
		reason = "price below the middle band with bands opening, weakness spreading"
	case narrow:
		signal = SignalHold
		reason = "bands squeezing, wait for the breakout"
	default:
		signal = SignalHold
		reason = "price near the middle band, stay on the sidelines"
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
			"ma20":       round2(ma20),
			"std":        round2(std),
			"upper_band": round2(upper),
			"lower_band": round2(lower),
			"bandwidth":  round2(bandwidth),
		},
		Steps: steps,
	}
}
