package strategy

import (
	"fmt"

	"papertrader/internal/model"
)

// highVolumeShares is the fixed volume threshold that upgrades a strong
// move into a confirmed breakout (and the assumed average daily volume
// the volume analyzer normalizes against).
const highVolumeShares = 10_000_000

// Momentum generates signals from the day's change percentage, with the
// strongest buy gated on heavy volume.
type Momentum struct{}

func (Momentum) Kind() Kind { return KindMomentum }

func (Momentum) Evaluate(quote *model.Quote, closes []float64) Evaluation {
	changePct := quote.ChangePercent
	volume := quote.Volume

	steps := []Step{{
		Step:        1,
		Name:        "collect quote data",
		Description: "change percent and traded volume from the real-time quote",
		Data: map[string]any{
			"change_percent": changePct,
			"volume":         volume,
		},
	}}

	strongBuy := changePct > 7
	buy := changePct > 3
	strongSell := changePct < -7
	sell := changePct < -3

	steps = append(steps, Step{
		Step:        2,
		Name:        "grade momentum",
		Description: "threshold the change percent at ±7% and ±3%",
		Data: map[string]any{
			"strong buy (>7%)":   strongBuy,
			"buy (>3%)":          buy,
			"strong sell (<-7%)": strongSell,
			"sell (<-3%)":        sell,
		},
	})

	highVolume := volume > highVolumeShares
	steps = append(steps, Step{
		Step:        3,
		Name:        "check volume confirmation",
		Description: "heavy volume confirms the strongest momentum signal",
		Data:        map[string]any{"volume > 10M shares": highVolume},
	})

	var signal Signal
	var reason string
	switch {
	case strongBuy && highVolume:
		signal = SignalBuy
		reason = fmt.Sprintf("surging %.2f%% on heavy volume, confirmed breakout", changePct)
	case buy:
		signal = SignalBuy
		reason = fmt.Sprintf("up %.2f%%, strong momentum", changePct)
	case strongSell:
		signal = SignalSell
		reason = fmt.Sprintf("plunging %.2f%%, extreme downside risk", -changePct)
	case sell:
		signal = SignalSell
		reason = fmt.Sprintf("down %.2f%%, momentum fading", -changePct)
	default:
		signal = SignalHold
		reason = "small move, not enough momentum either way"
	}

	steps = append(steps, Step{
		Step: 4,
		Name: "generate signal",
		Data: map[string]any{"signal": string(signal), "reason": reason},
	})

	return Evaluation{
		Signal: signal,
		Reason: reason,
		Indicators: map[string]float64{
			"change_percent": changePct,
			"volume":         float64(volume),
		},
		Steps: steps,
	}
}
