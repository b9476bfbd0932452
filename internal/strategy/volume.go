package strategy

import (
	"fmt"

	"papertrader/internal/model"
)

// Volume generates signals from the ratio of today's volume to an assumed
// average daily volume, read together with the price direction. The
// average is the fixed highVolumeShares constant, not computed from
// history.
type Volume struct{}

func (Volume) Kind() Kind { return KindVolume }

func (Volume) Evaluate(quote *model.Quote, closes []float64) Evaluation {
	volume := quote.Volume
	changePct := quote.ChangePercent

	steps := []Step{{
		Step:        1,
		Name:        "collect quote data",
		Description: "volume, turnover, and change percent from the real-time quote",
		Data: map[string]any{
			"volume":         volume,
			"amount":         quote.Amount,
			"change_percent": changePct,
		},
	}}

	volumeRatio := float64(volume) / float64(highVolumeShares)

	steps = append(steps, Step{
		Step:        2,
		Name:        "compute volume ratio",
		Description: "today's volume over the assumed average daily volume",
		Data: map[string]any{
			"avg_volume":   highVolumeShares,
			"volume_ratio": round2(volumeRatio),
		},
	})

	heavy := volumeRatio > 2
	moderate := volumeRatio > 1.5 && volumeRatio <= 2
	shrunken := volumeRatio < 0.5
	priceUp := changePct > 0

	steps = append(steps, Step{
		Step: 3,
		Name: "classify volume state",
		Data: map[string]any{
			"heavy (>2x)":        heavy,
			"moderate (1.5x-2x)": moderate,
			"shrunken (<0.5x)":   shrunken,
			"price up":           priceUp,
		},
	})

	var signal Signal
	var reason string
	switch {
	case heavy && priceUp:
		signal = SignalBuy
		reason = fmt.Sprintf("rallying on %.1fx volume, clear money inflow", volumeRatio)
	case heavy && !priceUp:
		signal = SignalSell
		reason = fmt.Sprintf("falling on %.1fx volume, clear money outflow", volumeRatio)
	case shrunken:
		signal = SignalHold
		reason = "volume has dried up, no direction"
	case moderate && priceUp:
		signal = SignalBuy
		reason = "rising on moderately expanding volume, trend improving"
	default:
		signal = SignalHold
		reason = "volume unremarkable, stay on the sidelines"
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
			"volume":         float64(volume),
			"volume_ratio":   round2(volumeRatio),
			"change_percent": changePct,
		},
		Steps: steps,
	}
}
