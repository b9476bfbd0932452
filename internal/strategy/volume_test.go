package strategy

import "testing"

func TestVolume_Ladder(t *testing.T) {
	cases := []struct {
		name      string
		volume    int64
		changePct float64
		want      Signal
	}{
		{"heavy volume rising", 25_000_000, 1, SignalBuy},
		{"heavy volume falling", 25_000_000, -1, SignalSell},
		{"heavy volume flat counts as not rising", 25_000_000, 0, SignalSell},
		{"shrunken volume", 4_000_000, 2, SignalHold},
		{"moderate volume rising", 18_000_000, 1, SignalBuy},
		{"moderate volume falling", 18_000_000, -1, SignalHold},
		{"unremarkable volume", 12_000_000, 1, SignalHold},
		{"exactly 2x rising is moderate", 20_000_000, 1, SignalBuy},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			quote := testQuote(10, 10, tc.changePct, tc.volume)
			eval := Volume{}.Evaluate(quote, nil)
			if eval.Signal != tc.want {
				t.Errorf("signal = %s, want %s", eval.Signal, tc.want)
			}
		})
	}
}

func TestVolume_Ratio(t *testing.T) {
	eval := Volume{}.Evaluate(testQuote(10, 10, 1, 25_000_000), nil)
	assertClose(t, "volume_ratio", eval.Indicators["volume_ratio"], 2.5)

	eval = Volume{}.Evaluate(testQuote(10, 10, 1, 4_000_000), nil)
	assertClose(t, "volume_ratio", eval.Indicators["volume_ratio"], 0.4)
}
