package strategy

import "testing"

func TestBollinger_HandComputedBands(t *testing.T) {
	// closes [10, 12, 14, 16, 18]: mean 14, population variance 8,
	// std ≈ 2.83, bands 14 ± 5.66, bandwidth ≈ 80.81%
	closes := []float64{10, 12, 14, 16, 18}
	eval := Bollinger{}.Evaluate(testQuote(15, 14, 1, 5_000_000), closes)

	assertClose(t, "ma20", eval.Indicators["ma20"], 14.0)
	assertClose(t, "std", eval.Indicators["std"], 2.83)
	assertClose(t, "upper_band", eval.Indicators["upper_band"], 19.66)
	assertClose(t, "lower_band", eval.Indicators["lower_band"], 8.34)
	assertClose(t, "bandwidth", eval.Indicators["bandwidth"], 80.81)
}

func TestBollinger_Ladder(t *testing.T) {
	closes := []float64{10, 12, 14, 16, 18} // bands 8.34 .. 19.66, wide

	cases := []struct {
		name  string
		price float64
		want  Signal
	}{
		{"breakout above upper band", 20, SignalSell},
		{"breakdown below lower band", 8, SignalBuy},
		{"above middle in wide bands", 15, SignalBuy},
		{"below middle in wide bands", 13, SignalSell},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			eval := Bollinger{}.Evaluate(testQuote(tc.price, 14, 0, 5_000_000), closes)
			if eval.Signal != tc.want {
				t.Errorf("signal = %s, want %s", eval.Signal, tc.want)
			}
		})
	}
}

func TestBollinger_SqueezeHolds(t *testing.T) {
	// Flat closes collapse the bands onto the middle: zero bandwidth is
	// the squeeze case as long as the price has not left the bands.
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 10
	}
	eval := Bollinger{}.Evaluate(testQuote(10, 10, 0, 5_000_000), closes)

	assertClose(t, "std", eval.Indicators["std"], 0.0)
	assertClose(t, "bandwidth", eval.Indicators["bandwidth"], 0.0)
	if eval.Signal != SignalHold {
		t.Errorf("signal = %s, want hold", eval.Signal)
	}
	if eval.Reason != "bands squeezing, wait for the breakout" {
		t.Errorf("unexpected reason %q", eval.Reason)
	}
}

func TestBollinger_WindowUsesTrailingTwenty(t *testing.T) {
	// Five wild closes followed by twenty flat ones: only the trailing
	// twenty may enter the window.
	closes := []float64{100, 200, 50, 300, 150}
	for i := 0; i < 20; i++ {
		closes = append(closes, 10)
	}
	eval := Bollinger{}.Evaluate(testQuote(10, 10, 0, 5_000_000), closes)

	assertClose(t, "ma20", eval.Indicators["ma20"], 10.0)
	assertClose(t, "std", eval.Indicators["std"], 0.0)
}

func TestBollinger_BandwidthGrowsWithSpread(t *testing.T) {
	// Two series with the same mean of 10 but different spread. The
	// middle band is identical, so the bandwidth must be strictly
	// larger for the wider series.
	narrow := []float64{9, 11, 9, 11, 10} // variance 0.8, std ≈ 0.89
	wide := []float64{6, 14, 6, 14, 10}   // variance 12.8, std ≈ 3.58
	quote := testQuote(10, 10, 0, 5_000_000)

	narrowEval := Bollinger{}.Evaluate(quote, narrow)
	wideEval := Bollinger{}.Evaluate(quote, wide)

	assertClose(t, "narrow ma20", narrowEval.Indicators["ma20"], 10.0)
	assertClose(t, "wide ma20", wideEval.Indicators["ma20"], 10.0)
	assertClose(t, "narrow bandwidth", narrowEval.Indicators["bandwidth"], 35.78)
	assertClose(t, "wide bandwidth", wideEval.Indicators["bandwidth"], 143.11)
	if wideEval.Indicators["bandwidth"] <= narrowEval.Indicators["bandwidth"] {
		t.Errorf("bandwidth %v for the wider series is not above %v",
			wideEval.Indicators["bandwidth"], narrowEval.Indicators["bandwidth"])
	}
}

func TestBollinger_NoHistory(t *testing.T) {
	eval := Bollinger{}.Evaluate(testQuote(10, 10, 0, 5_000_000), nil)

	// The middle band falls back to the price itself.
	assertClose(t, "ma20", eval.Indicators["ma20"], 10.0)
	assertClose(t, "upper_band", eval.Indicators["upper_band"], 10.0)
	assertClose(t, "lower_band", eval.Indicators["lower_band"], 10.0)
	if eval.Signal != SignalHold {
		t.Errorf("signal = %s, want hold", eval.Signal)
	}
}
