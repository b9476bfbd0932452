package strategy

import "testing"

func TestMACD_NoHistory(t *testing.T) {
	quote := testQuote(10, 10, 0, 5_000_000)

	eval := MACD{}.Evaluate(quote, nil)

	assertClose(t, "ema12", eval.Indicators["ema12"], 10.0)
	assertClose(t, "ema26", eval.Indicators["ema26"], 10.0)
	assertClose(t, "dif", eval.Indicators["dif"], 0.0)
	assertClose(t, "dea", eval.Indicators["dea"], 0.0)
	assertClose(t, "macd_bar", eval.Indicators["macd_bar"], 0.0)
	if eval.Signal != SignalHold {
		t.Errorf("signal = %s, want hold", eval.Signal)
	}
}

func TestMACD_SingleClose(t *testing.T) {
	// One close seeds both EMAs and leaves every derived value at zero.
	eval := MACD{}.Evaluate(testQuote(11, 10, 1, 5_000_000), []float64{10})

	assertClose(t, "ema12", eval.Indicators["ema12"], 10.0)
	assertClose(t, "dif", eval.Indicators["dif"], 0.0)
	assertClose(t, "dea", eval.Indicators["dea"], 0.0)
	if eval.Signal != SignalHold {
		t.Errorf("signal = %s, want hold", eval.Signal)
	}
}

func TestMACD_TwoCloses_DEASeededAtFirstDIF(t *testing.T) {
	// closes [10, 11]:
	//   ema12 = 11*2/13 + 10*11/13 = 132/13
	//   ema26 = 11*2/27 + 10*25/27 = 272/27
	//   dif   = 132/13 - 272/27 = 28/351 ≈ 0.0798
	// The first DIF seeds the DEA, so DIF == DEA and the histogram is zero.
	eval := MACD{}.Evaluate(testQuote(11, 10, 1, 5_000_000), []float64{10, 11})

	assertClose(t, "dif", eval.Indicators["dif"], 0.0798)
	assertClose(t, "dea", eval.Indicators["dea"], 0.0798)
	assertClose(t, "macd_bar", eval.Indicators["macd_bar"], 0.0)
	// dif == dea blocks the golden-cross rules
	if eval.Signal != SignalHold {
		t.Errorf("signal = %s, want hold", eval.Signal)
	}
}

func TestMACD_RisingSeries_BullishAlignment(t *testing.T) {
	// closes [10, 11, 12]:
	//   ema12 = 1764/169 ≈ 10.4379, ema26 = 7448/729 ≈ 10.2167
	//   dif   ≈ 0.2211
	//   dea   = 0.2*dif + 0.8*(28/351) ≈ 0.1080
	// DIF and DEA both positive with DIF on top: buy.
	eval := MACD{}.Evaluate(testQuote(13, 12, 1, 5_000_000), []float64{10, 11, 12})

	assertClose(t, "ema12", eval.Indicators["ema12"], 10.44)
	assertClose(t, "ema26", eval.Indicators["ema26"], 10.22)
	assertClose(t, "dif", eval.Indicators["dif"], 0.2211)
	assertClose(t, "dea", eval.Indicators["dea"], 0.108)
	assertClose(t, "macd_bar", eval.Indicators["macd_bar"], 0.2262)
	if eval.Signal != SignalBuy {
		t.Errorf("signal = %s, want buy", eval.Signal)
	}
	if eval.Reason != "MACD holding above the zero axis, bullish trend" {
		t.Errorf("unexpected reason %q", eval.Reason)
	}
}

func TestMACD_RisingSeries_RallyVariant(t *testing.T) {
	// Same alignment with a >2% daily change picks the golden-cross wording.
	eval := MACD{}.Evaluate(testQuote(13, 12, 3, 5_000_000), []float64{10, 11, 12})
	if eval.Signal != SignalBuy {
		t.Fatalf("signal = %s, want buy", eval.Signal)
	}
	if eval.Reason != "MACD golden cross above the zero axis, bullish alignment" {
		t.Errorf("unexpected reason %q", eval.Reason)
	}
}

func TestMACD_FallingSeries_BearishAlignment(t *testing.T) {
	// Mirror image of the rising series: DIF and DEA both negative with
	// DIF underneath.
	eval := MACD{}.Evaluate(testQuote(9, 10, -1, 5_000_000), []float64{12, 11, 10})

	assertClose(t, "dif", eval.Indicators["dif"], -0.2211)
	assertClose(t, "dea", eval.Indicators["dea"], -0.108)
	if eval.Signal != SignalSell {
		t.Errorf("signal = %s, want sell", eval.Signal)
	}
	if eval.Reason != "MACD death cross below the zero axis, bearish alignment" {
		t.Errorf("unexpected reason %q", eval.Reason)
	}
}

func TestMACD_StepTrace(t *testing.T) {
	eval := MACD{}.Evaluate(testQuote(13, 12, 1, 5_000_000), []float64{10, 11, 12})
	if len(eval.Steps) != 7 {
		t.Errorf("expected 7 calculation steps, got %d", len(eval.Steps))
	}
}
