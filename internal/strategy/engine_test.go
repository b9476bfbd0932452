package strategy

import (
	"context"
	"errors"
	"testing"

	"papertrader/internal/model"
)

// fakeSource is a canned MarketDataSource for engine tests.
type fakeSource struct {
	quote      *model.Quote
	quoteErr   error
	bars       []model.Bar
	historyErr error

	historyCount int
}

func (f *fakeSource) Quote(ctx context.Context, code string) (*model.Quote, error) {
	return f.quote, f.quoteErr
}

func (f *fakeSource) History(ctx context.Context, code, period string, count int) ([]model.Bar, error) {
	f.historyCount = count
	return f.bars, f.historyErr
}

func TestEngine_QuoteFailureIsDataUnavailable(t *testing.T) {
	source := &fakeSource{quoteErr: errors.New("connection refused")}
	engine := NewEngine(source, 60, nil)

	_, err := engine.Analyze(context.Background(), "600519", KindMA)
	if !errors.Is(err, ErrDataUnavailable) {
		t.Fatalf("expected ErrDataUnavailable, got %v", err)
	}
}

func TestEngine_UnknownKind(t *testing.T) {
	engine := NewEngine(&fakeSource{}, 60, nil)

	_, err := engine.Analyze(context.Background(), "600519", Kind("kdj"))
	var unknown *UnknownKindError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownKindError, got %v", err)
	}
}

func TestEngine_HistoryFailureDegrades(t *testing.T) {
	source := &fakeSource{
		quote:      testQuote(10, 10, 0, 5_000_000),
		historyErr: errors.New("timeout"),
	}
	engine := NewEngine(source, 60, nil)

	report, err := engine.Analyze(context.Background(), "600519", KindMA)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	// Without history every moving average falls back to the price.
	assertClose(t, "ma20", report.Indicators["ma20"], 10.0)
	if report.Signal != SignalHold {
		t.Errorf("signal = %s, want hold", report.Signal)
	}
}

func TestEngine_DispatchAndReportIdentity(t *testing.T) {
	source := &fakeSource{
		quote: testQuote(21, 20, 5, 20_000_000),
		bars: []model.Bar{
			{Date: "2024-01-02", Close: 19},
			{Date: "2024-01-03", Close: 20},
		},
	}
	engine := NewEngine(source, 30, nil)

	report, err := engine.Analyze(context.Background(), "600519", KindMomentum)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if report.Strategy != KindMomentum {
		t.Errorf("strategy = %s, want momentum", report.Strategy)
	}
	if report.StockCode != "600519" || report.StockName != "贵州茅台" {
		t.Errorf("unexpected identity %s/%s", report.StockCode, report.StockName)
	}
	assertClose(t, "current_price", report.CurrentPrice, 21.0)
	if report.Signal != SignalBuy {
		t.Errorf("signal = %s, want buy", report.Signal)
	}
	if source.historyCount != 30 {
		t.Errorf("history depth = %d, want 30", source.historyCount)
	}
}

func TestEngine_DefaultHistoryDepth(t *testing.T) {
	source := &fakeSource{quote: testQuote(10, 10, 0, 0)}
	engine := NewEngine(source, 0, nil)

	if _, err := engine.Analyze(context.Background(), "600519", KindRSI); err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if source.historyCount != 60 {
		t.Errorf("history depth = %d, want the default 60", source.historyCount)
	}
}

func TestEngine_AllKindsRegistered(t *testing.T) {
	source := &fakeSource{quote: testQuote(10, 10, 0, 5_000_000)}
	engine := NewEngine(source, 60, nil)

	for _, kind := range []Kind{KindMA, KindMomentum, KindVolume, KindMACD, KindRSI, KindBollinger} {
		if _, err := engine.Analyze(context.Background(), "600519", kind); err != nil {
			t.Errorf("Analyze(%s): %v", kind, err)
		}
	}
}
