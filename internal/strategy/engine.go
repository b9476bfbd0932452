package strategy

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"papertrader/internal/metrics"
	"papertrader/internal/model"
)

// ErrDataUnavailable is reported when the real-time quote for a stock
// cannot be obtained. Analyzers are never invoked in that case.
var ErrDataUnavailable = errors.New("market data unavailable")

// historyDays is how much daily history is fetched for the analyzers.
const defaultHistoryDays = 60

// Engine fetches market data and dispatches to the requested analyzer.
type Engine struct {
	source      model.MarketDataSource
	analyzers   map[Kind]Analyzer
	historyDays int
	metrics     *metrics.Metrics
}

// NewEngine creates a strategy engine over the given market data source.
// historyDays bounds the daily history fetched per analysis; <=0 uses the
// default of 60. metrics may be nil.
func NewEngine(source model.MarketDataSource, historyDays int, m *metrics.Metrics) *Engine {
	if historyDays <= 0 {
		historyDays = defaultHistoryDays
	}
	analyzers := make(map[Kind]Analyzer)
	for _, a := range []Analyzer{MA{}, Momentum{}, Volume{}, MACD{}, RSI{}, Bollinger{}} {
		analyzers[a.Kind()] = a
	}
	return &Engine{
		source:      source,
		analyzers:   analyzers,
		historyDays: historyDays,
		metrics:     m,
	}
}

// Analyze runs one analyzer against the current quote and daily history
// for the given stock. A missing quote yields ErrDataUnavailable; a
// failed or empty history is not an error; analyzers degrade on their
// own terms.
func (e *Engine) Analyze(ctx context.Context, code string, kind Kind) (*Report, error) {
	analyzer, ok := e.analyzers[kind]
	if !ok {
		return nil, &UnknownKindError{Kind: kind}
	}

	quote, err := e.source.Quote(ctx, code)
	if err != nil || quote == nil {
		if e.metrics != nil {
			e.metrics.QuoteFetchErrors.Inc()
		}
		slog.Warn("quote unavailable", slog.String("stock_code", code), slog.Any("error", err))
		return nil, ErrDataUnavailable
	}

	bars, err := e.source.History(ctx, code, "day", e.historyDays)
	if err != nil {
		// Degrade to an empty history; every analyzer has a documented
		// short-history fallback.
		slog.Warn("history unavailable, analyzing without it",
			slog.String("stock_code", code), slog.Any("error", err))
		bars = nil
	}

	start := time.Now()
	eval := analyzer.Evaluate(quote, model.Closes(bars))
	if e.metrics != nil {
		e.metrics.AnalyzeDur.WithLabelValues(string(kind)).Observe(time.Since(start).Seconds())
		e.metrics.AnalyzeTotal.WithLabelValues(string(kind), string(eval.Signal)).Inc()
	}

	return &Report{
		StockCode:    code,
		StockName:    quote.StockName,
		CurrentPrice: quote.CurrentPrice,
		Strategy:     kind,
		Evaluation:   eval,
	}, nil
}

// UnknownKindError reports a strategy kind the engine has no analyzer for.
type UnknownKindError struct {
	Kind Kind
}

func (e *UnknownKindError) Error() string {
	return "unknown strategy kind " + string(e.Kind)
}
