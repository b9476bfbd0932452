// Package api provides the HTTP surface of the paper-trading system:
// account state, trading, quotes, search, strategy analysis, and market
// index data. Every response uses the same envelope:
//
//	{"success": true,  "data": ...}
//	{"success": false, "message": "..."}
//
// Business rejections (insufficient funds, no position) are reported as
// success:false with HTTP 200; only malformed requests get a 4xx.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"papertrader/internal/ledger"
	"papertrader/internal/logger"
	"papertrader/internal/metrics"
	"papertrader/internal/model"
	"papertrader/internal/notification"
	"papertrader/internal/strategy"
)

// MarketDirectory is the slice of the market data client the API needs
// beyond quotes and history: search, index quote, index history.
type MarketDirectory interface {
	Search(ctx context.Context, keyword string) ([]model.StockMatch, error)
	Index(ctx context.Context, indexCode string) (*model.IndexQuote, error)
	IndexHistory(ctx context.Context, indexCode, period string, count int) ([]model.Bar, error)
}

// Server serves the REST API.
type Server struct {
	ledger    *ledger.Ledger
	engine    *strategy.Engine
	market    model.MarketDataSource
	directory MarketDirectory
	metrics   *metrics.Metrics
	notifier  notification.Notifier
	startedAt time.Time

	httpServer *http.Server
}

// WithNotifier installs an alert channel for executed trades.
func (s *Server) WithNotifier(n notification.Notifier) *Server {
	s.notifier = n
	return s
}

// NewServer builds the API server. metrics may be nil.
func NewServer(addr string, led *ledger.Ledger, engine *strategy.Engine, market model.MarketDataSource, directory MarketDirectory, m *metrics.Metrics) *Server {
	s := &Server{
		ledger:    led,
		engine:    engine,
		market:    market,
		directory: directory,
		metrics:   m,
		startedAt: time.Now(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/account", s.wrap(s.handleAccount))
	mux.HandleFunc("/api/account/reset", s.wrap(s.handleReset))
	mux.HandleFunc("/api/positions", s.wrap(s.handlePositions))
	mux.HandleFunc("/api/trades", s.wrap(s.handleTrades))
	mux.HandleFunc("/api/trade/buy", s.wrap(s.handleBuy))
	mux.HandleFunc("/api/trade/sell", s.wrap(s.handleSell))
	mux.HandleFunc("/api/stock/quote", s.wrap(s.handleQuote))
	mux.HandleFunc("/api/stock/quotes", s.wrap(s.handleQuotes))
	mux.HandleFunc("/api/stock/search", s.wrap(s.handleSearch))
	mux.HandleFunc("/api/stock/history", s.wrap(s.handleHistory))
	mux.HandleFunc("/api/strategy/analyze", s.wrap(s.handleAnalyze))
	mux.HandleFunc("/api/market/index", s.wrap(s.handleIndex))
	mux.HandleFunc("/api/market/index/history", s.wrap(s.handleIndexHistory))
	mux.HandleFunc("/api/health", s.wrap(s.handleHealth))

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return s
}

// setCORS sets CORS headers for REST endpoints.
func setCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

// wrap applies CORS, OPTIONS preflight, and request ID tagging to a handler.
func (s *Server) wrap(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		setCORS(w)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		ctx := logger.WithRequestID(r.Context(), logger.NewRequestID())
		h(w, r.WithContext(ctx))
	}
}

// Handler exposes the route table for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start begins serving in a background goroutine.
func (s *Server) Start() {
	go func() {
		slog.Info("[api] server listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("[api] server failed", "error", err)
		}
	}()
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		slog.Warn("[api] shutdown error", "error", err)
	}
}

type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

func respondOK(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(envelope{Success: true, Data: data})
}

// respondFail reports a business rejection with HTTP 200.
func respondFail(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(envelope{Success: false, Message: msg})
}

// respondError reports a malformed request or server failure.
func respondError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(envelope{Success: false, Message: msg})
}
