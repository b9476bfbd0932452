// Package metrics exposes Prometheus metrics and a health endpoint for
// the paper trading server.
package metrics

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the trading server.
type Metrics struct {
	// Ledger
	TradesTotal    *prometheus.CounterVec // labels: side
	TradesRejected *prometheus.CounterVec // labels: reason
	StoreSaveDur   prometheus.Histogram

	// Strategy engine
	AnalyzeTotal *prometheus.CounterVec // labels: strategy, signal
	AnalyzeDur   *prometheus.HistogramVec

	// Market data
	QuoteFetchDur    prometheus.Histogram
	QuoteFetchErrors prometheus.Counter
	QuoteCacheHits   prometheus.Counter
	QuoteCacheMisses prometheus.Counter
}

// New registers and returns all Prometheus metrics.
func New() *Metrics {
	m := &Metrics{
		TradesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "papertrader_trades_total",
			Help: "Executed trades by side",
		}, []string{"side"}),
		TradesRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "papertrader_trades_rejected_total",
			Help: "Rejected trade requests by reason",
		}, []string{"reason"}),
		StoreSaveDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "papertrader_store_save_duration_seconds",
			Help:    "Full ledger snapshot persist latency",
			Buckets: prometheus.DefBuckets,
		}),

		AnalyzeTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "papertrader_analyze_total",
			Help: "Strategy analyses by strategy kind and resulting signal",
		}, []string{"strategy", "signal"}),
		AnalyzeDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "papertrader_analyze_duration_seconds",
			Help:    "Analyzer evaluation latency",
			Buckets: []float64{0.000001, 0.000005, 0.00001, 0.00005, 0.0001, 0.0005, 0.001},
		}, []string{"strategy"}),

		QuoteFetchDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "papertrader_quote_fetch_duration_seconds",
			Help:    "Upstream quote fetch latency",
			Buckets: prometheus.DefBuckets,
		}),
		QuoteFetchErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "papertrader_quote_fetch_errors_total",
			Help: "Quote fetches that returned no data",
		}),
		QuoteCacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "papertrader_quote_cache_hits_total",
			Help: "Quote cache hits",
		}),
		QuoteCacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "papertrader_quote_cache_misses_total",
			Help: "Quote cache misses",
		}),
	}

	prometheus.MustRegister(
		m.TradesTotal,
		m.TradesRejected,
		m.StoreSaveDur,
		m.AnalyzeTotal,
		m.AnalyzeDur,
		m.QuoteFetchDur,
		m.QuoteFetchErrors,
		m.QuoteCacheHits,
		m.QuoteCacheMisses,
	)

	return m
}

// HealthStatus tracks dependency health for the /healthz endpoint.
type HealthStatus struct {
	mu sync.RWMutex

	StartedAt       time.Time
	SQLiteOK        bool
	SQLiteLatencyMs float64
	RedisEnabled    bool
	RedisConnected  bool
	RedisLatencyMs  float64
	LastCheckAt     time.Time
}

// NewHealthStatus creates a health tracker.
func NewHealthStatus(redisEnabled bool) *HealthStatus {
	return &HealthStatus{
		StartedAt:    time.Now(),
		RedisEnabled: redisEnabled,
	}
}

// CheckSQLite pings the ledger database and records latency + health.
func (h *HealthStatus) CheckSQLite(ctx context.Context, db *sql.DB) {
	start := time.Now()
	err := db.PingContext(ctx)
	latency := time.Since(start)

	h.mu.Lock()
	h.SQLiteOK = err == nil
	h.SQLiteLatencyMs = float64(latency.Microseconds()) / 1000.0
	h.LastCheckAt = time.Now()
	h.mu.Unlock()
}

// CheckRedis pings the quote cache and records latency + connectivity.
func (h *HealthStatus) CheckRedis(ctx context.Context, rdb *goredis.Client) {
	start := time.Now()
	err := rdb.Ping(ctx).Err()
	latency := time.Since(start)

	h.mu.Lock()
	h.RedisConnected = err == nil
	h.RedisLatencyMs = float64(latency.Microseconds()) / 1000.0
	h.LastCheckAt = time.Now()
	h.mu.Unlock()
}

// StartLivenessChecker runs periodic dependency checks until ctx is done.
func (h *HealthStatus) StartLivenessChecker(ctx context.Context, db *sql.DB, rdb *goredis.Client, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				probeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
				if db != nil {
					h.CheckSQLite(probeCtx, db)
				}
				if rdb != nil {
					h.CheckRedis(probeCtx, rdb)
				}
				cancel()
			}
		}
	}()
}

// ServeHTTP handles the /healthz endpoint.
func (h *HealthStatus) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	overallStatus := "healthy"
	httpCode := http.StatusOK
	if !h.SQLiteOK || (h.RedisEnabled && !h.RedisConnected) {
		overallStatus = "degraded"
		httpCode = http.StatusServiceUnavailable
	}

	status := struct {
		Status          string  `json:"status"`
		Uptime          string  `json:"uptime"`
		SQLiteOK        bool    `json:"sqlite_ok"`
		SQLiteLatencyMs float64 `json:"sqlite_latency_ms"`
		RedisEnabled    bool    `json:"redis_enabled"`
		RedisConnected  bool    `json:"redis_connected"`
		RedisLatencyMs  float64 `json:"redis_latency_ms"`
		LastCheckAt     string  `json:"last_check_at"`
	}{
		Status:          overallStatus,
		Uptime:          time.Since(h.StartedAt).Round(time.Second).String(),
		SQLiteOK:        h.SQLiteOK,
		SQLiteLatencyMs: h.SQLiteLatencyMs,
		RedisEnabled:    h.RedisEnabled,
		RedisConnected:  h.RedisConnected,
		RedisLatencyMs:  h.RedisLatencyMs,
		LastCheckAt:     h.LastCheckAt.Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	if httpCode != http.StatusOK {
		w.WriteHeader(httpCode)
	}
	json.NewEncoder(w).Encode(status)
}

// Server runs an HTTP server exposing /metrics and /healthz.
type Server struct {
	addr string
	srv  *http.Server
}

// NewServer creates a metrics and health server.
func NewServer(addr string, health *HealthStatus) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", health.ServeHTTP)

	return &Server{
		addr: addr,
		srv: &http.Server{
			Addr:    addr,
			Handler: mux,
		},
	}
}

// Start launches the HTTP server in a goroutine.
func (s *Server) Start() {
	go func() {
		log.Printf("[metrics] server listening on %s", s.addr)
		if err := s.srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("[metrics] server error: %v", err)
		}
	}()
}

// Stop gracefully shuts down the metrics server.
func (s *Server) Stop(ctx context.Context) {
	s.srv.Shutdown(ctx)
}
