// Package marketdata layers caching over a market data source.
package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"

	"papertrader/internal/markethours"
	"papertrader/internal/metrics"
	"papertrader/internal/model"
)

const (
	quoteTTL       = 10 * time.Second
	quoteTTLClosed = 10 * time.Minute // quotes are frozen outside trading hours
	historyTTL     = 5 * time.Minute
)

// Cache is a read-through Redis cache in front of a market data source.
// Cache failures degrade to the upstream: a broken Redis never blocks a
// quote, it only costs the round trip.
type Cache struct {
	source  model.MarketDataSource
	rdb     *redis.Client
	metrics *metrics.Metrics
}

// NewCache wraps source with a Redis-backed cache. metrics may be nil.
func NewCache(source model.MarketDataSource, rdb *redis.Client, m *metrics.Metrics) *Cache {
	return &Cache{source: source, rdb: rdb, metrics: m}
}

// Quote returns the cached quote for code, fetching from the upstream on a
// miss and storing the result for a few seconds.
func (c *Cache) Quote(ctx context.Context, code string) (*model.Quote, error) {
	key := "quote:" + code
	var quote model.Quote
	if c.lookup(ctx, key, &quote) {
		return &quote, nil
	}

	fresh, err := c.source.Quote(ctx, code)
	if err != nil {
		return nil, err
	}
	ttl := quoteTTL
	if !markethours.IsOpen(time.Now()) {
		ttl = quoteTTLClosed
	}
	c.store(ctx, key, fresh, ttl)
	return fresh, nil
}

// History returns cached historical bars, fetching on a miss and caching
// for a few minutes. Klines move slowly compared to quotes.
func (c *Cache) History(ctx context.Context, code, period string, count int) ([]model.Bar, error) {
	key := fmt.Sprintf("history:%s:%s:%d", code, period, count)
	var bars []model.Bar
	if c.lookup(ctx, key, &bars) {
		return bars, nil
	}

	fresh, err := c.source.History(ctx, code, period, count)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, fresh, historyTTL)
	return fresh, nil
}

func (c *Cache) lookup(ctx context.Context, key string, v any) bool {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			slog.Warn("[marketdata] cache lookup failed", "key", key, "error", err)
		}
		if c.metrics != nil {
			c.metrics.QuoteCacheMisses.Inc()
		}
		return false
	}
	if err := json.Unmarshal(raw, v); err != nil {
		slog.Warn("[marketdata] cache entry corrupt", "key", key, "error", err)
		if c.metrics != nil {
			c.metrics.QuoteCacheMisses.Inc()
		}
		return false
	}
	if c.metrics != nil {
		c.metrics.QuoteCacheHits.Inc()
	}
	return true
}

func (c *Cache) store(ctx context.Context, key string, v any, ttl time.Duration) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, raw, ttl).Err(); err != nil {
		slog.Warn("[marketdata] cache store failed", "key", key, "error", err)
	}
}
