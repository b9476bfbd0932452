package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"

	"papertrader/config"
	"papertrader/internal/api"
	"papertrader/internal/ledger"
	"papertrader/internal/logger"
	"papertrader/internal/marketdata"
	"papertrader/internal/marketdata/eastmoney"
	"papertrader/internal/metrics"
	"papertrader/internal/model"
	"papertrader/internal/notification"
	"papertrader/internal/store/sqlite"
	"papertrader/internal/strategy"
)

// buildNotifier picks the alert channel from configuration. Telegram wins
// over a plain webhook; with neither configured alerts go to the log.
func buildNotifier(cfg *config.Config) notification.Notifier {
	switch {
	case cfg.TelegramBotToken != "" && cfg.TelegramChatID != "":
		slog.Info("[server] trade alerts via telegram")
		return notification.NewTelegramNotifier(cfg.TelegramBotToken, cfg.TelegramChatID)
	case cfg.WebhookURL != "":
		slog.Info("[server] trade alerts via webhook", "url", cfg.WebhookURL)
		return notification.NewWebhookNotifier(cfg.WebhookURL)
	}
	return notification.NewLogNotifier()
}

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()
	logger.Init("papertrader", logger.ParseLevel(cfg.LogLevel))
	slog.Info("[server] starting", "http_addr", cfg.HTTPAddr, "metrics_addr", cfg.MetricsAddr)

	m := metrics.New()

	store, err := sqlite.New(cfg.SQLitePath)
	if err != nil {
		slog.Error("[server] sqlite init failed", "path", cfg.SQLitePath, "error", err)
		os.Exit(1)
	}
	defer store.Close()
	store.WithSaveObserver(func(d time.Duration) {
		m.StoreSaveDur.Observe(d.Seconds())
	})

	led, err := ledger.New(ledger.Config{
		InitialCapital: cfg.InitialCapital,
		CommissionRate: cfg.CommissionRate,
		MinCommission:  cfg.MinCommission,
	}, store)
	if err != nil {
		slog.Error("[server] ledger init failed", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := eastmoney.New(eastmoney.Config{
		QuoteBaseURL:  cfg.QuoteBaseURL,
		KlineBaseURL:  cfg.KlineBaseURL,
		SearchBaseURL: cfg.SearchBaseURL,
	})

	// Redis is optional: without it quotes go straight to the upstream.
	var source model.MarketDataSource = client
	var rdb *goredis.Client
	if cfg.RedisAddr != "" {
		rdb = goredis.NewClient(&goredis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			slog.Warn("[server] redis unreachable, quote cache disabled", "addr", cfg.RedisAddr, "error", err)
			rdb = nil
		} else {
			slog.Info("[server] redis connected", "addr", cfg.RedisAddr)
			source = marketdata.NewCache(client, rdb, m)
		}
	}

	engine := strategy.NewEngine(source, cfg.HistoryDays, m)

	health := metrics.NewHealthStatus(rdb != nil)
	health.StartLivenessChecker(ctx, store.DB(), rdb, 15*time.Second)
	metricsServer := metrics.NewServer(cfg.MetricsAddr, health)
	metricsServer.Start()

	apiServer := api.NewServer(cfg.HTTPAddr, led, engine, source, client, m)
	apiServer.WithNotifier(buildNotifier(cfg))
	apiServer.Start()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	slog.Info("[server] shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	apiServer.Stop(shutdownCtx)
	metricsServer.Stop(shutdownCtx)
	cancel()
	if rdb != nil {
		rdb.Close()
	}
}
