package config

import (
	"log"
	"os"
	"strconv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Trading account
	InitialCapital float64
	CommissionRate float64
	MinCommission  float64

	// Infrastructure
	SQLitePath    string
	RedisAddr     string // empty disables the quote cache
	RedisPassword string
	HTTPAddr      string
	MetricsAddr   string

	// Market data (EastMoney endpoints)
	QuoteBaseURL  string
	KlineBaseURL  string
	SearchBaseURL string
	HistoryDays   int

	// Alerts (all optional; unset falls back to log-only alerts)
	WebhookURL       string
	TelegramBotToken string
	TelegramChatID   string

	LogLevel string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		InitialCapital: getEnvFloat("INITIAL_CAPITAL", 100000.0),
		CommissionRate: getEnvFloat("COMMISSION_RATE", 0.0003),
		MinCommission:  getEnvFloat("MIN_COMMISSION", 5.0),

		SQLitePath:    getEnv("SQLITE_PATH", "data/ledger.db"),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		HTTPAddr:      getEnv("HTTP_ADDR", ":5000"),
		MetricsAddr:   getEnv("METRICS_ADDR", ":9090"),

		QuoteBaseURL:  getEnv("EASTMONEY_QUOTE_URL", "http://push2.eastmoney.com/api/qt"),
		KlineBaseURL:  getEnv("EASTMONEY_KLINE_URL", "https://push2his.eastmoney.com/api/qt"),
		SearchBaseURL: getEnv("EASTMONEY_SEARCH_URL", "http://searchapi.eastmoney.com/api/suggest/get"),
		HistoryDays:   getEnvInt("HISTORY_DAYS", 60),

		WebhookURL:       getEnv("WEBHOOK_URL", ""),
		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID:   getEnv("TELEGRAM_CHAT_ID", ""),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func getEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		log.Printf("[config] skipping invalid value for %s: %q", key, v)
		return fallback
	}
	return f
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Printf("[config] skipping invalid value for %s: %q", key, v)
		return fallback
	}
	return n
}
