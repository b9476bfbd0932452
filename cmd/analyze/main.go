// Command analyze runs one strategy analysis from the command line and
// prints the signal, reason, and calculation trace.
//
// Usage:
//
//	analyze -code 600519 -strategy macd
//	analyze -code 000001 -strategy rsi -json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/joho/godotenv"

	"papertrader/config"
	"papertrader/internal/logger"
	"papertrader/internal/marketdata/eastmoney"
	"papertrader/internal/strategy"
)

func main() {
	code := flag.String("code", "", "stock code, e.g. 600519")
	kindName := flag.String("strategy", "ma", "strategy kind: ma, momentum, volume, macd, rsi, bollinger")
	days := flag.Int("days", 0, "history depth in bars (0 uses HISTORY_DAYS)")
	asJSON := flag.Bool("json", false, "print the full report as JSON")
	flag.Parse()

	if *code == "" {
		fmt.Fprintln(os.Stderr, "analyze: -code is required")
		flag.Usage()
		os.Exit(2)
	}

	_ = godotenv.Load()
	cfg := config.Load()
	logger.Init("analyze", logger.ParseLevel("warn"))

	kind, err := strategy.ParseKind(*kindName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "analyze: %v\n", err)
		os.Exit(2)
	}

	historyDays := cfg.HistoryDays
	if *days > 0 {
		historyDays = *days
	}

	client := eastmoney.New(eastmoney.Config{
		QuoteBaseURL:  cfg.QuoteBaseURL,
		KlineBaseURL:  cfg.KlineBaseURL,
		SearchBaseURL: cfg.SearchBaseURL,
	})
	engine := strategy.NewEngine(client, historyDays, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	report, err := engine.Analyze(ctx, *code, kind)
	if err != nil {
		slog.Error("[analyze] analysis failed", "stock_code", *code, "error", err)
		os.Exit(1)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(report)
		return
	}

	fmt.Printf("%s (%s)  price %.2f  strategy %s\n", report.StockName, report.StockCode, report.CurrentPrice, report.Strategy)
	fmt.Printf("signal: %s\nreason: %s\n", report.Signal, report.Reason)

	names := make([]string, 0, len(report.Indicators))
	for name := range report.Indicators {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %-12s %.4f\n", name, report.Indicators[name])
	}

	for _, step := range report.Steps {
		fmt.Printf("step %d: %s", step.Step, step.Name)
		if step.Description != "" {
			fmt.Printf("  (%s)", step.Description)
		}
		fmt.Println()
	}
}
