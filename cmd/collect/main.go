package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"TickerSentinel/internal/config"
	"TickerSentinel/internal/pipeline"
	"TickerSentinel/internal/snapshot"
	"TickerSentinel/pkg/logger"
)

func main() {
	var (
		cfgPath  = flag.String("config", "configs/config.yaml", "Configuration file (.yaml or .toml)")
		ticker   = flag.String("ticker", "", "Ticker to collect (default: first configured ticker)")
		outPath  = flag.String("out", "", "Snapshot file (default: per-ticker file under snapshot.dir)")
		window   = flag.Int("window", -1, "Only score headlines from the last N days, 0 for all (overrides config)")
		logLevel = flag.String("log-level", "", "Log level (overrides config)")
	)
	flag.Parse()

	if v := os.Getenv("CONFIG_PATH"); v != "" && *cfgPath == "configs/config.yaml" {
		*cfgPath = v
	}
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.File); err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if *window >= 0 {
		cfg.News.WindowDays = *window
	}
	if *ticker != "" {
		cfg.Tickers = []string{*ticker}
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal("config validation", zap.Error(err))
	}
	if !cfg.HasHeadlineSource() {
		logger.Fatal("no headline source configured, set FINNHUB_API_KEY, ALPHAVANTAGE_API_KEY or NEWS_HEADLINES_FILE")
	}
	symbol := cfg.Tickers[0]

	mailboxes := pipeline.FileMailboxes(cfg.SnapshotPath)
	if *outPath != "" {
		mailboxes = func(string) snapshot.Mailbox { return snapshot.NewFileMailbox(*outPath) }
	}
	col, err := pipeline.NewCollectorFromConfig(cfg)
	if err != nil {
		logger.Fatal("build collector", zap.Error(err))
	}
	scorer, err := pipeline.NewScorerFromConfig(cfg)
	if err != nil {
		logger.Fatal("build scorer", zap.Error(err))
	}
	runner := pipeline.NewRunner(
		col,
		scorer,
		cfg.DataSource.LookbackDays,
		cfg.News.WindowDays,
		pipeline.WithMailboxes(mailboxes),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res, err := runner.Collect(ctx, symbol)
	if err != nil {
		logger.Error("collect failed", zap.String("ticker", symbol), zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
	logger.Info("collect finished",
		zap.String("ticker", symbol),
		zap.Int("bars", len(res.Series.Bars)),
		zap.Int("headlines", len(res.Headlines)),
		zap.Float64("score", res.Score),
	)
}
