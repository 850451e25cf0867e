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
	"TickerSentinel/internal/notifier"
	"TickerSentinel/internal/pipeline"
	"TickerSentinel/internal/recorder"
	"TickerSentinel/internal/scheduler"
	"TickerSentinel/pkg/logger"
)

func main() {
	cfgPath := flag.String("config", "configs/config.yaml", "Configuration file (.yaml or .toml)")
	flag.Parse()

	// Load config
	if v := os.Getenv("CONFIG_PATH"); v != "" && *cfgPath == "configs/config.yaml" {
		*cfgPath = v
	}
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.File); err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("TickerSentinel starting", zap.String("config", *cfgPath))
	if err := cfg.ValidateBot(); err != nil {
		logger.Fatal("config validation", zap.Error(err))
	}

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			logger.Warn("init sqlite recorder failed, using noop", zap.Error(err))
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	runner, err := pipeline.NewRunnerFromConfig(cfg, rec)
	if err != nil {
		logger.Fatal("build pipeline", zap.Error(err))
	}

	// Init Telegram notifier
	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, runner, tn, rec, cfg.Tickers)
	if err := sched.RegisterAll(cfg.Schedule.DailyCron); err != nil {
		logger.Fatal("register cron tasks", zap.Error(err))
	}
	sched.Start()
	defer sched.Stop()

	// Start Telegram polling
	go tn.StartPolling(ctx, sched.HandleCommand)
	logger.Info("telegram polling started")

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		logger.Info("RUN_ON_START enabled, running daily predictions now")
		go sched.RunDailyNow()
	}

	logger.Info("TickerSentinel is running, press Ctrl+C to stop",
		zap.Strings("tickers", cfg.Tickers),
		zap.String("daily_cron", cfg.Schedule.DailyCron),
	)

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutdown signal received, stopping")
	cancel()
}
