package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"TickerSentinel/internal/config"
	"TickerSentinel/internal/model"
	"TickerSentinel/internal/snapshot"
	"TickerSentinel/internal/strategy"
	"TickerSentinel/pkg/logger"
)

// Exit codes.
const (
	exitOK       = 0
	exitConfig   = 1
	exitNoResult = 2
)

func main() {
	var (
		cfgPath    = flag.String("config", "configs/config.yaml", "Configuration file (.yaml or .toml)")
		ticker     = flag.String("ticker", "", "Ticker to predict (default: first configured ticker)")
		inPath     = flag.String("in", "", "Snapshot file (default: per-ticker file under snapshot.dir)")
		resultPath = flag.String("out", "", "Result file (default: per-ticker file under snapshot.dir)")
		logLevel   = flag.String("log-level", "", "Log level (overrides config)")
	)
	flag.Parse()

	if v := os.Getenv("CONFIG_PATH"); v != "" && *cfgPath == "configs/config.yaml" {
		*cfgPath = v
	}
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(exitConfig)
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.File); err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(exitConfig)
	}
	if *ticker != "" {
		cfg.Tickers = []string{*ticker}
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("config validation", zap.Error(err))
		logger.Sync()
		os.Exit(exitConfig)
	}

	symbol := cfg.Tickers[0]
	in := *inPath
	if in == "" {
		in = cfg.SnapshotPath(symbol)
	}
	out := *resultPath
	if out == "" {
		out = cfg.ResultPath(symbol)
	}

	os.Exit(run(symbol, in, out))
}

func run(symbol, in, out string) int {
	defer logger.Sync()

	outcome := snapshot.Load(in)
	switch outcome.Status {
	case snapshot.StatusNoData:
		logger.Warn("snapshot missing, predicted trend: Uncertain (no data)",
			zap.String("ticker", symbol), zap.String("path", in), zap.Error(outcome.Err))
		return exitNoResult
	case snapshot.StatusInvalid:
		logger.Error("snapshot malformed, predicted trend: Uncertain (invalid data)",
			zap.String("ticker", symbol), zap.String("path", in), zap.Error(outcome.Err))
		return exitNoResult
	}

	sig, err := strategy.Evaluate(outcome.Snapshot.Bars, outcome.Snapshot.Score)
	if err != nil {
		logger.Warn("cannot classify, predicted trend: Uncertain (no data)",
			zap.String("ticker", symbol), zap.String("status", model.StatusOf(err)), zap.Error(err))
		return exitNoResult
	}

	if err := snapshot.WriteResultFile(out, sig.Label); err != nil {
		logger.Error("write result", zap.String("path", out), zap.Error(err))
		return exitNoResult
	}
	logger.Info("prediction written",
		zap.String("ticker", symbol),
		zap.Stringer("label", sig.Label),
		zap.Float64("score", sig.Score),
		zap.Float64("avg", sig.AvgPrice),
		zap.Float64("last", sig.LastPrice),
		zap.String("path", out),
	)
	fmt.Printf("%s%s\n", snapshot.ResultPrefix, sig.Label)
	return exitOK
}
