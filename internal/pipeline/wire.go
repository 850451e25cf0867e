package pipeline

import (
	"time"

	"go.uber.org/zap"

	"TickerSentinel/internal/collector"
	"TickerSentinel/internal/config"
	"TickerSentinel/internal/recorder"
	"TickerSentinel/internal/sentiment"
	"TickerSentinel/pkg/logger"
)

// NewCollectorFromConfig picks the price loader and headline sources the
// configuration enables. Offline mode uses synthetic bars; otherwise the
// REST loader is used when a base URL is set, Yahoo when not.
func NewCollectorFromConfig(cfg *config.Config) (*collector.Collector, error) {
	var loader collector.SeriesLoader
	switch {
	case cfg.DataSource.Offline:
		bars := collector.GenerateBars(collector.OfflineBasePrice, cfg.DataSource.LookbackDays, time.Now())
		loader = &collector.StaticLoader{Bars: bars}
	case cfg.DataSource.BaseURL != "":
		loader = collector.NewRESTFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy)
	default:
		loader = collector.NewYahooFetcher(cfg.Proxy)
	}

	var sources []collector.HeadlineSource
	if cfg.News.FinnhubAPIKey != "" {
		sources = append(sources, collector.NewFinnhubSource(cfg.News.FinnhubAPIKey, cfg.News.LookbackDays, cfg.News.RequestsPerMinute, cfg.Proxy))
	}
	if cfg.News.AlphaVantageAPIKey != "" {
		sources = append(sources, collector.NewAlphaVantageSource(cfg.News.AlphaVantageAPIKey, cfg.News.Limit, cfg.Proxy))
	}
	if cfg.News.HeadlinesFile != "" {
		src, err := collector.NewHeadlineFileSource(cfg.News.HeadlinesFile)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}

	names := make([]string, len(sources))
	for i, s := range sources {
		names[i] = s.Name()
	}
	logger.Info("data sources configured",
		zap.String("series", loader.Name()),
		zap.Strings("headlines", names),
	)
	return collector.NewCollector(loader, sources...), nil
}

// NewScorerFromConfig builds a scorer over VADER, extended by the configured
// lexicon file if any.
func NewScorerFromConfig(cfg *config.Config) (*sentiment.Scorer, error) {
	lex := sentiment.DefaultLexicon()
	if cfg.News.LexiconFile != "" {
		var err error
		if lex, err = sentiment.LoadLexicon(cfg.News.LexiconFile); err != nil {
			return nil, err
		}
		logger.Info("sentiment lexicon extended",
			zap.String("file", cfg.News.LexiconFile),
			zap.Int("terms", lex.Len()),
		)
	}
	return sentiment.NewScorer(sentiment.NewAnalyzer(lex)), nil
}

// NewRunnerFromConfig builds a Runner that hands snapshots over through the
// per-ticker files under snapshot.dir and writes result files next to them.
func NewRunnerFromConfig(cfg *config.Config, rec recorder.Recorder) (*Runner, error) {
	col, err := NewCollectorFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	scorer, err := NewScorerFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	return NewRunner(col, scorer, cfg.DataSource.LookbackDays, cfg.News.WindowDays,
		WithRecorder(rec),
		WithMailboxes(FileMailboxes(cfg.SnapshotPath)),
		WithResultFiles(cfg.ResultPath),
	), nil
}
