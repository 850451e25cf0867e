package collector

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"TickerSentinel/internal/model"
	"TickerSentinel/pkg/logger"
)

// MarketData is everything one pipeline run needs for a ticker.
type MarketData struct {
	Series    model.PriceSeries
	Headlines []model.HeadlineRecord
	// SourceErrors holds per-source failures that were skipped.
	SourceErrors map[string]error
}

// Collector fetches bars and headlines for a ticker.
type Collector struct {
	Loader  SeriesLoader
	Sources []HeadlineSource
	now     func() time.Time
}

// NewCollector creates a new Collector.
func NewCollector(loader SeriesLoader, sources ...HeadlineSource) *Collector {
	return &Collector{Loader: loader, Sources: sources, now: time.Now}
}

// Collect fetches bars between start and end and headlines from every
// source. A failing headline source is logged and skipped; the call fails
// only when the bars cannot be loaded or every source failed.
func (c *Collector) Collect(ctx context.Context, symbol string, start, end time.Time) (*MarketData, error) {
	bars, err := c.Loader.FetchBars(ctx, symbol, start, end)
	if err != nil {
		return nil, fmt.Errorf("fetch bars from %s: %w", c.Loader.Name(), err)
	}

	data := &MarketData{
		Series: model.PriceSeries{
			Symbol:    symbol,
			Bars:      bars,
			FetchedAt: c.now(),
		},
		SourceErrors: make(map[string]error),
	}

	var all []model.HeadlineRecord
	for _, src := range c.Sources {
		hs, err := src.FetchHeadlines(ctx, symbol)
		if err != nil {
			logger.Warn("headline source failed",
				zap.String("source", src.Name()),
				zap.String("symbol", symbol),
				zap.Error(err),
			)
			data.SourceErrors[src.Name()] = err
			continue
		}
		all = append(all, hs...)
	}
	if len(c.Sources) > 0 && len(data.SourceErrors) == len(c.Sources) {
		errs := make([]error, 0, len(data.SourceErrors))
		for name, e := range data.SourceErrors {
			errs = append(errs, fmt.Errorf("%s: %w", name, e))
		}
		return nil, fmt.Errorf("all headline sources failed: %w", errors.Join(errs...))
	}

	data.Headlines = mergeHeadlines(all)
	return data, nil
}

// mergeHeadlines drops blank headlines and repeats of the same article from
// one source (same source and URL), then orders the rest newest first.
// Matching text alone is not a repeat: identical headlines published
// separately each count toward the score.
func mergeHeadlines(in []model.HeadlineRecord) []model.HeadlineRecord {
	type articleKey struct{ source, url string }
	seen := make(map[articleKey]struct{}, len(in))
	out := make([]model.HeadlineRecord, 0, len(in))
	for _, h := range in {
		if strings.TrimSpace(h.Headline) == "" {
			continue
		}
		if h.URL != "" {
			key := articleKey{h.Source, h.URL}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
		}
		out = append(out, h)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out
}
