package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"TickerSentinel/internal/model"
)

// OfflineBasePrice centres the synthetic bars of an offline run.
const OfflineBasePrice = 100.0

// StaticLoader returns fixed bars, for offline runs and tests.
type StaticLoader struct {
	Bars []model.PriceBar
	Err  error
}

func (s *StaticLoader) Name() string { return "static" }

func (s *StaticLoader) FetchBars(_ context.Context, _ string, start, end time.Time) ([]model.PriceBar, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]model.PriceBar, 0, len(s.Bars))
	for _, b := range s.Bars {
		if (start.IsZero() || !b.Date.Before(truncateDay(start))) && (end.IsZero() || !b.Date.After(end)) {
			out = append(out, b)
		}
	}
	return out, nil
}

// StaticSource returns fixed headlines, for offline runs and tests.
// Headlines tagged with another ticker are left out.
type StaticSource struct {
	Label     string
	Headlines []model.HeadlineRecord
	Err       error
}

func (s *StaticSource) Name() string {
	if s.Label != "" {
		return s.Label
	}
	return "static"
}

func (s *StaticSource) FetchHeadlines(_ context.Context, symbol string) ([]model.HeadlineRecord, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]model.HeadlineRecord, 0, len(s.Headlines))
	for _, h := range s.Headlines {
		if h.Ticker != "" && !strings.EqualFold(h.Ticker, symbol) {
			continue
		}
		out = append(out, h)
	}
	return out, nil
}

// GenerateBars builds count synthetic daily bars ending at end around basePrice.
func GenerateBars(basePrice float64, count int, end time.Time) []model.PriceBar {
	bars := make([]model.PriceBar, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.PriceBar{
			Date:   truncateDay(end.AddDate(0, 0, -(count - 1 - i))),
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}

// NewHeadlineFileSource reads a JSON array of headlines from path and serves
// it as a static source named "file". Dates use RFC 3339.
func NewHeadlineFileSource(path string) (*StaticSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read headlines file: %w", err)
	}
	var hs []model.HeadlineRecord
	if err := json.Unmarshal(data, &hs); err != nil {
		return nil, fmt.Errorf("decode headlines file %s: %w", path, err)
	}
	for i := range hs {
		if hs[i].Source == "" {
			hs[i].Source = "file"
		}
	}
	return &StaticSource{Label: "file", Headlines: hs}, nil
}
