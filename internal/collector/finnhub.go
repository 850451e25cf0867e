package collector

import (
	"context"
	"fmt"
	"strings"
	"time"

	finnhub "github.com/Finnhub-Stock-API/finnhub-go/v2"
	"golang.org/x/time/rate"

	"TickerSentinel/internal/model"
)

// FinnhubSource fetches company news from Finnhub.
type FinnhubSource struct {
	client       *finnhub.DefaultApiService
	limiter      *rate.Limiter
	lookbackDays int
	now          func() time.Time
}

// NewFinnhubSource creates a source that requests the last lookbackDays of
// company news, at most perMinute requests a minute, through proxy when set.
func NewFinnhubSource(apiKey string, lookbackDays, perMinute int, proxy string) *FinnhubSource {
	cfg := finnhub.NewConfiguration()
	cfg.AddDefaultHeader("X-Finnhub-Token", apiKey)
	cfg.HTTPClient = newHTTPClient(proxy)
	if perMinute <= 0 {
		perMinute = 60
	}
	return &FinnhubSource{
		client:       finnhub.NewAPIClient(cfg).DefaultApi,
		limiter:      rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1),
		lookbackDays: lookbackDays,
		now:          time.Now,
	}
}

func (s *FinnhubSource) Name() string { return "finnhub" }

func (s *FinnhubSource) FetchHeadlines(ctx context.Context, symbol string) ([]model.HeadlineRecord, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	to := s.now().UTC()
	from := to.AddDate(0, 0, -s.lookbackDays)
	res, _, err := s.client.CompanyNews(ctx).
		Symbol(symbol).
		From(from.Format("2006-01-02")).
		To(to.Format("2006-01-02")).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("finnhub company news: %w", err)
	}
	return convertCompanyNews(symbol, res), nil
}

func convertCompanyNews(symbol string, news []finnhub.CompanyNews) []model.HeadlineRecord {
	records := make([]model.HeadlineRecord, 0, len(news))
	for _, n := range news {
		if n.Headline == nil || strings.TrimSpace(*n.Headline) == "" {
			continue
		}
		r := model.HeadlineRecord{
			Headline: strings.TrimSpace(*n.Headline),
			Ticker:   symbol,
		}
		if n.Datetime != nil {
			r.Date = time.Unix(*n.Datetime, 0).UTC()
		}
		if n.Source != nil {
			r.Source = *n.Source
		}
		if n.Url != nil {
			r.URL = *n.Url
		}
		records = append(records, r)
	}
	return records
}
