package collector

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"TickerSentinel/internal/model"
)

// SeriesLoader fetches daily bars for a ticker. Implementations return bars
// in ascending date order, one per trading day in [start, end].
type SeriesLoader interface {
	FetchBars(ctx context.Context, symbol string, start, end time.Time) ([]model.PriceBar, error)
	Name() string
}

// HeadlineSource fetches recent news headlines for a ticker.
type HeadlineSource interface {
	FetchHeadlines(ctx context.Context, symbol string) ([]model.HeadlineRecord, error)
	Name() string
}

// newHTTPClient builds a client with a 30s timeout and optional proxy.
func newHTTPClient(proxyURL string) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{
		Timeout:   30 * time.Second,
		Transport: transport,
	}
}
