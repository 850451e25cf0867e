package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"TickerSentinel/internal/model"
)

// AlphaVantageBaseURL is the public query endpoint.
const AlphaVantageBaseURL = "https://www.alphavantage.co"

// AlphaVantageSource fetches ticker news from the NEWS_SENTIMENT endpoint.
// Only titles are used; the feed's own sentiment fields are ignored.
type AlphaVantageSource struct {
	BaseURL    string
	apiKey     string
	limit      int
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewAlphaVantageSource creates a source returning up to limit articles.
func NewAlphaVantageSource(apiKey string, limit int, proxyURL string) *AlphaVantageSource {
	if limit <= 0 {
		limit = 50
	}
	return &AlphaVantageSource{
		BaseURL:    AlphaVantageBaseURL,
		apiKey:     apiKey,
		limit:      limit,
		httpClient: newHTTPClient(proxyURL),
		// free tier allows 5 requests a minute
		limiter: rate.NewLimiter(rate.Every(12*time.Second), 1),
	}
}

func (s *AlphaVantageSource) Name() string { return "alphavantage" }

func (s *AlphaVantageSource) FetchHeadlines(ctx context.Context, symbol string) ([]model.HeadlineRecord, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	q := url.Values{}
	q.Set("function", "NEWS_SENTIMENT")
	q.Set("tickers", symbol)
	q.Set("sort", "LATEST")
	q.Set("limit", fmt.Sprint(s.limit))
	q.Set("apikey", s.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.BaseURL+"/query?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("alphavantage fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("alphavantage: status %d, body: %s", resp.StatusCode, string(body))
	}

	var raw avResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("alphavantage decode: %w", err)
	}
	if raw.Information != "" && len(raw.Feed) == 0 {
		return nil, fmt.Errorf("alphavantage: %s", raw.Information)
	}

	records := make([]model.HeadlineRecord, 0, len(raw.Feed))
	for _, item := range raw.Feed {
		if item.Title == "" {
			continue
		}
		publishedAt, err := time.Parse("20060102T150405", item.TimePublished)
		if err != nil {
			publishedAt = time.Time{}
		}
		records = append(records, model.HeadlineRecord{
			Date:     publishedAt,
			Headline: item.Title,
			Source:   item.Source,
			Ticker:   symbol,
			URL:      item.URL,
		})
	}
	return records, nil
}

type avResponse struct {
	Feed        []avFeedItem `json:"feed"`
	Information string       `json:"Information"`
}

type avFeedItem struct {
	Title         string `json:"title"`
	URL           string `json:"url"`
	Source        string `json:"source"`
	TimePublished string `json:"time_published"`
}
