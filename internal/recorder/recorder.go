package recorder

import (
	"errors"
	"time"

	"TickerSentinel/internal/model"
)

// PredictionRecord holds one pipeline run for a ticker.
type PredictionRecord struct {
	RunID     string
	Ticker    string
	CreatedAt time.Time
	Label     model.TrendLabel
	Score     float64
	AvgPrice  float64
	LastPrice float64
	BarCount  int
	Headlines int
	// Status is "ok" for a classified run, otherwise the reason there was no data.
	Status string
}

// HeadlineScore records the sentiment vector of one headline used in a run.
type HeadlineScore struct {
	Date     time.Time
	Headline string
	Source   string
	Negative float64
	Neutral  float64
	Positive float64
	Compound float64
}

var (
	// ErrRunNotFound means no recorded run matches a run reference.
	ErrRunNotFound = errors.New("run not found")
	// ErrAmbiguousRun means a run ID prefix matches more than one run.
	ErrAmbiguousRun = errors.New("run id prefix is ambiguous")
)

// Recorder persists prediction history for later review.
type Recorder interface {
	// RecordPrediction stores rec and its headlines, returning the run ID.
	RecordPrediction(rec *PredictionRecord, headlines []model.AnnotatedHeadline) (string, error)
	// RecentPredictions returns at most n runs for ticker, newest first.
	RecentPredictions(ticker string, n int) ([]PredictionRecord, error)
	// RunHeadlines resolves ref, a run ID or a unique prefix of one, and
	// returns the full run ID with the headline vectors stored for it.
	RunHeadlines(ref string) (string, []HeadlineScore, error)
	Close() error
}
