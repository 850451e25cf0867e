package model

import (
	"errors"
	"time"
)

// Run status values recorded for a pipeline run.
const (
	StatusOK               = "ok"
	StatusNoData           = "no_data"
	StatusInvalid          = "invalid"
	StatusNoHeadlines      = "no_headlines"
	StatusInsufficientData = "insufficient_data"
	StatusWriteFailed      = "write_failed"
	StatusFailed           = "failed"
)

// StatusOf maps a stage error to the run status it produces.
func StatusOf(err error) string {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, ErrWrite):
		return StatusWriteFailed
	case errors.Is(err, ErrIO):
		return StatusNoData
	case errors.Is(err, ErrParse), errors.Is(err, ErrProtocol):
		return StatusInvalid
	case errors.Is(err, ErrEmptyInput):
		return StatusNoHeadlines
	case errors.Is(err, ErrInsufficientData):
		return StatusInsufficientData
	default:
		return StatusFailed
	}
}

// ReportIndicators are descriptive statistics shown next to a prediction.
// They do not affect the label.
type ReportIndicators struct {
	MA20      float64
	Upper     float64
	Lower     float64
	HasBands  bool
	High      float64
	Low       float64
	ChangePct float64
	AvgVolume float64
}

// PredictionReport is everything known about one pipeline run for a ticker.
// Signal is nil when the run did not reach the classifier.
type PredictionReport struct {
	Ticker      string
	RunID       string
	GeneratedAt time.Time
	Status      string
	Err         error
	Score       float64
	Signal      *TrendSignal
	// Previous is the label this run's result replaced, if any.
	Previous     *TrendLabel
	Indicators   ReportIndicators
	Headlines    []AnnotatedHeadline
	Daily        []DailySentiment
	TopTerms     []TermCount
	SourceErrors map[string]error
}

// Label is the predicted trend, Uncertain when no prediction was made.
func (r *PredictionReport) Label() TrendLabel {
	if r.Signal == nil {
		return TrendUncertain
	}
	return r.Signal.Label
}
