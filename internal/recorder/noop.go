package recorder

import "TickerSentinel/internal/model"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordPrediction(rec *PredictionRecord, _ []model.AnnotatedHeadline) (string, error) {
	return rec.RunID, nil
}
func (n *NoopRecorder) RecentPredictions(_ string, _ int) ([]PredictionRecord, error) {
	return nil, nil
}
func (n *NoopRecorder) RunHeadlines(_ string) (string, []HeadlineScore, error) {
	return "", nil, ErrRunNotFound
}
func (n *NoopRecorder) Close() error { return nil }
