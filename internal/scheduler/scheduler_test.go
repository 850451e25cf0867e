package scheduler

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TickerSentinel/internal/collector"
	"TickerSentinel/internal/model"
	"TickerSentinel/internal/pipeline"
	"TickerSentinel/internal/recorder"
	"TickerSentinel/internal/sentiment"
)

var now = time.Date(2024, 3, 15, 22, 30, 0, 0, time.UTC)

type captureSender struct {
	mu   sync.Mutex
	msgs []string
}

func (c *captureSender) SendWithRetry(_ context.Context, text string, _ int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, text)
	return nil
}

func newScheduler(t *testing.T) (*Scheduler, *captureSender) {
	t.Helper()
	rec, err := recorder.NewSQLiteRecorder(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { rec.Close() })

	bars := []model.PriceBar{
		{Date: now.AddDate(0, 0, -2), Close: 10},
		{Date: now.AddDate(0, 0, -1), Close: 9},
		{Date: now, Close: 8},
	}
	col := collector.NewCollector(&collector.StaticLoader{Bars: bars}, &collector.StaticSource{
		Headlines: []model.HeadlineRecord{{Date: now, Headline: "Record profits and strong growth"}},
	})
	scorer := sentiment.NewScorer(sentiment.NewAnalyzer(nil), sentiment.WithClock(func() time.Time { return now }))
	runner := pipeline.NewRunner(col, scorer, 30, 0,
		pipeline.WithRecorder(rec),
		pipeline.WithClock(func() time.Time { return now }),
	)

	sender := &captureSender{}
	return NewScheduler(context.Background(), runner, sender, rec, []string{"AAPL", "MSFT"}), sender
}

func TestRegisterAll(t *testing.T) {
	s, _ := newScheduler(t)
	require.NoError(t, s.RegisterAll("0 30 22 * * 1-5"))
	assert.Len(t, s.Cron.Entries(), 1)
	assert.Error(t, s.RegisterAll("not a cron"))
}

func TestHandleCommand_PredictThenHistory(t *testing.T) {
	s, _ := newScheduler(t)

	reply := s.HandleCommand("/predict aapl")
	assert.Contains(t, reply, "<b>AAPL</b>")
	assert.Contains(t, reply, "Predicted Trend: <b>Rise</b>")

	reply = s.HandleCommand("/history@TickerSentinelBot AAPL 5")
	assert.Contains(t, reply, "AAPL history")
	assert.Contains(t, reply, "Rise")

	assert.Equal(t, "No predictions recorded for TSLA yet.", s.HandleCommand("/history TSLA"))
}

func TestHandleCommand_RunHeadlines(t *testing.T) {
	s, _ := newScheduler(t)
	s.HandleCommand("/predict AAPL")

	recs, err := s.Recorder.RecentPredictions("AAPL", 1)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	short := recs[0].RunID[:8]
	assert.Contains(t, s.HandleCommand("/history AAPL"), "<code>"+short+"</code>")

	reply := s.HandleCommand("/headlines " + short)
	assert.Contains(t, reply, "<b>Run "+short+"</b> (1 headlines)")
	assert.Contains(t, reply, "Record profits and strong growth")

	assert.Equal(t, "Usage: /headlines RUN_ID", s.HandleCommand("/headlines"))
	assert.Contains(t, s.HandleCommand("/headlines a%b_c"), "Invalid run ID")
	assert.Equal(t, `No run matching "ffffffff".`, s.HandleCommand("/headlines ffffffff"))
}

func TestHandleCommand_Usage(t *testing.T) {
	s, _ := newScheduler(t)

	assert.Equal(t, "Usage: /predict TICKER", s.HandleCommand("/predict"))
	assert.Contains(t, s.HandleCommand("/predict $$$"), "Invalid ticker")
	assert.Equal(t, "COUNT must be a positive number", s.HandleCommand("/history AAPL zero"))
	assert.Equal(t, "Daily tickers: AAPL, MSFT", s.HandleCommand("/tickers"))
	assert.Contains(t, s.HandleCommand("hello"), "Available commands")
	assert.Contains(t, s.HandleCommand(""), "Available commands")
}

func TestRunDailyNow_SendsSummaryAndReports(t *testing.T) {
	s, sender := newScheduler(t)

	s.RunDailyNow()

	require.Len(t, sender.msgs, 3)
	assert.Contains(t, sender.msgs[0], "AAPL: Rise")
	assert.Contains(t, sender.msgs[0], "MSFT: Rise")
	assert.Contains(t, sender.msgs[1], "<b>AAPL</b>")
	assert.Contains(t, sender.msgs[2], "<b>MSFT</b>")

	recs, err := s.Recorder.RecentPredictions("MSFT", 10)
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}
