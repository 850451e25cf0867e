package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TickerSentinel/internal/model"
	"TickerSentinel/internal/recorder"
)

var reportTime = time.Date(2024, 3, 15, 22, 30, 0, 0, time.UTC)

func sampleReport() *model.PredictionReport {
	hs := make([]model.AnnotatedHeadline, 12)
	for i := range hs {
		hs[i] = model.AnnotatedHeadline{
			HeadlineRecord:  model.HeadlineRecord{Date: reportTime.Add(-time.Duration(i) * time.Hour), Headline: "Headline " + string(rune('A'+i))},
			SentimentVector: model.SentimentVector{Compound: 0.25},
		}
	}
	return &model.PredictionReport{
		Ticker:      "AAPL",
		GeneratedAt: reportTime,
		Status:      model.StatusOK,
		Score:       0.25,
		Signal: &model.TrendSignal{
			Label: model.TrendRise, Score: 0.25, AvgPrice: 101.5, LastPrice: 99.25, BarCount: 21,
			Commentary: "positive sentiment, price below its average",
		},
		Indicators: model.ReportIndicators{MA20: 101, Upper: 104, Lower: 98, HasBands: true, High: 105, Low: 97, ChangePct: -1.5},
		Headlines:  hs,
		Daily:      []model.DailySentiment{{Date: reportTime.AddDate(0, 0, -1), Mean: -0.5, Count: 2}, {Date: reportTime, Mean: 0.25, Count: 10}},
		TopTerms:   []model.TermCount{{Term: "beat", Count: 3}},
		SourceErrors: map[string]error{
			"finnhub": errors.New("timeout"),
		},
	}
}

func TestFormatPrediction(t *testing.T) {
	msg := FormatPrediction(sampleReport())

	assert.Contains(t, msg, "<b>AAPL</b> | 2024-03-15")
	assert.Contains(t, msg, "Predicted Trend: <b>Rise</b>")
	assert.Contains(t, msg, "Sentiment score: +0.2500 (12 headlines)")
	assert.Contains(t, msg, "Last close: 99.25 | Average: 101.50 (21 bars)")
	assert.Contains(t, msg, "MA20: 101.00 | Bands: 98.00 / 104.00")
	assert.Contains(t, msg, "Headline A")
	assert.Contains(t, msg, "Headline J")
	assert.NotContains(t, msg, "Headline K", "only the ten most recent headlines")
	assert.Contains(t, msg, "2024-03-14 -0.5000 ▯▯▯ (2)")
	assert.Contains(t, msg, "beat×3")
	assert.Contains(t, msg, "Skipped sources: finnhub")
	assert.NotContains(t, msg, "changed from")

	rep := sampleReport()
	fall := model.TrendFall
	rep.Previous = &fall
	assert.Contains(t, FormatPrediction(rep), "  changed from Fall\n")
	rise := model.TrendRise
	rep.Previous = &rise
	assert.NotContains(t, FormatPrediction(rep), "changed from")
}

func TestFormatPrediction_NoSignal(t *testing.T) {
	rep := &model.PredictionReport{
		Ticker:      "TSLA",
		GeneratedAt: reportTime,
		Status:      model.StatusNoHeadlines,
		Err:         model.ErrEmptyInput,
	}
	msg := FormatPrediction(rep)
	assert.Contains(t, msg, "Predicted Trend: <b>Uncertain</b> (no headlines)")
	assert.Contains(t, msg, "Reason: no headlines to score")
}

func TestFormatHistory(t *testing.T) {
	assert.Equal(t, "No predictions recorded for MSFT yet.", FormatHistory("MSFT", nil))

	msg := FormatHistory("AAPL", []recorder.PredictionRecord{
		{RunID: "0f1e2d3c-aaaa-bbbb", CreatedAt: reportTime, Label: model.TrendFall, Score: -0.1, LastPrice: 10, AvgPrice: 9, Status: model.StatusOK},
		{RunID: "run-2", CreatedAt: reportTime.AddDate(0, 0, -1), Label: model.TrendUncertain, Status: model.StatusNoData},
	})
	lines := strings.Split(strings.TrimSpace(msg), "\n")
	require.Len(t, lines, 6)
	assert.Contains(t, lines[2], "<code>0f1e2d3c</code> 2024-03-15 22:30")
	assert.Contains(t, lines[2], "Fall  score -0.1000  last 10.00  avg 9.00")
	assert.Contains(t, lines[3], "<code>run-2</code>")
	assert.Contains(t, lines[3], "Uncertain (no_data)")
	assert.Contains(t, lines[5], "/headlines RUN_ID")
}

func TestFormatRunHeadlines(t *testing.T) {
	assert.Equal(t, "No headlines stored for run 0f1e2d3c.", FormatRunHeadlines("0f1e2d3c-aaaa", nil))

	msg := FormatRunHeadlines("0f1e2d3c-aaaa", []recorder.HeadlineScore{
		{Date: reportTime, Headline: "Profits <soar>", Source: "Reuters", Compound: 0.4404},
		{Date: reportTime, Headline: "Plant shut", Compound: -0.25},
	})
	assert.Contains(t, msg, "<b>Run 0f1e2d3c</b> (2 headlines)")
	assert.Contains(t, msg, "+0.4404 03-15 Profits &lt;soar&gt; (Reuters)")
	assert.Contains(t, msg, "-0.2500 03-15 Plant shut\n")
}

func TestFormatDailySummary(t *testing.T) {
	failed := &model.PredictionReport{Ticker: "TSLA", Status: model.StatusFailed}
	msg := FormatDailySummary([]*model.PredictionReport{sampleReport(), failed})
	assert.Contains(t, msg, "AAPL: Rise  score +0.2500")
	assert.Contains(t, msg, "TSLA: Uncertain (failed)")
}

type fakeBot struct {
	sent    chan string
	updates []string
	calls   int
}

func (f *fakeBot) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case strings.HasSuffix(r.URL.Path, "/sendMessage"):
		var payload map[string]string
		json.NewDecoder(r.Body).Decode(&payload)
		f.sent <- payload["text"]
		w.Write([]byte(`{"ok":true}`))
	case strings.HasSuffix(r.URL.Path, "/getUpdates"):
		f.calls++
		type msg struct {
			Text string `json:"text"`
		}
		type upd struct {
			UpdateID int  `json:"update_id"`
			Message  *msg `json:"message"`
		}
		var result []upd
		if r.URL.Query().Get("offset") == "0" {
			for i, text := range f.updates {
				result = append(result, upd{UpdateID: i + 1, Message: &msg{Text: text}})
			}
		} else {
			time.Sleep(10 * time.Millisecond)
		}
		json.NewEncoder(w).Encode(map[string]any{"ok": true, "result": result})
	default:
		http.NotFound(w, r)
	}
}

func newTestNotifier(t *testing.T, h http.Handler) *TelegramNotifier {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	tn := NewTelegramNotifier("TOKEN", "42", "")
	tn.APIBase = srv.URL
	return tn
}

func TestSend(t *testing.T) {
	bot := &fakeBot{sent: make(chan string, 1)}
	tn := newTestNotifier(t, bot)

	require.NoError(t, tn.SendWithRetry(context.Background(), "hello", 2))
	assert.Equal(t, "hello", <-bot.sent)
}

func TestSend_APIError(t *testing.T) {
	tn := newTestNotifier(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"ok":false}`, http.StatusBadRequest)
	}))
	err := tn.Send("hello")
	assert.ErrorContains(t, err, "status 400")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, tn.SendWithRetry(ctx, "hello", 3), context.Canceled)
}

func TestStartPolling_RepliesToCommands(t *testing.T) {
	bot := &fakeBot{sent: make(chan string, 4), updates: []string{" /help "}}
	tn := newTestNotifier(t, bot)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		tn.StartPolling(ctx, func(cmd string) string { return "got " + cmd })
		close(done)
	}()

	select {
	case reply := <-bot.sent:
		assert.Equal(t, "got /help", reply)
	case <-time.After(5 * time.Second):
		t.Fatal("no reply sent")
	}
	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("polling did not stop")
	}
}
