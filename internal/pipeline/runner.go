package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"TickerSentinel/internal/calculator"
	"TickerSentinel/internal/collector"
	"TickerSentinel/internal/model"
	"TickerSentinel/internal/recorder"
	"TickerSentinel/internal/sentiment"
	"TickerSentinel/internal/snapshot"
	"TickerSentinel/internal/strategy"
	"TickerSentinel/pkg/logger"
)

// TopTermCount is how many lexicon terms a report lists.
const TopTermCount = 10

// MailboxFunc returns the snapshot mailbox used for a ticker. Each ticker
// must get its own slot.
type MailboxFunc func(ticker string) snapshot.Mailbox

// FileMailboxes stores each ticker's snapshot at pathFor(ticker).
func FileMailboxes(pathFor func(ticker string) string) MailboxFunc {
	return func(ticker string) snapshot.Mailbox {
		return snapshot.NewFileMailbox(pathFor(ticker))
	}
}

// MemoryMailboxes keeps one in-process slot per ticker.
func MemoryMailboxes() MailboxFunc {
	var (
		mu    sync.Mutex
		slots = make(map[string]*snapshot.MemoryMailbox)
	)
	return func(ticker string) snapshot.Mailbox {
		mu.Lock()
		defer mu.Unlock()
		mb, ok := slots[ticker]
		if !ok {
			mb = snapshot.NewMemoryMailbox()
			slots[ticker] = mb
		}
		return mb
	}
}

// Runner drives the collect and predict stages for one ticker at a time.
type Runner struct {
	Collector *collector.Collector
	Scorer    *sentiment.Scorer
	// LookbackDays is how much price history to load.
	LookbackDays int
	// WindowDays limits scoring to recent headlines; 0 scores all.
	WindowDays int

	recorder   recorder.Recorder
	mailbox    MailboxFunc
	resultPath func(ticker string) string
	now        func() time.Time
}

// Option configures a Runner.
type Option func(*Runner)

// WithRecorder stores every run in rec.
func WithRecorder(rec recorder.Recorder) Option {
	return func(r *Runner) { r.recorder = rec }
}

// WithMailboxes sets where snapshots are handed from collect to predict.
func WithMailboxes(fn MailboxFunc) Option {
	return func(r *Runner) { r.mailbox = fn }
}

// WithResultFiles writes each prediction to pathFor(ticker).
func WithResultFiles(pathFor func(ticker string) string) Option {
	return func(r *Runner) { r.resultPath = pathFor }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

// NewRunner creates a Runner. Snapshots go through in-memory mailboxes and
// nothing is recorded unless options say otherwise.
func NewRunner(col *collector.Collector, scorer *sentiment.Scorer, lookbackDays, windowDays int, opts ...Option) *Runner {
	r := &Runner{
		Collector:    col,
		Scorer:       scorer,
		LookbackDays: lookbackDays,
		WindowDays:   windowDays,
		recorder:     recorder.NewNoopRecorder(),
		mailbox:      MemoryMailboxes(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Collected is the output of the collect stage.
type Collected struct {
	Ticker       string
	Series       model.PriceSeries
	Headlines    []model.AnnotatedHeadline
	Score        float64
	SourceErrors map[string]error
}

// Collect fetches bars and headlines for ticker, scores the headlines and
// puts the snapshot in the ticker's mailbox. Nothing is written on failure.
func (r *Runner) Collect(ctx context.Context, ticker string) (*Collected, error) {
	end := r.now()
	start := end.AddDate(0, 0, -r.LookbackDays)

	data, err := r.Collector.Collect(ctx, ticker, start, end)
	if err != nil {
		return nil, fmt.Errorf("collect %s: %w", ticker, err)
	}
	if len(data.Series.Bars) == 0 {
		return nil, fmt.Errorf("collect %s: %w: no bars returned", ticker, model.ErrInsufficientData)
	}

	score, err := r.Scorer.Score(data.Headlines, r.WindowDays)
	if err != nil {
		return nil, fmt.Errorf("score %s: %w", ticker, err)
	}

	snap := model.Snapshot{Bars: data.Series.Bars, Score: score}
	if err := r.mailbox(ticker).Put(snap); err != nil {
		return nil, fmt.Errorf("hand off snapshot for %s: %w", ticker, err)
	}
	logger.Info("snapshot written",
		zap.String("ticker", ticker),
		zap.Int("bars", len(snap.Bars)),
		zap.Int("headlines", len(data.Headlines)),
		zap.Float64("score", score),
	)

	return &Collected{
		Ticker:       ticker,
		Series:       data.Series,
		Headlines:    r.Scorer.Annotate(data.Headlines, r.WindowDays),
		Score:        score,
		SourceErrors: data.SourceErrors,
	}, nil
}

// Prediction is the output of the predict stage.
type Prediction struct {
	Ticker string
	Signal *model.TrendSignal
	Bars   []model.PriceBar
	// Previous is the label of the result file this prediction replaced,
	// nil when there was none.
	Previous *model.TrendLabel
}

// Predict takes the ticker's snapshot, classifies it and writes the result
// file. When the classifier cannot run no result file is written.
func (r *Runner) Predict(_ context.Context, ticker string) (*Prediction, error) {
	snap, err := r.mailbox(ticker).Take()
	if err != nil {
		return nil, fmt.Errorf("read snapshot for %s: %w", ticker, err)
	}
	sig, err := strategy.Evaluate(snap.Bars, snap.Score)
	if err != nil {
		return nil, fmt.Errorf("classify %s: %w", ticker, err)
	}
	pred := &Prediction{Ticker: ticker, Signal: sig, Bars: snap.Bars}
	if r.resultPath != nil {
		path := r.resultPath(ticker)
		if prev, err := snapshot.ReadResultFile(path); err == nil {
			pred.Previous = &prev
			if prev != sig.Label {
				logger.Info("predicted trend changed",
					zap.String("ticker", ticker),
					zap.Stringer("from", prev),
					zap.Stringer("to", sig.Label),
				)
			}
		} else if !errors.Is(err, model.ErrIO) {
			logger.Warn("previous result unreadable", zap.String("path", path), zap.Error(err))
		}
		if err := snapshot.WriteResultFile(path, sig.Label); err != nil {
			return nil, fmt.Errorf("write result for %s: %w", ticker, err)
		}
	}
	logger.Info("trend predicted",
		zap.String("ticker", ticker),
		zap.Stringer("label", sig.Label),
		zap.Float64("score", sig.Score),
		zap.Float64("avg", sig.AvgPrice),
		zap.Float64("last", sig.LastPrice),
	)
	return pred, nil
}

// Run executes both stages for ticker and records the outcome. The report is
// always returned; a failed stage leaves Signal nil, Status set from the
// error and Err holding the cause, which is also returned.
func (r *Runner) Run(ctx context.Context, ticker string) (*model.PredictionReport, error) {
	rep := &model.PredictionReport{
		Ticker:      ticker,
		RunID:       uuid.NewString(),
		GeneratedAt: r.now(),
		Status:      model.StatusOK,
	}
	defer r.record(rep)

	col, err := r.Collect(ctx, ticker)
	if err != nil {
		return r.fail(rep, err)
	}
	rep.Score = col.Score
	rep.Headlines = col.Headlines
	rep.Daily = sentiment.DailyMeans(col.Headlines)
	rep.TopTerms = r.Scorer.TopTerms(col.Headlines, TopTermCount)
	rep.SourceErrors = col.SourceErrors

	pred, err := r.Predict(ctx, ticker)
	if err != nil {
		return r.fail(rep, err)
	}
	rep.Signal = pred.Signal
	rep.Previous = pred.Previous
	rep.Indicators = Describe(pred.Bars)
	return rep, nil
}

// RunAll runs every ticker in order and stops early if ctx is cancelled.
func (r *Runner) RunAll(ctx context.Context, tickers []string) []*model.PredictionReport {
	reports := make([]*model.PredictionReport, 0, len(tickers))
	for _, t := range tickers {
		if ctx.Err() != nil {
			logger.Warn("run cancelled", zap.String("next_ticker", t), zap.Error(ctx.Err()))
			break
		}
		rep, _ := r.Run(ctx, t)
		reports = append(reports, rep)
	}
	return reports
}

func (r *Runner) fail(rep *model.PredictionReport, err error) (*model.PredictionReport, error) {
	rep.Status = model.StatusOf(err)
	rep.Err = err
	logger.Warn("no prediction made",
		zap.String("ticker", rep.Ticker),
		zap.String("status", rep.Status),
		zap.Error(err),
	)
	return rep, err
}

func (r *Runner) record(rep *model.PredictionReport) {
	rec := &recorder.PredictionRecord{
		RunID:     rep.RunID,
		Ticker:    rep.Ticker,
		CreatedAt: rep.GeneratedAt,
		Label:     rep.Label(),
		Score:     rep.Score,
		Headlines: len(rep.Headlines),
		Status:    rep.Status,
	}
	if rep.Signal != nil {
		rec.AvgPrice = rep.Signal.AvgPrice
		rec.LastPrice = rep.Signal.LastPrice
		rec.BarCount = rep.Signal.BarCount
	}
	if _, err := r.recorder.RecordPrediction(rec, rep.Headlines); err != nil {
		logger.Error("record prediction", zap.String("ticker", rep.Ticker), zap.Error(err))
	}
}

// Describe computes the descriptive statistics shown with a prediction.
// Statistics that need more bars than available are left zero.
func Describe(bars []model.PriceBar) model.ReportIndicators {
	var ind model.ReportIndicators
	if b, err := calculator.CalculateBands(bars); err == nil {
		ind.MA20, ind.Upper, ind.Lower = b.Middle, b.Upper, b.Lower
		ind.HasBands = true
	}
	if hi, lo, err := calculator.CalculateCloseRange(bars); err == nil {
		ind.High, ind.Low = hi, lo
	}
	if ch, err := calculator.CalculateChange(bars); err == nil {
		ind.ChangePct = ch
	}
	ind.AvgVolume = calculator.AverageVolume(bars)
	return ind
}
