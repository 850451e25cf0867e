package scheduler

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"TickerSentinel/internal/notifier"
	"TickerSentinel/internal/pipeline"
	"TickerSentinel/internal/recorder"
	"TickerSentinel/pkg/logger"
)

// Sender delivers report text to the chat.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// DefaultHistory is how many runs /history shows without a count.
const DefaultHistory = 10

var (
	tickerPattern = regexp.MustCompile(`^[A-Z0-9^][A-Z0-9.\-^=]{0,14}$`)
	runRefPattern = regexp.MustCompile(`^[A-Za-z0-9\-]{4,64}$`)
)

// Scheduler runs the pipeline on a cron schedule and answers bot commands.
type Scheduler struct {
	Cron     *cron.Cron
	Runner   *pipeline.Runner
	Notifier Sender
	Recorder recorder.Recorder
	Tickers  []string
	Ctx      context.Context

	// runMu serialises pipeline runs so cron and commands never share a
	// snapshot slot at the same time.
	runMu sync.Mutex
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, runner *pipeline.Runner, tn Sender, rec recorder.Recorder, tickers []string) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Runner:   runner,
		Notifier: tn,
		Recorder: rec,
		Tickers:  tickers,
		Ctx:      ctx,
	}
}

// RegisterAll registers the daily prediction task.
func (s *Scheduler) RegisterAll(dailyCron string) error {
	if _, err := s.Cron.AddFunc(dailyCron, s.dailyTask); err != nil {
		return fmt.Errorf("register daily task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	logger.Info("scheduler started", zap.Strings("tickers", s.Tickers))
}

// Stop stops the cron scheduler and waits for a running task to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	logger.Info("scheduler stopped")
}

// RunDailyNow executes the daily task immediately (for manual trigger / RUN_ON_START).
func (s *Scheduler) RunDailyNow() {
	s.dailyTask()
}

func (s *Scheduler) dailyTask() {
	logger.Info("running daily predictions", zap.Int("tickers", len(s.Tickers)))
	s.runMu.Lock()
	reports := s.Runner.RunAll(s.Ctx, s.Tickers)
	s.runMu.Unlock()
	if len(reports) == 0 {
		return
	}
	s.trySend(notifier.FormatDailySummary(reports))
	for _, rep := range reports {
		if rep.Signal != nil {
			s.trySend(notifier.FormatPrediction(rep))
		}
	}
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return helpText()
	}
	// Commands may arrive as /cmd@BotName in group chats.
	name, _, _ := strings.Cut(strings.ToLower(fields[0]), "@")
	args := fields[1:]

	switch name {
	case "/predict":
		if len(args) != 1 {
			return "Usage: /predict TICKER"
		}
		ticker, ok := normalizeTicker(args[0])
		if !ok {
			return fmt.Sprintf("Invalid ticker %q", args[0])
		}
		s.runMu.Lock()
		rep, _ := s.Runner.Run(s.Ctx, ticker)
		s.runMu.Unlock()
		return notifier.FormatPrediction(rep)
	case "/history":
		if len(args) < 1 || len(args) > 2 {
			return "Usage: /history TICKER [COUNT]"
		}
		ticker, ok := normalizeTicker(args[0])
		if !ok {
			return fmt.Sprintf("Invalid ticker %q", args[0])
		}
		n := DefaultHistory
		if len(args) == 2 {
			v, err := strconv.Atoi(args[1])
			if err != nil || v < 1 {
				return "COUNT must be a positive number"
			}
			n = v
		}
		recs, err := s.Recorder.RecentPredictions(ticker, n)
		if err != nil {
			logger.Error("load history", zap.String("ticker", ticker), zap.Error(err))
			return "Could not load history, see logs."
		}
		return notifier.FormatHistory(ticker, recs)
	case "/headlines":
		if len(args) != 1 {
			return "Usage: /headlines RUN_ID"
		}
		if !runRefPattern.MatchString(args[0]) {
			return fmt.Sprintf("Invalid run ID %q", args[0])
		}
		runID, scores, err := s.Recorder.RunHeadlines(args[0])
		switch {
		case errors.Is(err, recorder.ErrRunNotFound):
			return fmt.Sprintf("No run matching %q.", args[0])
		case errors.Is(err, recorder.ErrAmbiguousRun):
			return fmt.Sprintf("Run ID %q matches several runs, give more characters.", args[0])
		case err != nil:
			logger.Error("load run headlines", zap.String("run", args[0]), zap.Error(err))
			return "Could not load headlines, see logs."
		}
		return notifier.FormatRunHeadlines(runID, scores)
	case "/tickers":
		return "Daily tickers: " + strings.Join(s.Tickers, ", ")
	case "/run":
		s.dailyTask()
		return ""
	default:
		return helpText()
	}
}

func helpText() string {
	return "Available commands:\n" +
		"• /predict TICKER - run the pipeline now\n" +
		"• /history TICKER [COUNT] - recent predictions\n" +
		"• /headlines RUN_ID - scored headlines of a recorded run\n" +
		"• /tickers - tickers in the daily run\n" +
		"• /run - run the daily predictions now"
}

func normalizeTicker(s string) (string, bool) {
	t := strings.ToUpper(strings.TrimSpace(s))
	return t, tickerPattern.MatchString(t)
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		logger.Error("send notification", zap.Error(err))
	}
}
