package notifier

import (
	"fmt"
	"html"
	"sort"
	"strings"

	"TickerSentinel/internal/model"
	"TickerSentinel/internal/recorder"
)

// MaxReportHeadlines is how many headlines a prediction report lists.
const MaxReportHeadlines = 10

var labelIcon = map[model.TrendLabel]string{
	model.TrendRise:      "📈",
	model.TrendFall:      "📉",
	model.TrendUncertain: "❔",
}

// FormatPrediction formats a pipeline report into a Telegram message.
func FormatPrediction(rep *model.PredictionReport) string {
	if rep.Signal == nil {
		return FormatNoData(rep)
	}
	sig := rep.Signal
	var b strings.Builder

	b.WriteString(fmt.Sprintf("%s <b>%s</b> | %s\n\n", labelIcon[sig.Label], html.EscapeString(rep.Ticker), rep.GeneratedAt.Format("2006-01-02")))
	b.WriteString(fmt.Sprintf("Predicted Trend: <b>%s</b>\n", sig.Label))
	b.WriteString(fmt.Sprintf("  %s\n", sig.Commentary))
	if rep.Previous != nil && *rep.Previous != sig.Label {
		b.WriteString(fmt.Sprintf("  changed from %s\n", *rep.Previous))
	}
	b.WriteString("\n")

	b.WriteString(fmt.Sprintf("Sentiment score: %+.4f (%d headlines)\n", sig.Score, len(rep.Headlines)))
	b.WriteString(fmt.Sprintf("Last close: %.2f | Average: %.2f (%d bars)\n", sig.LastPrice, sig.AvgPrice, sig.BarCount))

	ind := rep.Indicators
	b.WriteString(fmt.Sprintf("Range: %.2f - %.2f | Change: %+.1f%%\n", ind.Low, ind.High, ind.ChangePct))
	if ind.HasBands {
		b.WriteString(fmt.Sprintf("MA20: %.2f | Bands: %.2f / %.2f\n", ind.MA20, ind.Lower, ind.Upper))
	}

	if hs := recentHeadlines(rep.Headlines, MaxReportHeadlines); len(hs) > 0 {
		b.WriteString("\n📰 <b>Headlines:</b>\n")
		for _, h := range hs {
			b.WriteString(fmt.Sprintf("  %+.2f %s %s\n", h.Compound, h.Date.Format("01-02"), html.EscapeString(h.Headline)))
		}
	}

	if len(rep.Daily) > 0 {
		b.WriteString("\n🗓 <b>Daily sentiment:</b>\n")
		for _, d := range rep.Daily {
			b.WriteString(fmt.Sprintf("  %s %+.4f %s (%d)\n", d.Date.Format("2006-01-02"), d.Mean, bar(d.Mean), d.Count))
		}
	}

	if len(rep.TopTerms) > 0 {
		terms := make([]string, len(rep.TopTerms))
		for i, t := range rep.TopTerms {
			terms[i] = fmt.Sprintf("%s×%d", t.Term, t.Count)
		}
		b.WriteString(fmt.Sprintf("\n🔤 Top terms: %s\n", html.EscapeString(strings.Join(terms, ", "))))
	}

	if len(rep.SourceErrors) > 0 {
		b.WriteString(fmt.Sprintf("\n⚠️ Skipped sources: %s\n", strings.Join(sourceNames(rep.SourceErrors), ", ")))
	}
	return b.String()
}

// FormatNoData reports a run that did not reach a prediction.
func FormatNoData(rep *model.PredictionReport) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s <b>%s</b> | %s\n\n", labelIcon[model.TrendUncertain], html.EscapeString(rep.Ticker), rep.GeneratedAt.Format("2006-01-02")))
	b.WriteString(fmt.Sprintf("Predicted Trend: <b>Uncertain</b> (%s)\n", strings.ReplaceAll(rep.Status, "_", " ")))
	if rep.Err != nil {
		b.WriteString(fmt.Sprintf("Reason: %s\n", html.EscapeString(rep.Err.Error())))
	}
	return b.String()
}

// FormatHistory lists recorded predictions for a ticker, newest first.
func FormatHistory(ticker string, recs []recorder.PredictionRecord) string {
	if len(recs) == 0 {
		return fmt.Sprintf("No predictions recorded for %s yet.", html.EscapeString(ticker))
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🗂 <b>%s history</b>\n\n", html.EscapeString(ticker)))
	for _, r := range recs {
		prefix := fmt.Sprintf("<code>%s</code> %s", html.EscapeString(ShortRunID(r.RunID)), r.CreatedAt.Format("2006-01-02 15:04"))
		if r.Status != model.StatusOK {
			b.WriteString(fmt.Sprintf("%s  %s %s (%s)\n", prefix, labelIcon[r.Label], r.Label, r.Status))
			continue
		}
		b.WriteString(fmt.Sprintf("%s  %s %s  score %+.4f  last %.2f  avg %.2f\n",
			prefix, labelIcon[r.Label], r.Label, r.Score, r.LastPrice, r.AvgPrice))
	}
	b.WriteString("\nUse /headlines RUN_ID for the scored headlines of a run.")
	return b.String()
}

// ShortRunID is the run ID prefix shown in history listings.
func ShortRunID(runID string) string {
	if len(runID) > 8 {
		return runID[:8]
	}
	return runID
}

// FormatRunHeadlines lists the scored headlines stored for one run.
func FormatRunHeadlines(runID string, scores []recorder.HeadlineScore) string {
	if len(scores) == 0 {
		return fmt.Sprintf("No headlines stored for run %s.", html.EscapeString(ShortRunID(runID)))
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🧾 <b>Run %s</b> (%d headlines)\n\n", html.EscapeString(ShortRunID(runID)), len(scores)))
	for _, s := range scores {
		b.WriteString(fmt.Sprintf("  %+.4f %s %s", s.Compound, s.Date.Format("01-02"), html.EscapeString(s.Headline)))
		if s.Source != "" {
			b.WriteString(fmt.Sprintf(" (%s)", html.EscapeString(s.Source)))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// FormatDailySummary condenses several reports into one message.
func FormatDailySummary(reports []*model.PredictionReport) string {
	var b strings.Builder
	b.WriteString("📊 <b>TickerSentinel daily run</b>\n\n")
	for _, rep := range reports {
		label := rep.Label()
		if rep.Signal == nil {
			b.WriteString(fmt.Sprintf("%s %s: %s (%s)\n", labelIcon[label], html.EscapeString(rep.Ticker), label, rep.Status))
			continue
		}
		b.WriteString(fmt.Sprintf("%s %s: %s  score %+.4f\n", labelIcon[label], html.EscapeString(rep.Ticker), label, rep.Score))
	}
	return b.String()
}

func recentHeadlines(hs []model.AnnotatedHeadline, n int) []model.AnnotatedHeadline {
	out := make([]model.AnnotatedHeadline, len(hs))
	copy(out, hs)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// bar renders a compound mean in [-1, 1] as a short block bar.
func bar(v float64) string {
	n := int(v*5 + 0.5*sign(v))
	switch {
	case n > 0:
		return strings.Repeat("▮", n)
	case n < 0:
		return strings.Repeat("▯", -n)
	}
	return "·"
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}

func sourceNames(errs map[string]error) []string {
	names := make([]string, 0, len(errs))
	for name := range errs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
