package sentiment

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"TickerSentinel/internal/model"
)

// Scorer aggregates per-headline compound scores into one value per ticker.
type Scorer struct {
	analyzer *Analyzer
	now      func() time.Time
}

// Option configures a Scorer.
type Option func(*Scorer)

// WithClock overrides the clock used for window filtering.
func WithClock(now func() time.Time) Option {
	return func(s *Scorer) { s.now = now }
}

// NewScorer creates a Scorer backed by analyzer.
func NewScorer(analyzer *Analyzer, opts ...Option) *Scorer {
	s := &Scorer{analyzer: analyzer, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score returns the mean compound score of the headlines dated within the
// last windowDays days, rounded to 4 decimal places. windowDays <= 0 keeps
// every headline. It fails with model.ErrEmptyInput when nothing is left.
func (s *Scorer) Score(headlines []model.HeadlineRecord, windowDays int) (float64, error) {
	kept := s.filter(headlines, windowDays)
	if len(kept) == 0 {
		return 0, model.ErrEmptyInput
	}
	sum := decimal.Zero
	for _, h := range kept {
		c := s.analyzer.PolarityScores(h.Headline).Compound
		sum = sum.Add(decimal.NewFromFloat(c))
	}
	mean := sum.Div(decimal.NewFromInt(int64(len(kept))))
	return mean.Round(4).InexactFloat64(), nil
}

// Annotate applies the same window as Score and attaches each headline's
// sentiment vector.
func (s *Scorer) Annotate(headlines []model.HeadlineRecord, windowDays int) []model.AnnotatedHeadline {
	kept := s.filter(headlines, windowDays)
	out := make([]model.AnnotatedHeadline, len(kept))
	for i, h := range kept {
		out[i] = model.AnnotatedHeadline{
			HeadlineRecord:  h,
			SentimentVector: s.analyzer.PolarityScores(h.Headline),
		}
	}
	return out
}

func (s *Scorer) filter(headlines []model.HeadlineRecord, windowDays int) []model.HeadlineRecord {
	if windowDays <= 0 {
		return headlines
	}
	oldest := civilDate(s.now()).AddDate(0, 0, -windowDays)
	kept := make([]model.HeadlineRecord, 0, len(headlines))
	for _, h := range headlines {
		if !civilDate(h.Date).Before(oldest) {
			kept = append(kept, h)
		}
	}
	return kept
}

func civilDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DailyMeans groups annotated headlines by calendar day and returns the mean
// compound per day in ascending date order.
func DailyMeans(annotated []model.AnnotatedHeadline) []model.DailySentiment {
	type acc struct {
		sum   float64
		count int
	}
	byDay := make(map[time.Time]*acc)
	for _, a := range annotated {
		day := civilDate(a.Date)
		e, ok := byDay[day]
		if !ok {
			e = &acc{}
			byDay[day] = e
		}
		e.sum += a.Compound
		e.count++
	}
	out := make([]model.DailySentiment, 0, len(byDay))
	for day, e := range byDay {
		out = append(out, model.DailySentiment{
			Date:  day,
			Mean:  round(e.sum/float64(e.count), 4),
			Count: e.count,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// TopTerms returns the n most frequent lexicon terms in the headlines,
// ties broken alphabetically.
func (s *Scorer) TopTerms(annotated []model.AnnotatedHeadline, n int) []model.TermCount {
	lex := s.analyzer.Lexicon()
	counts := make(map[string]int)
	for _, a := range annotated {
		for _, tok := range tokenize(a.Headline) {
			t := strings.ToLower(tok)
			if lex.Contains(t) {
				counts[t]++
			}
		}
	}
	terms := make([]model.TermCount, 0, len(counts))
	for t, c := range counts {
		terms = append(terms, model.TermCount{Term: t, Count: c})
	}
	sort.Slice(terms, func(i, j int) bool {
		if terms[i].Count != terms[j].Count {
			return terms[i].Count > terms[j].Count
		}
		return terms[i].Term < terms[j].Term
	})
	if n > 0 && len(terms) > n {
		terms = terms[:n]
	}
	return terms
}
