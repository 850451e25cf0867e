package sentiment

import (
	"strings"
	"unicode/utf8"

	"github.com/jonreiter/govader"
	"github.com/shopspring/decimal"

	"TickerSentinel/internal/model"
)

// punctuation is trimmed from both ends of a token before lexicon lookup.
const punctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// Analyzer scores text with VADER: lexicon valences adjusted for negation,
// boosters, capitalisation, "but" and punctuation emphasis.
type Analyzer struct {
	vader *govader.SentimentIntensityAnalyzer
	lex   *Lexicon
}

// NewAnalyzer creates an analyzer over lex. A nil lex selects DefaultLexicon.
func NewAnalyzer(lex *Lexicon) *Analyzer {
	base := sharedVader()
	if lex == nil || lex == DefaultLexicon() {
		return &Analyzer{vader: base, lex: DefaultLexicon()}
	}
	// The emoji table and rule constants are read-only and shared.
	custom := *base
	custom.Lexicon = lex.valence
	return &Analyzer{vader: &custom, lex: lex}
}

// Lexicon returns the lexicon backing the analyzer.
func (a *Analyzer) Lexicon() *Lexicon { return a.lex }

// PolarityScores returns the negative, neutral and positive proportions,
// rounded to 3 places, and the normalised compound score rounded to 4.
func (a *Analyzer) PolarityScores(text string) model.SentimentVector {
	s := a.vader.PolarityScores(text)
	return model.SentimentVector{
		Negative: round(s.Negative, 3),
		Neutral:  round(s.Neutral, 3),
		Positive: round(s.Positive, 3),
		Compound: round(s.Compound, 4),
	}
}

func round(x float64, places int32) float64 {
	return decimal.NewFromFloat(x).Round(places).InexactFloat64()
}

// tokenize splits on whitespace and trims surrounding punctuation from words.
// Short tokens such as emoticons are kept as written.
func tokenize(text string) []string {
	fields := strings.Fields(text)
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		stripped := strings.Trim(f, punctuation)
		if utf8.RuneCountInString(stripped) <= 2 {
			tokens = append(tokens, f)
			continue
		}
		tokens = append(tokens, stripped)
	}
	return tokens
}
