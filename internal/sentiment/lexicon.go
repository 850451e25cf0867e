package sentiment

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/jonreiter/govader"
)

// Lexicon maps lowercase tokens to a valence in roughly [-4, 4].
// It is read-only once built and safe for concurrent use.
type Lexicon struct {
	valence map[string]float64
}

var (
	vaderOnce      sync.Once
	vader          *govader.SentimentIntensityAnalyzer
	defaultLexicon *Lexicon
)

// sharedVader builds the govader analyzer once; loading its lexicon and
// emoji tables is the expensive part.
func sharedVader() *govader.SentimentIntensityAnalyzer {
	vaderOnce.Do(func() {
		vader = govader.NewSentimentIntensityAnalyzer()
		defaultLexicon = &Lexicon{valence: vader.Lexicon}
	})
	return vader
}

// DefaultLexicon returns the full VADER lexicon.
func DefaultLexicon() *Lexicon {
	sharedVader()
	return defaultLexicon
}

// ParseLexicon reads a tab separated lexicon. Each line holds a token and its
// mean valence; any further columns are ignored. Blank lines and lines
// starting with '#' are skipped.
func ParseLexicon(r io.Reader) (*Lexicon, error) {
	lex := &Lexicon{valence: make(map[string]float64)}
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimRight(sc.Text(), "\r\n")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 2 {
			return nil, fmt.Errorf("lexicon line %d: expected token and valence", lineNo)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("lexicon line %d: %w", lineNo, err)
		}
		lex.valence[strings.ToLower(fields[0])] = v
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read lexicon: %w", err)
	}
	return lex, nil
}

// LoadLexicon reads the lexicon file at path and layers it over the default
// lexicon, so domain terms can be added or re-weighted.
func LoadLexicon(path string) (*Lexicon, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open lexicon: %w", err)
	}
	defer f.Close()

	extra, err := ParseLexicon(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return DefaultLexicon().Extend(extra), nil
}

// Extend returns a new lexicon holding l's entries overridden by other's.
func (l *Lexicon) Extend(other *Lexicon) *Lexicon {
	merged := make(map[string]float64, len(l.valence)+len(other.valence))
	for k, v := range l.valence {
		merged[k] = v
	}
	for k, v := range other.valence {
		merged[k] = v
	}
	return &Lexicon{valence: merged}
}

// Valence returns the valence of a lowercase token.
func (l *Lexicon) Valence(token string) (float64, bool) {
	v, ok := l.valence[token]
	return v, ok
}

// Contains reports whether the lowercase token carries a valence.
func (l *Lexicon) Contains(token string) bool {
	_, ok := l.valence[token]
	return ok
}

// Len returns the number of entries.
func (l *Lexicon) Len() int { return len(l.valence) }
