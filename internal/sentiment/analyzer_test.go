package sentiment

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolarityScores_Rules(t *testing.T) {
	a := NewAnalyzer(nil)

	tests := []struct {
		name     string
		text     string
		compound float64
	}{
		{"single positive word", "good", 0.4404},
		{"negation", "not good", -0.3412},
		{"booster", "very good", 0.4927},
		{"exclamation", "good!", 0.4926},
		{"but shifts weight", "good but bad", -0.5859},
		{"caps emphasis in mixed case", "GOOD news", 0.5622},
		{"no scored words", "Apple to hold shareholder meeting", 0},
		{"empty", "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := a.PolarityScores(tt.text)
			assert.InDelta(t, tt.compound, got.Compound, 1e-9)
		})
	}
}

func TestPolarityScores_Proportions(t *testing.T) {
	a := NewAnalyzer(nil)

	v := a.PolarityScores("not good")
	assert.Equal(t, 0.706, v.Negative)
	assert.Equal(t, 0.294, v.Neutral)
	assert.Equal(t, 0.0, v.Positive)

	v = a.PolarityScores("good")
	assert.Equal(t, 1.0, v.Positive)
	assert.Equal(t, 0.0, v.Neutral)
}

func TestPolarityScores_AllCapsHeadlineGetsNoEmphasis(t *testing.T) {
	a := NewAnalyzer(nil)
	// Every token is upper case, so capitalisation carries no signal.
	assert.Equal(t, a.PolarityScores("good").Compound, a.PolarityScores("GOOD").Compound)
}

func TestPolarityScores_Range(t *testing.T) {
	a := NewAnalyzer(nil)
	texts := []string{
		"Shares soar to record as profits surge and outlook is excellent!!!",
		"Bankruptcy fears, fraud lawsuit and layoffs send stock into a crash",
		"never so bad",
		"at least it is not the worst",
		strings.Repeat("great ", 50),
	}
	for _, text := range texts {
		v := a.PolarityScores(text)
		assert.GreaterOrEqual(t, v.Compound, -1.0, text)
		assert.LessOrEqual(t, v.Compound, 1.0, text)
		assert.InDelta(t, 1.0, v.Negative+v.Neutral+v.Positive, 0.002, text)
	}
}

func TestParseLexicon(t *testing.T) {
	lex, err := ParseLexicon(strings.NewReader("# comment\nmoon\t2.5\t0.5\t[2, 3]\n\nrekt\t-3.0\n"))
	require.NoError(t, err)
	assert.Equal(t, 2, lex.Len())

	v, ok := lex.Valence("moon")
	require.True(t, ok)
	assert.Equal(t, 2.5, v)

	a := NewAnalyzer(lex)
	assert.Greater(t, a.PolarityScores("to the moon").Compound, 0.0)
	assert.Less(t, a.PolarityScores("got rekt").Compound, 0.0)
}

func TestParseLexicon_BadValence(t *testing.T) {
	_, err := ParseLexicon(strings.NewReader("moon\tlots\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 1")
}

func TestDefaultLexicon_IsFullVader(t *testing.T) {
	lex := DefaultLexicon()
	assert.Same(t, lex, DefaultLexicon())
	assert.Greater(t, lex.Len(), 7000)

	for word, want := range map[string]float64{"good": 1.9, "bad": -2.5, "win": 2.8, "fear": -2.2, "profits": 1.9} {
		v, ok := lex.Valence(word)
		require.True(t, ok, word)
		assert.Equal(t, want, v, word)
	}
}

func TestLoadLexicon_ExtendsDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "extra.tsv")
	require.NoError(t, os.WriteFile(path, []byte("surge\t1.5\nshares\t0\n"), 0o644))

	lex, err := LoadLexicon(path)
	require.NoError(t, err)
	assert.True(t, lex.Contains("good"))
	v, _ := lex.Valence("surge")
	assert.Equal(t, 1.5, v)
	v, _ = lex.Valence("shares")
	assert.Equal(t, 0.0, v)
	// The shared default is untouched.
	assert.False(t, DefaultLexicon().Contains("surge"))

	a := NewAnalyzer(lex)
	assert.Greater(t, a.PolarityScores("Chip sales surge").Compound, 0.0)
	assert.Equal(t, 0.0, NewAnalyzer(nil).PolarityScores("Chip sales surge").Compound)

	_, err = LoadLexicon(filepath.Join(t.TempDir(), "absent.tsv"))
	assert.ErrorContains(t, err, "open lexicon")
}
