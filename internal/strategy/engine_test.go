package strategy

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TickerSentinel/internal/model"
)

func bars(closes ...float64) []model.PriceBar {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]model.PriceBar, len(closes))
	for i, c := range closes {
		out[i] = model.PriceBar{Date: start.AddDate(0, 0, i), Close: c, Volume: 1000 + int64(i)*200}
	}
	return out
}

func TestClassify_Scenarios(t *testing.T) {
	tests := []struct {
		name  string
		bars  []model.PriceBar
		score float64
		want  model.TrendLabel
	}{
		{"falling price, negative sentiment", bars(100, 90), -0.5, model.TrendUncertain},
		{"deeper fall, negative sentiment", bars(100, 80), -0.2, model.TrendUncertain},
		{"rising price, positive sentiment", bars(80, 100), 0.3, model.TrendUncertain},
		{"falling price, positive sentiment", bars(100, 80), 0.1, model.TrendRise},
		{"rising price, negative sentiment", bars(80, 100), -0.4, model.TrendFall},
		{"single bar", bars(50), 0.9, model.TrendUncertain},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Classify(tt.bars, tt.score)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassify_ZeroScoreIsAlwaysUncertain(t *testing.T) {
	for _, b := range [][]model.PriceBar{bars(100, 80), bars(80, 100), bars(90, 90)} {
		got, err := Classify(b, 0)
		require.NoError(t, err)
		assert.Equal(t, model.TrendUncertain, got)
	}
}

func TestClassify_AvgEqualsLastIsAlwaysUncertain(t *testing.T) {
	for _, score := range []float64{-1, -0.3, 0.3, 1} {
		got, err := Classify(bars(90, 110, 100), score)
		require.NoError(t, err)
		assert.Equal(t, model.TrendUncertain, got)
	}
}

func TestClassify_Totality(t *testing.T) {
	series := [][]model.PriceBar{bars(1), bars(1, 2), bars(2, 1), bars(5, 5, 5), bars(10, 3, 7, 12)}
	scores := []float64{-1, -0.0001, 0, 0.0001, 1}
	for _, b := range series {
		for _, s := range scores {
			got, err := Classify(b, s)
			require.NoError(t, err)
			assert.Contains(t, []model.TrendLabel{model.TrendRise, model.TrendFall, model.TrendUncertain}, got)
		}
	}
}

func TestClassify_DoesNotReorderBars(t *testing.T) {
	b := bars(100, 80)
	// Swap dates so the slice is no longer chronological; the final element still counts as last.
	b[0].Date, b[1].Date = b[1].Date, b[0].Date
	got, err := Classify(b, 0.1)
	require.NoError(t, err)
	assert.Equal(t, model.TrendRise, got)
}

func TestEvaluate_InsufficientData(t *testing.T) {
	_, err := Evaluate(nil, 0.5)
	assert.ErrorIs(t, err, model.ErrInsufficientData)

	_, err = Classify(bars(100, math.NaN()), 0.5)
	assert.ErrorIs(t, err, model.ErrInsufficientData)
}

func TestEvaluate_ReportsInputs(t *testing.T) {
	sig, err := Evaluate(bars(100, 80), 0.1)
	require.NoError(t, err)
	assert.Equal(t, 90.0, sig.AvgPrice)
	assert.Equal(t, 80.0, sig.LastPrice)
	assert.Equal(t, 2, sig.BarCount)
	assert.Equal(t, 0.1, sig.Score)
	assert.Equal(t, "Rise", sig.Label.String())
	assert.NotEmpty(t, sig.Commentary)
}
