package calculator

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TickerSentinel/internal/model"
)

func barsFromCloses(closes ...float64) []model.PriceBar {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]model.PriceBar, len(closes))
	for i, c := range closes {
		bars[i] = model.PriceBar{Date: start.AddDate(0, 0, i), Close: c, Volume: int64(1000 * (i + 1))}
	}
	return bars
}

func TestCalculateMean(t *testing.T) {
	m, err := CalculateMean([]float64{100, 90})
	require.NoError(t, err)
	assert.Equal(t, 95.0, m)

	_, err = CalculateMean(nil)
	assert.Error(t, err)

	_, err = CalculateMean([]float64{1, math.Inf(1)})
	assert.Error(t, err)
}

func TestCalculateBands_FlatSeries(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 50
	}
	b, err := CalculateBands(barsFromCloses(closes...))
	require.NoError(t, err)
	assert.InDelta(t, 50, b.Middle, 1e-9)
	assert.InDelta(t, 50, b.Upper, 1e-9)
	assert.InDelta(t, 50, b.Lower, 1e-9)

	_, err = CalculateBands(barsFromCloses(1, 2, 3))
	assert.Error(t, err)
}

func TestCalculateCloseRangeAndChange(t *testing.T) {
	bars := barsFromCloses(100, 120, 80, 110)
	high, low, err := CalculateCloseRange(bars)
	require.NoError(t, err)
	assert.Equal(t, 120.0, high)
	assert.Equal(t, 80.0, low)

	chg, err := CalculateChange(bars)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, chg, 1e-9)

	assert.Equal(t, 2500.0, AverageVolume(bars))
}
