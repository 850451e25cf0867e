package calculator

import (
	"errors"
	"math"

	"github.com/cinar/indicator"

	"TickerSentinel/internal/model"
)

// CalculateMean returns the arithmetic mean of prices.
func CalculateMean(prices []float64) (float64, error) {
	if len(prices) == 0 {
		return 0, errors.New("no prices")
	}
	sum := 0.0
	for _, p := range prices {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return 0, errors.New("price is not finite")
		}
		sum += p
	}
	return sum / float64(len(prices)), nil
}

// Bands is the latest 20-day moving average with its 2σ envelope.
type Bands struct {
	Middle float64
	Upper  float64
	Lower  float64
}

// BandPeriod is the window used by CalculateBands.
const BandPeriod = 20

// CalculateBands returns the 20-day Bollinger bands at the last bar.
func CalculateBands(bars []model.PriceBar) (Bands, error) {
	if len(bars) < BandPeriod {
		return Bands{}, errors.New("not enough data for 20-day bands")
	}
	middle, upper, lower := indicator.BollingerBands(model.Closes(bars))
	n := len(middle) - 1
	return Bands{Middle: middle[n], Upper: upper[n], Lower: lower[n]}, nil
}
