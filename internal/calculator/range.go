package calculator

import (
	"errors"
	"math"

	"TickerSentinel/internal/model"
)

// CalculateCloseRange returns the highest and lowest close in bars.
func CalculateCloseRange(bars []model.PriceBar) (high, low float64, err error) {
	if len(bars) == 0 {
		return 0, 0, errors.New("no bars provided")
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	for _, b := range bars {
		if b.Close > high {
			high = b.Close
		}
		if b.Close < low {
			low = b.Close
		}
	}
	return high, low, nil
}

// CalculateChange returns the percentage change from the first to the last close.
func CalculateChange(bars []model.PriceBar) (float64, error) {
	if len(bars) < 2 {
		return 0, errors.New("need at least two bars")
	}
	first := bars[0].Close
	if first == 0 {
		return 0, errors.New("first close is zero")
	}
	return (bars[len(bars)-1].Close - first) / first * 100, nil
}

// AverageVolume returns the mean traded volume.
func AverageVolume(bars []model.PriceBar) float64 {
	if len(bars) == 0 {
		return 0
	}
	var sum int64
	for _, b := range bars {
		sum += b.Volume
	}
	return float64(sum) / float64(len(bars))
}
