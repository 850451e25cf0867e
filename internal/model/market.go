package model

import "time"

// PriceBar is one daily bar as carried through the snapshot.
type PriceBar struct {
	Date   time.Time
	Close  float64
	Volume int64
}

// PriceSeries holds the bars fetched for one ticker.
type PriceSeries struct {
	Symbol    string
	Bars      []PriceBar
	FetchedAt time.Time
}

// Closes returns the close prices in bar order.
func Closes(bars []PriceBar) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}
