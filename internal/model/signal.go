package model

import (
	"fmt"
	"strings"
)

// TrendLabel is the three-way classifier output.
type TrendLabel int

const (
	TrendUncertain TrendLabel = iota
	TrendRise
	TrendFall
)

func (l TrendLabel) String() string {
	switch l {
	case TrendRise:
		return "Rise"
	case TrendFall:
		return "Fall"
	default:
		return "Uncertain"
	}
}

// ParseTrendLabel is the inverse of TrendLabel.String.
func ParseTrendLabel(s string) (TrendLabel, error) {
	switch strings.TrimSpace(s) {
	case "Rise":
		return TrendRise, nil
	case "Fall":
		return TrendFall, nil
	case "Uncertain":
		return TrendUncertain, nil
	}
	return TrendUncertain, fmt.Errorf("unknown trend label %q", s)
}

// Snapshot is the handoff message between the collect and predict stages.
type Snapshot struct {
	Bars  []PriceBar
	Score float64
}

// TrendSignal is the classifier output together with its inputs.
type TrendSignal struct {
	Label      TrendLabel
	Score      float64
	AvgPrice   float64
	LastPrice  float64
	BarCount   int
	Commentary string
}
