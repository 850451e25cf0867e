package strategy

import (
	"fmt"

	"TickerSentinel/internal/calculator"
	"TickerSentinel/internal/model"
)

// Evaluate applies the two-signal trend rule to bars and a sentiment score:
//
//	score > 0 and avg > last  -> Rise
//	score < 0 and avg < last  -> Fall
//	otherwise                 -> Uncertain
//
// avg is the mean close of all bars and last is the close of the final bar.
// Bars are taken in the order given. Comparisons are strict, so a zero score
// or avg == last is always Uncertain.
func Evaluate(bars []model.PriceBar, score float64) (*model.TrendSignal, error) {
	if len(bars) == 0 {
		return nil, model.ErrInsufficientData
	}
	avg, err := calculator.CalculateMean(model.Closes(bars))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrInsufficientData, err)
	}
	last := bars[len(bars)-1].Close

	signal := &model.TrendSignal{
		Score:     score,
		AvgPrice:  avg,
		LastPrice: last,
		BarCount:  len(bars),
	}

	switch {
	case score > 0 && avg > last:
		signal.Label = model.TrendRise
		signal.Commentary = "positive sentiment, price below its average"
	case score < 0 && avg < last:
		signal.Label = model.TrendFall
		signal.Commentary = "negative sentiment, price above its average"
	default:
		signal.Label = model.TrendUncertain
		signal.Commentary = uncertainReason(score, avg, last)
	}
	return signal, nil
}

// Classify returns only the label of Evaluate.
func Classify(bars []model.PriceBar, score float64) (model.TrendLabel, error) {
	sig, err := Evaluate(bars, score)
	if err != nil {
		return model.TrendUncertain, err
	}
	return sig.Label, nil
}

func uncertainReason(score, avg, last float64) string {
	switch {
	case score == 0:
		return "neutral sentiment"
	case avg == last:
		return "price at its average"
	case score > 0:
		return "positive sentiment, price above its average"
	default:
		return "negative sentiment, price below its average"
	}
}
