package snapshot

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/shopspring/decimal"

	"TickerSentinel/internal/model"
)

const (
	// SentimentPrefix starts the trailing score line of a snapshot.
	SentimentPrefix = "Sentiment Score"
	// DateLayout is the date format written for each bar.
	DateLayout = "2006-01-02"
)

// Write serialises bars in the given order followed by the sentiment line.
// Dates are written as UTC calendar days. Nothing is written when the score
// is not finite or a close is not a finite positive price.
func Write(w io.Writer, bars []model.PriceBar, score float64) error {
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return fmt.Errorf("sentiment score %v is not finite", score)
	}
	for i, b := range bars {
		if math.IsNaN(b.Close) || math.IsInf(b.Close, 0) || b.Close <= 0 {
			return fmt.Errorf("bar %d (%s): close %v is not a positive price", i, b.Date.UTC().Format(DateLayout), b.Close)
		}
	}
	bw := bufio.NewWriter(w)
	for _, b := range bars {
		line := b.Date.UTC().Format(DateLayout) + "," +
			strconv.FormatFloat(b.Close, 'f', -1, 64) + "," +
			strconv.FormatInt(b.Volume, 10) + "\n"
		if _, err := bw.WriteString(line); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(bw, "%s: %s\n", SentimentPrefix, decimal.NewFromFloat(score).StringFixed(4)); err != nil {
		return err
	}
	return bw.Flush()
}

// WriteFile replaces path with a snapshot of bars and score. The content is
// written to a temporary file in the same directory and renamed over path,
// so a concurrent reader sees either the previous file or the new one.
func WriteFile(path string, bars []model.PriceBar, score float64) error {
	return atomicWrite(path, func(w io.Writer) error {
		return Write(w, bars, score)
	})
}

func atomicWrite(path string, fill func(io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w: create dir %s: %v", model.ErrWrite, dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: create temp file: %v", model.ErrWrite, err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = fill(tmp); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("%w: sync %s: %v", model.ErrWrite, tmp.Name(), err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %v", model.ErrWrite, tmp.Name(), err)
	}
	if err = os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("%w: chmod %s: %v", model.ErrWrite, tmp.Name(), err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("%w: replace %s: %v", model.ErrWrite, path, err)
	}
	return nil
}
