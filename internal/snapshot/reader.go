package snapshot

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"TickerSentinel/internal/model"
)

// MaxLineBytes is the longest snapshot line Read accepts.
const MaxLineBytes = 1 << 20

var dateLayouts = []string{
	DateLayout,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05-07:00",
	time.RFC3339,
}

// Read parses a snapshot. Any malformed bar line aborts the read with a
// *model.ParseError; a missing, repeated or misplaced sentiment line fails
// with model.ErrProtocol.
func Read(r io.Reader) (model.Snapshot, error) {
	var (
		snap     model.Snapshot
		scoreSet bool
		lineNo   int
	)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), MaxLineBytes)
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, SentimentPrefix) {
			if scoreSet {
				return model.Snapshot{}, fmt.Errorf("%w: duplicate sentiment line at line %d", model.ErrProtocol, lineNo)
			}
			score, err := parseScore(line)
			if err != nil {
				return model.Snapshot{}, &model.ParseError{Line: lineNo, Text: line, Err: err}
			}
			snap.Score = score
			scoreSet = true
			continue
		}

		if scoreSet {
			return model.Snapshot{}, fmt.Errorf("%w: bar after sentiment line at line %d", model.ErrProtocol, lineNo)
		}
		bar, err := parseBar(line)
		if err != nil {
			return model.Snapshot{}, &model.ParseError{Line: lineNo, Text: line, Err: err}
		}
		snap.Bars = append(snap.Bars, bar)
	}
	if err := sc.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return model.Snapshot{}, &model.ParseError{
				Line: lineNo + 1,
				Err:  fmt.Errorf("line longer than %d bytes", MaxLineBytes),
			}
		}
		return model.Snapshot{}, fmt.Errorf("%w: %v", model.ErrIO, err)
	}
	if !scoreSet {
		return model.Snapshot{}, fmt.Errorf("%w: missing %q line", model.ErrProtocol, SentimentPrefix)
	}
	return snap, nil
}

// ReadFile opens and parses the snapshot at path. Open failures wrap
// model.ErrIO.
func ReadFile(path string) (model.Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("%w: %v", model.ErrIO, err)
	}
	defer f.Close()
	return Read(f)
}

func parseScore(line string) (float64, error) {
	_, raw, ok := strings.Cut(line, ":")
	if !ok {
		return 0, errors.New("sentiment line has no ':'")
	}
	score, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("sentiment score: %w", err)
	}
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return 0, fmt.Errorf("sentiment score %v is not finite", score)
	}
	return score, nil
}

func parseBar(line string) (model.PriceBar, error) {
	fields := strings.Split(line, ",")
	if len(fields) != 3 {
		return model.PriceBar{}, fmt.Errorf("expected 3 fields, got %d", len(fields))
	}
	date, err := parseDate(strings.TrimSpace(fields[0]))
	if err != nil {
		return model.PriceBar{}, err
	}
	price, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
	if err != nil {
		return model.PriceBar{}, fmt.Errorf("price: %w", err)
	}
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return model.PriceBar{}, fmt.Errorf("price %v is not finite", price)
	}
	volume, err := parseVolume(strings.TrimSpace(fields[2]))
	if err != nil {
		return model.PriceBar{}, err
	}
	return model.PriceBar{Date: date, Close: price, Volume: volume}, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

// parseVolume accepts integers and integral floats such as "1200.0".
func parseVolume(s string) (int64, error) {
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("volume: %w", err)
	}
	if f != math.Trunc(f) || f < 0 || f > math.MaxInt64 {
		return 0, fmt.Errorf("volume %q is not a whole number", s)
	}
	return int64(f), nil
}
