package snapshot

import (
	"fmt"
	"io"
	"os"
	"strings"

	"TickerSentinel/internal/model"
)

// ResultPrefix starts the single line of a prediction result file.
const ResultPrefix = "Predicted Trend: "

// WriteResultFile atomically replaces path with the prediction line.
func WriteResultFile(path string, label model.TrendLabel) error {
	return atomicWrite(path, func(w io.Writer) error {
		_, err := io.WriteString(w, ResultPrefix+label.String()+"\n")
		return err
	})
}

// ReadResultFile reads a prediction written by WriteResultFile.
func ReadResultFile(path string) (model.TrendLabel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.TrendUncertain, fmt.Errorf("%w: %v", model.ErrIO, err)
	}
	line := strings.TrimSpace(string(data))
	raw, ok := strings.CutPrefix(line, strings.TrimSpace(ResultPrefix))
	if !ok {
		return model.TrendUncertain, fmt.Errorf("%w: result line %q", model.ErrProtocol, line)
	}
	return model.ParseTrendLabel(raw)
}
