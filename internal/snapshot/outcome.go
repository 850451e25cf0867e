package snapshot

import (
	"errors"

	"TickerSentinel/internal/model"
)

// Status tags how Load obtained its snapshot.
type Status int

const (
	// StatusOK means the snapshot was read and parsed.
	StatusOK Status = iota
	// StatusNoData means the file was missing or unreadable.
	StatusNoData
	// StatusInvalid means the file existed but broke the format.
	StatusInvalid
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusNoData:
		return "no_data"
	default:
		return "invalid"
	}
}

// Outcome is the result of Load. On any failure Snapshot is empty with a
// zero score, and Err keeps the cause.
type Outcome struct {
	Snapshot model.Snapshot
	Status   Status
	Err      error
}

// Load reads path and never fails outright: an unreadable file yields an
// empty snapshot tagged StatusNoData, a malformed one StatusInvalid.
func Load(path string) Outcome {
	snap, err := ReadFile(path)
	switch {
	case err == nil:
		return Outcome{Snapshot: snap, Status: StatusOK}
	case errors.Is(err, model.ErrIO):
		return Outcome{Status: StatusNoData, Err: err}
	default:
		return Outcome{Status: StatusInvalid, Err: err}
	}
}

// HasData reports whether the outcome carries at least one bar.
func (o Outcome) HasData() bool {
	return o.Status == StatusOK && len(o.Snapshot.Bars) > 0
}
