package snapshot

import (
	"fmt"
	"sync"

	"TickerSentinel/internal/model"
)

// Mailbox carries one snapshot from the collect stage to the predict stage.
// It holds at most one message; Put replaces whatever has not been taken.
// Implementations assume a single producer and a single consumer per slot.
type Mailbox interface {
	Put(snap model.Snapshot) error
	Take() (model.Snapshot, error)
}

// FileMailbox stores the snapshot at Path using the text format. Take leaves
// the file in place so the standalone predict command can read it again.
// Concurrent pipelines must use distinct paths; no locking is done.
type FileMailbox struct {
	Path string
}

// NewFileMailbox returns a mailbox backed by path.
func NewFileMailbox(path string) *FileMailbox {
	return &FileMailbox{Path: path}
}

func (m *FileMailbox) Put(snap model.Snapshot) error {
	return WriteFile(m.Path, snap.Bars, snap.Score)
}

func (m *FileMailbox) Take() (model.Snapshot, error) {
	return ReadFile(m.Path)
}

// MemoryMailbox is an in-process single slot mailbox.
type MemoryMailbox struct {
	mu   sync.Mutex
	snap *model.Snapshot
}

// NewMemoryMailbox returns an empty in-process mailbox.
func NewMemoryMailbox() *MemoryMailbox {
	return &MemoryMailbox{}
}

func (m *MemoryMailbox) Put(snap model.Snapshot) error {
	bars := make([]model.PriceBar, len(snap.Bars))
	copy(bars, snap.Bars)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = &model.Snapshot{Bars: bars, Score: snap.Score}
	return nil
}

// Take empties the slot. An empty slot fails with model.ErrIO, mirroring a
// missing file.
func (m *MemoryMailbox) Take() (model.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.snap == nil {
		return model.Snapshot{}, fmt.Errorf("%w: mailbox is empty", model.ErrIO)
	}
	snap := *m.snap
	m.snap = nil
	return snap, nil
}
