package form

import (
	"context"
	"sync"
)

// DefaultMaxHistory is the default bound on the history log.
const DefaultMaxHistory = 50

// EntryKind distinguishes history entry kinds.
type EntryKind int

const (
	// EntryCommit tags a per-iteration commit.
	EntryCommit EntryKind = iota + 1
	// EntryMerge tags a squashed run-level merge.
	EntryMerge
)

// Entry is one tagged element of the history log: either a Commit or a
// Merge, in chronological append order.
type Entry struct {
	Kind   EntryKind
	Commit *Commit
	Merge  *Merge
}

// HistorySink receives every entry appended to the history log, before
// any eviction. Sinks are optional; the SQLite journal implements this
// interface for audit trails. Sink failures are logged and never affect
// the run that produced the entry.
type HistorySink interface {
	WriteCommit(ctx context.Context, c Commit) error
	WriteMerge(ctx context.Context, m Merge) error
}

// history is a bounded, append-only log of commits and merges.
// Exceeding the bound evicts the oldest entries first, independent of
// entry kind.
//
// The run loop appends; snapshots may be taken from any goroutine.
type history struct {
	mu      sync.Mutex
	max     int
	entries []Entry
}

func newHistory(max int) *history {
	return &history{max: max}
}

func (h *history) append(e Entry) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = append(h.entries, e)
	if over := len(h.entries) - h.max; over > 0 {
		// Copy down instead of reslicing so evicted entries are released.
		kept := make([]Entry, h.max)
		copy(kept, h.entries[over:])
		h.entries = kept
	}
}

func (h *history) snapshot() []Entry {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]Entry, len(h.entries))
	copy(out, h.entries)
	return out
}

func (h *history) len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}
