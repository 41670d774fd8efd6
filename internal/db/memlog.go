package db

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemLog is an in-memory append-only decision log for embedding and
// tests. A mutex guards the sequence so concurrent appends never
// interleave; insertion order is the order appends complete.
type MemLog struct {
	mu      sync.Mutex
	entries []*Decision
}

// NewMemLog creates an empty in-memory log.
func NewMemLog() *MemLog {
	return &MemLog{}
}

// Append implements Recorder.
func (l *MemLog) Append(d *Decision) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}

	cp := *d
	l.entries = append(l.entries, &cp)
	return nil
}

// Entries returns a copy of the full ordered sequence.
func (l *MemLog) Entries() []*Decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]*Decision, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of recorded decisions.
func (l *MemLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
