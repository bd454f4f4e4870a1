// SPDX-License-Identifier: MIT

package dataset

import (
	"sync/atomic"
	"time"
)

// Snapshot is an immutable view of the loaded dataset. Queries read from a
// snapshot; ingest swaps in a new one.
type Snapshot struct {
	Records  []Record
	Source   string
	LoadedAt time.Time
	Skipped  int
}

// Empty reports whether the snapshot holds no records.
func (s *Snapshot) Empty() bool { return s == nil || len(s.Records) == 0 }

// Holder provides lock-free access to the current dataset snapshot.
type Holder struct {
	current atomic.Pointer[Snapshot]
}

// NewHolder creates a holder with an empty snapshot.
func NewHolder() *Holder {
	h := &Holder{}
	h.current.Store(&Snapshot{})
	return h
}

// Current returns the active snapshot. Never nil.
func (h *Holder) Current() *Snapshot {
	return h.current.Load()
}

// Swap atomically replaces the active snapshot.
func (h *Holder) Swap(s *Snapshot) {
	if s == nil {
		s = &Snapshot{}
	}
	h.current.Store(s)
}
