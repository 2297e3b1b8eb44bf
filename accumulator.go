package tally

import (
	"sync"
	"time"
)

// Accumulator counts elements across a shared mapping in two stages. Convert
// copies the mapping into a Snapshot while holding the lock that guards the
// source; Compute traverses the copy without it. The split lets compute work
// run on a worker goroutine in parallel with anything else the lock covers.
type Accumulator struct {
	mu    sync.Locker
	stats Stats
}

// NewAccumulator returns an accumulator guarding its source with lock and
// reporting to stats. A nil lock gets a private mutex, a nil stats reporter
// gets a no-op one.
func NewAccumulator(lock sync.Locker, stats Stats) *Accumulator {
	if lock == nil {
		lock = &sync.Mutex{}
	}
	if stats == nil {
		stats = NopStats{}
	}
	return &Accumulator{mu: lock, stats: stats}
}

// Convert copies m into a Snapshot. The lock is held for the duration of the
// copy and released before returning, so the snapshot can be handed to a
// worker while the source stays live.
func (a *Accumulator) Convert(m Mapping) Snapshot {
	start := time.Now()

	a.mu.Lock()
	entries := make([]Entry, 0, len(m))
	for key, values := range m {
		entries = append(entries, Entry{
			Key:    key,
			Values: append([]int64(nil), values...),
		})
	}
	a.mu.Unlock()

	a.stats.IncConverted()
	a.stats.ObserveConvertDuration(time.Since(start))
	a.stats.SetSnapshotEntries(len(entries))

	return Snapshot{entries: entries}
}

// Compute runs the lock-free stage on snap and reports the element count.
func (a *Accumulator) Compute(snap Snapshot) int {
	start := time.Now()
	total := snap.Total()

	a.stats.IncComputed()
	a.stats.ObserveComputeDuration(time.Since(start))

	return total
}

// Total converts m and computes its element count in one call.
func (a *Accumulator) Total(m Mapping) int {
	return a.Compute(a.Convert(m))
}
