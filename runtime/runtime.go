// Package runtime hosts mapping sources that live inside an embedded guest
// runtime. Every interaction with a guest is serialized by a single
// runtime-wide lock; snapshots taken here are computed on without it.
package runtime

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/zeerakw/tally"
)

// Guest exposes the entries owned by an embedded runtime. Implementations
// are not safe for concurrent use: callers must hold the Runtime lock.
type Guest interface {
	EntryCount(ctx context.Context) (int, error)
	Entry(ctx context.Context, i int) (tally.Entry, error)
}

// Runtime serializes access to a Guest behind the runtime-wide lock and
// produces plain snapshots for lock-free computation.
type Runtime struct {
	guest Guest
	stats tally.Stats

	mu sync.Mutex
}

func New(guest Guest, stats tally.Stats) *Runtime {
	if stats == nil {
		stats = tally.NopStats{}
	}
	return &Runtime{guest: guest, stats: stats}
}

// Snapshot runs the conversion stage: it acquires the runtime lock, copies
// every entry out of the guest into plain memory, and releases the lock. The
// returned snapshot owns its data exclusively, so callers may sum it on any
// goroutine with no lock held.
func (r *Runtime) Snapshot(ctx context.Context) (tally.Snapshot, error) {
	start := time.Now()

	r.mu.Lock()
	entries, err := r.copyEntries(ctx)
	r.mu.Unlock()
	if err != nil {
		return tally.Snapshot{}, err
	}

	r.stats.IncConverted()
	r.stats.ObserveConvertDuration(time.Since(start))
	r.stats.SetSnapshotEntries(len(entries))

	return tally.NewSnapshot(entries), nil
}

// copyEntries reads every guest entry. Callers must hold r.mu.
func (r *Runtime) copyEntries(ctx context.Context) ([]tally.Entry, error) {
	n, err := r.guest.EntryCount(ctx)
	if err != nil {
		return nil, fmt.Errorf("error counting guest entries: %v", err)
	}

	entries := make([]tally.Entry, 0, n)
	for i := 0; i < n; i++ {
		entry, err := r.guest.Entry(ctx, i)
		if err != nil {
			return nil, fmt.Errorf("error reading guest entry %d: %v", i, err)
		}
		entries = append(entries, tally.Entry{
			Key:    entry.Key,
			Values: append([]int64(nil), entry.Values...),
		})
	}
	return entries, nil
}
