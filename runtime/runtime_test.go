package runtime

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/zeerakw/tally"
)

type fakeGuest struct {
	entries []tally.Entry
}

func (g *fakeGuest) EntryCount(ctx context.Context) (int, error) {
	return len(g.entries), nil
}

func (g *fakeGuest) Entry(ctx context.Context, i int) (tally.Entry, error) {
	return g.entries[i], nil
}

type failingGuest struct {
	err error
}

func (g failingGuest) EntryCount(ctx context.Context) (int, error) {
	return 0, g.err
}

func (g failingGuest) Entry(ctx context.Context, i int) (tally.Entry, error) {
	return tally.Entry{}, g.err
}

// strictGuest fails if two entry reads ever overlap.
type strictGuest struct {
	entries []tally.Entry
	inUse   atomic.Bool
}

func (g *strictGuest) EntryCount(ctx context.Context) (int, error) {
	return len(g.entries), nil
}

func (g *strictGuest) Entry(ctx context.Context, i int) (tally.Entry, error) {
	if !g.inUse.CompareAndSwap(false, true) {
		return tally.Entry{}, errors.New("concurrent guest access")
	}
	time.Sleep(time.Millisecond)
	g.inUse.Store(false)
	return g.entries[i], nil
}

func TestRuntimeSnapshot(t *testing.T) {
	t.Parallel()

	guest := &fakeGuest{entries: []tally.Entry{
		{Key: "a", Values: []int64{1, 2, 3}},
		{Key: "b", Values: []int64{4, 5}},
		{Key: "c", Values: []int64{7, 1, 2}},
	}}
	rt := New(guest, nil)

	snap, err := rt.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("unexpected snapshot error: %v", err)
	}
	if got := snap.Total(); got != 8 {
		t.Fatalf("unexpected total: got %d, want 8", got)
	}
}

func TestRuntimeSnapshot_EmptyGuest(t *testing.T) {
	t.Parallel()

	rt := New(&fakeGuest{}, nil)

	snap, err := rt.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("unexpected snapshot error: %v", err)
	}
	if got := snap.Total(); got != 0 {
		t.Fatalf("unexpected total for empty guest: got %d, want 0", got)
	}
}

func TestRuntimeSnapshot_GuestError(t *testing.T) {
	t.Parallel()

	rt := New(failingGuest{err: errors.New("guest trap")}, nil)

	if _, err := rt.Snapshot(context.Background()); err == nil {
		t.Fatalf("expected an error from a failing guest")
	}
}

func TestRuntimeSnapshot_CopiesGuestValues(t *testing.T) {
	t.Parallel()

	values := []int64{1, 2, 3}
	guest := &fakeGuest{entries: []tally.Entry{{Key: "a", Values: values}}}
	rt := New(guest, nil)

	snap, err := rt.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("unexpected snapshot error: %v", err)
	}

	guest.entries[0].Values = append(guest.entries[0].Values, 4, 5)

	if got := snap.Total(); got != 3 {
		t.Fatalf("snapshot observed guest mutation: got %d, want 3", got)
	}
}

func TestRuntimeSnapshot_SerializesGuestAccess(t *testing.T) {
	t.Parallel()

	guest := &strictGuest{entries: []tally.Entry{
		{Key: "a", Values: []int64{1, 2, 3}},
		{Key: "b", Values: []int64{4, 5}},
	}}
	rt := New(guest, nil)

	var wg sync.WaitGroup
	errCh := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			snap, err := rt.Snapshot(context.Background())
			if err != nil {
				errCh <- err
				return
			}
			if got := snap.Total(); got != 5 {
				errCh <- errors.New("unexpected total")
			}
		}()
	}
	wg.Wait()
	close(errCh)

	for err := range errCh {
		t.Fatalf("concurrent snapshots failed: %v", err)
	}
}
