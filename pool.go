package tally

import (
	"context"
	"log"
)

const (
	computePoolSize   = 8
	snapshotQueueSize = 32
)

// Result carries the element count computed for a submitted snapshot.
type Result struct {
	Name  string
	Total int
}

type computeWork struct {
	name string
	snap Snapshot
}

// Pool computes snapshot totals on a fixed set of worker goroutines. The
// compute stage holds no lock, so workers run in parallel with conversion
// work happening elsewhere.
type Pool struct {
	acc *Accumulator

	snapshots chan computeWork
	results   chan Result
}

func NewPool(acc *Accumulator) *Pool {
	return &Pool{
		acc:       acc,
		snapshots: make(chan computeWork, snapshotQueueSize),
		results:   make(chan Result, snapshotQueueSize),
	}
}

func (p *Pool) Start(ctx context.Context) {
	log.Printf("compute pool starting")
	for i := 0; i < computePoolSize; i++ {
		go p.computeTotals(ctx)
	}
}

// Submit queues snap for computation under the given name.
func (p *Pool) Submit(name string, snap Snapshot) {
	p.snapshots <- computeWork{name: name, snap: snap}
}

// Results delivers one Result per submitted snapshot, in completion order.
func (p *Pool) Results() <-chan Result {
	return p.results
}

func (p *Pool) computeTotals(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case w := <-p.snapshots:
			p.results <- Result{Name: w.name, Total: p.acc.Compute(w.snap)}
		}
	}
}
