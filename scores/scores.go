// Package scores tracks named series of observed scores: one ordered
// sequence of observations per series name, recorded as a run progresses.
package scores

import (
	"fmt"
	"sort"
	"sync"

	"github.com/zeerakw/tally"
)

// Board is a mutex-guarded collection of named score series.
type Board struct {
	mu      sync.RWMutex
	series  map[string][]float64
	display string
}

// NewBoard creates a board with the given series pre-registered. The first
// name becomes the display series until SetDisplay changes it.
func NewBoard(names ...string) *Board {
	b := &Board{series: make(map[string][]float64, len(names))}
	for _, name := range names {
		b.series[name] = []float64{}
	}
	if len(names) > 0 {
		b.display = names[0]
	}
	return b
}

// Record appends score to the named series, registering it if needed.
func (b *Board) Record(name string, score float64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.series[name] = append(b.series[name], score)
}

// Series returns a copy of the named series, nil if unknown.
func (b *Board) Series(name string) []float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()

	s, exists := b.series[name]
	if !exists {
		return nil
	}
	return append([]float64(nil), s...)
}

// Names returns the registered series names, sorted.
func (b *Board) Names() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	names := make([]string, 0, len(b.series))
	for name := range b.series {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Last returns the most recent score in the named series.
func (b *Board) Last(name string) (float64, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	s := b.series[name]
	if len(s) == 0 {
		return 0, false
	}
	return s[len(s)-1], true
}

// Mean returns the average of the named series, 0 for an empty one.
func (b *Board) Mean(name string) float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()

	s := b.series[name]
	if len(s) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range s {
		sum += v
	}
	return sum / float64(len(s))
}

// SetDisplay selects the series shown in progress reporting.
func (b *Board) SetDisplay(name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.series[name]; !exists {
		return fmt.Errorf("series %q is not registered", name)
	}
	b.display = name
	return nil
}

// Display returns the display series name and a copy of its scores.
func (b *Board) Display() (string, []float64) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.display, append([]float64(nil), b.series[b.display]...)
}

// Observations reports the number of scores recorded across all series. The
// count runs in two stages like the accumulator: the series are copied out
// under the lock, then their lengths are summed with no lock held.
func (b *Board) Observations() int {
	b.mu.RLock()
	copied := make(map[string][]float64, len(b.series))
	for name, s := range b.series {
		copied[name] = append([]float64(nil), s...)
	}
	b.mu.RUnlock()

	return tally.Total(copied)
}
