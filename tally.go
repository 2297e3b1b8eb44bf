// Package tally sums element counts over mappings of string keys to value
// sequences. The work is split in two stages: a conversion stage that copies
// the source into a plain snapshot while holding whatever lock guards it, and
// a compute stage that traverses the snapshot with no lock held.
package tally

// Entry pairs a key with its recorded sequence of values.
type Entry struct {
	Key    string
	Values []int64
}

// Mapping associates unique keys with value sequences. Iteration order is
// whatever the map provides; nothing here depends on it.
type Mapping = map[string][]int64

// Snapshot is the plain representation produced by the conversion stage. It
// holds no references back to the source, so traversing it needs no lock.
type Snapshot struct {
	entries []Entry
}

// NewSnapshot wraps entries already copied out of their source. The snapshot
// takes ownership of the slice.
func NewSnapshot(entries []Entry) Snapshot {
	return Snapshot{entries: entries}
}

// Len reports the number of entries in the snapshot.
func (s Snapshot) Len() int {
	return len(s.entries)
}

// Total sums the sequence lengths over all entries. It touches only the
// snapshot and a local counter.
func (s Snapshot) Total() int {
	total := 0
	for _, e := range s.entries {
		total += len(e.Values)
	}
	return total
}

// Total sums the sequence lengths of m in a single forward traversal. For
// callers whose mapping is exclusively owned there is nothing to lock, so
// conversion degenerates to a direct scan.
func Total[V any](m map[string][]V) int {
	total := 0
	for _, values := range m {
		total += len(values)
	}
	return total
}
