package scores

// EarlyStopping flags a run whose watched score has stopped improving.
type EarlyStopping struct {
	patience  int
	lowIsGood bool

	best    float64
	bad     int
	started bool
}

// NewEarlyStopping waits for patience consecutive non-improving scores
// before stopping. When lowIsGood is true, lower scores count as better.
func NewEarlyStopping(patience int, lowIsGood bool) *EarlyStopping {
	return &EarlyStopping{patience: patience, lowIsGood: lowIsGood}
}

// Step records score and reports whether the run should stop.
func (es *EarlyStopping) Step(score float64) bool {
	if !es.started || es.improved(score) {
		es.best = score
		es.bad = 0
		es.started = true
		return false
	}

	es.bad++
	return es.bad >= es.patience
}

// Best returns the best score seen so far. Zero before the first Step.
func (es *EarlyStopping) Best() float64 {
	return es.best
}

func (es *EarlyStopping) improved(score float64) bool {
	if es.lowIsGood {
		return score < es.best
	}
	return score > es.best
}
