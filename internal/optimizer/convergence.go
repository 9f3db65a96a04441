package optimizer

// trackerState is the convergence state machine: running, or one of two
// terminal states.
type trackerState int

const (
	stateRunning trackerState = iota
	stateConverged
	stateMaxIterations
)

// tracker records the per-iteration best fitness and decides when to stop.
type tracker struct {
	threshold     float64
	patience      int
	maxIterations int

	history        []float64
	stall          int
	state          trackerState
	convergedAfter int
}

func newTracker(p Parameters) *tracker {
	return &tracker{
		threshold:     p.ConvergenceThreshold,
		patience:      p.ConvergencePatience,
		maxIterations: p.MaxIterations,
		history:       make([]float64, 0, p.MaxIterations),
	}
}

// record appends the iteration's best fitness and returns the resulting state.
// The run converges once the best fitness has improved by no more than the
// threshold for `patience` consecutive iterations; the iteration cap is a
// terminal state regardless of improvement.
func (t *tracker) record(bestFitness float64) trackerState {
	if len(t.history) > 0 {
		if bestFitness-t.history[len(t.history)-1] <= t.threshold {
			t.stall++
		} else {
			t.stall = 0
		}
	}
	t.history = append(t.history, bestFitness)

	switch {
	case t.stall >= t.patience:
		t.state = stateConverged
		if t.convergedAfter == 0 {
			t.convergedAfter = len(t.history)
		}
	case len(t.history) >= t.maxIterations:
		t.state = stateMaxIterations
	}
	return t.state
}

// convergenceIterations is the index of the iteration at which the patience
// condition was first met, or the total iteration count when it never was.
func (t *tracker) convergenceIterations() int {
	if t.convergedAfter > 0 {
		return t.convergedAfter
	}
	return len(t.history)
}
