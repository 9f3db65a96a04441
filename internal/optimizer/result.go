package optimizer

import (
	"github.com/puneet-chandna/hippoplace/internal/domain"
)

// Result is the immutable outcome of one optimization run. The caller owns it
// after return; the engine keeps no reference.
type Result struct {
	mapping        map[string]string
	unplaced       []string
	history        []float64
	bestFitness    float64
	feasible       bool
	iterations     int
	convergedAfter int
	reason         domain.StopReason
}

func emptyResult(reason domain.StopReason) *Result {
	return &Result{
		mapping: map[string]string{},
		reason:  reason,
	}
}

// BestMapping returns the VM-id to host-id assignment of the best solution
// found. VMs that could not be feasibly placed are absent; callers must treat
// absence as "unallocated", not as an error.
func (r *Result) BestMapping() map[string]string {
	out := make(map[string]string, len(r.mapping))
	for vm, host := range r.mapping {
		out[vm] = host
	}
	return out
}

// UnplacedVMs lists the VM ids absent from the mapping, in ascending order.
func (r *Result) UnplacedVMs() []string {
	out := make([]string, len(r.unplaced))
	copy(out, r.unplaced)
	return out
}

// FitnessHistory returns the best fitness recorded at each completed
// iteration. The sequence is non-decreasing.
func (r *Result) FitnessHistory() []float64 {
	out := make([]float64, len(r.history))
	copy(out, r.history)
	return out
}

// ConvergenceIterations returns the iteration at which the patience condition
// was first met, or the elapsed iteration count when the run never converged.
func (r *Result) ConvergenceIterations() int {
	return r.convergedAfter
}

// Iterations returns the number of completed iterations.
func (r *Result) Iterations() int {
	return r.iterations
}

// BestFitness returns the scalar fitness of the best solution found, zero when
// no solution exists.
func (r *Result) BestFitness() float64 {
	return r.bestFitness
}

// Feasible reports whether the best solution overcommits no host.
func (r *Result) Feasible() bool {
	return r.feasible
}

// StopReason records why the run terminated; it does not change the shape of
// the result.
func (r *Result) StopReason() domain.StopReason {
	return r.reason
}
