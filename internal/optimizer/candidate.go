package optimizer

// unassigned marks a VM the repair step could not place on any host.
const unassigned = -1

// candidate is one point in the search space: a host index per VM plus its
// cached score. Each population slot owns its candidate exclusively; movement
// replaces the candidate's state wholesale every iteration.
type candidate struct {
	// position holds the real-valued coordinates used by the movement
	// arithmetic. After repair it is synced to the repaired assignment so the
	// search state never drifts out of the index range.
	position []float64

	// assignment holds the repaired host index per VM, or unassigned.
	assignment []int

	fitness  float64
	feasible bool
}

func newCandidate(vmCount int) *candidate {
	return &candidate{
		position:   make([]float64, vmCount),
		assignment: make([]int, vmCount),
	}
}

// clone makes a deep copy, used when recording the best-known solution.
func (c *candidate) clone() *candidate {
	dup := &candidate{
		position:   make([]float64, len(c.position)),
		assignment: make([]int, len(c.assignment)),
		fitness:    c.fitness,
		feasible:   c.feasible,
	}
	copy(dup.position, c.position)
	copy(dup.assignment, c.assignment)
	return dup
}
