package optimizer

// population is the fixed-size set of candidates explored during one run plus
// the best candidate observed across all iterations so far.
type population struct {
	members []*candidate

	// best is a deep copy, never aliased into members. Its fitness is
	// monotonically non-decreasing across iterations.
	best *candidate
}

func newPopulation(size int) *population {
	return &population{members: make([]*candidate, size)}
}

// updateBest scans the members and replaces the best-known solution when a
// strictly better one exists. Called once per iteration, after every member
// has been scored.
func (p *population) updateBest() {
	for _, c := range p.members {
		if p.best == nil || c.fitness > p.best.fitness {
			p.best = c.clone()
		}
	}
}

// meanFitness is the average fitness of the current members, used by the
// escape phase to spot stagnating candidates.
func (p *population) meanFitness() float64 {
	if len(p.members) == 0 {
		return 0
	}
	var sum float64
	for _, c := range p.members {
		sum += c.fitness
	}
	return sum / float64(len(p.members))
}
