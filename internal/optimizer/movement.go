package optimizer

import (
	"math"
	"math/rand"
)

// Phase schedule constants. The published algorithm does not pin these, so
// they are tunable values validated against the engine's behavioral tests.
const (
	// explorationShare is the fraction of the iteration budget spent in the
	// river (exploration) phase before switching to defense (exploitation).
	explorationShare = 1.0 / 3.0

	// defenseRadiusShare scales the exploitation neighborhood relative to the
	// host count; the radius shrinks linearly to zero over the run.
	defenseRadiusShare = 0.25

	// escapeFitnessFraction triggers the escape phase for any candidate whose
	// fitness falls below this fraction of the population mean.
	escapeFitnessFraction = 0.5
)

// mover applies the hippopotamus phase-update rules to the population. All
// randomness flows through the injected generator so runs are reproducible.
type mover struct {
	rng           *rand.Rand
	hostCount     int
	maxIterations int
}

// step transforms every candidate's position for the given 1-based iteration.
// The phase is chosen by iteration progress; the escape override is applied
// per candidate regardless of the global phase. Positions are real-valued here
// and are rounded and repaired before scoring.
func (m *mover) step(pop *population, iteration int) {
	progress := float64(iteration) / float64(m.maxIterations)
	mean := pop.meanFitness()

	for _, c := range pop.members {
		switch {
		case c.fitness < escapeFitnessFraction*mean:
			m.escape(c)
		case progress <= explorationShare:
			m.explore(c, pop.best, progress)
		default:
			m.exploit(c, progress)
		}
	}
}

// explore pulls the candidate toward the best-known solution with a random
// perturbation scaled by a linearly decaying coefficient, covering the space
// broadly early in the run.
func (m *mover) explore(c *candidate, best *candidate, progress float64) {
	coef := 1 - progress
	span := float64(m.hostCount)

	for i := range c.position {
		attraction := m.rng.Float64() * (best.position[i] - c.position[i])
		perturbation := coef * (2*m.rng.Float64() - 1) * span
		c.position[i] += attraction + perturbation
	}
}

// exploit perturbs the candidate inside a shrinking neighborhood around its
// own position, refining a promising region without jumping far.
func (m *mover) exploit(c *candidate, progress float64) {
	radius := (1 - progress) * defenseRadiusShare * float64(m.hostCount)

	for i := range c.position {
		c.position[i] += (2*m.rng.Float64() - 1) * radius
	}
}

// escape reinitializes a stagnating candidate to a fresh random position.
func (m *mover) escape(c *candidate) {
	for i := range c.position {
		c.position[i] = m.rng.Float64() * float64(m.hostCount)
	}
}

// randomize draws a fresh uniform position, used for initial seeding.
func (m *mover) randomize(c *candidate) {
	m.escape(c)
}

// roundPositions converts real-valued positions to integer host indices.
// Ties round toward the lower index.
func roundPositions(c *candidate) {
	for i, pos := range c.position {
		c.assignment[i] = int(math.Ceil(pos - 0.5))
	}
}

// syncPosition snaps the position back onto the repaired assignment so the
// next movement step starts from valid coordinates.
func syncPosition(c *candidate, hostCount int) {
	for i, host := range c.assignment {
		if host == unassigned {
			c.position[i] = float64(wrapIndex(int(math.Ceil(c.position[i]-0.5)), hostCount))
			continue
		}
		c.position[i] = float64(host)
	}
}
