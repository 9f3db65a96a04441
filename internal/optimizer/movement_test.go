package optimizer

import (
	"math/rand"
	"testing"
)

func TestRoundPositions_TiesRoundTowardLowerIndex(t *testing.T) {
	c := &candidate{
		position:   []float64{0.5, 1.5, 1.4, 1.6, -0.5, 2.0},
		assignment: make([]int, 6),
	}
	roundPositions(c)

	want := []int{0, 1, 1, 2, -1, 2}
	for i := range want {
		if c.assignment[i] != want[i] {
			t.Errorf("position %v: expected %d, got %d", c.position[i], want[i], c.assignment[i])
		}
	}
}

func TestSyncPosition_SnapsToRepairedAssignment(t *testing.T) {
	c := &candidate{
		position:   []float64{7.3, -1.2},
		assignment: []int{2, unassigned},
	}
	syncPosition(c, 4)

	if c.position[0] != 2 {
		t.Errorf("expected position snapped to 2, got %v", c.position[0])
	}
	// Unassigned VMs keep a wrapped in-range coordinate for the next step.
	if c.position[1] < 0 || c.position[1] >= 4 {
		t.Errorf("expected in-range position for unassigned VM, got %v", c.position[1])
	}
}

func TestMover_Deterministic(t *testing.T) {
	build := func(seed int64) *population {
		rng := rand.New(rand.NewSource(seed))
		m := &mover{rng: rng, hostCount: 10, maxIterations: 30}

		pop := newPopulation(5)
		for i := range pop.members {
			c := newCandidate(8)
			m.randomize(c)
			c.fitness = float64(i) / 5
			pop.members[i] = c
		}
		pop.updateBest()

		for iter := 1; iter <= 10; iter++ {
			m.step(pop, iter)
		}
		return pop
	}

	a, b := build(42), build(42)
	for i := range a.members {
		for j := range a.members[i].position {
			if a.members[i].position[j] != b.members[i].position[j] {
				t.Fatalf("same seed must produce identical positions (member %d dim %d)", i, j)
			}
		}
	}
}

func TestMover_EscapeReinitializesStagnantCandidate(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	m := &mover{rng: rng, hostCount: 10, maxIterations: 100}

	pop := newPopulation(2)
	strong := newCandidate(4)
	strong.position = []float64{5, 5, 5, 5}
	strong.fitness = 0.9
	weak := newCandidate(4)
	weak.position = []float64{3, 3, 3, 3}
	weak.fitness = 0.1 // well under half the mean of 0.5
	pop.members[0] = strong
	pop.members[1] = weak
	pop.best = strong.clone()

	m.step(pop, 50)

	for i, pos := range weak.position {
		if pos < 0 || pos >= 10 {
			t.Errorf("escaped position dim %d out of range: %v", i, pos)
		}
	}
	moved := false
	for _, pos := range weak.position {
		if pos != 3 {
			moved = true
			break
		}
	}
	if !moved {
		t.Error("escape phase should move a stagnant candidate")
	}
}
