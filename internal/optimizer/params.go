package optimizer

import (
	"fmt"
	"math"

	"github.com/puneet-chandna/hippoplace/internal/domain"
)

// ObjectiveWeights sets the relative importance of each fitness sub-score.
// Each weight must be in [0,1] and the five together must sum to 1.0.
type ObjectiveWeights struct {
	Utilization   float64 `mapstructure:"utilization" json:"utilization"`
	LoadBalance   float64 `mapstructure:"load_balance" json:"load_balance"`
	Fragmentation float64 `mapstructure:"fragmentation" json:"fragmentation"`
	Power         float64 `mapstructure:"power" json:"power"`
	SLA           float64 `mapstructure:"sla" json:"sla"`
}

// weightSumTolerance absorbs float accumulation error when checking the sum.
const weightSumTolerance = 1e-6

func (w ObjectiveWeights) validate() error {
	weights := []struct {
		name  string
		value float64
	}{
		{"utilization", w.Utilization},
		{"load_balance", w.LoadBalance},
		{"fragmentation", w.Fragmentation},
		{"power", w.Power},
		{"sla", w.SLA},
	}

	var sum float64
	for _, entry := range weights {
		if entry.value < 0 || entry.value > 1 {
			return fmt.Errorf("%w: weight %s must be in [0,1], got %v", domain.ErrInvalidArgument, entry.name, entry.value)
		}
		sum += entry.value
	}

	if math.Abs(sum-1.0) > weightSumTolerance {
		return fmt.Errorf("%w: objective weights must sum to 1.0, got %v", domain.ErrInvalidArgument, sum)
	}
	return nil
}

// Parameters configures one optimization run. Construct once per run and do not
// mutate while the run is in flight.
type Parameters struct {
	// PopulationSize is the number of candidate solutions explored in parallel.
	PopulationSize int `mapstructure:"population_size"`

	// MaxIterations caps the number of search iterations.
	MaxIterations int `mapstructure:"max_iterations"`

	// ConvergenceThreshold is the minimum best-fitness improvement that counts
	// as progress. Improvements at or below the threshold count toward the
	// patience window.
	ConvergenceThreshold float64 `mapstructure:"convergence_threshold"`

	// ConvergencePatience is the number of consecutive stalled iterations
	// after which the run is declared converged.
	ConvergencePatience int `mapstructure:"convergence_patience"`

	// Weights control the multi-objective fitness blend.
	Weights ObjectiveWeights `mapstructure:"weights"`

	// Seed makes every stochastic step reproducible. Identical inputs and seed
	// yield an identical result.
	Seed int64 `mapstructure:"seed"`
}

// DefaultParameters returns a parameter set suitable for datacenters of up to a
// few hundred hosts.
func DefaultParameters() Parameters {
	return Parameters{
		PopulationSize:       30,
		MaxIterations:        200,
		ConvergenceThreshold: 1e-4,
		ConvergencePatience:  15,
		Weights: ObjectiveWeights{
			Utilization:   0.25,
			LoadBalance:   0.20,
			Fragmentation: 0.15,
			Power:         0.20,
			SLA:           0.20,
		},
		Seed: 1,
	}
}

// Validate rejects malformed parameters before any optimization begins.
func (p Parameters) Validate() error {
	if p.PopulationSize <= 0 {
		return fmt.Errorf("%w: population size must be > 0, got %d", domain.ErrInvalidArgument, p.PopulationSize)
	}
	if p.MaxIterations <= 0 {
		return fmt.Errorf("%w: max iterations must be > 0, got %d", domain.ErrInvalidArgument, p.MaxIterations)
	}
	if p.ConvergenceThreshold < 0 {
		return fmt.Errorf("%w: convergence threshold must be >= 0, got %v", domain.ErrInvalidArgument, p.ConvergenceThreshold)
	}
	if p.ConvergencePatience < 1 {
		return fmt.Errorf("%w: convergence patience must be >= 1, got %d", domain.ErrInvalidArgument, p.ConvergencePatience)
	}
	return p.Weights.validate()
}
