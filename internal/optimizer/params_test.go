package optimizer

import (
	"errors"
	"testing"

	"github.com/puneet-chandna/hippoplace/internal/domain"
)

func TestParameters_Validate_Defaults(t *testing.T) {
	if err := DefaultParameters().Validate(); err != nil {
		t.Fatalf("default parameters should be valid: %v", err)
	}
}

func TestParameters_Validate_Rejects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Parameters)
	}{
		{"zero population", func(p *Parameters) { p.PopulationSize = 0 }},
		{"negative population", func(p *Parameters) { p.PopulationSize = -5 }},
		{"zero max iterations", func(p *Parameters) { p.MaxIterations = 0 }},
		{"negative threshold", func(p *Parameters) { p.ConvergenceThreshold = -0.1 }},
		{"zero patience", func(p *Parameters) { p.ConvergencePatience = 0 }},
		{"negative weight", func(p *Parameters) { p.Weights.Power = -0.2 }},
		{"weight above one", func(p *Parameters) { p.Weights.SLA = 1.2 }},
		{"weights not summing to one", func(p *Parameters) { p.Weights.Utilization = 0.9 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			params := DefaultParameters()
			tc.mutate(&params)

			err := params.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !errors.Is(err, domain.ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument, got %v", err)
			}
		})
	}
}

func TestParameters_Validate_WeightSumTolerance(t *testing.T) {
	params := DefaultParameters()
	// A rounding-level deviation must not be rejected.
	params.Weights.Utilization += 1e-9

	if err := params.Validate(); err != nil {
		t.Fatalf("tiny float error should pass validation: %v", err)
	}
}
