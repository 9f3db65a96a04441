package domain

import "time"

// StopReason records why an optimization run terminated.
type StopReason string

const (
	StopConverged     StopReason = "CONVERGED"
	StopMaxIterations StopReason = "MAX_ITERATIONS_REACHED"
	StopDeadline      StopReason = "DEADLINE_EXCEEDED"
	StopEmptyInput    StopReason = "EMPTY_INPUT"
)

// Placement is the caller-facing record of one optimization run. It is what the
// allocation policy retains in history and what gets persisted.
type Placement struct {
	RunID   string `json:"run_id"`
	Profile string `json:"profile"`

	// Mapping assigns VM IDs to host IDs. VMs that could not be feasibly
	// placed are absent and listed in Unplaced instead.
	Mapping  map[string]string `json:"mapping"`
	Unplaced []string          `json:"unplaced,omitempty"`

	VMCount   int `json:"vm_count"`
	HostCount int `json:"host_count"`

	BestFitness    float64    `json:"best_fitness"`
	Feasible       bool       `json:"feasible"`
	Iterations     int        `json:"iterations"`
	ConvergedAfter int        `json:"converged_after"`
	StopReason     StopReason `json:"stop_reason"`
	FitnessHistory []float64  `json:"fitness_history"`

	Elapsed   time.Duration `json:"elapsed_ns"`
	CreatedAt time.Time     `json:"created_at"`
}
