package optimizer

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/puneet-chandna/hippoplace/internal/domain"
)

func testParams() Parameters {
	p := DefaultParameters()
	p.PopulationSize = 12
	p.MaxIterations = 60
	p.ConvergencePatience = 8
	p.Seed = 42
	return p
}

// testDatacenter builds a snapshot where every VM fits somewhere but not
// everything fits on one host.
func testDatacenter() ([]domain.VMDemand, []domain.HostCapacity) {
	vms := []domain.VMDemand{
		testVM("vm-01", 2), testVM("vm-02", 4), testVM("vm-03", 1),
		testVM("vm-04", 3), testVM("vm-05", 2), testVM("vm-06", 1),
		testVM("vm-07", 2), testVM("vm-08", 4),
	}
	hosts := []domain.HostCapacity{
		testHost("host-a", 8), testHost("host-b", 8), testHost("host-c", 8),
	}
	return vms, hosts
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	logger, _ := zap.NewDevelopment()
	return NewEngine(logger)
}

func TestEngine_Determinism(t *testing.T) {
	vms, hosts := testDatacenter()
	engine := newTestEngine(t)

	run := func() *Result {
		res, err := engine.Optimize(context.Background(), vms, hosts, testParams())
		if err != nil {
			t.Fatalf("Optimize failed: %v", err)
		}
		return res
	}

	a, b := run(), run()

	if a.Iterations() != b.Iterations() {
		t.Fatalf("iteration counts differ: %d vs %d", a.Iterations(), b.Iterations())
	}

	histA, histB := a.FitnessHistory(), b.FitnessHistory()
	if len(histA) != len(histB) {
		t.Fatalf("history lengths differ: %d vs %d", len(histA), len(histB))
	}
	for i := range histA {
		if histA[i] != histB[i] {
			t.Fatalf("fitness history diverges at iteration %d: %v vs %v", i, histA[i], histB[i])
		}
	}

	mapA, mapB := a.BestMapping(), b.BestMapping()
	if len(mapA) != len(mapB) {
		t.Fatalf("mapping sizes differ: %d vs %d", len(mapA), len(mapB))
	}
	for vm, host := range mapA {
		if mapB[vm] != host {
			t.Errorf("vm %s mapped to %s and %s across identical runs", vm, host, mapB[vm])
		}
	}
}

func TestEngine_FinalMappingIsFeasible(t *testing.T) {
	vms, hosts := testDatacenter()
	engine := newTestEngine(t)

	res, err := engine.Optimize(context.Background(), vms, hosts, testParams())
	if err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}

	demandByVM := make(map[string]domain.ResourceVector, len(vms))
	for _, vm := range vms {
		demandByVM[vm.ID] = vm.Demand
	}

	aggregate := make(map[string]domain.ResourceVector, len(hosts))
	for vm, host := range res.BestMapping() {
		aggregate[host] = aggregate[host].Add(demandByVM[vm])
	}

	for _, host := range hosts {
		if !aggregate[host.ID].Fits(host.Capacity) {
			t.Errorf("host %s overcommitted: demand %+v capacity %+v", host.ID, aggregate[host.ID], host.Capacity)
		}
	}
}

func TestEngine_MonotonicBestFitness(t *testing.T) {
	vms, hosts := testDatacenter()
	engine := newTestEngine(t)

	res, err := engine.Optimize(context.Background(), vms, hosts, testParams())
	if err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}

	history := res.FitnessHistory()
	for i := 1; i < len(history); i++ {
		if history[i] < history[i-1] {
			t.Fatalf("best fitness regressed at iteration %d: %v -> %v", i, history[i-1], history[i])
		}
	}
}

func TestEngine_BoundedIterations(t *testing.T) {
	vms, hosts := testDatacenter()
	engine := newTestEngine(t)

	params := testParams()
	params.MaxIterations = 10
	params.ConvergencePatience = 100 // never converge early

	res, err := engine.Optimize(context.Background(), vms, hosts, params)
	if err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}
	if got := len(res.FitnessHistory()); got > params.MaxIterations {
		t.Errorf("history length %d exceeds max iterations %d", got, params.MaxIterations)
	}
	if res.StopReason() != domain.StopMaxIterations {
		t.Errorf("expected max-iterations stop, got %s", res.StopReason())
	}
}

func TestEngine_EmptyInputs(t *testing.T) {
	engine := newTestEngine(t)
	_, hosts := testDatacenter()
	vms, _ := testDatacenter()

	for name, tc := range map[string]struct {
		vms   []domain.VMDemand
		hosts []domain.HostCapacity
	}{
		"no vms":   {nil, hosts},
		"no hosts": {vms, nil},
		"neither":  {nil, nil},
	} {
		t.Run(name, func(t *testing.T) {
			res, err := engine.Optimize(context.Background(), tc.vms, tc.hosts, testParams())
			if err != nil {
				t.Fatalf("empty input must not error: %v", err)
			}
			if len(res.BestMapping()) != 0 {
				t.Error("expected empty mapping")
			}
			if res.Iterations() != 0 {
				t.Errorf("expected zero iterations, got %d", res.Iterations())
			}
			if res.StopReason() != domain.StopEmptyInput {
				t.Errorf("expected empty-input stop reason, got %s", res.StopReason())
			}
		})
	}
}

func TestEngine_TrivialCase(t *testing.T) {
	vms := []domain.VMDemand{testVM("vm-only", 4)}
	hosts := []domain.HostCapacity{testHost("host-only", 4)} // exact fit
	engine := newTestEngine(t)

	res, err := engine.Optimize(context.Background(), vms, hosts, testParams())
	if err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}
	if got := res.BestMapping()["vm-only"]; got != "host-only" {
		t.Errorf("expected vm-only on host-only, got %q", got)
	}
}

func TestEngine_InfeasibleVMNeverMapped(t *testing.T) {
	vms, hosts := testDatacenter()
	vms = append(vms, testVM("vm-huge", 100)) // exceeds every host
	engine := newTestEngine(t)

	for seed := int64(1); seed <= 5; seed++ {
		params := testParams()
		params.Seed = seed

		res, err := engine.Optimize(context.Background(), vms, hosts, params)
		if err != nil {
			t.Fatalf("Optimize failed: %v", err)
		}
		if _, ok := res.BestMapping()["vm-huge"]; ok {
			t.Fatalf("seed %d: infeasible VM appeared in mapping", seed)
		}

		found := false
		for _, id := range res.UnplacedVMs() {
			if id == "vm-huge" {
				found = true
			}
		}
		if !found {
			t.Errorf("seed %d: infeasible VM missing from unplaced list", seed)
		}
	}
}

func TestEngine_ConvergenceTrigger(t *testing.T) {
	// One VM on one host: the search space has a single point, so best
	// fitness is flat from the first iteration.
	vms := []domain.VMDemand{testVM("vm-1", 2)}
	hosts := []domain.HostCapacity{testHost("host-1", 8)}
	engine := newTestEngine(t)

	params := testParams()
	params.ConvergenceThreshold = 0.0
	params.ConvergencePatience = 3
	params.MaxIterations = 100

	res, err := engine.Optimize(context.Background(), vms, hosts, params)
	if err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}
	if res.StopReason() != domain.StopConverged {
		t.Fatalf("expected convergence, got %s", res.StopReason())
	}
	// Flat fitness stalls from iteration 2 on; patience 3 is met at iteration 4.
	if got := res.ConvergenceIterations(); got != 4 {
		t.Errorf("expected convergence at iteration 4, got %d", got)
	}
	if res.Iterations() >= params.MaxIterations {
		t.Errorf("converged run should stop before the iteration cap, got %d", res.Iterations())
	}
}

func TestEngine_CancelledContextReturnsBestSoFar(t *testing.T) {
	vms, hosts := testDatacenter()
	engine := newTestEngine(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := engine.Optimize(ctx, vms, hosts, testParams())
	if err != nil {
		t.Fatalf("early termination must not error: %v", err)
	}
	if res.Iterations() != 0 {
		t.Errorf("expected zero completed iterations, got %d", res.Iterations())
	}
	if res.StopReason() != domain.StopDeadline {
		t.Errorf("expected deadline stop reason, got %s", res.StopReason())
	}
	// The initial population is still evaluated, so a best solution exists.
	if len(res.BestMapping()) == 0 {
		t.Error("expected a best-effort mapping from the seeded population")
	}
}

func TestEngine_InvalidParameters(t *testing.T) {
	vms, hosts := testDatacenter()
	engine := newTestEngine(t)

	params := testParams()
	params.PopulationSize = 0

	if _, err := engine.Optimize(context.Background(), vms, hosts, params); err == nil {
		t.Fatal("expected error for malformed parameters")
	}
}

func TestEngine_InputOrderIndependence(t *testing.T) {
	vms, hosts := testDatacenter()
	engine := newTestEngine(t)

	reversedVMs := make([]domain.VMDemand, len(vms))
	for i, vm := range vms {
		reversedVMs[len(vms)-1-i] = vm
	}

	a, err := engine.Optimize(context.Background(), vms, hosts, testParams())
	if err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}
	b, err := engine.Optimize(context.Background(), reversedVMs, hosts, testParams())
	if err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}

	mapA, mapB := a.BestMapping(), b.BestMapping()
	if len(mapA) != len(mapB) {
		t.Fatalf("mapping sizes differ: %d vs %d", len(mapA), len(mapB))
	}
	for vm, host := range mapA {
		if mapB[vm] != host {
			t.Errorf("vm %s mapped differently across input orders: %s vs %s", vm, host, mapB[vm])
		}
	}
}
