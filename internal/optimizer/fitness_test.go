package optimizer

import (
	"math"
	"testing"

	"github.com/puneet-chandna/hippoplace/internal/domain"
)

func equalWeights() ObjectiveWeights {
	return ObjectiveWeights{
		Utilization:   0.2,
		LoadBalance:   0.2,
		Fragmentation: 0.2,
		Power:         0.2,
		SLA:           0.2,
	}
}

func testVM(id string, cpu float64) domain.VMDemand {
	return domain.VMDemand{
		ID:     id,
		Demand: domain.ResourceVector{CPUCores: cpu, MemoryMiB: cpu * 1024, StorageGiB: cpu * 10, BandwidthMbps: cpu * 100},
	}
}

func testHost(id string, cpu float64) domain.HostCapacity {
	return domain.HostCapacity{
		ID:       id,
		Capacity: domain.ResourceVector{CPUCores: cpu, MemoryMiB: cpu * 1024, StorageGiB: cpu * 10, BandwidthMbps: cpu * 100},
	}
}

func TestEvaluator_SingleHostHalfLoad(t *testing.T) {
	vms := []domain.VMDemand{testVM("vm-1", 4)}
	// Constant-draw power model pins the power sub-score to zero, making the
	// expected fitness exact.
	host := testHost("host-1", 8)
	host.Power = func(float64) float64 { return 100 }

	e := newEvaluator(vms, []domain.HostCapacity{host}, equalWeights())
	fitness, feasible := e.evaluate([]int{0})

	if !feasible {
		t.Fatal("half-loaded host should be feasible")
	}
	// utilization 0.5, load balance 1, fragmentation 1, power 0, SLA 1.
	want := 0.2 * (0.5 + 1 + 1 + 0 + 1)
	if math.Abs(fitness-want) > 1e-9 {
		t.Errorf("expected fitness %v, got %v", want, fitness)
	}
}

func TestEvaluator_OvercommitPenalty(t *testing.T) {
	vms := []domain.VMDemand{testVM("vm-1", 6), testVM("vm-2", 6)}
	hosts := []domain.HostCapacity{testHost("host-1", 8), testHost("host-2", 8)}

	e := newEvaluator(vms, hosts, equalWeights())

	spread, feasibleSpread := e.evaluate([]int{0, 1})
	packed, feasiblePacked := e.evaluate([]int{0, 0})

	if !feasibleSpread {
		t.Fatal("spread assignment should be feasible")
	}
	if feasiblePacked {
		t.Fatal("12 cores on an 8-core host must be infeasible")
	}
	if packed >= spread {
		t.Errorf("overcommitted assignment must score below feasible one: packed=%v spread=%v", packed, spread)
	}
}

func TestEvaluator_ZeroCapacityDimension(t *testing.T) {
	vms := []domain.VMDemand{{ID: "vm-1", Demand: domain.ResourceVector{CPUCores: 2}}}
	hosts := []domain.HostCapacity{{ID: "host-1", Capacity: domain.ResourceVector{CPUCores: 4}}}

	e := newEvaluator(vms, hosts, equalWeights())
	fitness, _ := e.evaluate([]int{0})

	if math.IsNaN(fitness) || math.IsInf(fitness, 0) {
		t.Fatalf("zero-capacity dimensions must not produce NaN/Inf, got %v", fitness)
	}
}

func TestEvaluator_UnplacedVMPenalty(t *testing.T) {
	vms := []domain.VMDemand{testVM("vm-1", 2), testVM("vm-2", 2)}
	hosts := []domain.HostCapacity{testHost("host-1", 8)}

	e := newEvaluator(vms, hosts, equalWeights())

	full, _ := e.evaluate([]int{0, 0})
	partial, _ := e.evaluate([]int{0, unassigned})

	if partial >= full {
		t.Errorf("stranding a placeable VM must score lower: partial=%v full=%v", partial, full)
	}
}

func TestEvaluator_SLAThreshold(t *testing.T) {
	vms := []domain.VMDemand{testVM("vm-1", 7.6)}
	hosts := []domain.HostCapacity{testHost("host-1", 8)} // 95% utilization

	e := newEvaluator(vms, hosts, equalWeights())
	hot, feasible := e.evaluate([]int{0})
	if !feasible {
		t.Fatal("95% load is high but feasible")
	}

	cool := newEvaluator([]domain.VMDemand{testVM("vm-1", 4)}, hosts, equalWeights())
	moderate, _ := cool.evaluate([]int{0})

	// The SLA sub-score drops from 1 to 0 for the hot host; utilization alone
	// cannot make up a full weight share.
	if hot >= moderate {
		t.Errorf("host above SLA threshold should score below a moderate one: hot=%v moderate=%v", hot, moderate)
	}
}

func TestEvaluator_NothingPlaced(t *testing.T) {
	vms := []domain.VMDemand{testVM("vm-1", 2)}
	hosts := []domain.HostCapacity{testHost("host-1", 8)}

	e := newEvaluator(vms, hosts, equalWeights())
	fitness, _ := e.evaluate([]int{unassigned})

	if fitness != 0 {
		t.Errorf("empty placement should score zero, got %v", fitness)
	}
}

func TestVariance(t *testing.T) {
	if v := variance(nil); v != 0 {
		t.Errorf("variance of empty set should be 0, got %v", v)
	}
	if v := variance([]float64{0.5, 0.5, 0.5}); v != 0 {
		t.Errorf("variance of constant set should be 0, got %v", v)
	}
	if v := variance([]float64{0, 1}); math.Abs(v-0.25) > 1e-12 {
		t.Errorf("variance of {0,1} should be 0.25, got %v", v)
	}
}
