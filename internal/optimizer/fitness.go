package optimizer

import (
	"github.com/puneet-chandna/hippoplace/internal/domain"
	"github.com/puneet-chandna/hippoplace/internal/power"
)

const (
	// lowUseThreshold is the utilization below which a used host counts as
	// fragmented.
	lowUseThreshold = 0.10

	// slaThreshold is the projected utilization above which a host counts as
	// an SLA risk.
	slaThreshold = 0.90

	// overcommitPenalty halves the score of a candidate whose raw assignment
	// overcommits a host, keeping a usable gradient toward feasibility
	// instead of rejecting outright.
	overcommitPenalty = 0.5

	// maxUtilizationVariance is the largest possible variance of values in
	// [0,1], used to normalize the load-balance sub-score.
	maxUtilizationVariance = 0.25
)

// evaluator scores a candidate assignment against the weighted objectives.
// It is read-only after construction and safe for concurrent use.
type evaluator struct {
	vms     []domain.VMDemand
	hosts   []domain.HostCapacity
	weights ObjectiveWeights

	// models holds the effective power model per host, with the linear
	// fallback substituted for hosts that carry none.
	models []domain.PowerModel

	// peakWatts is the theoretical draw with every host at full utilization.
	peakWatts float64
}

func newEvaluator(vms []domain.VMDemand, hosts []domain.HostCapacity, weights ObjectiveWeights) *evaluator {
	e := &evaluator{
		vms:     vms,
		hosts:   hosts,
		weights: weights,
		models:  make([]domain.PowerModel, len(hosts)),
	}
	for i, h := range hosts {
		model := h.Power
		if model == nil {
			model = power.Linear(power.DefaultIdleWatts, power.DefaultMaxWatts)
		}
		e.models[i] = model
		e.peakWatts += model(1.0)
	}
	return e
}

// evaluate returns the scalar fitness in [0,1] (higher is better) and whether
// the assignment is feasible (no host overcommitted in any dimension).
func (e *evaluator) evaluate(assignment []int) (float64, bool) {
	usage := make([]domain.ResourceVector, len(e.hosts))
	vmCount := make([]int, len(e.hosts))
	placed := 0

	for i, host := range assignment {
		if host == unassigned {
			continue
		}
		usage[host] = usage[host].Add(e.vms[i].Demand)
		vmCount[host]++
		placed++
	}

	feasible := true
	var (
		usedHosts  int
		utilSum    float64
		utils      []float64
		lowUse     int
		slaRisk    int
		totalWatts float64
	)

	for h := range e.hosts {
		if vmCount[h] == 0 {
			continue
		}
		usedHosts++

		if !usage[h].Fits(e.hosts[h].Capacity) {
			feasible = false
		}

		util := usage[h].UtilizationOf(e.hosts[h].Capacity)
		utilSum += util
		utils = append(utils, util)

		if util < lowUseThreshold {
			lowUse++
		}
		if util > slaThreshold {
			slaRisk++
		}
		totalWatts += e.models[h](util)
	}

	if usedHosts == 0 {
		return 0, feasible
	}

	utilization := utilSum / float64(usedHosts)
	loadBalance := 1 - clamp01(variance(utils)/maxUtilizationVariance)
	fragmentation := 1 - float64(lowUse)/float64(usedHosts)
	sla := 1 - float64(slaRisk)/float64(usedHosts)

	powerScore := 0.0
	if e.peakWatts > 0 {
		powerScore = 1 - clamp01(totalWatts/e.peakWatts)
	}

	fitness := e.weights.Utilization*utilization +
		e.weights.LoadBalance*loadBalance +
		e.weights.Fragmentation*fragmentation +
		e.weights.Power*powerScore +
		e.weights.SLA*sla

	if !feasible {
		fitness *= overcommitPenalty
	}

	// A candidate that strands placeable VMs must not outscore one that
	// places them all.
	if placed < len(e.vms) {
		fitness *= float64(placed) / float64(len(e.vms))
	}

	return fitness, feasible
}

func variance(values []float64) float64 {
	n := float64(len(values))
	if n == 0 {
		return 0
	}
	var sum, sumSq float64
	for _, v := range values {
		sum += v
		sumSq += v * v
	}
	mean := sum / n
	v := sumSq/n - mean*mean
	if v < 0 {
		// Float cancellation can dip slightly below zero.
		return 0
	}
	return v
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
