package optimizer

import "github.com/puneet-chandna/hippoplace/internal/domain"

// repairer maps raw host-index vectors back into the valid search space:
// every index lands in [0, hostCount) and, best effort, no host ends up
// overcommitted. Repairing an already-feasible vector leaves it unchanged.
type repairer struct {
	vms   []domain.VMDemand
	hosts []domain.HostCapacity
}

// repair corrects the assignment in place. VMs are processed in ascending
// VM-id order (the engine sorts its inputs once up front), so the pass is
// deterministic. A VM whose assigned host lacks room moves to the host with
// the most remaining weighted capacity that can still take it; when no host
// has room it is left unassigned rather than forcing an overcommit.
func (r *repairer) repair(assignment []int) {
	hostCount := len(r.hosts)
	usage := make([]domain.ResourceVector, hostCount)

	for i := range assignment {
		host := wrapIndex(assignment[i], hostCount)
		demand := r.vms[i].Demand

		if !fitsOn(demand, usage[host], r.hosts[host].Capacity) {
			host = r.bestFallback(demand, usage)
		}

		assignment[i] = host
		if host != unassigned {
			usage[host] = usage[host].Add(demand)
		}
	}
}

// bestFallback picks the host with the most remaining capacity, averaged
// across dimensions, among hosts that can still take the demand. Ties go to
// the lowest host index.
func (r *repairer) bestFallback(demand domain.ResourceVector, usage []domain.ResourceVector) int {
	best := unassigned
	bestScore := -1.0

	for h := range r.hosts {
		if !fitsOn(demand, usage[h], r.hosts[h].Capacity) {
			continue
		}
		if score := remainingFraction(usage[h], r.hosts[h].Capacity); score > bestScore {
			best = h
			bestScore = score
		}
	}
	return best
}

// fitsOn reports whether demand fits on a host given its accumulated usage.
func fitsOn(demand, usage, capacity domain.ResourceVector) bool {
	return usage.Add(demand).Fits(capacity)
}

// remainingFraction is the mean unused capacity fraction across dimensions.
func remainingFraction(usage, capacity domain.ResourceVector) float64 {
	used := usage.AsSlice()
	caps := capacity.AsSlice()

	var sum float64
	for d := 0; d < domain.Dimensions; d++ {
		if caps[d] > 0 {
			sum += (caps[d] - used[d]) / caps[d]
		}
	}
	return sum / domain.Dimensions
}

// wrapIndex maps an arbitrary integer into [0, n) by modulo, handling
// negatives.
func wrapIndex(idx, n int) int {
	wrapped := idx % n
	if wrapped < 0 {
		wrapped += n
	}
	return wrapped
}
