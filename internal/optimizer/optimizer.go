// Package optimizer implements hippopotamus-optimization (HO) search for VM
// placement. A fixed-size population of candidate assignments is moved through
// the search space by three phase rules (exploration, exploitation, escape),
// repaired to feasibility, and scored against weighted objectives until the
// best-known solution converges or the iteration budget runs out.
package optimizer

import (
	"context"
	"math/rand"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/puneet-chandna/hippoplace/internal/domain"
)

// Engine runs HO placement searches. It holds no per-run state: concurrent
// Optimize calls are independent, each with its own population and RNG.
type Engine struct {
	logger *zap.Logger
}

// NewEngine creates a new placement engine.
func NewEngine(logger *zap.Logger) *Engine {
	return &Engine{
		logger: logger.With(zap.String("component", "optimizer")),
	}
}

// Optimize searches for the best VM-to-host assignment under the given
// parameters. It returns an error only for malformed parameters; empty inputs,
// infeasible VMs, non-convergence, and context expiry all yield a well-formed
// result. Cancelling or timing out the context ends the run early with the
// best solution found so far.
func (e *Engine) Optimize(ctx context.Context, vms []domain.VMDemand, hosts []domain.HostCapacity, params Parameters) (*Result, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	if len(vms) == 0 || len(hosts) == 0 {
		e.logger.Debug("Nothing to optimize",
			zap.Int("vm_count", len(vms)),
			zap.Int("host_count", len(hosts)),
		)
		return emptyResult(domain.StopEmptyInput), nil
	}

	// Sorted copies pin the repair order (ascending VM id) and the host
	// tie-break (lowest host id) regardless of input order, and keep the
	// caller's slices untouched.
	vms = sortedVMs(vms)
	hosts = sortedHosts(hosts)

	rng := rand.New(rand.NewSource(params.Seed))
	eval := newEvaluator(vms, hosts, params.Weights)
	rep := &repairer{vms: vms, hosts: hosts}
	mov := &mover{rng: rng, hostCount: len(hosts), maxIterations: params.MaxIterations}

	pop := newPopulation(params.PopulationSize)
	for i := range pop.members {
		c := newCandidate(len(vms))
		mov.randomize(c)
		pop.members[i] = c
	}
	scoreAll(pop, rep, eval, len(hosts))
	pop.updateBest()

	track := newTracker(params)
	reason := domain.StopDeadline

	for iteration := 1; iteration <= params.MaxIterations; iteration++ {
		if ctx.Err() != nil {
			e.logger.Debug("Run cancelled, returning best so far",
				zap.Int("iteration", iteration-1),
			)
			break
		}

		mov.step(pop, iteration)
		scoreAll(pop, rep, eval, len(hosts))
		pop.updateBest()

		state := track.record(pop.best.fitness)
		if state == stateConverged {
			reason = domain.StopConverged
			break
		}
		if state == stateMaxIterations {
			reason = domain.StopMaxIterations
			break
		}
	}

	result := e.assembleResult(pop.best, vms, hosts, track, reason)

	e.logger.Info("Optimization finished",
		zap.Int("vm_count", len(vms)),
		zap.Int("host_count", len(hosts)),
		zap.Int("iterations", result.iterations),
		zap.Float64("best_fitness", result.bestFitness),
		zap.Bool("feasible", result.feasible),
		zap.Int("unplaced", len(result.unplaced)),
		zap.String("stop_reason", string(reason)),
	)
	return result, nil
}

// scoreAll rounds, repairs, and scores every candidate. Candidates are
// independent within an iteration, so the pass runs in parallel; best-known
// updates are deferred to the caller's barrier.
func scoreAll(pop *population, rep *repairer, eval *evaluator, hostCount int) {
	var wg sync.WaitGroup
	for _, c := range pop.members {
		wg.Add(1)
		go func(c *candidate) {
			defer wg.Done()
			roundPositions(c)
			rep.repair(c.assignment)
			syncPosition(c, hostCount)
			c.fitness, c.feasible = eval.evaluate(c.assignment)
		}(c)
	}
	wg.Wait()
}

func (e *Engine) assembleResult(best *candidate, vms []domain.VMDemand, hosts []domain.HostCapacity, track *tracker, reason domain.StopReason) *Result {
	result := &Result{
		mapping:        make(map[string]string, len(vms)),
		history:        track.history,
		iterations:     len(track.history),
		convergedAfter: track.convergenceIterations(),
		reason:         reason,
	}
	if best == nil {
		return result
	}

	result.bestFitness = best.fitness
	result.feasible = best.feasible
	for i, host := range best.assignment {
		if host == unassigned {
			result.unplaced = append(result.unplaced, vms[i].ID)
			continue
		}
		result.mapping[vms[i].ID] = hosts[host].ID
	}
	return result
}

func sortedVMs(vms []domain.VMDemand) []domain.VMDemand {
	out := make([]domain.VMDemand, len(vms))
	copy(out, vms)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func sortedHosts(hosts []domain.HostCapacity) []domain.HostCapacity {
	out := make([]domain.HostCapacity, len(hosts))
	copy(out, hosts)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
