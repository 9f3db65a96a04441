// Package allocation wraps the optimization engine in a placement policy:
// named objective-weight profiles, bounded run history, and optional
// write-through caching and persistence.
package allocation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/puneet-chandna/hippoplace/internal/domain"
	"github.com/puneet-chandna/hippoplace/internal/optimizer"
)

// Weight profiles replace the subclass-per-policy approach: one engine,
// parameterized by an explicit weight set.
const (
	ProfileBalanced   = "balanced"
	ProfileSLAAware   = "sla"
	ProfilePowerAware = "power"
)

// BalancedWeights spreads importance evenly across the objectives.
func BalancedWeights() optimizer.ObjectiveWeights {
	return optimizer.ObjectiveWeights{
		Utilization:   0.25,
		LoadBalance:   0.20,
		Fragmentation: 0.15,
		Power:         0.20,
		SLA:           0.20,
	}
}

// SLAAwareWeights emphasizes keeping hosts under the SLA safety threshold.
func SLAAwareWeights() optimizer.ObjectiveWeights {
	return optimizer.ObjectiveWeights{
		Utilization:   0.15,
		LoadBalance:   0.20,
		Fragmentation: 0.10,
		Power:         0.15,
		SLA:           0.40,
	}
}

// PowerAwareWeights emphasizes consolidating load to minimize estimated draw.
func PowerAwareWeights() optimizer.ObjectiveWeights {
	return optimizer.ObjectiveWeights{
		Utilization:   0.20,
		LoadBalance:   0.10,
		Fragmentation: 0.15,
		Power:         0.40,
		SLA:           0.15,
	}
}

// WeightsForProfile resolves a profile name to its weight set.
func WeightsForProfile(profile string) (optimizer.ObjectiveWeights, error) {
	switch profile {
	case ProfileBalanced, "":
		return BalancedWeights(), nil
	case ProfileSLAAware:
		return SLAAwareWeights(), nil
	case ProfilePowerAware:
		return PowerAwareWeights(), nil
	default:
		return optimizer.ObjectiveWeights{}, fmt.Errorf("%w: unknown weight profile %q", domain.ErrInvalidArgument, profile)
	}
}

// PlacementCache serves placements for unchanged datacenter snapshots.
// GetPlacement signals a miss with an error wrapping domain.ErrNotFound;
// any other error is a cache failure.
type PlacementCache interface {
	GetPlacement(ctx context.Context, key string) (*domain.Placement, error)
	SetPlacement(ctx context.Context, key string, p *domain.Placement) error
}

// RunStore persists completed placements.
type RunStore interface {
	Create(ctx context.Context, p *domain.Placement) error
}

// Policy runs placements with a fixed profile and retains their history.
type Policy struct {
	engine  *optimizer.Engine
	params  optimizer.Parameters
	profile string
	history *History
	cache   PlacementCache
	store   RunStore
	logger  *zap.Logger
}

// Option configures optional policy collaborators.
type Option func(*Policy)

// WithCache enables placement caching.
func WithCache(cache PlacementCache) Option {
	return func(p *Policy) { p.cache = cache }
}

// WithStore enables run persistence.
func WithStore(store RunStore) Option {
	return func(p *Policy) { p.store = store }
}

// NewPolicy creates a placement policy. The profile selects the objective
// weights; params carries the remaining search configuration.
func NewPolicy(profile string, params optimizer.Parameters, historySize int, logger *zap.Logger, opts ...Option) (*Policy, error) {
	weights, err := WeightsForProfile(profile)
	if err != nil {
		return nil, err
	}
	if profile == "" {
		profile = ProfileBalanced
	}
	params.Weights = weights
	if err := params.Validate(); err != nil {
		return nil, err
	}

	p := &Policy{
		engine:  optimizer.NewEngine(logger),
		params:  params,
		profile: profile,
		history: NewHistory(historySize),
		logger:  logger.With(zap.String("component", "allocation"), zap.String("profile", profile)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Place runs one optimization over the given snapshot and returns the
// placement record. Cached placements are reused when the snapshot, weights,
// and seed are unchanged. Cache and store failures degrade to a plain run.
func (p *Policy) Place(ctx context.Context, vms []domain.VMDemand, hosts []domain.HostCapacity) (*domain.Placement, error) {
	key := snapshotDigest(vms, hosts, p.profile, p.params.Seed)

	if p.cache != nil {
		cached, err := p.cache.GetPlacement(ctx, key)
		switch {
		case err == nil:
			p.logger.Debug("Placement served from cache", zap.String("run_id", cached.RunID))
			return cached, nil
		case !errors.Is(err, domain.ErrNotFound):
			p.logger.Warn("Placement cache lookup failed", zap.Error(err))
		}
	}

	start := time.Now()
	result, err := p.engine.Optimize(ctx, vms, hosts, p.params)
	if err != nil {
		return nil, fmt.Errorf("optimization failed: %w", err)
	}

	placement := &domain.Placement{
		RunID:          uuid.NewString(),
		Profile:        p.profile,
		Mapping:        result.BestMapping(),
		Unplaced:       result.UnplacedVMs(),
		VMCount:        len(vms),
		HostCount:      len(hosts),
		BestFitness:    result.BestFitness(),
		Feasible:       result.Feasible(),
		Iterations:     result.Iterations(),
		ConvergedAfter: result.ConvergenceIterations(),
		StopReason:     result.StopReason(),
		FitnessHistory: result.FitnessHistory(),
		Elapsed:        time.Since(start),
		CreatedAt:      time.Now().UTC(),
	}

	p.history.Add(*placement)

	if p.cache != nil {
		if err := p.cache.SetPlacement(ctx, key, placement); err != nil {
			p.logger.Warn("Failed to cache placement", zap.Error(err))
		}
	}
	if p.store != nil {
		if err := p.store.Create(ctx, placement); err != nil {
			p.logger.Warn("Failed to persist placement", zap.Error(err))
		}
	}

	p.logger.Info("Placement complete",
		zap.String("run_id", placement.RunID),
		zap.Int("placed", len(placement.Mapping)),
		zap.Int("unplaced", len(placement.Unplaced)),
		zap.Float64("best_fitness", placement.BestFitness),
		zap.Int("iterations", placement.Iterations),
		zap.String("stop_reason", string(placement.StopReason)),
		zap.Duration("elapsed", placement.Elapsed),
	)
	return placement, nil
}

// History returns the recent-placement buffer.
func (p *Policy) History() *History {
	return p.history
}
