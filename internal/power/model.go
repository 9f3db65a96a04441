// Package power provides host power-draw models used by the fitness evaluator.
package power

import (
	"sort"

	"github.com/puneet-chandna/hippoplace/internal/domain"
)

// Default wattages for the linear fallback model, roughly a mid-range 2U server.
const (
	DefaultIdleWatts = 170.0
	DefaultMaxWatts  = 250.0
)

// Linear returns a model with a fixed idle draw plus a dynamic share that grows
// linearly with utilization. Utilization is clamped to [0,1].
func Linear(idleWatts, maxWatts float64) domain.PowerModel {
	if maxWatts < idleWatts {
		maxWatts = idleWatts
	}
	return func(utilization float64) float64 {
		if utilization < 0 {
			utilization = 0
		} else if utilization > 1 {
			utilization = 1
		}
		return idleWatts + (maxWatts-idleWatts)*utilization
	}
}

// CurvePoint is one measured (utilization, watts) sample of a host profile.
type CurvePoint struct {
	Utilization float64 `json:"utilization"`
	Watts       float64 `json:"watts"`
}

// Curve returns a model that linearly interpolates between measured samples.
// Points are sorted by utilization; draws outside the sampled range are clamped
// to the nearest endpoint. An empty point set falls back to the default linear model.
func Curve(points []CurvePoint) domain.PowerModel {
	if len(points) == 0 {
		return Linear(DefaultIdleWatts, DefaultMaxWatts)
	}

	sorted := make([]CurvePoint, len(points))
	copy(sorted, points)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Utilization < sorted[j].Utilization
	})

	return func(utilization float64) float64 {
		if utilization <= sorted[0].Utilization {
			return sorted[0].Watts
		}
		last := sorted[len(sorted)-1]
		if utilization >= last.Utilization {
			return last.Watts
		}
		for i := 1; i < len(sorted); i++ {
			if utilization <= sorted[i].Utilization {
				lo, hi := sorted[i-1], sorted[i]
				span := hi.Utilization - lo.Utilization
				if span == 0 {
					return lo.Watts
				}
				frac := (utilization - lo.Utilization) / span
				return lo.Watts + (hi.Watts-lo.Watts)*frac
			}
		}
		return last.Watts
	}
}

// Profiles maps named host classes to their power models. Wattages follow the
// spread seen on heterogeneous research clusters.
var Profiles = map[string]domain.PowerModel{
	"small":  Linear(90, 140),
	"medium": Linear(DefaultIdleWatts, DefaultMaxWatts),
	"large":  Linear(220, 380),
}

// Profile looks up a named profile. Unknown names return (nil, false).
func Profile(name string) (domain.PowerModel, bool) {
	m, ok := Profiles[name]
	return m, ok
}
