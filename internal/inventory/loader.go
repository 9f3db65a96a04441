// Package inventory loads datacenter snapshots (VM demands and host
// capacities) from JSON files.
package inventory

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/puneet-chandna/hippoplace/internal/domain"
	"github.com/puneet-chandna/hippoplace/internal/power"
)

// hostEntry is the on-disk shape of one host. The power section is optional:
// a named profile, explicit idle/max watts, or a measured curve.
type hostEntry struct {
	ID       string                `json:"id"`
	Capacity domain.ResourceVector `json:"capacity"`

	PowerProfile string             `json:"power_profile,omitempty"`
	IdleWatts    float64            `json:"idle_watts,omitempty"`
	MaxWatts     float64            `json:"max_watts,omitempty"`
	PowerCurve   []power.CurvePoint `json:"power_curve,omitempty"`
}

// Snapshot is the on-disk shape of a datacenter inventory file.
type Snapshot struct {
	VMs   []domain.VMDemand `json:"vms"`
	Hosts []hostEntry       `json:"hosts"`
}

// Load reads and validates an inventory file.
func Load(path string) ([]domain.VMDemand, []domain.HostCapacity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read inventory file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates an inventory snapshot.
func Parse(data []byte) ([]domain.VMDemand, []domain.HostCapacity, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, nil, fmt.Errorf("failed to parse inventory: %w", err)
	}

	vmIDs := make(map[string]struct{}, len(snap.VMs))
	for _, vm := range snap.VMs {
		if vm.ID == "" {
			return nil, nil, fmt.Errorf("%w: vm with empty id", domain.ErrInvalidArgument)
		}
		if _, dup := vmIDs[vm.ID]; dup {
			return nil, nil, fmt.Errorf("%w: duplicate vm id %q", domain.ErrInvalidArgument, vm.ID)
		}
		vmIDs[vm.ID] = struct{}{}
		if !vm.Demand.IsNonNegative() {
			return nil, nil, fmt.Errorf("%w: vm %q has negative demand", domain.ErrInvalidArgument, vm.ID)
		}
	}

	hosts := make([]domain.HostCapacity, 0, len(snap.Hosts))
	hostIDs := make(map[string]struct{}, len(snap.Hosts))
	for _, entry := range snap.Hosts {
		if entry.ID == "" {
			return nil, nil, fmt.Errorf("%w: host with empty id", domain.ErrInvalidArgument)
		}
		if _, dup := hostIDs[entry.ID]; dup {
			return nil, nil, fmt.Errorf("%w: duplicate host id %q", domain.ErrInvalidArgument, entry.ID)
		}
		hostIDs[entry.ID] = struct{}{}
		if !entry.Capacity.IsNonNegative() {
			return nil, nil, fmt.Errorf("%w: host %q has negative capacity", domain.ErrInvalidArgument, entry.ID)
		}

		model, spec, err := powerModelFor(entry)
		if err != nil {
			return nil, nil, err
		}
		hosts = append(hosts, domain.HostCapacity{
			ID:        entry.ID,
			Capacity:  entry.Capacity,
			Power:     model,
			PowerSpec: spec,
		})
	}

	return snap.VMs, hosts, nil
}

// powerModelFor resolves a host's power section. Precedence: measured curve,
// explicit watts, named profile. Hosts with none configured return nil and
// fall back to the engine default. The second return is the canonical spec
// string for domain.HostCapacity.PowerSpec.
func powerModelFor(entry hostEntry) (domain.PowerModel, string, error) {
	switch {
	case len(entry.PowerCurve) > 0:
		return power.Curve(entry.PowerCurve), fmt.Sprintf("curve:%v", entry.PowerCurve), nil
	case entry.MaxWatts > 0:
		return power.Linear(entry.IdleWatts, entry.MaxWatts),
			fmt.Sprintf("linear:%g/%g", entry.IdleWatts, entry.MaxWatts), nil
	case entry.PowerProfile != "":
		model, ok := power.Profile(entry.PowerProfile)
		if !ok {
			return nil, "", fmt.Errorf("%w: host %q references unknown power profile %q",
				domain.ErrInvalidArgument, entry.ID, entry.PowerProfile)
		}
		return model, "profile:" + entry.PowerProfile, nil
	default:
		return nil, "", nil
	}
}
