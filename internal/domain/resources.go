// Package domain contains the data model shared by the placement engine and its callers.
package domain

// ResourceVector holds one quantity per resource dimension tracked by the placer.
type ResourceVector struct {
	CPUCores      float64 `json:"cpu_cores"`
	MemoryMiB     float64 `json:"memory_mib"`
	StorageGiB    float64 `json:"storage_gib"`
	BandwidthMbps float64 `json:"bandwidth_mbps"`
}

// Dimensions is the number of resource dimensions in a ResourceVector.
const Dimensions = 4

// AsSlice returns the vector's dimensions in fixed order (CPU, memory, storage, bandwidth).
func (v ResourceVector) AsSlice() [Dimensions]float64 {
	return [Dimensions]float64{v.CPUCores, v.MemoryMiB, v.StorageGiB, v.BandwidthMbps}
}

// Add returns the element-wise sum of two vectors.
func (v ResourceVector) Add(o ResourceVector) ResourceVector {
	return ResourceVector{
		CPUCores:      v.CPUCores + o.CPUCores,
		MemoryMiB:     v.MemoryMiB + o.MemoryMiB,
		StorageGiB:    v.StorageGiB + o.StorageGiB,
		BandwidthMbps: v.BandwidthMbps + o.BandwidthMbps,
	}
}

// Fits reports whether v fits inside the capacity vector in every dimension.
func (v ResourceVector) Fits(capacity ResourceVector) bool {
	return v.CPUCores <= capacity.CPUCores &&
		v.MemoryMiB <= capacity.MemoryMiB &&
		v.StorageGiB <= capacity.StorageGiB &&
		v.BandwidthMbps <= capacity.BandwidthMbps
}

// IsNonNegative reports whether every dimension is >= 0.
func (v ResourceVector) IsNonNegative() bool {
	return v.CPUCores >= 0 && v.MemoryMiB >= 0 && v.StorageGiB >= 0 && v.BandwidthMbps >= 0
}

// UtilizationOf returns the mean used/capacity fraction across dimensions.
// Dimensions with zero capacity contribute zero rather than dividing by zero.
func (v ResourceVector) UtilizationOf(capacity ResourceVector) float64 {
	used := v.AsSlice()
	caps := capacity.AsSlice()

	var sum float64
	for i := 0; i < Dimensions; i++ {
		if caps[i] > 0 {
			sum += used[i] / caps[i]
		}
	}
	return sum / Dimensions
}

// PowerModel maps a host utilization fraction in [0,1] to estimated watts.
type PowerModel func(utilization float64) float64

// VMDemand is the resource requirement of one virtual machine. Immutable input
// to an optimization run.
type VMDemand struct {
	ID     string         `json:"id"`
	Demand ResourceVector `json:"demand"`
}

// HostCapacity is a snapshot of one physical host's available resources, valid
// for the duration of a single optimization run.
type HostCapacity struct {
	ID       string         `json:"id"`
	Capacity ResourceVector `json:"capacity"`

	// Power estimates draw at a given utilization. Nil hosts fall back to the
	// engine's linear idle+dynamic model.
	Power PowerModel `json:"-"`

	// PowerSpec is the canonical description of Power, used wherever the
	// snapshot must be compared or hashed. Functions cannot be compared, so
	// producers of a non-nil Power must set a spec that changes whenever the
	// model does. Empty means the engine default.
	PowerSpec string `json:"power_spec,omitempty"`
}
