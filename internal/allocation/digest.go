package allocation

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"

	"github.com/puneet-chandna/hippoplace/internal/domain"
)

// snapshotDigest derives a stable cache key from the datacenter snapshot and
// the run configuration. The engine sorts its inputs, so the digest does too:
// two snapshots differing only in order hash identically.
func snapshotDigest(vms []domain.VMDemand, hosts []domain.HostCapacity, profile string, seed int64) string {
	sortedVMs := make([]domain.VMDemand, len(vms))
	copy(sortedVMs, vms)
	sort.Slice(sortedVMs, func(i, j int) bool { return sortedVMs[i].ID < sortedVMs[j].ID })

	sortedHosts := make([]domain.HostCapacity, len(hosts))
	copy(sortedHosts, hosts)
	sort.Slice(sortedHosts, func(i, j int) bool { return sortedHosts[i].ID < sortedHosts[j].ID })

	h := sha256.New()
	fmt.Fprintf(h, "profile=%s;seed=%d;", profile, seed)
	for _, vm := range sortedVMs {
		fmt.Fprintf(h, "vm=%s:%v;", vm.ID, vm.Demand)
	}
	for _, host := range sortedHosts {
		fmt.Fprintf(h, "host=%s:%v:%s;", host.ID, host.Capacity, host.PowerSpec)
	}
	return "placement:" + hex.EncodeToString(h.Sum(nil))
}
