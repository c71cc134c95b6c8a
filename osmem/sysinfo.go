package osmem

import sigar "github.com/cloudfoundry/gosigar"

// fallback when the probe fails, assume a small host rather than refuse
// to start.
const defaultPhysicalMemory = 8 * 1024 * 1024 * 1024

// PhysicalMemory returns the total physical memory of the host in bytes,
// consulted once at startup to size the per-shard release threshold.
func PhysicalMemory() uint64 {
	mem := sigar.Mem{}
	if err := mem.Get(); err != nil || mem.Total == 0 {
		return defaultPhysicalMemory
	}
	return mem.Total
}
