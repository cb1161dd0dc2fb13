package taskcore

import "github.com/klauspost/cpuid/v2"

// CPUInfo reports the host CPU topology queried at startup. dispatch's
// Adaptive strategy uses LogicalCores as its pool count in place of the
// configured NumPools.
type CPUInfo struct {
	VendorString  string
	PhysicalCores int
	LogicalCores  int
	CacheLine     int
	IsVirtualized bool
}

// QueryCPUInfo wraps github.com/klauspost/cpuid/v2 as a thin platform
// shim: taskcore only needs the topology numbers, not a full CPUID
// decoder.
func QueryCPUInfo() CPUInfo {
	line := int(cpuid.CPU.CacheLine)
	if line <= 0 {
		line = CacheLineSize
	}
	return CPUInfo{
		VendorString:  cpuid.CPU.VendorString,
		PhysicalCores: cpuid.CPU.PhysicalCores,
		LogicalCores:  cpuid.CPU.LogicalCores,
		CacheLine:     line,
		IsVirtualized: cpuid.CPU.VM(),
	}
}

// CacheLineSize is the L1 cache line size taskcore aligns task records
// and pool-storage hot fields to. This is configuration-dependent; 64 is
// a safe default when detection fails.
const CacheLineSize = 64
