// Package snapshot enumerates the processes currently running on the
// host. Each call produces a fresh, independent snapshot: processes
// whose executable path cannot be read are dropped, and processes
// sharing a resolved path are deduplicated down to one entry.
package snapshot

import "time"

// Process is one running process captured by a snapshot. Implementations
// wrap a live OS handle; fakes in tests carry canned values.
type Process interface {
	Pid() int32
	Name() string
	Exe() string
	CreateTime() time.Time

	// CPUPercent returns the CPU utilization since the previous call on
	// the same handle. The first call establishes a baseline.
	CPUPercent() (float64, error)
	// MemoryMB returns resident memory in megabytes.
	MemoryMB() (float64, error)
	Kill() error
}

// Provider returns the current process snapshot. It has no memory of
// past calls and is safe to call repeatedly.
type Provider interface {
	Snapshot() []Process
}
