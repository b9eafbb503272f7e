//go:build !windows

package classify

// GPU utilization per process is only obtainable through the Windows
// performance counters; elsewhere the signal contributes nothing.
func gpuUsageByPID() map[int32]float64 {
	return nil
}
