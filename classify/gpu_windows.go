//go:build windows

package classify

import (
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/yusufpapurcu/wmi"
)

type win32GPUEngine struct {
	Name                  string
	UtilizationPercentage uint64
}

// gpuUsageByPID reads per-process GPU engine utilization from the WMI
// performance counters. Engine instance names embed the owning pid as
// "pid_<n>_...", summed across engines per process.
func gpuUsageByPID() map[int32]float64 {
	var engines []win32GPUEngine
	q := wmi.CreateQuery(&engines, "", "Win32_PerfFormattedData_GPUPerformanceCounters_GPUEngine")
	if err := wmi.Query(q, &engines); err != nil {
		log.Debug().Err(err).Msg("gpu counters unavailable")
		return nil
	}

	usage := make(map[int32]float64)
	for _, engine := range engines {
		if !strings.HasPrefix(engine.Name, "pid_") {
			continue
		}
		parts := strings.SplitN(strings.TrimPrefix(engine.Name, "pid_"), "_", 2)
		pid, err := strconv.ParseInt(parts[0], 10, 32)
		if err != nil {
			continue
		}
		usage[int32(pid)] += float64(engine.UtilizationPercentage)
	}
	return usage
}
