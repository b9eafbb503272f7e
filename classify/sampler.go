package classify

import (
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/shirou/gopsutil/cpu"

	"github.com/generalpy101/fix-life/snapshot"
)

// Sampler gathers the runtime signals for one process. Implementations
// must not return partial garbage: on access failure they return an
// error and the caller scores the process as non-game.
type Sampler interface {
	Sample(p snapshot.Process) (Sample, error)
}

// SystemSampler measures live processes. The CPU signal needs a short
// observation window (about a second) per process, which is why
// classification runs on its own loop and never on the accounting
// path.
type SystemSampler struct {
	clock    clockwork.Clock
	numCores int
}

func NewSystemSampler(clock clockwork.Clock) *SystemSampler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	cores, err := cpu.Counts(true)
	if err != nil || cores <= 0 {
		cores = 1
	}
	return &SystemSampler{clock: clock, numCores: cores}
}

func (s *SystemSampler) Sample(p snapshot.Process) (Sample, error) {
	// Baseline call, then measure over a one second window.
	if _, err := p.CPUPercent(); err != nil {
		return Sample{}, err
	}
	s.clock.Sleep(time.Second)
	cpuPct, err := p.CPUPercent()
	if err != nil {
		return Sample{}, err
	}
	// Above 100 means the process spans several cores; normalize.
	if cpuPct > 100 {
		cpuPct /= float64(s.numCores)
	}

	mem, err := p.MemoryMB()
	if err != nil {
		return Sample{}, err
	}

	gpu := gpuUsageByPID()[p.Pid()]

	return Sample{
		ExePath:    strings.ToLower(p.Exe()),
		CPUPercent: cpuPct,
		GPUPercent: gpu,
		MemoryMB:   mem,
		Fullscreen: isFullscreen(p.Pid()),
	}, nil
}
