package snapshot

import (
	"time"

	"github.com/shirou/gopsutil/process"
)

// SystemProvider enumerates live processes through gopsutil.
type SystemProvider struct{}

func NewSystemProvider() *SystemProvider {
	return &SystemProvider{}
}

// Snapshot lists the currently running, access-permitted processes,
// deduplicated by executable path. Which of two PIDs sharing a path
// survives is unspecified; the first one enumerated wins here.
func (sp *SystemProvider) Snapshot() []Process {
	procs, err := process.Processes()
	if err != nil {
		return nil
	}

	byExe := make(map[string]struct{}, len(procs))
	result := make([]Process, 0, len(procs))
	for _, p := range procs {
		if p == nil {
			continue
		}
		// Reading the executable path doubles as the permission check:
		// exited or protected processes fail here and are skipped.
		exe, err := p.Exe()
		if err != nil || exe == "" {
			continue
		}
		if _, dup := byExe[exe]; dup {
			continue
		}
		name, err := p.Name()
		if err != nil || name == "" {
			continue
		}
		createMs, err := p.CreateTime()
		if err != nil {
			continue
		}
		byExe[exe] = struct{}{}
		result = append(result, &systemProcess{
			p:       p,
			name:    name,
			exe:     exe,
			created: time.UnixMilli(createMs),
		})
	}
	return result
}

type systemProcess struct {
	p       *process.Process
	created time.Time
	name    string
	exe     string
}

func (s *systemProcess) Pid() int32            { return s.p.Pid }
func (s *systemProcess) Name() string          { return s.name }
func (s *systemProcess) Exe() string           { return s.exe }
func (s *systemProcess) CreateTime() time.Time { return s.created }
func (s *systemProcess) Kill() error           { return s.p.Kill() }

func (s *systemProcess) CPUPercent() (float64, error) {
	// Percent(0) measures since the previous call on this handle,
	// mirroring the two-call sampling window in the heuristic scorer.
	return s.p.Percent(0)
}

func (s *systemProcess) MemoryMB() (float64, error) {
	info, err := s.p.MemoryInfo()
	if err != nil {
		return 0, err
	}
	return float64(info.RSS) / (1024 * 1024), nil
}
