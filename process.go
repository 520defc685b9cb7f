package systemctl

import (
	"context"
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v3/process"
)

// ProcessStats describes the unit's main process
type ProcessStats struct {
	PID        int32
	Name       string
	CPUPercent float64
	MemRSS     uint64
	MemVMS     uint64
	NumThreads int32
	StartTime  time.Time
}

// MainProcess inspects the main process recorded in the cached
// properties. It returns ErrNoMainPID when the unit has none; call
// Refresh first for an up to date PID.
func (s *Service) MainProcess(ctx context.Context) (*ProcessStats, error) {
	pid := s.MainPID()
	if pid <= 0 {
		return nil, &OpError{Op: OpShow, Unit: s.Name, Err: ErrNoMainPID}
	}

	p, err := process.NewProcessWithContext(ctx, int32(pid))
	if err != nil {
		return nil, fmt.Errorf("inspecting main process %d of %s: %w", pid, s.Name, err)
	}

	stats := &ProcessStats{PID: p.Pid}
	if name, err := p.NameWithContext(ctx); err == nil {
		stats.Name = name
	}
	if cpu, err := p.CPUPercentWithContext(ctx); err == nil {
		stats.CPUPercent = cpu
	}
	if mem, err := p.MemoryInfoWithContext(ctx); err == nil && mem != nil {
		stats.MemRSS = mem.RSS
		stats.MemVMS = mem.VMS
	}
	if n, err := p.NumThreadsWithContext(ctx); err == nil {
		stats.NumThreads = n
	}
	if created, err := p.CreateTimeWithContext(ctx); err == nil {
		stats.StartTime = time.UnixMilli(created)
	}

	return stats, nil
}

// Uptime returns how long the process has been running
func (p *ProcessStats) Uptime() time.Duration {
	if p.StartTime.IsZero() {
		return 0
	}
	return time.Since(p.StartTime)
}
