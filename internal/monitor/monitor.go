package monitor

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/sirupsen/logrus"
)

// Snapshot is one observation of host load taken around a training run.
type Snapshot struct {
	Timestamp     time.Time `json:"timestamp"`
	CPUPercent    float64   `json:"cpu_percent"`
	MemoryPercent float64   `json:"memory_percent"`
	MemoryUsedMB  uint64    `json:"memory_used_mb"`
	Goroutines    int       `json:"goroutines"`
	ActiveRuns    int       `json:"active_runs"`
}

const historyLimit = 100

// Monitor tracks host load and in-flight training runs. Model search is the
// only CPU-heavy path in the service, so the monitor gates how many runs may
// train concurrently.
type Monitor struct {
	logger  *logrus.Logger
	maxRuns int

	mu         sync.Mutex
	activeRuns int
	history    []Snapshot
}

// New creates a monitor allowing maxRuns concurrent training runs. A
// non-positive limit defaults to the CPU count.
func New(maxRuns int, logger *logrus.Logger) *Monitor {
	if maxRuns <= 0 {
		maxRuns = runtime.NumCPU()
	}
	return &Monitor{
		logger:  logger,
		maxRuns: maxRuns,
	}
}

// AcquireRun reserves a training slot. It returns false when the service is
// already training at capacity; callers should answer 503 rather than queue.
func (m *Monitor) AcquireRun() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.activeRuns >= m.maxRuns {
		return false
	}
	m.activeRuns++
	return true
}

// ReleaseRun frees a training slot.
func (m *Monitor) ReleaseRun() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.activeRuns > 0 {
		m.activeRuns--
	}
}

// ActiveRuns returns the number of in-flight training runs.
func (m *Monitor) ActiveRuns() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.activeRuns
}

// Sample records a load snapshot. CPU usage is measured against the
// previous call, so the first sample after startup reads zero.
func (m *Monitor) Sample(ctx context.Context) (Snapshot, error) {
	snapshot := Snapshot{
		Timestamp:  time.Now().UTC(),
		Goroutines: runtime.NumGoroutine(),
		ActiveRuns: m.ActiveRuns(),
	}

	if cpuPercent, err := cpu.PercentWithContext(ctx, 0, false); err == nil && len(cpuPercent) > 0 {
		snapshot.CPUPercent = cpuPercent[0]
	} else if err != nil {
		return snapshot, err
	}

	memInfo, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return snapshot, err
	}
	snapshot.MemoryPercent = memInfo.UsedPercent
	snapshot.MemoryUsedMB = memInfo.Used / 1024 / 1024

	m.mu.Lock()
	m.history = append(m.history, snapshot)
	if len(m.history) > historyLimit {
		m.history = m.history[len(m.history)-historyLimit:]
	}
	m.mu.Unlock()

	return snapshot, nil
}

// Run samples on the given interval until the context is cancelled.
func (m *Monitor) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snapshot, err := m.Sample(ctx)
			if err != nil {
				m.logger.WithError(err).Debug("Resource sampling failed")
				continue
			}
			if snapshot.CPUPercent > 90 || snapshot.MemoryPercent > 90 {
				m.logger.WithFields(logrus.Fields{
					"cpu_percent":    snapshot.CPUPercent,
					"memory_percent": snapshot.MemoryPercent,
					"active_runs":    snapshot.ActiveRuns,
				}).Warn("Host under heavy load during training window")
			}
		}
	}
}

// History returns up to limit recent snapshots, newest last.
func (m *Monitor) History(limit int) []Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	if limit <= 0 || limit > len(m.history) {
		limit = len(m.history)
	}
	out := make([]Snapshot, limit)
	copy(out, m.history[len(m.history)-limit:])
	return out
}
