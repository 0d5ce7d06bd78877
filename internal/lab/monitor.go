package lab

import (
	"sync"
	"time"
)

// TickStats summarises observed tick processing durations.
type TickStats struct {
	Samples int           `json:"samples"`
	Dropped int           `json:"dropped"`
	Average time.Duration `json:"average"`
	Max     time.Duration `json:"max"`
	Last    time.Duration `json:"last"`
}

// AverageHz derives the tick frequency equivalent of the mean duration.
func (s TickStats) AverageHz() float64 {
	if s.Average <= 0 {
		return 0
	}
	return float64(time.Second) / float64(s.Average)
}

// TickMonitor accumulates timing statistics for the simulation loop so the
// status endpoint can report whether the lab is keeping interactive rates.
type TickMonitor struct {
	mu      sync.Mutex
	samples int
	dropped int
	total   time.Duration
	max     time.Duration
	last    time.Duration
}

// NewTickMonitor returns an empty monitor.
func NewTickMonitor() *TickMonitor {
	return &TickMonitor{}
}

// Observe records the processing duration of one accepted tick.
func (m *TickMonitor) Observe(d time.Duration) {
	if m == nil || d <= 0 {
		return
	}
	m.mu.Lock()
	m.samples++
	m.total += d
	if d > m.max {
		m.max = d
	}
	m.last = d
	m.mu.Unlock()
}

// ObserveDrop counts a tick rejected by the delta clamp.
func (m *TickMonitor) ObserveDrop() {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.dropped++
	m.mu.Unlock()
}

// Snapshot returns a copy of the aggregated statistics.
func (m *TickMonitor) Snapshot() TickStats {
	if m == nil {
		return TickStats{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stats := TickStats{Samples: m.samples, Dropped: m.dropped, Max: m.max, Last: m.last}
	if m.samples > 0 {
		stats.Average = m.total / time.Duration(m.samples)
	}
	return stats
}

// Reset clears the accumulated statistics.
func (m *TickMonitor) Reset() {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.samples = 0
	m.dropped = 0
	m.total = 0
	m.max = 0
	m.last = 0
	m.mu.Unlock()
}
