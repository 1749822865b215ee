package app

import (
	"sync/atomic"
	"time"
)

// Metrics tracks live reload activity.
type Metrics struct {
	ticks       atomic.Uint64
	events      atomic.Uint64
	reloads     atomic.Uint64
	failures    atomic.Uint64
	ignored     atomic.Uint64
	tickTotalNs atomic.Int64
	tickMaxNs   atomic.Int64
	lastReload  atomic.Int64

	startTime time.Time
}

// NewMetrics creates a new metrics tracker.
func NewMetrics() *Metrics {
	return &Metrics{startTime: time.Now()}
}

// RecordTick records one drain of the watcher queue.
func (m *Metrics) RecordTick(duration time.Duration, events int) {
	ns := duration.Nanoseconds()

	m.ticks.Add(1)
	m.events.Add(uint64(events))
	m.tickTotalNs.Add(ns)

	for {
		old := m.tickMaxNs.Load()
		if ns <= old {
			break
		}
		if m.tickMaxNs.CompareAndSwap(old, ns) {
			break
		}
	}
}

// RecordReload records a file applied to a tree.
func (m *Metrics) RecordReload() {
	m.reloads.Add(1)
	m.lastReload.Store(time.Now().UnixNano())
}

// RecordFailure records a file that could not be applied.
func (m *Metrics) RecordFailure() {
	m.failures.Add(1)
}

// RecordIgnored records an event that did not lead to a reload: an
// unregistered mod, a removed file, or this process's own write.
func (m *Metrics) RecordIgnored() {
	m.ignored.Add(1)
}

// Snapshot returns a snapshot of current metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	ticks := m.ticks.Load()

	var avgTickNs int64
	if ticks > 0 {
		avgTickNs = m.tickTotalNs.Load() / int64(ticks)
	}

	var last time.Time
	if ns := m.lastReload.Load(); ns != 0 {
		last = time.Unix(0, ns)
	}

	return MetricsSnapshot{
		Uptime:     time.Since(m.startTime),
		Ticks:      ticks,
		Events:     m.events.Load(),
		Reloads:    m.reloads.Load(),
		Failures:   m.failures.Load(),
		Ignored:    m.ignored.Load(),
		AvgTickNs:  avgTickNs,
		MaxTickNs:  m.tickMaxNs.Load(),
		LastReload: last,
	}
}

// MetricsSnapshot is a point-in-time view of metrics.
type MetricsSnapshot struct {
	Uptime     time.Duration
	Ticks      uint64
	Events     uint64
	Reloads    uint64
	Failures   uint64
	Ignored    uint64
	AvgTickNs  int64
	MaxTickNs  int64
	LastReload time.Time
}
