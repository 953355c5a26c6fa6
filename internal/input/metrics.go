package input

import (
	"sync/atomic"
	"time"
)

// Metrics counts lifecycle events. Counters are atomic so a status view may
// read them while the event loop runs.
type Metrics struct {
	presses          atomic.Uint64
	releases         atomic.Uint64
	unmatched        atomic.Uint64
	repeatedPresses  atomic.Uint64
	noAction         atomic.Uint64
	unknownCustom    atomic.Uint64
	hookConsumptions atomic.Uint64

	totalLatency atomic.Int64
	peakLatency  atomic.Int64

	startTime time.Time
	enabled   atomic.Bool
}

// NewMetrics creates a new metrics tracker.
func NewMetrics() *Metrics {
	m := &Metrics{startTime: time.Now()}
	m.enabled.Store(true)
	return m
}

// SetEnabled enables or disables metrics collection.
func (m *Metrics) SetEnabled(enabled bool) {
	m.enabled.Store(enabled)
}

// IsEnabled returns whether metrics collection is enabled.
func (m *Metrics) IsEnabled() bool {
	return m.enabled.Load()
}

func (m *Metrics) record(d Dispatch, pressed bool, latency time.Duration) {
	if !m.enabled.Load() {
		return
	}

	switch d.Outcome {
	case OutcomeConsumed:
		m.hookConsumptions.Add(1)
		return
	case OutcomeIgnored:
		if pressed {
			m.repeatedPresses.Add(1)
		} else {
			m.unmatched.Add(1)
		}
		return
	case OutcomeNoAction:
		if pressed {
			m.noAction.Add(1)
		}
	}

	if pressed {
		m.presses.Add(1)
	} else {
		m.releases.Add(1)
	}

	ns := latency.Nanoseconds()
	m.totalLatency.Add(ns)
	for {
		current := m.peakLatency.Load()
		if ns <= current {
			break
		}
		if m.peakLatency.CompareAndSwap(current, ns) {
			break
		}
	}
}

// RecordUnknownCustom records a press of an undefined custom keycode.
func (m *Metrics) RecordUnknownCustom() {
	if m.enabled.Load() {
		m.unknownCustom.Add(1)
	}
}

// MetricsSnapshot holds a point-in-time view of metrics.
type MetricsSnapshot struct {
	Presses          uint64
	Releases         uint64
	UnmatchedRelease uint64
	RepeatedPresses  uint64
	NoActionPresses  uint64
	UnknownCustom    uint64
	HookConsumptions uint64

	AvgLatency  time.Duration
	PeakLatency time.Duration

	Uptime time.Duration
}

// Snapshot returns a point-in-time view of all metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	snap := MetricsSnapshot{
		Presses:          m.presses.Load(),
		Releases:         m.releases.Load(),
		UnmatchedRelease: m.unmatched.Load(),
		RepeatedPresses:  m.repeatedPresses.Load(),
		NoActionPresses:  m.noAction.Load(),
		UnknownCustom:    m.unknownCustom.Load(),
		HookConsumptions: m.hookConsumptions.Load(),
		PeakLatency:      time.Duration(m.peakLatency.Load()),
		Uptime:           time.Since(m.startTime),
	}
	if n := snap.Presses + snap.Releases; n > 0 {
		snap.AvgLatency = time.Duration(m.totalLatency.Load() / int64(n))
	}
	return snap
}

// Reset clears all counters.
func (m *Metrics) Reset() {
	m.presses.Store(0)
	m.releases.Store(0)
	m.unmatched.Store(0)
	m.repeatedPresses.Store(0)
	m.noAction.Store(0)
	m.unknownCustom.Store(0)
	m.hookConsumptions.Store(0)
	m.totalLatency.Store(0)
	m.peakLatency.Store(0)
	m.startTime = time.Now()
}
