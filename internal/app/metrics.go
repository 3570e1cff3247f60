package app

import (
	"sync/atomic"
	"time"
)

// Metrics counts session file operations and their latency.
// All methods are safe for concurrent use.
type Metrics struct {
	ops   [opCount]opMetrics
	start time.Time
}

const opCount = int(OpRemoved) + 1

type opMetrics struct {
	count   atomic.Uint64
	errors  atomic.Uint64
	totalNs atomic.Int64
	maxNs   atomic.Int64
}

// NewMetrics creates a new metrics tracker.
func NewMetrics() *Metrics {
	return &Metrics{start: time.Now()}
}

// Record adds one operation of kind op that took d and failed if err is
// non-nil.
func (m *Metrics) Record(op Op, d time.Duration, err error) {
	if op < 0 || int(op) >= opCount {
		return
	}
	o := &m.ops[op]
	ns := d.Nanoseconds()

	o.count.Add(1)
	if err != nil {
		o.errors.Add(1)
	}
	o.totalNs.Add(ns)

	for {
		old := o.maxNs.Load()
		if ns <= old || o.maxNs.CompareAndSwap(old, ns) {
			break
		}
	}
}

// OpStats is a point-in-time summary of one operation kind.
type OpStats struct {
	Count  uint64
	Errors uint64
	Avg    time.Duration
	Max    time.Duration
}

// MetricsSnapshot is a point-in-time copy of Metrics.
type MetricsSnapshot struct {
	Ops    map[Op]OpStats
	Uptime time.Duration
}

// Snapshot returns the current counters. Operations never recorded are
// omitted.
func (m *Metrics) Snapshot() MetricsSnapshot {
	snap := MetricsSnapshot{
		Ops:    make(map[Op]OpStats),
		Uptime: time.Since(m.start),
	}
	for i := range m.ops {
		o := &m.ops[i]
		n := o.count.Load()
		if n == 0 {
			continue
		}
		snap.Ops[Op(i)] = OpStats{
			Count:  n,
			Errors: o.errors.Load(),
			Avg:    time.Duration(o.totalNs.Load() / int64(n)),
			Max:    time.Duration(o.maxNs.Load()),
		}
	}
	return snap
}

// Timer measures elapsed time.
type Timer struct {
	start time.Time
}

// StartTimer creates a new timer.
func StartTimer() Timer {
	return Timer{start: time.Now()}
}

// Elapsed returns the elapsed time since the timer started.
func (t Timer) Elapsed() time.Duration {
	return time.Since(t.start)
}
