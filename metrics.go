package compcurve

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting sweep metrics.
// Implement this interface to integrate with monitoring systems.
type MetricsCollector interface {
	// RecordPoint is called after each sweep point, successful or skipped.
	// duration is the time taken; err is nil on success.
	RecordPoint(axis Axis, value int, duration time.Duration, err error)

	// RecordSweep is called once per completed sweep.
	// points is the number of computed points, skipped the number omitted.
	RecordSweep(axis Axis, points, skipped int, duration time.Duration)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordPoint(Axis, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordSweep(Axis, int, int, time.Duration)   {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging without external dependencies.
type BasicMetricsCollector struct {
	PointCount      atomic.Int64
	PointErrors     atomic.Int64
	PointTotalNanos atomic.Int64
	SweepCount      atomic.Int64
	SweepTotalNanos atomic.Int64
}

func (m *BasicMetricsCollector) RecordPoint(_ Axis, _ int, duration time.Duration, err error) {
	m.PointCount.Add(1)
	m.PointTotalNanos.Add(int64(duration))
	if err != nil {
		m.PointErrors.Add(1)
	}
}

func (m *BasicMetricsCollector) RecordSweep(_ Axis, _, _ int, duration time.Duration) {
	m.SweepCount.Add(1)
	m.SweepTotalNanos.Add(int64(duration))
}
