package assetstream

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus;
// see the observability package for a ready-made collector.
type MetricsCollector interface {
	// RecordIteration is called after each controller pass.
	// skipped is true when the pass returned early due to backpressure.
	RecordIteration(duration time.Duration, activated, evicted int, skipped bool)

	// RecordBlocking is called after each IterateBlocking call.
	// admitted is false when the target was already resident or pending.
	RecordBlocking(duration time.Duration, admitted bool)

	// RecordConsumed is called whenever a pass finishes with the current
	// aggregate cost and budget.
	RecordConsumed(total, budget uint64)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordIteration(time.Duration, int, int, bool) {}
func (NoopMetricsCollector) RecordBlocking(time.Duration, bool)            {}
func (NoopMetricsCollector) RecordConsumed(uint64, uint64)                 {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	PassCount         atomic.Int64
	PassSkipped       atomic.Int64
	PassTotalNanos    atomic.Int64
	Activated         atomic.Int64
	Evicted           atomic.Int64
	BlockingCount     atomic.Int64
	BlockingAdmitted  atomic.Int64
	BlockingTotalNano atomic.Int64
	TotalConsumed     atomic.Uint64
	Budget            atomic.Uint64
}

// RecordIteration implements MetricsCollector.
func (b *BasicMetricsCollector) RecordIteration(duration time.Duration, activated, evicted int, skipped bool) {
	b.PassCount.Add(1)
	b.PassTotalNanos.Add(duration.Nanoseconds())
	if skipped {
		b.PassSkipped.Add(1)
		return
	}
	b.Activated.Add(int64(activated))
	b.Evicted.Add(int64(evicted))
}

// RecordBlocking implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBlocking(duration time.Duration, admitted bool) {
	b.BlockingCount.Add(1)
	b.BlockingTotalNano.Add(duration.Nanoseconds())
	if admitted {
		b.BlockingAdmitted.Add(1)
	}
}

// RecordConsumed implements MetricsCollector.
func (b *BasicMetricsCollector) RecordConsumed(total, budget uint64) {
	b.TotalConsumed.Store(total)
	b.Budget.Store(budget)
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		PassCount:        b.PassCount.Load(),
		PassSkipped:      b.PassSkipped.Load(),
		PassAvgNanos:     avg(b.PassTotalNanos.Load(), b.PassCount.Load()),
		Activated:        b.Activated.Load(),
		Evicted:          b.Evicted.Load(),
		BlockingCount:    b.BlockingCount.Load(),
		BlockingAdmitted: b.BlockingAdmitted.Load(),
		BlockingAvgNanos: avg(b.BlockingTotalNano.Load(), b.BlockingCount.Load()),
		TotalConsumed:    b.TotalConsumed.Load(),
		Budget:           b.Budget.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	PassCount        int64
	PassSkipped      int64
	PassAvgNanos     int64
	Activated        int64
	Evicted          int64
	BlockingCount    int64
	BlockingAdmitted int64
	BlockingAvgNanos int64
	TotalConsumed    uint64
	Budget           uint64
}
