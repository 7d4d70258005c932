package mmapbuf

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems; the
// metrics/prometheus package ships a Prometheus implementation.
type MetricsCollector interface {
	// RecordSplice is called after each range replacement.
	// delta is the change in length, err is nil if successful.
	RecordSplice(delta int, duration time.Duration, err error)

	// RecordRemap is called after each capacity change.
	RecordRemap(from, to int, duration time.Duration, err error)

	// RecordFlush is called after each Flush.
	RecordFlush(duration time.Duration, err error)

	// RecordLock is called after each outermost cross-process acquisition.
	// wait is the time spent retrying, contended is true if the semaphore
	// was found taken at least once.
	RecordLock(wait time.Duration, contended bool, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordSplice(int, time.Duration, error)     {}
func (NoopMetricsCollector) RecordRemap(int, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordFlush(time.Duration, error)           {}
func (NoopMetricsCollector) RecordLock(time.Duration, bool, error)      {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	SpliceCount      atomic.Int64
	SpliceErrors     atomic.Int64
	SpliceTotalNanos atomic.Int64
	BytesInserted    atomic.Int64
	BytesRemoved     atomic.Int64
	RemapCount       atomic.Int64
	RemapErrors      atomic.Int64
	RemapGrows       atomic.Int64
	RemapShrinks     atomic.Int64
	FlushCount       atomic.Int64
	FlushErrors      atomic.Int64
	LockCount        atomic.Int64
	LockErrors       atomic.Int64
	LockContended    atomic.Int64
	LockWaitNanos    atomic.Int64
}

// RecordSplice implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSplice(delta int, duration time.Duration, err error) {
	b.SpliceCount.Add(1)
	b.SpliceTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.SpliceErrors.Add(1)
		return
	}
	if delta > 0 {
		b.BytesInserted.Add(int64(delta))
	} else {
		b.BytesRemoved.Add(int64(-delta))
	}
}

// RecordRemap implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRemap(from, to int, duration time.Duration, err error) {
	b.RemapCount.Add(1)
	if err != nil {
		b.RemapErrors.Add(1)
		return
	}
	if to > from {
		b.RemapGrows.Add(1)
	} else {
		b.RemapShrinks.Add(1)
	}
}

// RecordFlush implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFlush(duration time.Duration, err error) {
	b.FlushCount.Add(1)
	if err != nil {
		b.FlushErrors.Add(1)
	}
}

// RecordLock implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLock(wait time.Duration, contended bool, err error) {
	b.LockCount.Add(1)
	b.LockWaitNanos.Add(wait.Nanoseconds())
	if contended {
		b.LockContended.Add(1)
	}
	if err != nil {
		b.LockErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		SpliceCount:    b.SpliceCount.Load(),
		SpliceErrors:   b.SpliceErrors.Load(),
		SpliceAvgNanos: b.getAvgSpliceNanos(),
		BytesInserted:  b.BytesInserted.Load(),
		BytesRemoved:   b.BytesRemoved.Load(),
		RemapCount:     b.RemapCount.Load(),
		RemapErrors:    b.RemapErrors.Load(),
		RemapGrows:     b.RemapGrows.Load(),
		RemapShrinks:   b.RemapShrinks.Load(),
		FlushCount:     b.FlushCount.Load(),
		FlushErrors:    b.FlushErrors.Load(),
		LockCount:      b.LockCount.Load(),
		LockErrors:     b.LockErrors.Load(),
		LockContended:  b.LockContended.Load(),
		LockWaitNanos:  b.LockWaitNanos.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgSpliceNanos() int64 {
	count := b.SpliceCount.Load()
	if count == 0 {
		return 0
	}
	return b.SpliceTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	SpliceCount    int64
	SpliceErrors   int64
	SpliceAvgNanos int64
	BytesInserted  int64
	BytesRemoved   int64
	RemapCount     int64
	RemapErrors    int64
	RemapGrows     int64
	RemapShrinks   int64
	FlushCount     int64
	FlushErrors    int64
	LockCount      int64
	LockErrors     int64
	LockContended  int64
	LockWaitNanos  int64
}
