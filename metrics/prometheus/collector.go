// Package prometheus exports buffer metrics to a Prometheus registry.
package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/hupe1980/mmapbuf"
)

const namespace = "mmapbuf"

// Collector is the Prometheus implementation of mmapbuf.MetricsCollector.
type Collector struct {
	splices        *prometheus.CounterVec
	spliceDuration prometheus.Histogram
	bytesInserted  prometheus.Counter
	bytesRemoved   prometheus.Counter
	remaps         *prometheus.CounterVec
	remapDuration  prometheus.Histogram
	capacity       prometheus.Gauge
	flushes        *prometheus.CounterVec
	flushDuration  prometheus.Histogram
	locks          *prometheus.CounterVec
	lockWait       prometheus.Histogram
}

var _ mmapbuf.MetricsCollector = (*Collector)(nil)

// New registers the buffer metrics with reg. A nil reg uses the default
// registerer.
func New(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &Collector{
		splices: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "splices_total",
			Help:      "Range replacements by status",
		}, []string{"status"}),
		spliceDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "splice_duration_seconds",
			Help:      "Duration of range replacements including any remap",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
		}),
		bytesInserted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inserted_bytes_total",
			Help:      "Net bytes added by growing edits",
		}),
		bytesRemoved: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "removed_bytes_total",
			Help:      "Net bytes dropped by shrinking edits",
		}),
		remaps: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "remaps_total",
			Help:      "Capacity changes by direction and status",
		}, []string{"direction", "status"}),
		remapDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "remap_duration_seconds",
			Help:      "Duration of unmap, resize and map",
			Buckets:   prometheus.ExponentialBuckets(1e-5, 4, 10),
		}),
		capacity: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_capacity_bytes",
			Help:      "Capacity reached by the most recent successful remap",
		}),
		flushes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flushes_total",
			Help:      "Flush calls by status",
		}, []string{"status"}),
		flushDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "flush_duration_seconds",
			Help:      "Duration of msync and shrink",
			Buckets:   prometheus.DefBuckets,
		}),
		locks: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lock_acquisitions_total",
			Help:      "Outermost cross-process acquisitions by outcome",
		}, []string{"outcome"}),
		lockWait: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "lock_wait_seconds",
			Help:      "Time spent waiting for a contended semaphore",
			Buckets:   prometheus.ExponentialBuckets(1e-3, 2, 12),
		}),
	}
}

// RecordSplice implements mmapbuf.MetricsCollector.
func (c *Collector) RecordSplice(delta int, duration time.Duration, err error) {
	c.splices.WithLabelValues(status(err)).Inc()
	c.spliceDuration.Observe(duration.Seconds())
	if err != nil {
		return
	}
	if delta > 0 {
		c.bytesInserted.Add(float64(delta))
	} else if delta < 0 {
		c.bytesRemoved.Add(float64(-delta))
	}
}

// RecordRemap implements mmapbuf.MetricsCollector.
func (c *Collector) RecordRemap(from, to int, duration time.Duration, err error) {
	direction := "grow"
	if to < from {
		direction = "shrink"
	}
	c.remaps.WithLabelValues(direction, status(err)).Inc()
	c.remapDuration.Observe(duration.Seconds())
	if err == nil {
		c.capacity.Set(float64(to))
	}
}

// RecordFlush implements mmapbuf.MetricsCollector.
func (c *Collector) RecordFlush(duration time.Duration, err error) {
	c.flushes.WithLabelValues(status(err)).Inc()
	c.flushDuration.Observe(duration.Seconds())
}

// RecordLock implements mmapbuf.MetricsCollector.
func (c *Collector) RecordLock(wait time.Duration, contended bool, err error) {
	outcome := "free"
	switch {
	case err != nil:
		outcome = "error"
	case contended:
		outcome = "contended"
	}
	c.locks.WithLabelValues(outcome).Inc()
	if contended {
		c.lockWait.Observe(wait.Seconds())
	}
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
