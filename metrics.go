package batbit

import (
	"sync/atomic"
	"time"
)

// Component identifies the container that reports a metric.
type Component uint8

const (
	ComponentCave Component = iota
	ComponentVector
	ComponentMap
	ComponentStore
	numComponents
)

func (c Component) String() string {
	switch c {
	case ComponentCave:
		return "cave"
	case ComponentVector:
		return "vector"
	case ComponentMap:
		return "map"
	case ComponentStore:
		return "store"
	default:
		return "unknown"
	}
}

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like
// Prometheus (see the promcollector package).
type MetricsCollector interface {
	// RecordInsert is called after each single-element write
	// (Deploy, Push, Put, Set*). err is nil if successful.
	RecordInsert(c Component, duration time.Duration, err error)

	// RecordBatchInsert is called after each batch write.
	// count is the number of items attempted; failed is count when the
	// batch was rejected and 0 otherwise.
	RecordBatchInsert(c Component, count, failed int, duration time.Duration)

	// RecordLookup is called after each read (Signal, Get, Get*).
	// found reports whether a value was returned.
	RecordLookup(c Component, found bool)

	// RecordMemoryUsage is called with the container's usage after every
	// operation that may have grown it.
	RecordMemoryUsage(c Component, bytes int64)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordInsert(Component, time.Duration, error)         {}
func (NoopMetricsCollector) RecordBatchInsert(Component, int, int, time.Duration) {}
func (NoopMetricsCollector) RecordLookup(Component, bool)                         {}
func (NoopMetricsCollector) RecordMemoryUsage(Component, int64)                   {}

type componentCounters struct {
	InsertCount       atomic.Int64
	InsertErrors      atomic.Int64
	InsertTotalNanos  atomic.Int64
	BatchInsertCount  atomic.Int64
	BatchInsertItems  atomic.Int64
	BatchInsertFailed atomic.Int64
	LookupCount       atomic.Int64
	LookupMisses      atomic.Int64
	MemoryBytes       atomic.Int64
}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	components [numComponents]componentCounters
}

func (b *BasicMetricsCollector) counters(c Component) *componentCounters {
	if c >= numComponents {
		return nil
	}
	return &b.components[c]
}

// RecordInsert implements MetricsCollector.
func (b *BasicMetricsCollector) RecordInsert(c Component, duration time.Duration, err error) {
	m := b.counters(c)
	if m == nil {
		return
	}
	m.InsertCount.Add(1)
	m.InsertTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		m.InsertErrors.Add(1)
	}
}

// RecordBatchInsert implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBatchInsert(c Component, count, failed int, _ time.Duration) {
	m := b.counters(c)
	if m == nil {
		return
	}
	m.BatchInsertCount.Add(1)
	m.BatchInsertItems.Add(int64(count))
	m.BatchInsertFailed.Add(int64(failed))
}

// RecordLookup implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLookup(c Component, found bool) {
	m := b.counters(c)
	if m == nil {
		return
	}
	m.LookupCount.Add(1)
	if !found {
		m.LookupMisses.Add(1)
	}
}

// RecordMemoryUsage implements MetricsCollector.
func (b *BasicMetricsCollector) RecordMemoryUsage(c Component, bytes int64) {
	if m := b.counters(c); m != nil {
		m.MemoryBytes.Store(bytes)
	}
}

// GetStats returns a snapshot of the metrics of one component.
func (b *BasicMetricsCollector) GetStats(c Component) BasicMetricsStats {
	m := b.counters(c)
	if m == nil {
		return BasicMetricsStats{}
	}
	s := BasicMetricsStats{
		InsertCount:       m.InsertCount.Load(),
		InsertErrors:      m.InsertErrors.Load(),
		BatchInsertCount:  m.BatchInsertCount.Load(),
		BatchInsertItems:  m.BatchInsertItems.Load(),
		BatchInsertFailed: m.BatchInsertFailed.Load(),
		LookupCount:       m.LookupCount.Load(),
		LookupMisses:      m.LookupMisses.Load(),
		MemoryBytes:       m.MemoryBytes.Load(),
	}
	if s.InsertCount > 0 {
		s.InsertAvgNanos = m.InsertTotalNanos.Load() / s.InsertCount
	}
	return s
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	InsertCount       int64
	InsertErrors      int64
	InsertAvgNanos    int64
	BatchInsertCount  int64
	BatchInsertItems  int64
	BatchInsertFailed int64
	LookupCount       int64
	LookupMisses      int64
	MemoryBytes       int64
}
