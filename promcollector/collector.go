package promcollector

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/batbit"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// Collector implements batbit.MetricsCollector on Prometheus metrics.
type Collector struct {
	opLatency  *prometheus.HistogramVec
	items      *prometheus.CounterVec
	lookups    *prometheus.CounterVec
	memoryUsed *prometheus.GaugeVec
}

var _ batbit.MetricsCollector = (*Collector)(nil)

// New creates a Collector and registers its metrics with reg.
// A nil reg uses prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer, namespace string) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	c := &Collector{
		opLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_latency_seconds",
			Help:      "Latency of container write operations",
			Buckets:   prometheus.ExponentialBuckets(1e-7, 4, 12),
		}, []string{"component", "op", "status"}),
		items: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_written_total",
			Help:      "Elements submitted to containers",
		}, []string{"component", "status"}),
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lookups_total",
			Help:      "Container reads by result",
		}, []string{"component", "result"}),
		memoryUsed: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "memory_usage_bytes",
			Help:      "Bytes held by containers",
		}, []string{"component"}),
	}

	for _, col := range []prometheus.Collector{c.opLatency, c.items, c.lookups, c.memoryUsed} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func status(failed bool) string {
	if failed {
		return statusError
	}
	return statusSuccess
}

// RecordInsert implements batbit.MetricsCollector.
func (c *Collector) RecordInsert(comp batbit.Component, d time.Duration, err error) {
	s := status(err != nil)
	c.opLatency.WithLabelValues(comp.String(), "insert", s).Observe(d.Seconds())
	c.items.WithLabelValues(comp.String(), s).Inc()
}

// RecordBatchInsert implements batbit.MetricsCollector.
func (c *Collector) RecordBatchInsert(comp batbit.Component, count, failed int, d time.Duration) {
	c.opLatency.WithLabelValues(comp.String(), "batch_insert", status(failed > 0)).Observe(d.Seconds())
	if ok := count - failed; ok > 0 {
		c.items.WithLabelValues(comp.String(), statusSuccess).Add(float64(ok))
	}
	if failed > 0 {
		c.items.WithLabelValues(comp.String(), statusError).Add(float64(failed))
	}
}

// RecordLookup implements batbit.MetricsCollector.
func (c *Collector) RecordLookup(comp batbit.Component, found bool) {
	result := "miss"
	if found {
		result = "hit"
	}
	c.lookups.WithLabelValues(comp.String(), result).Inc()
}

// RecordMemoryUsage implements batbit.MetricsCollector.
func (c *Collector) RecordMemoryUsage(comp batbit.Component, bytes int64) {
	c.memoryUsed.WithLabelValues(comp.String()).Set(float64(bytes))
}
