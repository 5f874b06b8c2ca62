package batbit

import (
	"context"
	"errors"
	"time"
)

// instrumented carries the logging, metrics and resource wiring shared by
// all containers.
type instrumented struct {
	component Component
	opts      options
	logger    *Logger
	metrics   MetricsCollector
	// recordUsage is false for the no-op collector, which would discard the
	// memory usage anyway.
	recordUsage bool
}

func newInstrumented(c Component, o options) instrumented {
	_, noop := o.metricsCollector.(NoopMetricsCollector)
	return instrumented{
		component:   c,
		opts:        o,
		logger:      o.logger.WithComponent(c),
		metrics:     o.metricsCollector,
		recordUsage: !noop,
	}
}

// borrowWorkers returns how many goroutines the next batch may use.
func (in *instrumented) borrowWorkers() (int, func()) {
	return in.opts.controller.BorrowWorkers(in.opts.workers)
}

// finish translates an engine error and logs refused reservations.
func (in *instrumented) finish(op string, err error) error {
	err = translateError(err)
	if err != nil && errors.Is(err, ErrAllocationFailed) {
		c := in.opts.controller
		in.logger.LogAllocationFailure(context.Background(), op, c.MemoryUsage(), c.MemoryLimit(), err)
	}
	return err
}

func (in *instrumented) single(op string, start time.Time, err error, usage func() int64) error {
	err = in.finish(op, err)
	in.metrics.RecordInsert(in.component, time.Since(start), err)
	if err == nil && in.recordUsage {
		in.metrics.RecordMemoryUsage(in.component, usage())
	}
	return err
}

func (in *instrumented) batch(op string, n, workers int, start time.Time, err error, usage func() int64) error {
	err = in.finish(op, err)
	failed := 0
	if err != nil {
		failed = n
	}
	in.metrics.RecordBatchInsert(in.component, n, failed, time.Since(start))
	if in.recordUsage {
		in.metrics.RecordMemoryUsage(in.component, usage())
	}
	in.logger.LogBatch(context.Background(), op, n, workers, err)
	return err
}
