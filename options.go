package batbit

import (
	"fmt"
	"log/slog"
	"runtime"

	"github.com/hupe1980/batbit/internal/bitset"
	"github.com/hupe1980/batbit/internal/hashmap"
	"github.com/hupe1980/batbit/resource"
)

type options struct {
	logger           *Logger
	metricsCollector MetricsCollector
	controller       *resource.Controller
	memoryLimit      int64
	workers          int
	domainMax        uint64
	chunkBits        uint
	shardBits        uint
	initialCapacity  int
	arenaChunkSize   int
}

// Option configures a container constructor.
//
// Options that do not apply to a container are ignored by it.
type Option func(*options)

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &batbit.BasicMetricsCollector{}
//	cave, _ := batbit.NewBatCave(batbit.WithMetricsCollector(metrics))
//	// ... use cave ...
//	stats := metrics.GetStats(batbit.ComponentCave)
//	fmt.Printf("Batches: %d, items: %d\n", stats.BatchInsertCount, stats.BatchInsertItems)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := batbit.NewJSONLogger(slog.LevelDebug)
//	cave, _ := batbit.NewBatCave(batbit.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithResourceController shares a resource controller between containers.
// Memory reservations and batch goroutines of all containers using the same
// controller count against the same limits.
func WithResourceController(c *resource.Controller) Option {
	return func(o *options) {
		o.controller = c
	}
}

// WithMemoryLimit gives the container a private controller limiting its
// memory to bytes. Ignored when WithResourceController is also given.
func WithMemoryLimit(bytes int64) Option {
	return func(o *options) {
		o.memoryLimit = bytes
	}
}

// WithWorkers sets how many goroutines a single batch may use,
// the calling goroutine included. Defaults to GOMAXPROCS.
// 1 applies batches sequentially.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithDomainMax sets the exclusive upper bound of BatCave values.
// Defaults to 2^40; at most 2^63.
func WithDomainMax(domainMax uint64) Option {
	return func(o *options) {
		o.domainMax = domainMax
	}
}

// WithChunkBits sets log2 of the BatCave chunk size in bits.
// Defaults to 16 (8 KiB chunks); allowed range is [10, 24].
func WithChunkBits(bits uint) Option {
	return func(o *options) {
		o.chunkBits = bits
	}
}

// WithShardBits sets log2 of the number of BatMap shards.
// Defaults to 4 (16 shards); at most 10.
func WithShardBits(bits uint) Option {
	return func(o *options) {
		o.shardBits = bits
	}
}

// WithInitialCapacity pre-sizes a BatVector or BatMap for n elements.
func WithInitialCapacity(n int) Option {
	return func(o *options) {
		o.initialCapacity = n
	}
}

// WithArenaChunkSize sets the chunk size of BatStore string arenas in bytes.
// Defaults to 64 KiB.
func WithArenaChunkSize(bytes int) Option {
	return func(o *options) {
		o.arenaChunkSize = bytes
	}
}

func applyOptions(optFns []Option) (options, error) {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
		workers:          runtime.GOMAXPROCS(0),
		domainMax:        bitset.DefaultDomainMax,
		chunkBits:        bitset.DefaultChunkBits,
		shardBits:        hashmap.DefaultShardBits,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}

	switch {
	case o.workers < 1:
		return o, fmt.Errorf("%w: workers must be positive, got %d", ErrInvalidOption, o.workers)
	case o.memoryLimit < 0:
		return o, fmt.Errorf("%w: negative memory limit %d", ErrInvalidOption, o.memoryLimit)
	case o.initialCapacity < 0:
		return o, fmt.Errorf("%w: negative initial capacity %d", ErrInvalidOption, o.initialCapacity)
	case o.arenaChunkSize < 0:
		return o, fmt.Errorf("%w: negative arena chunk size %d", ErrInvalidOption, o.arenaChunkSize)
	}

	if o.controller == nil && o.memoryLimit > 0 {
		o.controller = resource.NewController(resource.Config{MemoryLimitBytes: o.memoryLimit})
	}
	return o, nil
}

// memoryAcquirer is satisfied by *resource.Controller and accepted by every engine.
type memoryAcquirer interface {
	AcquireMemory(bytes int64) error
	ReleaseMemory(bytes int64)
}

// acquirer returns the controller, or a nil interface when there is none.
func (o *options) acquirer() memoryAcquirer {
	if o.controller == nil {
		return nil
	}
	return o.controller
}
