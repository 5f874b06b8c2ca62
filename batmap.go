package batbit

import (
	"iter"
	"time"

	"github.com/hupe1980/batbit/internal/hashmap"
)

// BatMap is a sparse map from uint64 keys to float64 values.
type BatMap struct {
	instrumented
	m *hashmap.Map[float64]
}

// NewBatMap creates an empty BatMap.
//
// Relevant options: WithShardBits, WithInitialCapacity, WithWorkers,
// WithResourceController, WithMemoryLimit, WithLogger, WithMetricsCollector.
func NewBatMap(optFns ...Option) (*BatMap, error) {
	o, err := applyOptions(optFns)
	if err != nil {
		return nil, err
	}
	m, err := hashmap.New[float64](hashmap.Config{
		ShardBits:       o.shardBits,
		InitialCapacity: o.initialCapacity,
		Acquirer:        o.acquirer(),
	})
	if err != nil {
		return nil, translateNewError(err)
	}
	return &BatMap{instrumented: newInstrumented(ComponentMap, o), m: m}, nil
}

// Put stores k => v, replacing any previous value.
func (b *BatMap) Put(k uint64, v float64) error {
	start := time.Now()
	err := b.m.Put(k, v)
	return b.single("put", start, err, b.m.MemoryUsage)
}

// PutBatch stores keys[i] => values[i] for every i.
//
// Mismatched lengths fail with *ErrSizeMismatch and nothing is stored.
// The map is pre-sized for the batch, and a key repeated inside the batch
// ends up with its last value.
func (b *BatMap) PutBatch(keys []uint64, values []float64) error {
	start := time.Now()
	workers, release := b.borrowWorkers()
	err := b.m.PutBatch(keys, values, workers)
	release()
	return b.batch("put_batch", len(keys), workers, start, err, b.m.MemoryUsage)
}

// Get returns the value stored for k, or ErrNotFound.
func (b *BatMap) Get(k uint64) (float64, error) {
	v, err := b.m.Get(k)
	b.metrics.RecordLookup(ComponentMap, err == nil)
	return v, translateError(err)
}

// Contains reports whether k is present.
func (b *BatMap) Contains(k uint64) bool { return b.m.Contains(k) }

// Delete removes k and reports whether it was present.
func (b *BatMap) Delete(k uint64) bool { return b.m.Delete(k) }

// Len returns the number of keys.
func (b *BatMap) Len() int { return b.m.Len() }

// All iterates over all entries in unspecified order.
func (b *BatMap) All() iter.Seq2[uint64, float64] { return b.m.All() }

// MemoryUsage returns the bytes held by the map. It is proportional to the
// number of keys, not to their magnitude.
func (b *BatMap) MemoryUsage() int64 { return b.m.MemoryUsage() }
