package batbit

import (
	"iter"
	"time"

	"github.com/hupe1980/batbit/internal/vector"
)

// BatVector is a growable vector of uint64.
type BatVector struct {
	instrumented
	vec *vector.Vector[uint64]
}

// NewBatVector creates an empty BatVector.
//
// Relevant options: WithInitialCapacity, WithWorkers,
// WithResourceController, WithMemoryLimit, WithLogger, WithMetricsCollector.
func NewBatVector(optFns ...Option) (*BatVector, error) {
	o, err := applyOptions(optFns)
	if err != nil {
		return nil, err
	}
	vec, err := vector.New[uint64](vector.Config{
		InitialCapacity: o.initialCapacity,
		Acquirer:        o.acquirer(),
	})
	if err != nil {
		return nil, translateNewError(err)
	}
	return &BatVector{instrumented: newInstrumented(ComponentVector, o), vec: vec}, nil
}

// Push appends v.
func (b *BatVector) Push(v uint64) error {
	start := time.Now()
	err := b.vec.Push(v)
	return b.single("push", start, err, b.vec.MemoryUsage)
}

// PushBatch appends vs. Capacity for the whole batch is reserved once.
func (b *BatVector) PushBatch(vs []uint64) error {
	start := time.Now()
	workers, release := b.borrowWorkers()
	err := b.vec.PushBatch(vs, workers)
	release()
	return b.batch("push_batch", len(vs), workers, start, err, b.vec.MemoryUsage)
}

// Get returns the element at i, or ErrIndexOutOfRange.
func (b *BatVector) Get(i int) (uint64, error) {
	v, err := b.vec.Get(i)
	b.metrics.RecordLookup(ComponentVector, err == nil)
	return v, translateError(err)
}

// Set overwrites the element at i.
func (b *BatVector) Set(i int, v uint64) error {
	return translateError(b.vec.Set(i, v))
}

// Len returns the number of elements.
func (b *BatVector) Len() int { return b.vec.Len() }

// Cap returns the number of elements held without growing.
func (b *BatVector) Cap() int { return b.vec.Cap() }

// All iterates over index/value pairs in order.
func (b *BatVector) All() iter.Seq2[int, uint64] { return b.vec.All() }

// MemoryUsage returns capacity × 8 bytes plus a fixed header.
// It never decreases.
func (b *BatVector) MemoryUsage() int64 { return b.vec.MemoryUsage() }
