package batbit

import (
	"iter"
	"time"

	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/hupe1980/batbit/internal/bitset"
)

// BatCave is a chunked sparse bitset over [0, DomainMax).
//
// Storage is split into fixed-size chunks that are allocated on the first
// write into their range, so memory grows with the number of occupied
// chunks and never with the magnitude of the values.
type BatCave struct {
	instrumented
	bits *bitset.Sparse
}

// NewBatCave creates an empty BatCave.
//
// Relevant options: WithDomainMax, WithChunkBits, WithWorkers,
// WithResourceController, WithMemoryLimit, WithLogger, WithMetricsCollector.
func NewBatCave(optFns ...Option) (*BatCave, error) {
	o, err := applyOptions(optFns)
	if err != nil {
		return nil, err
	}
	bits, err := bitset.New(bitset.Config{
		ChunkBits: o.chunkBits,
		DomainMax: o.domainMax,
		Acquirer:  o.acquirer(),
	})
	if err != nil {
		return nil, translateError(err)
	}
	return &BatCave{instrumented: newInstrumented(ComponentCave, o), bits: bits}, nil
}

// Deploy sets v. Setting a value twice is a no-op.
// Values >= DomainMax fail with *ErrDomain.
func (c *BatCave) Deploy(v uint64) error {
	start := time.Now()
	_, err := c.bits.Add(v)
	return c.single("deploy", start, err, c.bits.MemoryUsage)
}

// DeployBatch sets every value of vs.
//
// The batch is validated first: an out-of-domain value fails the whole
// batch with an *ErrBatch naming its index, and nothing is set. Values are
// then grouped by chunk, missing chunks are allocated once, and the groups
// are applied in parallel.
func (c *BatCave) DeployBatch(vs []uint64) error {
	start := time.Now()
	workers, release := c.borrowWorkers()
	_, err := c.bits.AddBatch(vs, workers)
	release()
	return c.batch("deploy_batch", len(vs), workers, start, err, c.bits.MemoryUsage)
}

// Signal reports whether v is set. It never allocates; values outside the
// domain are reported as absent.
func (c *BatCave) Signal(v uint64) bool {
	ok := c.bits.Contains(v)
	c.metrics.RecordLookup(ComponentCave, ok)
	return ok
}

// Remove clears v and reports whether it was set.
// The chunk holding v stays allocated.
func (c *BatCave) Remove(v uint64) (bool, error) {
	ok, err := c.bits.Remove(v)
	return ok, translateError(err)
}

// Count returns the number of set values.
func (c *BatCave) Count() uint64 { return c.bits.Count() }

// Chunks returns the number of allocated chunks.
func (c *BatCave) Chunks() int { return c.bits.Chunks() }

// DomainMax returns the exclusive upper bound of accepted values.
func (c *BatCave) DomainMax() uint64 { return c.bits.DomainMax() }

// All iterates over the set values in ascending order.
func (c *BatCave) All() iter.Seq[uint64] { return c.bits.All() }

// ToRoaring exports the set values as a 64-bit roaring bitmap.
func (c *BatCave) ToRoaring() *roaring64.Bitmap {
	const flush = 4096

	rb := roaring64.New()
	buf := make([]uint64, 0, flush)
	for v := range c.bits.All() {
		buf = append(buf, v)
		if len(buf) == flush {
			rb.AddMany(buf)
			buf = buf[:0]
		}
	}
	rb.AddMany(buf)
	rb.RunOptimize()
	return rb
}

// MemoryUsage returns the bytes held by the BatCave. It is proportional to
// the number of allocated chunks and safe to call during a batch.
func (c *BatCave) MemoryUsage() int64 { return c.bits.MemoryUsage() }
