package pool

import (
	"math"
	"sync"

	"golang.org/x/sync/errgroup"
)

const (
	// MaxBatchLen is the largest batch a single pre-pass indexes.
	// Callers window larger inputs.
	MaxBatchLen = math.MaxInt32

	// maxRetained caps the buffers kept in the pool (elements).
	maxRetained = 1 << 24
)

// Scratch holds the reusable pre-pass buffers of one batch.
type Scratch struct {
	// Parts is the dense partition id of every input element.
	Parts []uint32
	// Order lists input positions grouped by partition.
	Order []uint32
	// Starts[p]..Starts[p+1] delimits partition p inside Order.
	Starts []int
}

var scratchPool = sync.Pool{
	New: func() any {
		return &Scratch{}
	},
}

// Get returns a Scratch whose Parts and Order hold n elements.
func Get(n int) *Scratch {
	s := scratchPool.Get().(*Scratch)
	if cap(s.Parts) < n {
		s.Parts = make([]uint32, n)
	}
	if cap(s.Order) < n {
		s.Order = make([]uint32, n)
	}
	s.Parts = s.Parts[:n]
	s.Order = s.Order[:n]
	s.Starts = s.Starts[:0]
	return s
}

// Put returns a Scratch to the pool. Oversized buffers are dropped.
func Put(s *Scratch) {
	if s == nil {
		return
	}
	if cap(s.Parts) > maxRetained || cap(s.Order) > maxRetained {
		return
	}
	scratchPool.Put(s)
}

// Group fills s.Order and s.Starts from s.Parts with a stable counting sort.
// Every entry of s.Parts must be < numParts.
func (s *Scratch) Group(numParts int) {
	if cap(s.Starts) < numParts+1 {
		s.Starts = make([]int, numParts+1)
	}
	s.Starts = s.Starts[:numParts+1]
	clear(s.Starts)

	for _, p := range s.Parts {
		s.Starts[p+1]++
	}
	for p := 1; p <= numParts; p++ {
		s.Starts[p] += s.Starts[p-1]
	}

	// Starts[p] is used as the write cursor and restored afterwards.
	for i, p := range s.Parts {
		s.Order[s.Starts[p]] = uint32(i)
		s.Starts[p]++
	}
	for p := numParts; p > 0; p-- {
		s.Starts[p] = s.Starts[p-1]
	}
	s.Starts[0] = 0
}

// Partition returns the input positions of partition p in input order.
func (s *Scratch) Partition(p int) []uint32 {
	return s.Order[s.Starts[p]:s.Starts[p+1]]
}

// NumPartitions returns the number of partitions grouped by the last Group call.
func (s *Scratch) NumPartitions() int {
	if len(s.Starts) == 0 {
		return 0
	}
	return len(s.Starts) - 1
}

// Run calls fn for every task in [0, tasks) on at most workers goroutines
// and returns the first error. With one worker (or one task) everything runs
// on the calling goroutine.
func Run(workers, tasks int, fn func(task int) error) error {
	if tasks <= 0 {
		return nil
	}
	if workers <= 1 || tasks == 1 {
		for t := 0; t < tasks; t++ {
			if err := fn(t); err != nil {
				return err
			}
		}
		return nil
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for t := 0; t < tasks; t++ {
		g.Go(func() error {
			return fn(t)
		})
	}
	return g.Wait()
}

// Range is a half-open interval [Lo, Hi).
type Range struct {
	Lo, Hi int
}

// Stripes splits [0, n) into at most parts contiguous ranges of at least
// minStripe elements each.
func Stripes(n, parts, minStripe int) []Range {
	if n <= 0 {
		return nil
	}
	if minStripe < 1 {
		minStripe = 1
	}
	if parts < 1 {
		parts = 1
	}
	if maxParts := (n + minStripe - 1) / minStripe; parts > maxParts {
		parts = maxParts
	}

	out := make([]Range, 0, parts)
	step := n / parts
	rem := n % parts
	lo := 0
	for i := 0; i < parts; i++ {
		hi := lo + step
		if i < rem {
			hi++
		}
		out = append(out, Range{Lo: lo, Hi: hi})
		lo = hi
	}
	return out
}
