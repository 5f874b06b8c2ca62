package vector

import (
	"errors"
	"fmt"
	"iter"
	"math"
	"sync/atomic"
	"unsafe"

	"golang.org/x/exp/constraints"

	"github.com/hupe1980/batbit/internal/mem"
	"github.com/hupe1980/batbit/internal/pool"
)

// Number is the set of element types a Vector can hold.
type Number interface {
	constraints.Integer | constraints.Float
}

const (
	// MinGrowth is the smallest number of elements a growth step adds.
	MinGrowth = 1024

	// parallelCopyMin is the batch size above which PushBatch copies in stripes.
	parallelCopyMin = 1 << 16
)

// ErrIndexOutOfRange is returned when an index is not in [0, Len).
var ErrIndexOutOfRange = errors.New("index out of range")

// MemoryAcquirer reserves memory before the backing array grows.
type MemoryAcquirer interface {
	AcquireMemory(bytes int64) error
	ReleaseMemory(bytes int64)
}

// Config configures a Vector.
type Config struct {
	// InitialCapacity is allocated up front. 0 defers allocation to the first push.
	InitialCapacity int
	Acquirer        MemoryAcquirer
}

// Vector is a growable contiguous array of T.
type Vector[T Number] struct {
	data     []T // len(data) is the capacity
	length   atomic.Int64
	capacity atomic.Int64
	acquirer MemoryAcquirer
}

// New creates an empty vector.
func New[T Number](cfg Config) (*Vector[T], error) {
	if cfg.InitialCapacity < 0 {
		return nil, fmt.Errorf("vector: negative initial capacity %d", cfg.InitialCapacity)
	}
	v := &Vector[T]{acquirer: cfg.Acquirer}
	if err := v.Reserve(cfg.InitialCapacity); err != nil {
		return nil, err
	}
	return v, nil
}

// Width returns the size of one element in bytes.
func Width[T Number]() int64 {
	var zero T
	return int64(unsafe.Sizeof(zero))
}

func footprint[T Number](n int) int64 {
	return int64(n)*Width[T]() + int64(mem.Overhead(n))
}

// Len returns the number of elements.
func (v *Vector[T]) Len() int { return int(v.length.Load()) }

// Cap returns the number of elements the vector holds without growing.
func (v *Vector[T]) Cap() int { return int(v.capacity.Load()) }

// Reserve makes room for at least n elements in total.
func (v *Vector[T]) Reserve(n int) error {
	if n <= len(v.data) {
		return nil
	}
	return v.realloc(n)
}

// grow makes room for need elements using the doubling policy.
func (v *Vector[T]) grow(need int) error {
	if need <= len(v.data) {
		return nil
	}
	newCap := need
	if c := len(v.data); c <= math.MaxInt/2-MinGrowth {
		newCap = max(need, 2*c, c+MinGrowth)
	}
	return v.realloc(newCap)
}

// realloc moves the elements into a new backing array of newCap elements.
// Sizes that cannot be allocated fail with mem.ErrTooLarge before any
// memory is reserved.
func (v *Vector[T]) realloc(newCap int) error {
	size, err := mem.Bytes[T](newCap)
	if err != nil {
		return fmt.Errorf("vector: grow to %d elements: %w", newCap, err)
	}
	oldBytes := footprint[T](len(v.data))
	newBytes := int64(size)
	if v.acquirer != nil {
		if err := v.acquirer.AcquireMemory(newBytes); err != nil {
			return fmt.Errorf("vector: grow to %d elements: %w", newCap, err)
		}
	}

	data, err := mem.Alloc[T](newCap)
	if err != nil {
		if v.acquirer != nil {
			v.acquirer.ReleaseMemory(newBytes)
		}
		return fmt.Errorf("vector: grow to %d elements: %w", newCap, err)
	}
	copy(data, v.data[:v.Len()])
	v.data = data
	v.capacity.Store(int64(newCap))

	if v.acquirer != nil {
		v.acquirer.ReleaseMemory(oldBytes)
	}
	return nil
}

// Push appends x.
func (v *Vector[T]) Push(x T) error {
	n := v.Len()
	if err := v.grow(n + 1); err != nil {
		return err
	}
	v.data[n] = x
	v.length.Store(int64(n + 1))
	return nil
}

// PushBatch appends xs. Capacity is reserved once for the final length and
// large batches are copied in parallel stripes on up to workers goroutines.
// On error the vector is unchanged.
func (v *Vector[T]) PushBatch(xs []T, workers int) error {
	if len(xs) == 0 {
		return nil
	}
	n := v.Len()
	if err := v.grow(n + len(xs)); err != nil {
		return err
	}

	dst := v.data[n : n+len(xs)]
	if workers <= 1 || len(xs) < parallelCopyMin {
		copy(dst, xs)
	} else {
		stripes := pool.Stripes(len(xs), workers, parallelCopyMin/4)
		_ = pool.Run(workers, len(stripes), func(i int) error {
			r := stripes[i]
			copy(dst[r.Lo:r.Hi], xs[r.Lo:r.Hi])
			return nil
		})
	}

	v.length.Store(int64(n + len(xs)))
	return nil
}

// Extend grows the length to n, zero-filling new elements. It never shrinks.
func (v *Vector[T]) Extend(n int) error {
	if n <= v.Len() {
		return nil
	}
	if err := v.grow(n); err != nil {
		return err
	}
	// Slots past the length are never written, so they are still zero.
	v.length.Store(int64(n))
	return nil
}

func (v *Vector[T]) check(i int) error {
	if n := v.Len(); i < 0 || i >= n {
		return fmt.Errorf("%w: index %d, length %d", ErrIndexOutOfRange, i, n)
	}
	return nil
}

// Get returns the element at i.
func (v *Vector[T]) Get(i int) (T, error) {
	if err := v.check(i); err != nil {
		var zero T
		return zero, err
	}
	return v.data[i], nil
}

// Set overwrites the element at i.
func (v *Vector[T]) Set(i int, x T) error {
	if err := v.check(i); err != nil {
		return err
	}
	v.data[i] = x
	return nil
}

// All iterates over index/value pairs in order.
func (v *Vector[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		n := v.Len()
		for i := 0; i < n; i++ {
			if !yield(i, v.data[i]) {
				return
			}
		}
	}
}

// MemoryUsage returns the header size plus the backing array in bytes.
// It is proportional to Cap and never decreases.
func (v *Vector[T]) MemoryUsage() int64 {
	return int64(unsafe.Sizeof(*v)) + footprint[T](v.Cap())
}
