package arena

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"
	"unsafe"
)

const (
	// DefaultChunkSize is the default size of a chunk (64 KiB).
	DefaultChunkSize = 64 << 10
	// MaxChunkSize keeps every in-chunk offset addressable by a Ref.
	MaxChunkSize = math.MaxInt32
)

var (
	// ErrTooLarge is returned for values that cannot be addressed by a Ref.
	ErrTooLarge = errors.New("arena: value too large")
	// ErrInvalidChunkSize is returned by New for chunk sizes outside (0, MaxChunkSize].
	ErrInvalidChunkSize = errors.New("arena: invalid chunk size")
)

// MemoryAcquirer reserves memory before a chunk is allocated.
type MemoryAcquirer interface {
	AcquireMemory(bytes int64) error
	ReleaseMemory(bytes int64)
}

// Ref addresses bytes inside the arena: chunk index in the high 32 bits,
// offset in the low 32 bits. The zero Ref is valid for empty values.
type Ref uint64

func makeRef(chunk, offset int) Ref {
	return Ref(uint64(chunk)<<32 | uint64(offset))
}

// Chunk returns the chunk index of r.
func (r Ref) Chunk() int { return int(r >> 32) }

// Offset returns the byte offset of r inside its chunk.
func (r Ref) Offset() int { return int(r & math.MaxUint32) }

// Stats tracks arena memory.
//
//   - BytesReserved: bytes held in chunks
//   - BytesUsed: bytes handed out by Append
//   - BytesWasted: bytes given back with Discard (still reserved)
type Stats struct {
	Chunks        uint64
	BytesReserved uint64
	BytesUsed     uint64
	BytesWasted   uint64
	TotalAllocs   uint64
}

type atomicStats struct {
	Chunks        atomic.Uint64
	BytesReserved atomic.Uint64
	BytesUsed     atomic.Uint64
	BytesWasted   atomic.Uint64
	TotalAllocs   atomic.Uint64
}

// Arena is an append-only chunked byte arena.
type Arena struct {
	chunkSize int
	chunks    [][]byte
	current   int // index of the chunk being filled, -1 before the first append
	offset    int // next free byte in chunks[current]
	acquirer  MemoryAcquirer
	stats     atomicStats
}

// Option is a configuration option for Arena.
type Option func(*Arena)

// WithMemoryAcquirer sets the memory acquirer for the arena.
func WithMemoryAcquirer(acquirer MemoryAcquirer) Option {
	return func(a *Arena) {
		a.acquirer = acquirer
	}
}

// New creates an empty arena. A chunkSize of 0 selects DefaultChunkSize.
// No memory is allocated until the first Append.
func New(chunkSize int, opts ...Option) (*Arena, error) {
	if chunkSize == 0 {
		chunkSize = DefaultChunkSize
	}
	if chunkSize < 0 || chunkSize > MaxChunkSize {
		return nil, fmt.Errorf("%w: %d", ErrInvalidChunkSize, chunkSize)
	}

	a := &Arena{
		chunkSize: chunkSize,
		current:   -1,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

func (a *Arena) newChunk(size int) (int, error) {
	if len(a.chunks) >= math.MaxInt32 {
		return 0, fmt.Errorf("%w: chunk limit reached", ErrTooLarge)
	}
	if a.acquirer != nil {
		if err := a.acquirer.AcquireMemory(int64(size)); err != nil {
			return 0, err
		}
	}
	a.chunks = append(a.chunks, make([]byte, size))
	a.stats.Chunks.Add(1)
	a.stats.BytesReserved.Add(uint64(size))
	return len(a.chunks) - 1, nil
}

// Append copies b into the arena and returns its Ref.
func (a *Arena) Append(b []byte) (Ref, error) {
	n := len(b)
	if n == 0 {
		return 0, nil
	}
	if n > MaxChunkSize {
		return 0, fmt.Errorf("%w: %d bytes", ErrTooLarge, n)
	}

	var (
		idx, off int
		err      error
	)
	switch {
	case n > a.chunkSize:
		// Oversized values live alone; the current chunk keeps filling.
		if idx, err = a.newChunk(n); err != nil {
			return 0, err
		}
	case a.current < 0 || a.offset+n > a.chunkSize:
		if idx, err = a.newChunk(a.chunkSize); err != nil {
			return 0, err
		}
		a.current, a.offset = idx, n
	default:
		idx, off = a.current, a.offset
		a.offset += n
	}

	copy(a.chunks[idx][off:off+n], b)
	a.stats.BytesUsed.Add(uint64(n))
	a.stats.TotalAllocs.Add(1)
	return makeRef(idx, off), nil
}

// AppendString copies s into the arena and returns its Ref.
func (a *Arena) AppendString(s string) (Ref, error) {
	return a.Append(unsafe.Slice(unsafe.StringData(s), len(s))) //nolint:gosec // read-only view of s
}

// Bytes returns the n bytes at ref. The result aliases arena memory and
// must not be modified.
func (a *Arena) Bytes(ref Ref, n int) []byte {
	if n == 0 {
		return nil
	}
	off := ref.Offset()
	return a.chunks[ref.Chunk()][off : off+n : off+n]
}

// GetString returns the n bytes at ref as a string without copying.
// Arena bytes are never overwritten, so the string is immutable.
func (a *Arena) GetString(ref Ref, n int) string {
	if n == 0 {
		return ""
	}
	b := a.Bytes(ref, n)
	return unsafe.String(&b[0], n) //nolint:gosec // arena bytes are immutable once written
}

// Discard records that n previously appended bytes are no longer referenced.
// The bytes stay reserved; they are only accounted as wasted.
func (a *Arena) Discard(n int) {
	if n > 0 {
		a.stats.BytesWasted.Add(uint64(n))
	}
}

// Stats returns the current arena statistics.
func (a *Arena) Stats() Stats {
	return Stats{
		Chunks:        a.stats.Chunks.Load(),
		BytesReserved: a.stats.BytesReserved.Load(),
		BytesUsed:     a.stats.BytesUsed.Load(),
		BytesWasted:   a.stats.BytesWasted.Load(),
		TotalAllocs:   a.stats.TotalAllocs.Load(),
	}
}

// MemoryUsage returns the arena header, chunk headers and chunk bytes.
func (a *Arena) MemoryUsage() int64 {
	chunks := int64(a.stats.Chunks.Load())
	return int64(unsafe.Sizeof(*a)) +
		chunks*int64(unsafe.Sizeof([]byte(nil))) +
		int64(a.stats.BytesReserved.Load())
}

// Usage returns the percentage of reserved bytes still referenced.
func (a *Arena) Usage() float64 {
	stats := a.Stats()
	if stats.BytesReserved == 0 {
		return 0
	}
	return float64(stats.BytesUsed-stats.BytesWasted) / float64(stats.BytesReserved) * 100
}

func (a *Arena) String() string {
	stats := a.Stats()
	return fmt.Sprintf(
		"Arena{chunks: %d, reserved: %.2f MB, used: %.2f MB, wasted: %.2f KB, usage: %.1f%%, allocs: %d}",
		stats.Chunks,
		float64(stats.BytesReserved)/(1024*1024),
		float64(stats.BytesUsed)/(1024*1024),
		float64(stats.BytesWasted)/1024,
		a.Usage(),
		stats.TotalAllocs,
	)
}
