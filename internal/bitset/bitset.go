package bitset

import (
	"errors"
	"fmt"
	"iter"
	"math/bits"
	"slices"
	"sync"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/cpu"
)

const (
	// DefaultChunkBits determines the default size of each chunk.
	// 16 bits = 65536 bits (8KB) per chunk.
	DefaultChunkBits = 16
	// MinChunkBits is the smallest supported chunk (1024 bits).
	MinChunkBits = 10
	// MaxChunkBits is the largest supported chunk (16M bits = 2MB).
	MaxChunkBits = 24

	// DefaultDomainMax is the default exclusive upper bound of the domain (2^40).
	DefaultDomainMax = uint64(1) << 40
	// MaxDomain is the largest accepted domain bound (2^63).
	MaxDomain = uint64(1) << 63

	// indexEntryBytes approximates one hash map slot: key, pointer and tophash.
	indexEntryBytes = 8 + 8 + 1
)

var (
	// ErrOutOfDomain is returned for values outside [0, DomainMax).
	ErrOutOfDomain = errors.New("value out of domain")
	// ErrInvalidConfig is returned by New for unsupported chunk sizes or domains.
	ErrInvalidConfig = errors.New("invalid bitset config")
)

// DomainError reports a value outside the bitset domain.
type DomainError struct {
	Value uint64
	Limit uint64
	// Index is the position of Value inside a batch, -1 for single operations.
	Index int
}

func (e *DomainError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("value %d at batch index %d out of domain [0, %d)", e.Value, e.Index, e.Limit)
	}
	return fmt.Sprintf("value %d out of domain [0, %d)", e.Value, e.Limit)
}

func (e *DomainError) Unwrap() error { return ErrOutOfDomain }

// MemoryAcquirer reserves memory before chunks are allocated.
// *resource.Controller satisfies it.
type MemoryAcquirer interface {
	AcquireMemory(bytes int64) error
	ReleaseMemory(bytes int64)
}

// Config configures a Sparse bitset. Zero values select the defaults.
type Config struct {
	ChunkBits uint
	DomainMax uint64
	Acquirer  MemoryAcquirer
}

type chunk struct {
	words []atomic.Uint64
	count atomic.Int64
	_     cpu.CacheLinePad
}

// Sparse is a chunked sparse bitset.
//
// Single-element reads and writes are safe for concurrent use. Batches must
// not run concurrently with other writes on the same instance.
type Sparse struct {
	chunkBits     uint
	chunkMask     uint64
	wordsPerChunk int
	domainMax     uint64
	acquirer      MemoryAcquirer

	mu     sync.RWMutex
	chunks map[uint64]*chunk

	numChunks atomic.Int64
	count     atomic.Int64
}

// New creates an empty Sparse bitset.
func New(cfg Config) (*Sparse, error) {
	if cfg.ChunkBits == 0 {
		cfg.ChunkBits = DefaultChunkBits
	}
	if cfg.DomainMax == 0 {
		cfg.DomainMax = DefaultDomainMax
	}
	if cfg.ChunkBits < MinChunkBits || cfg.ChunkBits > MaxChunkBits {
		return nil, fmt.Errorf("%w: chunk bits %d not in [%d, %d]", ErrInvalidConfig, cfg.ChunkBits, MinChunkBits, MaxChunkBits)
	}
	if cfg.DomainMax > MaxDomain {
		return nil, fmt.Errorf("%w: domain max %d exceeds %d", ErrInvalidConfig, cfg.DomainMax, MaxDomain)
	}

	return &Sparse{
		chunkBits:     cfg.ChunkBits,
		chunkMask:     uint64(1)<<cfg.ChunkBits - 1,
		wordsPerChunk: 1 << (cfg.ChunkBits - 6),
		domainMax:     cfg.DomainMax,
		acquirer:      cfg.Acquirer,
		chunks:        make(map[uint64]*chunk),
	}, nil
}

// ChunkBytes returns the bytes of bit storage in one chunk.
func (s *Sparse) ChunkBytes() int64 {
	return int64(s.wordsPerChunk) * 8
}

// chunkFootprint is what one materialized chunk costs, index slot included.
func (s *Sparse) chunkFootprint() int64 {
	return s.ChunkBytes() + int64(unsafe.Sizeof(chunk{})) + indexEntryBytes
}

// ChunkBits returns log2 of the chunk size in bits.
func (s *Sparse) ChunkBits() uint { return s.chunkBits }

// DomainMax returns the exclusive upper bound of accepted values.
func (s *Sparse) DomainMax() uint64 { return s.domainMax }

func (s *Sparse) checkDomain(v uint64, index int) error {
	if v >= s.domainMax {
		return &DomainError{Value: v, Limit: s.domainMax, Index: index}
	}
	return nil
}

func (s *Sparse) lookup(id uint64) *chunk {
	s.mu.RLock()
	c := s.chunks[id]
	s.mu.RUnlock()
	return c
}

// materialize returns the chunk for id, allocating it if needed.
func (s *Sparse) materialize(id uint64) (*chunk, error) {
	if c := s.lookup(id); c != nil {
		return c, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if c := s.chunks[id]; c != nil {
		return c, nil
	}
	if s.acquirer != nil {
		if err := s.acquirer.AcquireMemory(s.chunkFootprint()); err != nil {
			return nil, err
		}
	}
	c := s.newChunk()
	s.chunks[id] = c
	s.numChunks.Add(1)
	return c, nil
}

func (s *Sparse) newChunk() *chunk {
	return &chunk{words: make([]atomic.Uint64, s.wordsPerChunk)}
}

// set flips the bit at offset inside c and reports whether it was clear.
func set(c *chunk, offset uint64) bool {
	mask := uint64(1) << (offset & 63)
	return c.words[offset>>6].Or(mask)&mask == 0
}

// Add sets v and reports whether it was newly added.
func (s *Sparse) Add(v uint64) (bool, error) {
	if err := s.checkDomain(v, -1); err != nil {
		return false, err
	}

	c, err := s.materialize(v >> s.chunkBits)
	if err != nil {
		return false, err
	}

	if !set(c, v&s.chunkMask) {
		return false, nil
	}
	c.count.Add(1)
	s.count.Add(1)
	return true, nil
}

// Contains reports whether v is set. It never allocates.
func (s *Sparse) Contains(v uint64) bool {
	if v >= s.domainMax {
		return false
	}
	c := s.lookup(v >> s.chunkBits)
	if c == nil {
		return false
	}
	offset := v & s.chunkMask
	return c.words[offset>>6].Load()&(uint64(1)<<(offset&63)) != 0
}

// Remove clears v and reports whether it was set.
// The chunk stays allocated even when it becomes empty.
func (s *Sparse) Remove(v uint64) (bool, error) {
	if err := s.checkDomain(v, -1); err != nil {
		return false, err
	}
	c := s.lookup(v >> s.chunkBits)
	if c == nil {
		return false, nil
	}

	offset := v & s.chunkMask
	mask := uint64(1) << (offset & 63)
	if c.words[offset>>6].And(^mask)&mask == 0 {
		return false, nil
	}
	c.count.Add(-1)
	s.count.Add(-1)
	return true, nil
}

// Count returns the number of set bits.
func (s *Sparse) Count() uint64 {
	return uint64(s.count.Load())
}

// Chunks returns the number of materialized chunks.
func (s *Sparse) Chunks() int {
	return int(s.numChunks.Load())
}

// MemoryUsage returns the bytes held by the bitset: the fixed header plus,
// per materialized chunk, its words, its header and its index slot.
// It only reads committed counters and is safe during a batch.
func (s *Sparse) MemoryUsage() int64 {
	return int64(unsafe.Sizeof(*s)) + s.numChunks.Load()*s.chunkFootprint()
}

// All returns an iterator over the set values in ascending order.
// Values added while iterating may or may not be observed.
func (s *Sparse) All() iter.Seq[uint64] {
	return func(yield func(uint64) bool) {
		s.mu.RLock()
		ids := make([]uint64, 0, len(s.chunks))
		for id := range s.chunks {
			ids = append(ids, id)
		}
		s.mu.RUnlock()
		slices.Sort(ids)

		for _, id := range ids {
			c := s.lookup(id)
			if c.count.Load() == 0 {
				continue
			}
			base := id << s.chunkBits
			for w := range c.words {
				word := c.words[w].Load()
				for word != 0 {
					tz := bits.TrailingZeros64(word)
					if !yield(base + uint64(w)*64 + uint64(tz)) {
						return
					}
					word &= word - 1
				}
			}
		}
	}
}
