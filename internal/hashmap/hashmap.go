package hashmap

import (
	"encoding/binary"
	"errors"
	"fmt"
	"iter"
	"sync/atomic"
	"unsafe"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sys/cpu"

	"github.com/hupe1980/batbit/internal/mem"
	"github.com/hupe1980/batbit/internal/pool"
)

const (
	// DefaultShardBits gives 16 shards.
	DefaultShardBits = 4
	// MaxShardBits caps the shard count at 1024.
	MaxShardBits = 10
)

var (
	// ErrNotFound is returned when a key is absent.
	ErrNotFound = errors.New("key not found")
	// ErrSizeMismatch is returned when a batch has more keys than values or vice versa.
	ErrSizeMismatch = errors.New("keys and values differ in length")
	// ErrInvalidConfig is returned by New for an unsupported shard count.
	ErrInvalidConfig = errors.New("invalid hashmap config")
)

// SizeMismatchError reports the lengths of a rejected batch.
type SizeMismatchError struct {
	Keys   int
	Values int
}

func (e *SizeMismatchError) Error() string {
	return fmt.Sprintf("%d keys but %d values", e.Keys, e.Values)
}

func (e *SizeMismatchError) Unwrap() error { return ErrSizeMismatch }

// MemoryAcquirer reserves memory before tables grow.
type MemoryAcquirer interface {
	AcquireMemory(bytes int64) error
	ReleaseMemory(bytes int64)
}

// Config configures a Map. Zero values select the defaults.
type Config struct {
	ShardBits uint
	// InitialCapacity is spread evenly across the shards.
	InitialCapacity int
	Acquirer        MemoryAcquirer
}

type shard[V any] struct {
	t table[V]
	_ cpu.CacheLinePad
}

// Map is a sharded uint64-keyed hash map.
type Map[V any] struct {
	shardBits uint
	shards    []shard[V]
	acquirer  MemoryAcquirer

	size       atomic.Int64
	tableBytes atomic.Int64
}

func hash(k uint64) uint64 {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], k)
	return xxhash.Sum64(b[:])
}

// New creates an empty map.
func New[V any](cfg Config) (*Map[V], error) {
	if cfg.ShardBits == 0 {
		cfg.ShardBits = DefaultShardBits
	}
	if cfg.ShardBits > MaxShardBits {
		return nil, fmt.Errorf("%w: shard bits %d exceeds %d", ErrInvalidConfig, cfg.ShardBits, MaxShardBits)
	}
	if cfg.InitialCapacity < 0 {
		return nil, fmt.Errorf("%w: negative initial capacity %d", ErrInvalidConfig, cfg.InitialCapacity)
	}

	m := &Map[V]{
		shardBits: cfg.ShardBits,
		shards:    make([]shard[V], 1<<cfg.ShardBits),
		acquirer:  cfg.Acquirer,
	}
	if cfg.InitialCapacity > 0 {
		n := cfg.InitialCapacity / len(m.shards)
		if cfg.InitialCapacity%len(m.shards) != 0 {
			n++
		}
		per := capacityFor(n)
		caps := make([]int, len(m.shards))
		for i := range caps {
			caps[i] = per
		}
		if err := m.growShards(caps, 1); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Map[V]) shardOf(h uint64) int {
	return int(h >> (64 - m.shardBits))
}

// growShards resizes every shard i with newCaps[i] > 0. The memory for all
// new tables is reserved in one request before any table is touched.
func (m *Map[V]) growShards(newCaps []int, workers int) error {
	var acquire, release int64
	tasks := make([]int, 0, len(newCaps))
	for i, c := range newCaps {
		if c == 0 {
			continue
		}
		if c > mem.MaxBytes/int(slotBytes[V]()) {
			return fmt.Errorf("hashmap: table of %d slots: %w", c, mem.ErrTooLarge)
		}
		acquire += int64(c) * slotBytes[V]()
		release += int64(m.shards[i].t.capacity()) * slotBytes[V]()
		tasks = append(tasks, i)
	}
	if len(tasks) == 0 {
		return nil
	}
	if acquire > mem.MaxBytes {
		return fmt.Errorf("hashmap: %d table bytes: %w", acquire, mem.ErrTooLarge)
	}
	if m.acquirer != nil {
		if err := m.acquirer.AcquireMemory(acquire); err != nil {
			return err
		}
	}

	_ = pool.Run(workers, len(tasks), func(j int) error {
		i := tasks[j]
		m.shards[i].t.resize(newCaps[i])
		return nil
	})

	m.tableBytes.Add(acquire - release)
	if m.acquirer != nil {
		m.acquirer.ReleaseMemory(release)
	}
	return nil
}

// Put stores k => v, overwriting any previous value.
func (m *Map[V]) Put(k uint64, v V) error {
	h := hash(k)
	s := m.shardOf(h)
	t := &m.shards[s].t

	if t.capacity() == 0 || t.full() {
		if t.capacity() > 0 {
			if _, ok := t.find(k, h); ok {
				t.insert(k, h, v)
				return nil
			}
		}
		caps := make([]int, len(m.shards))
		caps[s] = max(minTableCap, 2*t.capacity())
		if err := m.growShards(caps, 1); err != nil {
			return err
		}
	}

	if t.insert(k, h, v) {
		m.size.Add(1)
	}
	return nil
}

// Get returns the value stored for k or ErrNotFound.
func (m *Map[V]) Get(k uint64) (V, error) {
	v, ok := m.Lookup(k)
	if !ok {
		return v, fmt.Errorf("%w: %d", ErrNotFound, k)
	}
	return v, nil
}

// Lookup returns the value stored for k and whether it was present.
func (m *Map[V]) Lookup(k uint64) (V, bool) {
	h := hash(k)
	return m.shards[m.shardOf(h)].t.get(k, h)
}

// Contains reports whether k is present.
func (m *Map[V]) Contains(k uint64) bool {
	h := hash(k)
	_, ok := m.shards[m.shardOf(h)].t.get(k, h)
	return ok
}

// Delete removes k and reports whether it was present.
// Table capacity is kept.
func (m *Map[V]) Delete(k uint64) bool {
	h := hash(k)
	if !m.shards[m.shardOf(h)].t.remove(k, h) {
		return false
	}
	m.size.Add(-1)
	return true
}

// Len returns the number of keys.
func (m *Map[V]) Len() int { return int(m.size.Load()) }

// Shards returns the number of shards.
func (m *Map[V]) Shards() int { return len(m.shards) }

// All iterates over all entries in unspecified order.
func (m *Map[V]) All() iter.Seq2[uint64, V] {
	return func(yield func(uint64, V) bool) {
		for s := range m.shards {
			t := &m.shards[s].t
			for i, c := range t.ctrl {
				if c == ctrlEmpty {
					continue
				}
				if !yield(t.keys[i], t.vals[i]) {
					return
				}
			}
		}
	}
}

// MemoryUsage returns the header, shard array and table slot bytes.
// It grows with the number of distinct keys, independent of their magnitude.
func (m *Map[V]) MemoryUsage() int64 {
	return int64(unsafe.Sizeof(*m)) +
		int64(len(m.shards))*int64(unsafe.Sizeof(shard[V]{})) +
		m.tableBytes.Load()
}
