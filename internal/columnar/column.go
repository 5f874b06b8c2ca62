package columnar

import (
	"fmt"
	"unsafe"

	"github.com/hupe1980/batbit/internal/arena"
	"github.com/hupe1980/batbit/internal/bitset"
	"github.com/hupe1980/batbit/internal/conv"
	"github.com/hupe1980/batbit/internal/vector"
)

// Kind is the value type of a column.
type Kind uint8

const (
	KindString Kind = iota + 1
	KindInt
	KindFloat
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

type column interface {
	Kind() Kind
	// Has reports whether row holds a value.
	Has(row uint64) bool
	// Count returns the number of rows holding a value.
	Count() uint64
	MemoryUsage() int64
}

func newPresence(acq MemoryAcquirer) (*bitset.Sparse, error) {
	return bitset.New(bitset.Config{DomainMax: bitset.MaxDomain, Acquirer: acq})
}

// numericColumn keeps values in pages of a vector. A row holds a value only
// if its presence bit is set; slots of unset rows are zero.
type numericColumn[T vector.Number] struct {
	kind    Kind
	pages   *pageIndex
	values  *vector.Vector[T]
	present *bitset.Sparse
}

func newNumericColumn[T vector.Number](kind Kind, acq MemoryAcquirer) (*numericColumn[T], error) {
	pages, err := newPageIndex(acq)
	if err != nil {
		return nil, err
	}
	values, err := vector.New[T](vector.Config{Acquirer: acq})
	if err != nil {
		return nil, err
	}
	present, err := newPresence(acq)
	if err != nil {
		return nil, err
	}
	return &numericColumn[T]{kind: kind, pages: pages, values: values, present: present}, nil
}

func (c *numericColumn[T]) Kind() Kind          { return c.kind }
func (c *numericColumn[T]) Has(row uint64) bool { return c.present.Contains(row) }
func (c *numericColumn[T]) Count() uint64       { return c.present.Count() }

// set writes v and only then marks row present, so a failed set never
// exposes a row without a value.
func (c *numericColumn[T]) set(row uint64, v T) error {
	i, err := c.pages.ensure(row, c.values.Extend)
	if err != nil {
		return err
	}
	if err := c.values.Set(i, v); err != nil {
		return err
	}
	_, err = c.present.Add(row)
	return err
}

func (c *numericColumn[T]) get(row uint64) (T, bool) {
	var zero T
	if !c.present.Contains(row) {
		return zero, false
	}
	i, ok := c.pages.lookup(row)
	if !ok {
		return zero, false
	}
	v, err := c.values.Get(i)
	return v, err == nil
}

func (c *numericColumn[T]) MemoryUsage() int64 {
	return int64(unsafe.Sizeof(*c)) +
		c.pages.MemoryUsage() +
		c.values.MemoryUsage() +
		c.present.MemoryUsage()
}

// stringColumn keeps string bytes in an arena and the (ref, length) span of
// every row in two paged vectors sharing one page index.
type stringColumn struct {
	bytes   *arena.Arena
	pages   *pageIndex
	refs    *vector.Vector[uint64]
	lens    *vector.Vector[uint32]
	present *bitset.Sparse
}

func newStringColumn(cfg Config) (*stringColumn, error) {
	var opts []arena.Option
	if cfg.Acquirer != nil {
		opts = append(opts, arena.WithMemoryAcquirer(cfg.Acquirer))
	}
	bytes, err := arena.New(cfg.ArenaChunkSize, opts...)
	if err != nil {
		return nil, err
	}
	pages, err := newPageIndex(cfg.Acquirer)
	if err != nil {
		return nil, err
	}
	refs, err := vector.New[uint64](vector.Config{Acquirer: cfg.Acquirer})
	if err != nil {
		return nil, err
	}
	lens, err := vector.New[uint32](vector.Config{Acquirer: cfg.Acquirer})
	if err != nil {
		return nil, err
	}
	present, err := newPresence(cfg.Acquirer)
	if err != nil {
		return nil, err
	}
	return &stringColumn{bytes: bytes, pages: pages, refs: refs, lens: lens, present: present}, nil
}

func (c *stringColumn) Kind() Kind          { return KindString }
func (c *stringColumn) Has(row uint64) bool { return c.present.Contains(row) }
func (c *stringColumn) Count() uint64       { return c.present.Count() }

func (c *stringColumn) extend(n int) error {
	if err := c.refs.Extend(n); err != nil {
		return err
	}
	return c.lens.Extend(n)
}

func (c *stringColumn) set(row uint64, s string) error {
	n, err := conv.ToUint32(len(s))
	if err != nil {
		return err
	}
	i, err := c.pages.ensure(row, c.extend)
	if err != nil {
		return err
	}

	oldLen := 0
	if c.present.Contains(row) {
		old, _ := c.lens.Get(i)
		oldLen = int(old)
	}
	ref, err := c.bytes.AppendString(s)
	if err != nil {
		return err
	}

	_ = c.refs.Set(i, uint64(ref))
	_ = c.lens.Set(i, n)
	// Only a row without a value can need a new presence chunk.
	if _, err := c.present.Add(row); err != nil {
		c.bytes.Discard(len(s))
		return err
	}
	c.bytes.Discard(oldLen)
	return nil
}

func (c *stringColumn) get(row uint64) (string, bool) {
	if !c.present.Contains(row) {
		return "", false
	}
	i, ok := c.pages.lookup(row)
	if !ok {
		return "", false
	}
	ref, err := c.refs.Get(i)
	if err != nil {
		return "", false
	}
	n, err := c.lens.Get(i)
	if err != nil {
		return "", false
	}
	return c.bytes.GetString(arena.Ref(ref), int(n)), true
}

func (c *stringColumn) MemoryUsage() int64 {
	return int64(unsafe.Sizeof(*c)) +
		c.bytes.MemoryUsage() +
		c.pages.MemoryUsage() +
		c.refs.MemoryUsage() +
		c.lens.MemoryUsage() +
		c.present.MemoryUsage()
}
