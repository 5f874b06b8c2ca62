package columnar

import (
	"errors"
	"fmt"
	"sync/atomic"
	"unsafe"

	"github.com/hupe1980/batbit/internal/bitset"
)

var (
	// ErrColumnExists is returned when a column name is already taken.
	ErrColumnExists = errors.New("column already exists")
	// ErrColumnNotFound is returned for unknown column names.
	ErrColumnNotFound = errors.New("column not found")
	// ErrRowNotFound is returned for row ids that were never allocated.
	ErrRowNotFound = errors.New("row not found")
	// ErrNoValue is returned when a row has no value in a column.
	ErrNoValue = errors.New("no value")
	// ErrTypeMismatch is returned when a column is accessed as the wrong kind.
	ErrTypeMismatch = errors.New("type mismatch")
	// ErrInvalidColumnName is returned for empty column names.
	ErrInvalidColumnName = errors.New("invalid column name")
	// ErrRowsExhausted is returned when no more row ids can be allocated.
	ErrRowsExhausted = errors.New("row ids exhausted")
)

// MaxRows bounds the row id space: ids are in [0, MaxRows).
const MaxRows = bitset.MaxDomain

// TypeMismatchError reports an access with the wrong kind.
type TypeMismatchError struct {
	Column string
	Want   Kind // the column's kind
	Got    Kind // the kind used by the caller
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("column %q holds %s values, not %s", e.Column, e.Want, e.Got)
}

func (e *TypeMismatchError) Unwrap() error { return ErrTypeMismatch }

// MemoryAcquirer reserves memory for column growth.
type MemoryAcquirer interface {
	AcquireMemory(bytes int64) error
	ReleaseMemory(bytes int64)
}

// Config configures a Table.
type Config struct {
	Acquirer MemoryAcquirer
	// ArenaChunkSize is the chunk size of string column arenas. 0 selects the default.
	ArenaChunkSize int
}

// ColumnInfo describes one column.
type ColumnInfo struct {
	Name string
	Kind Kind
	// Values is the number of rows holding a value.
	Values uint64
}

// Table is a columnar row store.
type Table struct {
	cfg     Config
	columns map[string]column
	order   []string
	rows    atomic.Uint64
}

// New creates an empty table.
func New(cfg Config) *Table {
	return &Table{
		cfg:     cfg,
		columns: make(map[string]column),
	}
}

// AddColumn registers a new empty column. Existing rows have no value in it.
func (t *Table) AddColumn(name string, kind Kind) error {
	if name == "" {
		return ErrInvalidColumnName
	}
	if _, ok := t.columns[name]; ok {
		return fmt.Errorf("%w: %q", ErrColumnExists, name)
	}

	var (
		c   column
		err error
	)
	switch kind {
	case KindString:
		c, err = newStringColumn(t.cfg)
	case KindInt:
		c, err = newNumericColumn[int64](KindInt, t.cfg.Acquirer)
	case KindFloat:
		c, err = newNumericColumn[float64](KindFloat, t.cfg.Acquirer)
	default:
		return fmt.Errorf("unknown column kind %s", kind)
	}
	if err != nil {
		return err
	}

	t.columns[name] = c
	t.order = append(t.order, name)
	return nil
}

// NewRow allocates the next row id. No column gets a value.
//
// NewRow panics with ErrRowsExhausted once MaxRows ids have been handed
// out; only NewRows can reserve that many.
func (t *Table) NewRow() uint64 {
	row, err := t.NewRows(1)
	if err != nil {
		panic(err)
	}
	return row
}

// NewRows allocates n consecutive row ids and returns the first. It fails
// with ErrRowsExhausted, allocating nothing, if the ids would reach MaxRows.
func (t *Table) NewRows(n uint64) (uint64, error) {
	for {
		cur := t.rows.Load()
		if n > MaxRows-cur {
			return 0, fmt.Errorf("%w: %d rows allocated, %d requested", ErrRowsExhausted, cur, n)
		}
		if t.rows.CompareAndSwap(cur, cur+n) {
			return cur, nil
		}
	}
}

// Rows returns the number of allocated rows.
func (t *Table) Rows() uint64 { return t.rows.Load() }

// Columns describes every column in creation order.
func (t *Table) Columns() []ColumnInfo {
	out := make([]ColumnInfo, 0, len(t.order))
	for _, name := range t.order {
		c := t.columns[name]
		out = append(out, ColumnInfo{Name: name, Kind: c.Kind(), Values: c.Count()})
	}
	return out
}

// Has reports whether row holds a value in the named column.
func (t *Table) Has(name string, row uint64) bool {
	c, ok := t.columns[name]
	return ok && c.Has(row)
}

// lookup resolves the column and checks its kind and the row id.
func (t *Table) lookup(name string, kind Kind, row uint64) (column, error) {
	c, ok := t.columns[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
	}
	if c.Kind() != kind {
		return nil, &TypeMismatchError{Column: name, Want: c.Kind(), Got: kind}
	}
	if row >= t.rows.Load() {
		return nil, fmt.Errorf("%w: %d", ErrRowNotFound, row)
	}
	return c, nil
}

func noValue(name string, row uint64) error {
	return fmt.Errorf("%w: column %q, row %d", ErrNoValue, name, row)
}

// SetString stores a string value.
func (t *Table) SetString(name string, row uint64, v string) error {
	c, err := t.lookup(name, KindString, row)
	if err != nil {
		return err
	}
	return c.(*stringColumn).set(row, v)
}

// SetInt stores an int64 value.
func (t *Table) SetInt(name string, row uint64, v int64) error {
	c, err := t.lookup(name, KindInt, row)
	if err != nil {
		return err
	}
	return c.(*numericColumn[int64]).set(row, v)
}

// SetFloat stores a float64 value.
func (t *Table) SetFloat(name string, row uint64, v float64) error {
	c, err := t.lookup(name, KindFloat, row)
	if err != nil {
		return err
	}
	return c.(*numericColumn[float64]).set(row, v)
}

// GetString returns a string value.
func (t *Table) GetString(name string, row uint64) (string, error) {
	c, err := t.lookup(name, KindString, row)
	if err != nil {
		return "", err
	}
	v, ok := c.(*stringColumn).get(row)
	if !ok {
		return "", noValue(name, row)
	}
	return v, nil
}

// GetInt returns an int64 value.
func (t *Table) GetInt(name string, row uint64) (int64, error) {
	c, err := t.lookup(name, KindInt, row)
	if err != nil {
		return 0, err
	}
	v, ok := c.(*numericColumn[int64]).get(row)
	if !ok {
		return 0, noValue(name, row)
	}
	return v, nil
}

// GetFloat returns a float64 value.
func (t *Table) GetFloat(name string, row uint64) (float64, error) {
	c, err := t.lookup(name, KindFloat, row)
	if err != nil {
		return 0, err
	}
	v, ok := c.(*numericColumn[float64]).get(row)
	if !ok {
		return 0, noValue(name, row)
	}
	return v, nil
}

// MemoryUsage sums the table header and every column.
func (t *Table) MemoryUsage() int64 {
	total := int64(unsafe.Sizeof(*t))
	for _, name := range t.order {
		total += int64(len(name)) + t.columns[name].MemoryUsage()
	}
	return total
}
