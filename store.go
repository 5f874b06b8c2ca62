package batbit

import (
	"context"
	"time"

	"github.com/hupe1980/batbit/internal/columnar"
)

// ColumnType is the value type of a BatStore column.
type ColumnType = columnar.Kind

const (
	StringColumn = columnar.KindString
	IntColumn    = columnar.KindInt
	FloatColumn  = columnar.KindFloat
)

// ColumnInfo describes a BatStore column.
type ColumnInfo = columnar.ColumnInfo

// BatStore is a columnar row store.
//
// Rows are identified by dense ids starting at 0. Every column keeps its
// values in its own typed storage, and a row only has values in the columns
// that were set for it. Columns may be added at any time; existing rows have
// no value in a new column.
type BatStore struct {
	instrumented
	table *columnar.Table
}

// NewBatStore creates an empty BatStore.
//
// Relevant options: WithArenaChunkSize, WithResourceController,
// WithMemoryLimit, WithLogger, WithMetricsCollector.
func NewBatStore(optFns ...Option) (*BatStore, error) {
	o, err := applyOptions(optFns)
	if err != nil {
		return nil, err
	}
	table := columnar.New(columnar.Config{
		Acquirer:       o.acquirer(),
		ArenaChunkSize: o.arenaChunkSize,
	})
	return &BatStore{instrumented: newInstrumented(ComponentStore, o), table: table}, nil
}

func (s *BatStore) addColumn(name string, kind columnar.Kind) error {
	err := translateError(s.table.AddColumn(name, kind))
	s.logger.LogSchema(context.Background(), name, kind.String(), err)
	return err
}

// AddStrCol adds a string column.
// It fails with ErrColumnExists if the name is taken and ErrInvalidColumnName if it is empty.
func (s *BatStore) AddStrCol(name string) error { return s.addColumn(name, columnar.KindString) }

// AddIntCol adds an int64 column.
func (s *BatStore) AddIntCol(name string) error { return s.addColumn(name, columnar.KindInt) }

// AddFloatCol adds a float64 column.
func (s *BatStore) AddFloatCol(name string) error { return s.addColumn(name, columnar.KindFloat) }

// NewRow allocates the next row id. The row has no values yet.
//
// Row ids are below 2^63. NewRow panics once they are used up, which only
// happens after NewRows reserved nearly all of them.
func (s *BatStore) NewRow() uint64 { return s.table.NewRow() }

// NewRows allocates n consecutive row ids and returns the first one.
// It fails with ErrRowsExhausted, allocating nothing, if the ids would
// reach 2^63.
func (s *BatStore) NewRows(n uint64) (uint64, error) {
	first, err := s.table.NewRows(n)
	return first, translateError(err)
}

// SetStr stores a string. A type mismatch fails with *ErrTypeMismatch and
// leaves the column untouched; an unknown column or row fails with ErrNotFound.
func (s *BatStore) SetStr(col string, row uint64, v string) error {
	start := time.Now()
	err := s.table.SetString(col, row, v)
	return s.single("set_str", start, err, s.table.MemoryUsage)
}

// SetInt stores an int64.
func (s *BatStore) SetInt(col string, row uint64, v int64) error {
	start := time.Now()
	err := s.table.SetInt(col, row, v)
	return s.single("set_int", start, err, s.table.MemoryUsage)
}

// SetFloat stores a float64.
func (s *BatStore) SetFloat(col string, row uint64, v float64) error {
	start := time.Now()
	err := s.table.SetFloat(col, row, v)
	return s.single("set_float", start, err, s.table.MemoryUsage)
}

// GetStr returns a string. ErrNotFound covers unknown columns, unallocated
// rows and rows without a value in col.
func (s *BatStore) GetStr(col string, row uint64) (string, error) {
	v, err := s.table.GetString(col, row)
	s.metrics.RecordLookup(ComponentStore, err == nil)
	return v, translateError(err)
}

// GetInt returns an int64.
func (s *BatStore) GetInt(col string, row uint64) (int64, error) {
	v, err := s.table.GetInt(col, row)
	s.metrics.RecordLookup(ComponentStore, err == nil)
	return v, translateError(err)
}

// GetFloat returns a float64.
func (s *BatStore) GetFloat(col string, row uint64) (float64, error) {
	v, err := s.table.GetFloat(col, row)
	s.metrics.RecordLookup(ComponentStore, err == nil)
	return v, translateError(err)
}

// Has reports whether row has a value in col.
func (s *BatStore) Has(col string, row uint64) bool { return s.table.Has(col, row) }

// Rows returns the number of allocated rows.
func (s *BatStore) Rows() uint64 { return s.table.Rows() }

// Columns describes the columns in creation order.
func (s *BatStore) Columns() []ColumnInfo { return s.table.Columns() }

// MemoryUsage returns the bytes held by all columns.
func (s *BatStore) MemoryUsage() int64 { return s.table.MemoryUsage() }
