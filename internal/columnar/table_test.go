package columnar

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUsers(t testing.TB) *Table {
	t.Helper()
	tbl := New(Config{})
	require.NoError(t, tbl.AddColumn("username", KindString))
	require.NoError(t, tbl.AddColumn("age", KindInt))
	require.NoError(t, tbl.AddColumn("balance", KindFloat))
	return tbl
}

func TestTable_MillionRows(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping 1M row load in short mode")
	}
	tbl := newUsers(t)

	for i := 0; i < 1_000_000; i++ {
		row := tbl.NewRow()
		require.Equal(t, uint64(i), row)
		require.NoError(t, tbl.SetString("username", row, fmt.Sprintf("User_%d", i)))
		require.NoError(t, tbl.SetInt("age", row, int64(20+i%50)))
		require.NoError(t, tbl.SetFloat("balance", row, float64(i)*1.5))
	}
	assert.Equal(t, uint64(1_000_000), tbl.Rows())

	name, err := tbl.GetString("username", 500)
	require.NoError(t, err)
	assert.Equal(t, "User_500", name)

	age, err := tbl.GetInt("age", 500)
	require.NoError(t, err)
	assert.Equal(t, int64(30), age)

	balance, err := tbl.GetFloat("balance", 500)
	require.NoError(t, err)
	assert.Equal(t, 750.0, balance)

	last, err := tbl.GetString("username", 999_999)
	require.NoError(t, err)
	assert.Equal(t, "User_999999", last)

	// Dense columns: about 8 bytes per numeric cell plus string bytes and spans.
	assert.Less(t, tbl.MemoryUsage(), int64(64<<20))
}

func TestTable_TypeMismatch(t *testing.T) {
	tbl := newUsers(t)
	row := tbl.NewRow()
	require.NoError(t, tbl.SetString("username", row, "alice"))

	err := tbl.SetInt("username", row, 5)
	require.ErrorIs(t, err, ErrTypeMismatch)

	var tme *TypeMismatchError
	require.ErrorAs(t, err, &tme)
	assert.Equal(t, "username", tme.Column)
	assert.Equal(t, KindString, tme.Want)
	assert.Equal(t, KindInt, tme.Got)

	v, err := tbl.GetString("username", row)
	require.NoError(t, err)
	assert.Equal(t, "alice", v, "prior value untouched")

	_, err = tbl.GetFloat("age", row)
	assert.ErrorIs(t, err, ErrTypeMismatch)
	assert.ErrorIs(t, tbl.SetString("balance", row, "x"), ErrTypeMismatch)
}

func TestTable_NotFound(t *testing.T) {
	tbl := newUsers(t)
	row := tbl.NewRow()

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"unknown column set", tbl.SetInt("missing", row, 1), ErrColumnNotFound},
		{"unknown column get", func() error { _, err := tbl.GetInt("missing", row); return err }(), ErrColumnNotFound},
		{"unallocated row set", tbl.SetInt("age", row+1, 1), ErrRowNotFound},
		{"unallocated row get", func() error { _, err := tbl.GetString("username", 99); return err }(), ErrRowNotFound},
		{"unwritten value", func() error { _, err := tbl.GetFloat("balance", row); return err }(), ErrNoValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.err, tt.want)
		})
	}
}

func TestTable_Schema(t *testing.T) {
	tbl := New(Config{})
	assert.ErrorIs(t, tbl.AddColumn("", KindInt), ErrInvalidColumnName)
	require.NoError(t, tbl.AddColumn("a", KindInt))
	assert.ErrorIs(t, tbl.AddColumn("a", KindFloat), ErrColumnExists)
	assert.Error(t, tbl.AddColumn("b", Kind(42)))

	first, err := tbl.NewRows(3)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), first)
	require.NoError(t, tbl.SetInt("a", 2, 7))

	// Columns added after rows exist start empty.
	require.NoError(t, tbl.AddColumn("late", KindString))
	assert.False(t, tbl.Has("late", 0))
	_, err = tbl.GetString("late", 0)
	assert.ErrorIs(t, err, ErrNoValue)
	require.NoError(t, tbl.SetString("late", 1, "x"))

	assert.Equal(t, []ColumnInfo{
		{Name: "a", Kind: KindInt, Values: 1},
		{Name: "late", Kind: KindString, Values: 1},
	}, tbl.Columns())

	assert.True(t, tbl.Has("a", 2))
	assert.False(t, tbl.Has("a", 0))
	assert.False(t, tbl.Has("nope", 0))
}

func TestTable_SparseRows(t *testing.T) {
	tbl := newUsers(t)
	_, err := tbl.NewRows(10)
	require.NoError(t, err)

	require.NoError(t, tbl.SetInt("age", 9, 40))
	require.NoError(t, tbl.SetInt("age", 3, 0))

	age, err := tbl.GetInt("age", 3)
	require.NoError(t, err)
	assert.Zero(t, age, "an explicit zero is a value")

	_, err = tbl.GetInt("age", 4)
	assert.ErrorIs(t, err, ErrNoValue, "zero-filled slots are not values")
}

func TestTable_OverwriteString(t *testing.T) {
	tbl := New(Config{ArenaChunkSize: 64})
	require.NoError(t, tbl.AddColumn("s", KindString))
	row := tbl.NewRow()

	require.NoError(t, tbl.SetString("s", row, "first"))
	require.NoError(t, tbl.SetString("s", row, "second"))
	require.NoError(t, tbl.SetString("s", row, ""))

	v, err := tbl.GetString("s", row)
	require.NoError(t, err)
	assert.Equal(t, "", v)
	assert.True(t, tbl.Has("s", row))

	long := strings.Repeat("z", 1000)
	require.NoError(t, tbl.SetString("s", row, long))
	v, err = tbl.GetString("s", row)
	require.NoError(t, err)
	assert.Equal(t, long, v)

	col := tbl.columns["s"].(*stringColumn)
	assert.Equal(t, uint64(len("first")+len("second")), col.bytes.Stats().BytesWasted)
}

type limitAcquirer struct {
	limit int64
	used  int64
}

func (l *limitAcquirer) AcquireMemory(bytes int64) error {
	if l.used+bytes > l.limit {
		return errors.New("limit")
	}
	l.used += bytes
	return nil
}

func (l *limitAcquirer) ReleaseMemory(bytes int64) { l.used -= bytes }

func TestTable_AllocationFailure(t *testing.T) {
	acq := &limitAcquirer{limit: 1 << 10}
	tbl := New(Config{Acquirer: acq})
	require.NoError(t, tbl.AddColumn("n", KindInt))
	row := tbl.NewRow()

	err := tbl.SetInt("n", row, 1)
	require.Error(t, err)
	assert.False(t, tbl.Has("n", row))
}

// stepAcquirer refuses the failOn-th reservation (1-based) and grants the rest.
type stepAcquirer struct {
	failOn int
	calls  int
}

func (a *stepAcquirer) AcquireMemory(int64) error {
	a.calls++
	if a.calls == a.failOn {
		return errors.New("refused")
	}
	return nil
}

func (a *stepAcquirer) ReleaseMemory(int64) {}

func TestTable_FailedSetLeavesNoValue(t *testing.T) {
	// A first write to a column reserves the value page, the page
	// directory slot and the presence chunk, in that order.
	tests := []struct {
		name      string
		failOn    int
		wantPages int
	}{
		{"value page", 1, 0},
		{"page directory", 2, 0},
		{"presence chunk", 3, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := New(Config{Acquirer: &stepAcquirer{failOn: tt.failOn}})
			require.NoError(t, tbl.AddColumn("n", KindInt))
			require.NoError(t, tbl.AddColumn("s", KindString))
			row := tbl.NewRow()

			require.Error(t, tbl.SetInt("n", row, 7))
			assert.False(t, tbl.Has("n", row))
			_, err := tbl.GetInt("n", row)
			assert.ErrorIs(t, err, ErrNoValue)
			assert.Equal(t, tt.wantPages, tbl.columns["n"].(*numericColumn[int64]).pages.pages())

			// The next attempt is granted and reuses the half-built page.
			require.NoError(t, tbl.SetInt("n", row, 7))
			v, err := tbl.GetInt("n", row)
			require.NoError(t, err)
			assert.Equal(t, int64(7), v)
			assert.Equal(t, 1, tbl.columns["n"].(*numericColumn[int64]).pages.pages())
		})
	}
}

func TestTable_RowExhaustion(t *testing.T) {
	tbl := New(Config{})

	_, err := tbl.NewRows(math.MaxUint64)
	require.ErrorIs(t, err, ErrRowsExhausted)
	assert.Zero(t, tbl.Rows(), "a refused reservation allocates nothing")

	first, err := tbl.NewRows(MaxRows - 1)
	require.NoError(t, err)
	assert.Zero(t, first)

	last := tbl.NewRow()
	assert.Equal(t, uint64(MaxRows-1), last)
	assert.Equal(t, uint64(MaxRows), tbl.Rows())

	_, err = tbl.NewRows(1)
	require.ErrorIs(t, err, ErrRowsExhausted)
	assert.Panics(t, func() { tbl.NewRow() })
	assert.Equal(t, uint64(MaxRows), tbl.Rows(), "row ids are never handed out twice")

	first, err = tbl.NewRows(0)
	require.NoError(t, err)
	assert.Equal(t, uint64(MaxRows), first)
}

func TestTable_ExtremeRows(t *testing.T) {
	tbl := newUsers(t)
	_, err := tbl.NewRows(MaxRows)
	require.NoError(t, err)

	rows := []uint64{0, 1 << 61, MaxRows - 1}
	for i, row := range rows {
		require.NoError(t, tbl.SetInt("age", row, int64(i)))
		require.NoError(t, tbl.SetFloat("balance", row, float64(i)+0.5))
		require.NoError(t, tbl.SetString("username", row, fmt.Sprintf("row-%d", row)))
	}
	for i, row := range rows {
		age, err := tbl.GetInt("age", row)
		require.NoError(t, err)
		assert.Equal(t, int64(i), age)

		balance, err := tbl.GetFloat("balance", row)
		require.NoError(t, err)
		assert.Equal(t, float64(i)+0.5, balance)

		name, err := tbl.GetString("username", row)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("row-%d", row), name)
	}

	_, err = tbl.GetInt("age", 1<<61+1)
	assert.ErrorIs(t, err, ErrNoValue)

	// Three pages per column, not 2^63 rows.
	assert.Less(t, tbl.MemoryUsage(), int64(1<<20))
}

func TestTable_SparseColumnMemory(t *testing.T) {
	tbl := newUsers(t)
	_, err := tbl.NewRows(10_000_000)
	require.NoError(t, err)
	before := tbl.MemoryUsage()

	require.NoError(t, tbl.SetFloat("balance", 9_999_999, 1.5))
	require.NoError(t, tbl.SetString("username", 9_999_999, "last"))

	// One value page and one presence chunk per written column.
	assert.Less(t, tbl.MemoryUsage()-before, int64(128<<10))

	col := tbl.columns["balance"].(*numericColumn[float64])
	assert.Equal(t, 1, col.pages.pages())
	assert.Equal(t, pageRows, col.values.Len())
}

func TestTable_MemoryUsage(t *testing.T) {
	tbl := newUsers(t)
	empty := tbl.MemoryUsage()

	for i := 0; i < 1000; i++ {
		row := tbl.NewRow()
		require.NoError(t, tbl.SetInt("age", row, int64(i)))
	}
	withInts := tbl.MemoryUsage()
	assert.Greater(t, withInts, empty)

	for row := uint64(0); row < 1000; row++ {
		require.NoError(t, tbl.SetString("username", row, "User"))
	}
	assert.Greater(t, tbl.MemoryUsage(), withInts)
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "string", KindString.String())
	assert.Equal(t, "int", KindInt.String())
	assert.Equal(t, "float", KindFloat.String())
	assert.Equal(t, "Kind(9)", Kind(9).String())
}

func BenchmarkTable_SetRow(b *testing.B) {
	tbl := newUsers(b)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		row := tbl.NewRow()
		_ = tbl.SetString("username", row, "User_123")
		_ = tbl.SetInt("age", row, 42)
		_ = tbl.SetFloat("balance", row, 1.5)
	}
}
