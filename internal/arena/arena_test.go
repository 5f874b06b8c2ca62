package arena

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

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

func TestArena_New(t *testing.T) {
	t.Run("default chunk size", func(t *testing.T) {
		a, err := New(0)
		require.NoError(t, err)
		assert.Equal(t, DefaultChunkSize, a.chunkSize)
		assert.Zero(t, a.Stats().Chunks, "no chunk before the first append")
	})

	t.Run("invalid chunk size", func(t *testing.T) {
		_, err := New(-1)
		assert.ErrorIs(t, err, ErrInvalidChunkSize)
	})
}

func TestArena_AppendString(t *testing.T) {
	a, err := New(64)
	require.NoError(t, err)

	refs := make([]Ref, 100)
	for i := range refs {
		refs[i], err = a.AppendString(fmt.Sprintf("User_%d", i))
		require.NoError(t, err)
	}

	for i, ref := range refs {
		want := fmt.Sprintf("User_%d", i)
		assert.Equal(t, want, a.GetString(ref, len(want)))
	}

	stats := a.Stats()
	assert.Equal(t, uint64(100), stats.TotalAllocs)
	assert.Equal(t, stats.Chunks*64, stats.BytesReserved)
}

func TestArena_ValuesNeverSpanChunks(t *testing.T) {
	a, err := New(16)
	require.NoError(t, err)

	r1, err := a.AppendString("0123456789")
	require.NoError(t, err)
	r2, err := a.AppendString("abcdefghij")
	require.NoError(t, err)

	assert.Equal(t, 0, r1.Chunk())
	assert.Equal(t, 1, r2.Chunk())
	assert.Equal(t, 0, r2.Offset())
	assert.Equal(t, "abcdefghij", a.GetString(r2, 10))
}

func TestArena_Oversized(t *testing.T) {
	a, err := New(16)
	require.NoError(t, err)

	small, err := a.AppendString("abc")
	require.NoError(t, err)

	big := strings.Repeat("x", 100)
	ref, err := a.AppendString(big)
	require.NoError(t, err)
	assert.Equal(t, big, a.GetString(ref, len(big)))

	// The partially filled chunk keeps receiving small values.
	next, err := a.AppendString("def")
	require.NoError(t, err)
	assert.Equal(t, small.Chunk(), next.Chunk())
	assert.Equal(t, 3, next.Offset())

	assert.Equal(t, uint64(16+100), a.Stats().BytesReserved)
}

func TestArena_Empty(t *testing.T) {
	a, err := New(0)
	require.NoError(t, err)

	ref, err := a.AppendString("")
	require.NoError(t, err)
	assert.Equal(t, Ref(0), ref)
	assert.Equal(t, "", a.GetString(ref, 0))
	assert.Nil(t, a.Bytes(ref, 0))
	assert.Zero(t, a.Stats().Chunks)
}

func TestArena_AppendCopies(t *testing.T) {
	a, err := New(0)
	require.NoError(t, err)

	buf := []byte("hello")
	ref, err := a.Append(buf)
	require.NoError(t, err)
	buf[0] = 'j'
	assert.Equal(t, "hello", string(a.Bytes(ref, 5)))
}

func TestArena_Discard(t *testing.T) {
	a, err := New(100)
	require.NoError(t, err)

	_, err = a.AppendString(strings.Repeat("a", 50))
	require.NoError(t, err)
	a.Discard(25)

	stats := a.Stats()
	assert.Equal(t, uint64(25), stats.BytesWasted)
	assert.InDelta(t, 25.0, a.Usage(), 0.001)
	assert.Contains(t, a.String(), "chunks: 1")
}

func TestArena_AllocationFailure(t *testing.T) {
	acq := &limitAcquirer{limit: 32}
	a, err := New(32, WithMemoryAcquirer(acq))
	require.NoError(t, err)

	_, err = a.AppendString(strings.Repeat("a", 30))
	require.NoError(t, err)

	before := a.Stats()
	_, err = a.AppendString("overflow")
	require.Error(t, err)
	assert.Equal(t, before, a.Stats())
}

func TestArena_MemoryUsage(t *testing.T) {
	a, err := New(1024)
	require.NoError(t, err)
	empty := a.MemoryUsage()

	for i := 0; i < 1000; i++ {
		_, err := a.AppendString("0123456789")
		require.NoError(t, err)
	}
	// 102 values fit in one chunk.
	assert.Equal(t, uint64(10), a.Stats().Chunks)
	assert.Equal(t, empty+10*1024+10*24, a.MemoryUsage())
}

func BenchmarkArena_AppendString(b *testing.B) {
	a, _ := New(0)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = a.AppendString("User_123456")
	}
}
