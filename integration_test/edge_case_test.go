package integration_test

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/batbit"
)

func TestEdgeCases_Cave(t *testing.T) {
	cave, err := batbit.NewBatCave(batbit.WithDomainMax(1<<63), batbit.WithChunkBits(10))
	require.NoError(t, err)

	t.Run("Empty batch", func(t *testing.T) {
		require.NoError(t, cave.DeployBatch(nil))
		assert.Zero(t, cave.Chunks())
	})

	t.Run("Domain edges", func(t *testing.T) {
		require.NoError(t, cave.Deploy(0))
		require.NoError(t, cave.Deploy(1<<63-1))
		assert.True(t, cave.Signal(1<<63-1))
		assert.ErrorIs(t, cave.Deploy(1<<63), batbit.ErrOutOfDomain)
		assert.False(t, cave.Signal(math.MaxUint64))
	})

	t.Run("Chunk edges", func(t *testing.T) {
		edges := []uint64{1023, 1024, 2047, 2048}
		require.NoError(t, cave.DeployBatch(edges))
		for _, v := range edges {
			assert.True(t, cave.Signal(v))
		}
		assert.False(t, cave.Signal(1025))
	})
}

func TestEdgeCases_Vector(t *testing.T) {
	vec, err := batbit.NewBatVector()
	require.NoError(t, err)

	require.NoError(t, vec.PushBatch(nil))
	_, err = vec.Get(0)
	assert.ErrorIs(t, err, batbit.ErrIndexOutOfRange)
	_, err = vec.Get(-1)
	assert.ErrorIs(t, err, batbit.ErrIndexOutOfRange)

	require.NoError(t, vec.Push(math.MaxUint64))
	v, err := vec.Get(0)
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64), v)
}

func TestEdgeCases_Map(t *testing.T) {
	m, err := batbit.NewBatMap(batbit.WithShardBits(0))
	require.NoError(t, err)

	require.NoError(t, m.PutBatch(nil, nil))
	require.NoError(t, m.Put(0, math.Inf(1)))
	require.NoError(t, m.Put(math.MaxUint64, -0.5))
	require.NoError(t, m.Put(1, math.NaN()))

	v, err := m.Get(0)
	require.NoError(t, err)
	assert.True(t, math.IsInf(v, 1))

	v, err = m.Get(math.MaxUint64)
	require.NoError(t, err)
	assert.Equal(t, -0.5, v)

	v, err = m.Get(1)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(v))
}

func TestEdgeCases_Store(t *testing.T) {
	store, err := batbit.NewBatStore(batbit.WithArenaChunkSize(16))
	require.NoError(t, err)
	require.NoError(t, store.AddStrCol("s"))

	_, err = store.GetStr("s", 0)
	assert.ErrorIs(t, err, batbit.ErrNotFound, "no rows yet")

	row := store.NewRow()
	long := strings.Repeat("x", 1000)
	require.NoError(t, store.SetStr("s", row, long))
	got, err := store.GetStr("s", row)
	require.NoError(t, err)
	assert.Equal(t, long, got)

	require.NoError(t, store.SetStr("s", row, "日本語"))
	got, err = store.GetStr("s", row)
	require.NoError(t, err)
	assert.Equal(t, "日本語", got)

	require.NoError(t, store.SetStr("s", row, ""))
	got, err = store.GetStr("s", row)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.True(t, store.Has("s", row))
}
