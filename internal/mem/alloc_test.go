package mem

import (
	"fmt"
	"math"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocAligned(t *testing.T) {
	sizes := []int{1, 10, 63, 64, 65, 100, 1024}

	for _, size := range sizes {
		buf := AllocAligned(size)
		assert.Len(t, buf, size)

		addr := uintptr(unsafe.Pointer(&buf[0]))
		assert.Equal(t, uintptr(0), addr%Alignment, "Address %d should be aligned to %d for size %d", addr, Alignment, size)
	}

	assert.Nil(t, AllocAligned(0))
	assert.Nil(t, AllocAligned(-1))
}

func TestAlloc(t *testing.T) {
	t.Run("uint64", func(t *testing.T) {
		for _, n := range []int{1, 7, 8, 1000} {
			buf, err := Alloc[uint64](n)
			require.NoError(t, err)
			assert.Len(t, buf, n)
			assert.Equal(t, uintptr(0), uintptr(unsafe.Pointer(&buf[0]))%Alignment)
			for _, v := range buf {
				assert.Zero(t, v)
			}
		}
	})

	t.Run("float64", func(t *testing.T) {
		buf, err := Alloc[float64](33)
		require.NoError(t, err)
		assert.Len(t, buf, 33)
		assert.Equal(t, uintptr(0), uintptr(unsafe.Pointer(&buf[0]))%Alignment)
	})

	t.Run("empty", func(t *testing.T) {
		buf, err := Alloc[int64](0)
		require.NoError(t, err)
		assert.Nil(t, buf)
		buf, err = Alloc[int64](-5)
		require.NoError(t, err)
		assert.Nil(t, buf)
	})

	t.Run("too large", func(t *testing.T) {
		for _, n := range []int{MaxBytes / 8, math.MaxInt / 4, math.MaxInt} {
			buf, err := Alloc[uint64](n)
			require.ErrorIs(t, err, ErrTooLarge, "n=%d", n)
			assert.Nil(t, buf)
		}
	})
}

func TestBytes(t *testing.T) {
	n, err := Bytes[uint64](1024)
	require.NoError(t, err)
	assert.Equal(t, 1024*8+Alignment, n)

	n, err = Bytes[uint32](0)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = Bytes[uint64](math.MaxInt/8 + 1)
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestOverhead(t *testing.T) {
	assert.Equal(t, 0, Overhead(0))
	assert.Equal(t, Alignment, Overhead(1))
}

func BenchmarkAlloc(b *testing.B) {
	sizes := []int{64, 1024, 1 << 16}
	for _, size := range sizes {
		b.Run(fmt.Sprintf("n=%d", size), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_, _ = Alloc[uint64](size)
			}
		})
	}
}
