//go:build amd64 || arm64

package conv

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToInt(t *testing.T) {
	t.Run("zero", func(t *testing.T) {
		got, err := ToInt(uint64(0))
		require.NoError(t, err)
		assert.Equal(t, 0, got)
	})

	t.Run("uint32 max", func(t *testing.T) {
		got, err := ToInt(uint32(math.MaxUint32))
		require.NoError(t, err)
		assert.Equal(t, math.MaxUint32, got)
	})

	t.Run("uint64 max overflows", func(t *testing.T) {
		_, err := ToInt(uint64(math.MaxUint64))
		assert.Error(t, err)
	})
}

func TestToUint64(t *testing.T) {
	got, err := ToUint64(int64(42))
	require.NoError(t, err)
	assert.Equal(t, uint64(42), got)

	_, err = ToUint64(-1)
	assert.Error(t, err)
}

func TestToUint32(t *testing.T) {
	tests := []struct {
		name    string
		in      int
		want    uint32
		wantErr bool
	}{
		{"zero", 0, 0, false},
		{"positive", 123, 123, false},
		{"negative", -1, 0, true},
		{"max", math.MaxUint32, math.MaxUint32, false},
		{"too large", math.MaxUint32 + 1, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToUint32(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMulInt(t *testing.T) {
	tests := []struct {
		name    string
		a, b    int
		want    int
		wantErr bool
	}{
		{"zero", 0, math.MaxInt, 0, false},
		{"small", 1024, 8, 8192, false},
		{"max", math.MaxInt, 1, math.MaxInt, false},
		{"wraps", 1 << 61, 8, 0, true},
		{"negative", -1, 8, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MulInt(tt.a, tt.b)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrOverflow)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAddInt(t *testing.T) {
	got, err := AddInt(math.MaxInt-64, 64)
	require.NoError(t, err)
	assert.Equal(t, math.MaxInt, got)

	_, err = AddInt(math.MaxInt, 1)
	assert.ErrorIs(t, err, ErrOverflow)
	_, err = AddInt(-1, 1)
	assert.ErrorIs(t, err, ErrOverflow)
}
