package mem

import (
	"errors"
	"fmt"
	"math/bits"
	"unsafe"

	"github.com/hupe1980/batbit/internal/conv"
)

// Alignment is the byte alignment of every allocation (one cache line).
const Alignment = 64

// MaxBytes is the largest allocation Alloc attempts: 2^47-1 on 64-bit
// platforms, math.MaxInt32 on 32-bit ones. The runtime refuses larger heaps
// with a panic rather than an error.
const MaxBytes = 1<<(min(bits.UintSize, 48)-1) - 1

// ErrTooLarge is returned when a requested allocation exceeds MaxBytes.
var ErrTooLarge = errors.New("allocation exceeds addressable memory")

// AllocAligned allocates a byte slice of the given size with 64-byte alignment.
// The returned slice is guaranteed to start at a memory address divisible by 64.
//
// Note: This function allocates slightly more memory than requested to ensure alignment.
// The underlying array is kept alive by the returned slice.
func AllocAligned(size int) []byte {
	if size <= 0 {
		return nil
	}

	buf := make([]byte, size+Alignment)

	ptr := unsafe.Pointer(&buf[0]) //nolint:gosec // unsafe is required for memory alignment
	addr := uintptr(ptr)
	offset := (Alignment - (addr & (Alignment - 1))) & (Alignment - 1)

	return buf[offset : offset+uintptr(size)]
}

// Bytes returns the bytes Alloc reserves for n elements of T, padding included.
func Bytes[T any](n int) (int, error) {
	if n <= 0 {
		return 0, nil
	}
	var zero T
	size, err := conv.MulInt(n, int(unsafe.Sizeof(zero)))
	if err == nil {
		size, err = conv.AddInt(size, Overhead(n))
	}
	if err != nil || size > MaxBytes {
		return 0, fmt.Errorf("%w: %d elements of %d bytes", ErrTooLarge, n, unsafe.Sizeof(zero))
	}
	return size, nil
}

// Alloc allocates a zeroed slice of n elements of T whose first element is
// 64-byte aligned. T must not contain pointers.
func Alloc[T any](n int) ([]T, error) {
	if n <= 0 {
		return nil, nil
	}
	if _, err := Bytes[T](n); err != nil {
		return nil, err
	}

	var zero T
	width := int(unsafe.Sizeof(zero))
	if width == 0 {
		return make([]T, n), nil
	}

	byteSlice := AllocAligned(n * width)
	ptr := unsafe.Pointer(&byteSlice[0])   //nolint:gosec // unsafe is required for memory alignment
	return unsafe.Slice((*T)(ptr), n), nil //nolint:gosec // unsafe is required for memory alignment
}

// Overhead returns the padding bytes Alloc reserves on top of n*width.
func Overhead(n int) int {
	if n <= 0 {
		return 0
	}
	return Alignment
}
