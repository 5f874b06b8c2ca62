// Package vector implements a growable, contiguous vector of fixed-width
// numeric elements.
//
// Backing storage is 64-byte aligned (see internal/mem) and grows by
// doubling. Growth is reserved through an optional MemoryAcquirer before the
// new array is allocated, and the old reservation is released once the data
// has been moved.
//
// A Vector has a single writer. Len, Cap and MemoryUsage read atomically
// published counters and may be called from any goroutine.
package vector
