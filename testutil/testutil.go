package testutil

import (
	"math"
	"math/rand"
	"sync"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Uint64 returns a pseudo-random uint64.
func (r *RNG) Uint64() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Uint64()
}

// Uint64n returns a pseudo-random number in [0,n). n must be > 0.
func (r *RNG) Uint64n(n uint64) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.uint64nLocked(n)
}

func (r *RNG) uint64nLocked(n uint64) uint64 {
	if n&(n-1) == 0 {
		return r.rand.Uint64() & (n - 1)
	}
	limit := math.MaxUint64 - math.MaxUint64%n
	for {
		v := r.rand.Uint64()
		if v < limit {
			return v % n
		}
	}
}

// Float64 returns, as a float64, a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// SparseValues returns n uniform values in [0, limit). Duplicates are possible.
func (r *RNG) SparseValues(n int, limit uint64) []uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]uint64, n)
	for i := range out {
		out[i] = r.uint64nLocked(limit)
	}
	return out
}

// ClusteredValues returns n values in [0, limit) drawn around the given
// number of random centers, each value at most spread away from its center.
// This is the shape of real sparse id sets: dense islands in a huge domain.
func (r *RNG) ClusteredValues(n, clusters int, spread, limit uint64) []uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	if clusters < 1 {
		clusters = 1
	}
	centers := make([]uint64, clusters)
	for i := range centers {
		centers[i] = r.uint64nLocked(limit)
	}

	out := make([]uint64, n)
	for i := range out {
		c := centers[r.rand.Intn(clusters)]
		v := c + r.uint64nLocked(spread+1)
		if v >= limit || v < c {
			v = limit - 1
		}
		out[i] = v
	}
	return out
}

// ZipfKeys returns n keys in [0, keySpace) with Zipfian skew s (> 1).
// Low keys repeat often, which exercises last-write-wins paths.
func (r *RNG) ZipfKeys(n int, keySpace uint64, s float64) []uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	z := rand.NewZipf(r.rand, s, 1, keySpace-1)
	out := make([]uint64, n)
	for i := range out {
		out[i] = z.Uint64()
	}
	return out
}

// SparsePresence returns n flags, each false with probability missingRate.
func (r *RNG) SparsePresence(n int, missingRate float64) []bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	present := make([]bool, n)
	for i := range n {
		present[i] = r.rand.Float64() >= missingRate
	}

	return present
}

// Sequence returns the values [0, n).
func Sequence(n int) []uint64 {
	out := make([]uint64, n)
	for i := range out {
		out[i] = uint64(i)
	}
	return out
}
