// Package testutil provides testing utilities for batbit.
//
// This package is intended for use in tests and benchmarks only.
// It provides deterministic generators for the sparse integer inputs the
// containers are built for.
//
// # Random Key Generation
//
//	rng := testutil.NewRNG(seed)
//	keys := rng.SparseValues(1_000_000, 1_000_000_000) // uniform, with duplicates
//	hot := rng.ClusteredValues(1_000_000, 16, 4096, 1<<40)
//	skewed := rng.ZipfKeys(100_000, 1000, 1.2)         // duplicate-heavy
package testutil
