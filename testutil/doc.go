// Package testutil provides testing utilities for tuplego.
//
// This package is intended for use in tests and benchmarks only.
// It provides a deterministic seeded RNG plus helpers for generating
// schemas, record batches and projected rows.
//
// # Deterministic Data Generation
//
//	rng := testutil.NewRNG(seed)
//	keys := rng.DistinctKeys(100)
//	batch := rng.RandomBatch(testutil.TestSchema(), keys, 0.2)
package testutil
