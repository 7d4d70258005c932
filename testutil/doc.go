// Package testutil provides testing utilities for mmapbuf.
//
// This package is intended for use in tests and benchmarks only.
// It provides a seeded random source for splice fuzzing and helpers for
// creating backing files.
//
// # Random Edits
//
//	rng := testutil.NewRNG(seed)
//	payload := rng.Text(16)
//	begin, remove := rng.Range(length)
//
// # Backing Files
//
//	path := testutil.TempFile(t, "0123456789")
package testutil
