// Package testutil provides testing utilities for assetstream.
//
// This package is intended for use in tests and benchmarks only.
//
// # Recording Instantiator
//
//	rec := testutil.NewRecorder()
//	rec.SetCost(id, 100)
//	mgr.SetInstantiator(rec)
//	mgr.Iterate(nil)
//	rec.Instantiated() // ids in call order
//
// # Deterministic Randomness
//
//	rng := testutil.NewRNG(seed)
//	hot := rng.Zipf(numAssets, 1.2) // skewed asset access
package testutil
