// Package resource governs the work done on behalf of the residency controller.
//
// The residency Manager decides what should be resident; this package bounds
// how the resulting background work runs:
//
//   - Memory: track bytes held by decoded assets, optionally with a hard cap
//     (non-blocking, fail-fast).
//   - Concurrency: bound how many instantiation jobs run at once across every
//     taskgroup.Pool sharing the controller.
//   - IO: rate-limit asset reads so streaming does not starve foreground IO.
//
// Usage:
//
//	rc := resource.NewController(resource.Config{
//	    MaxBackgroundWorkers: 4,
//	    IOLimitBytesPerSec:   64 << 20,
//	})
//
//	if !rc.TryAcquireMemory(int64(len(decoded))) {
//	    // over the hard cap; substitute a fallback
//	}
//	defer rc.ReleaseMemory(int64(len(decoded)))
//
// All methods are safe for concurrent use and become no-ops on a nil
// *Controller.
package resource
