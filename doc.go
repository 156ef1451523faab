// Package assetstream provides a budgeted residency controller for streamed assets.
//
// A Manager tracks a dense table of registered assets (textures, meshes, any
// blob a renderer or service wants resident on demand), each with a residency
// priority and a last-used generation. Once per frame or tick, Iterate decides
// which assets to activate and which to evict so that the total consumed
// memory stays within a budget. Actual loading is delegated to an
// Instantiator, which reports the real cost back through UpdateCost.
//
// # Quick Start
//
//	store := blobstore.NewLocalStore("./assets")
//	pool := taskgroup.NewPool(4, nil)
//	defer pool.Close()
//
//	m, _ := assetstream.New(assetstream.WithBudget(512 << 20))
//	defer m.Close()
//
//	ld := loader.New()
//	m.SetInstantiator(ld)
//
//	id, _ := m.RegisterPath(ctx, store, "rock.tex", assetstream.ClassImageColor, assetstream.PriorityDefault)
//
//	for frame := range frames {
//	    m.MarkUsed(id)
//	    m.Iterate(pool)
//	    if res, ok := ld.Get(id); ok {
//	        draw(res.Data)
//	    }
//	}
//
// # Priorities
//
// Priority 0 (PriorityNone) means an asset is never activated by Iterate and
// is the first candidate for eviction. PersistentPriority pins an asset: it is
// admitted even over budget and never evicted.
//
// # Backpressure
//
// Each pass opens one unit of asynchronous work. If the instantiator falls
// more than BackpressureSlack units behind, Iterate skips the pass and only
// latches handles. IterateBlocking loads a single asset immediately,
// ignoring the budget.
//
// # Accounting
//
// TotalConsumed always equals the sum of consumed and pending cost over all
// assets. Pending cost is the instantiator's estimate for an activation that
// has not yet reported back.
package assetstream
