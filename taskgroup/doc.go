// Package taskgroup runs asset instantiation work in the background.
//
// A Pool owns a fixed set of worker goroutines fed by an unbounded queue, so
// submitting work never blocks the caller. Work is submitted through a Group:
// the residency controller opens one Group per pass, the Instantiator enqueues
// closures into it, and the controller seals it with Flush. Once a sealed Group
// has no outstanding work it increments its Signal exactly once.
//
//	sig := taskgroup.NewSignal()
//	g := pool.NewGroup("asset-manager-instantiate", sig)
//	_ = g.Enqueue(func() { decode(id) })
//	g.Flush()
//	sig.WaitUntilAtLeast(1)
//
// A nil *Group runs enqueued work inline, which is how the controller behaves
// when no Pool is configured.
//
// When a resource.Controller is attached, every job also holds one of its
// background slots while running, bounding concurrency across pools.
package taskgroup
