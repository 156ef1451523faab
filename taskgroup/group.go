package taskgroup

import (
	"sync/atomic"
)

// Group is one unit of background work made of any number of jobs.
type Group struct {
	pool   *Pool
	desc   string
	signal *Signal

	// pending counts queued or running jobs plus one reference held until Flush.
	pending atomic.Int64
	sealed  atomic.Bool
}

// Desc returns the description the group was opened with.
func (g *Group) Desc() string {
	if g == nil {
		return ""
	}
	return g.desc
}

// Enqueue schedules job on the pool. Jobs may enqueue more work into their
// own group while running.
//
// On a nil Group the job runs inline before Enqueue returns.
func (g *Group) Enqueue(job func()) error {
	if g == nil {
		job()
		return nil
	}

	for {
		n := g.pending.Load()
		if n == 0 {
			return ErrCompleted
		}
		if g.pending.CompareAndSwap(n, n+1) {
			break
		}
	}

	if err := g.pool.submit(func() {
		defer g.done()
		job()
	}); err != nil {
		g.done()
		return err
	}
	return nil
}

// Flush seals the group. The signal fires once every job has finished.
// Subsequent calls are no-ops.
func (g *Group) Flush() {
	if g == nil {
		return
	}
	if g.sealed.CompareAndSwap(false, true) {
		g.done()
	}
}

// Done reports whether the group is sealed and has no outstanding work.
func (g *Group) Done() bool {
	if g == nil {
		return true
	}
	return g.pending.Load() == 0
}

func (g *Group) done() {
	if g.pending.Add(-1) == 0 && g.signal != nil {
		g.signal.Increment()
	}
}
