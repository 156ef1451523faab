package taskgroup

import (
	"context"
	"errors"
	"runtime"
	"sync"

	"github.com/hupe1980/assetstream/resource"
)

// ErrClosed is returned when work is submitted to a closed Pool.
var ErrClosed = errors.New("taskgroup: pool closed")

// ErrCompleted is returned when work is enqueued into a Group that already finished.
var ErrCompleted = errors.New("taskgroup: group completed")

// Pool manages a fixed set of background worker goroutines.
type Pool struct {
	numWorkers int
	rc         *resource.Controller

	mu     sync.Mutex
	cond   *sync.Cond
	queue  []func()
	closed bool

	wg sync.WaitGroup
}

// NewPool creates a pool with numWorkers goroutines.
// If numWorkers <= 0, runtime.GOMAXPROCS(0) is used. rc may be nil.
func NewPool(numWorkers int, rc *resource.Controller) *Pool {
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}

	p := &Pool{
		numWorkers: numWorkers,
		rc:         rc,
	}
	p.cond = sync.NewCond(&p.mu)

	p.wg.Add(numWorkers)
	for range numWorkers {
		go p.worker()
	}

	return p
}

// NumWorkers returns the number of worker goroutines.
func (p *Pool) NumWorkers() int {
	return p.numWorkers
}

// NewGroup opens a group of work whose completion increments signal.
// signal may be nil.
func (p *Pool) NewGroup(desc string, signal *Signal) *Group {
	g := &Group{
		pool:   p,
		desc:   desc,
		signal: signal,
	}
	g.pending.Store(1)
	return g
}

// QueueDepth returns the number of jobs waiting for a worker.
func (p *Pool) QueueDepth() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}

func (p *Pool) submit(job func()) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}
	p.queue = append(p.queue, job)
	p.cond.Signal()
	return nil
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		p.mu.Lock()
		for len(p.queue) == 0 && !p.closed {
			p.cond.Wait()
		}
		if len(p.queue) == 0 {
			// Closed and drained.
			p.mu.Unlock()
			return
		}
		job := p.queue[0]
		p.queue[0] = nil
		p.queue = p.queue[1:]
		p.mu.Unlock()

		p.run(job)
	}
}

func (p *Pool) run(job func()) {
	// Background slots are only released by us; Acquire cannot fail on a
	// non-cancelable context.
	_ = p.rc.AcquireBackground(context.Background())
	defer p.rc.ReleaseBackground()
	job()
}

// Close stops accepting work, runs everything already queued, and waits for
// the workers to exit. It is idempotent.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.cond.Broadcast()
	p.mu.Unlock()

	p.wg.Wait()
}
