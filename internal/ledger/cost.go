package ledger

import "sync"

// CostUpdate is the new total cost reported for one asset.
type CostUpdate struct {
	ID   uint32
	Cost uint64
}

// CostLedger collects cost updates from any goroutine.
//
// Drain has a single consumer. Updates pushed while a drain is running land
// in the next batch.
type CostLedger struct {
	mu      sync.Mutex
	pending []CostUpdate

	// spare is only touched by Drain; it is recycled as the next pending buffer.
	spare []CostUpdate
}

// Push appends an update.
func (l *CostLedger) Push(id uint32, cost uint64) {
	l.mu.Lock()
	l.pending = append(l.pending, CostUpdate{ID: id, Cost: cost})
	l.mu.Unlock()
}

// Len returns the number of updates waiting for the next drain.
func (l *CostLedger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.pending)
}

// Drain swaps out the pending batch and applies fn front-to-back.
// It returns the number of updates applied.
func (l *CostLedger) Drain(fn func(CostUpdate)) int {
	l.mu.Lock()
	batch := l.pending
	l.pending = l.spare[:0]
	l.mu.Unlock()

	for _, u := range batch {
		fn(u)
	}

	l.spare = batch[:0]
	return len(batch)
}
