package assetstream

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/hupe1980/assetstream/taskgroup"
)

// Iterate runs one residency pass: it applies pending reports, ranks all
// assets, instantiates the most wanted ones that fit the budget and evicts
// from the least wanted end. Async work is submitted to pool, which may be
// nil to run everything inline.
//
// Iterate does nothing without an instantiator or after Close. If async work
// from earlier passes lags too far behind, the pass is skipped and only
// Latch is called.
func (m *Manager) Iterate(pool *taskgroup.Pool) {
	start := time.Now()
	ctx := context.Background()

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.iface == nil || m.closed {
		return
	}

	m.generation += m.deferred.Swap(0)

	if completed := m.signal.Count(); completed+m.cfg.BackpressureSlack < m.generation {
		m.iface.Latch()
		m.skipped++
		m.logger.LogBackpressure(ctx, m.generation, completed)
		m.metrics.RecordIteration(time.Since(start), 0, 0, true)
		return
	}

	group := m.openUnitLocked(pool, "asset-manager-instantiate")
	m.drainLocked()
	m.sortLocked()

	activated, evicted := m.walkLocked(group)

	m.iface.Latch()
	group.Flush()
	clear(m.sorted)

	total, budget := m.totalConsumed.Load(), m.budget.Load()
	if evicted > 0 {
		m.logger.LogEviction(ctx, evicted, total, budget)
	}
	m.logger.LogPass(ctx, m.generation, activated, evicted, total, budget)
	m.metrics.RecordIteration(time.Since(start), activated, evicted, false)
	m.metrics.RecordConsumed(total, budget)

	m.generation++
}

func (m *Manager) sortLocked() {
	m.sorted = m.sorted[:0]
	for i := range m.records {
		m.sorted = append(m.sorted, &m.records[i])
	}
	slices.SortFunc(m.sorted, compareResidency)
}

// compareResidency orders records from most to least wanted.
func compareResidency(a, b *record) int {
	if c := cmp.Compare(b.priority, a.priority); c != 0 {
		return c
	}
	if c := cmp.Compare(b.lastUsed, a.lastUsed); c != 0 {
		return c
	}
	if c := cmp.Compare(a.consumed, b.consumed); c != 0 {
		return c
	}
	if c := cmp.Compare(b.pending, a.pending); c != 0 {
		return c
	}
	return cmp.Compare(a.id, b.id)
}

func (m *Manager) admissible(r *record, estimate, budget uint64) bool {
	total := m.totalConsumed.Load()
	return total+estimate <= budget || r.priority == PersistentPriority || total == 0
}

// walkLocked activates from the head of m.sorted and evicts from the tail.
// Records between the two cursors are left alone.
func (m *Manager) walkLocked(group *taskgroup.Group) (activated, evicted int) {
	budget := m.budget.Load()
	perPass := m.budgetPerIteration.Load()

	head, tail := 0, len(m.sorted)
	var activatedCost uint64

	for m.totalConsumed.Load() < budget && activatedCost < perPass && head != tail {
		r := m.sorted[head]
		if r.priority <= PriorityNone {
			break
		}
		if r.resident() {
			head++
			continue
		}

		// A zero estimate would leave the record looking unloaded.
		estimate := max(m.iface.EstimateCost(r.id, r.handle), 1)
		if activated > 0 && activatedCost+estimate > perPass {
			break
		}

		ok := m.admissible(r, estimate, budget)
		for !ok && head+1 != tail {
			tail--
			if m.releaseLocked(m.sorted[tail]) {
				evicted++
			}
			ok = m.admissible(r, estimate, budget)
		}
		if !ok {
			break
		}

		m.iface.Instantiate(m, group, r.id, r.handle)
		m.chargeLocked(r, estimate)
		activatedCost += estimate
		activated++
		head++
	}

	low := uint64(float64(budget) * m.cfg.EvictionHeadroom)
	for head != tail {
		r := m.sorted[tail-1]
		if r.priority == PersistentPriority {
			break
		}
		total := m.totalConsumed.Load()
		if total <= budget && (total <= low || r.priority > PriorityNone) {
			break
		}
		tail--
		if m.releaseLocked(r) {
			r.lastUsed = 0
			evicted++
		}
	}
	return activated, evicted
}
