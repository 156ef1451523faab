package assetstream

import (
	"time"

	"github.com/hupe1980/assetstream/taskgroup"
)

// IterateBlocking instantiates id right away, ignoring the budget, so the
// caller can wait for it. It returns true if id is resident, pending, or was
// just submitted; false without an instantiator, after Close, or for an
// unknown id.
//
// The pass counter advance is deferred to the next Iterate so that
// backpressure accounts for the extra async unit.
func (m *Manager) IterateBlocking(pool *taskgroup.Pool, id AssetID) bool {
	start := time.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.iface == nil || m.closed || int64(id) >= int64(len(m.records)) {
		return false
	}

	m.drainLocked()

	r := &m.records[id]
	if r.resident() {
		m.metrics.RecordBlocking(time.Since(start), false)
		return true
	}

	estimate := max(m.iface.EstimateCost(r.id, r.handle), 1)
	group := m.openUnitLocked(pool, "asset-manager-instantiate-single")
	m.iface.Instantiate(m, group, r.id, r.handle)
	m.chargeLocked(r, estimate)
	r.lastUsed = m.generation
	m.deferred.Add(1)
	group.Flush()

	m.metrics.RecordBlocking(time.Since(start), true)
	return true
}
