package assetstream

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/hupe1980/assetstream/blobstore"
	"github.com/hupe1980/assetstream/internal/ledger"
	"github.com/hupe1980/assetstream/taskgroup"
)

// record is the registry entry for one asset.
type record struct {
	id       AssetID
	handle   blobstore.Blob
	path     string
	class    AssetClass
	priority Priority

	// consumed is the last reported real cost; pending is the estimate
	// charged while an instantiation is in flight.
	consumed uint64
	pending  uint64
	lastUsed uint64
}

func (r *record) resident() bool { return r.consumed != 0 || r.pending != 0 }

// Manager decides which registered assets are resident under a cost budget.
//
// Register, SetResidencyPriority, SetInstantiator, Iterate and
// IterateBlocking serialize on one registry lock. UpdateCost and MarkUsed
// never take it and may be called from any goroutine at any time.
type Manager struct {
	mu      sync.Mutex
	records []record
	sorted  []*record
	iface   Instantiator
	closed  bool

	byHash   map[uint64]AssetID
	// collided indexes paths whose hash slot belongs to another path.
	collided map[string]AssetID

	generation uint64
	issued     uint64
	skipped    uint64

	costs ledger.CostLedger
	usage ledger.UsageLog
	opens singleflight.Group

	deferred           atomic.Uint64
	totalConsumed      atomic.Uint64
	budget             atomic.Uint64
	budgetPerIteration atomic.Uint64

	signal  *taskgroup.Signal
	cfg     Config
	logger  *Logger
	metrics MetricsCollector
}

var _ CostReporter = (*Manager)(nil)

// New creates a Manager. No instantiator is attached; Iterate is a no-op
// until SetInstantiator is called.
func New(optFns ...Option) (*Manager, error) {
	o := applyOptions(optFns)
	if err := o.cfg.Validate(); err != nil {
		return nil, err
	}

	m := &Manager{
		byHash:     make(map[uint64]AssetID),
		generation: 1,
		signal:     taskgroup.NewSignal(),
		cfg:        o.cfg,
		logger:     o.logger,
		metrics:    o.metricsCollector,
	}
	m.budget.Store(o.cfg.Budget)
	m.budgetPerIteration.Store(o.cfg.BudgetPerIteration)
	return m, nil
}

// UpdateCost reports the real cost of id. It is applied on the next pass.
func (m *Manager) UpdateCost(id AssetID, cost uint64) {
	m.costs.Push(uint32(id), cost)
}

// MarkUsed records that id was used. It never blocks.
func (m *Manager) MarkUsed(id AssetID) {
	m.usage.Push(uint32(id))
}

// TotalConsumed returns the aggregate charged cost without locking.
// The value may be momentarily stale relative to an in-progress pass.
func (m *Manager) TotalConsumed() uint64 {
	return m.totalConsumed.Load()
}

// Budget returns the aggregate budget.
func (m *Manager) Budget() uint64 { return m.budget.Load() }

// SetBudget sets the aggregate budget used by subsequent passes.
func (m *Manager) SetBudget(budget uint64) { m.budget.Store(budget) }

// BudgetPerIteration returns the per-pass activation cap.
func (m *Manager) BudgetPerIteration() uint64 { return m.budgetPerIteration.Load() }

// SetBudgetPerIteration sets the per-pass activation cap.
func (m *Manager) SetBudgetPerIteration(budget uint64) { m.budgetPerIteration.Store(budget) }

// Count returns the number of registered assets.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

// Generation returns the current pass counter, including increments
// deferred by IterateBlocking.
func (m *Manager) Generation() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.generation + m.deferred.Load()
}

// AssetInfo is a point-in-time view of one registry record.
type AssetInfo struct {
	ID       AssetID
	Path     string
	Class    AssetClass
	Priority Priority
	Consumed uint64
	Pending  uint64
	LastUsed uint64
}

// Resident reports whether the asset is resident or being instantiated.
func (a AssetInfo) Resident() bool { return a.Consumed != 0 || a.Pending != 0 }

// Asset returns the registry state of id as of the last pass. Reports not
// yet drained by a pass are not reflected.
func (m *Manager) Asset(id AssetID) (AssetInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if int64(id) >= int64(len(m.records)) {
		return AssetInfo{}, ErrInvalidAssetID
	}
	r := &m.records[id]
	return AssetInfo{
		ID:       r.id,
		Path:     r.path,
		Class:    r.class,
		Priority: r.priority,
		Consumed: r.consumed,
		Pending:  r.pending,
		LastUsed: r.lastUsed,
	}, nil
}

// Stats is a snapshot of controller state.
type Stats struct {
	Assets             int
	Resident           int
	Pending            int
	TotalConsumed      uint64
	Budget             uint64
	BudgetPerIteration uint64
	Generation         uint64
	OutstandingUnits   uint64
	SkippedPasses      uint64
}

// Stats returns a snapshot of controller state as of the last pass.
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := Stats{
		Assets:             len(m.records),
		TotalConsumed:      m.totalConsumed.Load(),
		Budget:             m.budget.Load(),
		BudgetPerIteration: m.budgetPerIteration.Load(),
		Generation:         m.generation + m.deferred.Load(),
		SkippedPasses:      m.skipped,
	}
	if done := m.signal.Count(); m.issued > done {
		s.OutstandingUnits = m.issued - done
	}
	for i := range m.records {
		r := &m.records[i]
		if r.consumed != 0 {
			s.Resident++
		}
		if r.pending != 0 {
			s.Pending++
		}
	}
	return s
}

// Close waits for outstanding async work, releases every resident asset
// through the attached instantiator, and closes all blob handles.
// Further registrations fail with ErrClosed; Iterate becomes a no-op.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true

	released := m.releaseAllLocked()
	m.logger.LogSwap(context.Background(), released, len(m.records))
	m.iface = nil

	var errs []error
	for i := range m.records {
		if h := m.records[i].handle; h != nil {
			if err := h.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// releaseAllLocked quiesces async work and returns every asset to the
// unloaded state. It returns how many ids were released.
func (m *Manager) releaseAllLocked() int {
	m.signal.WaitUntilAtLeast(m.issued)
	m.drainLocked()

	released := 0
	for i := range m.records {
		r := &m.records[i]
		if m.iface != nil && r.resident() {
			m.iface.Release(r.id)
			released++
		}
		r.consumed, r.pending, r.lastUsed = 0, 0, 0
	}
	m.totalConsumed.Store(0)
	return released
}

// drainLocked applies queued cost and usage reports.
func (m *Manager) drainLocked() {
	now := m.generation
	m.costs.Drain(func(u ledger.CostUpdate) {
		if int64(u.ID) >= int64(len(m.records)) {
			return
		}
		r := &m.records[u.ID]
		m.totalConsumed.Add(u.Cost - (r.consumed + r.pending))
		r.consumed = u.Cost
		r.pending = 0
		r.lastUsed = now
	})
	m.usage.Drain(func(id uint32) {
		if int64(id) < int64(len(m.records)) {
			m.records[id].lastUsed = now
		}
	})
}

// openUnitLocked creates the async unit for one pass. Without a pool the
// unit completes immediately.
func (m *Manager) openUnitLocked(pool *taskgroup.Pool, desc string) *taskgroup.Group {
	m.issued++
	if pool == nil {
		m.signal.Increment()
		return nil
	}
	return pool.NewGroup(desc, m.signal)
}

func (m *Manager) chargeLocked(r *record, estimate uint64) {
	r.pending = estimate
	m.totalConsumed.Add(estimate)
}

// releaseLocked releases r if it holds a reported cost.
func (m *Manager) releaseLocked(r *record) bool {
	if r.consumed == 0 {
		return false
	}
	m.iface.Release(r.id)
	m.totalConsumed.Add(-r.consumed)
	r.consumed = 0
	return true
}
