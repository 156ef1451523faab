package assetstream_test

import (
	"sync"
	"testing"
	"time"

	"github.com/hupe1980/assetstream"
	"github.com/hupe1980/assetstream/taskgroup"
	"github.com/hupe1980/assetstream/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIterate_NoInstantiator(t *testing.T) {
	m := newManager(t, assetstream.WithBudget(100))
	register(t, m, 10, 1)

	m.Iterate(nil)
	assert.Equal(t, uint64(0), m.TotalConsumed())
	assert.Equal(t, uint64(1), m.Generation())
}

func TestIterate_OversizedAsset(t *testing.T) {
	m := newManager(t, assetstream.WithBudget(10), assetstream.WithBudgetPerIteration(10))
	rec := testutil.NewRecorder()
	m.SetInstantiator(rec)
	register(t, m, 100, 1)

	m.Iterate(nil)
	assert.Equal(t, uint64(100), m.TotalConsumed())
	assert.Len(t, rec.Instantiated(), 1)

	m.Iterate(nil)
	assert.Len(t, rec.Instantiated(), 1)
}

func TestIterate_PriorityZeroNeverActivated(t *testing.T) {
	m := newManager(t, assetstream.WithBudget(100))
	rec := testutil.NewRecorder()
	m.SetInstantiator(rec)

	wanted := register(t, m, 5, 1)
	idle := register(t, m, 5, 0)
	negative := register(t, m, 5, -3)

	for range 3 {
		m.Iterate(nil)
	}

	assert.Equal(t, []assetstream.AssetID{wanted}, rec.Instantiated())
	for _, id := range []assetstream.AssetID{idle, negative} {
		info, err := m.Asset(id)
		require.NoError(t, err)
		assert.False(t, info.Resident())
	}
	assert.Equal(t, uint64(5), m.TotalConsumed())
}

func TestIterate_PerIterationCap(t *testing.T) {
	m := newManager(t, assetstream.WithBudget(25), assetstream.WithBudgetPerIteration(5))
	rec := testutil.NewRecorder()
	m.SetInstantiator(rec)

	for _, size := range []int{1, 2, 4, 8, 16} {
		register(t, m, size, 1)
	}

	m.Iterate(nil)
	assert.Equal(t, uint64(3), m.TotalConsumed())
	assert.Equal(t, []assetstream.AssetID{0, 1}, rec.Instantiated())

	m.Iterate(nil)
	assert.Equal(t, uint64(7), m.TotalConsumed())
	assert.Equal(t, []assetstream.AssetID{0, 1, 2}, rec.Instantiated())
}

func TestIterate_PersistentNeverEvicted(t *testing.T) {
	m := newManager(t, assetstream.WithBudget(10))
	rec := testutil.NewRecorder()
	m.SetInstantiator(rec)

	pinned := register(t, m, 50, assetstream.PersistentPriority)
	register(t, m, 5, 1)
	register(t, m, 5, 0)

	for range 5 {
		m.Iterate(nil)
	}

	info, err := m.Asset(pinned)
	require.NoError(t, err)
	assert.Equal(t, uint64(50), info.Consumed)
	assert.NotContains(t, rec.Released(), pinned)
	assert.Equal(t, uint64(50), m.TotalConsumed())
}

func TestIterate_PersistentAdmittedOverBudget(t *testing.T) {
	m := newManager(t, assetstream.WithBudget(20), assetstream.WithBudgetPerIteration(100))
	rec := testutil.NewRecorder()
	m.SetInstantiator(rec)

	other := register(t, m, 15, 1)
	m.Iterate(nil)
	m.Iterate(nil)

	// Admission goes over budget; the same pass then evicts the tail.
	pinned := register(t, m, 15, assetstream.PersistentPriority)
	m.Iterate(nil)

	assert.Equal(t, []assetstream.AssetID{other, pinned}, rec.Instantiated())
	assert.Equal(t, []assetstream.AssetID{other}, rec.Released())
	assert.Equal(t, uint64(15), m.TotalConsumed())
}

func TestIterate_EvictsToMakeRoom(t *testing.T) {
	m := newManager(t, assetstream.WithBudget(20), assetstream.WithBudgetPerIteration(100))
	rec := testutil.NewRecorder()
	m.SetInstantiator(rec)

	old := register(t, m, 15, 1)
	m.Iterate(nil)
	m.Iterate(nil)
	require.Equal(t, uint64(15), m.TotalConsumed())

	fresh := register(t, m, 10, 2)
	m.Iterate(nil)

	assert.Equal(t, []assetstream.AssetID{old}, rec.Released())
	assert.Equal(t, []assetstream.AssetID{old, fresh}, rec.Instantiated())
	assert.Equal(t, uint64(10), m.TotalConsumed())
}

func TestIterate_HeadroomEvictsIdleAssets(t *testing.T) {
	m := newManager(t, assetstream.WithBudget(100), assetstream.WithBudgetPerIteration(100))
	rec := testutil.NewRecorder()
	m.SetInstantiator(rec)

	keep := register(t, m, 50, 1)
	idle := register(t, m, 40, 1)
	m.Iterate(nil)
	m.Iterate(nil)
	require.Equal(t, uint64(90), m.TotalConsumed())

	m.SetResidencyPriority(idle, 0)
	m.Iterate(nil)

	assert.Equal(t, []assetstream.AssetID{idle}, rec.Released())
	assert.Equal(t, uint64(50), m.TotalConsumed())

	info, err := m.Asset(keep)
	require.NoError(t, err)
	assert.True(t, info.Resident())
}

func TestIterate_LatchEveryPass(t *testing.T) {
	m := newManager(t)
	rec := testutil.NewRecorder()
	m.SetInstantiator(rec)

	for range 4 {
		m.Iterate(nil)
	}
	assert.Equal(t, 4, rec.Latches())
	assert.Equal(t, uint64(5), m.Generation())
}

func TestIterate_ChargedMatchesTotal(t *testing.T) {
	rng := testutil.NewRNG(4711)
	m := newManager(t, assetstream.WithBudget(500), assetstream.WithBudgetPerIteration(120))
	rec := testutil.NewRecorder()
	m.SetInstantiator(rec)

	const n = 64
	for range n {
		register(t, m, int(rng.Uint64n(1, 60)), assetstream.Priority(rng.Intn(4)))
	}

	for range 40 {
		for range 8 {
			m.MarkUsed(assetstream.AssetID(rng.Zipf(n, 1.2)))
		}
		if rng.Intn(4) == 0 {
			m.SetResidencyPriority(assetstream.AssetID(rng.Intn(n)), assetstream.Priority(rng.Intn(4)))
		}
		if rng.Intn(10) == 0 {
			m.SetBudget(rng.Uint64n(100, 800))
		}
		m.Iterate(nil)

		all, _ := charged(t, m)
		require.Equal(t, all, m.TotalConsumed())
	}

	// A pass that activates nothing leaves only reported costs.
	m.SetBudgetPerIteration(0)
	m.Iterate(nil)
	all, consumed := charged(t, m)
	assert.Equal(t, consumed, all)
	assert.Equal(t, consumed, m.TotalConsumed())
}

func TestIterate_Backpressure(t *testing.T) {
	pool := taskgroup.NewPool(1, nil)
	t.Cleanup(pool.Close)

	gate := make(chan struct{})
	blocker := pool.NewGroup("blocker", nil)
	require.NoError(t, blocker.Enqueue(func() { <-gate }))
	blocker.Flush()

	m := newManager(t, assetstream.WithBudget(100), assetstream.WithBudgetPerIteration(1))
	rec := testutil.NewRecorder()
	rec.SetMode(testutil.ReportAsync)
	m.SetInstantiator(rec)
	for range 10 {
		register(t, m, 1, 1)
	}

	for range 4 {
		m.Iterate(pool)
	}
	s := m.Stats()
	assert.Equal(t, uint64(1), s.SkippedPasses)
	assert.Equal(t, uint64(3), s.OutstandingUnits)
	assert.Equal(t, uint64(4), s.Generation)
	assert.Len(t, rec.Instantiated(), 3)
	assert.Equal(t, 4, rec.Latches())

	close(gate)
	require.Eventually(t, func() bool {
		return m.Stats().OutstandingUnits == 0
	}, 5*time.Second, time.Millisecond)

	m.Iterate(pool)
	assert.Len(t, rec.Instantiated(), 4)
	assert.Equal(t, uint64(5), m.Generation())
}

func TestIterate_Metrics(t *testing.T) {
	mc := &assetstream.BasicMetricsCollector{}
	m := newManager(t,
		assetstream.WithBudget(10),
		assetstream.WithBudgetPerIteration(10),
		assetstream.WithMetricsCollector(mc),
	)
	rec := testutil.NewRecorder()
	m.SetInstantiator(rec)
	register(t, m, 4, 1)
	register(t, m, 4, 1)

	m.Iterate(nil)
	m.Iterate(nil)
	id := register(t, m, 4, 0)
	require.True(t, m.IterateBlocking(nil, id))

	stats := mc.GetStats()
	assert.Equal(t, int64(2), stats.PassCount)
	assert.Equal(t, int64(2), stats.Activated)
	assert.Equal(t, int64(1), stats.BlockingCount)
	assert.Equal(t, int64(1), stats.BlockingAdmitted)
	assert.Equal(t, uint64(8), stats.TotalConsumed)
	assert.Equal(t, uint64(10), stats.Budget)
}

func TestIterate_ConcurrentReporters(t *testing.T) {
	pool := taskgroup.NewPool(4, nil)
	t.Cleanup(pool.Close)

	m := newManager(t, assetstream.WithBudget(2000), assetstream.WithBudgetPerIteration(300))
	rec := testutil.NewRecorder()
	rec.SetMode(testutil.ReportAsync)
	m.SetInstantiator(rec)

	const n = 128
	rng := testutil.NewRNG(7)
	for range n {
		register(t, m, int(rng.Uint64n(1, 64)), 1)
	}

	stop := make(chan struct{})
	var wg sync.WaitGroup
	for w := range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r := testutil.NewRNG(int64(w))
			for {
				select {
				case <-stop:
					return
				default:
				}
				id := assetstream.AssetID(r.Zipf(n, 1.1))
				m.MarkUsed(id)
				_ = m.TotalConsumed()
			}
		}()
	}

	for i := range 200 {
		m.Iterate(pool)
		if i%25 == 0 {
			m.IterateBlocking(pool, assetstream.AssetID(rng.Intn(n)))
		}
	}
	close(stop)
	wg.Wait()

	m.SetInstantiator(nil)
	assert.Equal(t, uint64(0), m.TotalConsumed())
	assert.Zero(t, m.Stats().OutstandingUnits)
}
