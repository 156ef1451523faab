package assetstream_test

import (
	"sync"
	"testing"

	"github.com/hupe1980/assetstream"
	"github.com/hupe1980/assetstream/taskgroup"
	"github.com/hupe1980/assetstream/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIterateBlocking_Rejects(t *testing.T) {
	m := newManager(t)
	id := register(t, m, 10, 1)

	assert.False(t, m.IterateBlocking(nil, id), "no instantiator")

	m.SetInstantiator(testutil.NewRecorder())
	assert.False(t, m.IterateBlocking(nil, id+1))
	assert.False(t, m.IterateBlocking(nil, assetstream.InvalidAssetID))
}

func TestIterateBlocking_IgnoresBudget(t *testing.T) {
	m := newManager(t, assetstream.WithBudget(1))
	rec := testutil.NewRecorder()
	m.SetInstantiator(rec)

	id := register(t, m, 100, 0)
	require.True(t, m.IterateBlocking(nil, id))

	assert.Equal(t, uint64(100), m.TotalConsumed())
	assert.Equal(t, []assetstream.AssetID{id}, rec.Instantiated())
	assert.Equal(t, uint64(2), m.Generation())

	info, err := m.Asset(id)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), info.Pending)
	assert.Equal(t, uint64(1), info.LastUsed)

	// Already pending: nothing new is issued.
	require.True(t, m.IterateBlocking(nil, id))
	assert.Len(t, rec.Instantiated(), 1)
}

func TestIterateBlocking_DefersGeneration(t *testing.T) {
	pool := taskgroup.NewPool(2, nil)
	t.Cleanup(pool.Close)

	m := newManager(t, assetstream.WithBudget(1000))
	rec := testutil.NewRecorder()
	rec.SetMode(testutil.ReportAsync)
	m.SetInstantiator(rec)

	a := register(t, m, 10, 0)
	b := register(t, m, 10, 0)
	require.True(t, m.IterateBlocking(pool, a))
	require.True(t, m.IterateBlocking(pool, b))
	assert.Equal(t, uint64(3), m.Generation())

	m.SetInstantiator(rec)
	assert.Zero(t, m.Stats().OutstandingUnits)

	m.Iterate(pool)
	assert.Equal(t, uint64(4), m.Generation())
}

func TestIterateBlocking_ConcurrentWithIterateAndReporters(t *testing.T) {
	const (
		assets = 64
		passes = 20
		cost   = 10
	)

	m := newManager(t)
	rec := testutil.NewRecorder()
	m.SetInstantiator(rec)

	ids := make([]assetstream.AssetID, assets)
	for i := range ids {
		ids[i] = register(t, m, cost, assetstream.PriorityNone)
	}

	var wg sync.WaitGroup
	for w := range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := w; i < assets; i += 4 {
				assert.True(t, m.IterateBlocking(nil, ids[i]))
			}
		}()
	}
	wg.Add(2)
	go func() {
		defer wg.Done()
		for range passes {
			m.Iterate(nil)
		}
	}()
	go func() {
		defer wg.Done()
		for _, id := range ids {
			m.UpdateCost(id, cost)
			m.MarkUsed(id)
		}
	}()
	wg.Wait()

	// One more pass folds the last reports in.
	m.Iterate(nil)

	blocking := uint64(len(rec.Instantiated()))
	assert.LessOrEqual(t, blocking, uint64(assets))
	assert.Equal(t, 1+passes+1+blocking, m.Generation())
	assert.Equal(t, uint64(assets*cost), m.TotalConsumed())

	all, consumed := charged(t, m)
	assert.Equal(t, m.TotalConsumed(), all)
	assert.Equal(t, all, consumed)
	assert.Zero(t, m.Stats().SkippedPasses)
}
