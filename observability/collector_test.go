package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/assetstream"
	"github.com/hupe1980/assetstream/blobstore"
	assettest "github.com/hupe1980/assetstream/testutil"
)

func TestCollector_Record(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg, "")

	c.RecordIteration(0, 3, 1, false)
	c.RecordIteration(0, 0, 0, true)
	c.RecordBlocking(0, true)
	c.RecordBlocking(0, false)
	c.RecordConsumed(40, 100)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.passes.WithLabelValues("completed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.passes.WithLabelValues("skipped")))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.activated))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.evicted))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.blocking.WithLabelValues("admitted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.blocking.WithLabelValues("resident")))
	assert.Equal(t, 40.0, testutil.ToFloat64(c.consumed))
	assert.Equal(t, 100.0, testutil.ToFloat64(c.budget))
}

func TestCollector_Namespace(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg, "game")
	c.RecordConsumed(1, 2)

	n, err := testutil.GatherAndCount(reg, "game_assetstream_consumed_bytes", "game_assetstream_budget_bytes")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestCollector_WithManager(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg, "")

	mgr, err := assetstream.New(
		assetstream.WithBudget(100),
		assetstream.WithBudgetPerIteration(100),
		assetstream.WithMetricsCollector(c),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = mgr.Close() })
	mgr.SetInstantiator(assettest.NewRecorder())

	for range 3 {
		_, err := mgr.Register(blobstore.NewBytesBlob(make([]byte, 10)), assetstream.ClassMesh, 1)
		require.NoError(t, err)
	}
	mgr.Iterate(nil)
	mgr.Iterate(nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.passes.WithLabelValues("completed")))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.activated))
	assert.Equal(t, 30.0, testutil.ToFloat64(c.consumed))
}
