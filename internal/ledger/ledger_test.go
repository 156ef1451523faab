package ledger

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCostLedger_DrainOrder(t *testing.T) {
	var l CostLedger
	l.Push(1, 10)
	l.Push(2, 20)
	l.Push(1, 30)
	require.Equal(t, 3, l.Len())

	var got []CostUpdate
	n := l.Drain(func(u CostUpdate) { got = append(got, u) })

	assert.Equal(t, 3, n)
	assert.Equal(t, []CostUpdate{{1, 10}, {2, 20}, {1, 30}}, got)
	assert.Equal(t, 0, l.Len())

	// A second drain sees nothing.
	n = l.Drain(func(CostUpdate) { t.Fatal("unexpected update") })
	assert.Zero(t, n)
}

func TestCostLedger_PushDuringDrainLandsInNextBatch(t *testing.T) {
	var l CostLedger
	l.Push(7, 1)

	l.Drain(func(u CostUpdate) {
		l.Push(u.ID, u.Cost+1)
	})

	var got []CostUpdate
	l.Drain(func(u CostUpdate) { got = append(got, u) })
	assert.Equal(t, []CostUpdate{{7, 2}}, got)
}

func TestCostLedger_ConcurrentProducers(t *testing.T) {
	var l CostLedger
	const producers, perProducer = 8, 500

	var wg sync.WaitGroup
	for p := range producers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range perProducer {
				l.Push(uint32(p), uint64(i))
			}
		}()
	}
	wg.Wait()

	last := make(map[uint32]uint64)
	total := l.Drain(func(u CostUpdate) {
		// Per-producer order is preserved.
		if prev, ok := last[u.ID]; ok {
			assert.Greater(t, u.Cost, prev)
		}
		last[u.ID] = u.Cost
	})
	assert.Equal(t, producers*perProducer, total)
}

func TestUsageLog_PushDrain(t *testing.T) {
	var l UsageLog
	assert.True(t, l.Empty())

	l.Push(3)
	l.Push(4)
	l.Push(3)
	assert.False(t, l.Empty())

	seen := make(map[uint32]int)
	n := l.Drain(func(id uint32) { seen[id]++ })

	assert.Equal(t, 3, n)
	assert.Equal(t, map[uint32]int{3: 2, 4: 1}, seen)
	assert.True(t, l.Empty())
}

func TestUsageLog_ConcurrentProducers(t *testing.T) {
	var l UsageLog
	const producers, perProducer = 16, 1000

	var wg sync.WaitGroup
	for p := range producers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range perProducer {
				l.Push(uint32(p))
			}
		}()
	}

	// Drain concurrently with producers; nothing may be lost.
	total := 0
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	for {
		select {
		case <-done:
			total += l.Drain(func(uint32) {})
			assert.Equal(t, producers*perProducer, total)
			return
		default:
			total += l.Drain(func(uint32) {})
		}
	}
}
