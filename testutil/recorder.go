package testutil

import (
	"sync"

	"github.com/hupe1980/assetstream"
	"github.com/hupe1980/assetstream/blobstore"
	"github.com/hupe1980/assetstream/taskgroup"
)

// ReportMode controls how a Recorder reports real costs.
type ReportMode int

const (
	// ReportInline calls UpdateCost from inside Instantiate.
	ReportInline ReportMode = iota
	// ReportAsync enqueues the UpdateCost call on the pass's group.
	ReportAsync
	// ReportNever leaves the estimate pending forever.
	ReportNever
)

// Recorder is an assetstream.Instantiator that records every call.
// Costs default to the blob size unless overridden with SetCost.
type Recorder struct {
	mu           sync.Mutex
	mode         ReportMode
	costs        map[assetstream.AssetID]uint64
	instantiated []assetstream.AssetID
	released     []assetstream.AssetID
	classes      map[assetstream.AssetID][]assetstream.AssetClass
	bounds       []uint32
	latches      int
}

var _ assetstream.Instantiator = (*Recorder)(nil)

// NewRecorder returns a Recorder that reports costs inline.
func NewRecorder() *Recorder {
	return &Recorder{
		costs:   make(map[assetstream.AssetID]uint64),
		classes: make(map[assetstream.AssetID][]assetstream.AssetClass),
	}
}

// SetMode changes how later instantiations report cost.
func (r *Recorder) SetMode(mode ReportMode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mode = mode
}

// SetCost overrides the estimated and reported cost of id.
func (r *Recorder) SetCost(id assetstream.AssetID, cost uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.costs[id] = cost
}

func (r *Recorder) cost(id assetstream.AssetID, h blobstore.Blob) uint64 {
	if c, ok := r.costs[id]; ok {
		return c
	}
	if h == nil {
		return 0
	}
	return uint64(h.Size())
}

// EstimateCost implements assetstream.Instantiator.
func (r *Recorder) EstimateCost(id assetstream.AssetID, h blobstore.Blob) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cost(id, h)
}

// Instantiate implements assetstream.Instantiator.
func (r *Recorder) Instantiate(rep assetstream.CostReporter, g *taskgroup.Group, id assetstream.AssetID, h blobstore.Blob) {
	r.mu.Lock()
	r.instantiated = append(r.instantiated, id)
	cost := r.cost(id, h)
	mode := r.mode
	r.mu.Unlock()

	switch mode {
	case ReportInline:
		rep.UpdateCost(id, cost)
	case ReportAsync:
		_ = g.Enqueue(func() { rep.UpdateCost(id, cost) })
	}
}

// Release implements assetstream.Instantiator.
func (r *Recorder) Release(id assetstream.AssetID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.released = append(r.released, id)
}

// SetIDBound implements assetstream.Instantiator.
func (r *Recorder) SetIDBound(bound uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bounds = append(r.bounds, bound)
}

// SetAssetClass implements assetstream.Instantiator.
func (r *Recorder) SetAssetClass(id assetstream.AssetID, class assetstream.AssetClass) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.classes[id] = append(r.classes[id], class)
}

// Latch implements assetstream.Instantiator.
func (r *Recorder) Latch() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.latches++
}

// Instantiated returns the ids passed to Instantiate, in call order.
func (r *Recorder) Instantiated() []assetstream.AssetID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]assetstream.AssetID(nil), r.instantiated...)
}

// Released returns the ids passed to Release, in call order.
func (r *Recorder) Released() []assetstream.AssetID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]assetstream.AssetID(nil), r.released...)
}

// Bounds returns every value passed to SetIDBound.
func (r *Recorder) Bounds() []uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]uint32(nil), r.bounds...)
}

// Classes returns every class reported per id.
func (r *Recorder) Classes() map[assetstream.AssetID][]assetstream.AssetClass {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[assetstream.AssetID][]assetstream.AssetClass, len(r.classes))
	for id, c := range r.classes {
		out[id] = append([]assetstream.AssetClass(nil), c...)
	}
	return out
}

// Latches returns how many times Latch was called.
func (r *Recorder) Latches() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.latches
}

// Reset forgets all recorded calls. Cost overrides and mode are kept.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.instantiated = nil
	r.released = nil
	r.bounds = nil
	r.latches = 0
	clear(r.classes)
}
