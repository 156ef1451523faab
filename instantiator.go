package assetstream

import (
	"github.com/hupe1980/assetstream/blobstore"
	"github.com/hupe1980/assetstream/taskgroup"
)

// Instantiator turns registered blobs into live resources.
//
// All methods except the CostReporter callbacks are invoked with the
// Manager's registry lock held; implementations must not call back into
// Register, SetResidencyPriority, Iterate or IterateBlocking synchronously.
type Instantiator interface {
	// EstimateCost predicts the cost of instantiating id. The estimate is
	// charged against the budget until the real cost is reported.
	EstimateCost(id AssetID, h blobstore.Blob) uint64

	// Instantiate starts loading id. Work may run inline or be enqueued on g;
	// g is nil when the caller passed no pool. The real cost is reported
	// through r.UpdateCost once known.
	Instantiate(r CostReporter, g *taskgroup.Group, id AssetID, h blobstore.Blob)

	// Release drops whatever Instantiate produced for id.
	Release(id AssetID)

	// SetIDBound announces that ids are in [0, bound).
	SetIDBound(bound uint32)

	// SetAssetClass announces the class of id.
	SetAssetClass(id AssetID, class AssetClass)

	// Latch is called once at the end of every pass, skipped or not.
	Latch()
}

// CostReporter receives cost and usage reports. Both methods are safe to
// call from any goroutine, including from inside Instantiate.
type CostReporter interface {
	UpdateCost(id AssetID, cost uint64)
	MarkUsed(id AssetID)
}

// NopAssetClass can be embedded by instantiators that ignore asset classes.
type NopAssetClass struct{}

func (NopAssetClass) SetAssetClass(AssetID, AssetClass) {}
