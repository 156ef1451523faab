package assetstream

import "math"

// AssetID is a dense handle into the Manager's registry.
// Ids are assigned in registration order starting at 0 and are never reused.
type AssetID uint32

// InvalidAssetID is returned when registration fails.
const InvalidAssetID = ^AssetID(0)

// Valid reports whether id is not the invalid sentinel.
// It says nothing about whether the id was registered.
func (id AssetID) Valid() bool { return id != InvalidAssetID }

// Priority ranks assets for residency; higher is more important.
type Priority int32

const (
	// PriorityNone marks an asset as not proactively required.
	// Any priority <= PriorityNone is never activated by Iterate and is
	// evicted first once the budget is under pressure.
	PriorityNone Priority = 0

	// PriorityDefault is the priority most assets register with.
	PriorityDefault Priority = 1

	// PersistentPriority pins an asset: it is admitted even over budget and
	// never proactively evicted.
	PersistentPriority Priority = math.MaxInt32
)

// AssetClass tells an Instantiator what kind of placeholder to substitute
// when an asset's content is missing or fails to decode.
type AssetClass uint8

const (
	ClassImageZeroable AssetClass = iota
	ClassImageColor
	ClassImageNormal
	ClassImageMetallicRoughness
	ClassImageGeneric
	ClassMesh
)

func (c AssetClass) String() string {
	switch c {
	case ClassImageZeroable:
		return "image-zeroable"
	case ClassImageColor:
		return "image-color"
	case ClassImageNormal:
		return "image-normal"
	case ClassImageMetallicRoughness:
		return "image-metallic-roughness"
	case ClassImageGeneric:
		return "image-generic"
	case ClassMesh:
		return "mesh"
	default:
		return "unknown"
	}
}
