package loader

import "github.com/hupe1980/assetstream"

// Placeholder returns the substitute content for class: a single RGBA8
// texel for image classes and an empty buffer for meshes.
func Placeholder(class assetstream.AssetClass) []byte {
	switch class {
	case assetstream.ClassImageZeroable:
		return []byte{0, 0, 0, 0}
	case assetstream.ClassImageColor:
		return []byte{0xff, 0xff, 0xff, 0xff}
	case assetstream.ClassImageNormal:
		return []byte{0x80, 0x80, 0xff, 0xff}
	case assetstream.ClassImageMetallicRoughness:
		// glTF layout: roughness in G, metallic in B.
		return []byte{0, 0xff, 0, 0xff}
	case assetstream.ClassMesh:
		return []byte{}
	default:
		return []byte{0x80, 0x80, 0x80, 0xff}
	}
}
