// Package loader provides a reference assetstream.Instantiator that decodes
// asset blobs into memory.
//
// Blobs use a small container: a 20 byte header (magic, codec, decoded size,
// CRC32C of the decoded bytes) followed by a raw, LZ4 block or zstd payload. Blobs without the header are
// loaded verbatim. Decoding runs on the pass's task group; results are staged
// and only become visible through Get after the controller calls Latch, so a
// frame never observes a half-published set.
//
// When a blob cannot be read or decoded, or the memory limit of the attached
// resource.Controller is reached, the loader publishes a small placeholder
// chosen by the asset's class instead.
//
//	ld := loader.New(loader.WithResourceController(rc))
//	mgr.SetInstantiator(ld)
//	...
//	if res, ok := ld.Get(id); ok {
//	    mgr.MarkUsed(id)
//	    upload(res.Data)
//	}
package loader
