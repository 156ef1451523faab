// Package blobstore provides the byte-range handles that back registered assets.
//
// A BlobStore opens named blobs; a Blob is a read-only, random-access handle
// with a known size. The residency Manager owns one Blob per asset and hands
// it to the Instantiator when the asset should be loaded.
//
// # Built-in Implementations
//
//   - LocalStore: local filesystem, memory-mapped reads
//   - MemoryStore: in-memory, for tests and generated content
//   - s3.Store: Amazon S3 with ranged GETs
//   - minio.Store: MinIO and S3-compatible storage
//
// # Pack files
//
// Many small assets are usually shipped inside one pack file. A Pack hands
// out Slice handles that address a byte range of the shared blob and keeps
// the blob open until the pack and every slice are closed:
//
//	blob, _ := store.Open(ctx, "textures.pak")
//	pack := blobstore.NewPack(blob)
//	defer pack.Close()
//
//	albedo, _ := pack.Slice(0, 4096)
//	id, _ := manager.Register(albedo, assetstream.ClassImageColor, 1)
package blobstore
