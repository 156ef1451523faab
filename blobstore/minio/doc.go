// Package minio serves streamed assets from MinIO or any other S3-compatible
// object store (Ceph, Garage, SeaweedFS) through the MinIO client.
//
// Opening a blob issues a single StatObject; reads are ranged GETs, so
// registering thousands of assets never downloads their content.
//
//	store, err := minio.Dial("localhost:9000", "minioadmin", "minioadmin", false, "assets", "v1/")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	id, err := mgr.RegisterPath(ctx, store, "meshes/hull.ast", assetstream.ClassMesh, 1)
//
// Use NewStore to supply a preconfigured *minio.Client instead.
package minio
