// Package s3 provides an Amazon S3 implementation of blobstore.BlobStore.
//
// Assets are opened with a HeadObject call and read through ranged GetObject
// requests, so the asset manager can register remote blobs without fetching
// them up front.
//
// # Usage
//
//	store, err := s3.NewFromConfig(ctx, "my-bucket", "assets/")
//	if err != nil {
//	    return err
//	}
//	id, err := mgr.RegisterPath(ctx, store, "textures/rock.ast", assetstream.ClassImageColor, 1)
package s3
