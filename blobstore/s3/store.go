package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/hupe1980/assetstream/blobstore"
)

// Client is the subset of the S3 API used by Store.
// *s3.Client satisfies it.
type Client interface {
	manager.UploadAPIClient
	s3.ListObjectsV2APIClient

	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

var _ Client = (*s3.Client)(nil)

// UploadConfig tunes multipart uploads issued by Put.
type UploadConfig struct {
	// PartSize is the minimum part size for multipart uploads.
	PartSize int64
	// Concurrency is the number of parts uploaded in parallel.
	Concurrency int
}

// DefaultUploadConfig returns the upload settings used by NewStore.
func DefaultUploadConfig() UploadConfig {
	return UploadConfig{
		PartSize:    8 * 1024 * 1024,
		Concurrency: 5,
	}
}

// Store implements blobstore.BlobStore for S3.
type Store struct {
	client   Client
	bucket   string
	prefix   string
	uploader *manager.Uploader
}

// NewStore creates a new S3 blob store.
// rootPrefix is prepended to all keys (e.g. "assets/").
func NewStore(client Client, bucket, rootPrefix string) *Store {
	return NewStoreWithUploadConfig(client, bucket, rootPrefix, DefaultUploadConfig())
}

// NewStoreWithUploadConfig is NewStore with explicit upload settings.
func NewStoreWithUploadConfig(client Client, bucket, rootPrefix string, cfg UploadConfig) *Store {
	return &Store{
		client: client,
		bucket: bucket,
		prefix: rootPrefix,
		uploader: manager.NewUploader(client, func(u *manager.Uploader) {
			if cfg.PartSize > 0 {
				u.PartSize = cfg.PartSize
			}
			if cfg.Concurrency > 0 {
				u.Concurrency = cfg.Concurrency
			}
		}),
	}
}

// NewFromConfig loads the default AWS configuration (environment, shared
// config files, instance roles) and returns a Store for bucket.
func NewFromConfig(ctx context.Context, bucket, rootPrefix string, optFns ...func(*config.LoadOptions) error) (*Store, error) {
	cfg, err := config.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return nil, fmt.Errorf("s3: load aws config: %w", err)
	}
	return NewStore(s3.NewFromConfig(cfg), bucket, rootPrefix), nil
}

func (s *Store) key(name string) string {
	return path.Join(s.prefix, name)
}

// Open verifies that the object exists and returns a lazily read Blob.
func (s *Store) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	key := s.key(name)

	head, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, blobstore.ErrNotFound
		}
		return nil, err
	}

	return &s3Blob{
		client: s.client,
		bucket: s.bucket,
		key:    key,
		size:   aws.ToInt64(head.ContentLength),
	}, nil
}

// Put uploads data, switching to multipart for large payloads.
func (s *Store) Put(ctx context.Context, name string, data []byte) error {
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
		Body:   bytes.NewReader(data),
	})
	return err
}

// Delete removes an object. Missing objects are ignored.
func (s *Store) Delete(ctx context.Context, name string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil && isNotFound(err) {
		return nil
	}
	return err
}

// List returns the sorted names below prefix, relative to the store root.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.key(prefix)),
	})

	var keys []string
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, obj := range page.Contents {
			rel := strings.TrimPrefix(aws.ToString(obj.Key), s.prefix)
			rel = strings.TrimPrefix(rel, "/")
			if rel != "" {
				keys = append(keys, rel)
			}
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func isNotFound(err error) bool {
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	var nsk *types.NoSuchKey
	return errors.As(err, &nsk)
}

// s3Blob reads an object through ranged GETs.
type s3Blob struct {
	client Client
	bucket string
	key    string
	size   int64
}

func (b *s3Blob) Close() error { return nil }

func (b *s3Blob) Size() int64 { return b.size }

func (b *s3Blob) get(ctx context.Context, off, end int64) (io.ReadCloser, error) {
	resp, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.key),
		Range:  aws.String(fmt.Sprintf("bytes=%d-%d", off, end)),
	})
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

func (b *s3Blob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if off < 0 || off >= b.size {
		return 0, io.EOF
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	end := min(off+int64(len(p)), b.size) - 1
	body, err := b.get(ctx, off, end)
	if err != nil {
		return 0, err
	}
	defer func() { _ = body.Close() }()

	want := int(end - off + 1)
	n, err := io.ReadFull(body, p[:want])
	if err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return n, io.EOF
		}
		return n, err
	}
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (b *s3Blob) ReadRange(ctx context.Context, off, length int64) (io.ReadCloser, error) {
	if off < 0 || off >= b.size {
		return nil, io.EOF
	}
	end := min(off+length, b.size) - 1
	return b.get(ctx, off, end)
}
