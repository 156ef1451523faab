package s3

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/mock"
)

type mockClient struct {
	mock.Mock
}

var _ Client = (*mockClient)(nil)

func out[T any](args mock.Arguments) (*T, error) {
	v, _ := args.Get(0).(*T)
	return v, args.Error(1)
}

func (m *mockClient) HeadObject(ctx context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	return out[s3.HeadObjectOutput](m.Called(ctx, in))
}

func (m *mockClient) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	return out[s3.GetObjectOutput](m.Called(ctx, in))
}

func (m *mockClient) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	return out[s3.PutObjectOutput](m.Called(ctx, in))
}

func (m *mockClient) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	return out[s3.DeleteObjectOutput](m.Called(ctx, in))
}

func (m *mockClient) ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	return out[s3.ListObjectsV2Output](m.Called(ctx, in))
}

func (m *mockClient) UploadPart(ctx context.Context, in *s3.UploadPartInput, _ ...func(*s3.Options)) (*s3.UploadPartOutput, error) {
	return out[s3.UploadPartOutput](m.Called(ctx, in))
}

func (m *mockClient) CreateMultipartUpload(ctx context.Context, in *s3.CreateMultipartUploadInput, _ ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error) {
	return out[s3.CreateMultipartUploadOutput](m.Called(ctx, in))
}

func (m *mockClient) CompleteMultipartUpload(ctx context.Context, in *s3.CompleteMultipartUploadInput, _ ...func(*s3.Options)) (*s3.CompleteMultipartUploadOutput, error) {
	return out[s3.CompleteMultipartUploadOutput](m.Called(ctx, in))
}

func (m *mockClient) AbortMultipartUpload(ctx context.Context, in *s3.AbortMultipartUploadInput, _ ...func(*s3.Options)) (*s3.AbortMultipartUploadOutput, error) {
	return out[s3.AbortMultipartUploadOutput](m.Called(ctx, in))
}
