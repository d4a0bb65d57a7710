package blob

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
)

// MinioStore keeps blobs as objects in a single MinIO bucket. Object keys play
// the role of physical paths.
type MinioStore struct {
	client *minio.Client
	bucket string
}

// NewMinioStore constructs a MinIO-backed blob store.
func NewMinioStore(client *minio.Client, bucket string) *MinioStore {
	return &MinioStore{client: client, bucket: bucket}
}

func (s *MinioStore) Save(ctx context.Context, name string, payload io.Reader) (string, error) {
	stored, err := sanitizeName(name)
	if err != nil {
		return "", err
	}

	if _, err := s.client.PutObject(ctx, s.bucket, stored, payload, -1, minio.PutObjectOptions{}); err != nil {
		return "", fmt.Errorf("store object %s: %w", stored, err)
	}
	return stored, nil
}

func (s *MinioStore) Open(ctx context.Context, physicalPath string) (io.ReadCloser, error) {
	// GetObject defers I/O until the first read, so probe existence up front.
	if _, err := s.client.StatObject(ctx, s.bucket, physicalPath, minio.StatObjectOptions{}); err != nil {
		if isNoSuchKey(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("stat object %s: %w", physicalPath, err)
	}

	obj, err := s.client.GetObject(ctx, s.bucket, physicalPath, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("fetch object %s: %w", physicalPath, err)
	}
	return obj, nil
}

func (s *MinioStore) Remove(ctx context.Context, physicalPath string) error {
	err := s.client.RemoveObject(ctx, s.bucket, physicalPath, minio.RemoveObjectOptions{})
	if err != nil && !isNoSuchKey(err) {
		return fmt.Errorf("remove object %s: %w", physicalPath, err)
	}
	return nil
}

func isNoSuchKey(err error) bool {
	var resp minio.ErrorResponse
	if errors.As(err, &resp) {
		return resp.Code == "NoSuchKey"
	}
	return false
}
