package storage

import (
	"context"
	"fmt"
	"os"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Object key prefixes. A key under UnprocessedKeyPrefix has not been picked
// up by ingestion yet; processed files live under BulkUploadsKeyPrefix keyed
// by task id. The prefix is the only signal of processing state.
const (
	UnprocessedKeyPrefix = "unprocessed"
	BulkUploadsKeyPrefix = "bulkUploads"
)

// ObjectStore is the narrow object storage surface the ingestion pipeline
// consumes: fetch a file by key and relocate it once processed.
type ObjectStore interface {
	DownloadToTemp(ctx context.Context, key string) (string, error)
	Move(ctx context.Context, sourceKey, destinationKey string) error
}

// Config holds object storage connection settings.
type Config struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	UseSSL          bool
}

// MinioStore implements ObjectStore against an S3-compatible endpoint.
type MinioStore struct {
	client *minio.Client
	bucket string
}

// NewMinioStore creates an object store client.
func NewMinioStore(cfg Config) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object store client: %w", err)
	}
	return &MinioStore{client: client, bucket: cfg.Bucket}, nil
}

// DownloadToTemp fetches the object at key into a temporary file and returns
// its path. The caller owns the file and must remove it.
func (s *MinioStore) DownloadToTemp(ctx context.Context, key string) (string, error) {
	tmp, err := os.CreateTemp("", "bulk-upload-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}
	path := tmp.Name()
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close temporary file: %w", err)
	}

	if err := s.client.FGetObject(ctx, s.bucket, key, path, minio.GetObjectOptions{}); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("failed to download object %q: %w", key, err)
	}
	return path, nil
}

// Move copies the object to destinationKey and deletes the source.
func (s *MinioStore) Move(ctx context.Context, sourceKey, destinationKey string) error {
	_, err := s.client.CopyObject(
		ctx,
		minio.CopyDestOptions{Bucket: s.bucket, Object: destinationKey},
		minio.CopySrcOptions{Bucket: s.bucket, Object: sourceKey},
	)
	if err != nil {
		return fmt.Errorf("failed to copy object %q to %q: %w", sourceKey, destinationKey, err)
	}
	if err := s.client.RemoveObject(ctx, s.bucket, sourceKey, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete object %q: %w", sourceKey, err)
	}
	return nil
}
