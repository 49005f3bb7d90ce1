package storage

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Archiver persists accepted upload payloads to long-term storage. The
// validation pipeline never depends on it; archival happens only after an
// upload has been accepted.
type Archiver interface {
	// Archive stores the payload and returns its object key.
	Archive(ctx context.Context, noteID, filename, format string, payload []byte) (string, error)

	Delete(ctx context.Context, key string) error
}

// MinioArchiver stores payloads in an S3-compatible bucket.
type MinioArchiver struct {
	client *minio.Client
	bucket string
}

// MinioOptions configures the archival bucket connection.
type MinioOptions struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// NewMinioArchiver connects to the object store and ensures the bucket
// exists.
func NewMinioArchiver(ctx context.Context, opts MinioOptions) (*MinioArchiver, error) {
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object storage client: %w", err)
	}

	exists, err := client.BucketExists(ctx, opts.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, opts.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return &MinioArchiver{client: client, bucket: opts.Bucket}, nil
}

func (a *MinioArchiver) Archive(ctx context.Context, noteID, filename, format string, payload []byte) (string, error) {
	now := time.Now().UTC()
	key := fmt.Sprintf("notes/%04d/%02d/%s%s", now.Year(), now.Month(), noteID, filepath.Ext(filename))

	_, err := a.client.PutObject(ctx, a.bucket, key,
		bytes.NewReader(payload), int64(len(payload)),
		minio.PutObjectOptions{
			ContentType: "audio/" + format,
			UserMetadata: map[string]string{
				"note-id":       noteID,
				"original-name": filename,
				"archived-at":   now.Format(time.RFC3339),
			},
		})
	if err != nil {
		return "", fmt.Errorf("failed to archive payload: %w", err)
	}

	return key, nil
}

func (a *MinioArchiver) Delete(ctx context.Context, key string) error {
	if err := a.client.RemoveObject(ctx, a.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete archived payload: %w", err)
	}
	return nil
}

// NoopArchiver discards payloads. Used when no object store is configured;
// the pipeline's temp files remain the only copy and are removed after
// processing.
type NoopArchiver struct{}

func (NoopArchiver) Archive(ctx context.Context, noteID, filename, format string, payload []byte) (string, error) {
	return "", nil
}

func (NoopArchiver) Delete(ctx context.Context, key string) error { return nil }
