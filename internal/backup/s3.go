package backup

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/oggyb/matchbot/internal/config"
)

// Uploader ships a finished snapshot file somewhere off the host.
type Uploader interface {
	Upload(ctx context.Context, path string) error
}

// S3Uploader copies snapshots into an S3-compatible bucket.
type S3Uploader struct {
	client *minio.Client
	bucket string

	ensureOnce sync.Once
	ensureErr  error
}

// NewS3Uploader builds an uploader from the S3_* settings.
func NewS3Uploader(cfg *config.Config) (*S3Uploader, error) {
	if cfg.Backup.S3Endpoint == "" {
		return nil, fmt.Errorf("s3 endpoint is required")
	}
	if strings.TrimSpace(cfg.Backup.S3Bucket) == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	client, err := minio.New(cfg.Backup.S3Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Backup.S3AccessKey, cfg.Backup.S3SecretKey, ""),
		Secure: cfg.Backup.S3UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create s3 client: %w", err)
	}

	return &S3Uploader{client: client, bucket: strings.TrimSpace(cfg.Backup.S3Bucket)}, nil
}

func (u *S3Uploader) ensureBucket(ctx context.Context) error {
	u.ensureOnce.Do(func() {
		exists, err := u.client.BucketExists(ctx, u.bucket)
		if err != nil {
			u.ensureErr = err
			return
		}
		if exists {
			return
		}
		u.ensureErr = u.client.MakeBucket(ctx, u.bucket, minio.MakeBucketOptions{})
	})

	if u.ensureErr != nil {
		return fmt.Errorf("ensure s3 bucket %q: %w", u.bucket, u.ensureErr)
	}
	return nil
}

// Upload stores the file under snapshots/<file name>.
func (u *S3Uploader) Upload(ctx context.Context, path string) error {
	if err := u.ensureBucket(ctx); err != nil {
		return err
	}

	key := "snapshots/" + filepath.Base(path)
	_, err := u.client.FPutObject(ctx, u.bucket, key, path, minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("put snapshot to s3: %w", err)
	}
	return nil
}
