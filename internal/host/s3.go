package host

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/mittoalb/tomolog-cli/internal/config"
)

// presignExpiry must outlive the Slides fetch of the image.
const presignExpiry = time.Hour

// S3 hosts figures in an S3-compatible bucket, hosted by the facility
// or any cloud provider, and hands out presigned GET links.
type S3 struct {
	client *minio.Client
	bucket string
}

// NewS3 builds an S3 host from the cloud config section.
func NewS3(cfg config.CloudConfig) (*S3, error) {
	if cfg.S3Endpoint == "" || cfg.S3Bucket == "" {
		return nil, fmt.Errorf("s3 hosting needs s3_endpoint and s3_bucket in the cloud section")
	}

	client, err := minio.New(cfg.S3Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		Secure: cfg.S3Secure,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}
	return &S3{client: client, bucket: cfg.S3Bucket}, nil
}

// Upload puts the file under slides/ in the bucket and returns a
// presigned GET URL.
func (s *S3) Upload(ctx context.Context, localPath string) (string, error) {
	object := ObjectName(localPath)

	_, err := s.client.FPutObject(ctx, s.bucket, object, localPath, minio.PutObjectOptions{
		ContentType: "image/jpeg",
	})
	if err != nil {
		return "", fmt.Errorf("s3 upload of %s failed: %w", object, err)
	}

	u, err := s.client.PresignedGetObject(ctx, s.bucket, object, presignExpiry, nil)
	if err != nil {
		return "", fmt.Errorf("s3 presign of %s failed: %w", object, err)
	}
	return u.String(), nil
}

// ObjectName maps a local figure path to its bucket key.
func ObjectName(localPath string) string {
	return path.Join("slides", filepath.Base(localPath))
}
