package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/soundofguitara/parma/config"
)

// Archive keeps a copy of every generated report in an S3-compatible bucket.
// A nil *Archive is valid and stores nothing.
type Archive struct {
	client *minio.Client
	bucket string
	logger *zap.Logger
}

// NewArchive returns nil when storage is disabled.
func NewArchive(cfg *config.StorageConfig, logger *zap.Logger) (*Archive, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.Bucket, err)
		}
		logger.Info("report bucket created", zap.String("bucket", cfg.Bucket))
	}

	return &Archive{client: client, bucket: cfg.Bucket, logger: logger}, nil
}

// ObjectName places a report file under a dated prefix, e.g.
// 2026/10/19/rapport_batches_2026-10-01_2026-10-19.xlsx.
func ObjectName(generatedAt time.Time, filename string) string {
	return path.Join(generatedAt.Format("2006/01/02"), filename)
}

// Put uploads body and returns the object name.
func (a *Archive) Put(ctx context.Context, objectName string, body []byte, contentType string) (string, error) {
	if a == nil || a.client == nil {
		return "", nil
	}

	_, err := a.client.PutObject(ctx, a.bucket, objectName, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", objectName, err)
	}

	a.logger.Info("report archived",
		zap.String("bucket", a.bucket),
		zap.String("object", objectName),
		zap.Int("size", len(body)),
	)
	return objectName, nil
}
