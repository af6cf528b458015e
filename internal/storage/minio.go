// Package storage holds the screenshot blob store backed by MinIO/S3.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/rivalscope/rivalscope/internal/config"
)

// MinIOClient wraps the MinIO client for screenshot storage
type MinIOClient struct {
	client        *minio.Client
	bucket        string
	publicBaseURL string
}

// NewMinIOClient creates a new MinIO client
func NewMinIOClient(cfg config.StorageConfig) (*MinIOClient, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("creating minio client: %w", err)
	}

	publicBase := cfg.PublicBaseURL
	if publicBase == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		publicBase = fmt.Sprintf("%s://%s/%s", scheme, cfg.Endpoint, cfg.Bucket)
	}

	return &MinIOClient{
		client:        client,
		bucket:        cfg.Bucket,
		publicBaseURL: strings.TrimSuffix(publicBase, "/"),
	}, nil
}

// EnsureBucket creates the bucket if it doesn't exist
func (m *MinIOClient) EnsureBucket(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return fmt.Errorf("checking bucket existence: %w", err)
	}
	if !exists {
		if err := m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("creating bucket: %w", err)
		}
	}
	return nil
}

// UploadScreenshot stores a page screenshot and returns its public URL.
// Keys follow screenshots/<competitor>/<page>/<version>.jpg so successive
// versions of a page sit together.
func (m *MinIOClient) UploadScreenshot(ctx context.Context, competitorID uuid.UUID, pageKey string, version int, data []byte) (string, error) {
	key := fmt.Sprintf("screenshots/%s/%s/%d.jpg", competitorID, pageKey, version)

	_, err := m.client.PutObject(ctx, m.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "image/jpeg",
	})
	if err != nil {
		return "", fmt.Errorf("uploading screenshot: %w", err)
	}

	return m.publicBaseURL + "/" + key, nil
}
