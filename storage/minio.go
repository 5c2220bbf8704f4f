package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rpupo63/portfolio-site-backend/config"
	"github.com/rs/zerolog/log"
)

// MinIOStore keeps blobs in a MinIO bucket
type MinIOStore struct {
	client  *minio.Client
	bucket  string
	baseURL string
}

// NewMinIOStore connects with MINIO_ENDPOINT, MINIO_ACCESS_KEY, MINIO_SECRET_KEY
// and creates MINIO_BUCKET when it does not exist yet.
func NewMinIOStore(ctx context.Context, c config.Config) (*MinIOStore, error) {
	endpoint, err := requireSetting(c, "MINIO_ENDPOINT")
	if err != nil {
		return nil, err
	}
	bucket := config.GetString(c, "MINIO_BUCKET", "portfolio")
	useSSL := config.GetBool(c, "MINIO_USE_SSL", false)

	client, err := minio.New(endpoint, &minio.Options{
		Creds: credentials.NewStaticV4(
			config.GetString(c, "MINIO_ACCESS_KEY", ""),
			config.GetString(c, "MINIO_SECRET_KEY", ""),
			"",
		),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("check minio bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create minio bucket: %w", err)
		}
		log.Info().Str("bucket", bucket).Msg("Created MinIO bucket")
	}

	baseURL := config.GetString(c, "MINIO_PUBLIC_BASE_URL", "")
	if baseURL == "" {
		scheme := "http"
		if useSSL {
			scheme = "https"
		}
		baseURL = fmt.Sprintf("%s://%s/%s", scheme, client.EndpointURL().Host, bucket)
	}

	return &MinIOStore{client: client, bucket: bucket, baseURL: baseURL}, nil
}

func (s *MinIOStore) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucket, key, body, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("put minio object %s: %w", key, err)
	}
	return publicURL(s.baseURL, key), nil
}

func (s *MinIOStore) Delete(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("delete minio object %s: %w", key, err)
	}
	return nil
}
