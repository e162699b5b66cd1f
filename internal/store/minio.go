package store

import (
	"bytes"
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/ayush/portfolio-api/backend/internal/models"
)

// MinioStore keeps project images and avatars in a MinIO bucket.
type MinioStore struct {
	client     *minio.Client
	bucket     string
	publicBase string
}

func NewMinioStore(ctx context.Context, endpoint, accessKey, secretKey, bucket, publicBase string, useSSL bool) (*MinioStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	// Ensure bucket exists
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("minio bucket check: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("minio make bucket: %w", err)
		}
	}

	return &MinioStore{client: client, bucket: bucket, publicBase: publicBase}, nil
}

// Upload stores data under a new key in folder and returns its reference.
func (s *MinioStore) Upload(ctx context.Context, folder string, data []byte, contentType string) (models.Image, error) {
	key := imageKey(folder, contentType)
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return models.Image{}, fmt.Errorf("minio put %s: %w", key, err)
	}
	return models.Image{PublicID: key, URL: imageURL(s.publicBase, s.bucket, key)}, nil
}

// Destroy deletes the object behind publicID. Missing objects are not an
// error.
func (s *MinioStore) Destroy(ctx context.Context, publicID string) error {
	if publicID == "" {
		return nil
	}
	if err := s.client.RemoveObject(ctx, s.bucket, publicID, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("minio remove %s: %w", publicID, err)
	}
	return nil
}
