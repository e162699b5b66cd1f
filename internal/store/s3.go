package store

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/ayush/portfolio-api/backend/internal/models"
)

// S3Store is the image store for AWS S3 or any S3-compatible endpoint.
type S3Store struct {
	client     *s3.Client
	bucket     string
	publicBase string
}

// NewS3Store builds a client from the default AWS config chain. Static keys
// and a custom endpoint override it when set.
func NewS3Store(ctx context.Context, region, endpoint, accessKey, secretKey, bucket, publicBase string) (*S3Store, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if accessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})
	if publicBase == "" && endpoint != "" {
		publicBase = endpoint
	}
	return &S3Store{client: client, bucket: bucket, publicBase: publicBase}, nil
}

func (s *S3Store) Upload(ctx context.Context, folder string, data []byte, contentType string) (models.Image, error) {
	key := imageKey(folder, contentType)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return models.Image{}, fmt.Errorf("s3 put %s: %w", key, err)
	}
	return models.Image{PublicID: key, URL: imageURL(s.publicBase, s.bucket, key)}, nil
}

func (s *S3Store) Destroy(ctx context.Context, publicID string) error {
	if publicID == "" {
		return nil
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(publicID),
	})
	if err != nil {
		return fmt.Errorf("s3 delete %s: %w", publicID, err)
	}
	return nil
}
