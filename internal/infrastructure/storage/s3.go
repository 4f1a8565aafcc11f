// Package storage provides S3-backed object storage for recipe images.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"go.uber.org/zap"

	"github.com/handsapp/backend/internal/infrastructure/config"
	"github.com/handsapp/backend/internal/ports/outbound"
)

// S3Storage implements outbound.StorageService against S3 or an
// S3-compatible endpoint such as MinIO.
type S3Storage struct {
	client *s3.S3
	bucket string
	logger *zap.Logger
}

// NewS3Storage creates an S3 storage service from configuration.
func NewS3Storage(cfg config.AWSConfig, logger *zap.Logger) (*S3Storage, error) {
	awsCfg := &aws.Config{
		Region: aws.String(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.AccessKeyID, cfg.SecretAccessKey, "")
	}
	if cfg.Endpoint != "" {
		// Custom endpoints need path-style addressing for MinIO and
		// localstack compatibility.
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
		awsCfg.S3ForcePathStyle = aws.Bool(true)
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create aws session: %w", err)
	}

	return &S3Storage{
		client: s3.New(sess),
		bucket: cfg.S3Bucket,
		logger: logger.Named("storage"),
	}, nil
}

// Upload stores an object and returns its key.
func (s *S3Storage) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload object %s: %w", key, err)
	}

	s.logger.Debug("Object uploaded",
		zap.String("bucket", s.bucket),
		zap.String("key", key),
		zap.Int("size", len(data)),
	)
	return key, nil
}

// Delete removes an object.
func (s *S3Storage) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object %s: %w", key, err)
	}
	return nil
}

// GeneratePresignedURL returns a time-limited URL for downloading an object.
func (s *S3Storage) GeneratePresignedURL(_ context.Context, key string, expiry time.Duration) (string, error) {
	req, _ := s.client.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	url, err := req.Presign(expiry)
	if err != nil {
		return "", fmt.Errorf("failed to presign object %s: %w", key, err)
	}
	return url, nil
}

var _ outbound.StorageService = (*S3Storage)(nil)
