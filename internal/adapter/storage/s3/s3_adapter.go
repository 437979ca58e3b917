package s3

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/Abdurahmanit/GroupProject/village-market/internal/platform/logger"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

type S3Storage struct {
	client *minio.Client
	bucket string
	logger *logger.Logger
}

func NewS3Storage(ctx context.Context, endpoint, accessKey, secretKey, bucketName string, useSSL bool, log *logger.Logger) (*S3Storage, error) {
	log = log.Named("S3Storage")
	log.Info("Initializing S3 MinIO storage",
		zap.String("endpoint", endpoint),
		zap.String("bucket", bucketName),
		zap.Bool("use_ssl", useSSL),
	)

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client for endpoint %s: %w", endpoint, err)
	}

	exists, err := client.BucketExists(ctx, bucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", bucketName, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", bucketName, err)
		}
		log.Info("Bucket created", zap.String("bucket", bucketName))
	}

	return &S3Storage{client: client, bucket: bucketName, logger: log}, nil
}

func (s *S3Storage) Save(ctx context.Context, dir, originalName, contentType string, r io.Reader, size int64) (string, error) {
	objectKey := path.Join(strings.Trim(dir, "/"), uuid.New().String()+strings.ToLower(filepath.Ext(originalName)))

	info, err := s.client.PutObject(ctx, s.bucket, objectKey, r, size, minio.PutObjectOptions{
		ContentType:  contentType,
		UserMetadata: map[string]string{"original-filename": originalName},
	})
	if err != nil {
		s.logger.Error("PutObject failed", zap.String("key", objectKey), zap.Error(err))
		return "", fmt.Errorf("failed to upload object %s to bucket %s: %w", objectKey, s.bucket, err)
	}
	s.logger.Debug("Object uploaded",
		zap.String("key", info.Key),
		zap.String("etag", info.ETag),
		zap.Int64("size", info.Size),
	)
	return s.objectURL(objectKey), nil
}

func (s *S3Storage) Remove(ctx context.Context, stored string) error {
	key, ok := s.objectKey(stored)
	if !ok {
		return fmt.Errorf("url %q does not belong to bucket %s", stored, s.bucket)
	}
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		s.logger.Warn("RemoveObject failed", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("failed to remove object %s: %w", key, err)
	}
	return nil
}

func (s *S3Storage) objectURL(key string) string {
	return fmt.Sprintf("%s/%s/%s", s.client.EndpointURL().String(), s.bucket, key)
}

func (s *S3Storage) objectKey(url string) (string, bool) {
	prefix := fmt.Sprintf("%s/%s/", s.client.EndpointURL().String(), s.bucket)
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	return strings.TrimPrefix(url, prefix), true
}
