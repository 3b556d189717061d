package s3

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/Abdurahmanit/GroupProject/classifieds-service/internal/config"
	"github.com/Abdurahmanit/GroupProject/classifieds-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/classifieds-service/internal/platform/logger"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// S3Storage keeps images in a MinIO (S3-compatible) bucket. The handle is the object key.
type S3Storage struct {
	client    *minio.Client
	bucket    string
	publicURL string
	logger    *logger.Logger
}

func NewS3Storage(ctx context.Context, cfg *config.MinIOConfig, log *logger.Logger) (*S3Storage, error) {
	log = log.Named("s3_storage")
	log.Info("Initializing S3 MinIO storage",
		zap.String("endpoint", cfg.Endpoint), zap.String("bucket", cfg.Bucket), zap.Bool("use_ssl", cfg.UseSSL))

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client for endpoint %s: %w", cfg.Endpoint, err)
	}

	if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
		exists, errExists := client.BucketExists(ctx, cfg.Bucket)
		if errExists != nil || !exists {
			return nil, fmt.Errorf("failed to make/verify bucket %s: (make: %v / exists_check: %v)", cfg.Bucket, err, errExists)
		}
		log.Info("Bucket already exists", zap.String("bucket", cfg.Bucket))
	}

	publicURL := strings.TrimRight(cfg.PublicURL, "/")
	if publicURL == "" {
		publicURL = fmt.Sprintf("%s/%s", client.EndpointURL().String(), cfg.Bucket)
	}

	return &S3Storage{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: publicURL,
		logger:    log,
	}, nil
}

func (s *S3Storage) Upload(ctx context.Context, upload domain.Upload, constraints domain.UploadConstraints) (domain.Image, error) {
	ext, err := constraints.Extension(upload.FileName)
	if err != nil {
		return domain.Image{}, err
	}
	key := objectKey(constraints.Folder, ext)

	contentType := upload.ContentType
	if contentType == "" {
		contentType = http.DetectContentType(upload.Data)
	}

	info, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(upload.Data), int64(len(upload.Data)),
		minio.PutObjectOptions{
			ContentType:  contentType,
			UserMetadata: map[string]string{"original-filename": path.Base(upload.FileName)},
		})
	if err != nil {
		s.logger.Error("S3Storage.Upload: PutObject failed", zap.String("bucket", s.bucket), zap.String("key", key), zap.Error(err))
		return domain.Image{}, fmt.Errorf("failed to upload object %s to bucket %s: %w", key, s.bucket, err)
	}

	s.logger.Info("S3Storage.Upload: file uploaded",
		zap.String("key", info.Key), zap.String("etag", info.ETag), zap.Int64("size", info.Size))
	return domain.Image{URL: s.publicURL + "/" + key, Handle: key}, nil
}

// Delete treats a missing object as already deleted.
func (s *S3Storage) Delete(ctx context.Context, handle string) error {
	if handle == "" {
		return nil
	}
	err := s.client.RemoveObject(ctx, s.bucket, handle, minio.RemoveObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil
		}
		s.logger.Error("S3Storage.Delete: RemoveObject failed", zap.String("key", handle), zap.Error(err))
		return fmt.Errorf("failed to delete object %s from bucket %s: %w", handle, s.bucket, err)
	}
	s.logger.Info("S3Storage.Delete: object removed", zap.String("key", handle))
	return nil
}

func objectKey(folder, ext string) string {
	return path.Join(folder, uuid.NewString()+"."+ext)
}
