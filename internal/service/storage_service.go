package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"exam_bank_backend/internal/config"
	"exam_bank_backend/pkg/logger"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// StorageProvider abstracts where archived artifacts live.
type StorageProvider interface {
	Upload(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, objectName string) error
	GetURL(objectName string) string
}

// StorageService wraps the configured provider.
type StorageService struct {
	provider StorageProvider
}

// NewStorageService builds the provider named by cfg.Storage.Type. An
// unknown or empty type falls back to local disk.
func NewStorageService(cfg *config.Config) (*StorageService, error) {
	switch strings.ToLower(cfg.Storage.Type) {
	case "minio":
		provider, err := newMinioStorageProvider(cfg)
		if err != nil {
			return nil, err
		}
		return &StorageService{provider: provider}, nil
	default:
		provider, err := newLocalStorageProvider(cfg)
		if err != nil {
			return nil, err
		}
		return &StorageService{provider: provider}, nil
	}
}

func (s *StorageService) Upload(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (string, error) {
	return s.provider.Upload(ctx, objectName, reader, size, contentType)
}

func (s *StorageService) Delete(ctx context.Context, objectName string) error {
	return s.provider.Delete(ctx, objectName)
}

func (s *StorageService) GetURL(objectName string) string {
	return s.provider.GetURL(objectName)
}

// LocalStorageProvider writes objects under a base directory on disk.
type LocalStorageProvider struct {
	basePath string
}

func newLocalStorageProvider(cfg *config.Config) (*LocalStorageProvider, error) {
	basePath := cfg.Storage.LocalPath
	if basePath == "" {
		basePath = "storage"
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStorageProvider{basePath: basePath}, nil
}

func (p *LocalStorageProvider) Upload(_ context.Context, objectName string, reader io.Reader, _ int64, _ string) (string, error) {
	fullPath := filepath.Join(p.basePath, filepath.FromSlash(objectName))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", err
	}

	f, err := os.Create(fullPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := io.Copy(f, reader); err != nil {
		return "", err
	}
	return fullPath, nil
}

func (p *LocalStorageProvider) Delete(_ context.Context, objectName string) error {
	return os.Remove(filepath.Join(p.basePath, filepath.FromSlash(objectName)))
}

func (p *LocalStorageProvider) GetURL(objectName string) string {
	return filepath.Join(p.basePath, filepath.FromSlash(objectName))
}

// MinioStorageProvider stores objects in a MinIO bucket.
type MinioStorageProvider struct {
	client   *minio.Client
	bucket   string
	endpoint string
}

func newMinioStorageProvider(cfg *config.Config) (*MinioStorageProvider, error) {
	client, err := minio.New(cfg.Storage.MinioEndpoint, &minio.Options{
		Creds: credentials.NewStaticV4(cfg.Storage.MinioAccessID, cfg.Storage.MinioSecret, ""),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	provider := &MinioStorageProvider{
		client:   client,
		bucket:   cfg.Storage.MinioBucket,
		endpoint: cfg.Storage.MinioEndpoint,
	}

	ctx := context.Background()
	exists, err := client.BucketExists(ctx, provider.bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, provider.bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
		logger.Log.Info("created storage bucket", zap.String("bucket", provider.bucket))
	}

	return provider, nil
}

func (p *MinioStorageProvider) Upload(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (string, error) {
	_, err := p.client.PutObject(ctx, p.bucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}
	return p.GetURL(objectName), nil
}

func (p *MinioStorageProvider) Delete(ctx context.Context, objectName string) error {
	return p.client.RemoveObject(ctx, p.bucket, objectName, minio.RemoveObjectOptions{})
}

func (p *MinioStorageProvider) GetURL(objectName string) string {
	return fmt.Sprintf("http://%s/%s/%s", p.endpoint, p.bucket, objectName)
}
