// Package docstore uploads admission documents to S3-compatible storage and
// hands back the public URL stored on the record.
package docstore

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/ttifoundation/admission-backend/internal/config"
)

// DocumentStore accepts a binary blob plus a folder hint and returns a
// public URL, or fails. Implemented by Storage below; tests substitute a fake.
type DocumentStore interface {
	Upload(ctx context.Context, folder, filename, contentType string, r io.Reader, size int64) (string, error)
}

// Storage wraps MinIO/S3 interactions for admission documents.
type Storage struct {
	client        *minio.Client
	bucket        string
	baseFolder    string
	region        string
	publicBaseURL string
}

// New creates a MinIO-backed store from the Config.
func New(cfg *config.Config) (*Storage, error) {
	client, err := minio.New(cfg.S3Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		Secure: cfg.S3UseSSL,
		Region: cfg.S3Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio: %w", err)
	}

	publicBase := cfg.PublicBaseURL
	if publicBase == "" {
		scheme := "http"
		if cfg.S3UseSSL {
			scheme = "https"
		}
		publicBase = scheme + "://" + cfg.S3Endpoint
	}

	return &Storage{
		client:        client,
		bucket:        cfg.DocumentsBucket,
		baseFolder:    cfg.DocumentsFolder,
		region:        cfg.S3Region,
		publicBaseURL: strings.TrimRight(publicBase, "/"),
	}, nil
}

// EnsureBucket makes sure the documents bucket exists before serving.
func (s *Storage) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
			return fmt.Errorf("make bucket %s: %w", s.bucket, err)
		}
	}
	return nil
}

// Upload stores one document under baseFolder/folder/filename and returns
// its public URL.
func (s *Storage) Upload(ctx context.Context, folder, filename, contentType string, r io.Reader, size int64) (string, error) {
	key := s.baseFolder + "/" + folder + "/" + filename
	opts := minio.PutObjectOptions{ContentType: contentType}
	if _, err := s.client.PutObject(ctx, s.bucket, key, r, size, opts); err != nil {
		return "", fmt.Errorf("upload document %s: %w", key, err)
	}
	return s.publicBaseURL + "/" + s.bucket + "/" + escapeKey(key), nil
}

func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
