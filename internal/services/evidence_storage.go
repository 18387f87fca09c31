package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
)

// MinIOStorage range les pièces justificatives dans un bucket MinIO
type MinIOStorage struct {
	client *minio.Client
	bucket string
}

func NewMinIOStorage(client *minio.Client, bucket string) *MinIOStorage {
	return &MinIOStorage{client: client, bucket: bucket}
}

// EnsureBucket crée le bucket au démarrage s'il n'existe pas
func (s *MinIOStorage) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return err
	}
	log.Printf("✅ Bucket MinIO %s créé", s.bucket)
	return nil
}

func (s *MinIOStorage) Put(ctx context.Context, path string, r io.Reader, size int64, contentType string) error {
	if s.client == nil {
		return fmt.Errorf("MinIO non initialisé")
	}
	_, err := s.client.PutObject(ctx, s.bucket, path, r, size,
		minio.PutObjectOptions{ContentType: contentType})
	return err
}

func (s *MinIOStorage) Remove(ctx context.Context, path string) error {
	if s.client == nil {
		return fmt.Errorf("MinIO non initialisé")
	}
	return s.client.RemoveObject(ctx, s.bucket, path, minio.RemoveObjectOptions{})
}

// PresignedURL : lien de téléchargement temporaire
func (s *MinIOStorage) PresignedURL(ctx context.Context, path string, expiry time.Duration) (string, error) {
	if s.client == nil {
		return "", fmt.Errorf("MinIO non initialisé")
	}
	presigned, err := s.client.PresignedGetObject(ctx, s.bucket, path, expiry, make(url.Values))
	if err != nil {
		return "", err
	}
	return presigned.String(), nil
}
