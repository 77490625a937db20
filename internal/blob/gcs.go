package blob

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
)

type GCSStore struct {
	client     *storage.Client
	bucketName string
}

func NewGCSStore(bucketName string) (*GCSStore, error) {
	ctx := context.Background()
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}
	return &GCSStore{
		client:     client,
		bucketName: bucketName,
	}, nil
}

func (s *GCSStore) Close() error {
	return s.client.Close()
}

func (s *GCSStore) Download(ctx context.Context, objectPath string) ([]byte, string, error) {
	obj := s.client.Bucket(s.bucketName).Object(objectPath)

	attrs, err := obj.Attrs(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("failed to stat object %s: %w", objectPath, err)
	}

	reader, err := obj.NewReader(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open object %s: %w", objectPath, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read object %s: %w", objectPath, err)
	}
	return data, attrs.ContentType, nil
}

// SignedUploadURL returns a short-lived PUT URL plus the object path the
// client must upload to.
func (s *GCSStore) SignedUploadURL(fileName, contentType string, expiry time.Duration) (string, string, error) {
	objectPath := uuid.New().String() + path.Ext(fileName)

	url, err := s.client.Bucket(s.bucketName).SignedURL(objectPath, &storage.SignedURLOptions{
		Expires:     time.Now().Add(expiry),
		Method:      "PUT",
		ContentType: contentType,
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to generate signed URL: %w", err)
	}
	return url, objectPath, nil
}

// SignedDownloadURL returns a short-lived GET URL for an uploaded object.
func (s *GCSStore) SignedDownloadURL(objectPath string, expiry time.Duration) (string, error) {
	url, err := s.client.Bucket(s.bucketName).SignedURL(objectPath, &storage.SignedURLOptions{
		Expires: time.Now().Add(expiry),
		Method:  "GET",
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate signed URL: %w", err)
	}
	return url, nil
}
