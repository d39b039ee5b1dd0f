package imagestore

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/irislab/irisgo/internal/config"
)

// MinIO is the object-storage-backed alternate to Filesystem, grounded on
// iluha78-FD's storage.MinIOStore. Object keys follow the same
// "iris_images/<id>.png" convention as the filesystem layout.
type MinIO struct {
	client *minio.Client
	bucket string
}

func NewMinIO(cfg config.MinIO) (*MinIO, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("imagestore: create minio client: %w", err)
	}
	return &MinIO{client: client, bucket: cfg.Bucket}, nil
}

// EnsureBucket creates the configured bucket if it does not already exist.
func (m *MinIO) EnsureBucket(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return fmt.Errorf("imagestore: check bucket: %w", err)
	}
	if !exists {
		if err := m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("imagestore: create bucket: %w", err)
		}
	}
	return nil
}

func (m *MinIO) key(id string) string {
	return "iris_images/" + id + ".png"
}

func (m *MinIO) Put(ctx context.Context, id string, png []byte) (string, error) {
	key := m.key(id)
	_, err := m.client.PutObject(ctx, m.bucket, key, bytes.NewReader(png), int64(len(png)),
		minio.PutObjectOptions{ContentType: "image/png"})
	if err != nil {
		return "", fmt.Errorf("imagestore: put %s: %w", key, err)
	}
	return key, nil
}

func (m *MinIO) Get(ctx context.Context, id string) ([]byte, error) {
	key := m.key(id)
	obj, err := m.client.GetObject(ctx, m.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("imagestore: get %s: %w", key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("imagestore: read %s: %w", key, err)
	}
	return data, nil
}

func (m *MinIO) Delete(ctx context.Context, id string) error {
	if err := m.client.RemoveObject(ctx, m.bucket, m.key(id), minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("imagestore: delete %s: %w", m.key(id), err)
	}
	return nil
}
