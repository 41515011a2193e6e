package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/ciplastic/support-tickets/internal/config"
	"github.com/ciplastic/support-tickets/pkg/util"
)

// MaxCapturaBytes is the upload size ceiling for screenshots.
const MaxCapturaBytes = 5 * 1024 * 1024

const capturaPrefix = "capturas"

// File describes an incoming attachment ahead of upload.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// Uploader stores screenshot blobs and hands back public URLs. Ping
// verifies the bucket is reachable so readiness probes can surface a broken
// store before an upload fails.
type Uploader interface {
	Upload(ctx context.Context, file File) (string, error)
	Ping(ctx context.Context) error
}

type minioUploader struct {
	client  *minio.Client
	bucket  string
	baseURL string
}

// NewUploader connects to the S3-compatible object store.
func NewUploader(cfg config.StorageConfig) (Uploader, error) {
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, util.NewConfigError("STORAGE_ACCESS_KEY/STORAGE_SECRET_KEY")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, err
	}

	baseURL := cfg.PublicBaseURL
	if baseURL == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		baseURL = fmt.Sprintf("%s://%s/%s", scheme, cfg.Endpoint, cfg.Bucket)
	}

	return &minioUploader{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

// Validate rejects non-image content types and oversized payloads. Pure; it
// performs no I/O.
func Validate(file File) error {
	if !strings.HasPrefix(file.ContentType, "image/") {
		return util.NewValidationError("el archivo debe ser una imagen", map[string]any{
			"content_type": file.ContentType,
		})
	}
	if file.Size > MaxCapturaBytes {
		return util.NewValidationError("la imagen no debe superar 5MB", map[string]any{
			"size_bytes": file.Size,
		})
	}
	return nil
}

func (u *minioUploader) Upload(ctx context.Context, file File) (string, error) {
	objectName := ObjectName(file.Name)
	_, err := u.client.PutObject(ctx, u.bucket, objectName, file.Reader, file.Size, minio.PutObjectOptions{
		ContentType: file.ContentType,
	})
	if err != nil {
		return "", util.NewUploadError(err)
	}
	return u.baseURL + "/" + objectName, nil
}

func (u *minioUploader) Ping(ctx context.Context) error {
	found, err := u.client.BucketExists(ctx, u.bucket)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("bucket %s does not exist", u.bucket)
	}
	return nil
}

// ObjectName builds a collision-resistant blob name from the original file
// name: timestamp, random suffix, original extension, under the capturas
// prefix.
func ObjectName(originalName string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s/%d-%s%s", capturaPrefix, time.Now().UnixMilli(), suffix, path.Ext(originalName))
}
