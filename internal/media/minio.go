package media

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/matthieukhl/shopfront/internal/apperr"
	"github.com/matthieukhl/shopfront/internal/config"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MaxImageSize bounds a single product image upload.
const MaxImageSize = 5 << 20

var (
	ErrDisabled     = apperr.Unavailable("image storage is not configured")
	ErrNotAnImage   = apperr.Validation("only image files can be uploaded")
	ErrImageTooBig  = apperr.Validation("image is too large")
	ErrMissingImage = apperr.Validation("image file is required")
)

type objectPutter interface {
	PutObject(ctx context.Context, bucket, object string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// Uploader stores product images in an object storage bucket. A nil
// *Uploader is valid and rejects every upload with ErrDisabled.
type Uploader struct {
	client  objectPutter
	bucket  string
	baseURL string
}

// NewUploader connects to the configured MinIO endpoint. It returns a nil
// uploader when storage is not configured.
func NewUploader(cfg config.StorageConfig) (*Uploader, error) {
	if !cfg.Enabled() {
		return nil, nil
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}
	return newUploader(client, cfg), nil
}

func newUploader(client objectPutter, cfg config.StorageConfig) *Uploader {
	base := strings.TrimRight(cfg.PublicURL, "/")
	if base == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		base = fmt.Sprintf("%s://%s/%s", scheme, cfg.Endpoint, cfg.Bucket)
	}
	return &Uploader{client: client, bucket: cfg.Bucket, baseURL: base}
}

// Upload stores r under a fresh key and returns the public URL of the object.
func (u *Uploader) Upload(ctx context.Context, filename, contentType string, r io.Reader, size int64) (string, error) {
	if u == nil {
		return "", ErrDisabled
	}
	if size <= 0 {
		return "", ErrMissingImage
	}
	if size > MaxImageSize {
		return "", ErrImageTooBig
	}
	if !strings.HasPrefix(contentType, "image/") {
		return "", ErrNotAnImage
	}

	key := objectKey(filename)
	_, err := u.client.PutObject(ctx, u.bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", apperr.Internal("failed to store image", err)
	}
	return u.baseURL + "/" + key, nil
}

func objectKey(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return path.Join("products", uuid.NewString()+ext)
}
