// Package minio stores objects in an S3-compatible bucket for local development.
package minio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/kailas-cloud/cymbalsearch/internal/domain"
	"github.com/kailas-cloud/cymbalsearch/internal/metrics"
)

// Config holds the MinIO connection settings.
type Config struct {
	Endpoint  string // host:port or URL
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
	// PublicBaseURL replaces "{endpoint}/{bucket}" in returned URLs when set.
	PublicBaseURL string
	Logger        *zap.Logger
}

// objectAPI is the subset of *minio.Client the store uses.
type objectAPI interface {
	PutObject(ctx context.Context, bucket, object string, r io.Reader, size int64,
		opts minio.PutObjectOptions) (minio.UploadInfo, error)
	BucketExists(ctx context.Context, bucket string) (bool, error)
}

// Store writes objects into one bucket.
type Store struct {
	api     objectAPI
	bucket  string
	baseURL string
	logger  *zap.Logger
}

// New creates a MinIO-backed store.
func New(cfg Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket is required")
	}
	host, secure, err := parseEndpoint(cfg.Endpoint, cfg.UseSSL)
	if err != nil {
		return nil, err
	}

	client, err := minio.New(host, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: secure,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	base := cfg.PublicBaseURL
	if base == "" {
		scheme := "http"
		if secure {
			scheme = "https"
		}
		base = scheme + "://" + host + "/" + cfg.Bucket
	}
	return newStore(client, cfg.Bucket, base, cfg.Logger), nil
}

func newStore(api objectAPI, bucket, baseURL string, l *zap.Logger) *Store {
	if l == nil {
		l = zap.NewNop()
	}
	return &Store{
		api:     api,
		bucket:  bucket,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  l,
	}
}

// Bucket returns the configured bucket name.
func (s *Store) Bucket() string { return s.bucket }

// Upload streams r into object and returns its URL. The object size is unknown,
// so minio-go buffers multipart chunks.
func (s *Store) Upload(ctx context.Context, r io.Reader, object, contentType string) (publicURL string, err error) {
	defer metrics.ObserveGateway(metrics.GatewayStorage, "upload", time.Now(), &err)

	if object == "" {
		return "", fmt.Errorf("%w: object name is required", domain.ErrInvalidInput)
	}

	info, err := s.api.PutObject(ctx, s.bucket, object, r, -1, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", s.fail("upload", object, err)
	}

	metrics.UploadedBytesTotal.WithLabelValues(contentType).Add(float64(info.Size))
	s.logger.Debug("object uploaded",
		zap.String("bucket", s.bucket),
		zap.String("object", object),
		zap.Int64("bytes", info.Size),
	)
	return s.PublicURL(object), nil
}

// PublicURL returns the path-style URL of object.
func (s *Store) PublicURL(object string) string {
	parts := strings.Split(strings.TrimPrefix(object, "/"), "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return s.baseURL + "/" + strings.Join(parts, "/")
}

// Ping checks that the bucket exists.
func (s *Store) Ping(ctx context.Context) (err error) {
	defer metrics.ObserveGateway(metrics.GatewayStorage, "ping", time.Now(), &err)

	ok, err := s.api.BucketExists(ctx, s.bucket)
	if err != nil {
		return s.fail("ping", "", err)
	}
	if !ok {
		return s.fail("ping", "", errors.New("bucket does not exist"))
	}
	return nil
}

// Close is a no-op: minio-go clients hold no resources beyond the HTTP transport.
func (s *Store) Close() error { return nil }

func (s *Store) fail(op, object string, err error) error {
	var resp minio.ErrorResponse
	if errors.As(err, &resp) && resp.Code != "" {
		err = fmt.Errorf("%s: %w", resp.Code, err)
	}
	return &domain.StorageError{Op: op, Bucket: s.bucket, Object: object, Err: err}
}

// parseEndpoint accepts "host:port" or "http(s)://host:port".
func parseEndpoint(endpoint string, useSSL bool) (string, bool, error) {
	if endpoint == "" {
		return "", false, fmt.Errorf("endpoint is required")
	}
	if !strings.Contains(endpoint, "://") {
		return endpoint, useSSL, nil
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", false, fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}
	if u.Host == "" {
		return "", false, fmt.Errorf("invalid endpoint %q: missing host", endpoint)
	}
	return u.Host, useSSL || u.Scheme == "https", nil
}
