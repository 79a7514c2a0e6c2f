// Package gcs uploads objects to a Google Cloud Storage bucket.
package gcs

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/kailas-cloud/cymbalsearch/internal/domain"
	"github.com/kailas-cloud/cymbalsearch/internal/metrics"
)

// PublicHost serves objects of publicly readable buckets.
const PublicHost = "https://storage.googleapis.com"

// Config holds the bucket settings.
type Config struct {
	Bucket string
	// PublicBaseURL replaces "{PublicHost}/{bucket}" in returned URLs when set.
	PublicBaseURL string
	Logger        *zap.Logger
}

type writerFunc func(ctx context.Context, object, contentType string) io.WriteCloser

type pingFunc func(ctx context.Context) error

// Store writes objects into one bucket.
type Store struct {
	client        *storage.Client
	bucket        string
	publicBaseURL string
	logger        *zap.Logger

	newWriter writerFunc
	ping      pingFunc
}

// New creates a GCS client using application default credentials.
func New(ctx context.Context, cfg Config, opts ...option.ClientOption) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket is required")
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return NewWithClient(client, cfg), nil
}

// NewWithClient wraps an existing storage client.
func NewWithClient(client *storage.Client, cfg Config) *Store {
	s := newStore(cfg)
	s.client = client

	bucket := client.Bucket(cfg.Bucket)
	s.newWriter = func(ctx context.Context, object, contentType string) io.WriteCloser {
		w := bucket.Object(object).NewWriter(ctx)
		w.ContentType = contentType
		return w
	}
	s.ping = func(ctx context.Context) error {
		_, err := bucket.Attrs(ctx)
		return err //nolint:wrapcheck // wrapped by Ping
	}
	return s
}

func newStore(cfg Config) *Store {
	l := cfg.Logger
	if l == nil {
		l = zap.NewNop()
	}
	return &Store{
		bucket:        cfg.Bucket,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
		logger:        l,
	}
}

// Bucket returns the configured bucket name.
func (s *Store) Bucket() string { return s.bucket }

// Upload streams r into object and returns its public URL.
// The object is created or overwritten. The caller keeps ownership of r.
func (s *Store) Upload(ctx context.Context, r io.Reader, object, contentType string) (publicURL string, err error) {
	defer metrics.ObserveGateway(metrics.GatewayStorage, "upload", time.Now(), &err)

	if object == "" {
		return "", fmt.Errorf("%w: object name is required", domain.ErrInvalidInput)
	}

	// cancelling the writer context discards a partial upload
	wctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := s.newWriter(wctx, object, contentType)
	n, err := io.Copy(w, r)
	if err != nil {
		cancel()
		_ = w.Close()
		return "", s.fail("upload", object, err)
	}
	if err := w.Close(); err != nil {
		return "", s.fail("upload", object, err)
	}

	metrics.UploadedBytesTotal.WithLabelValues(contentType).Add(float64(n))
	s.logger.Debug("object uploaded",
		zap.String("bucket", s.bucket),
		zap.String("object", object),
		zap.String("content_type", contentType),
		zap.Int64("bytes", n),
	)
	return s.PublicURL(object), nil
}

// PublicURL returns the public URL of object.
func (s *Store) PublicURL(object string) string {
	escaped := escapeObject(object)
	if s.publicBaseURL != "" {
		return s.publicBaseURL + "/" + escaped
	}
	return PublicHost + "/" + s.bucket + "/" + escaped
}

// Ping checks that the bucket exists and is readable.
func (s *Store) Ping(ctx context.Context) (err error) {
	defer metrics.ObserveGateway(metrics.GatewayStorage, "ping", time.Now(), &err)

	if err := s.ping(ctx); err != nil {
		return s.fail("ping", "", err)
	}
	return nil
}

// Close releases the underlying client.
func (s *Store) Close() error {
	if s.client == nil {
		return nil
	}
	if err := s.client.Close(); err != nil {
		return fmt.Errorf("close storage client: %w", err)
	}
	return nil
}

func (s *Store) fail(op, object string, err error) error {
	return &domain.StorageError{Op: op, Bucket: s.bucket, Object: object, Err: err}
}

// escapeObject escapes each path segment but keeps the separators.
func escapeObject(object string) string {
	parts := strings.Split(strings.TrimPrefix(object, "/"), "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
