package upload

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/cymbalsearch/internal/domain"
	"github.com/kailas-cloud/cymbalsearch/internal/domain/document"
	"github.com/kailas-cloud/cymbalsearch/internal/logger"
)

// DocsPrefix is the object folder of uploaded PDFs.
const DocsPrefix = "docs/"

// Result identifies a stored PDF.
type Result struct {
	ObjectName string
	URL        string
}

// Service stores user PDFs.
type Service struct {
	store ObjectStore
}

// New creates an upload service.
func New(store ObjectStore) *Service {
	return &Service{store: store}
}

// UploadPDF stores r as docs/{filename}. Anything but application/pdf is
// rejected before the store is touched.
func (s *Service) UploadPDF(ctx context.Context, r io.Reader, filename, contentType string) (Result, error) {
	if contentType != document.PDFMimeType {
		return Result{}, fmt.Errorf("%w, got %q", domain.ErrUnsupportedContentType, contentType)
	}
	name, err := cleanFilename(filename)
	if err != nil {
		return Result{}, err
	}

	object := DocsPrefix + name
	url, err := s.store.Upload(ctx, r, object, contentType)
	if err != nil {
		logger.FromContext(ctx).Error("pdf upload failed", zap.String("object", object), zap.Error(err))
		return Result{}, fmt.Errorf("upload %s: %w", object, err)
	}

	logger.FromContext(ctx).Info("pdf uploaded", zap.String("object", object))
	return Result{ObjectName: object, URL: url}, nil
}

// cleanFilename keeps the last path element of a client-supplied name.
func cleanFilename(filename string) (string, error) {
	name := path.Base(strings.ReplaceAll(strings.TrimSpace(filename), "\\", "/"))
	switch name {
	case "", ".", "..", "/":
		return "", fmt.Errorf("%w: file name is required", domain.ErrInvalidInput)
	}
	return name, nil
}
