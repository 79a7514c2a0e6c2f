package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput signals a malformed or incomplete client request.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnsupportedContentType signals an upload with a content type other than PDF.
	ErrUnsupportedContentType = errors.New("only PDF files are allowed")
	// ErrConflictingSources signals an import request naming both a GCS and a BigQuery source.
	ErrConflictingSources = errors.New("gcs_uri and bigquery source are mutually exclusive")
	// ErrMissingSource signals an import request naming neither source.
	ErrMissingSource = errors.New("either gcs_uri or bigquery dataset and table is required")
	// ErrOperationNotFound signals an unknown import operation name.
	ErrOperationNotFound = errors.New("operation not found")

	// ErrImportTimeout signals that an import job did not finish before the wait deadline.
	ErrImportTimeout = errors.New("import wait timed out")
	// ErrStorage signals an object storage failure.
	ErrStorage = errors.New("storage error")
	// ErrSearchProvider signals a search service failure.
	ErrSearchProvider = errors.New("search provider error")
	// ErrImportProvider signals a document import service failure.
	ErrImportProvider = errors.New("import provider error")
	// ErrLedger signals an operation ledger failure.
	ErrLedger = errors.New("operation ledger error")
)

// ImportTimeoutError wraps ErrImportTimeout with the name of the still-running operation.
type ImportTimeoutError struct {
	Operation string
}

func (e *ImportTimeoutError) Error() string {
	return fmt.Sprintf("%s: operation %s is still running", ErrImportTimeout.Error(), e.Operation)
}

func (e *ImportTimeoutError) Unwrap() error { return ErrImportTimeout }

// NewImportTimeout creates an import timeout error.
func NewImportTimeout(operation string) error {
	return &ImportTimeoutError{Operation: operation}
}

// StorageError describes a failed object storage call. It matches ErrStorage and the cause.
type StorageError struct {
	Op     string // upload, ping
	Bucket string
	Object string
	Err    error
}

func (e *StorageError) Error() string {
	if e.Object == "" {
		return fmt.Sprintf("%s bucket %s: %v", e.Op, e.Bucket, e.Err)
	}
	return fmt.Sprintf("%s %s to bucket %s: %v", e.Op, e.Object, e.Bucket, e.Err)
}

func (e *StorageError) Unwrap() []error { return []error{ErrStorage, e.Err} }

// IsClientError reports whether err was caused by the caller's input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrUnsupportedContentType) ||
		errors.Is(err, ErrConflictingSources) ||
		errors.Is(err, ErrMissingSource)
}
