package cymbalsearch

import "github.com/kailas-cloud/cymbalsearch/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidInput           = domain.ErrInvalidInput
	ErrUnsupportedContentType = domain.ErrUnsupportedContentType
	ErrConflictingSources     = domain.ErrConflictingSources
	ErrMissingSource          = domain.ErrMissingSource
	ErrOperationNotFound      = domain.ErrOperationNotFound
	ErrImportTimeout          = domain.ErrImportTimeout
	ErrStorage                = domain.ErrStorage
	ErrSearchProvider         = domain.ErrSearchProvider
	ErrImportProvider         = domain.ErrImportProvider
	ErrLedger                 = domain.ErrLedger
)
