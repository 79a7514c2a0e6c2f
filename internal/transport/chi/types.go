package chi

import (
	"github.com/kailas-cloud/cymbalsearch/internal/domain/operation"
)

// ErrorCode is a machine-readable error kind.
type ErrorCode string

// Error codes.
const (
	ErrorCodeBadRequest       ErrorCode = "bad_request"
	ErrorCodeValidationFailed ErrorCode = "validation_failed"
	ErrorCodeUnauthorized     ErrorCode = "unauthorized"
	ErrorCodeNotFound         ErrorCode = "not_found"
	ErrorCodeTooLarge         ErrorCode = "request_too_large"
	ErrorCodeImportTimeout    ErrorCode = "import_timeout"
	ErrorCodeInternalError    ErrorCode = "internal_error"
)

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Operation string    `json:"operation,omitempty"`
}

// PingResponse is the body of GET /ping.
type PingResponse struct {
	Status string `json:"status"`
}

// SearchRequest is the body of POST /search. Omitted fields take their defaults.
type SearchRequest struct {
	Query                     string `json:"query"`
	SummaryResultCount        *int   `json:"summary_result_count,omitempty"`
	PageSize                  *int   `json:"page_size,omitempty"`
	PageSizeAlias             *int   `json:"pageSize,omitempty"`
	MaxSnippetCount           *int   `json:"max_snippet_count,omitempty"`
	IncludeCitations          *bool  `json:"include_citations,omitempty"`
	UseSemanticChunks         *bool  `json:"use_semantic_chunks,omitempty"`
	MaxExtractiveAnswerCount  *int   `json:"max_extractive_answer_count,omitempty"`
	MaxExtractiveSegmentCount *int   `json:"max_extractive_segment_count,omitempty"`
}

// UploadResponse is the body of a successful POST /upload.
type UploadResponse struct {
	FileName string `json:"file_name"`
	URL      string `json:"url"`
}

// ImportRequest is the body of POST /datastore/import.
type ImportRequest struct {
	PDFGCSFilename string `json:"pdf_gcs_filename"`
	Category       string `json:"category"`
	Tenant         string `json:"tenant"`
	Description    string `json:"description"`
	Year           string `json:"year"`
}

// Import response statuses.
const (
	ImportStatusSuccess  = "success"
	ImportStatusAccepted = "accepted"
)

// ImportResponse is the body of a successful POST /datastore/import.
type ImportResponse struct {
	Status    string `json:"status"`
	Data      string `json:"data"`
	URL       string `json:"url"`
	Datastore string `json:"datastore"`
}

// ImportSourceRequest is the body of POST /datastore/import/source.
type ImportSourceRequest struct {
	GCSURI          string `json:"gcs_uri"`
	BigQueryDataset string `json:"bigquery_dataset"`
	BigQueryTable   string `json:"bigquery_table"`
}

// OperationResponse describes an import operation.
type OperationResponse = operation.Operation

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
