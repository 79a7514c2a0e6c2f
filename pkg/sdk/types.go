package cymbalsearch

import (
	"github.com/kailas-cloud/cymbalsearch/internal/domain/document"
	"github.com/kailas-cloud/cymbalsearch/internal/domain/operation"
	"github.com/kailas-cloud/cymbalsearch/internal/domain/search/result"
)

// SearchResult is the normalized first page of a search (schema v1).
type SearchResult = result.Response

// SearchItem is a single search hit.
type SearchItem = result.Item

// Summary is the generated answer attached to a search result.
type Summary = result.Summary

// DocumentMetadata is the caller-supplied part of an ingested document.
type DocumentMetadata = document.Metadata

// Operation is a submitted import job.
type Operation = operation.Operation

// OperationState is the lifecycle state of an Operation.
type OperationState = operation.State

// Operation states.
const (
	StateRunning   = operation.Running
	StateSucceeded = operation.Succeeded
	StateFailed    = operation.Failed
)

// Source selects where an import reads documents from.
type Source = operation.Source

// GCSSource imports JSON descriptor records from a gs:// URI.
func GCSSource(uri string) (Source, error) { return operation.GCS(uri) }

// BigQuerySource imports rows of a BigQuery table.
func BigQuerySource(dataset, table string) (Source, error) { return operation.BigQuery(dataset, table) }

// UploadResult identifies a stored PDF.
type UploadResult struct {
	ObjectName string
	URL        string
}

// IngestResult is the outcome of Ingest and IngestAsync.
type IngestResult struct {
	RecordName string
	RecordURL  string
	Operation  Operation
}
