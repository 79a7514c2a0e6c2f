package operation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kailas-cloud/cymbalsearch/internal/domain"
)

// State is the lifecycle state of an import operation.
type State string

const (
	// Running means the vendor job has not finished.
	Running State = "running"
	// Succeeded means the vendor job finished without an operation-level error.
	Succeeded State = "succeeded"
	// Failed means the vendor job finished with an operation-level error.
	Failed State = "failed"
)

// SourceKind names where documents are imported from.
type SourceKind string

const (
	// SourceGCS imports from a Cloud Storage URI.
	SourceGCS SourceKind = "gcs"
	// SourceBigQuery imports from a BigQuery table.
	SourceBigQuery SourceKind = "bigquery"
)

// Source selects exactly one import source.
type Source struct {
	Kind            SourceKind `json:"kind"`
	GCSURI          string     `json:"gcs_uri,omitempty"`
	BigQueryDataset string     `json:"bigquery_dataset,omitempty"`
	BigQueryTable   string     `json:"bigquery_table,omitempty"`
}

// NewSource validates that exactly one of gcsURI or (dataset, table) is set.
func NewSource(gcsURI, dataset, table string) (Source, error) {
	hasGCS := gcsURI != ""
	hasBQ := dataset != "" || table != ""

	switch {
	case hasGCS && hasBQ:
		return Source{}, domain.ErrConflictingSources
	case hasGCS:
		if !strings.HasPrefix(gcsURI, "gs://") {
			return Source{}, fmt.Errorf("%w: gcs_uri must start with gs://, got %q", domain.ErrInvalidInput, gcsURI)
		}
		return Source{Kind: SourceGCS, GCSURI: gcsURI}, nil
	case hasBQ:
		if dataset == "" || table == "" {
			return Source{}, fmt.Errorf("%w: bigquery source needs both dataset and table", domain.ErrInvalidInput)
		}
		return Source{Kind: SourceBigQuery, BigQueryDataset: dataset, BigQueryTable: table}, nil
	default:
		return Source{}, domain.ErrMissingSource
	}
}

// Validate re-applies the NewSource rules to a Source built by hand.
// Kind must agree with the populated fields.
func (s Source) Validate() error {
	checked, err := NewSource(s.GCSURI, s.BigQueryDataset, s.BigQueryTable)
	if err != nil {
		return err
	}
	if s.Kind != checked.Kind {
		return fmt.Errorf("%w: source kind %q does not match its fields (%q)", domain.ErrInvalidInput, s.Kind, checked.Kind)
	}
	return nil
}

// GCS is a shorthand for NewSource(uri, "", "").
func GCS(uri string) (Source, error) { return NewSource(uri, "", "") }

// BigQuery is a shorthand for NewSource("", dataset, table).
func BigQuery(dataset, table string) (Source, error) { return NewSource("", dataset, table) }

// Status is a single observation of a vendor job.
type Status struct {
	Done         bool
	SuccessCount int64
	FailureCount int64
	TotalCount   int64
	// Failure carries the operation-level error message of a finished job.
	Failure string
}

// Job is a handle on a submitted vendor import.
type Job interface {
	Name() string
	// Poll fetches the current state once. A finished job that failed is
	// reported through Status.Failure, not through the error.
	Poll(ctx context.Context) (Status, error)
}

// Operation is a submitted import job.
type Operation struct {
	Name         string    `json:"name"`
	State        State     `json:"state"`
	Source       Source    `json:"source"`
	RecordName   string    `json:"record_name,omitempty"`
	RecordURL    string    `json:"record_url,omitempty"`
	SuccessCount int64     `json:"success_count"`
	FailureCount int64     `json:"failure_count"`
	TotalCount   int64     `json:"total_count"`
	Error        string    `json:"error,omitempty"`
	SubmittedAt  time.Time `json:"submitted_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// New creates a running operation.
func New(name string, src Source, now time.Time) Operation {
	return Operation{
		Name:        name,
		State:       Running,
		Source:      src,
		SubmittedAt: now,
		UpdatedAt:   now,
	}
}

// Apply folds a status observation into the operation.
func (o *Operation) Apply(st Status, now time.Time) {
	o.SuccessCount = st.SuccessCount
	o.FailureCount = st.FailureCount
	o.TotalCount = st.TotalCount
	o.UpdatedAt = now

	switch {
	case !st.Done:
		o.State = Running
	case st.Failure != "":
		o.State = Failed
		o.Error = st.Failure
	default:
		o.State = Succeeded
		o.Error = ""
	}
}

// Done reports whether the operation reached a terminal state.
func (o *Operation) Done() bool { return o.State != Running }
