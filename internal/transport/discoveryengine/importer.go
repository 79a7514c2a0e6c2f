package discoveryengine

import (
	"context"
	"fmt"
	"time"

	deapi "cloud.google.com/go/discoveryengine/apiv1"
	"cloud.google.com/go/discoveryengine/apiv1/discoveryenginepb"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/kailas-cloud/cymbalsearch/internal/domain"
	"github.com/kailas-cloud/cymbalsearch/internal/domain/operation"
	"github.com/kailas-cloud/cymbalsearch/internal/metrics"
)

// bigQuerySchema tells the importer that table rows carry custom struct data.
const bigQuerySchema = "custom"

// lro is the subset of *deapi.ImportDocumentsOperation a job needs.
type lro interface {
	Name() string
	Done() bool
	Poll(ctx context.Context, opts ...gax.CallOption) (*discoveryenginepb.ImportDocumentsResponse, error)
	Metadata() (*discoveryenginepb.ImportDocumentsMetadata, error)
}

// Importer submits document imports into the data store's default branch.
type Importer struct {
	client    *deapi.DocumentClient
	projectID string
	branch    string

	submit func(ctx context.Context, req *discoveryenginepb.ImportDocumentsRequest) (lro, error)
	resume func(name string) lro
}

// NewImporter creates a document client for cfg.Location.
func NewImporter(ctx context.Context, cfg Config, opts ...option.ClientOption) (*Importer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	client, err := deapi.NewDocumentClient(ctx, clientOptions(cfg.Location, opts)...)
	if err != nil {
		return nil, fmt.Errorf("create document client: %w", err)
	}

	return &Importer{
		client:    client,
		projectID: cfg.ProjectID,
		branch:    cfg.Branch(),
		submit: func(ctx context.Context, req *discoveryenginepb.ImportDocumentsRequest) (lro, error) {
			return client.ImportDocuments(ctx, req)
		},
		resume: func(name string) lro {
			return client.ImportDocumentsOperation(name)
		},
	}, nil
}

// Import submits an incremental import of src and returns the running job.
func (i *Importer) Import(ctx context.Context, src operation.Source) (_ operation.Job, err error) {
	defer metrics.ObserveGateway(metrics.GatewayImport, "submit", time.Now(), &err)

	req, err := buildImportRequest(i.branch, i.projectID, src)
	if err != nil {
		return nil, err
	}

	op, err := i.submit(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: submit import: %w", domain.ErrImportProvider, err)
	}
	return &job{op: op}, nil
}

// Resume attaches to an operation submitted earlier, possibly by another process.
func (i *Importer) Resume(name string) (operation.Job, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: operation name is required", domain.ErrInvalidInput)
	}
	return &job{op: i.resume(name)}, nil
}

// Close releases the underlying connection.
func (i *Importer) Close() error {
	if i.client == nil {
		return nil
	}
	if err := i.client.Close(); err != nil {
		return fmt.Errorf("close document client: %w", err)
	}
	return nil
}

func buildImportRequest(branch, projectID string, src operation.Source) (*discoveryenginepb.ImportDocumentsRequest, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	req := &discoveryenginepb.ImportDocumentsRequest{
		Parent:             branch,
		ReconciliationMode: discoveryenginepb.ImportDocumentsRequest_INCREMENTAL,
	}

	switch src.Kind {
	case operation.SourceGCS:
		req.Source = &discoveryenginepb.ImportDocumentsRequest_GcsSource{
			GcsSource: &discoveryenginepb.GcsSource{InputUris: []string{src.GCSURI}},
		}
	case operation.SourceBigQuery:
		req.Source = &discoveryenginepb.ImportDocumentsRequest_BigquerySource{
			BigquerySource: &discoveryenginepb.BigQuerySource{
				ProjectId:  projectID,
				DatasetId:  src.BigQueryDataset,
				TableId:    src.BigQueryTable,
				DataSchema: bigQuerySchema,
			},
		}
	default:
		return nil, domain.ErrMissingSource
	}
	return req, nil
}

// job adapts a vendor long-running operation to operation.Job.
type job struct {
	op lro
}

func (j *job) Name() string { return j.op.Name() }

func (j *job) Poll(ctx context.Context) (st operation.Status, err error) {
	defer metrics.ObserveGateway(metrics.GatewayImport, "poll", time.Now(), &err)

	_, pollErr := j.op.Poll(ctx)
	st.Done = j.op.Done()

	if pollErr != nil {
		if !st.Done {
			return operation.Status{}, classifyPollError(j.op.Name(), pollErr)
		}
		// finished with an operation-level error
		st.Failure = pollErr.Error()
	}

	if md, mdErr := j.op.Metadata(); mdErr == nil && md != nil {
		st.SuccessCount = md.GetSuccessCount()
		st.FailureCount = md.GetFailureCount()
		st.TotalCount = st.SuccessCount + st.FailureCount
	}
	return st, nil
}

func classifyPollError(name string, err error) error {
	switch status.Code(err) {
	case codes.NotFound:
		return fmt.Errorf("%w: %s", domain.ErrOperationNotFound, name)
	case codes.InvalidArgument:
		return fmt.Errorf("%w: operation %s: %w", domain.ErrInvalidInput, name, err)
	default:
		return fmt.Errorf("%w: poll %s: %w", domain.ErrImportProvider, name, err)
	}
}
