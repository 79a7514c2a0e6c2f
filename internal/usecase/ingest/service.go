package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/cymbalsearch/internal/domain"
	"github.com/kailas-cloud/cymbalsearch/internal/domain/document"
	"github.com/kailas-cloud/cymbalsearch/internal/domain/operation"
	"github.com/kailas-cloud/cymbalsearch/internal/logger"
	"github.com/kailas-cloud/cymbalsearch/internal/metrics"
)

// RecordContentType is the content type of uploaded descriptor records.
const RecordContentType = "application/json"

var errStillRunning = errors.New("import still running")

// Config holds ingestion settings.
type Config struct {
	Bucket              string
	RecordDir           string
	KeepLocalRecords    bool
	WaitTimeout         time.Duration
	PollInitialInterval time.Duration
	PollMaxInterval     time.Duration
}

// Params describe a PDF already stored in the bucket.
type Params struct {
	PDFObjectPath string
	Metadata      document.Metadata
}

// Record is an uploaded descriptor record.
type Record struct {
	Name string
	URL  string
}

// Result is the outcome of Ingest.
type Result struct {
	Record    Record
	Operation operation.Operation
}

// Service builds descriptor records and drives document imports.
type Service struct {
	store    ObjectStore
	importer Importer
	ledger   Ledger
	cfg      Config

	now   func() time.Time
	newID func() string
}

// New creates an ingest service. ledger can be nil.
func New(store ObjectStore, importer Importer, ledger Ledger, cfg Config) *Service {
	return &Service{
		store:    store,
		importer: importer,
		ledger:   ledger,
		cfg:      cfg,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    func() string { return document.IDPrefix + uuid.NewString() },
	}
}

// BuildAndUploadDescriptor writes the descriptor of p to the record directory
// and uploads it as {stem}.json. Any failure aborts; an uploaded record is not
// rolled back.
func (s *Service) BuildAndUploadDescriptor(ctx context.Context, p Params) (Record, error) {
	name, err := document.RecordName(p.PDFObjectPath)
	if err != nil {
		return Record{}, err
	}
	desc, err := document.NewDescriptor(s.newID(), s.cfg.Bucket, p.PDFObjectPath, p.Metadata)
	if err != nil {
		return Record{}, fmt.Errorf("build descriptor: %w", err)
	}
	data, err := desc.Marshal()
	if err != nil {
		return Record{}, err
	}

	if err := os.MkdirAll(s.cfg.RecordDir, 0o750); err != nil {
		return Record{}, fmt.Errorf("create record dir: %w", err)
	}
	local := filepath.Join(s.cfg.RecordDir, name)
	if err := os.WriteFile(local, data, 0o600); err != nil {
		return Record{}, fmt.Errorf("write record %s: %w", local, err)
	}
	if !s.cfg.KeepLocalRecords {
		defer func() { _ = os.Remove(local) }()
	}

	f, err := os.Open(filepath.Clean(local))
	if err != nil {
		return Record{}, fmt.Errorf("open record %s: %w", local, err)
	}
	defer func() { _ = f.Close() }()

	url, err := s.store.Upload(ctx, f, name, RecordContentType)
	if err != nil {
		return Record{}, fmt.Errorf("upload record %s: %w", name, err)
	}

	logger.FromContext(ctx).Info("descriptor uploaded",
		zap.String("record", name),
		zap.String("document_id", desc.ID),
		zap.String("pdf", p.PDFObjectPath),
	)
	return Record{Name: name, URL: url}, nil
}

// Import submits src and waits until the job finishes or the wait deadline
// passes. A job that finishes with an error is returned with ErrImportProvider.
func (s *Service) Import(ctx context.Context, src operation.Source) (operation.Operation, error) {
	job, op, err := s.submit(ctx, src)
	if err != nil {
		return operation.Operation{}, err
	}
	return s.wait(ctx, job, op)
}

// Submit submits src and returns immediately with a running operation.
func (s *Service) Submit(ctx context.Context, src operation.Source) (operation.Operation, error) {
	_, op, err := s.submit(ctx, src)
	if err != nil {
		return operation.Operation{}, err
	}
	s.record(ctx, op)
	return op, nil
}

// Ingest uploads the descriptor of p and imports it. With async the running
// operation is returned right after submission.
func (s *Service) Ingest(ctx context.Context, p Params, async bool) (Result, error) {
	rec, err := s.BuildAndUploadDescriptor(ctx, p)
	if err != nil {
		return Result{}, err
	}

	src, err := operation.GCS(document.GCSURI(s.cfg.Bucket, rec.Name))
	if err != nil {
		return Result{}, err
	}

	job, op, err := s.submit(ctx, src)
	if err != nil {
		return Result{Record: rec}, err
	}
	op.RecordName = rec.Name
	op.RecordURL = rec.URL

	if async {
		s.record(ctx, op)
		return Result{Record: rec, Operation: op}, nil
	}

	op, err = s.wait(ctx, job, op)
	return Result{Record: rec, Operation: op}, err
}

// Status polls a submitted operation once, merges what the ledger knows about
// it and stores the refreshed state.
func (s *Service) Status(ctx context.Context, name string) (operation.Operation, error) {
	job, err := s.importer.Resume(name)
	if err != nil {
		return operation.Operation{}, err
	}
	st, err := job.Poll(ctx)
	if err != nil {
		return operation.Operation{}, err
	}

	op := operation.New(name, operation.Source{}, s.now())
	if s.ledger != nil {
		stored, err := s.ledger.Get(ctx, name)
		switch {
		case err == nil:
			op = stored
		case errors.Is(err, domain.ErrOperationNotFound):
		default:
			logger.FromContext(ctx).Warn("ledger read failed", zap.String("operation", name), zap.Error(err))
		}
	}

	op.Apply(st, s.now())
	s.record(ctx, op)
	return op, nil
}

func (s *Service) submit(ctx context.Context, src operation.Source) (operation.Job, operation.Operation, error) {
	if err := src.Validate(); err != nil {
		return nil, operation.Operation{}, err
	}
	job, err := s.importer.Import(ctx, src)
	if err != nil {
		return nil, operation.Operation{}, err
	}

	op := operation.New(job.Name(), src, s.now())
	logger.FromContext(ctx).Info("import submitted",
		zap.String("operation", op.Name),
		zap.String("source", string(src.Kind)),
	)
	return job, op, nil
}

// wait polls job with exponential pacing under cfg.WaitTimeout.
func (s *Service) wait(ctx context.Context, job operation.Job, op operation.Operation) (operation.Operation, error) {
	log := logger.FromContext(ctx).With(zap.String("operation", op.Name))

	wctx, cancel := context.WithTimeout(ctx, s.cfg.WaitTimeout)
	defer cancel()

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.cfg.PollInitialInterval
	b.MaxInterval = s.cfg.PollMaxInterval
	b.MaxElapsedTime = 0 // bounded by wctx

	err := backoff.Retry(func() error {
		st, err := job.Poll(wctx)
		if err != nil {
			return backoff.Permanent(err)
		}
		op.Apply(st, s.now())
		if !st.Done {
			return errStillRunning
		}
		return nil
	}, backoff.WithContext(b, wctx))

	if err != nil {
		if ctx.Err() == nil && errors.Is(wctx.Err(), context.DeadlineExceeded) {
			log.Warn("import wait timed out", zap.Duration("timeout", s.cfg.WaitTimeout))
			metrics.ImportOperationsTotal.WithLabelValues("timeout").Inc()
			s.record(ctx, op)
			return op, domain.NewImportTimeout(op.Name)
		}
		return op, err
	}

	metrics.ImportOperationsTotal.WithLabelValues(string(op.State)).Inc()
	s.record(ctx, op)

	if op.State == operation.Failed {
		log.Error("import failed", zap.String("error", op.Error))
		return op, fmt.Errorf("%w: operation %s failed: %s", domain.ErrImportProvider, op.Name, op.Error)
	}
	log.Info("import finished",
		zap.Int64("success_count", op.SuccessCount),
		zap.Int64("failure_count", op.FailureCount),
	)
	return op, nil
}

// record saves op to the ledger when one is configured. Failures are logged only:
// the vendor job exists regardless.
func (s *Service) record(ctx context.Context, op operation.Operation) {
	if s.ledger == nil {
		return
	}
	if err := s.ledger.Save(ctx, op); err != nil {
		logger.FromContext(ctx).Warn("ledger write failed", zap.String("operation", op.Name), zap.Error(err))
	}
}
