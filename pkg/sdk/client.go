package cymbalsearch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	dbRedis "github.com/kailas-cloud/cymbalsearch/internal/db/redis"
	"github.com/kailas-cloud/cymbalsearch/internal/domain/document"
	"github.com/kailas-cloud/cymbalsearch/internal/domain/operation"
	"github.com/kailas-cloud/cymbalsearch/internal/domain/search/request"
	"github.com/kailas-cloud/cymbalsearch/internal/domain/search/result"
	operationrepo "github.com/kailas-cloud/cymbalsearch/internal/repository/operation"
	"github.com/kailas-cloud/cymbalsearch/internal/transport/discoveryengine"
	"github.com/kailas-cloud/cymbalsearch/internal/transport/gcs"
	"github.com/kailas-cloud/cymbalsearch/internal/transport/minio"
	healthuc "github.com/kailas-cloud/cymbalsearch/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/cymbalsearch/internal/usecase/ingest"
	searchuc "github.com/kailas-cloud/cymbalsearch/internal/usecase/search"
	uploaduc "github.com/kailas-cloud/cymbalsearch/internal/usecase/upload"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultLocation         = "global"
	defaultWaitTimeout      = 10 * time.Minute
	defaultPollInitial      = 500 * time.Millisecond
	defaultPollMax          = 10 * time.Second
	defaultLedgerTTL        = 72 * time.Hour
)

// Internal interfaces for substitution in tests.
type searchUseCase interface {
	Search(ctx context.Context, q request.Query) (*result.Response, error)
}

type uploadUseCase interface {
	UploadPDF(ctx context.Context, r io.Reader, filename, contentType string) (uploaduc.Result, error)
}

type ingestUseCase interface {
	Ingest(ctx context.Context, p ingestuc.Params, async bool) (ingestuc.Result, error)
	Import(ctx context.Context, src operation.Source) (operation.Operation, error)
	Submit(ctx context.Context, src operation.Source) (operation.Operation, error)
	Status(ctx context.Context, name string) (operation.Operation, error)
}

// objectStore is what both storage drivers provide.
type objectStore interface {
	Upload(ctx context.Context, r io.Reader, object, contentType string) (string, error)
	Ping(ctx context.Context) error
	Close() error
}

// Client is the cymbalsearch SDK entry point.
type Client struct {
	searchSvc searchUseCase
	uploadSvc uploadUseCase
	ingestSvc ingestUseCase
	healthSvc healthUseCase
	closers   []func() error
	obs       *observer
}

// New creates a Client and connects to Cloud Storage, Discovery Engine and,
// when configured, the Redis ledger. The provided context is used for client
// creation and the ledger readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}
	applyDefaults(cfg)
	if err := validate(cfg); err != nil {
		return nil, err
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	var closers []func() error
	fail := func(err error) (*Client, error) {
		_ = closeAll(closers)
		return nil, err
	}

	store, err := createStore(ctx, cfg)
	if err != nil {
		return fail(err)
	}
	closers = append(closers, store.Close)

	deCfg := discoveryengine.Config{
		ProjectID:   cfg.projectID,
		Location:    cfg.location,
		DataStoreID: cfg.dataStoreID,
		AppID:       cfg.appID,
	}
	searcher, err := discoveryengine.NewSearcher(ctx, deCfg, cfg.googleOpts...)
	if err != nil {
		return fail(fmt.Errorf("cymbalsearch: %w", err))
	}
	closers = append(closers, searcher.Close)

	importer, err := discoveryengine.NewImporter(ctx, deCfg, cfg.googleOpts...)
	if err != nil {
		return fail(fmt.Errorf("cymbalsearch: %w", err))
	}
	closers = append(closers, importer.Close)

	var (
		ledger       ingestuc.Ledger
		ledgerPinger healthuc.Pinger
	)
	if len(cfg.ledgerAddrs) > 0 {
		kv, err := dbRedis.NewStore(dbRedis.Config{Addrs: cfg.ledgerAddrs, Password: cfg.ledgerPassword})
		if err != nil {
			return fail(fmt.Errorf("cymbalsearch: create redis ledger: %w", err))
		}
		closers = append(closers, func() error { kv.Close(); return nil })
		if err := kv.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
			return fail(fmt.Errorf("cymbalsearch: ledger not ready: %w", err))
		}
		ledger = operationrepo.New(kv, cfg.ledgerTTL)
		ledgerPinger = kv
	}

	ingestSvc := ingestuc.New(store, importer, ledger, ingestuc.Config{
		Bucket:              cfg.bucket,
		RecordDir:           cfg.recordDir,
		KeepLocalRecords:    cfg.keepLocalRecords,
		WaitTimeout:         cfg.waitTimeout,
		PollInitialInterval: cfg.pollInitial,
		PollMaxInterval:     cfg.pollMax,
	})

	c := wireClient(
		searchuc.New(searcher),
		uploaduc.New(store),
		ingestSvc,
		healthuc.New(store, ledgerPinger),
		obs,
	)
	c.closers = closers
	return c, nil
}

func applyDefaults(cfg *clientConfig) {
	if cfg.location == "" {
		cfg.location = defaultLocation
	}
	if cfg.recordDir == "" {
		cfg.recordDir = filepath.Join(os.TempDir(), "cymbalsearch-records")
	}
	if cfg.waitTimeout <= 0 {
		cfg.waitTimeout = defaultWaitTimeout
	}
	if cfg.pollInitial <= 0 {
		cfg.pollInitial = defaultPollInitial
	}
	if cfg.pollMax <= 0 {
		cfg.pollMax = defaultPollMax
	}
	if cfg.ledgerTTL <= 0 {
		cfg.ledgerTTL = defaultLedgerTTL
	}
}

func validate(cfg *clientConfig) error {
	switch {
	case cfg.projectID == "":
		return errors.New("cymbalsearch: project required (use WithProject)")
	case cfg.dataStoreID == "":
		return errors.New("cymbalsearch: data store required (use WithDataStore)")
	case cfg.appID == "":
		return errors.New("cymbalsearch: search app required (use WithApp)")
	case cfg.bucket == "":
		return errors.New("cymbalsearch: bucket required (use WithBucket)")
	}
	return nil
}

func createStore(ctx context.Context, cfg *clientConfig) (objectStore, error) {
	if cfg.minio != nil {
		s, err := minio.New(minio.Config{
			Endpoint:      cfg.minio.endpoint,
			AccessKey:     cfg.minio.accessKey,
			SecretKey:     cfg.minio.secretKey,
			UseSSL:        cfg.minio.useSSL,
			Bucket:        cfg.bucket,
			PublicBaseURL: cfg.publicBaseURL,
		})
		if err != nil {
			return nil, fmt.Errorf("cymbalsearch: create minio store: %w", err)
		}
		return s, nil
	}
	s, err := gcs.New(ctx, gcs.Config{Bucket: cfg.bucket, PublicBaseURL: cfg.publicBaseURL}, cfg.googleOpts...)
	if err != nil {
		return nil, fmt.Errorf("cymbalsearch: create gcs store: %w", err)
	}
	return s, nil
}

func wireClient(
	search searchUseCase,
	upload uploadUseCase,
	ingest ingestUseCase,
	health healthUseCase,
	obs *observer,
) *Client {
	return &Client{
		searchSvc: search,
		uploadSvc: upload,
		ingestSvc: ingest,
		healthSvc: health,
		obs:       obs,
	}
}

func closeAll(closers []func() error) error {
	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close releases all resources.
func (c *Client) Close() error {
	err := closeAll(c.closers)
	c.closers = nil
	return err
}

// UploadPDF stores r as docs/{filename} in the bucket.
func (c *Client) UploadPDF(ctx context.Context, r io.Reader, filename string) (_ UploadResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("upload_pdf", start, err, slog.String("file", filename)) }()

	res, err := c.uploadSvc.UploadPDF(ctx, r, filename, document.PDFMimeType)
	if err != nil {
		return UploadResult{}, fmt.Errorf("upload pdf: %w", err)
	}
	return UploadResult{ObjectName: res.ObjectName, URL: res.URL}, nil
}

// Ingest builds the descriptor record of an uploaded PDF, uploads it and
// waits for its import to finish.
func (c *Client) Ingest(ctx context.Context, pdfObjectPath string, meta DocumentMetadata) (IngestResult, error) {
	return c.ingest(ctx, "ingest", pdfObjectPath, meta, false)
}

// IngestAsync is Ingest without waiting: the returned operation is running.
func (c *Client) IngestAsync(ctx context.Context, pdfObjectPath string, meta DocumentMetadata) (IngestResult, error) {
	return c.ingest(ctx, "ingest_async", pdfObjectPath, meta, true)
}

func (c *Client) ingest(
	ctx context.Context, call, pdfObjectPath string, meta DocumentMetadata, async bool,
) (out IngestResult, err error) {
	start := time.Now()
	defer func() { c.obs.observeImport(call, start, err, out.Operation, out.RecordName) }()

	res, err := c.ingestSvc.Ingest(ctx, ingestuc.Params{PDFObjectPath: pdfObjectPath, Metadata: meta}, async)
	out = IngestResult{RecordName: res.Record.Name, RecordURL: res.Record.URL, Operation: res.Operation}
	if err != nil {
		return out, fmt.Errorf("ingest %s: %w", pdfObjectPath, err)
	}
	return out, nil
}

// Import imports src and waits for the job to finish.
func (c *Client) Import(ctx context.Context, src Source) (op Operation, err error) {
	start := time.Now()
	defer func() { c.obs.observeImport("import", start, err, op, "") }()

	op, err = c.ingestSvc.Import(ctx, src)
	if err != nil {
		return op, fmt.Errorf("import: %w", err)
	}
	return op, nil
}

// Submit starts an import of src and returns the running operation.
func (c *Client) Submit(ctx context.Context, src Source) (op Operation, err error) {
	start := time.Now()
	defer func() { c.obs.observeImport("submit", start, err, op, "") }()

	op, err = c.ingestSvc.Submit(ctx, src)
	if err != nil {
		return Operation{}, fmt.Errorf("submit import: %w", err)
	}
	return op, nil
}

// Operation returns the current state of a submitted import.
func (c *Client) Operation(ctx context.Context, name string) (op Operation, err error) {
	start := time.Now()
	defer func() { c.obs.observeImport("operation", start, err, op, op.RecordName) }()

	op, err = c.ingestSvc.Status(ctx, name)
	if err != nil {
		return Operation{}, fmt.Errorf("operation %s: %w", name, err)
	}
	return op, nil
}
