package ingest

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/kailas-cloud/cymbalsearch/internal/domain"
	"github.com/kailas-cloud/cymbalsearch/internal/domain/operation"
)

type upload struct {
	object      string
	contentType string
	body        string
}

type mockStore struct {
	uploads []upload
	err     error
}

func (m *mockStore) Upload(_ context.Context, r io.Reader, object, contentType string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m.uploads = append(m.uploads, upload{object: object, contentType: contentType, body: string(data)})
	if m.err != nil {
		return "", m.err
	}
	return "https://storage.googleapis.com/cymbal-docs/" + object, nil
}

// mockJob returns statuses in order and repeats the last one.
type mockJob struct {
	name     string
	statuses []operation.Status
	errs     []error
	polls    int
}

func (j *mockJob) Name() string { return j.name }

func (j *mockJob) Poll(ctx context.Context) (operation.Status, error) {
	if err := ctx.Err(); err != nil {
		return operation.Status{}, err
	}
	i := j.polls
	j.polls++
	if i < len(j.errs) && j.errs[i] != nil {
		return operation.Status{}, j.errs[i]
	}
	if i >= len(j.statuses) {
		i = len(j.statuses) - 1
	}
	return j.statuses[i], nil
}

type mockImporter struct {
	job       *mockJob
	importErr error
	sources   []operation.Source
	resumed   []string
}

func (m *mockImporter) Import(_ context.Context, src operation.Source) (operation.Job, error) {
	m.sources = append(m.sources, src)
	if m.importErr != nil {
		return nil, m.importErr
	}
	return m.job, nil
}

func (m *mockImporter) Resume(name string) (operation.Job, error) {
	m.resumed = append(m.resumed, name)
	if m.job == nil {
		return nil, domain.ErrOperationNotFound
	}
	return m.job, nil
}

type mockLedger struct {
	mu     sync.Mutex
	ops    map[string]operation.Operation
	saves  int
	getErr error
}

func newMockLedger() *mockLedger { return &mockLedger{ops: map[string]operation.Operation{}} }

func (m *mockLedger) Save(_ context.Context, op operation.Operation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	m.ops[op.Name] = op
	return nil
}

func (m *mockLedger) Get(_ context.Context, name string) (operation.Operation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return operation.Operation{}, m.getErr
	}
	op, ok := m.ops[name]
	if !ok {
		return operation.Operation{}, domain.ErrOperationNotFound
	}
	return op, nil
}

func testConfig(t *testing.T) Config {
	t.Helper()
	return Config{
		Bucket:              "cymbal-docs",
		RecordDir:           t.TempDir(),
		WaitTimeout:         2 * time.Second,
		PollInitialInterval: time.Millisecond,
		PollMaxInterval:     5 * time.Millisecond,
	}
}

func newTestService(t *testing.T, store ObjectStore, imp Importer, ledger Ledger, cfg Config) *Service {
	t.Helper()
	svc := New(store, imp, ledger, cfg)
	svc.newID = func() string { return "doc-00000000-0000-0000-0000-000000000001" }
	svc.now = func() time.Time { return time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC) }
	return svc
}
