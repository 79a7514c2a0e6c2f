package chi

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/cymbalsearch/internal/domain/operation"
	"github.com/kailas-cloud/cymbalsearch/internal/domain/search/request"
	"github.com/kailas-cloud/cymbalsearch/internal/domain/search/result"
	healthuc "github.com/kailas-cloud/cymbalsearch/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/cymbalsearch/internal/usecase/ingest"
	searchuc "github.com/kailas-cloud/cymbalsearch/internal/usecase/search"
	uploaduc "github.com/kailas-cloud/cymbalsearch/internal/usecase/upload"
)

const testBucket = "cymbal-docs"

type storedObject struct {
	name        string
	contentType string
	body        []byte
}

// memStore is an in-memory object store shared by the upload and ingest services.
type memStore struct {
	mu      sync.Mutex
	objects []storedObject
	err     error
	pingErr error
}

func (m *memStore) Upload(_ context.Context, r io.Reader, object, contentType string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	m.objects = append(m.objects, storedObject{name: object, contentType: contentType, body: data})
	return "https://storage.googleapis.com/" + testBucket + "/" + object, nil
}

func (m *memStore) Ping(_ context.Context) error { return m.pingErr }

func (m *memStore) calls() []storedObject {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]storedObject(nil), m.objects...)
}

type fakeSearcher struct {
	got  []request.Query
	resp *result.Response
	err  error
}

func (f *fakeSearcher) Search(_ context.Context, q request.Query) (*result.Response, error) {
	f.got = append(f.got, q)
	return f.resp, f.err
}

type fakeJob struct {
	name     string
	statuses []operation.Status
	polls    int
}

func (j *fakeJob) Name() string { return j.name }

func (j *fakeJob) Poll(_ context.Context) (operation.Status, error) {
	i := j.polls
	if i >= len(j.statuses) {
		i = len(j.statuses) - 1
	}
	j.polls++
	return j.statuses[i], nil
}

type fakeImporter struct {
	job     *fakeJob
	err     error
	sources []operation.Source
}

func (f *fakeImporter) Import(_ context.Context, src operation.Source) (operation.Job, error) {
	f.sources = append(f.sources, src)
	if f.err != nil {
		return nil, f.err
	}
	return f.job, nil
}

func (f *fakeImporter) Resume(name string) (operation.Job, error) {
	if f.job == nil || f.job.name != name {
		return &missingJob{name: name}, nil
	}
	return f.job, nil
}

type missingJob struct{ name string }

func (j *missingJob) Name() string { return j.name }

func (j *missingJob) Poll(_ context.Context) (operation.Status, error) {
	return operation.Status{}, errOperationMissing
}

// fixture wires real use cases over in-memory adapters behind the full router.
type fixture struct {
	store    *memStore
	searcher *fakeSearcher
	importer *fakeImporter
	handler  http.Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:    &memStore{},
		searcher: &fakeSearcher{resp: &result.Response{TotalSize: 1, Results: []result.Item{{ID: "doc-1"}}}},
		importer: &fakeImporter{job: &fakeJob{
			name: "projects/p/locations/global/collections/default_collection/dataStores/ds/branches/0/operations/import-documents-1",
			statuses: []operation.Status{
				{Done: false},
				{Done: true, SuccessCount: 1, TotalCount: 1},
			},
		}},
	}

	ingest := ingestuc.New(f.store, f.importer, nil, ingestuc.Config{
		Bucket:              testBucket,
		RecordDir:           t.TempDir(),
		WaitTimeout:         2 * time.Second,
		PollInitialInterval: time.Millisecond,
		PollMaxInterval:     5 * time.Millisecond,
	})
	srv := NewServer(
		searchuc.New(f.searcher),
		uploaduc.New(f.store),
		ingest,
		healthuc.New(f.store, nil),
		1<<20,
	)
	f.handler = NewRouter(srv, RouterConfig{})
	return f
}

func (f *fixture) do(req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)
	return rr
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// multipartRequest builds POST /upload with one "file" part of the given content type.
func multipartRequest(t *testing.T, filename, contentType string, body []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(body)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}
