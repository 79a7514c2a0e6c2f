package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/cymbalsearch/internal/domain"
	"github.com/kailas-cloud/cymbalsearch/internal/domain/document"
	"github.com/kailas-cloud/cymbalsearch/internal/domain/operation"
	"github.com/kailas-cloud/cymbalsearch/internal/domain/search/request"
	"github.com/kailas-cloud/cymbalsearch/internal/domain/search/result"
	"github.com/kailas-cloud/cymbalsearch/internal/logger"
	healthuc "github.com/kailas-cloud/cymbalsearch/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/cymbalsearch/internal/usecase/ingest"
)

// Message prefixes of 500 replies, kept for existing clients.
const (
	prefixUpload = "File upload failed: "
	prefixSearch = "Search failed: "
	prefixImport = "Datastore import failed: "
)

// uploadFormField is the multipart field carrying the PDF.
const uploadFormField = "file"

// ResultSchemaHeader announces the search response contract.
const ResultSchemaHeader = "X-Result-Schema"

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, prefix string) bool

// Server serves the cymbalsearch HTTP API.
type Server struct {
	search        Searcher
	upload        Uploader
	ingest        Ingester
	health        HealthChecker
	maxUpload     int64
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. maxUploadBytes bounds POST /upload bodies.
func NewServer(search Searcher, upload Uploader, ingest Ingester, health HealthChecker, maxUploadBytes int64) *Server {
	return &Server{
		search:    search,
		upload:    upload,
		ingest:    ingest,
		health:    health,
		maxUpload: maxUploadBytes,
		errorHandlers: []errorHandler{
			maxBytesHandler,
			clientErrorHandler,
			sentinelHandler(domain.ErrOperationNotFound, http.StatusNotFound, ErrorCodeNotFound),
			importTimeoutHandler,
		},
	}
}

// Ping handles GET /ping.
func (s *Server) Ping(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, PingResponse{Status: "pong"})
}

// Search handles POST /search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	q, err := searchQueryFromRequest(req)
	if err != nil {
		s.handleDomainError(w, r, err, prefixSearch)
		return
	}

	resp, err := s.search.Search(r.Context(), q)
	if err != nil {
		s.handleDomainError(w, r, err, prefixSearch)
		return
	}

	w.Header().Set(ResultSchemaHeader, result.SchemaVersion)
	writeJSON(w, http.StatusOK, resp)
}

// Upload handles POST /upload.
func (s *Server) Upload(w http.ResponseWriter, r *http.Request) {
	if s.maxUpload > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	}

	file, header, err := r.FormFile(uploadFormField)
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			s.handleDomainError(w, r, err, prefixUpload)
			return
		}
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest,
			fmt.Sprintf("multipart field %q is required: %v", uploadFormField, err))
		return
	}
	defer func() { _ = file.Close() }()
	if r.MultipartForm != nil {
		defer func() { _ = r.MultipartForm.RemoveAll() }()
	}

	res, err := s.upload.UploadPDF(r.Context(), file, header.Filename, header.Header.Get("Content-Type"))
	if err != nil {
		s.handleDomainError(w, r, err, prefixUpload)
		return
	}

	writeJSON(w, http.StatusOK, UploadResponse{FileName: res.ObjectName, URL: res.URL})
}

// ImportDocument handles POST /datastore/import.
func (s *Server) ImportDocument(w http.ResponseWriter, r *http.Request) {
	async, ok := bindAsync(w, r)
	if !ok {
		return
	}

	var req ImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	res, err := s.ingest.Ingest(r.Context(), ingestuc.Params{
		PDFObjectPath: req.PDFGCSFilename,
		Metadata: document.Metadata{
			Category:    req.Category,
			Tenant:      req.Tenant,
			Description: req.Description,
			Year:        req.Year,
		},
	}, async)
	if err != nil {
		s.handleDomainError(w, r, err, prefixImport)
		return
	}

	status, code := ImportStatusSuccess, http.StatusOK
	if async {
		status, code = ImportStatusAccepted, http.StatusAccepted
	}
	writeJSON(w, code, ImportResponse{
		Status:    status,
		Data:      res.Record.Name,
		URL:       res.Record.URL,
		Datastore: res.Operation.Name,
	})
}

// ImportSource handles POST /datastore/import/source.
func (s *Server) ImportSource(w http.ResponseWriter, r *http.Request) {
	async, ok := bindAsync(w, r)
	if !ok {
		return
	}

	var req ImportSourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	src, err := operation.NewSource(req.GCSURI, req.BigQueryDataset, req.BigQueryTable)
	if err != nil {
		s.handleDomainError(w, r, err, prefixImport)
		return
	}

	if async {
		op, err := s.ingest.Submit(r.Context(), src)
		if err != nil {
			s.handleDomainError(w, r, err, prefixImport)
			return
		}
		writeJSON(w, http.StatusAccepted, op)
		return
	}

	op, err := s.ingest.Import(r.Context(), src)
	if err != nil {
		s.handleDomainError(w, r, err, prefixImport)
		return
	}
	writeJSON(w, http.StatusOK, op)
}

// GetOperation handles GET /datastore/operations?name=.
func (s *Server) GetOperation(w http.ResponseWriter, r *http.Request) {
	var name string
	if err := runtime.BindQueryParameter("form", true, true, "name", r.URL.Query(), &name); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid query parameter name: "+err.Error())
		return
	}

	op, err := s.ingest.Status(r.Context(), name)
	if err != nil {
		s.handleDomainError(w, r, err, prefixImport)
		return
	}
	writeJSON(w, http.StatusOK, OperationResponse(op))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// bindAsync reads the optional ?async flag. It writes a 400 and returns false when malformed.
func bindAsync(w http.ResponseWriter, r *http.Request) (bool, bool) {
	var async bool
	if err := runtime.BindQueryParameter("form", true, false, "async", r.URL.Query(), &async); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid query parameter async: "+err.Error())
		return false, false
	}
	return async, true
}

func searchQueryFromRequest(req SearchRequest) (request.Query, error) {
	var opts []request.Option
	if req.SummaryResultCount != nil {
		opts = append(opts, request.WithSummaryResultCount(*req.SummaryResultCount))
	}
	// page_size wins over the camelCase alias when both are sent.
	switch {
	case req.PageSize != nil:
		opts = append(opts, request.WithPageSize(*req.PageSize))
	case req.PageSizeAlias != nil:
		opts = append(opts, request.WithPageSize(*req.PageSizeAlias))
	}
	if req.MaxSnippetCount != nil {
		opts = append(opts, request.WithMaxSnippetCount(*req.MaxSnippetCount))
	}
	if req.IncludeCitations != nil {
		opts = append(opts, request.WithIncludeCitations(*req.IncludeCitations))
	}
	if req.UseSemanticChunks != nil {
		opts = append(opts, request.WithUseSemanticChunks(*req.UseSemanticChunks))
	}
	if req.MaxExtractiveAnswerCount != nil {
		opts = append(opts, request.WithMaxExtractiveAnswerCount(*req.MaxExtractiveAnswerCount))
	}
	if req.MaxExtractiveSegmentCount != nil {
		opts = append(opts, request.WithMaxExtractiveSegmentCount(*req.MaxExtractiveSegmentCount))
	}
	return request.New(req.Query, opts...)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, _ string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, err.Error())
		return true
	}
}

func clientErrorHandler(w http.ResponseWriter, err error, _ string) bool {
	if !domain.IsClientError(err) {
		return false
	}
	writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, err.Error())
	return true
}

func maxBytesHandler(w http.ResponseWriter, err error, _ string) bool {
	var mbe *http.MaxBytesError
	if !errors.As(err, &mbe) {
		return false
	}
	writeError(w, http.StatusRequestEntityTooLarge, ErrorCodeTooLarge,
		fmt.Sprintf("request body exceeds %d bytes", mbe.Limit))
	return true
}

// importTimeoutHandler replies 504 and names the still-running operation so it can be polled.
func importTimeoutHandler(w http.ResponseWriter, err error, prefix string) bool {
	if !errors.Is(err, domain.ErrImportTimeout) {
		return false
	}
	resp := ErrorResponse{Code: ErrorCodeImportTimeout, Message: prefix + err.Error()}
	var te *domain.ImportTimeoutError
	if errors.As(err, &te) {
		resp.Operation = te.Operation
	}
	writeJSON(w, http.StatusGatewayTimeout, resp)
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error, prefix string) {
	log := logger.FromContext(r.Context())
	for _, h := range s.errorHandlers {
		if h(w, err, prefix) {
			log.Warn("request failed", zap.Error(err))
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, prefix+err.Error())
}
