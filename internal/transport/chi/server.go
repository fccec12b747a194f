package chi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/classdex/internal/domain"
	"github.com/kailas-cloud/classdex/internal/domain/search/request"
	"github.com/kailas-cloud/classdex/internal/domain/term"
	logpkg "github.com/kailas-cloud/classdex/internal/logger"
	"github.com/kailas-cloud/classdex/internal/metrics"
	"github.com/kailas-cloud/classdex/internal/transport/dto"
	healthuc "github.com/kailas-cloud/classdex/internal/usecase/health"
	searchuc "github.com/kailas-cloud/classdex/internal/usecase/search"
)

// maxBodyBytes bounds a search request body.
const maxBodyBytes = 64 << 10

// Server serves the class search REST API.
type Server struct {
	search *searchuc.Service
	health *healthuc.Service
	limits request.Limits
	terms  []term.Term
	logger *zap.Logger
}

// NewServer creates an HTTP API server. terms lists the terms served, for GET /terms.
func NewServer(
	search *searchuc.Service,
	health *healthuc.Service,
	limits request.Limits,
	terms []term.Term,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{search: search, health: health, limits: limits, terms: terms, logger: logger}
}

// Handler builds the router with the full middleware chain. mcp, when
// non-nil, is mounted at mcpPath behind the same auth and metrics.
func (s *Server) Handler(apiKeys []string, mcpPath string, mcp http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(JSONRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(WideEvent(s.logger))
	r.Use(BearerAuthMiddleware(apiKeys))
	r.Use(metrics.Middleware())
	s.Register(r)
	if mcp != nil {
		r.Handle(mcpPath, mcp)
	}
	return r
}

// Register mounts the API routes on r.
func (s *Server) Register(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Get("/terms", s.ListTerms)
	r.Route("/terms/{term}", func(r chi.Router) {
		r.Post("/search", s.SearchClasses)
		r.Get("/classes/{classNumbers}", s.GetClasses)
		r.Get("/classes/{classNumbers}/availability", s.GetAvailability)
		r.Get("/instructors/{name}/classes", s.SearchByInstructor)
		r.Get("/options/{field}", s.GetFilterOptions)
		r.Get("/resolve/{field}", s.ResolveValue)
	})
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, dto.CodeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, dto.CodeBadRequest, "method not allowed")
	})
}

type termInfo struct {
	Term        string `json:"term"`
	Description string `json:"description"`
}

// ListTerms handles GET /terms.
func (s *Server) ListTerms(w http.ResponseWriter, _ *http.Request) {
	items := make([]termInfo, len(s.terms))
	for i, t := range s.terms {
		items[i] = termInfo{Term: t.String(), Description: t.Description()}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

// SearchClasses handles POST /terms/{term}/search.
func (s *Server) SearchClasses(w http.ResponseWriter, r *http.Request) {
	var args dto.SearchArgs
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&args); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, dto.CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	args.Term = chi.URLParam(r, "term")

	s.runSearch(w, r, &args)
}

// SearchByInstructor handles GET /terms/{term}/instructors/{name}/classes.
func (s *Server) SearchByInstructor(w http.ResponseWriter, r *http.Request) {
	args := dto.SearchArgs{
		Term:       chi.URLParam(r, "term"),
		Instructor: chi.URLParam(r, "name"),
	}
	var err error
	if args.Page, err = queryInt(r, "page"); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if args.ResultsPerPage, err = queryInt(r, "results_per_page"); err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	s.runSearch(w, r, &args)
}

func (s *Server) runSearch(w http.ResponseWriter, r *http.Request, args *dto.SearchArgs) {
	req, err := args.Request(s.limits)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	page, err := s.search.Search(r.Context(), req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.NewSearchResponse(req.Term(), &page))
}

// GetClasses handles GET /terms/{term}/classes/{classNumbers}.
func (s *Server) GetClasses(w http.ResponseWriter, r *http.Request) {
	t, err := term.Parse(chi.URLParam(r, "term"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	found, missing, err := s.search.ClassDetails(r.Context(), t, chi.URLParam(r, "classNumbers"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.NewClassDetailsResponse(t, found, missing))
}

// GetAvailability handles GET /terms/{term}/classes/{classNumbers}/availability.
func (s *Server) GetAvailability(w http.ResponseWriter, r *http.Request) {
	t, err := term.Parse(chi.URLParam(r, "term"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	avail, missing, err := s.search.SeatAvailability(r.Context(), t, chi.URLParam(r, "classNumbers"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AvailabilityResponse{Term: t.String(), Classes: avail, NotFound: missing})
}

// GetFilterOptions handles GET /terms/{term}/options/{field}.
// The optional narrow_field and narrow_value query parameters restrict the counted sections.
func (s *Server) GetFilterOptions(w http.ResponseWriter, r *http.Request) {
	t, err := term.Parse(chi.URLParam(r, "term"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	field := chi.URLParam(r, "field")
	q := r.URL.Query()
	narrow, err := dto.NarrowSet(q.Get("narrow_field"), q.Get("narrow_value"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	c, err := s.search.FilterOptions(r.Context(), t, field, narrow)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.NewOptionsResponse(t, field, c))
}

// ResolveValue handles GET /terms/{term}/resolve/{field}?value=.
func (s *Server) ResolveValue(w http.ResponseWriter, r *http.Request) {
	t, err := term.Parse(chi.URLParam(r, "term"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	field := chi.URLParam(r, "field")
	value := r.URL.Query().Get("value")
	res, err := s.search.ResolveValue(r.Context(), t, field, value)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.NewResolveResponse(field, value, res))
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
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

	writeJSON(w, httpStatus, healthResponse{Status: string(report.Status), Checks: checks})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.NewValidation(name, "must be an integer, got %q", raw)
	}
	return n, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code dto.ErrorCode, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func statusFor(code dto.ErrorCode) int {
	switch code {
	case dto.CodeValidationFailed, dto.CodeBadRequest:
		return http.StatusBadRequest
	case dto.CodeNoMatch:
		return http.StatusUnprocessableEntity
	case dto.CodeNotFound:
		return http.StatusNotFound
	case dto.CodeStoreUnavailable:
		return http.StatusBadGateway
	case dto.CodeUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	resp := dto.NewErrorResponse(err)
	status := statusFor(resp.Code)

	log := logpkg.FromContext(r.Context())
	if status >= http.StatusInternalServerError {
		log.Error("request failed", zap.String("code", string(resp.Code)), zap.Error(err))
	} else {
		log.Debug("request rejected", zap.String("code", string(resp.Code)), zap.Error(err))
	}

	writeJSON(w, status, resp)
}
