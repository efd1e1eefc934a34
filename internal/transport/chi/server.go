// Package chi implements the HTTP API over the chi router.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/chemlab-cloud/chemsearch/internal/domain"
	"github.com/chemlab-cloud/chemsearch/internal/domain/search/request"
	analyticsuc "github.com/chemlab-cloud/chemsearch/internal/usecase/analytics"
	searchuc "github.com/chemlab-cloud/chemsearch/internal/usecase/search"
	sessionuc "github.com/chemlab-cloud/chemsearch/internal/usecase/session"
	suggestuc "github.com/chemlab-cloud/chemsearch/internal/usecase/suggest"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server exposes the search platform over HTTP.
type Server struct {
	search        *searchuc.Service
	suggest       *suggestuc.Service
	session       *sessionuc.Service
	analytics     *analyticsuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	search *searchuc.Service,
	suggest *suggestuc.Service,
	session *sessionuc.Service,
	analytics *analyticsuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		search:    search,
		suggest:   suggest,
		session:   session,
		analytics: analytics,
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrBookmarkLimit, http.StatusConflict, codeBookmarkLimit),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, codeNotFound),
		sentinelHandler(domain.ErrInvalidRecord, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrInvalidField, http.StatusBadRequest, codeValidationFailed),
	}
	return s
}

// Routes builds the route tree. Middlewares are attached by the caller.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/search", s.handleSearch)
		r.Get("/suggestions", s.handleSuggestions)

		r.Get("/history", s.handleGetHistory)
		r.Delete("/history", s.handleClearHistory)

		r.Get("/bookmarks", s.handleListBookmarks)
		r.Post("/bookmarks", s.handleCreateBookmark)
		r.Delete("/bookmarks/{id}", s.handleDeleteBookmark)

		r.Post("/events/click", s.handleClickEvent)

		r.Get("/analytics", s.handleGetAnalytics)
		r.Post("/analytics/reset", s.handleResetAnalytics)
	})

	r.Get("/healthz", s.handleHealth)
	r.Get("/metrics", s.handleMetrics)

	return r
}

// handleSearch handles POST /api/v1/search.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	filters, err := filtersFrom(req.Filters)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	searchReq, err := request.New(
		req.Query, filters,
		request.Sort(req.Sort), request.Order(req.Order),
		req.Limit, req.Offset,
	)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	resp, err := s.search.Search(r.Context(), &searchReq)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, searchResponseFrom(resp, searchReq.Limit(), searchReq.Offset()))
}

// handleSuggestions handles GET /api/v1/suggestions?q=.
func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")

	items, err := s.suggest.Suggest(r.Context(), q)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	if items == nil {
		items = []suggestuc.Suggestion{}
	}
	writeJSON(w, http.StatusOK, suggestionsResponse{Items: items})
}

// handleGetHistory handles GET /api/v1/history.
func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, historyResponse{Items: s.session.History()})
}

// handleClearHistory handles DELETE /api/v1/history.
func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	s.session.ClearHistory()
	w.WriteHeader(http.StatusNoContent)
}

// handleListBookmarks handles GET /api/v1/bookmarks.
func (s *Server) handleListBookmarks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, bookmarksResponse{Items: s.session.Bookmarks()})
}

// handleCreateBookmark handles POST /api/v1/bookmarks.
func (s *Server) handleCreateBookmark(w http.ResponseWriter, r *http.Request) {
	var req createBookmarkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	filters, err := filtersFrom(req.Filters)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	bm, err := s.session.AddBookmark(req.Name, req.Query, filters)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.Header().Set("Location", "/api/v1/bookmarks/"+bm.ID)
	writeJSON(w, http.StatusCreated, bm)
}

// handleDeleteBookmark handles DELETE /api/v1/bookmarks/{id}. Deletion is
// idempotent, so an unknown ID still returns 204.
func (s *Server) handleDeleteBookmark(w http.ResponseWriter, r *http.Request) {
	s.session.RemoveBookmark(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

// handleClickEvent handles POST /api/v1/events/click.
func (s *Server) handleClickEvent(w http.ResponseWriter, r *http.Request) {
	var req clickEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.RecordID == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "record_id is required")
		return
	}

	s.analytics.RecordResultClick(req.RecordID)
	w.WriteHeader(http.StatusNoContent)
}

// handleGetAnalytics handles GET /api/v1/analytics.
func (s *Server) handleGetAnalytics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.analytics.Snapshot())
}

// handleResetAnalytics handles POST /api/v1/analytics/reset.
func (s *Server) handleResetAnalytics(w http.ResponseWriter, r *http.Request) {
	s.analytics.Reset()
	w.WriteHeader(http.StatusNoContent)
}

// handleHealth handles GET /healthz.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleMetrics handles GET /metrics.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrNotFound,
		domain.ErrBookmarkLimit,
		domain.ErrInvalidRecord,
		domain.ErrInvalidField,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
