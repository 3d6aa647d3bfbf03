package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/nexus/paper-discovery-service/internal/catalog"
	"github.com/nexus/paper-discovery-service/internal/domain"
	"github.com/nexus/paper-discovery-service/internal/observability"
	"github.com/nexus/paper-discovery-service/internal/resolver"
)

const (
	defaultMaxBodyBytes = 1 << 20 // 1 MB limit for request bodies
	maxInputLength      = 2048
	maxChatMessageLen   = 10000
	maxChatHistory      = 50
)

// resolvePaper handles POST /resolve.
func (s *Server) resolvePaper(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req resolveRequest
	if !decodeBody(w, r, &req) {
		return
	}
	input := strings.TrimSpace(req.Input)
	if input == "" {
		writeError(w, http.StatusBadRequest, "input is required")
		return
	}
	if len(input) > maxInputLength {
		writeError(w, http.StatusBadRequest, "input is too long")
		return
	}
	if s.deps.Resolver == nil {
		writeDomainError(w, domain.ErrServiceUnavailable)
		return
	}

	meta, err := s.deps.Resolver.Resolve(ctx, input)
	if err != nil {
		logger := observability.LoggerFromContext(ctx, s.logger)
		logger.Info().Err(err).Str("input", input).Msg("resolution failed")

		kind := domain.KindOf(err)
		code := string(kind)
		if code == "" {
			code = "resolution_failed"
		}
		writeJSON(w, resolutionStatus(kind), resolveErrorResponse{
			Error:   code,
			Message: resolver.UserMessage(input, err),
		})
		return
	}

	writeJSON(w, http.StatusOK, meta)
}

// listPapers handles GET /papers.
func (s *Server) listPapers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, pageSize := parsePaginationParams(r)

	result := s.deps.Catalog.Snapshot().Run(catalog.Query{
		Category: q.Get("category"),
		Search:   q.Get("q"),
		Sort:     catalog.ParseSortOption(q.Get("sort")),
		Page:     page,
		PageSize: pageSize,
	})
	result.Papers = nonNilPapers(result.Papers)

	writeJSON(w, http.StatusOK, result)
}

// getPaper handles GET /papers/{paperID}.
func (s *Server) getPaper(w http.ResponseWriter, r *http.Request) {
	paperID := chi.URLParam(r, "paperID")
	paper, ok := s.deps.Catalog.Snapshot().Get(paperID)
	if !ok {
		writeDomainError(w, domain.NewNotFoundError("paper", paperID))
		return
	}
	writeJSON(w, http.StatusOK, paper)
}

// listCategories handles GET /categories.
func (s *Server) listCategories(w http.ResponseWriter, _ *http.Request) {
	papers := s.deps.Catalog.Snapshot().Papers()
	writeJSON(w, http.StatusOK, categoriesResponse{Categories: catalog.Categories(papers)})
}

// submitPaper handles POST /submissions.
func (s *Server) submitPaper(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req catalog.SubmissionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if s.deps.Submitter == nil {
		writeDomainError(w, domain.ErrServiceUnavailable)
		return
	}

	paper, err := s.deps.Submitter.Submit(ctx, &req)
	if err != nil {
		if !isClientFault(err) {
			logger := observability.LoggerFromContext(ctx, s.logger)
			logger.Error().Err(err).Str("mode", string(req.Mode)).Msg("submission failed")
		}
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, paper)
}

// parsePaginationParams extracts page and page_size from query parameters.
// Missing or malformed values yield zero, which the catalog query replaces
// with its defaults.
func parsePaginationParams(r *http.Request) (page, pageSize int) {
	if v := r.URL.Query().Get("page"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			page = parsed
		}
	}
	if v := r.URL.Query().Get("page_size"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			pageSize = parsed
		}
	}
	return page, pageSize
}

// decodeBody decodes a JSON request body into v, writing a 400 or 413
// response and returning false on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid JSON request body")
		return false
	}
	return true
}

// isClientFault reports whether err was caused by the request itself.
func isClientFault(err error) bool {
	return errors.Is(err, domain.ErrInvalidInput) ||
		errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrAlreadyExists)
}

// resolutionStatus maps a resolution failure kind to an HTTP status.
func resolutionStatus(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindInvalidInput:
		return http.StatusBadRequest
	case domain.KindUndetected:
		return http.StatusUnprocessableEntity
	case domain.KindNetwork, domain.KindInvalidResponse:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeDomainError maps domain errors to appropriate HTTP status codes
// and writes a JSON error response. Internal error details are not leaked to clients.
func writeDomainError(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "resource not found")
	case errors.Is(err, domain.ErrInvalidInput):
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			writeError(w, http.StatusBadRequest, ve.Error())
		} else {
			writeError(w, http.StatusBadRequest, "invalid input")
		}
	case errors.Is(err, domain.ErrAlreadyExists):
		writeError(w, http.StatusConflict, "resource already exists")
	case errors.Is(err, domain.ErrUndetected):
		writeError(w, http.StatusUnprocessableEntity, "unrecognized identifier")
	case errors.Is(err, domain.ErrNetwork), errors.Is(err, domain.ErrInvalidResponse):
		writeError(w, http.StatusBadGateway, "upstream source failed")
	case errors.Is(err, domain.ErrServiceUnavailable):
		writeError(w, http.StatusServiceUnavailable, "service unavailable")
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
