package httpserver

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/nexus/paper-discovery-service/internal/domain"
	"github.com/nexus/paper-discovery-service/internal/observability"
)

// toggleUpvote handles POST /papers/{paperID}/upvote.
func (s *Server) toggleUpvote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if s.deps.Preferences == nil {
		writeDomainError(w, domain.ErrServiceUnavailable)
		return
	}

	result, err := s.deps.Preferences.ToggleUpvote(ctx, observability.UserIDFromContext(ctx), chi.URLParam(r, "paperID"))
	if err != nil {
		s.logFailure(r, err, "upvote toggle failed")
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// listUpvotes handles GET /upvotes.
func (s *Server) listUpvotes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if s.deps.Preferences == nil {
		writeDomainError(w, domain.ErrServiceUnavailable)
		return
	}

	ids, err := s.deps.Preferences.Upvoted(ctx, observability.UserIDFromContext(ctx))
	if err != nil {
		s.logFailure(r, err, "listing upvotes failed")
		writeDomainError(w, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, upvotesResponse{PaperIDs: ids})
}

// getReadingList handles GET /reading-list.
func (s *Server) getReadingList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if s.deps.Preferences == nil {
		writeDomainError(w, domain.ErrServiceUnavailable)
		return
	}

	items, err := s.deps.Preferences.ReadingList(ctx, observability.UserIDFromContext(ctx))
	if err != nil {
		s.logFailure(r, err, "reading list lookup failed")
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, readingListResponse{Items: nonNilPapers(items)})
}

// addToReadingList handles POST /reading-list.
func (s *Server) addToReadingList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req readingListRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.PaperID = strings.TrimSpace(req.PaperID)
	if req.PaperID == "" {
		writeError(w, http.StatusBadRequest, "paperId is required")
		return
	}
	if s.deps.Preferences == nil {
		writeDomainError(w, domain.ErrServiceUnavailable)
		return
	}

	items, err := s.deps.Preferences.AddToReadingList(ctx, observability.UserIDFromContext(ctx), req.PaperID)
	if err != nil {
		s.logFailure(r, err, "reading list add failed")
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, readingListResponse{Items: nonNilPapers(items)})
}

// removeFromReadingList handles DELETE /reading-list/{index}.
func (s *Server) removeFromReadingList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "index must be an integer")
		return
	}
	if s.deps.Preferences == nil {
		writeDomainError(w, domain.ErrServiceUnavailable)
		return
	}

	items, err := s.deps.Preferences.RemoveFromReadingList(ctx, observability.UserIDFromContext(ctx), index)
	if err != nil {
		s.logFailure(r, err, "reading list remove failed")
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, readingListResponse{Items: nonNilPapers(items)})
}

// logFailure logs unexpected handler errors. Client mistakes are not logged.
func (s *Server) logFailure(r *http.Request, err error, msg string) {
	if isClientFault(err) {
		return
	}
	logger := observability.LoggerFromContext(r.Context(), s.logger)
	logger.Error().Err(err).Str("path", r.URL.Path).Msg(msg)
}
