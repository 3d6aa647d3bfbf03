package httpserver

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nexus/paper-discovery-service/internal/observability"
)

func TestCorrelationIDMiddleware_UsesHeader(t *testing.T) {
	var captured string
	handler := correlationIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = observability.CorrelationIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(headerCorrelationID, "corr-123")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if captured != "corr-123" {
		t.Errorf("expected corr-123 in context, got %q", captured)
	}
	if rr.Header().Get(headerCorrelationID) != "corr-123" {
		t.Errorf("expected corr-123 in response header, got %q", rr.Header().Get(headerCorrelationID))
	}
}

func TestCorrelationIDMiddleware_FallsBackToRequestID(t *testing.T) {
	var captured string
	handler := middleware.RequestID(correlationIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = observability.CorrelationIDFromContext(r.Context())
	})))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if captured == "" {
		t.Fatal("expected a correlation ID")
	}
	if rr.Header().Get(headerCorrelationID) != captured {
		t.Errorf("header %q does not match context %q", rr.Header().Get(headerCorrelationID), captured)
	}
}

func TestCorrelationIDMiddleware_GeneratesUUID(t *testing.T) {
	var captured string
	handler := correlationIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = observability.CorrelationIDFromContext(r.Context())
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if _, err := uuid.Parse(captured); err != nil {
		t.Errorf("expected generated UUID, got %q", captured)
	}
}

func TestUserIDMiddleware(t *testing.T) {
	var captured string
	handler := userIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = observability.UserIDFromContext(r.Context())
	}))

	t.Run("header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(headerUserID, " user-7 ")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if captured != "user-7" {
			t.Errorf("expected user-7, got %q", captured)
		}
	})

	t.Run("anonymous", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
		if _, err := uuid.Parse(captured); err != nil {
			t.Errorf("expected generated UUID, got %q", captured)
		}
		if rr.Header().Get(headerUserID) != captured {
			t.Errorf("expected anonymous ID echoed, got %q", rr.Header().Get(headerUserID))
		}
	})

	t.Run("too long", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(headerUserID, strings.Repeat("u", maxUserIDLength+1))
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rr.Code)
		}
	})
}

func TestJSONContentTypeMiddleware(t *testing.T) {
	handler := jsonContentTypeMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected application/json, got %q", ct)
	}
}

func TestBodyLimit_RejectsOversizedBody(t *testing.T) {
	srv := NewServer(Config{Address: ":0", MaxBodyBytes: 64}, Deps{}, zerolog.Nop())

	body := `{"input":"` + strings.Repeat("x", 200) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/resolve", bytes.NewBufferString(body))
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413, got %d", rr.Code)
	}
}

func TestRecoverer_ReturnsServerError(t *testing.T) {
	srv := NewServer(Config{Address: ":0"}, Deps{}, zerolog.Nop())
	srv.router.Get("/panic", func(http.ResponseWriter, *http.Request) { panic("boom") })

	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/panic", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rr.Code)
	}
}

func TestMissingServicesReturnUnavailable(t *testing.T) {
	srv := NewServer(Config{Address: ":0"}, Deps{}, zerolog.Nop())

	tests := []struct {
		method string
		path   string
		body   string
	}{
		{http.MethodPost, "/api/v1/resolve", `{"input":"2301.00001"}`},
		{http.MethodPost, "/api/v1/papers/p1/upvote", ""},
		{http.MethodGet, "/api/v1/reading-list", ""},
		{http.MethodPost, "/api/v1/assistant/chat", `{"message":"hi"}`},
	}
	for _, tc := range tests {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, bytes.NewBufferString(tc.body))
			rr := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rr, req)
			if rr.Code != http.StatusServiceUnavailable {
				t.Errorf("expected 503, got %d", rr.Code)
			}
		})
	}
}
