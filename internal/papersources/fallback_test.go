package papersources

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexus/paper-discovery-service/internal/domain"
)

type recordedAttempt struct {
	source, strategy, outcome string
}

type fakeRecorder struct {
	mu       sync.Mutex
	attempts []recordedAttempt
}

func (r *fakeRecorder) RecordFetchAttempt(source, strategy, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts = append(r.attempts, recordedAttempt{source, strategy, outcome})
}

// relayServer serves /origin directly and two relays under /relay1 and
// /relay2. Each route answers with the configured status and body.
type relayServer struct {
	*httptest.Server
	mu     sync.Mutex
	status map[string]int
	body   map[string]string
	hits   []string
	relayd []string
}

func newRelayServer(t *testing.T) *relayServer {
	t.Helper()
	rs := &relayServer{
		status: map[string]int{},
		body:   map[string]string{},
	}
	rs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rs.mu.Lock()
		rs.hits = append(rs.hits, r.URL.Path)
		if r.URL.Path != "/origin" {
			rs.relayd = append(rs.relayd, r.URL.Query().Get("url"))
		}
		status, ok := rs.status[r.URL.Path]
		body := rs.body[r.URL.Path]
		rs.mu.Unlock()

		if !ok {
			status = http.StatusOK
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(rs.Close)
	return rs
}

func (rs *relayServer) fetcher() *Fetcher {
	return NewFetcher(NewHTTPClient(HTTPClientConfig{RateLimit: 1000, BurstSize: 1000}), []Strategy{
		Direct(),
		Relay("relay1", rs.URL+"/relay1?url="),
		Relay("relay2", rs.URL+"/relay2?url="),
	}, zerolog.Nop())
}

func TestDefaultStrategies(t *testing.T) {
	strategies := DefaultStrategies()
	require.Len(t, strategies, 3)

	target := "https://api.crossref.org/works/10.1000/xyz"
	assert.Equal(t, "direct", strategies[0].Name)
	assert.Equal(t, target, strategies[0].Rewrite(target))
	assert.Equal(t, "https://api.allorigins.win/raw?url="+url.QueryEscape(target), strategies[1].Rewrite(target))
	assert.Equal(t, "https://corsproxy.io/?"+url.QueryEscape(target), strategies[2].Rewrite(target))
}

func TestFetcher_Fetch(t *testing.T) {
	ctx := context.Background()

	t.Run("direct success short-circuits", func(t *testing.T) {
		rs := newRelayServer(t)
		rs.body["/origin"] = "direct-payload"

		rec := &fakeRecorder{}
		body, err := rs.fetcher().WithRecorder(rec).Fetch(ctx, domain.SourceTypeCrossRef, rs.URL+"/origin")
		require.NoError(t, err)
		assert.Equal(t, "direct-payload", string(body))
		assert.Equal(t, []string{"/origin"}, rs.hits)
		assert.Equal(t, []recordedAttempt{{"crossref", "direct", "success"}}, rec.attempts)
	})

	t.Run("direct failure falls back to first relay", func(t *testing.T) {
		rs := newRelayServer(t)
		rs.status["/origin"] = http.StatusForbidden
		rs.body["/relay1"] = "relay1-payload"

		body, err := rs.fetcher().Fetch(ctx, domain.SourceTypeCrossRef, rs.URL+"/origin")
		require.NoError(t, err)
		assert.Equal(t, "relay1-payload", string(body))
		assert.Equal(t, []string{"/origin", "/relay1"}, rs.hits)
		assert.Equal(t, []string{rs.URL + "/origin"}, rs.relayd)
	})

	t.Run("direct and first relay failure falls back to second relay", func(t *testing.T) {
		rs := newRelayServer(t)
		rs.status["/origin"] = http.StatusInternalServerError
		rs.status["/relay1"] = http.StatusBadGateway
		rs.body["/relay2"] = "relay2-payload"

		body, err := rs.fetcher().Fetch(ctx, domain.SourceTypeArXiv, rs.URL+"/origin")
		require.NoError(t, err)
		assert.Equal(t, "relay2-payload", string(body))
		assert.Equal(t, []string{"/origin", "/relay1", "/relay2"}, rs.hits)
	})

	t.Run("all strategies failing is a network error", func(t *testing.T) {
		rs := newRelayServer(t)
		rs.status["/origin"] = http.StatusNotFound
		rs.status["/relay1"] = http.StatusNotFound
		rs.status["/relay2"] = http.StatusNotFound

		rec := &fakeRecorder{}
		body, err := rs.fetcher().WithRecorder(rec).Fetch(ctx, domain.SourceTypePubMed, rs.URL+"/origin")
		require.Error(t, err)
		assert.Nil(t, body)
		assert.True(t, errors.Is(err, domain.ErrNetwork))
		assert.Equal(t, NetworkErrorMessage, err.Error())
		assert.Equal(t, domain.KindNetwork, domain.KindOf(err))
		assert.Len(t, rec.attempts, 3)

		var apiErr *domain.ExternalAPIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	})

	t.Run("cancelled context stops the chain", func(t *testing.T) {
		rs := newRelayServer(t)
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := rs.fetcher().Fetch(cctx, domain.SourceTypeArXiv, rs.URL+"/origin")
		require.Error(t, err)
		assert.True(t, errors.Is(err, context.Canceled))
		assert.Empty(t, rs.hits)
	})
}
