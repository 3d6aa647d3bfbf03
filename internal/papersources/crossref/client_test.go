package crossref

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexus/paper-discovery-service/internal/domain"
	"github.com/nexus/paper-discovery-service/internal/papersources"
)

const workResponseJSON = `{
  "status": "ok",
  "message-type": "work",
  "message": {
    "DOI": "10.1038/nature14539",
    "title": ["Deep learning"],
    "abstract": "<jats:p>Deep learning allows computational models\n that are composed of multiple layers.</jats:p>",
    "author": [
      {"given": "Yann", "family": "LeCun", "sequence": "first"},
      {"given": "Yoshua", "family": "Bengio"},
      {"name": "Anonymous Consortium"}
    ],
    "issued": {"date-parts": [[2015, 5, 27]]},
    "subject": ["Multidisciplinary"]
  }
}`

const sparseWorkJSON = `{
  "status": "ok",
  "message": {
    "title": [],
    "issued": {"date-parts": [[null]]}
  }
}`

var fixedNow = time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)

func createTestClient(baseURL string) *Client {
	httpClient := papersources.NewHTTPClient(papersources.HTTPClientConfig{RateLimit: 1000, BurstSize: 1000})
	fetcher := papersources.NewFetcher(httpClient, []papersources.Strategy{papersources.Direct()}, zerolog.Nop())
	return New(Config{BaseURL: baseURL}, fetcher).WithClock(func() time.Time { return fixedNow })
}

func TestNewClient(t *testing.T) {
	client := New(Config{}, nil)
	assert.Equal(t, DefaultBaseURL, client.config.BaseURL)
	assert.Equal(t, domain.SourceTypeCrossRef, client.SourceType())
	assert.Equal(t, "CrossRef", client.Name())
}

func TestCleanDOI(t *testing.T) {
	assert.Equal(t, "10.1038/nature14539", CleanDOI("https://doi.org/10.1038/nature14539"))
	assert.Equal(t, "10.1038/nature14539", CleanDOI("http://dx.doi.org/10.1038/nature14539"))
	assert.Equal(t, "10.1038/nature14539", CleanDOI(" 10.1038/nature14539 "))
}

func TestClient_Fetch(t *testing.T) {
	t.Run("normalizes a work", func(t *testing.T) {
		var gotPath string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(workResponseJSON))
		}))
		defer server.Close()

		meta, err := createTestClient(server.URL).Fetch(context.Background(), "https://doi.org/10.1038/nature14539")
		require.NoError(t, err)

		assert.Equal(t, "/works/10.1038/nature14539", gotPath)
		assert.Equal(t, "Deep learning", meta.Title)
		assert.Equal(t, "Deep learning allows computational models that are composed of multiple layers.", meta.Abstract)
		assert.Equal(t, []string{"Yann LeCun", "Yoshua Bengio"}, meta.Authors)
		assert.Equal(t, "2015", meta.PublicationDate)
		assert.Equal(t, "Multidisciplinary", meta.Category)
		assert.Equal(t, "10.1038/nature14539", meta.DOI)
		assert.Equal(t, domain.SourceTypeCrossRef, meta.Source)
	})

	t.Run("applies fallbacks for sparse work", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(sparseWorkJSON))
		}))
		defer server.Close()

		meta, err := createTestClient(server.URL).Fetch(context.Background(), "10.1234/sparse")
		require.NoError(t, err)

		assert.Equal(t, "Untitled", meta.Title)
		assert.Equal(t, "Abstract not available via CrossRef.", meta.Abstract)
		assert.Equal(t, []string{"Unknown Author"}, meta.Authors)
		assert.Equal(t, "2026", meta.PublicationDate)
		assert.Equal(t, "Research", meta.Category)
	})

	t.Run("returns not found when message is missing", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"status": "ok"}`))
		}))
		defer server.Close()

		_, err := createTestClient(server.URL).Fetch(context.Background(), "10.1234/missing")
		require.Error(t, err)
		assert.Equal(t, "No metadata found in CrossRef response.", err.Error())
		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})

	t.Run("returns invalid response for non-JSON body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("Resource not found."))
		}))
		defer server.Close()

		_, err := createTestClient(server.URL).Fetch(context.Background(), "10.1234/bad")
		require.Error(t, err)
		assert.Equal(t, "Paper not found on CrossRef (Invalid Response).", err.Error())
		assert.True(t, errors.Is(err, domain.ErrInvalidResponse))
	})

	t.Run("adds mailto when configured", func(t *testing.T) {
		var gotMailto string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotMailto = r.URL.Query().Get("mailto")
			_, _ = w.Write([]byte(workResponseJSON))
		}))
		defer server.Close()

		fetcher := papersources.NewFetcher(papersources.NewHTTPClient(papersources.HTTPClientConfig{}),
			[]papersources.Strategy{papersources.Direct()}, zerolog.Nop())
		client := New(Config{BaseURL: server.URL, Mailto: "ops@nexus.example"}, fetcher)

		_, err := client.Fetch(context.Background(), "10.1038/nature14539")
		require.NoError(t, err)
		assert.Equal(t, "ops@nexus.example", gotMailto)
	})
}
