package arxiv

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

// Sample Atom responses for testing.
const singleEntryXML = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom" xmlns:arxiv="http://arxiv.org/schemas/atom">
  <title>ArXiv Query: id_list=1706.03762</title>
  <entry>
    <id>http://arxiv.org/abs/1706.03762v7</id>
    <published>2017-06-12T17:57:34Z</published>
    <title>Attention Is All
  You Need</title>
    <summary>  The dominant sequence transduction models are based on complex
recurrent or convolutional neural networks.
    </summary>
    <author><name>Ashish Vaswani</name></author>
    <author><name>Noam Shazeer</name></author>
    <arxiv:primary_category term="cs.CL" scheme="http://arxiv.org/schemas/atom"/>
  </entry>
</feed>`

const bareEntryXML = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <id>http://arxiv.org/abs/2401.00001v1</id>
    <summary>Abstract: short.</summary>
  </entry>
</feed>`

const emptyFeedXML = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>ArXiv Query</title>
</feed>`

const listingXML = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <id>http://arxiv.org/abs/2501.00001v1</id>
    <published>2025-01-01T00:00:00Z</published>
    <title>First
      Listing Paper</title>
    <summary>First summary.</summary>
    <author><name>Ada Lovelace</name></author>
  </entry>
  <entry>
    <id>http://arxiv.org/abs/2501.00002v1</id>
    <published>2025-01-02T00:00:00Z</published>
    <title>Second Listing Paper</title>
    <summary>Second summary.</summary>
  </entry>
</feed>`

var fixedNow = time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)

func createTestClient(baseURL string) *Client {
	httpClient := papersources.NewHTTPClient(papersources.HTTPClientConfig{RateLimit: 1000, BurstSize: 1000})
	fetcher := papersources.NewFetcher(httpClient, []papersources.Strategy{papersources.Direct()}, zerolog.Nop())
	return New(Config{BaseURL: baseURL}, fetcher).WithClock(func() time.Time { return fixedNow })
}

func TestNewClient(t *testing.T) {
	client := New(Config{}, nil)

	require.NotNil(t, client)
	assert.Equal(t, DefaultBaseURL, client.config.BaseURL)
	assert.Equal(t, DefaultMaxResults, client.config.MaxResults)
	assert.Equal(t, domain.SourceTypeArXiv, client.SourceType())
	assert.Equal(t, "arXiv", client.Name())
}

func TestCleanID(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"1706.03762", "1706.03762"},
		{"https://arxiv.org/abs/1706.03762", "1706.03762"},
		{"arXiv:1706.03762v2", "1706.03762v2"},
		{"ARXIV:2301.12345", "2301.12345"},
		{"  2301.12345  ", "2301.12345"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, CleanID(tt.input), "input %q", tt.input)
	}
}

func TestClient_Fetch(t *testing.T) {
	t.Run("normalizes a single entry", func(t *testing.T) {
		var gotIDList string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/query", r.URL.Path)
			gotIDList = r.URL.Query().Get("id_list")
			w.Header().Set("Content-Type", "application/atom+xml")
			_, _ = w.Write([]byte(singleEntryXML))
		}))
		defer server.Close()

		meta, err := createTestClient(server.URL).Fetch(context.Background(), "https://arxiv.org/abs/1706.03762")
		require.NoError(t, err)

		assert.Equal(t, "1706.03762", gotIDList)
		assert.Equal(t, "Attention Is All   You Need", meta.Title)
		assert.Equal(t, "The dominant sequence transduction models are based on complex recurrent or convolutional neural networks.", meta.Abstract)
		assert.Equal(t, []string{"Ashish Vaswani", "Noam Shazeer"}, meta.Authors)
		assert.Equal(t, "2017", meta.PublicationDate)
		assert.Equal(t, "cs.CL", meta.Category)
		assert.Equal(t, "arXiv:1706.03762", meta.DOI)
		assert.Equal(t, domain.SourceTypeArXiv, meta.Source)
	})

	t.Run("applies fallbacks for missing fields", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(bareEntryXML))
		}))
		defer server.Close()

		meta, err := createTestClient(server.URL).Fetch(context.Background(), "2401.00001")
		require.NoError(t, err)

		assert.Equal(t, "Untitled", meta.Title)
		assert.Equal(t, "short.", meta.Abstract)
		assert.Empty(t, meta.Authors)
		assert.Equal(t, "2026", meta.PublicationDate)
		assert.Equal(t, "Preprint", meta.Category)
	})

	t.Run("returns not found for empty feed", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(emptyFeedXML))
		}))
		defer server.Close()

		_, err := createTestClient(server.URL).Fetch(context.Background(), "9999.99999")
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrNotFound))
		assert.Equal(t, "Paper not found on arXiv.", err.Error())
	})

	t.Run("returns invalid response for non-XML body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"error":"nope"}`))
		}))
		defer server.Close()

		_, err := createTestClient(server.URL).Fetch(context.Background(), "1706.03762")
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrInvalidResponse))
		assert.Equal(t, domain.KindInvalidResponse, domain.KindOf(err))
	})

	t.Run("returns network error when source is unreachable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		_, err := createTestClient(server.URL).Fetch(context.Background(), "1706.03762")
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrNetwork))
	})
}

func TestClient_ListCategory(t *testing.T) {
	t.Run("builds aggregator papers in feed order", func(t *testing.T) {
		var gotQuery, gotMax, gotStart string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.Query().Get("search_query")
			gotMax = r.URL.Query().Get("max_results")
			gotStart = r.URL.Query().Get("start")
			_, _ = w.Write([]byte(listingXML))
		}))
		defer server.Close()

		papers, err := createTestClient(server.URL).ListCategory(context.Background(), "cs.AI", 25)
		require.NoError(t, err)
		require.Len(t, papers, 2)

		assert.Equal(t, "cat:cs.AI", gotQuery)
		assert.Equal(t, "25", gotMax)
		assert.Equal(t, "0", gotStart)

		first := papers[0]
		assert.Equal(t, "arxiv-cs.AI-0", first.ID)
		assert.Equal(t, domain.ProvenanceAggregator, first.Provenance)
		assert.Equal(t, "First Listing Paper", first.Title)
		assert.Equal(t, []string{"Ada Lovelace"}, first.Authors)
		assert.Equal(t, "First summary....", first.AbstractPreview)
		assert.Equal(t, "2025-01-01T00:00:00Z", first.PublicationDate)
		assert.Equal(t, "cs.AI", first.Category)
		assert.Equal(t, "http://arxiv.org/abs/2501.00001v1", first.DOI)
		assert.Equal(t, ListingWhyMatters, first.WhyMatters)
		assert.Equal(t, fixedNow.UnixMilli(), first.Timestamp)

		assert.Equal(t, "arxiv-cs.AI-1", papers[1].ID)
		assert.Equal(t, fixedNow.UnixMilli()-10000, papers[1].Timestamp)
		assert.Empty(t, papers[1].Authors)
	})

	t.Run("uses configured max results by default", func(t *testing.T) {
		var gotMax string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotMax = r.URL.Query().Get("max_results")
			_, _ = w.Write([]byte(emptyFeedXML))
		}))
		defer server.Close()

		papers, err := createTestClient(server.URL).ListCategory(context.Background(), "math.PR", 0)
		require.NoError(t, err)
		assert.Empty(t, papers)
		assert.Equal(t, "1000", gotMax)
	})

	t.Run("returns error on failure", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		_, err := createTestClient(server.URL).ListCategory(context.Background(), "cs.LG", 5)
		require.Error(t, err)
	})
}
