// Package arxiv resolves arXiv identifiers and lists arXiv categories
// through the arXiv Atom API.
package arxiv

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/nexus/paper-discovery-service/internal/domain"
	"github.com/nexus/paper-discovery-service/internal/papersources"
)

const (
	// DefaultBaseURL is the default arXiv API base URL.
	DefaultBaseURL = "https://export.arxiv.org/api"

	// DefaultMaxResults is the default number of entries requested per category listing.
	DefaultMaxResults = 1000

	// ListingWhyMatters is attached to every paper pulled from a category listing.
	ListingWhyMatters = "Fetched from arXiv for open access research visibility."

	// sourceName is the human-readable name for this source.
	sourceName = "arXiv"
)

// DefaultCategories are the arXiv categories listed into the catalog.
var DefaultCategories = []string{"cs.AI", "cs.CL", "cs.LG", "physics.optics", "math.PR"}

var (
	absURLPrefix = regexp.MustCompile(`(?i).*arxiv\.org/abs/`)
	arxivPrefix  = regexp.MustCompile(`(?i)^arXiv:`)
)

// Config holds configuration for the arXiv client.
type Config struct {
	// BaseURL is the arXiv API base URL.
	BaseURL string

	// MaxResults is the number of entries requested per category listing.
	MaxResults int
}

// applyDefaults sets default values for unset configuration fields.
func (c *Config) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.MaxResults == 0 {
		c.MaxResults = DefaultMaxResults
	}
}

// Client implements papersources.MetadataSource for arXiv.
type Client struct {
	config  Config
	fetcher *papersources.Fetcher
	now     func() time.Time
}

// Ensure Client implements MetadataSource interface.
var _ papersources.MetadataSource = (*Client)(nil)

// New creates a new arXiv client that fetches through fetcher.
func New(cfg Config, fetcher *papersources.Fetcher) *Client {
	cfg.applyDefaults()
	return &Client{
		config:  cfg,
		fetcher: fetcher,
		now:     time.Now,
	}
}

// WithClock replaces the clock used for fallback years and listing timestamps.
func (c *Client) WithClock(now func() time.Time) *Client {
	c.now = now
	return c
}

// CleanID strips an abs URL prefix or an "arXiv:" prefix from input.
func CleanID(input string) string {
	id := absURLPrefix.ReplaceAllString(input, "")
	id = arxivPrefix.ReplaceAllString(id, "")
	return strings.TrimSpace(id)
}

// Fetch resolves an arXiv ID or abs URL to normalized metadata.
func (c *Client) Fetch(ctx context.Context, input string) (*domain.Metadata, error) {
	id := CleanID(input)

	body, err := c.fetcher.Fetch(ctx, domain.SourceTypeArXiv, c.queryURL(url.Values{"id_list": {id}}))
	if err != nil {
		return nil, err
	}

	feed, err := decodeFeed(body)
	if err != nil {
		return nil, err
	}
	if len(feed.Entries) == 0 {
		return nil, domain.NewResolutionError(domain.KindNotFound, domain.SourceTypeArXiv,
			"Paper not found on arXiv.", domain.NewNotFoundError("arxiv paper", id))
	}

	entry := feed.Entries[0]
	authors := make([]string, 0, len(entry.Authors))
	for _, a := range entry.Authors {
		authors = append(authors, strings.TrimSpace(a.Name))
	}

	return &domain.Metadata{
		Title:           papersources.FirstNonEmpty(strings.TrimSpace(strings.ReplaceAll(entry.Title, "\n", " ")), "Untitled"),
		Abstract:        papersources.CleanAbstract(entry.Summary),
		Authors:         authors,
		PublicationDate: papersources.YearOrCurrent(entry.Published, c.now()),
		DOI:             "arXiv:" + id,
		Category:        papersources.FirstNonEmpty(entry.PrimaryCategory.Term, "Preprint"),
		Source:          domain.SourceTypeArXiv,
	}, nil
}

// ListCategory returns up to maxResults papers from an arXiv category listing,
// in feed order. A maxResults of zero uses the configured MaxResults.
func (c *Client) ListCategory(ctx context.Context, category string, maxResults int) ([]*domain.Paper, error) {
	if maxResults <= 0 {
		maxResults = c.config.MaxResults
	}

	query := url.Values{}
	query.Set("search_query", "cat:"+category)
	query.Set("start", "0")
	query.Set("max_results", strconv.Itoa(maxResults))

	body, err := c.fetcher.Fetch(ctx, domain.SourceTypeArXiv, c.queryURL(query))
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", category, err)
	}

	feed, err := decodeFeed(body)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", category, err)
	}

	now := c.now().UnixMilli()
	papers := make([]*domain.Paper, 0, len(feed.Entries))
	for i, entry := range feed.Entries {
		authors := make([]string, 0, len(entry.Authors))
		for _, a := range entry.Authors {
			authors = append(authors, strings.TrimSpace(a.Name))
		}
		papers = append(papers, &domain.Paper{
			ID:              fmt.Sprintf("arxiv-%s-%d", category, i),
			Provenance:      domain.ProvenanceAggregator,
			Title:           normalizeWhitespace(entry.Title),
			Authors:         authors,
			Abstract:        entry.Summary,
			AbstractPreview: domain.Preview(entry.Summary),
			PublicationDate: strings.TrimSpace(entry.Published),
			Category:        category,
			DOI:             strings.TrimSpace(entry.ID),
			WhyMatters:      ListingWhyMatters,
			Timestamp:       now - int64(i)*10000,
		})
	}
	return papers, nil
}

// SourceType returns the source type identifier.
func (c *Client) SourceType() domain.SourceType {
	return domain.SourceTypeArXiv
}

// Name returns the human-readable name for this source.
func (c *Client) Name() string {
	return sourceName
}

func (c *Client) queryURL(query url.Values) string {
	return strings.TrimRight(c.config.BaseURL, "/") + "/query?" + query.Encode()
}

func decodeFeed(body []byte) (*Feed, error) {
	var feed Feed
	if err := xml.NewDecoder(bytes.NewReader(body)).Decode(&feed); err != nil {
		return nil, domain.NewResolutionError(domain.KindInvalidResponse, domain.SourceTypeArXiv,
			"Invalid XML response from arXiv.", fmt.Errorf("decoding response: %w", err))
	}
	return &feed, nil
}

// normalizeWhitespace trims and collapses multiple whitespace characters.
func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
