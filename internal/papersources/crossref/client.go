// Package crossref resolves DOIs through the CrossRef REST API.
package crossref

import (
	"context"
	"encoding/json"
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
	// DefaultBaseURL is the default CrossRef API base URL.
	DefaultBaseURL = "https://api.crossref.org"

	// sourceName is the human-readable name for this source.
	sourceName = "CrossRef"
)

var doiURLPrefix = regexp.MustCompile(`(?i).*doi\.org/`)

// Config holds configuration for the CrossRef client.
type Config struct {
	// BaseURL is the CrossRef API base URL.
	BaseURL string

	// Mailto identifies the caller for CrossRef's polite pool.
	Mailto string
}

// applyDefaults sets default values for unset configuration fields.
func (c *Config) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
}

// Client implements papersources.MetadataSource for CrossRef.
type Client struct {
	config  Config
	fetcher *papersources.Fetcher
	now     func() time.Time
}

// Ensure Client implements MetadataSource interface.
var _ papersources.MetadataSource = (*Client)(nil)

// New creates a new CrossRef client that fetches through fetcher.
func New(cfg Config, fetcher *papersources.Fetcher) *Client {
	cfg.applyDefaults()
	return &Client{
		config:  cfg,
		fetcher: fetcher,
		now:     time.Now,
	}
}

// WithClock replaces the clock used for fallback years.
func (c *Client) WithClock(now func() time.Time) *Client {
	c.now = now
	return c
}

// CleanDOI strips a doi.org URL prefix from input.
func CleanDOI(input string) string {
	return strings.TrimSpace(doiURLPrefix.ReplaceAllString(input, ""))
}

// Fetch resolves a DOI or doi.org URL to normalized metadata.
func (c *Client) Fetch(ctx context.Context, input string) (*domain.Metadata, error) {
	doi := CleanDOI(input)

	body, err := c.fetcher.Fetch(ctx, domain.SourceTypeCrossRef, c.workURL(doi))
	if err != nil {
		return nil, err
	}

	var resp WorkResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, domain.NewResolutionError(domain.KindInvalidResponse, domain.SourceTypeCrossRef,
			"Paper not found on CrossRef (Invalid Response).", fmt.Errorf("decoding work response: %w", err))
	}
	if resp.Message == nil {
		return nil, domain.NewResolutionError(domain.KindNotFound, domain.SourceTypeCrossRef,
			"No metadata found in CrossRef response.", domain.NewNotFoundError("crossref work", doi))
	}

	work := resp.Message

	title := "Untitled"
	if len(work.Title) > 0 {
		title = papersources.FirstNonEmpty(work.Title[0], title)
	}

	abstract := "Abstract not available via CrossRef."
	if work.Abstract != "" {
		abstract = papersources.CleanAbstract(work.Abstract)
	}

	category := "Research"
	if len(work.Subject) > 0 {
		category = papersources.FirstNonEmpty(work.Subject[0], category)
	}

	year := work.Issued.Year()
	if year == "" {
		year = strconv.Itoa(c.now().Year())
	}

	return &domain.Metadata{
		Title:           title,
		Abstract:        abstract,
		Authors:         authorNames(work.Author),
		PublicationDate: year,
		DOI:             doi,
		Category:        category,
		Source:          domain.SourceTypeCrossRef,
	}, nil
}

// SourceType returns the source type identifier.
func (c *Client) SourceType() domain.SourceType {
	return domain.SourceTypeCrossRef
}

// Name returns the human-readable name for this source.
func (c *Client) Name() string {
	return sourceName
}

func (c *Client) workURL(doi string) string {
	u := strings.TrimRight(c.config.BaseURL, "/") + "/works/" + doi
	if c.config.Mailto != "" {
		u += "?" + url.Values{"mailto": {c.config.Mailto}}.Encode()
	}
	return u
}

func authorNames(authors []Author) []string {
	names := make([]string, 0, len(authors))
	for _, a := range authors {
		if name := strings.TrimSpace(a.Given + " " + a.Family); name != "" {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return []string{"Unknown Author"}
	}
	return names
}
