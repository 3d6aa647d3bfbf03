// Package biorxiv resolves bioRxiv and medRxiv DOIs through the
// api.biorxiv.org details endpoint. One client type serves both servers.
package biorxiv

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/nexus/paper-discovery-service/internal/domain"
	"github.com/nexus/paper-discovery-service/internal/papersources"
)

const (
	// DefaultBaseURL is the default bioRxiv API base URL.
	DefaultBaseURL = "https://api.biorxiv.org"

	// maxBodySize caps the details response body.
	maxBodySize = 10 << 20
)

var (
	rxivDOIPattern  = regexp.MustCompile(`10\.1101/\d{4}\.\d{2}\.\d{2}\.\d+`)
	versionSuffix   = regexp.MustCompile(`v\d+$`)
	defaultCategory = map[domain.SourceType]string{
		domain.SourceTypeBioRxiv: "Biology",
		domain.SourceTypeMedRxiv: "Medicine",
	}
	serverNames = map[domain.SourceType]string{
		domain.SourceTypeBioRxiv: "bioRxiv",
		domain.SourceTypeMedRxiv: "medRxiv",
	}
)

// Config holds configuration for a bioRxiv or medRxiv client.
type Config struct {
	// BaseURL is the details API base URL.
	BaseURL string

	// SourceType selects the server (SourceTypeBioRxiv or SourceTypeMedRxiv).
	SourceType domain.SourceType
}

// applyDefaults sets default values for unset configuration fields.
func (c *Config) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.SourceType == "" {
		c.SourceType = domain.SourceTypeBioRxiv
	}
}

// Client implements papersources.MetadataSource for one preprint server.
// The details API is called directly, without relay fallback.
type Client struct {
	config     Config
	httpClient *papersources.HTTPClient
	now        func() time.Time
}

// Ensure Client implements MetadataSource interface.
var _ papersources.MetadataSource = (*Client)(nil)

// New creates a client for the server named by cfg.SourceType.
func New(cfg Config, httpClient *papersources.HTTPClient) *Client {
	cfg.applyDefaults()
	if httpClient == nil {
		httpClient = papersources.NewHTTPClient(papersources.HTTPClientConfig{})
	}
	return &Client{
		config:     cfg,
		httpClient: httpClient,
		now:        time.Now,
	}
}

// NewBioRxiv creates a bioRxiv client.
func NewBioRxiv(baseURL string, httpClient *papersources.HTTPClient) *Client {
	return New(Config{BaseURL: baseURL, SourceType: domain.SourceTypeBioRxiv}, httpClient)
}

// NewMedRxiv creates a medRxiv client.
func NewMedRxiv(baseURL string, httpClient *papersources.HTTPClient) *Client {
	return New(Config{BaseURL: baseURL, SourceType: domain.SourceTypeMedRxiv}, httpClient)
}

// WithClock replaces the clock used for fallback years.
func (c *Client) WithClock(now func() time.Time) *Client {
	c.now = now
	return c
}

// ExtractDOI returns the 10.1101 DOI embedded in input, without any
// version suffix, or "" when there is none.
func ExtractDOI(input string) string {
	doi := rxivDOIPattern.FindString(input)
	return versionSuffix.ReplaceAllString(doi, "")
}

// Fetch resolves a bioRxiv/medRxiv DOI or URL to normalized metadata.
// The newest version of the preprint wins.
func (c *Client) Fetch(ctx context.Context, input string) (*domain.Metadata, error) {
	source := c.config.SourceType
	name := c.Name()

	doi := ExtractDOI(input)
	if doi == "" {
		return nil, domain.NewResolutionError(domain.KindInvalidInput, source,
			fmt.Sprintf("Could not extract valid DOI from %s input.", name),
			domain.NewValidationError("input", "no 10.1101 DOI found"))
	}

	body, err := c.get(ctx, doi)
	if err != nil {
		return nil, err
	}

	var resp DetailsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, domain.NewResolutionError(domain.KindInvalidResponse, source,
			"Invalid JSON response from Rxiv API", fmt.Errorf("decoding details response: %w", err))
	}
	if len(resp.Collection) == 0 {
		return nil, domain.NewResolutionError(domain.KindNotFound, source,
			fmt.Sprintf("Paper not found on %s.", name), domain.NewNotFoundError(string(source)+" preprint", doi))
	}

	item := resp.Collection[len(resp.Collection)-1]

	abstract := "No abstract available."
	if item.Abstract != "" {
		abstract = papersources.CleanAbstract(item.Abstract)
	}

	return &domain.Metadata{
		Title:           papersources.FirstNonEmpty(item.Title, "Untitled"),
		Abstract:        abstract,
		Authors:         splitAuthors(item.Authors),
		PublicationDate: papersources.YearOrCurrent(item.Date, c.now()),
		DOI:             papersources.FirstNonEmpty(item.DOI, doi),
		Category:        papersources.FirstNonEmpty(item.Category, defaultCategory[source]),
		Source:          source,
	}, nil
}

// SourceType returns the source type identifier.
func (c *Client) SourceType() domain.SourceType {
	return c.config.SourceType
}

// Name returns the human-readable server name.
func (c *Client) Name() string {
	if name, ok := serverNames[c.config.SourceType]; ok {
		return name
	}
	return string(c.config.SourceType)
}

// get calls the details endpoint and returns the body of a 2xx response.
func (c *Client) get(ctx context.Context, doi string) ([]byte, error) {
	source := c.config.SourceType
	detailsURL := fmt.Sprintf("%s/details/%s/%s", strings.TrimRight(c.config.BaseURL, "/"), source, doi)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, detailsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, domain.NewResolutionError(domain.KindNetwork, source,
			fmt.Sprintf("%s API request failed (Network error).", c.Name()), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))
		return nil, domain.NewResolutionError(domain.KindNetwork, source,
			fmt.Sprintf("%s API returned %d", c.Name(), resp.StatusCode),
			domain.NewExternalAPIError(c.Name(), resp.StatusCode, http.StatusText(resp.StatusCode), nil))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	return body, nil
}

// splitAuthors splits a semicolon-separated author string.
func splitAuthors(raw string) []string {
	authors := make([]string, 0)
	for _, a := range strings.Split(raw, ";") {
		if a = strings.TrimSpace(a); a != "" {
			authors = append(authors, a)
		}
	}
	if len(authors) == 0 {
		return []string{"Unknown Author"}
	}
	return authors
}
