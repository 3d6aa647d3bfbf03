package pubmed

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/nexus/paper-discovery-service/internal/domain"
	"github.com/nexus/paper-discovery-service/internal/papersources"
)

const (
	// DefaultBaseURL is the default E-utilities base URL.
	DefaultBaseURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"

	// Category is assigned to every PubMed record.
	Category = "Medicine/Biology"

	// sourceName is the human-readable name for this source.
	sourceName = "PubMed"

	efetchEndpoint = "/efetch.fcgi"
)

var pubmedURLPrefix = regexp.MustCompile(`(?i).*pubmed\.ncbi\.nlm\.nih\.gov/`)

// Config holds configuration for the PubMed client.
type Config struct {
	// BaseURL is the E-utilities base URL.
	BaseURL string

	// APIKey is the optional NCBI API key. It raises the NCBI rate limit.
	APIKey string
}

// applyDefaults sets default values for unset configuration fields.
func (c *Config) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
}

// Client implements papersources.MetadataSource for PubMed.
type Client struct {
	config  Config
	fetcher *papersources.Fetcher
	now     func() time.Time
}

// Ensure Client implements MetadataSource interface.
var _ papersources.MetadataSource = (*Client)(nil)

// New creates a new PubMed client that fetches through fetcher.
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

// CleanPMID strips a pubmed.ncbi.nlm.nih.gov URL prefix and every slash.
func CleanPMID(input string) string {
	pmid := pubmedURLPrefix.ReplaceAllString(input, "")
	pmid = strings.ReplaceAll(pmid, "/", "")
	return strings.TrimSpace(pmid)
}

// Fetch resolves a PMID or PubMed URL to normalized metadata.
func (c *Client) Fetch(ctx context.Context, input string) (*domain.Metadata, error) {
	pmid := CleanPMID(input)

	body, err := c.fetcher.Fetch(ctx, domain.SourceTypePubMed, c.efetchURL(pmid))
	if err != nil {
		return nil, err
	}

	var articleSet PubmedArticleSet
	if err := xml.NewDecoder(bytes.NewReader(body)).Decode(&articleSet); err != nil {
		return nil, domain.NewResolutionError(domain.KindInvalidResponse, domain.SourceTypePubMed,
			"Invalid XML response from PubMed.", fmt.Errorf("decoding efetch response: %w", err))
	}
	if len(articleSet.Articles) == 0 {
		return nil, domain.NewResolutionError(domain.KindNotFound, domain.SourceTypePubMed,
			"Paper not found on PubMed.", domain.NewNotFoundError("pubmed article", pmid))
	}

	article := articleSet.Articles[0].MedlineCitation.Article

	abstract := "Abstract not available."
	if article.Abstract != nil && len(article.Abstract.AbstractTexts) > 0 && article.Abstract.AbstractTexts[0] != "" {
		abstract = article.Abstract.AbstractTexts[0].String()
	}

	return &domain.Metadata{
		Title:           papersources.FirstNonEmpty(article.ArticleTitle.String(), "Untitled"),
		Abstract:        papersources.CleanAbstract(abstract),
		Authors:         authorNames(article.AuthorList),
		PublicationDate: c.publicationYear(article.Journal.JournalIssue.PubDate),
		DOI:             "PMID:" + pmid,
		Category:        Category,
		Source:          domain.SourceTypePubMed,
	}, nil
}

// SourceType returns the source type identifier.
func (c *Client) SourceType() domain.SourceType {
	return domain.SourceTypePubMed
}

// Name returns the human-readable name for this source.
func (c *Client) Name() string {
	return sourceName
}

func (c *Client) efetchURL(pmid string) string {
	query := url.Values{}
	query.Set("db", "pubmed")
	query.Set("id", pmid)
	query.Set("retmode", "xml")
	if c.config.APIKey != "" {
		query.Set("api_key", c.config.APIKey)
	}
	return strings.TrimRight(c.config.BaseURL, "/") + efetchEndpoint + "?" + query.Encode()
}

// publicationYear prefers PubDate/Year, then the first four characters of
// MedlineDate, then the current year.
func (c *Client) publicationYear(pd PubDate) string {
	if year := strings.TrimSpace(pd.Year); year != "" {
		return year
	}
	return papersources.YearOrCurrent(pd.MedlineDate, c.now())
}

// authorNames formats authors as "LastName Initials", dropping entries
// that end up empty.
func authorNames(list *AuthorList) []string {
	if list == nil {
		return []string{}
	}
	names := make([]string, 0, len(list.Authors))
	for _, a := range list.Authors {
		name := strings.TrimSpace(a.LastName + " " + a.Initials)
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}
