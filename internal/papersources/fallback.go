package papersources

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/nexus/paper-discovery-service/internal/domain"
)

// NetworkErrorMessage is reported when no transport strategy reached the source.
const NetworkErrorMessage = "Failed to fetch data from source (CORS/Network error)."

// maxBodySize caps response bodies read from any source.
const maxBodySize = 10 << 20

// Public relay endpoints used when a direct request fails.
const (
	AllOriginsPrefix = "https://api.allorigins.win/raw?url="
	CorsProxyPrefix  = "https://corsproxy.io/?"
)

// Strategy rewrites a target URL into the URL actually requested.
type Strategy struct {
	// Name identifies the strategy in logs and metrics.
	Name string
	// Rewrite maps the origin URL to the URL to request.
	Rewrite func(target string) string
}

// Direct requests the origin URL unchanged.
func Direct() Strategy {
	return Strategy{
		Name:    "direct",
		Rewrite: func(target string) string { return target },
	}
}

// Relay routes the request through a passthrough endpoint that takes the
// query-escaped origin URL appended to prefix.
func Relay(name, prefix string) Strategy {
	return Strategy{
		Name: name,
		Rewrite: func(target string) string {
			return prefix + url.QueryEscape(target)
		},
	}
}

// DefaultStrategies returns the standard chain: direct, allorigins, corsproxy.
func DefaultStrategies() []Strategy {
	return []Strategy{
		Direct(),
		Relay("allorigins", AllOriginsPrefix),
		Relay("corsproxy", CorsProxyPrefix),
	}
}

// FetchRecorder receives per-attempt outcomes. *observability.Metrics implements it.
type FetchRecorder interface {
	RecordFetchAttempt(source, strategy, outcome string)
}

// Fetcher performs GET requests through an ordered list of strategies.
// Attempts are strictly sequential; the first 2xx response wins.
type Fetcher struct {
	client     *HTTPClient
	strategies []Strategy
	recorder   FetchRecorder
	logger     zerolog.Logger
}

// NewFetcher creates a Fetcher. An empty strategy list uses DefaultStrategies.
func NewFetcher(client *HTTPClient, strategies []Strategy, logger zerolog.Logger) *Fetcher {
	if client == nil {
		client = NewHTTPClient(HTTPClientConfig{})
	}
	if len(strategies) == 0 {
		strategies = DefaultStrategies()
	}
	return &Fetcher{
		client:     client,
		strategies: strategies,
		logger:     logger.With().Str("component", "fetcher").Logger(),
	}
}

// WithRecorder attaches a metrics recorder and returns the fetcher.
func (f *Fetcher) WithRecorder(r FetchRecorder) *Fetcher {
	f.recorder = r
	return f
}

// Fetch retrieves target for the given source, falling back through each
// strategy. It returns the body of the first successful response. If every
// strategy fails it returns a *domain.ResolutionError of kind KindNetwork.
// A cancelled context stops the chain and is returned as is.
func (f *Fetcher) Fetch(ctx context.Context, source domain.SourceType, target string) ([]byte, error) {
	var lastErr error
	for _, s := range f.strategies {
		body, err := f.attempt(ctx, s.Rewrite(target))
		if err == nil {
			f.record(source, s.Name, "success")
			return body, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			f.record(source, s.Name, "cancelled")
			return nil, ctxErr
		}

		f.record(source, s.Name, "failure")
		f.logger.Debug().
			Err(err).
			Str("source", string(source)).
			Str("strategy", s.Name).
			Msg("fetch attempt failed")
		lastErr = err
	}

	return nil, domain.NewResolutionError(domain.KindNetwork, source, NetworkErrorMessage, lastErr)
}

// attempt performs one GET and reads the body of a 2xx response.
func (f *Fetcher) attempt(ctx context.Context, requestURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))
		return nil, domain.NewExternalAPIError(requestURL, resp.StatusCode, http.StatusText(resp.StatusCode), nil)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	return body, nil
}

func (f *Fetcher) record(source domain.SourceType, strategy, outcome string) {
	if f.recorder != nil {
		f.recorder.RecordFetchAttempt(string(source), strategy, outcome)
	}
}
