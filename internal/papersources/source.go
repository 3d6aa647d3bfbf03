// Package papersources provides interfaces and shared transport for
// bibliographic metadata sources.
//
// Each source (arXiv, PubMed, bioRxiv/medRxiv, CrossRef) implements the
// MetadataSource interface, turning a free-form identifier into a normalized
// domain.Metadata record. All sources fetch through a Fetcher, which walks an
// ordered list of transport strategies (direct, then public relays) until one
// returns a successful status.
//
// Example usage:
//
//	fetcher := papersources.NewFetcher(httpClient, papersources.DefaultStrategies(), logger)
//	source := arxiv.New(arxiv.Config{}, fetcher)
//	meta, err := source.Fetch(ctx, "1706.03762")
package papersources

import (
	"context"

	"github.com/nexus/paper-discovery-service/internal/domain"
)

// MetadataSource defines the interface that all metadata source clients must implement.
type MetadataSource interface {
	// Fetch resolves a source-specific identifier or URL to normalized metadata.
	// The context should be used for cancellation and deadline propagation.
	//
	// Failures are reported as *domain.ResolutionError so callers can tell a
	// missing record from an unreachable source or an unparseable payload.
	Fetch(ctx context.Context, input string) (*domain.Metadata, error)

	// SourceType returns the type identifier for this source.
	SourceType() domain.SourceType

	// Name returns a human-readable name used in messages and logs.
	Name() string
}
