package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/nexus/paper-discovery-service/internal/domain"
)

// PaperLister returns the papers in the shared database, newest first.
type PaperLister interface {
	ListPapers(ctx context.Context) ([]*domain.Paper, error)
}

// CategoryLister lists papers of one preprint category.
type CategoryLister interface {
	ListCategory(ctx context.Context, category string, maxResults int) ([]*domain.Paper, error)
}

// SubmissionLister returns the locally stored user submissions.
type SubmissionLister interface {
	ListSubmissions(ctx context.Context) ([]*domain.Paper, error)
}

// AggregatorConfig configures the bootstrap providers.
type AggregatorConfig struct {
	// Categories are listed from the preprint API, in this order.
	Categories []string
	// MaxPerCategory caps each category listing.
	MaxPerCategory int
	// GeneratedCount is the number of synthetic papers to add.
	GeneratedCount int
}

// Aggregator concatenates the bootstrap providers into one list:
// database, category listings, local submissions, seed papers, generated
// papers. It neither de-duplicates nor normalizes.
type Aggregator struct {
	config      AggregatorConfig
	database    PaperLister
	listings    CategoryLister
	submissions SubmissionLister
	now         func() time.Time
	logger      zerolog.Logger
}

// NewAggregator creates an Aggregator. Any provider may be nil, in which
// case it contributes nothing.
func NewAggregator(cfg AggregatorConfig, database PaperLister, listings CategoryLister, submissions SubmissionLister, logger zerolog.Logger) *Aggregator {
	return &Aggregator{
		config:      cfg,
		database:    database,
		listings:    listings,
		submissions: submissions,
		now:         time.Now,
		logger:      logger.With().Str("component", "aggregator").Logger(),
	}
}

// WithClock replaces the clock used for generated papers.
func (a *Aggregator) WithClock(now func() time.Time) *Aggregator {
	a.now = now
	return a
}

// Aggregate builds the bootstrap list. If the database fails, only the
// seed and generated papers are returned.
func (a *Aggregator) Aggregate(ctx context.Context) []*domain.Paper {
	now := a.now()

	var stored []*domain.Paper
	if a.database != nil {
		var err error
		stored, err = a.database.ListPapers(ctx)
		if err != nil {
			a.logger.Error().Err(err).Msg("failed to load papers from database, using seed and generated papers only")
			return concat(SeedPapers(), Generate(a.config.GeneratedCount, now))
		}
	}

	listed := a.listCategories(ctx)

	var submitted []*domain.Paper
	if a.submissions != nil {
		var err error
		submitted, err = a.submissions.ListSubmissions(ctx)
		if err != nil {
			a.logger.Warn().Err(err).Msg("failed to load local submissions")
			submitted = nil
		}
	}

	all := concat(stored, listed, submitted, SeedPapers(), Generate(a.config.GeneratedCount, now))
	a.logger.Info().
		Int("database", len(stored)).
		Int("listings", len(listed)).
		Int("submissions", len(submitted)).
		Int("total", len(all)).
		Msg("catalog aggregated")
	return all
}

// Bootstrap aggregates and appends the result to catalog.
func (a *Aggregator) Bootstrap(ctx context.Context, catalog *Catalog) error {
	papers := a.Aggregate(ctx)
	if _, err := catalog.Apply(ctx, AppendEvent(papers...)); err != nil {
		return fmt.Errorf("applying bootstrap papers: %w", err)
	}
	return nil
}

// listCategories fetches every category concurrently. A failed category
// contributes no papers. Results keep category order.
func (a *Aggregator) listCategories(ctx context.Context) []*domain.Paper {
	if a.listings == nil || len(a.config.Categories) == 0 {
		return nil
	}

	results := make([][]*domain.Paper, len(a.config.Categories))
	g, gctx := errgroup.WithContext(ctx)
	for i, category := range a.config.Categories {
		g.Go(func() error {
			papers, err := a.listings.ListCategory(gctx, category, a.config.MaxPerCategory)
			if err != nil {
				a.logger.Warn().Err(err).Str("category", category).Msg("category listing failed")
				return nil
			}
			results[i] = papers
			return nil
		})
	}
	_ = g.Wait()

	return concat(results...)
}

func concat(lists ...[]*domain.Paper) []*domain.Paper {
	n := 0
	for _, l := range lists {
		n += len(l)
	}
	out := make([]*domain.Paper, 0, n)
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}
