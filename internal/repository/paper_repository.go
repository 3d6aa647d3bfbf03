package repository

import (
	"context"

	"github.com/nexus/paper-discovery-service/internal/domain"
)

// PaperRepository persists paper records shared between instances.
type PaperRepository interface {
	// Insert stores a new paper. Returns domain.ErrAlreadyExists if a paper
	// with the same ID is already stored.
	Insert(ctx context.Context, paper *domain.Paper) error

	// InsertBatch stores papers in one round trip, skipping IDs that are
	// already stored. Returns the number of rows inserted.
	InsertBatch(ctx context.Context, papers []*domain.Paper) (int, error)

	// Get retrieves a paper by ID.
	// Returns domain.ErrNotFound if no matching paper exists.
	Get(ctx context.Context, id string) (*domain.Paper, error)

	// List retrieves a page of papers, newest timestamp first.
	List(ctx context.Context, filter PaperFilter) ([]*domain.Paper, int64, error)

	// ListPapers retrieves every stored paper, newest timestamp first.
	ListPapers(ctx context.Context) ([]*domain.Paper, error)

	// AdjustUpvotes adds delta to the upvote count, never going below zero,
	// and returns the new count.
	// Returns domain.ErrNotFound if no matching paper exists.
	AdjustUpvotes(ctx context.Context, id string, delta int) (int, error)
}

// PaperFilter specifies criteria for listing papers.
type PaperFilter struct {
	// Category filters to an exact category (optional).
	Category string

	// Provenance filters to a single origin (optional).
	Provenance domain.Provenance

	// Limit specifies maximum number of results (default: 100, max: 1000).
	Limit int

	// Offset specifies the starting position for pagination.
	Offset int
}

// Validate checks if the filter has valid values and sets defaults.
func (f *PaperFilter) Validate() error {
	if f.Provenance != "" && !f.Provenance.IsValid() {
		return domain.NewValidationError("provenance", "unknown provenance")
	}
	applyPaginationDefaults(&f.Limit, &f.Offset)
	return nil
}
