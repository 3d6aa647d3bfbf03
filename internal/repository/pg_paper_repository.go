package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/nexus/paper-discovery-service/internal/domain"
)

// Compile-time interface verification.
var _ PaperRepository = (*PgPaperRepository)(nil)

// uniqueViolation is the PostgreSQL error code for unique constraint violations.
const uniqueViolation = "23505"

const paperColumns = `id, provenance, title, authors, abstract, abstract_preview,
			publication_date, category, doi, why_matters, upvotes, "timestamp"`

// PgPaperRepository is a PostgreSQL implementation of PaperRepository.
type PgPaperRepository struct {
	db DBTX
}

// NewPgPaperRepository creates a new PostgreSQL paper repository.
func NewPgPaperRepository(db DBTX) *PgPaperRepository {
	return &PgPaperRepository{db: db}
}

// Insert stores a new paper.
func (r *PgPaperRepository) Insert(ctx context.Context, paper *domain.Paper) error {
	args, err := insertArgs(paper)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO papers (` + paperColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("paper %s: %w", paper.ID, domain.ErrAlreadyExists)
		}
		return fmt.Errorf("failed to insert paper: %w", err)
	}

	return nil
}

// InsertBatch stores papers with a single batch, skipping existing IDs.
func (r *PgPaperRepository) InsertBatch(ctx context.Context, papers []*domain.Paper) (int, error) {
	if len(papers) == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO papers (` + paperColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO NOTHING`

	batch := &pgx.Batch{}
	for i, paper := range papers {
		args, err := insertArgs(paper)
		if err != nil {
			return 0, fmt.Errorf("paper at index %d: %w", i, err)
		}
		batch.Queue(query, args...)
	}

	br := r.db.SendBatch(ctx, batch)
	defer br.Close()

	inserted := 0
	for i := range papers {
		tag, err := br.Exec()
		if err != nil {
			return inserted, fmt.Errorf("failed to insert paper at index %d: %w", i, err)
		}
		inserted += int(tag.RowsAffected())
	}

	return inserted, nil
}

// Get retrieves a paper by ID.
func (r *PgPaperRepository) Get(ctx context.Context, id string) (*domain.Paper, error) {
	if id == "" {
		return nil, domain.NewValidationError("id", "paper ID is required")
	}

	query := `
		SELECT ` + paperColumns + `
		FROM papers
		WHERE id = $1`

	paper, err := scanPaper(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("paper", id)
		}
		return nil, fmt.Errorf("failed to get paper: %w", err)
	}

	return paper, nil
}

// List retrieves a page of papers matching the filter, newest first.
func (r *PgPaperRepository) List(ctx context.Context, filter PaperFilter) ([]*domain.Paper, int64, error) {
	if err := filter.Validate(); err != nil {
		return nil, 0, err
	}

	var conditions []string
	var args []interface{}
	argIndex := 1

	if filter.Category != "" {
		conditions = append(conditions, fmt.Sprintf("category = $%d", argIndex))
		args = append(args, filter.Category)
		argIndex++
	}

	if filter.Provenance != "" {
		conditions = append(conditions, fmt.Sprintf("provenance = $%d", argIndex))
		args = append(args, string(filter.Provenance))
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM papers %s", whereClause)
	var totalCount int64
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count papers: %w", err)
	}

	selectQuery := fmt.Sprintf(`
		SELECT %s
		FROM papers
		%s
		ORDER BY "timestamp" DESC, id ASC
		LIMIT $%d OFFSET $%d`,
		paperColumns, whereClause, argIndex, argIndex+1)

	args = append(args, filter.Limit, filter.Offset)

	papers, err := r.queryPapers(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, err
	}

	return papers, totalCount, nil
}

// ListPapers retrieves every stored paper, newest first.
func (r *PgPaperRepository) ListPapers(ctx context.Context) ([]*domain.Paper, error) {
	query := `
		SELECT ` + paperColumns + `
		FROM papers
		ORDER BY "timestamp" DESC, id ASC`

	return r.queryPapers(ctx, query)
}

// AdjustUpvotes adds delta to the stored upvote count, clamped at zero.
func (r *PgPaperRepository) AdjustUpvotes(ctx context.Context, id string, delta int) (int, error) {
	if id == "" {
		return 0, domain.NewValidationError("id", "paper ID is required")
	}

	query := `
		UPDATE papers
		SET upvotes = GREATEST(upvotes + $2, 0)
		WHERE id = $1
		RETURNING upvotes`

	var upvotes int
	if err := r.db.QueryRow(ctx, query, id, delta).Scan(&upvotes); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.NewNotFoundError("paper", id)
		}
		return 0, fmt.Errorf("failed to adjust upvotes: %w", err)
	}

	return upvotes, nil
}

func (r *PgPaperRepository) queryPapers(ctx context.Context, query string, args ...interface{}) ([]*domain.Paper, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list papers: %w", err)
	}
	defer rows.Close()

	papers := make([]*domain.Paper, 0)
	for rows.Next() {
		paper, err := scanPaperFromRows(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan paper: %w", err)
		}
		papers = append(papers, paper)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating papers: %w", err)
	}

	return papers, nil
}

// insertArgs validates a paper and returns its column values in
// paperColumns order.
func insertArgs(paper *domain.Paper) ([]interface{}, error) {
	if paper == nil {
		return nil, domain.NewValidationError("paper", "paper cannot be nil")
	}
	if paper.ID == "" {
		return nil, domain.NewValidationError("id", "paper ID is required")
	}
	if !paper.Provenance.IsValid() {
		return nil, domain.NewValidationError("provenance", "unknown provenance")
	}

	authors := paper.Authors
	if authors == nil {
		authors = []string{}
	}
	authorsJSON, err := json.Marshal(authors)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal authors: %w", err)
	}

	upvotes := paper.Upvotes
	if upvotes < 0 {
		upvotes = 0
	}

	return []interface{}{
		paper.ID,
		string(paper.Provenance),
		paper.Title,
		authorsJSON,
		paper.Abstract,
		paper.AbstractPreview,
		paper.PublicationDate,
		paper.Category,
		paper.DOI,
		paper.WhyMatters,
		upvotes,
		paper.Timestamp,
	}, nil
}

// paperScanDest holds the destination pointers for scanning a Paper row.
type paperScanDest struct {
	paper       domain.Paper
	provenance  string
	authorsJSON []byte
}

// destinations returns the slice of pointers for Scan operations.
func (d *paperScanDest) destinations() []interface{} {
	return []interface{}{
		&d.paper.ID, &d.provenance, &d.paper.Title, &d.authorsJSON,
		&d.paper.Abstract, &d.paper.AbstractPreview, &d.paper.PublicationDate,
		&d.paper.Category, &d.paper.DOI, &d.paper.WhyMatters,
		&d.paper.Upvotes, &d.paper.Timestamp,
	}
}

// finalize performs post-scan processing: unmarshals JSON fields.
func (d *paperScanDest) finalize() (*domain.Paper, error) {
	d.paper.Provenance = domain.Provenance(d.provenance)
	if len(d.authorsJSON) > 0 {
		if err := json.Unmarshal(d.authorsJSON, &d.paper.Authors); err != nil {
			return nil, fmt.Errorf("failed to unmarshal authors: %w", err)
		}
	}
	if d.paper.Authors == nil {
		d.paper.Authors = []string{}
	}
	return &d.paper, nil
}

// scanPaper scans a single row into a Paper.
func scanPaper(row pgx.Row) (*domain.Paper, error) {
	var dest paperScanDest
	if err := row.Scan(dest.destinations()...); err != nil {
		return nil, err
	}
	return dest.finalize()
}

// scanPaperFromRows scans the current row from pgx.Rows into a Paper.
func scanPaperFromRows(rows pgx.Rows) (*domain.Paper, error) {
	var dest paperScanDest
	if err := rows.Scan(dest.destinations()...); err != nil {
		return nil, err
	}
	return dest.finalize()
}
