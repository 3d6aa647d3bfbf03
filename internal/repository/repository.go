// Package repository provides data access for the shared paper store.
//
// Repositories accept a DBTX so the same implementation runs on the pool or
// inside a transaction:
//
//	err := db.WithTransaction(ctx, func(tx pgx.Tx) error {
//	    return repository.NewPgPaperRepository(tx).Insert(ctx, paper)
//	})
//
// All methods return errors from the domain package (domain.ErrNotFound,
// domain.ErrAlreadyExists, domain.ErrInvalidInput) wrapped with context.
package repository

import (
	"github.com/nexus/paper-discovery-service/internal/database"
)

// DBTX is the database interface supporting both pool and transaction contexts.
type DBTX = database.DBTX

// Filter pagination defaults and limits.
const (
	defaultFilterLimit = 100
	maxFilterLimit     = 1000
)

// applyPaginationDefaults normalizes limit and offset values for filter queries.
// It clamps limit to [1, maxFilterLimit] and ensures offset >= 0.
func applyPaginationDefaults(limit, offset *int) {
	if *limit <= 0 {
		*limit = defaultFilterLimit
	}
	if *limit > maxFilterLimit {
		*limit = maxFilterLimit
	}
	if *offset < 0 {
		*offset = 0
	}
}
