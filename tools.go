//go:build tools
// +build tools

// Package tools pins tool and driver modules that are only reached through
// build tags or blank imports, so go mod tidy keeps them in go.mod.
package tools

import (
	// Migrations
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"

	// Integration testing (integration build tag)
	_ "github.com/testcontainers/testcontainers-go"
	_ "github.com/testcontainers/testcontainers-go/modules/postgres"
)
