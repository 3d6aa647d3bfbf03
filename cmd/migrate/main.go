// Package main provides a CLI tool for paper store migrations.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/nexus/paper-discovery-service/internal/config"
	"github.com/nexus/paper-discovery-service/internal/database"
	"github.com/nexus/paper-discovery-service/internal/observability"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	up := flag.Bool("up", false, "Run all pending migrations")
	down := flag.Bool("down", false, "Roll back all migrations")
	steps := flag.Int("steps", 0, "Run N migration steps (positive=up, negative=down)")
	version := flag.Bool("version", false, "Print the current migration version")
	force := flag.Int("force", -1, "Force set migration version (use to recover from failed migrations)")
	drop := flag.Bool("drop", false, "Drop every table in the database")
	migrationsPath := flag.String("path", "", "Override the migrations directory path")
	dsn := flag.String("dsn", "", "Override the database connection string")
	flag.Parse()

	selected := 0
	for _, set := range []bool{*up, *down, *steps != 0, *version, *force >= 0, *drop} {
		if set {
			selected++
		}
	}
	if selected == 0 {
		flag.Usage()
		fmt.Fprintln(os.Stderr, "\nPlease specify one of: -up, -down, -steps N, -version, -force V, -drop")
		return fmt.Errorf("no action specified")
	}
	if selected > 1 {
		return fmt.Errorf("specify only one action at a time")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := observability.NewLogger(observability.LoggingConfig{
		Level:      "info",
		Format:     "console",
		Output:     "stdout",
		TimeFormat: time.RFC3339,
		Service:    "migrate",
	})
	logger = logger.With().Str("component", "migrate").Logger()

	migrationDir := cfg.Database.MigrationPath
	if *migrationsPath != "" {
		migrationDir = *migrationsPath
	}
	connString := cfg.Database.DSN()
	if *dsn != "" {
		connString = *dsn
	}

	// The CLI goes through database/sql so it works without the pgx pool.
	migrator, err := database.NewMigratorFromDSN(connString, migrationDir, logger)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	defer func() {
		if closeErr := migrator.Close(); closeErr != nil {
			logger.Error().Err(closeErr).Msg("failed to close migrator")
		}
	}()

	switch {
	case *up:
		logger.Info().Msg("running all pending migrations")
		err = migrator.Up()
	case *down:
		logger.Warn().Msg("rolling back all migrations")
		err = migrator.Down()
	case *steps != 0:
		logger.Info().Int("steps", *steps).Msg("running migration steps")
		err = migrator.Steps(*steps)
	case *force >= 0:
		logger.Warn().Int("version", *force).Msg("forcing migration version")
		err = migrator.Force(*force)
	case *drop:
		logger.Warn().Msg("dropping all tables")
		err = migrator.DropAll()
	}
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	printVersion(migrator, logger)
	return nil
}

// printVersion logs the current migration version.
func printVersion(migrator *database.Migrator, logger zerolog.Logger) {
	v, dirty, err := migrator.Version()
	if err != nil {
		logger.Warn().Err(err).Msg("could not determine migration version")
		return
	}
	logger.Info().
		Uint("version", v).
		Bool("dirty", dirty).
		Msg("current migration version")
}
