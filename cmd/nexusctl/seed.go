package main

import (
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/spf13/cobra"

	"github.com/nexus/paper-discovery-service/internal/catalog"
	"github.com/nexus/paper-discovery-service/internal/database"
	"github.com/nexus/paper-discovery-service/internal/repository"
)

func newSeedCmd() *cobra.Command {
	var (
		generated int
		migrate   bool
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert the seed papers into the shared paper store",
		Long: "Insert the built-in seed papers, plus optional generated papers, into the\n" +
			"shared database in a single transaction. Existing IDs are skipped.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if generated < 0 {
				return fmt.Errorf("--generated must not be negative")
			}
			cfg, logger, err := loadConfig(false)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			db, err := database.New(ctx, &cfg.Database, logger)
			if err != nil {
				return fmt.Errorf("connect to database: %w", err)
			}
			defer db.Close()

			if migrate {
				migrator, err := database.NewMigrator(db, cfg.Database.MigrationPath, logger)
				if err != nil {
					return fmt.Errorf("create migrator: %w", err)
				}
				upErr := migrator.Up()
				_ = migrator.Close()
				if upErr != nil {
					return fmt.Errorf("run migrations: %w", upErr)
				}
			}

			papers := append(catalog.SeedPapers(), catalog.Generate(generated, time.Now())...)
			var inserted int
			err = db.WithTransaction(ctx, func(tx pgx.Tx) error {
				n, err := repository.NewPgPaperRepository(tx).InsertBatch(ctx, papers)
				inserted = n
				return err
			})
			if err != nil {
				return fmt.Errorf("seed papers: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "inserted %d of %d papers\n", inserted, len(papers))
			return nil
		},
	}
	cmd.Flags().IntVar(&generated, "generated", 0, "also insert N generated papers")
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply pending migrations first")
	return cmd
}
