package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nexus/paper-discovery-service/internal/catalog"
)

func newGenerateCmd() *cobra.Command {
	var (
		count int
		seed  bool
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Print synthetic filler papers as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if count < 0 {
				return fmt.Errorf("--count must not be negative")
			}
			papers := catalog.Generate(count, time.Now())
			if seed {
				papers = append(catalog.SeedPapers(), papers...)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(papers)
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 10, "number of papers to generate")
	cmd.Flags().BoolVar(&seed, "with-seed", false, "prepend the built-in seed papers")
	return cmd
}
