// Package main provides nexusctl, an operator CLI for the paper discovery service.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/nexus/paper-discovery-service/internal/config"
	"github.com/nexus/paper-discovery-service/internal/observability"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newRootCmd assembles the command tree.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "nexusctl",
		Short:         "Resolve papers, inspect identifiers and seed the paper store",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newResolveCmd())
	root.AddCommand(newDetectCmd())
	root.AddCommand(newGenerateCmd())
	root.AddCommand(newSeedCmd())
	return root
}

// loadConfig loads configuration and a console logger for CLI use.
func loadConfig(verbose bool) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("load config: %w", err)
	}
	level := "warn"
	if verbose {
		level = "debug"
	}
	logger := observability.NewLogger(observability.LoggingConfig{
		Level:      level,
		Format:     "console",
		Output:     "stderr",
		TimeFormat: time.RFC3339,
		Service:    "nexusctl",
	})
	return cfg, logger.With().Str("component", "nexusctl").Logger(), nil
}
