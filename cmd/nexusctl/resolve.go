package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nexus/paper-discovery-service/internal/papersources/sources"
	"github.com/nexus/paper-discovery-service/internal/resolver"
)

// errResolveFailed is returned after the user-facing message was printed.
var errResolveFailed = errors.New("resolution failed")

func newResolveCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "resolve <input>",
		Short: "Resolve an arXiv ID, PMID, DOI or URL to paper metadata",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(verbose)
			if err != nil {
				return err
			}
			set := sources.Build(cfg, nil, logger)
			res := resolver.New(resolver.Config{Timeout: cfg.Resolver.Timeout}, set.Registry, logger)

			input := strings.TrimSpace(strings.Join(args, " "))
			meta, err := res.Resolve(cmd.Context(), input)
			if err != nil {
				logger.Debug().Err(err).Msg("resolve failed")
				_, _ = fmt.Fprintln(cmd.ErrOrStderr(), resolver.UserMessage(input, err))
				return errResolveFailed
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(meta)
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log every fetch attempt")
	return cmd
}

func newDetectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "detect <input>",
		Short: "Print the source an identifier would be resolved against",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := strings.TrimSpace(strings.Join(args, " "))
			plan := resolver.Plan(input)
			if len(plan) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "unknown")
				return nil
			}

			source := string(resolver.Detect(input))
			if source == "" {
				source = "doi"
			}
			names := make([]string, len(plan))
			for i, st := range plan {
				names[i] = string(st)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", source, strings.Join(names, " -> "))
			return nil
		},
	}
}
