// Package sources builds the metadata source registry from configuration.
package sources

import (
	"github.com/rs/zerolog"

	"github.com/nexus/paper-discovery-service/internal/config"
	"github.com/nexus/paper-discovery-service/internal/papersources"
	"github.com/nexus/paper-discovery-service/internal/papersources/arxiv"
	"github.com/nexus/paper-discovery-service/internal/papersources/biorxiv"
	"github.com/nexus/paper-discovery-service/internal/papersources/crossref"
	"github.com/nexus/paper-discovery-service/internal/papersources/pubmed"
)

// Set is the result of Build.
type Set struct {
	Registry *papersources.Registry
	// ArXiv is also the category lister for catalog bootstrap. Nil when
	// arXiv is disabled.
	ArXiv *arxiv.Client
}

// Build registers every enabled source. arXiv, PubMed and CrossRef share a
// relay-capable fetcher; bioRxiv and medRxiv call their API directly.
// recorder may be nil.
func Build(cfg *config.Config, recorder papersources.FetchRecorder, logger zerolog.Logger) Set {
	httpClient := papersources.NewHTTPClient(papersources.HTTPClientConfig{
		Timeout:   cfg.Resolver.AttemptTimeout,
		RateLimit: cfg.Resolver.RateLimit,
		BurstSize: cfg.Resolver.BurstSize,
		UserAgent: cfg.Resolver.UserAgent,
	})

	strategies := []papersources.Strategy{papersources.Direct()}
	if cfg.Resolver.RelaysEnabled {
		strategies = papersources.DefaultStrategies()
	}
	fetcher := papersources.NewFetcher(httpClient, strategies, logger)
	if recorder != nil {
		fetcher = fetcher.WithRecorder(recorder)
	}

	set := Set{Registry: papersources.NewRegistry()}
	src := cfg.PaperSources

	if src.ArXiv.Enabled {
		set.ArXiv = arxiv.New(arxiv.Config{
			BaseURL:    src.ArXiv.BaseURL,
			MaxResults: src.ArXiv.MaxResults,
		}, fetcher)
		set.Registry.Register(set.ArXiv)
		logger.Info().Msg("registered paper source: arXiv")
	}

	if src.PubMed.Enabled {
		set.Registry.Register(pubmed.New(pubmed.Config{
			BaseURL: src.PubMed.BaseURL,
			APIKey:  src.PubMed.APIKey,
		}, fetcher))
		logger.Info().Msg("registered paper source: PubMed")
	}

	// medRxiv shares the bioRxiv details API and its switch.
	if src.BioRxiv.Enabled {
		set.Registry.Register(biorxiv.NewBioRxiv(src.BioRxiv.BaseURL, httpClient))
		set.Registry.Register(biorxiv.NewMedRxiv(src.BioRxiv.BaseURL, httpClient))
		logger.Info().Msg("registered paper sources: bioRxiv, medRxiv")
	}

	if src.CrossRef.Enabled {
		set.Registry.Register(crossref.New(crossref.Config{
			BaseURL: src.CrossRef.BaseURL,
			Mailto:  src.CrossRef.Mailto,
		}, fetcher))
		logger.Info().Msg("registered paper source: CrossRef")
	}

	return set
}
