// Package resolver turns a free-form paper identifier or URL into normalized
// metadata. It detects the source, routes through a fallback chain of
// sources where the identifier is ambiguous, and classifies failures.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/nexus/paper-discovery-service/internal/domain"
	"github.com/nexus/paper-discovery-service/internal/papersources"
)

// DefaultTimeout bounds a whole resolution, across every source in the chain.
const DefaultTimeout = 45 * time.Second

// Cache stores successful resolutions keyed by the trimmed input.
// Implementations must be safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, input string) (*domain.Metadata, bool, error)
	Set(ctx context.Context, input string, meta *domain.Metadata) error
}

// MetricsRecorder receives resolution outcomes. *observability.Metrics implements it.
type MetricsRecorder interface {
	RecordResolution(source, outcome string, duration time.Duration)
	RecordCacheLookup(result string)
}

// Config holds resolver settings.
type Config struct {
	// Timeout bounds a whole resolution. Zero uses DefaultTimeout.
	Timeout time.Duration
}

// Resolver resolves identifiers against registered metadata sources.
// It is safe for concurrent use.
type Resolver struct {
	registry *papersources.Registry
	cache    Cache
	metrics  MetricsRecorder
	logger   zerolog.Logger
	timeout  time.Duration
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithCache enables the resolution cache.
func WithCache(c Cache) Option {
	return func(r *Resolver) { r.cache = c }
}

// WithMetrics attaches a metrics recorder.
func WithMetrics(m MetricsRecorder) Option {
	return func(r *Resolver) { r.metrics = m }
}

// New creates a Resolver over the sources in registry.
func New(cfg Config, registry *papersources.Registry, logger zerolog.Logger, opts ...Option) *Resolver {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	r := &Resolver{
		registry: registry,
		logger:   logger.With().Str("component", "resolver").Logger(),
		timeout:  cfg.Timeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve fetches normalized metadata for input.
//
// Arxiv and PubMed identifiers go to their source. Inputs containing a
// 10.1101 DOI try bioRxiv, then medRxiv, then CrossRef, and the last
// failure is returned. Other DOIs go to CrossRef. Anything else fails with
// an Undetected error.
func (r *Resolver) Resolve(ctx context.Context, input string) (*domain.Metadata, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, domain.NewResolutionError(domain.KindInvalidInput, "",
			"Please enter a paper ID or URL.", domain.NewValidationError("input", "must not be empty"))
	}

	if meta, ok := r.lookupCache(ctx, input); ok {
		return meta, nil
	}

	plan := Plan(input)
	if len(plan) == 0 {
		r.record("", "undetected", 0)
		return nil, domain.NewResolutionError(domain.KindUndetected, "", UndetectedMessage, nil)
	}

	parent := ctx
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var (
		lastErr    error
		lastSource domain.SourceType
	)
	for i, sourceType := range plan {
		meta, err := r.fetch(ctx, sourceType, input)
		if err == nil {
			r.storeCache(ctx, input, meta)
			return meta, nil
		}
		lastErr, lastSource = err, sourceType

		if ctx.Err() != nil {
			break
		}
		if i < len(plan)-1 {
			r.logger.Warn().
				Err(err).
				Str("input", input).
				Str("source", string(sourceType)).
				Str("next", string(plan[i+1])).
				Msg("source failed, trying next")
		}
	}

	// Our own deadline means the source never answered. The caller's
	// cancellation is passed through unchanged.
	if parent.Err() == nil && errors.Is(lastErr, context.DeadlineExceeded) {
		lastErr = domain.NewResolutionError(domain.KindNetwork, lastSource,
			papersources.NetworkErrorMessage, lastErr)
	}

	r.logger.Debug().Err(lastErr).Str("input", input).Msg("resolution failed")
	return nil, lastErr
}

// fetch runs a single source and records the outcome.
func (r *Resolver) fetch(ctx context.Context, sourceType domain.SourceType, input string) (*domain.Metadata, error) {
	source := r.registry.Get(sourceType)
	if source == nil {
		return nil, fmt.Errorf("source %s is not configured: %w", sourceType, domain.ErrServiceUnavailable)
	}

	start := time.Now()
	meta, err := source.Fetch(ctx, input)
	r.record(sourceType, outcomeOf(err), time.Since(start))
	if err != nil {
		return nil, err
	}
	meta.Source = sourceType
	return meta, nil
}

func (r *Resolver) lookupCache(ctx context.Context, input string) (*domain.Metadata, bool) {
	if r.cache == nil {
		return nil, false
	}
	meta, ok, err := r.cache.Get(ctx, input)
	switch {
	case err != nil:
		r.logger.Warn().Err(err).Str("input", input).Msg("resolution cache lookup failed")
		r.recordCache("error")
		return nil, false
	case !ok:
		r.recordCache("miss")
		return nil, false
	default:
		r.recordCache("hit")
		return meta, true
	}
}

func (r *Resolver) storeCache(ctx context.Context, input string, meta *domain.Metadata) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Set(ctx, input, meta); err != nil {
		r.logger.Warn().Err(err).Str("input", input).Msg("resolution cache store failed")
	}
}

func (r *Resolver) record(source domain.SourceType, outcome string, d time.Duration) {
	if r.metrics == nil {
		return
	}
	label := string(source)
	if label == "" {
		label = "unknown"
	}
	r.metrics.RecordResolution(label, outcome, d)
}

func (r *Resolver) recordCache(result string) {
	if r.metrics != nil {
		r.metrics.RecordCacheLookup(result)
	}
}

// outcomeOf maps an error to a metrics label.
func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	}
	if kind := domain.KindOf(err); kind != "" {
		return string(kind)
	}
	return "error"
}
