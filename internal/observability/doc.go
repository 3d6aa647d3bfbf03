// Package observability provides logging, metrics, and context helpers for
// the paper discovery service.
//
// # Logging
//
// Create a logger from configuration:
//
//	logger := observability.NewLogger(observability.LoggingConfig{
//	    Level:  "info",
//	    Format: "json",
//	    Output: "stdout",
//	})
//	logger = observability.WithComponent(logger, "resolver")
//
// Handlers enrich their logger from the request context:
//
//	log := observability.LoggerFromContext(r.Context(), logger)
//
// # Metrics
//
// A single *Metrics is created at startup and passed to every component that
// takes a recorder:
//
//	metrics := observability.NewMetrics("nexus")
//	fetcher := papersources.NewFetcher(client, nil, logger).WithRecorder(metrics)
//
// # Standard Fields
//
//   - component: owning component (resolver, catalog, feed, ...)
//   - request_id: HTTP request identifier
//   - correlation_id: identifier propagated to outbound calls
//   - user_id: caller identity from X-User-ID
//   - input, source: resolution input and detected source
//   - paper_id, provenance: paper identity and origin
package observability
