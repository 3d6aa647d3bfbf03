package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the paper discovery service.
// All collectors are registered with the default registry through promauto,
// so a namespace may only be used once per process.
//
// Metrics satisfies the recorder interfaces declared by papersources,
// resolver, catalog, preferences and assistant.
type Metrics struct {
	// ResolutionsTotal counts resolutions, labeled by source and outcome.
	ResolutionsTotal *prometheus.CounterVec

	// ResolutionDuration observes resolution latency in seconds, labeled by source.
	ResolutionDuration *prometheus.HistogramVec

	// FetchAttemptsTotal counts transport attempts, labeled by source, strategy and outcome.
	FetchAttemptsTotal *prometheus.CounterVec

	// CacheLookupsTotal counts resolution cache lookups, labeled by result (hit, miss, error).
	CacheLookupsTotal *prometheus.CounterVec

	// CatalogPapers reports the size of the current catalog snapshot.
	CatalogPapers prometheus.Gauge

	// CatalogEventsTotal counts catalog events applied, labeled by event type.
	CatalogEventsTotal *prometheus.CounterVec

	// SubmissionsTotal counts accepted submissions, labeled by mode.
	SubmissionsTotal *prometheus.CounterVec

	// UpvotesTotal counts upvote toggles, labeled by direction.
	UpvotesTotal *prometheus.CounterVec

	// AssistantRequestsTotal counts assistant replies, labeled by provider and outcome.
	AssistantRequestsTotal *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics initialized.
// The namespace is used as a prefix for all metric names.
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		// Resolution
		ResolutionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolutions_total",
			Help:      "Total number of metadata resolutions by source and outcome",
		}, []string{"source", "outcome"}),
		ResolutionDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "resolution_duration_seconds",
			Help:      "Duration of metadata resolutions in seconds by source",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 45},
		}, []string{"source"}),
		FetchAttemptsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_attempts_total",
			Help:      "Total number of source fetch attempts by transport strategy",
		}, []string{"source", "strategy", "outcome"}),
		CacheLookupsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Total number of resolution cache lookups by result",
		}, []string{"result"}),

		// Catalog
		CatalogPapers: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "catalog_papers",
			Help:      "Number of papers in the current catalog snapshot",
		}),
		CatalogEventsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_events_total",
			Help:      "Total number of catalog events applied by type",
		}, []string{"type"}),
		SubmissionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_total",
			Help:      "Total number of paper submissions by mode",
		}, []string{"mode"}),
		UpvotesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upvotes_total",
			Help:      "Total number of upvote toggles by direction",
		}, []string{"direction"}),

		// Assistant
		AssistantRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assistant_requests_total",
			Help:      "Total number of assistant requests by provider and outcome",
		}, []string{"provider", "outcome"}),
	}
}

// RecordResolution records a finished resolution.
func (m *Metrics) RecordResolution(source, outcome string, duration time.Duration) {
	m.ResolutionsTotal.WithLabelValues(source, outcome).Inc()
	m.ResolutionDuration.WithLabelValues(source).Observe(duration.Seconds())
}

// RecordFetchAttempt records one transport attempt against a source.
func (m *Metrics) RecordFetchAttempt(source, strategy, outcome string) {
	m.FetchAttemptsTotal.WithLabelValues(source, strategy, outcome).Inc()
}

// RecordCacheLookup records a resolution cache lookup.
func (m *Metrics) RecordCacheLookup(result string) {
	m.CacheLookupsTotal.WithLabelValues(result).Inc()
}

// RecordCatalogEvent records an applied catalog event and the resulting size.
func (m *Metrics) RecordCatalogEvent(eventType string, size int) {
	m.CatalogEventsTotal.WithLabelValues(eventType).Inc()
	m.CatalogPapers.Set(float64(size))
}

// RecordSubmission records an accepted submission.
func (m *Metrics) RecordSubmission(mode string) {
	m.SubmissionsTotal.WithLabelValues(mode).Inc()
}

// RecordUpvote records an upvote toggle.
func (m *Metrics) RecordUpvote(direction string) {
	m.UpvotesTotal.WithLabelValues(direction).Inc()
}

// RecordAssistantRequest records an assistant reply.
func (m *Metrics) RecordAssistantRequest(provider, outcome string) {
	m.AssistantRequestsTotal.WithLabelValues(provider, outcome).Inc()
}
