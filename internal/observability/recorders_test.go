package observability_test

import (
	"github.com/nexus/paper-discovery-service/internal/assistant"
	"github.com/nexus/paper-discovery-service/internal/catalog"
	"github.com/nexus/paper-discovery-service/internal/observability"
	"github.com/nexus/paper-discovery-service/internal/papersources"
	"github.com/nexus/paper-discovery-service/internal/preferences"
	"github.com/nexus/paper-discovery-service/internal/resolver"
)

// *Metrics is handed to every component that records outcomes.
var (
	_ papersources.FetchRecorder = (*observability.Metrics)(nil)
	_ resolver.MetricsRecorder   = (*observability.Metrics)(nil)
	_ catalog.MetricsRecorder    = (*observability.Metrics)(nil)
	_ catalog.SubmissionMetrics  = (*observability.Metrics)(nil)
	_ preferences.Metrics        = (*observability.Metrics)(nil)
	_ assistant.Metrics          = (*observability.Metrics)(nil)
)
