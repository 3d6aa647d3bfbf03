package assistant

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/nexus/paper-discovery-service/internal/catalog"
)

// Fixed replies.
const (
	MissingProviderReply = "I'm sorry, I cannot connect to the research database right now. (Missing API Key)"
	ProviderErrorReply   = "I apologize, but I am unable to retrieve that information from the archives at this moment."
	EmptyReply           = "I was unable to generate a response."
)

// Snapshotter exposes the current catalog. *catalog.Catalog implements it.
type Snapshotter interface {
	Snapshot() *catalog.Snapshot
}

// Metrics receives assistant request outcomes.
type Metrics interface {
	RecordAssistantRequest(provider, outcome string)
}

// Service answers chat messages about the catalog.
type Service struct {
	provider Provider
	catalog  Snapshotter
	metrics  Metrics
	logger   zerolog.Logger
}

// NewService creates a Service. provider may be nil, in which case every
// reply is MissingProviderReply.
func NewService(provider Provider, cat Snapshotter, logger zerolog.Logger) *Service {
	return &Service{
		provider: provider,
		catalog:  cat,
		logger:   logger.With().Str("component", "assistant").Logger(),
	}
}

// WithMetrics attaches a metrics recorder.
func (s *Service) WithMetrics(m Metrics) *Service {
	s.metrics = m
	return s
}

// Reply returns the assistant's answer to message. It never fails: errors
// are logged and replaced by a fixed reply.
func (s *Service) Reply(ctx context.Context, history []Turn, message string) string {
	if s.provider == nil {
		s.record("none", "unconfigured")
		return MissingProviderReply
	}

	req := ChatRequest{
		SystemInstruction: BuildSystemInstruction(s.catalog.Snapshot().Papers()),
		History:           history,
		Message:           message,
	}

	text, err := s.provider.Chat(ctx, req)
	if err != nil {
		s.logger.Error().Err(err).
			Str("provider", s.provider.Provider()).
			Str("model", s.provider.Model()).
			Msg("assistant request failed")
		s.record(s.provider.Provider(), "error")
		return ProviderErrorReply
	}

	if strings.TrimSpace(text) == "" {
		s.record(s.provider.Provider(), "empty")
		return EmptyReply
	}

	s.record(s.provider.Provider(), "success")
	return text
}

func (s *Service) record(provider, outcome string) {
	if s.metrics != nil {
		s.metrics.RecordAssistantRequest(provider, outcome)
	}
}
