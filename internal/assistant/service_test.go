package assistant

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexus/paper-discovery-service/internal/catalog"
	"github.com/nexus/paper-discovery-service/internal/domain"
)

type stubProvider struct {
	reply string
	err   error
	last  ChatRequest
}

func (p *stubProvider) Chat(_ context.Context, req ChatRequest) (string, error) {
	p.last = req
	return p.reply, p.err
}

func (p *stubProvider) Provider() string { return "stub" }
func (p *stubProvider) Model() string    { return "stub-1" }

type fixedSnapshot struct {
	papers []*domain.Paper
}

func (f fixedSnapshot) Snapshot() *catalog.Snapshot {
	c := catalog.New(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = c.Run(ctx)
	}()
	defer func() {
		cancel()
		<-done
	}()
	_, _ = c.Apply(context.Background(), catalog.AppendEvent(f.papers...))
	return c.Snapshot()
}

type fakeAssistantMetrics struct {
	outcomes []string
}

func (m *fakeAssistantMetrics) RecordAssistantRequest(provider, outcome string) {
	m.outcomes = append(m.outcomes, provider+":"+outcome)
}

func TestService_Reply(t *testing.T) {
	ctx := context.Background()
	cat := fixedSnapshot{papers: []*domain.Paper{
		{ID: "sub-1", Provenance: domain.ProvenanceSubmission, Title: "My Paper", Authors: []string{"Me"}},
	}}
	history := []Turn{{Role: RoleUser, Text: "hi"}}

	t.Run("missing provider", func(t *testing.T) {
		m := &fakeAssistantMetrics{}
		svc := NewService(nil, cat, zerolog.Nop()).WithMetrics(m)
		assert.Equal(t, MissingProviderReply, svc.Reply(ctx, history, "hello"))
		assert.Equal(t, []string{"none:unconfigured"}, m.outcomes)
	})

	t.Run("success", func(t *testing.T) {
		p := &stubProvider{reply: "Here you go."}
		m := &fakeAssistantMetrics{}
		svc := NewService(p, cat, zerolog.Nop()).WithMetrics(m)

		assert.Equal(t, "Here you go.", svc.Reply(ctx, history, "hello"))
		assert.Equal(t, "hello", p.last.Message)
		assert.Equal(t, history, p.last.History)
		assert.True(t, strings.Contains(p.last.SystemInstruction, `"My Paper"`))
		assert.Equal(t, []string{"stub:success"}, m.outcomes)
	})

	t.Run("provider error", func(t *testing.T) {
		svc := NewService(&stubProvider{err: errors.New("boom")}, cat, zerolog.Nop())
		assert.Equal(t, ProviderErrorReply, svc.Reply(ctx, history, "hello"))
	})

	t.Run("empty text", func(t *testing.T) {
		svc := NewService(&stubProvider{reply: "  "}, cat, zerolog.Nop())
		require.Equal(t, EmptyReply, svc.Reply(ctx, history, "hello"))
	})
}
