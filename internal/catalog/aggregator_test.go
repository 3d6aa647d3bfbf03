package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexus/paper-discovery-service/internal/domain"
)

type stubDatabase struct {
	papers []*domain.Paper
	err    error
}

func (s *stubDatabase) ListPapers(context.Context) ([]*domain.Paper, error) {
	return s.papers, s.err
}

type stubListings struct {
	mu     sync.Mutex
	calls  []string
	failOn map[string]bool
	delay  map[string]time.Duration
}

func (s *stubListings) ListCategory(ctx context.Context, category string, maxResults int) ([]*domain.Paper, error) {
	s.mu.Lock()
	s.calls = append(s.calls, category)
	s.mu.Unlock()

	if d := s.delay[category]; d > 0 {
		time.Sleep(d)
	}
	if s.failOn[category] {
		return nil, errors.New("listing failed")
	}
	return []*domain.Paper{{ID: "arxiv-" + category + "-0", Provenance: domain.ProvenanceAggregator}}, nil
}

type stubSubmissions struct {
	papers []*domain.Paper
	err    error
}

func (s *stubSubmissions) ListSubmissions(context.Context) ([]*domain.Paper, error) {
	return s.papers, s.err
}

func testAggregator(db PaperLister, listings CategoryLister, subs SubmissionLister) *Aggregator {
	return NewAggregator(AggregatorConfig{
		Categories:     []string{"cs.AI", "cs.CL", "math.PR"},
		MaxPerCategory: 10,
		GeneratedCount: 3,
	}, db, listings, subs, zerolog.Nop()).WithClock(func() time.Time { return time.UnixMilli(1_000_000_000) })
}

func TestAggregator_Aggregate(t *testing.T) {
	ctx := context.Background()

	t.Run("concatenates providers in order", func(t *testing.T) {
		db := &stubDatabase{papers: []*domain.Paper{{ID: "sub-2"}, {ID: "sub-1"}}}
		listings := &stubListings{delay: map[string]time.Duration{"cs.AI": 20 * time.Millisecond}}
		subs := &stubSubmissions{papers: []*domain.Paper{{ID: "sub-local"}}}

		papers := testAggregator(db, listings, subs).Aggregate(ctx)

		assert.Equal(t, []string{
			"sub-2", "sub-1",
			"arxiv-cs.AI-0", "arxiv-cs.CL-0", "arxiv-math.PR-0",
			"sub-local",
			"sub-global-001",
			"gen-0", "gen-1", "gen-2",
		}, ids(papers))
		assert.ElementsMatch(t, []string{"cs.AI", "cs.CL", "math.PR"}, listings.calls)
	})

	t.Run("failed categories contribute nothing", func(t *testing.T) {
		listings := &stubListings{failOn: map[string]bool{"cs.CL": true}}

		papers := testAggregator(&stubDatabase{}, listings, nil).Aggregate(ctx)

		assert.Equal(t, []string{
			"arxiv-cs.AI-0", "arxiv-math.PR-0",
			"sub-global-001",
			"gen-0", "gen-1", "gen-2",
		}, ids(papers))
	})

	t.Run("database failure falls back to seed and generated", func(t *testing.T) {
		listings := &stubListings{}
		db := &stubDatabase{err: errors.New("connection refused")}

		papers := testAggregator(db, listings, &stubSubmissions{}).Aggregate(ctx)

		assert.Equal(t, []string{"sub-global-001", "gen-0", "gen-1", "gen-2"}, ids(papers))
		assert.Empty(t, listings.calls)
	})

	t.Run("submission store failure is skipped", func(t *testing.T) {
		papers := testAggregator(nil, nil, &stubSubmissions{err: errors.New("redis down")}).Aggregate(ctx)
		assert.Equal(t, []string{"sub-global-001", "gen-0", "gen-1", "gen-2"}, ids(papers))
	})
}

func TestAggregator_Bootstrap(t *testing.T) {
	c := startCatalog(t)
	ctx := context.Background()

	_, err := c.Apply(ctx, PrependEvent(paper("early-submission", 0)))
	require.NoError(t, err)

	require.NoError(t, testAggregator(nil, nil, nil).Bootstrap(ctx, c))

	assert.Equal(t, []string{"early-submission", "sub-global-001", "gen-0", "gen-1", "gen-2"}, ids(c.Snapshot().Papers()))
}
