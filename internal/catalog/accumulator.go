// Package catalog holds the in-memory paper catalog and the queries run
// against it.
//
// The catalog is an event-sourced accumulator. One goroutine (Run) owns the
// authoritative list; every change enters through Apply as an Event. After
// each event the owner publishes a new immutable Snapshot, so readers never
// observe a partially applied change and never need a lock.
package catalog

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/nexus/paper-discovery-service/internal/domain"
)

// ErrNotRunning is returned by Apply after Run has returned.
var ErrNotRunning = errors.New("catalog is not running")

// EventType identifies a catalog change.
type EventType string

const (
	// EventAppend adds papers to the end of the list, in order.
	EventAppend EventType = "append"
	// EventPrepend adds papers to the front of the list, keeping their order.
	EventPrepend EventType = "prepend"
	// EventPrependIfAbsent prepends a paper unless one with the same ID is
	// already present. The check runs on the owner goroutine.
	EventPrependIfAbsent EventType = "prepend_if_absent"
	// EventUpvote adjusts the upvote count of every paper with the given ID.
	EventUpvote EventType = "upvote"
)

// Event is a single change submitted to the catalog.
type Event struct {
	Type    EventType
	Papers  []*domain.Paper
	PaperID string
	Delta   int
}

// AppendEvent builds an EventAppend.
func AppendEvent(papers ...*domain.Paper) Event {
	return Event{Type: EventAppend, Papers: papers}
}

// PrependEvent builds an EventPrepend.
func PrependEvent(papers ...*domain.Paper) Event {
	return Event{Type: EventPrepend, Papers: papers}
}

// PrependIfAbsentEvent builds an EventPrependIfAbsent for paper.
func PrependIfAbsentEvent(paper *domain.Paper) Event {
	return Event{Type: EventPrependIfAbsent, Papers: []*domain.Paper{paper}}
}

// UpvoteEvent builds an EventUpvote.
func UpvoteEvent(paperID string, delta int) Event {
	return Event{Type: EventUpvote, PaperID: paperID, Delta: delta}
}

// Snapshot is an immutable view of the catalog. Callers must not modify
// the papers it returns.
type Snapshot struct {
	papers  []*domain.Paper
	version uint64
}

// Papers returns the papers in catalog order.
func (s *Snapshot) Papers() []*domain.Paper {
	return s.papers
}

// Len returns the number of papers.
func (s *Snapshot) Len() int {
	return len(s.papers)
}

// Version increases by one with every applied event.
func (s *Snapshot) Version() uint64 {
	return s.version
}

// Get returns the first paper with the given ID.
func (s *Snapshot) Get(id string) (*domain.Paper, bool) {
	for _, p := range s.papers {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

// MetricsRecorder receives catalog events. *observability.Metrics implements it.
type MetricsRecorder interface {
	RecordCatalogEvent(eventType string, size int)
}

type request struct {
	event Event
	reply chan result
}

type result struct {
	paper *domain.Paper
	err   error
}

// Catalog is the single owner of the paper list.
type Catalog struct {
	requests chan request
	done     chan struct{}
	current  atomic.Pointer[Snapshot]
	metrics  MetricsRecorder
	logger   zerolog.Logger
}

// New creates an empty catalog. Call Run to start applying events.
func New(logger zerolog.Logger) *Catalog {
	c := &Catalog{
		requests: make(chan request),
		done:     make(chan struct{}),
		logger:   logger.With().Str("component", "catalog").Logger(),
	}
	c.current.Store(&Snapshot{})
	return c
}

// WithMetrics attaches a metrics recorder. It must be called before Run.
func (c *Catalog) WithMetrics(m MetricsRecorder) *Catalog {
	c.metrics = m
	return c
}

// Snapshot returns the latest published snapshot.
func (c *Catalog) Snapshot() *Snapshot {
	return c.current.Load()
}

// Run applies events until ctx is cancelled. It must be called exactly once.
func (c *Catalog) Run(ctx context.Context) error {
	defer close(c.done)
	c.logger.Info().Msg("catalog started")

	for {
		select {
		case <-ctx.Done():
			c.logger.Info().Msg("catalog stopped")
			return ctx.Err()
		case req := <-c.requests:
			paper, err := c.apply(req.event)
			req.reply <- result{paper: paper, err: err}
		}
	}
}

// Apply submits an event and waits until it has been applied. For upvote
// events it returns the updated paper. For EventPrependIfAbsent it returns
// the added paper, or nil when the ID was already present.
func (c *Catalog) Apply(ctx context.Context, ev Event) (*domain.Paper, error) {
	req := request{event: ev, reply: make(chan result, 1)}

	select {
	case c.requests <- req:
	case <-c.done:
		return nil, ErrNotRunning
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case res := <-req.reply:
		return res.paper, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// apply runs on the owner goroutine only.
func (c *Catalog) apply(ev Event) (*domain.Paper, error) {
	prev := c.current.Load()

	var (
		next    []*domain.Paper
		updated *domain.Paper
	)

	switch ev.Type {
	case EventAppend:
		next = make([]*domain.Paper, 0, len(prev.papers)+len(ev.Papers))
		next = append(next, prev.papers...)
		next = append(next, nonNil(ev.Papers)...)
	case EventPrepend:
		next = make([]*domain.Paper, 0, len(prev.papers)+len(ev.Papers))
		next = append(next, nonNil(ev.Papers)...)
		next = append(next, prev.papers...)
	case EventPrependIfAbsent:
		if len(ev.Papers) != 1 || ev.Papers[0] == nil {
			return nil, domain.NewValidationError("event", "prepend_if_absent takes exactly one paper")
		}
		if _, ok := prev.Get(ev.Papers[0].ID); ok {
			return nil, nil
		}
		updated = ev.Papers[0]
		next = make([]*domain.Paper, 0, len(prev.papers)+1)
		next = append(next, updated)
		next = append(next, prev.papers...)
	case EventUpvote:
		next = make([]*domain.Paper, len(prev.papers))
		copy(next, prev.papers)
		for i, p := range next {
			if p.ID != ev.PaperID {
				continue
			}
			clone := p.Clone()
			clone.AdjustUpvotes(ev.Delta)
			next[i] = clone
			if updated == nil {
				updated = clone
			}
		}
		if updated == nil {
			return nil, domain.NewNotFoundError("paper", ev.PaperID)
		}
	default:
		return nil, domain.NewValidationError("event", "unknown event type "+string(ev.Type))
	}

	c.current.Store(&Snapshot{papers: next, version: prev.version + 1})

	if c.metrics != nil {
		c.metrics.RecordCatalogEvent(string(ev.Type), len(next))
	}
	c.logger.Debug().
		Str("event", string(ev.Type)).
		Int("papers", len(ev.Papers)).
		Int("size", len(next)).
		Msg("catalog event applied")

	return updated, nil
}

func nonNil(papers []*domain.Paper) []*domain.Paper {
	out := papers[:0:0]
	for _, p := range papers {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}
