package preferences

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/rs/zerolog"

	"github.com/nexus/paper-discovery-service/internal/catalog"
	"github.com/nexus/paper-discovery-service/internal/domain"
)

// Per-user keys, stored as "<user>:<key>".
const (
	UpvotesKey     = "nexus-user-upvotes"
	ReadingListKey = "nexus-library-items"
)

// Catalog is the part of *catalog.Catalog the service needs.
type Catalog interface {
	Snapshot() *catalog.Snapshot
	Apply(ctx context.Context, ev catalog.Event) (*domain.Paper, error)
}

// UpvotePersister mirrors upvote changes into the shared database.
type UpvotePersister interface {
	AdjustUpvotes(ctx context.Context, id string, delta int) (int, error)
}

// Metrics receives upvote changes.
type Metrics interface {
	RecordUpvote(direction string)
}

// UpvoteResult is the outcome of ToggleUpvote.
type UpvoteResult struct {
	Paper   *domain.Paper `json:"paper"`
	Upvoted bool          `json:"upvoted"`
}

// Service implements upvote toggling and the reading list.
type Service struct {
	store     Store
	catalog   Catalog
	persister UpvotePersister
	metrics   Metrics
	logger    zerolog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithUpvotePersister mirrors upvotes to the database.
func WithUpvotePersister(p UpvotePersister) Option {
	return func(s *Service) { s.persister = p }
}

// WithMetrics attaches a metrics recorder.
func WithMetrics(m Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService creates a Service.
func NewService(store Store, cat Catalog, logger zerolog.Logger, opts ...Option) *Service {
	s := &Service{
		store:   store,
		catalog: cat,
		logger:  logger.With().Str("component", "preferences").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ToggleUpvote upvotes paperID for user, or withdraws the upvote if the
// user already gave one.
func (s *Service) ToggleUpvote(ctx context.Context, user, paperID string) (*UpvoteResult, error) {
	key, err := userKey(user, UpvotesKey)
	if err != nil {
		return nil, err
	}
	if _, ok := s.catalog.Snapshot().Get(paperID); !ok {
		return nil, domain.NewNotFoundError("paper", paperID)
	}

	var upvoted bool
	err = s.store.Update(ctx, key, func(current []byte) ([]byte, error) {
		ids, err := decodeList[string](current)
		if err != nil {
			return nil, err
		}
		if i := slices.Index(ids, paperID); i >= 0 {
			ids = slices.Delete(ids, i, i+1)
			upvoted = false
		} else {
			ids = append(ids, paperID)
			upvoted = true
		}
		return json.Marshal(ids)
	})
	if err != nil {
		return nil, fmt.Errorf("updating upvotes: %w", err)
	}

	delta, direction := -1, "down"
	if upvoted {
		delta, direction = 1, "up"
	}

	updated, err := s.catalog.Apply(ctx, catalog.UpvoteEvent(paperID, delta))
	if err != nil {
		return nil, fmt.Errorf("applying upvote: %w", err)
	}

	if s.persister != nil {
		if _, err := s.persister.AdjustUpvotes(ctx, paperID, delta); err != nil && !errors.Is(err, domain.ErrNotFound) {
			s.logger.Warn().Err(err).Str("paper_id", paperID).Msg("failed to persist upvote")
		}
	}
	if s.metrics != nil {
		s.metrics.RecordUpvote(direction)
	}

	return &UpvoteResult{Paper: updated, Upvoted: upvoted}, nil
}

// Upvoted returns the IDs the user has upvoted.
func (s *Service) Upvoted(ctx context.Context, user string) ([]string, error) {
	key, err := userKey(user, UpvotesKey)
	if err != nil {
		return nil, err
	}
	raw, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	return decodeList[string](raw)
}

// ReadingList returns the user's saved papers in insertion order.
func (s *Service) ReadingList(ctx context.Context, user string) ([]*domain.Paper, error) {
	key, err := userKey(user, ReadingListKey)
	if err != nil {
		return nil, err
	}
	raw, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	return decodeList[*domain.Paper](raw)
}

// AddToReadingList saves the catalog paper paperID for user. Adding a
// paper that is already on the list is a no-op.
func (s *Service) AddToReadingList(ctx context.Context, user, paperID string) ([]*domain.Paper, error) {
	key, err := userKey(user, ReadingListKey)
	if err != nil {
		return nil, err
	}
	paper, ok := s.catalog.Snapshot().Get(paperID)
	if !ok {
		return nil, domain.NewNotFoundError("paper", paperID)
	}

	var list []*domain.Paper
	err = s.store.Update(ctx, key, func(current []byte) ([]byte, error) {
		items, err := decodeList[*domain.Paper](current)
		if err != nil {
			return nil, err
		}
		if !slices.ContainsFunc(items, func(p *domain.Paper) bool { return p.ID == paperID }) {
			items = append(items, paper.Clone())
		}
		list = items
		return json.Marshal(items)
	})
	if err != nil {
		return nil, fmt.Errorf("updating reading list: %w", err)
	}
	return list, nil
}

// RemoveFromReadingList removes the item at index.
func (s *Service) RemoveFromReadingList(ctx context.Context, user string, index int) ([]*domain.Paper, error) {
	key, err := userKey(user, ReadingListKey)
	if err != nil {
		return nil, err
	}

	var list []*domain.Paper
	err = s.store.Update(ctx, key, func(current []byte) ([]byte, error) {
		items, err := decodeList[*domain.Paper](current)
		if err != nil {
			return nil, err
		}
		if index < 0 || index >= len(items) {
			return nil, domain.NewValidationError("index", fmt.Sprintf("out of range [0, %d)", len(items)))
		}
		items = slices.Delete(items, index, index+1)
		list = items
		return json.Marshal(items)
	})
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			return nil, err
		}
		return nil, fmt.Errorf("updating reading list: %w", err)
	}
	return list, nil
}

func userKey(user, key string) (string, error) {
	user = strings.TrimSpace(user)
	if user == "" {
		return "", domain.NewValidationError("user", "is required")
	}
	return user + ":" + key, nil
}

func decodeList[T any](raw []byte) ([]T, error) {
	if len(raw) == 0 {
		return []T{}, nil
	}
	var out []T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decoding stored list: %w", err)
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}
