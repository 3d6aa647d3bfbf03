package preferences

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nexus/paper-discovery-service/internal/domain"
)

// SharedPapersKey holds the submissions shared by every user.
const SharedPapersKey = "shared-papers"

// SubmissionStore keeps user submissions in a Store, newest first.
type SubmissionStore struct {
	store Store
}

// NewSubmissionStore creates a SubmissionStore on top of store.
func NewSubmissionStore(store Store) *SubmissionStore {
	return &SubmissionStore{store: store}
}

// SaveSubmission puts paper at the front of the list, dropping any older
// entry with the same ID.
func (s *SubmissionStore) SaveSubmission(ctx context.Context, paper *domain.Paper) error {
	err := s.store.Update(ctx, SharedPapersKey, func(current []byte) ([]byte, error) {
		existing, err := decodeList[*domain.Paper](current)
		if err != nil {
			return nil, err
		}
		next := make([]*domain.Paper, 0, len(existing)+1)
		next = append(next, paper)
		for _, p := range existing {
			if p.ID != paper.ID {
				next = append(next, p)
			}
		}
		return json.Marshal(next)
	})
	if err != nil {
		return fmt.Errorf("saving submission %s: %w", paper.ID, err)
	}
	return nil
}

// ListSubmissions returns the stored submissions, newest first.
func (s *SubmissionStore) ListSubmissions(ctx context.Context) ([]*domain.Paper, error) {
	raw, err := s.store.Get(ctx, SharedPapersKey)
	if err != nil {
		return nil, err
	}
	return decodeList[*domain.Paper](raw)
}
