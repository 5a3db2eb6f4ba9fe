package memory

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/triviaengine/sessionengine/internal/domain/entity"
	"github.com/triviaengine/sessionengine/internal/pkg/apperrors"
)

// TriviaRepo implements repository.TriviaRepository over a shared Store.
type TriviaRepo struct{ s *Store }

func NewTriviaRepo(s *Store) *TriviaRepo { return &TriviaRepo{s: s} }

func (r *TriviaRepo) Create(ctx context.Context, t *entity.Trivia) error {
	r.s.dataMu.Lock()
	defer r.s.dataMu.Unlock()
	r.s.trivias[t.ID] = *t
	return nil
}

func (r *TriviaRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Trivia, error) {
	r.s.dataMu.RLock()
	defer r.s.dataMu.RUnlock()
	t, ok := r.s.trivias[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := t
	return &cp, nil
}

func (r *TriviaRepo) Update(ctx context.Context, t *entity.Trivia) error {
	r.s.dataMu.Lock()
	defer r.s.dataMu.Unlock()
	if _, ok := r.s.trivias[t.ID]; !ok {
		return apperrors.ErrNotFound
	}
	r.s.trivias[t.ID] = *t
	return nil
}

func (r *TriviaRepo) CompareAndSwapStatus(ctx context.Context, id uuid.UUID, from, to string) error {
	r.s.dataMu.Lock()
	defer r.s.dataMu.Unlock()
	t, ok := r.s.trivias[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	if t.Status != from {
		return fmt.Errorf("trivia %s is %s, not %s: %w", id, t.Status, from, apperrors.ErrConflict)
	}
	t.Status = to
	r.s.trivias[id] = t
	return nil
}
