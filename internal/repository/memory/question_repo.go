package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/triviaengine/sessionengine/internal/domain/entity"
	"github.com/triviaengine/sessionengine/internal/pkg/apperrors"
)

// QuestionRepo implements repository.QuestionRepository over a shared Store.
type QuestionRepo struct{ s *Store }

func NewQuestionRepo(s *Store) *QuestionRepo { return &QuestionRepo{s: s} }

func (r *QuestionRepo) Create(ctx context.Context, q *entity.Question) error {
	r.s.dataMu.Lock()
	defer r.s.dataMu.Unlock()
	r.s.questions[q.ID] = *q
	return nil
}

func (r *QuestionRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Question, error) {
	r.s.dataMu.RLock()
	defer r.s.dataMu.RUnlock()
	q, ok := r.s.questions[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := q
	return &cp, nil
}
