package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/triviaengine/sessionengine/internal/domain/entity"
	"github.com/triviaengine/sessionengine/internal/pkg/apperrors"
)

// TriviaQuestionRepo implements repository.TriviaQuestionRepository over a
// shared Store.
type TriviaQuestionRepo struct{ s *Store }

func NewTriviaQuestionRepo(s *Store) *TriviaQuestionRepo { return &TriviaQuestionRepo{s: s} }

func (r *TriviaQuestionRepo) Create(ctx context.Context, tq *entity.TriviaQuestion) error {
	r.s.dataMu.Lock()
	defer r.s.dataMu.Unlock()
	for _, existing := range r.s.triviaQuestions {
		if existing.TriviaID == tq.TriviaID && existing.Position == tq.Position {
			return fmt.Errorf("trivia %s already has a binding at position %d: %w", tq.TriviaID, tq.Position, apperrors.ErrConflict)
		}
		if existing.TriviaID == tq.TriviaID && existing.QuestionID == tq.QuestionID {
			return fmt.Errorf("question %s already bound to trivia %s: %w", tq.QuestionID, tq.TriviaID, apperrors.ErrConflict)
		}
	}
	r.s.triviaQuestions[tq.ID] = *tq
	return nil
}

func (r *TriviaQuestionRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.TriviaQuestion, error) {
	r.s.dataMu.RLock()
	defer r.s.dataMu.RUnlock()
	tq, ok := r.s.triviaQuestions[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := r.hydrate(tq)
	return &cp, nil
}

func (r *TriviaQuestionRepo) CountByTrivia(ctx context.Context, triviaID uuid.UUID) (int, error) {
	r.s.dataMu.RLock()
	defer r.s.dataMu.RUnlock()
	n := 0
	for _, tq := range r.s.triviaQuestions {
		if tq.TriviaID == triviaID {
			n++
		}
	}
	return n, nil
}

func (r *TriviaQuestionRepo) GetByTriviaAndPosition(ctx context.Context, triviaID uuid.UUID, position int) (*entity.TriviaQuestion, error) {
	r.s.dataMu.RLock()
	defer r.s.dataMu.RUnlock()
	for _, tq := range r.s.triviaQuestions {
		if tq.TriviaID == triviaID && tq.Position == position {
			cp := r.hydrate(tq)
			return &cp, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *TriviaQuestionRepo) ListByTrivia(ctx context.Context, triviaID uuid.UUID) ([]entity.TriviaQuestion, error) {
	r.s.dataMu.RLock()
	defer r.s.dataMu.RUnlock()
	var out []entity.TriviaQuestion
	for _, tq := range r.s.triviaQuestions {
		if tq.TriviaID == triviaID {
			out = append(out, r.hydrate(tq))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

// hydrate populates the Question association, mirroring the Postgres
// adapter's Preload. Caller must hold r.s.dataMu.
func (r *TriviaQuestionRepo) hydrate(tq entity.TriviaQuestion) entity.TriviaQuestion {
	if q, ok := r.s.questions[tq.QuestionID]; ok {
		qCopy := q
		tq.Question = &qCopy
	}
	return tq
}
