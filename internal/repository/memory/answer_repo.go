package memory

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/triviaengine/sessionengine/internal/domain/entity"
	"github.com/triviaengine/sessionengine/internal/pkg/apperrors"
)

// AnswerRepo implements repository.AnswerRepository over a shared Store.
type AnswerRepo struct{ s *Store }

func NewAnswerRepo(s *Store) *AnswerRepo { return &AnswerRepo{s: s} }

func (r *AnswerRepo) Create(ctx context.Context, a *entity.Answer) error {
	r.s.dataMu.Lock()
	defer r.s.dataMu.Unlock()
	for _, existing := range r.s.answers {
		if existing.ParticipationID == a.ParticipationID && existing.TriviaQuestionID == a.TriviaQuestionID {
			return fmt.Errorf("participation %s already answered trivia-question %s: %w", a.ParticipationID, a.TriviaQuestionID, apperrors.ErrConflict)
		}
	}
	r.s.answers[a.ID] = *a
	return nil
}

func (r *AnswerRepo) GetByParticipationAndTriviaQuestion(ctx context.Context, participationID, triviaQuestionID uuid.UUID) (*entity.Answer, error) {
	r.s.dataMu.RLock()
	defer r.s.dataMu.RUnlock()
	for _, a := range r.s.answers {
		if a.ParticipationID == participationID && a.TriviaQuestionID == triviaQuestionID {
			cp := a
			return &cp, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *AnswerRepo) DeleteByTrivia(ctx context.Context, triviaID uuid.UUID) error {
	r.s.dataMu.Lock()
	defer r.s.dataMu.Unlock()
	participationIDs := make(map[uuid.UUID]bool)
	for id, p := range r.s.participations {
		if p.TriviaID == triviaID {
			participationIDs[id] = true
		}
	}
	for id, a := range r.s.answers {
		if participationIDs[a.ParticipationID] {
			delete(r.s.answers, id)
		}
	}
	return nil
}
