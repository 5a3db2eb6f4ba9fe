package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/triviaengine/sessionengine/internal/domain/entity"
	"github.com/triviaengine/sessionengine/internal/pkg/apperrors"
)

// AnswerRepo implements repository.AnswerRepository over GORM/Postgres.
type AnswerRepo struct{ db *gorm.DB }

func NewAnswerRepo(db *gorm.DB) *AnswerRepo { return &AnswerRepo{db: db} }

// Create inserts a.  A unique-constraint violation on
// (participation_id, trivia_question_id) — a losing race against a
// concurrent submission for the same question — surfaces as
// apperrors.ErrConflict so the engine can fall back to the idempotent
// read-back, grounded on answer_processor.go's handling of the *pq.Error
// 23505 case from SaveUserAnswer.
func (r *AnswerRepo) Create(ctx context.Context, a *entity.Answer) error {
	err := dbFrom(ctx, r.db).Create(a).Error
	if err != nil && isUniqueViolation(err) {
		return fmt.Errorf("participation %s already answered trivia-question %s: %w", a.ParticipationID, a.TriviaQuestionID, apperrors.ErrConflict)
	}
	return err
}

func (r *AnswerRepo) GetByParticipationAndTriviaQuestion(ctx context.Context, participationID, triviaQuestionID uuid.UUID) (*entity.Answer, error) {
	var a entity.Answer
	err := dbFrom(ctx, r.db).
		Where("participation_id = ? AND trivia_question_id = ?", participationID, triviaQuestionID).
		First(&a).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// DeleteByTrivia deletes every answer belonging to any participation of
// triviaID, as part of Reset — the only path that destroys answer rows.
func (r *AnswerRepo) DeleteByTrivia(ctx context.Context, triviaID uuid.UUID) error {
	sql := `
		DELETE FROM answers
		WHERE participation_id IN (SELECT id FROM participations WHERE trivia_id = ?)`
	return dbFrom(ctx, r.db).Exec(sql, triviaID).Error
}
