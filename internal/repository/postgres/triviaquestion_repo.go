package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/triviaengine/sessionengine/internal/domain/entity"
	"github.com/triviaengine/sessionengine/internal/pkg/apperrors"
)

// TriviaQuestionRepo implements repository.TriviaQuestionRepository over
// GORM/Postgres.
type TriviaQuestionRepo struct{ db *gorm.DB }

func NewTriviaQuestionRepo(db *gorm.DB) *TriviaQuestionRepo { return &TriviaQuestionRepo{db: db} }

func (r *TriviaQuestionRepo) Create(ctx context.Context, tq *entity.TriviaQuestion) error {
	return dbFrom(ctx, r.db).Create(tq).Error
}

func (r *TriviaQuestionRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.TriviaQuestion, error) {
	var tq entity.TriviaQuestion
	err := dbFrom(ctx, r.db).Preload("Question.Options").First(&tq, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &tq, nil
}

func (r *TriviaQuestionRepo) CountByTrivia(ctx context.Context, triviaID uuid.UUID) (int, error) {
	var count int64
	err := dbFrom(ctx, r.db).Model(&entity.TriviaQuestion{}).
		Where("trivia_id = ?", triviaID).Count(&count).Error
	return int(count), err
}

func (r *TriviaQuestionRepo) GetByTriviaAndPosition(ctx context.Context, triviaID uuid.UUID, position int) (*entity.TriviaQuestion, error) {
	var tq entity.TriviaQuestion
	err := dbFrom(ctx, r.db).Preload("Question.Options").
		Where("trivia_id = ? AND position = ?", triviaID, position).
		First(&tq).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &tq, nil
}

func (r *TriviaQuestionRepo) ListByTrivia(ctx context.Context, triviaID uuid.UUID) ([]entity.TriviaQuestion, error) {
	var out []entity.TriviaQuestion
	err := dbFrom(ctx, r.db).Preload("Question.Options").
		Where("trivia_id = ?", triviaID).
		Order("position").
		Find(&out).Error
	return out, err
}
