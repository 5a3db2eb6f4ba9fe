package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/triviaengine/sessionengine/internal/domain/entity"
	"github.com/triviaengine/sessionengine/internal/pkg/apperrors"
)

// QuestionRepo implements repository.QuestionRepository over GORM/Postgres.
type QuestionRepo struct{ db *gorm.DB }

func NewQuestionRepo(db *gorm.DB) *QuestionRepo { return &QuestionRepo{db: db} }

func (r *QuestionRepo) Create(ctx context.Context, q *entity.Question) error {
	return dbFrom(ctx, r.db).Create(q).Error
}

func (r *QuestionRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Question, error) {
	var q entity.Question
	err := dbFrom(ctx, r.db).Preload("Options").First(&q, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &q, nil
}
