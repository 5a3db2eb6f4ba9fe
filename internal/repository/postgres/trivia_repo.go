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

// TriviaRepo implements repository.TriviaRepository over GORM/Postgres.
// Grounded on internal/repository/postgres/quiz_repo.go's struct-per-
// aggregate shape and gorm.ErrRecordNotFound translation.
type TriviaRepo struct{ db *gorm.DB }

func NewTriviaRepo(db *gorm.DB) *TriviaRepo { return &TriviaRepo{db: db} }

func (r *TriviaRepo) Create(ctx context.Context, t *entity.Trivia) error {
	return dbFrom(ctx, r.db).Create(t).Error
}

func (r *TriviaRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Trivia, error) {
	var t entity.Trivia
	err := dbFrom(ctx, r.db).First(&t, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *TriviaRepo) Update(ctx context.Context, t *entity.Trivia) error {
	return dbFrom(ctx, r.db).Save(t).Error
}

// CompareAndSwapStatus linearizes concurrent Start attempts the same way
// quiz_repo.go's AtomicStartQuiz does: a conditional UPDATE whose
// RowsAffected tells the caller whether it actually won the race.
func (r *TriviaRepo) CompareAndSwapStatus(ctx context.Context, id uuid.UUID, from, to string) error {
	result := dbFrom(ctx, r.db).Model(&entity.Trivia{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("trivia %s is not %s: %w", id, from, apperrors.ErrConflict)
	}
	return nil
}
