package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/triviaengine/sessionengine/internal/domain/entity"
	"github.com/triviaengine/sessionengine/internal/pkg/apperrors"
)

// ParticipationRepo implements repository.ParticipationRepository over
// GORM/Postgres.
type ParticipationRepo struct{ db *gorm.DB }

func NewParticipationRepo(db *gorm.DB) *ParticipationRepo { return &ParticipationRepo{db: db} }

func (r *ParticipationRepo) Create(ctx context.Context, p *entity.Participation) error {
	return dbFrom(ctx, r.db).Create(p).Error
}

func (r *ParticipationRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Participation, error) {
	var p entity.Participation
	err := dbFrom(ctx, r.db).First(&p, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *ParticipationRepo) GetByTriviaAndUser(ctx context.Context, triviaID, userID uuid.UUID) (*entity.Participation, error) {
	var p entity.Participation
	err := dbFrom(ctx, r.db).Where("trivia_id = ? AND user_id = ?", triviaID, userID).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *ParticipationRepo) Update(ctx context.Context, p *entity.Participation) error {
	return dbFrom(ctx, r.db).Save(p).Error
}

func (r *ParticipationRepo) ListByTrivia(ctx context.Context, triviaID uuid.UUID) ([]entity.Participation, error) {
	var out []entity.Participation
	err := dbFrom(ctx, r.db).Where("trivia_id = ?", triviaID).Find(&out).Error
	return out, err
}

// RecomputeScore recomputes participation.score as the canonical
// COALESCE(SUM(earned_points), 0) derivation over the answer log — never an
// in-place increment — grounded on result_repo.go's use of a single raw SQL
// statement inside the caller's transaction.
func (r *ParticipationRepo) RecomputeScore(ctx context.Context, participationID uuid.UUID) (int, error) {
	tx := dbFrom(ctx, r.db)
	sql := `
		UPDATE participations
		SET score = COALESCE((SELECT SUM(earned_points) FROM answers WHERE participation_id = ?), 0)
		WHERE id = ?`
	if err := tx.Exec(sql, participationID, participationID).Error; err != nil {
		return 0, err
	}
	var score int
	if err := tx.Model(&entity.Participation{}).
		Select("score").
		Where("id = ?", participationID).
		Scan(&score).Error; err != nil {
		return 0, err
	}
	return score, nil
}

// RecomputeScoresForTrivia applies the same derivation to every
// participation of the trivia in one statement.
func (r *ParticipationRepo) RecomputeScoresForTrivia(ctx context.Context, triviaID uuid.UUID) error {
	sql := `
		UPDATE participations p
		SET score = COALESCE((
			SELECT SUM(a.earned_points) FROM answers a WHERE a.participation_id = p.id
		), 0)
		WHERE p.trivia_id = ?`
	return dbFrom(ctx, r.db).Exec(sql, triviaID).Error
}

// ListByTriviaRanked returns participations ordered by score descending.
// Ties break by whatever order Postgres returns matching rows in, which is
// the "underlying storage order" SPEC_FULL.md §4.5 names as the secondary
// tie-break; callers wanting a stable secondary key sort by user id.
func (r *ParticipationRepo) ListByTriviaRanked(ctx context.Context, triviaID uuid.UUID) ([]entity.Participation, error) {
	var out []entity.Participation
	err := dbFrom(ctx, r.db).
		Where("trivia_id = ?", triviaID).
		Order("score DESC").
		Find(&out).Error
	return out, err
}

func (r *ParticipationRepo) ClearForReset(ctx context.Context, triviaID uuid.UUID) error {
	return dbFrom(ctx, r.db).Model(&entity.Participation{}).
		Where("trivia_id = ?", triviaID).
		Updates(map[string]interface{}{
			"score":                 0,
			"fifty_fifty_used":      false,
			"fifty_fifty_question_id": nil,
		}).Error
}
