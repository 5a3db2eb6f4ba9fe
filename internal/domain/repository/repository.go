// Package repository declares the persistence contract consumed by the
// session engine. Concrete adapters live in internal/repository/postgres
// (production) and internal/repository/memory (tests, embedding).
package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/triviaengine/sessionengine/internal/domain/entity"
)

// UnitOfWork scopes a group of repository calls to one transaction. Repos
// read the active transaction (if any) off the context passed to them, so
// callers thread the ctx returned by fn through to every repository call
// that must participate.
type UnitOfWork interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// TriviaRepository persists Trivia lifecycle state.
type TriviaRepository interface {
	Create(ctx context.Context, t *entity.Trivia) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Trivia, error)
	Update(ctx context.Context, t *entity.Trivia) error
	// CompareAndSwapStatus atomically updates status from `from` to `to` and
	// reports apperrors.ErrConflict if the row's current status isn't `from`.
	// Used to linearize concurrent Start attempts (SPEC_FULL.md §4.1).
	CompareAndSwapStatus(ctx context.Context, id uuid.UUID, from, to string) error
}

// QuestionRepository persists reusable question content.
type QuestionRepository interface {
	Create(ctx context.Context, q *entity.Question) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Question, error)
}

// TriviaQuestionRepository persists the ordered binding of questions to a
// trivia.
type TriviaQuestionRepository interface {
	Create(ctx context.Context, tq *entity.TriviaQuestion) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.TriviaQuestion, error)
	CountByTrivia(ctx context.Context, triviaID uuid.UUID) (int, error)
	GetByTriviaAndPosition(ctx context.Context, triviaID uuid.UUID, position int) (*entity.TriviaQuestion, error)
	ListByTrivia(ctx context.Context, triviaID uuid.UUID) ([]entity.TriviaQuestion, error)
}

// ParticipationRepository persists per-player membership, score, and
// lifeline state for a trivia.
type ParticipationRepository interface {
	Create(ctx context.Context, p *entity.Participation) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Participation, error)
	GetByTriviaAndUser(ctx context.Context, triviaID, userID uuid.UUID) (*entity.Participation, error)
	Update(ctx context.Context, p *entity.Participation) error
	ListByTrivia(ctx context.Context, triviaID uuid.UUID) ([]entity.Participation, error)

	// RecomputeScore recomputes and persists one participation's score as
	// COALESCE(SUM(earned_points), 0) over its answers, returning the new
	// score. Scores are never incremented in place (SPEC_FULL.md §4.3).
	RecomputeScore(ctx context.Context, participationID uuid.UUID) (int, error)
	// RecomputeScoresForTrivia applies RecomputeScore to every participation
	// of the trivia. Called before any ranking read.
	RecomputeScoresForTrivia(ctx context.Context, triviaID uuid.UUID) error
	// ListByTriviaRanked returns participations ordered by score descending,
	// ties broken by underlying storage order.
	ListByTriviaRanked(ctx context.Context, triviaID uuid.UUID) ([]entity.Participation, error)
	// ClearForReset zeroes score and lifeline flags for every participation
	// of the trivia, as part of Reset.
	ClearForReset(ctx context.Context, triviaID uuid.UUID) error
}

// AnswerRepository persists the append-only answer log.
type AnswerRepository interface {
	Create(ctx context.Context, a *entity.Answer) error
	GetByParticipationAndTriviaQuestion(ctx context.Context, participationID, triviaQuestionID uuid.UUID) (*entity.Answer, error)
	// DeleteByTrivia deletes every answer belonging to any participation of
	// the trivia, as part of Reset.
	DeleteByTrivia(ctx context.Context, triviaID uuid.UUID) error
}

// UserRepository resolves display names for lobby/ranking views. User
// creation and authentication are external collaborator concerns.
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
}
