package engine

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/triviaengine/sessionengine/internal/domain/entity"
)

func (e *Engine) buildRanking(ctx context.Context, triviaID uuid.UUID, trivia *entity.Trivia) (*RankingResult, error) {
	participations, err := e.deps.Participations.ListByTriviaRanked(ctx, triviaID)
	if err != nil {
		return nil, err
	}
	entries := make([]RankingEntry, len(participations))
	for i, p := range participations {
		user, err := e.deps.Users.GetByID(ctx, p.UserID)
		if err != nil {
			return nil, fmt.Errorf("resolving display name for user %s: %w", p.UserID, err)
		}
		entries[i] = RankingEntry{
			Position: i + 1,
			UserID:   p.UserID,
			UserName: user.DisplayName,
			Score:    p.Score,
		}
	}
	return &RankingResult{TriviaStatus: trivia.Status, Entries: entries}, nil
}

// GetRanking recomputes every participation's score from the answer log
// (so a ranking read is never stale with respect to committed answers,
// SPEC_FULL.md §8) and returns triviaID's roster ordered by score
// descending.
func (e *Engine) GetRanking(ctx context.Context, triviaID uuid.UUID) (*RankingResult, error) {
	var result *RankingResult
	err := e.deps.UnitOfWork.WithinTransaction(ctx, func(ctx context.Context) error {
		trivia, err := e.deps.Trivias.GetByID(ctx, triviaID)
		if err != nil {
			return err
		}
		if err := e.deps.Participations.RecomputeScoresForTrivia(ctx, triviaID); err != nil {
			return err
		}
		result, err = e.buildRanking(ctx, triviaID, trivia)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
