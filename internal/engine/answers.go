package engine

import (
	"context"
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"log"
	"math/rand"

	"github.com/google/uuid"

	"github.com/triviaengine/sessionengine/internal/domain/entity"
	"github.com/triviaengine/sessionengine/internal/pkg/apperrors"
)

// GetCurrentQuestion returns the question triviaID is currently on, from
// userID's point of view (fifty_fifty_available reflects whether userID's
// own participation still has its lifeline).
func (e *Engine) GetCurrentQuestion(ctx context.Context, triviaID, userID uuid.UUID) (*CurrentQuestionResult, error) {
	var result *CurrentQuestionResult
	err := e.deps.UnitOfWork.WithinTransaction(ctx, func(ctx context.Context) error {
		trivia, err := e.deps.Trivias.GetByID(ctx, triviaID)
		if err != nil {
			return err
		}
		if !trivia.IsInProgress() {
			return fmt.Errorf("trivia %s is %s, not IN_PROGRESS: %w", triviaID, trivia.Status, apperrors.ErrInvalidState)
		}
		p, err := e.deps.Participations.GetByTriviaAndUser(ctx, triviaID, userID)
		if err != nil {
			return err
		}
		tq, err := e.deps.TriviaQuestions.GetByTriviaAndPosition(ctx, triviaID, trivia.CurrentQuestionIdx)
		if err != nil {
			return err
		}
		total, err := e.deps.TriviaQuestions.CountByTrivia(ctx, triviaID)
		if err != nil {
			return err
		}

		remaining := remainingSeconds(trivia, tq)

		options := tq.Question.Options
		if p.FiftyFiftyUsed && p.FiftyFiftyQuestion != nil && *p.FiftyFiftyQuestion == tq.Question.ID {
			allowed, ferr := e.fiftyFiftyAllowedOptions(p.ID, tq.Question.ID, tq.Question.Options)
			if ferr == nil {
				options = allowed
			}
		}

		result = &CurrentQuestionResult{
			QuestionID:           tq.Question.ID,
			Text:                 tq.Question.Text,
			Options:              optionDTOs(options),
			TimeRemainingSeconds: remaining,
			QuestionIndex:        trivia.CurrentQuestionIdx,
			TotalQuestions:       total,
			FiftyFiftyAvailable:  !p.FiftyFiftyUsed,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// remainingSeconds is max(0, time-limit - elapsed), elapsed computed from
// the question clock. Negative elapsed (clock skew) is logged and floored
// to zero.
func remainingSeconds(trivia *entity.Trivia, tq *entity.TriviaQuestion) int {
	if trivia.QuestionStartedAt == nil {
		return 0
	}
	elapsed := int(now().Sub(*trivia.QuestionStartedAt).Seconds())
	if elapsed < 0 {
		log.Printf("[engine] negative elapsed %ds on trivia=%s (clock skew), treating as zero", elapsed, trivia.ID)
		elapsed = 0
	}
	remaining := tq.TimeLimitSec - elapsed
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}

// SubmitAnswer records userID's answer to the question triviaID is
// currently on. Preconditions are checked in the exact order SPEC_FULL.md
// §4.3 specifies, since the error a caller sees for a doubly-invalid
// request depends on it.
func (e *Engine) SubmitAnswer(ctx context.Context, triviaID, userID, selectedOptionID uuid.UUID) (*SubmitResult, error) {
	var result *SubmitResult
	var pending []pendingEvent
	err := e.deps.UnitOfWork.WithinTransaction(ctx, func(ctx context.Context) error {
		trivia, err := e.deps.Trivias.GetByID(ctx, triviaID)
		if err != nil {
			return err
		}
		if !trivia.IsInProgress() {
			return fmt.Errorf("trivia %s is %s, not IN_PROGRESS: %w", triviaID, trivia.Status, apperrors.ErrInvalidState)
		}
		if trivia.QuestionStartedAt == nil {
			return fmt.Errorf("trivia %s has no open question clock: %w", triviaID, apperrors.ErrInvalidState)
		}
		p, err := e.deps.Participations.GetByTriviaAndUser(ctx, triviaID, userID)
		if err != nil {
			return err
		}
		tq, err := e.deps.TriviaQuestions.GetByTriviaAndPosition(ctx, triviaID, trivia.CurrentQuestionIdx)
		if err != nil {
			return err
		}
		var selected *entity.Option
		for i := range tq.Question.Options {
			if tq.Question.Options[i].ID == selectedOptionID {
				selected = &tq.Question.Options[i]
				break
			}
		}
		if selected == nil {
			return fmt.Errorf("option %s does not belong to question %s: %w", selectedOptionID, tq.Question.ID, apperrors.ErrNotFound)
		}

		if existing, err := e.deps.Answers.GetByParticipationAndTriviaQuestion(ctx, p.ID, tq.ID); err == nil {
			result = &SubmitResult{
				TriviaID:             triviaID,
				QuestionID:           tq.Question.ID,
				SelectedOptionID:     existing.SelectedOptionID,
				IsCorrect:            existing.IsCorrect,
				EarnedPoints:         existing.EarnedPoints,
				TotalScore:           p.Score,
				TimeRemainingSeconds: 0,
			}
			return nil
		} else if apperrors.Classify(err) != apperrors.KindNotFound {
			return err
		}

		remaining := remainingSeconds(trivia, tq)
		outcome := e.deps.ScorePolicy.Score(selected.IsCorrect, tq.Question.Difficulty, remaining)

		answer := &entity.Answer{
			ID:               uuid.New(),
			ParticipationID:  p.ID,
			TriviaQuestionID: tq.ID,
			SelectedOptionID: selectedOptionID,
			IsCorrect:        outcome.IsCorrect,
			EarnedPoints:     outcome.EarnedPoints,
			AnsweredAt:       now(),
		}
		if err := e.deps.Answers.Create(ctx, answer); err != nil {
			// A unique-violation here means a concurrent submission won the
			// race; fall back to the same idempotent read-back rather than
			// surfacing the storage-level conflict.
			if apperrors.Classify(err) == apperrors.KindConflict {
				existing, getErr := e.deps.Answers.GetByParticipationAndTriviaQuestion(ctx, p.ID, tq.ID)
				if getErr != nil {
					return getErr
				}
				result = &SubmitResult{
					TriviaID:             triviaID,
					QuestionID:           tq.Question.ID,
					SelectedOptionID:     existing.SelectedOptionID,
					IsCorrect:            existing.IsCorrect,
					EarnedPoints:         existing.EarnedPoints,
					TotalScore:           p.Score,
					TimeRemainingSeconds: 0,
				}
				return nil
			}
			return err
		}

		score, err := e.deps.Participations.RecomputeScore(ctx, p.ID)
		if err != nil {
			return err
		}

		result = &SubmitResult{
			TriviaID:             triviaID,
			QuestionID:           tq.Question.ID,
			SelectedOptionID:     selectedOptionID,
			IsCorrect:            outcome.IsCorrect,
			EarnedPoints:         outcome.EarnedPoints,
			TotalScore:           score,
			TimeRemainingSeconds: remaining,
		}
		if pe, ok := e.buildRankingUpdatedEvent(ctx, triviaID, trivia); ok {
			pending = append(pending, pe)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.flush(pending)
	return result, nil
}

// UseFiftyFifty eliminates every incorrect option but one from triviaID's
// current question for userID's participation, returning the two surviving
// options. Guards run in the order SPEC_FULL.md §4.4 specifies.
func (e *Engine) UseFiftyFifty(ctx context.Context, triviaID, questionID, userID uuid.UUID) (*FiftyFiftyResult, error) {
	var result *FiftyFiftyResult
	err := e.deps.UnitOfWork.WithinTransaction(ctx, func(ctx context.Context) error {
		trivia, err := e.deps.Trivias.GetByID(ctx, triviaID)
		if err != nil {
			return err
		}
		if !trivia.IsInProgress() {
			return fmt.Errorf("trivia %s is %s, not IN_PROGRESS: %w", triviaID, trivia.Status, apperrors.ErrInvalidState)
		}
		p, err := e.deps.Participations.GetByTriviaAndUser(ctx, triviaID, userID)
		if err != nil {
			return err
		}
		if p.FiftyFiftyUsed {
			return fmt.Errorf("participation %s already used its 50/50: %w", p.ID, apperrors.ErrConflict)
		}
		tq, err := e.deps.TriviaQuestions.GetByTriviaAndPosition(ctx, triviaID, trivia.CurrentQuestionIdx)
		if err != nil {
			return err
		}
		if tq.Question.ID != questionID {
			return fmt.Errorf("question %s is not trivia %s's current question: %w", questionID, triviaID, apperrors.ErrInvalidState)
		}
		if _, err := e.deps.Answers.GetByParticipationAndTriviaQuestion(ctx, p.ID, tq.ID); err == nil {
			return fmt.Errorf("participation %s already answered the current question: %w", p.ID, apperrors.ErrConflict)
		} else if apperrors.Classify(err) != apperrors.KindNotFound {
			return err
		}

		allowed, ferr := e.fiftyFiftyAllowedOptions(p.ID, tq.Question.ID, tq.Question.Options)
		if ferr != nil {
			return ferr
		}

		p.FiftyFiftyUsed = true
		qID := tq.Question.ID
		p.FiftyFiftyQuestion = &qID
		if err := e.deps.Participations.Update(ctx, p); err != nil {
			return err
		}

		result = &FiftyFiftyResult{AllowedOptions: optionDTOs(allowed), FiftyFiftyUsed: true}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// fiftyFiftyAllowedOptions picks the correct option plus one uniformly
// random incorrect option to survive elimination, requiring at least 4
// options with exactly one marked correct. The draw is seeded from
// (participationID, questionID, Engine.ffSalt) rather than drawn from a
// single shared generator, so a later call for the same pair (e.g. a
// reconnecting GetCurrentQuestion) reconstructs the identical result
// without the engine having to persist which option it eliminated.
func (e *Engine) fiftyFiftyAllowedOptions(participationID, questionID uuid.UUID, options []entity.Option) ([]entity.Option, error) {
	if len(options) < 4 {
		return nil, fmt.Errorf("question %s has fewer than 4 options: %w", questionID, apperrors.ErrInvalidState)
	}
	correctIdx := -1
	incorrectIdx := make([]int, 0, len(options)-1)
	for i, o := range options {
		if o.IsCorrect {
			if correctIdx >= 0 {
				return nil, fmt.Errorf("question %s has more than one correct option: %w", questionID, apperrors.ErrInvalidState)
			}
			correctIdx = i
		} else {
			incorrectIdx = append(incorrectIdx, i)
		}
	}
	if correctIdx < 0 {
		return nil, fmt.Errorf("question %s has no correct option: %w", questionID, apperrors.ErrInvalidState)
	}

	h := fnv.New64a()
	h.Write(participationID[:])
	h.Write(questionID[:])
	var saltBuf [8]byte
	binary.BigEndian.PutUint64(saltBuf[:], uint64(e.ffSalt))
	h.Write(saltBuf[:])
	r := rand.New(rand.NewSource(int64(h.Sum64())))
	keepIdx := incorrectIdx[r.Intn(len(incorrectIdx))]

	allowed := []entity.Option{options[correctIdx], options[keepIdx]}
	if r.Intn(2) == 1 {
		allowed[0], allowed[1] = allowed[1], allowed[0]
	}
	return allowed, nil
}
