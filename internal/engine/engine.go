package engine

import (
	"context"
	cryptorand "crypto/rand"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/triviaengine/sessionengine/internal/domain/entity"
	"github.com/triviaengine/sessionengine/internal/domain/repository"
	"github.com/triviaengine/sessionengine/internal/hub"
	"github.com/triviaengine/sessionengine/internal/pkg/apperrors"
	"github.com/triviaengine/sessionengine/internal/scorepolicy"
)

// Config carries the tunable knobs the engine reads at runtime, sourced
// from internal/config. Mirrors the shape of the reference repo's
// quizmanager.Config.
type Config struct {
	// PresenceTTL is how long a participation is considered present after
	// its last heartbeat.
	PresenceTTL time.Duration
	// DefaultQuestionTimeLimit is the configured default per-question time
	// limit. No engine command reads it: the engine has no command that
	// creates TriviaQuestion bindings.
	DefaultQuestionTimeLimit time.Duration
}

// PresenceCache mirrors per-participant last-seen timestamps in a faster
// store than the primary repository. It is never the engine's source of
// truth for presence — that is always Participation.LastSeenAt — so a nil
// PresenceCache is valid and simply means Heartbeat skips the mirror write.
// Satisfied by internal/repository/redis.PresenceCache.
type PresenceCache interface {
	Touch(ctx context.Context, triviaID, userID uuid.UUID, seenAt time.Time, ttl time.Duration) error
}

// Dependencies is the engine's full set of collaborators, grounded on the
// reference repo's quizmanager.Dependencies struct (QuizRepo, QuestionRepo,
// ResultRepo, CacheRepo, WSManager, Config).
type Dependencies struct {
	UnitOfWork        repository.UnitOfWork
	Trivias           repository.TriviaRepository
	Questions         repository.QuestionRepository
	TriviaQuestions   repository.TriviaQuestionRepository
	Participations    repository.ParticipationRepository
	Answers           repository.AnswerRepository
	Users             repository.UserRepository
	Hub               *hub.Hub
	PresenceCache     PresenceCache
	ScorePolicy       scorepolicy.Table
	Config            Config
	// Rand backs the 50/50 lifeline's option selection. Defaults to a
	// crypto/rand-seeded source; tests may inject a deterministic one.
	Rand *rand.Rand
}

// Engine implements every command and query of the game-session engine. It
// holds no mutable state of its own beyond its dependencies: all session
// state lives in the repositories, so an Engine is safe to share across
// goroutines and across processes that share a backing store.
type Engine struct {
	deps Dependencies
	// ffSalt mixes into every 50/50 elimination draw so that two Engine
	// instances (or a restarted process) don't reconstruct the same
	// "random" elimination for the same participation/question pair,
	// while still letting one Engine instance recompute the same result
	// on every call without persisting which option it eliminated.
	ffSalt int64
}

// New constructs an Engine. If deps.Rand is nil, a crypto/rand-seeded
// source is used.
func New(deps Dependencies) *Engine {
	if deps.Rand == nil {
		var seed [8]byte
		_, _ = cryptorand.Read(seed[:])
		s := int64(0)
		for _, b := range seed {
			s = s<<8 | int64(b)
		}
		deps.Rand = rand.New(rand.NewSource(s))
	}
	if deps.ScorePolicy == nil {
		deps.ScorePolicy = scorepolicy.Default()
	}
	return &Engine{deps: deps, ffSalt: deps.Rand.Int63()}
}

// now is overridable in tests that need deterministic timestamps.
var now = time.Now

// Join adds userID to triviaID's roster, or, if a participation is already
// there, keeps its id and refreshes its joined-at and last-seen-at and sets
// it to READY (idempotent re-join). A DRAFT trivia
// transitions to LOBBY on its first join. Per SPEC_FULL.md §9, a newly
// created participation starts directly in READY state: there is no
// separate "joined but not ready" step for players to act on.
func (e *Engine) Join(ctx context.Context, triviaID, userID uuid.UUID) (*JoinResult, error) {
	var result *JoinResult
	var pending []pendingEvent
	err := e.deps.UnitOfWork.WithinTransaction(ctx, func(ctx context.Context) error {
		trivia, err := e.deps.Trivias.GetByID(ctx, triviaID)
		if err != nil {
			return err
		}
		if !trivia.IsDraft() && !trivia.IsLobby() {
			return fmt.Errorf("trivia %s is %s: %w", triviaID, trivia.Status, apperrors.ErrInvalidState)
		}

		existing, err := e.deps.Participations.GetByTriviaAndUser(ctx, triviaID, userID)
		if err != nil && apperrors.Classify(err) != apperrors.KindNotFound {
			return err
		}

		statusChanged := false
		if trivia.IsDraft() {
			if err := e.deps.Trivias.CompareAndSwapStatus(ctx, triviaID, entity.TriviaStatusDraft, entity.TriviaStatusLobby); err != nil {
				return err
			}
			trivia.Status = entity.TriviaStatusLobby
			statusChanged = true
		}

		var p *entity.Participation
		if existing != nil {
			p = existing
			t := now()
			p.JoinedAt = &t
			p.LastSeenAt = &t
			p.Status = entity.ParticipationStatusReady
			if err := e.deps.Participations.Update(ctx, p); err != nil {
				return err
			}
		} else {
			t := now()
			p = &entity.Participation{
				ID:         uuid.New(),
				TriviaID:   triviaID,
				UserID:     userID,
				Status:     entity.ParticipationStatusReady,
				JoinedAt:   &t,
				ReadyAt:    &t,
				LastSeenAt: &t,
			}
			if err := e.deps.Participations.Create(ctx, p); err != nil {
				return err
			}
		}

		result = &JoinResult{
			TriviaID:             triviaID,
			ParticipationID:      p.ID,
			ParticipationStatus: p.Status,
			TriviaStatus:         trivia.Status,
		}

		if statusChanged {
			pending = append(pending, e.buildStatusUpdatedEvent(triviaID, trivia))
		}
		if pe, ok := e.buildLobbyUpdatedEvent(ctx, triviaID); ok {
			pending = append(pending, pe)
		}
		if pe, ok := e.buildAdminLobbyUpdatedEvent(ctx, triviaID); ok {
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

// SetReady marks a participation ready. Present for completeness alongside
// Join's immediate-READY behavior (SPEC_FULL.md §9); re-affirms readiness
// for a participation that a caller has otherwise moved out of READY.
func (e *Engine) SetReady(ctx context.Context, triviaID, userID uuid.UUID) (*ReadyResult, error) {
	var result *ReadyResult
	var pending []pendingEvent
	err := e.deps.UnitOfWork.WithinTransaction(ctx, func(ctx context.Context) error {
		p, err := e.deps.Participations.GetByTriviaAndUser(ctx, triviaID, userID)
		if err != nil {
			return err
		}
		if p.Status == entity.ParticipationStatusFinished || p.Status == entity.ParticipationStatusDisconnected {
			return fmt.Errorf("participation %s is %s: %w", p.ID, p.Status, apperrors.ErrInvalidState)
		}
		p.Status = entity.ParticipationStatusReady
		t := now()
		p.ReadyAt = &t
		p.LastSeenAt = &t
		if err := e.deps.Participations.Update(ctx, p); err != nil {
			return err
		}
		result = &ReadyResult{ParticipationID: p.ID, ParticipationStatus: p.Status}
		if pe, ok := e.buildLobbyUpdatedEvent(ctx, triviaID); ok {
			pending = append(pending, pe)
		}
		if pe, ok := e.buildAdminLobbyUpdatedEvent(ctx, triviaID); ok {
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

// StartTrivia transitions triviaID from LOBBY to IN_PROGRESS and opens the
// clock on its first question. Guards, in order (SPEC_FULL.md §4.1):
//  1. caller must be the trivia's creator (Forbidden)
//  2. trivia must be in LOBBY (InvalidState)
//  3. trivia must have at least one assigned question (InvalidState)
//  4. trivia must have at least one participation (InvalidState)
//  5. every assigned participation must be present and ready (Conflict)
func (e *Engine) StartTrivia(ctx context.Context, triviaID, callerUserID uuid.UUID) (*StartResult, error) {
	var result *StartResult
	var pending []pendingEvent
	err := e.deps.UnitOfWork.WithinTransaction(ctx, func(ctx context.Context) error {
		trivia, err := e.deps.Trivias.GetByID(ctx, triviaID)
		if err != nil {
			return err
		}
		if trivia.CreatorUserID != callerUserID {
			return fmt.Errorf("user %s is not the creator of trivia %s: %w", callerUserID, triviaID, apperrors.ErrForbidden)
		}
		if !trivia.IsLobby() {
			return fmt.Errorf("trivia %s is %s, not LOBBY: %w", triviaID, trivia.Status, apperrors.ErrInvalidState)
		}

		total, err := e.deps.TriviaQuestions.CountByTrivia(ctx, triviaID)
		if err != nil {
			return err
		}
		if total == 0 {
			return fmt.Errorf("trivia %s has no assigned questions: %w", triviaID, apperrors.ErrInvalidState)
		}

		participations, err := e.deps.Participations.ListByTrivia(ctx, triviaID)
		if err != nil {
			return err
		}
		if len(participations) == 0 {
			return fmt.Errorf("trivia %s has no participations: %w", triviaID, apperrors.ErrInvalidState)
		}
		nowTime := now()
		for _, p := range participations {
			if !p.IsPresent(nowTime, e.deps.Config.PresenceTTL) || !p.IsReady() {
				return fmt.Errorf("participation %s is not present and ready: %w", p.ID, apperrors.ErrConflict)
			}
		}

		if err := e.deps.Trivias.CompareAndSwapStatus(ctx, triviaID, entity.TriviaStatusLobby, entity.TriviaStatusInProgress); err != nil {
			return err
		}
		trivia.Status = entity.TriviaStatusInProgress
		trivia.CurrentQuestionIdx = 0
		trivia.StartedAt = &nowTime
		trivia.QuestionStartedAt = &nowTime
		if err := e.deps.Trivias.Update(ctx, trivia); err != nil {
			return err
		}

		result = &StartResult{
			TriviaID:             triviaID,
			TriviaStatus:         trivia.Status,
			StartedAt:            nowTime,
			CurrentQuestionIndex: 0,
		}

		pending = append(pending, e.buildStatusUpdatedEvent(triviaID, trivia))
		if pe, ok := e.buildCurrentQuestionEvent(ctx, triviaID, trivia); ok {
			pending = append(pending, pe)
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

// AdvanceQuestion recomputes every participation's score from the answer
// log, then moves the trivia to its next question or, if the current
// question was the last, to FINISHED. It is idempotent only in the sense
// that it is the single externally driven clock step: the caller (not the
// engine) decides when enough time has elapsed or every present player has
// answered, per the explicit no-auto-advance Non-goal.
func (e *Engine) AdvanceQuestion(ctx context.Context, triviaID, callerUserID uuid.UUID) (*AdvanceResult, error) {
	var result *AdvanceResult
	var pending []pendingEvent
	err := e.deps.UnitOfWork.WithinTransaction(ctx, func(ctx context.Context) error {
		trivia, err := e.deps.Trivias.GetByID(ctx, triviaID)
		if err != nil {
			return err
		}
		if trivia.CreatorUserID != callerUserID {
			return fmt.Errorf("user %s is not the creator of trivia %s: %w", callerUserID, triviaID, apperrors.ErrForbidden)
		}
		if !trivia.IsInProgress() {
			return fmt.Errorf("trivia %s is %s, not IN_PROGRESS: %w", triviaID, trivia.Status, apperrors.ErrInvalidState)
		}

		if err := e.deps.Participations.RecomputeScoresForTrivia(ctx, triviaID); err != nil {
			return err
		}

		total, err := e.deps.TriviaQuestions.CountByTrivia(ctx, triviaID)
		if err != nil {
			return err
		}

		nextIdx := trivia.CurrentQuestionIdx + 1
		nowTime := now()
		if nextIdx >= total {
			trivia.Status = entity.TriviaStatusFinished
			trivia.CurrentQuestionIdx = total
			trivia.FinishedAt = &nowTime
			trivia.QuestionStartedAt = nil
		} else {
			trivia.CurrentQuestionIdx = nextIdx
			trivia.QuestionStartedAt = &nowTime
		}
		if err := e.deps.Trivias.Update(ctx, trivia); err != nil {
			return err
		}

		result = &AdvanceResult{
			TriviaID:             triviaID,
			Status:               trivia.Status,
			CurrentQuestionIndex: trivia.CurrentQuestionIdx,
			TotalQuestions:       total,
		}

		pending = append(pending, e.buildStatusUpdatedEvent(triviaID, trivia))
		if trivia.IsInProgress() {
			if pe, ok := e.buildCurrentQuestionEvent(ctx, triviaID, trivia); ok {
				pending = append(pending, pe)
			}
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

// ResetTrivia returns triviaID to LOBBY: every participation's score and
// lifeline flags are cleared, its answer log is discarded, and the
// question clock is rewound to the first question. The command surface
// carries no caller identity (SPEC_FULL.md §6); authorization, if any, is
// a transport-layer concern.
func (e *Engine) ResetTrivia(ctx context.Context, triviaID uuid.UUID) error {
	var pending []pendingEvent
	err := e.deps.UnitOfWork.WithinTransaction(ctx, func(ctx context.Context) error {
		trivia, err := e.deps.Trivias.GetByID(ctx, triviaID)
		if err != nil {
			return err
		}
		if trivia.IsDraft() {
			return fmt.Errorf("trivia %s is DRAFT: %w", triviaID, apperrors.ErrInvalidState)
		}

		if err := e.deps.Answers.DeleteByTrivia(ctx, triviaID); err != nil {
			return err
		}
		if err := e.deps.Participations.ClearForReset(ctx, triviaID); err != nil {
			return err
		}

		trivia.Status = entity.TriviaStatusLobby
		trivia.CurrentQuestionIdx = 0
		trivia.QuestionStartedAt = nil
		trivia.StartedAt = nil
		trivia.FinishedAt = nil
		if err := e.deps.Trivias.Update(ctx, trivia); err != nil {
			return err
		}

		pending = append(pending, e.buildStatusUpdatedEvent(triviaID, trivia))
		if pe, ok := e.buildLobbyUpdatedEvent(ctx, triviaID); ok {
			pending = append(pending, pe)
		}
		if pe, ok := e.buildAdminLobbyUpdatedEvent(ctx, triviaID); ok {
			pending = append(pending, pe)
		}
		if pe, ok := e.buildRankingUpdatedEvent(ctx, triviaID, trivia); ok {
			pending = append(pending, pe)
		}
		return nil
	})
	if err != nil {
		return err
	}
	e.flush(pending)
	return nil
}
