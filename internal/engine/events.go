package engine

import (
	"context"
	"log"

	"github.com/google/uuid"

	"github.com/triviaengine/sessionengine/internal/domain/entity"
	"github.com/triviaengine/sessionengine/internal/hub"
)

// statusState collapses Trivia's 4-value Status to the 3-value enum the
// status_updated event carries (SPEC_FULL.md §6, §9): DRAFT and LOBBY both
// read as WAITING to subscribers, since neither admits a meaningful
// distinction to a player who hasn't joined yet.
func statusState(status string) string {
	switch status {
	case entity.TriviaStatusInProgress:
		return "IN_PROGRESS"
	case entity.TriviaStatusFinished:
		return "FINISHED"
	default:
		return "WAITING"
	}
}

// pendingEvent is a broadcast built while a command's transaction is still
// open. It is held by the caller and only handed to the hub once the
// transaction's commit has actually succeeded, so a subscriber never
// observes a state change that a failing commit then rolls back
// (SPEC_FULL.md §5, §8).
type pendingEvent struct {
	event     hub.Event
	adminOnly bool
}

// flush hands every pending event to the hub, in the order they were
// queued. Call only after the transaction that produced them has committed.
func (e *Engine) flush(pending []pendingEvent) {
	for _, p := range pending {
		e.deps.Hub.Broadcast(p.event, p.adminOnly)
	}
}

func (e *Engine) buildStatusUpdatedEvent(triviaID uuid.UUID, trivia *entity.Trivia) pendingEvent {
	return pendingEvent{event: hub.Event{
		Type:     hub.EventStatusUpdated,
		TriviaID: triviaID,
		Payload: statusUpdatedPayload{
			State:                statusState(trivia.Status),
			CurrentQuestionIndex: trivia.CurrentQuestionIdx,
		},
	}}
}

func (e *Engine) buildLobbyUpdatedEvent(ctx context.Context, triviaID uuid.UUID) (pendingEvent, bool) {
	snap, err := e.buildLobbySnapshot(ctx, triviaID)
	if err != nil {
		log.Printf("[engine] lobby_updated snapshot for trivia=%s: %v", triviaID, err)
		return pendingEvent{}, false
	}
	return pendingEvent{event: hub.Event{Type: hub.EventLobbyUpdated, TriviaID: triviaID, Payload: snap}}, true
}

func (e *Engine) buildAdminLobbyUpdatedEvent(ctx context.Context, triviaID uuid.UUID) (pendingEvent, bool) {
	snap, err := e.buildAdminLobbySnapshot(ctx, triviaID)
	if err != nil {
		log.Printf("[engine] admin_lobby_updated snapshot for trivia=%s: %v", triviaID, err)
		return pendingEvent{}, false
	}
	return pendingEvent{event: hub.Event{Type: hub.EventAdminLobbyUpdated, TriviaID: triviaID, Payload: snap}, adminOnly: true}, true
}

func (e *Engine) buildCurrentQuestionEvent(ctx context.Context, triviaID uuid.UUID, trivia *entity.Trivia) (pendingEvent, bool) {
	tq, err := e.deps.TriviaQuestions.GetByTriviaAndPosition(ctx, triviaID, trivia.CurrentQuestionIdx)
	if err != nil {
		log.Printf("[engine] current_question_updated lookup for trivia=%s: %v", triviaID, err)
		return pendingEvent{}, false
	}
	total, err := e.deps.TriviaQuestions.CountByTrivia(ctx, triviaID)
	if err != nil {
		log.Printf("[engine] current_question_updated count for trivia=%s: %v", triviaID, err)
		return pendingEvent{}, false
	}
	payload := currentQuestionBroadcast{
		QuestionID:           tq.Question.ID,
		Text:                 tq.Question.Text,
		Options:              optionDTOs(tq.Question.Options),
		TimeRemainingSeconds: tq.TimeLimitSec,
		QuestionIndex:        trivia.CurrentQuestionIdx,
		TotalQuestions:       total,
	}
	return pendingEvent{event: hub.Event{Type: hub.EventCurrentQuestionUpdated, TriviaID: triviaID, Payload: payload}}, true
}

func (e *Engine) buildRankingUpdatedEvent(ctx context.Context, triviaID uuid.UUID, trivia *entity.Trivia) (pendingEvent, bool) {
	ranking, err := e.buildRanking(ctx, triviaID, trivia)
	if err != nil {
		log.Printf("[engine] ranking_updated snapshot for trivia=%s: %v", triviaID, err)
		return pendingEvent{}, false
	}
	return pendingEvent{event: hub.Event{Type: hub.EventRankingUpdated, TriviaID: triviaID, Payload: ranking}}, true
}

func optionDTOs(opts []entity.Option) []OptionDTO {
	out := make([]OptionDTO, len(opts))
	for i, o := range opts {
		out[i] = OptionDTO{ID: o.ID, Text: o.Text}
	}
	return out
}
