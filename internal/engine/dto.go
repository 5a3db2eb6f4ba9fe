// Package engine implements the game-session engine: the trivia lifecycle
// state machine, the lobby/presence manager, the answer & scoring pipeline,
// the 50/50 lifeline, and ranking. It is the orchestrating layer that sits
// above the repository interfaces and below any transport adapter,
// mirroring the shape of the reference repo's internal/service package.
package engine

import (
	"time"

	"github.com/google/uuid"
)

// OptionDTO is an option as shown to a player: never carries is-correct.
type OptionDTO struct {
	ID   uuid.UUID `json:"id"`
	Text string    `json:"text"`
}

// JoinResult is returned by Join.
type JoinResult struct {
	TriviaID            uuid.UUID `json:"trivia_id"`
	ParticipationID     uuid.UUID `json:"participation_id"`
	ParticipationStatus string    `json:"participation_status"`
	TriviaStatus        string    `json:"trivia_status"`
}

// ReadyResult is returned by SetReady.
type ReadyResult struct {
	ParticipationID     uuid.UUID `json:"participation_id"`
	ParticipationStatus string    `json:"participation_status"`
}

// StartResult is returned by StartTrivia.
type StartResult struct {
	TriviaID             uuid.UUID `json:"trivia_id"`
	TriviaStatus         string    `json:"trivia_status"`
	StartedAt            time.Time `json:"started_at"`
	CurrentQuestionIndex int       `json:"current_question_index"`
}

// AdvanceResult is returned by AdvanceQuestion.
type AdvanceResult struct {
	TriviaID             uuid.UUID `json:"trivia_id"`
	Status               string    `json:"status"`
	CurrentQuestionIndex int       `json:"current_question_index"`
	TotalQuestions       int       `json:"total_questions"`
}

// CurrentQuestionResult is returned by GetCurrentQuestion.
type CurrentQuestionResult struct {
	QuestionID           uuid.UUID   `json:"question_id"`
	Text                 string      `json:"text"`
	Options              []OptionDTO `json:"options"`
	TimeRemainingSeconds int         `json:"time_remaining_seconds"`
	QuestionIndex        int         `json:"question_index"`
	TotalQuestions       int         `json:"total_questions"`
	FiftyFiftyAvailable  bool        `json:"fifty_fifty_available"`
}

// SubmitResult is returned by SubmitAnswer. On the idempotent read-back path
// (§4.3) TimeRemainingSeconds is always 0.
type SubmitResult struct {
	TriviaID             uuid.UUID `json:"trivia_id"`
	QuestionID           uuid.UUID `json:"question_id"`
	SelectedOptionID     uuid.UUID `json:"selected_option_id"`
	IsCorrect            bool      `json:"is_correct"`
	EarnedPoints         int       `json:"earned_points"`
	TotalScore           int       `json:"total_score"`
	TimeRemainingSeconds int       `json:"time_remaining_seconds"`
}

// FiftyFiftyResult is returned by UseFiftyFifty.
type FiftyFiftyResult struct {
	AllowedOptions []OptionDTO `json:"allowed_options"`
	FiftyFiftyUsed bool        `json:"fifty_fifty_used"`
}

// LobbyPlayerView is one row of a lobby snapshot, player-visible.
type LobbyPlayerView struct {
	UserID  uuid.UUID `json:"user_id"`
	Name    string    `json:"name"`
	Present bool      `json:"present"`
	Ready   bool      `json:"ready"`
}

// LobbySnapshot is the player-facing view: rows only, sorted by name then
// user id.
type LobbySnapshot struct {
	Players []LobbyPlayerView `json:"players"`
}

// AdminLobbySnapshot adds the aggregate counts the admin view requires.
type AdminLobbySnapshot struct {
	Players       []LobbyPlayerView `json:"players"`
	AssignedCount int               `json:"assigned_count"`
	PresentCount  int               `json:"present_count"`
	ReadyCount    int               `json:"ready_count"`
}

// RankingEntry is one row of a ranking read.
type RankingEntry struct {
	Position int       `json:"position"`
	UserID   uuid.UUID `json:"user_id"`
	UserName string    `json:"user_name"`
	Score    int       `json:"score"`
}

// RankingResult is returned by GetRanking and carried in ranking_updated
// events.
type RankingResult struct {
	TriviaStatus string         `json:"trivia_status"`
	Entries      []RankingEntry `json:"entries"`
}

// TicketResult is returned by CreateEventTicket.
type TicketResult struct {
	Ticket           string `json:"ticket"`
	ExpiresInSeconds int    `json:"expires_in_seconds"`
}

// statusUpdatedPayload backs the status_updated event. State collapses
// DRAFT/LOBBY to WAITING per spec §6's event table.
type statusUpdatedPayload struct {
	State                string `json:"state"`
	CurrentQuestionIndex int    `json:"current_question_index"`
}

// currentQuestionBroadcast backs the current_question_updated event. Unlike
// CurrentQuestionResult it carries no per-player fifty_fifty_available,
// since one broadcast payload reaches every subscriber.
type currentQuestionBroadcast struct {
	QuestionID           uuid.UUID   `json:"question_id"`
	Text                 string      `json:"text"`
	Options              []OptionDTO `json:"options"`
	TimeRemainingSeconds int         `json:"time_remaining_seconds"`
	QuestionIndex        int         `json:"question_index"`
	TotalQuestions       int         `json:"total_questions"`
}
