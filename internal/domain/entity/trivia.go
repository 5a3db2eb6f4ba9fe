package entity

import (
	"time"

	"github.com/google/uuid"
)

// Trivia lifecycle states. See internal/engine for the transition table.
const (
	TriviaStatusDraft      = "DRAFT"
	TriviaStatusLobby      = "LOBBY"
	TriviaStatusInProgress = "IN_PROGRESS"
	TriviaStatusFinished   = "FINISHED"
)

// Trivia is a single scheduled quiz session: an ordered sequence of questions
// played synchronously by a roster of participants.
type Trivia struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Title              string     `gorm:"not null" json:"title"`
	Description        string     `json:"description"`
	CreatorUserID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"creator_user_id"`
	Status             string     `gorm:"not null;index;default:DRAFT" json:"status"`
	CurrentQuestionIdx int        `gorm:"not null;default:0" json:"current_question_index"`
	QuestionStartedAt  *time.Time `json:"question_started_at"`
	CreatedAt          time.Time  `gorm:"not null" json:"created_at"`
	StartedAt          *time.Time `json:"started_at"`
	FinishedAt         *time.Time `json:"finished_at"`
}

func (Trivia) TableName() string { return "trivias" }

func (t *Trivia) IsDraft() bool      { return t.Status == TriviaStatusDraft }
func (t *Trivia) IsLobby() bool      { return t.Status == TriviaStatusLobby }
func (t *Trivia) IsInProgress() bool { return t.Status == TriviaStatusInProgress }
func (t *Trivia) IsFinished() bool   { return t.Status == TriviaStatusFinished }
