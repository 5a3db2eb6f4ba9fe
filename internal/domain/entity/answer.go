package entity

import (
	"time"

	"github.com/google/uuid"
)

// Answer is the canonical record of one player's submission for one
// trivia-question binding. (participation_id, trivia_question_id) is unique:
// at most one Answer per player per question. Scores are always derived by
// summing earned_points over these rows, never incremented in place.
type Answer struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ParticipationID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_participation_triviaquestion" json:"participation_id"`
	TriviaQuestionID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_participation_triviaquestion" json:"trivia_question_id"`
	SelectedOptionID uuid.UUID `gorm:"type:uuid;not null" json:"selected_option_id"`
	IsCorrect        bool      `gorm:"not null" json:"is_correct"`
	EarnedPoints     int       `gorm:"not null" json:"earned_points"`
	AnsweredAt       time.Time `gorm:"not null" json:"answered_at"`
}

func (Answer) TableName() string { return "answers" }
