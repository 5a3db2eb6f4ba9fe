package entity

import "github.com/google/uuid"

// TriviaQuestion binds a Question to a Trivia at a specific, 0-based position
// with its own time limit. (trivia_id, position) and (trivia_id, question_id)
// are each unique; positions are dense 0..N-1.
type TriviaQuestion struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TriviaID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_trivia_position;uniqueIndex:idx_trivia_question" json:"trivia_id"`
	QuestionID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_trivia_question" json:"question_id"`
	Position       int       `gorm:"not null;uniqueIndex:idx_trivia_position" json:"position"`
	TimeLimitSec   int       `gorm:"not null" json:"time_limit_seconds"`

	Question *Question `gorm:"foreignKey:QuestionID" json:"question,omitempty"`
}

func (TriviaQuestion) TableName() string { return "trivia_questions" }
