package entity

import "github.com/google/uuid"

// Question difficulty drives the score policy (see internal/scorepolicy).
const (
	DifficultyEasy   = "EASY"
	DifficultyMedium = "MEDIUM"
	DifficultyHard   = "HARD"
)

// Question is reusable trivia content, independent of any particular Trivia.
type Question struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Text          string    `gorm:"not null" json:"text"`
	Difficulty    string    `gorm:"not null" json:"difficulty"`
	CreatorUserID uuid.UUID `gorm:"type:uuid;not null;index" json:"creator_user_id"`

	Options []Option `gorm:"foreignKey:QuestionID" json:"options,omitempty"`
}

func (Question) TableName() string { return "questions" }

// CorrectOption returns the option marked is-correct, or nil if the question
// is malformed (the storage layer is expected to enforce exactly one).
func (q *Question) CorrectOption() *Option {
	for i := range q.Options {
		if q.Options[i].IsCorrect {
			return &q.Options[i]
		}
	}
	return nil
}

// Option belongs to exactly one Question.
type Option struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	QuestionID uuid.UUID `gorm:"type:uuid;not null;index" json:"question_id"`
	Text       string    `gorm:"not null" json:"text"`
	IsCorrect  bool      `gorm:"not null;default:false" json:"is_correct"`
}

func (Option) TableName() string { return "options" }
