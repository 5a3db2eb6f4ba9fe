package entity

import (
	"time"

	"github.com/google/uuid"
)

// Participation status. READY is also the resting state immediately after
// Join (see internal/engine's Join semantics and SPEC_FULL.md §9).
const (
	ParticipationStatusInvited      = "INVITED"
	ParticipationStatusJoined       = "JOINED"
	ParticipationStatusReady        = "READY"
	ParticipationStatusFinished     = "FINISHED"
	ParticipationStatusDisconnected = "DISCONNECTED"
)

// Participation is one user's membership in one Trivia, carrying score and
// lifeline state. (trivia_id, user_id) is unique.
type Participation struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	TriviaID           uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_trivia_user" json:"trivia_id"`
	UserID             uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_trivia_user" json:"user_id"`
	Status             string     `gorm:"not null;default:INVITED" json:"status"`
	Score              int        `gorm:"not null;default:0" json:"score"`
	JoinedAt           *time.Time `json:"joined_at"`
	ReadyAt            *time.Time `json:"ready_at"`
	LastSeenAt         *time.Time `json:"last_seen_at"`
	FinishedAt         *time.Time `json:"finished_at"`
	FiftyFiftyUsed     bool       `gorm:"not null;default:false" json:"fifty_fifty_used"`
	FiftyFiftyQuestion *uuid.UUID `gorm:"type:uuid;column:fifty_fifty_question_id" json:"fifty_fifty_question_id"`
}

func (Participation) TableName() string { return "participations" }

// IsPresent reports whether the participation was seen within ttl of now.
func (p *Participation) IsPresent(now time.Time, ttl time.Duration) bool {
	return p.LastSeenAt != nil && now.Sub(*p.LastSeenAt) <= ttl
}

func (p *Participation) IsReady() bool { return p.Status == ParticipationStatusReady }
