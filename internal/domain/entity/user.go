package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	UserRoleAdmin  = "ADMIN"
	UserRolePlayer = "PLAYER"
)

// User is an external collaborator concern (authentication, password
// hashing, and CRUD all live outside the core per SPEC_FULL.md §1); this
// struct exists only so the engine's repositories can resolve a
// participant's display name and role without importing an auth package.
type User struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	DisplayName    string    `gorm:"not null" json:"display_name"`
	Email          string    `gorm:"not null;uniqueIndex" json:"email"`
	PasswordDigest string    `gorm:"not null" json:"-"`
	Role           string    `gorm:"not null;default:PLAYER" json:"role"`
	CreatedAt      time.Time `gorm:"not null" json:"created_at"`
}

func (User) TableName() string { return "users" }

func (u *User) IsAdmin() bool { return u.Role == UserRoleAdmin }
