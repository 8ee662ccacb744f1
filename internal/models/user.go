package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a staff account (Head or Teacher). Course is meaningful only for
// teachers and scopes everything they can see or act on.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	Email        string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Role         string    `gorm:"size:20;not null" json:"role"`
	Course       string    `gorm:"size:100;default:''" json:"course"`

	// Single-use password reset token, stored hashed. Expiry is checked
	// lazily when the token is presented, there is no background sweep.
	ResetTokenHash      string     `gorm:"size:64;default:''" json:"-"`
	ResetTokenExpiresAt *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
