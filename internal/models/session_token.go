package models

import (
	"time"

	"github.com/google/uuid"
)

// MaxSessionsPerUser caps how many live sessions a user may hold. Logging in
// past the cap evicts the oldest session.
const MaxSessionsPerUser = 10

// SessionToken is one opaque bearer session. Only the SHA-256 of the token
// is stored; the raw value is returned to the client once at login.
type SessionToken struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	TokenHash string    `gorm:"size:64;not null;uniqueIndex" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	User      User      `gorm:"foreignKey:UserID" json:"-"`
}
