package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Notification target roles. TargetCourse narrows TEACHER/ALL targets to one
// course; empty means every course.
const (
	TargetAll     = "ALL"
	TargetHead    = "HEAD"
	TargetTeacher = "TEACHER"
)

// Notification is one append-only feed event derived from a workflow
// transition. Rows are never deleted and never mutated except to record
// readers: ReadBy is a JSON array of user-id strings, grown idempotently.
// RelatedAdmission is a weak reference — the admission may since have been
// hard-deleted.
type Notification struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Title            string         `gorm:"size:255;not null" json:"title"`
	Message          string         `gorm:"type:text;not null" json:"message"`
	Type             string         `gorm:"size:50;default:'INFO'" json:"type"`
	RelatedAdmission *uuid.UUID     `gorm:"type:uuid" json:"relatedAdmission"`
	TargetRole       string         `gorm:"size:20;not null;default:'ALL';index" json:"targetRole"`
	TargetCourse     string         `gorm:"size:100;default:''" json:"targetCourse"`
	ReadBy           datatypes.JSON `gorm:"default:'[]'" json:"isReadBy"`

	// Snapshot of the actor that fired the transition, kept even if the
	// account is later removed.
	CreatedByID   *uuid.UUID `gorm:"type:uuid" json:"createdById"`
	CreatedByName string     `gorm:"size:255;default:'System'" json:"createdByName"`
	CreatedByRole string     `gorm:"size:20;default:'SYSTEM'" json:"createdByRole"`

	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
