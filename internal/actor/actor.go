// Package actor models the authenticated staff identity and its course
// scope. A single Scope method replaces scattered role-string checks: heads
// see everything, teachers only their own course.
package actor

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role is a staff role tag.
type Role string

const (
	RoleHead    Role = "HEAD"
	RoleTeacher Role = "TEACHER"
)

// ParseRole normalizes and validates a raw role string.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	switch r {
	case RoleHead, RoleTeacher:
		return r, nil
	}
	return "", fmt.Errorf("role must be HEAD or TEACHER, got %q", s)
}

// Actor is the resolved identity behind a bearer token.
type Actor struct {
	ID     uuid.UUID
	Name   string
	Email  string
	Role   Role
	Course string
	// Token is the raw bearer token that authenticated this request, kept
	// so logout can revoke exactly this session.
	Token string
}

// Scope returns a GORM scope restricting admission queries to what the
// actor may see. Heads are unrestricted; teachers are pinned to their
// course, so out-of-scope records simply do not exist for them.
func (a Actor) Scope() func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if a.Role == RoleTeacher && a.Course != "" {
			return db.Where("course = ?", a.Course)
		}
		return db
	}
}

// CanSeeNotification applies the feed visibility rule: the target role must
// be ALL or the actor's own role, and teachers additionally only see events
// for their course or for all courses.
func (a Actor) CanSeeNotification(targetRole, targetCourse string) bool {
	if targetRole != "ALL" && targetRole != string(a.Role) {
		return false
	}
	if a.Role == RoleTeacher && targetCourse != "" && targetCourse != a.Course {
		return false
	}
	return true
}

const localsKey = "actor"

// Store puts the actor into Fiber locals for downstream handlers.
func Store(c *fiber.Ctx, a Actor) {
	c.Locals(localsKey, a)
}

// FromCtx extracts the actor placed by the auth middleware.
func FromCtx(c *fiber.Ctx) (Actor, error) {
	a, ok := c.Locals(localsKey).(Actor)
	if !ok {
		return Actor{}, errors.New("no actor in request context")
	}
	return a, nil
}
