package services

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/ttifoundation/admission-backend/internal/actor"
	"github.com/ttifoundation/admission-backend/internal/models"
)

// DefaultFeedLimit caps feed queries when the client does not ask for a
// specific page size.
const DefaultFeedLimit = 50

// NotificationService owns the in-app feed. Writes are best-effort: a feed
// failure is logged and swallowed so it can never abort a workflow
// transition.
type NotificationService struct {
	db *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

// Append records one feed event fired by a transition. Errors are logged,
// never returned.
func (s *NotificationService) Append(n models.Notification) {
	n.ID = uuid.New()
	if n.ReadBy == nil {
		n.ReadBy = datatypes.JSON("[]")
	}
	if n.CreatedByName == "" {
		n.CreatedByName = "System"
	}
	if n.CreatedByRole == "" {
		n.CreatedByRole = "SYSTEM"
	}
	if err := s.db.Create(&n).Error; err != nil {
		slog.Error("failed to append notification", "type", n.Type, "error", err)
	}
}

// visibleTo restricts the feed to what the actor may see: the target role
// must be ALL or the actor's own, and teachers only see their course (or
// course-less broadcasts).
func visibleTo(a actor.Actor) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Where("target_role IN ?", []string{models.TargetAll, string(a.Role)})
		if a.Role == actor.RoleTeacher {
			db = db.Where("target_course IN ?", []string{"", a.Course})
		}
		return db
	}
}

// List returns the actor's visible feed, newest first, windowed to the last
// `days` days when days > 0 and capped at `limit` entries. The unread count
// covers every visible notification, not only the returned page.
func (s *NotificationService) List(a actor.Actor, days, limit int) ([]models.Notification, int64, error) {
	if limit <= 0 {
		limit = DefaultFeedLimit
	}

	q := s.db.Scopes(visibleTo(a)).Order("created_at DESC")
	if days > 0 {
		q = q.Where("created_at >= ?", time.Now().AddDate(0, 0, -days))
	}

	var notifications []models.Notification
	if err := q.Limit(limit).Find(&notifications).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list notifications: %w", err)
	}

	unread, err := s.UnreadCount(a)
	if err != nil {
		return nil, 0, err
	}
	return notifications, unread, nil
}

// UnreadCount counts visible notifications the actor has not read yet.
func (s *NotificationService) UnreadCount(a actor.Actor) (int64, error) {
	var all []models.Notification
	if err := s.db.Scopes(visibleTo(a)).
		Select("id", "read_by").Find(&all).Error; err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}

	var unread int64
	for i := range all {
		if !hasReader(&all[i], a.ID) {
			unread++
		}
	}
	return unread, nil
}

// MarkRead adds the actor to one notification's reader set. Re-reading is a
// no-op; an id outside the actor's visibility reads as not found.
func (s *NotificationService) MarkRead(a actor.Actor, id uuid.UUID) error {
	var n models.Notification
	if err := s.db.Scopes(visibleTo(a)).First(&n, "id = ?", id).Error; err != nil {
		return fmt.Errorf("%w: notification", ErrNotFound)
	}
	return s.addReader(&n, a.ID)
}

// MarkAllRead adds the actor to the reader set of every visible
// notification.
func (s *NotificationService) MarkAllRead(a actor.Actor) error {
	var all []models.Notification
	if err := s.db.Scopes(visibleTo(a)).Find(&all).Error; err != nil {
		return fmt.Errorf("failed to load notifications: %w", err)
	}
	for i := range all {
		if err := s.addReader(&all[i], a.ID); err != nil {
			return err
		}
	}
	return nil
}

func (s *NotificationService) addReader(n *models.Notification, reader uuid.UUID) error {
	if hasReader(n, reader) {
		return nil
	}
	readers := readersOf(n)
	readers = append(readers, reader.String())
	raw, err := json.Marshal(readers)
	if err != nil {
		return fmt.Errorf("failed to encode reader set: %w", err)
	}
	return s.db.Model(n).Update("read_by", datatypes.JSON(raw)).Error
}

func readersOf(n *models.Notification) []string {
	var readers []string
	if len(n.ReadBy) > 0 {
		// A malformed reader set degrades to empty rather than failing reads.
		_ = json.Unmarshal(n.ReadBy, &readers)
	}
	return readers
}

func hasReader(n *models.Notification, reader uuid.UUID) bool {
	id := reader.String()
	for _, r := range readersOf(n) {
		if r == id {
			return true
		}
	}
	return false
}
