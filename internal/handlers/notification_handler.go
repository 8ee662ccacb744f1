package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/ttifoundation/admission-backend/internal/actor"
	"github.com/ttifoundation/admission-backend/internal/dto"
	"github.com/ttifoundation/admission-backend/internal/services"
)

type NotificationHandler struct {
	feed *services.NotificationService
}

func NewNotificationHandler(feed *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{feed: feed}
}

// List returns the actor's visible feed. `days` windows to the last N days
// (0 or absent = unbounded), `limit` caps the page size.
func (h *NotificationHandler) List(c *fiber.Ctx) error {
	a, err := actor.FromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "unauthorized"})
	}

	days, _ := strconv.Atoi(c.Query("days"))
	limit, _ := strconv.Atoi(c.Query("limit"))

	notifications, unread, err := h.feed.List(a, days, limit)
	if err != nil {
		return writeServiceError(c, err)
	}

	return c.JSON(dto.FeedResponse{Notifications: notifications, UnreadCount: unread})
}

func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	a, err := actor.FromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "unauthorized"})
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "not_found", Detail: "notification not found"})
	}

	if err := h.feed.MarkRead(a, id); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Notification marked as read"})
}

func (h *NotificationHandler) MarkAllRead(c *fiber.Ctx) error {
	a, err := actor.FromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "unauthorized"})
	}

	if err := h.feed.MarkAllRead(a); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "All notifications marked as read"})
}
