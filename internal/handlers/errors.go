package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/ttifoundation/admission-backend/internal/dto"
	"github.com/ttifoundation/admission-backend/internal/services"
)

// writeServiceError maps the service error taxonomy onto HTTP statuses. The
// machine-stable code goes in `error`, the wrapped message in `detail`.
func writeServiceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrValidation):
		return write(c, fiber.StatusBadRequest, "validation", err)
	case errors.Is(err, services.ErrDuplicate):
		return write(c, fiber.StatusConflict, "duplicate", err)
	case errors.Is(err, services.ErrUnauthenticated):
		return write(c, fiber.StatusUnauthorized, "unauthorized", err)
	case errors.Is(err, services.ErrForbidden):
		return write(c, fiber.StatusForbidden, "forbidden", err)
	case errors.Is(err, services.ErrNotFound):
		return write(c, fiber.StatusNotFound, "not_found", err)
	case errors.Is(err, services.ErrUpstream):
		return write(c, fiber.StatusInternalServerError, "upstream", err)
	}

	slog.Error("unhandled service error", "method", c.Method(), "path", c.Path(), "error", err.Error())
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal"})
}

func write(c *fiber.Ctx, status int, code string, err error) error {
	return c.Status(status).JSON(dto.ErrorResponse{Error: code, Detail: err.Error()})
}
