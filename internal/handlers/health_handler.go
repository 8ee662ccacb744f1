package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ttifoundation/admission-backend/internal/database"
)

type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	db := "ok"
	if err := database.Ping(); err != nil {
		db = "unhealthy: " + err.Error()
	}

	return c.JSON(fiber.Map{
		"ok":      true,
		"service": "tti-admission-backend",
		"db":      db,
	})
}
