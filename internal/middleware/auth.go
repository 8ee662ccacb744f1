package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/ttifoundation/admission-backend/internal/actor"
	"github.com/ttifoundation/admission-backend/internal/dto"
	"github.com/ttifoundation/admission-backend/internal/services"
)

// BearerToken extracts the opaque token from an Authorization header, or ""
// when absent or malformed.
func BearerToken(header string) string {
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(header[len("Bearer "):])
}

// RequireAuth resolves the bearer token to an actor and stores it in the
// request locals. Requests without a valid session are rejected with 401.
func RequireAuth(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := BearerToken(c.Get(fiber.HeaderAuthorization))
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "unauthorized", Detail: "missing bearer token"})
		}

		a, err := auth.ResolveToken(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "unauthorized", Detail: "invalid token"})
		}

		actor.Store(c, a)
		return c.Next()
	}
}

// RequireRoles rejects actors whose role is not in the allow set. Course
// scoping is not enforced here; the services hide out-of-scope records via
// the lookup filter instead.
func RequireRoles(roles ...actor.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		a, err := actor.FromCtx(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "unauthorized"})
		}
		for _, role := range roles {
			if a.Role == role {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Error: "forbidden"})
	}
}
