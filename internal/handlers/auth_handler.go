package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/ttifoundation/admission-backend/internal/actor"
	"github.com/ttifoundation/admission-backend/internal/dto"
	"github.com/ttifoundation/admission-backend/internal/middleware"
	"github.com/ttifoundation/admission-backend/internal/services"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "validation", Detail: "invalid request body"})
	}

	creatorToken := middleware.BearerToken(c.Get(fiber.HeaderAuthorization))
	user, err := h.authService.Register(creatorToken, &req)
	if err != nil {
		return writeServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Account created",
		"user":    user,
	})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "validation", Detail: "invalid request body"})
	}

	resp, err := h.authService.Login(&req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "unauthorized", Detail: "invalid email or password"})
		}
		return writeServiceError(c, err)
	}

	return c.JSON(resp)
}

func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req dto.ForgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "validation", Detail: "invalid request body"})
	}

	clientBase := c.Get(fiber.HeaderOrigin)
	if clientBase == "" {
		clientBase = "http://localhost:5550"
	}

	if err := h.authService.ForgotPassword(req.Email, clientBase); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "If this email exists, reset instructions were sent."})
}

func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req dto.ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "validation", Detail: "invalid request body"})
	}

	if err := h.authService.ResetPassword(req.Token, req.Password); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Password reset successful"})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	a, err := actor.FromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "unauthorized"})
	}
	if err := h.authService.Logout(a); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Logged out"})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	a, err := actor.FromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "unauthorized"})
	}
	user, err := h.authService.Me(a)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(fiber.Map{"user": user})
}
