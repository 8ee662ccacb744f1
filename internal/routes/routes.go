package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/ttifoundation/admission-backend/internal/actor"
	"github.com/ttifoundation/admission-backend/internal/handlers"
	"github.com/ttifoundation/admission-backend/internal/middleware"
	"github.com/ttifoundation/admission-backend/internal/services"
)

func Setup(
	app *fiber.App,
	authService *services.AuthService,
	authHandler *handlers.AuthHandler,
	admissionHandler *handlers.AdmissionHandler,
	notificationHandler *handlers.NotificationHandler,
	healthHandler *handlers.HealthHandler,
) {
	app.Get("/health", healthHandler.Check)

	// Auth — stricter rate limit, 10 req/min per IP.
	auth := app.Group("/api/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/forgot-password", authHandler.ForgotPassword)
	auth.Post("/reset-password", authHandler.ResetPassword)
	auth.Post("/logout", middleware.RequireAuth(authService), authHandler.Logout)
	auth.Get("/me", middleware.RequireAuth(authService), authHandler.Me)

	adm := app.Group("/admission")
	adm.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	// Public submission; everything below requires a session.
	adm.Post("/saveAdmission", admissionHandler.Submit)

	requireAuth := middleware.RequireAuth(authService)
	headOnly := middleware.RequireRoles(actor.RoleHead)
	headOrTeacher := middleware.RequireRoles(actor.RoleHead, actor.RoleTeacher)

	adm.Get("/submitted", requireAuth, admissionHandler.Submitted())
	adm.Get("/head-accepted", requireAuth, admissionHandler.HeadAccepted())
	adm.Get("/head-rejected", requireAuth, admissionHandler.HeadRejected())
	adm.Get("/teacher-head-accepted", requireAuth, admissionHandler.HeadAccepted())
	adm.Get("/teacher-accepted", requireAuth, admissionHandler.TeacherAccepted())
	adm.Get("/teacher-rejected", requireAuth, admissionHandler.TeacherRejected())
	adm.Get("/interview_required", requireAuth, admissionHandler.InterviewRequired())
	adm.Get("/get-data", requireAuth, admissionHandler.Dashboard)

	adm.Get("/head/final-selected", requireAuth, headOnly, admissionHandler.TeacherAccepted())
	adm.Get("/head/final-rejected", requireAuth, headOnly, admissionHandler.TeacherRejected())

	adm.Put("/head/approve/:id", requireAuth, headOnly, admissionHandler.HeadApprove)
	adm.Put("/head/reject/:id", requireAuth, headOnly, admissionHandler.HeadReject)
	adm.Put("/head/delete/:id", requireAuth, headOnly, admissionHandler.HeadDelete)

	adm.Post("/schedule-interview/:id", requireAuth, headOrTeacher, admissionHandler.ScheduleInterview)
	adm.Put("/final/approve/:id", requireAuth, headOrTeacher, admissionHandler.FinalApprove)
	adm.Put("/final/reject/:id", requireAuth, headOrTeacher, admissionHandler.FinalReject)

	adm.Get("/notifications", requireAuth, notificationHandler.List)
	adm.Put("/notifications/read-all", requireAuth, notificationHandler.MarkAllRead)
	adm.Put("/notifications/:id/read", requireAuth, notificationHandler.MarkRead)
}
