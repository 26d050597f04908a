package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/sekolah-go-api/internal/config"
	"github.com/noah-isme/sekolah-go-api/internal/handler"
	"github.com/noah-isme/sekolah-go-api/internal/middleware"
	"github.com/noah-isme/sekolah-go-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler         *handler.AuthHandler
	StudentHandler      *handler.StudentHandler
	AttendanceHandler   *handler.AttendanceHandler
	PromotionHandler    *handler.PromotionHandler
	FeeHandler          *handler.FeeHandler
	NotificationHandler *handler.NotificationHandler
	HolidayHandler      *handler.HolidayHandler
	ClassHandler        *handler.ClassHandler
	ActivityHandler     *handler.ActivityHandler
	SeedHandler         *handler.SeedHandler
	HealthProbes        map[string]handler.HealthProbe
	JWTMiddleware       fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.HealthProbes))
	api.Get("/metrics", observability.MetricsHandler())

	if deps.AuthHandler != nil {
		deps.AuthHandler.Register(api.Group("/auth"))
	}
	if deps.SeedHandler != nil {
		deps.SeedHandler.Register(api.Group("/seed"))
	}

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = middleware.JWTProtected(cfg.JWTSecret)
	}
	tenant := middleware.RequireSchool()

	// Static student subpaths go first so they never match /students/:id.
	students := api.Group("/students", jwtMiddleware, tenant)
	if deps.AttendanceHandler != nil {
		deps.AttendanceHandler.Register(students.Group("/attendance"))
	}
	if deps.PromotionHandler != nil {
		deps.PromotionHandler.Register(students)
	}
	if deps.FeeHandler != nil {
		deps.FeeHandler.Register(students)
	}
	if deps.NotificationHandler != nil {
		deps.NotificationHandler.Register(students)
	}
	if deps.StudentHandler != nil {
		deps.StudentHandler.Register(students)
	}

	if deps.HolidayHandler != nil {
		deps.HolidayHandler.Register(api.Group("/holidays", jwtMiddleware, tenant))
	}
	if deps.ClassHandler != nil {
		deps.ClassHandler.Register(api.Group("/classes", jwtMiddleware, tenant))
	}
	if deps.ActivityHandler != nil {
		deps.ActivityHandler.Register(api.Group("/activity", jwtMiddleware, tenant))
	}
}
