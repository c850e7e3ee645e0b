package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/prepview/prepview-api/internal/config"
	"github.com/prepview/prepview-api/internal/handler"
	"github.com/prepview/prepview-api/internal/middleware"
	"github.com/prepview/prepview-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler      *handler.AuthHandler
	InterviewHandler *handler.InterviewHandler
	AnswerHandler    *handler.AnswerHandler
	JWTMiddleware    fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	app.Get("/metrics", observability.MetricsHandler())

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.AuthHandler != nil {
		auth := api.Group("/auth")
		auth.Use(middleware.RateLimit("auth", 20, time.Minute))
		deps.AuthHandler.Register(auth)
		deps.AuthHandler.RegisterProtected(auth.Group("", jwtMiddleware))
	}

	if deps.InterviewHandler != nil {
		interviews := api.Group("/interviews", jwtMiddleware)
		deps.InterviewHandler.Register(interviews)
	}

	if deps.AnswerHandler != nil {
		answers := api.Group("/answers", jwtMiddleware)
		deps.AnswerHandler.Register(answers)
	}
}
