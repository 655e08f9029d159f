package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/canvas-helper-api/internal/config"
	"github.com/noah-isme/canvas-helper-api/internal/handler"
	"github.com/noah-isme/canvas-helper-api/internal/middleware"
	"github.com/noah-isme/canvas-helper-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	MessageHandler     *handler.MessageHandler
	PreferencesHandler *handler.PreferencesHandler
	JWTMiddleware      fiber.Handler
}

// Register wires the HTTP routes into the fiber application. Health and metrics stay public; everything that
// touches a profile sits behind JWTMiddleware.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = middleware.JWTProtected(cfg.AuthJWTSecret)
	}

	// Every message can fan out to Canvas and the AI provider, so it is limited per profile.
	if deps.MessageHandler != nil {
		window := cfg.RateLimitWindow
		if window <= 0 {
			window = time.Minute
		}
		messages := api.Group("/messages", jwtMiddleware)
		deps.MessageHandler.Register(messages, middleware.RateLimit("messages", cfg.RateLimitMax, window))
	}

	if deps.PreferencesHandler != nil {
		deps.PreferencesHandler.Register(api.Group("/preferences", jwtMiddleware))
	}
}
