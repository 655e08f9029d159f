package router_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/canvas-helper-api/internal/config"
	"github.com/noah-isme/canvas-helper-api/internal/handler"
	"github.com/noah-isme/canvas-helper-api/internal/router"
)

func TestRegisterExposesHealthAndMetrics(t *testing.T) {
	app := fiber.New()
	router.Register(app, config.Config{AppName: "canvas-helper-test", CanvasDomainSuffix: "instructure.com"}, router.Dependencies{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "canvas-helper-test", resp.Header.Get("X-Application"))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "planner_course_fallbacks_total")
}

func TestRegisterSkipsMissingHandlers(t *testing.T) {
	app := fiber.New()
	router.Register(app, config.Config{}, router.Dependencies{})

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/v1/messages", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestRegisterGuardsProfileRoutes(t *testing.T) {
	app := fiber.New()
	router.Register(app, config.Config{AuthJWTSecret: "router-secret", RateLimitMax: 5}, router.Dependencies{
		MessageHandler:     handler.NewMessageHandler(nil, validator.New(), zerolog.Nop()),
		PreferencesHandler: handler.NewPreferencesHandler(nil, validator.New(), zerolog.Nop()),
	})

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodPost, "/api/v1/messages", nil),
		httptest.NewRequest(http.MethodGet, "/api/v1/preferences", nil),
		httptest.NewRequest(http.MethodPut, "/api/v1/preferences", nil),
	} {
		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, req.URL.Path)
	}

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}
