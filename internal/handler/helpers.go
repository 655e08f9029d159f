package handler

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/canvas-helper-api/internal/middleware"
	"github.com/noah-isme/canvas-helper-api/pkg/canvas"
)

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		builder := base.With()
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			builder = builder.Str("correlation_id", correlation)
		}
		if profile := middleware.GetProfileID(c); profile != "" {
			builder = builder.Str("profile_id", profile)
		}
		logger = builder.Logger()
	}
	return &logger
}

// sessionCredentials forwards the caller's Canvas session headers untouched.
func sessionCredentials(c *fiber.Ctx) canvas.Credentials {
	return canvas.Credentials{
		Cookie:        strings.TrimSpace(c.Get(fiber.HeaderCookie)),
		Authorization: strings.TrimSpace(c.Get(fiber.HeaderAuthorization)),
	}
}

func isValidationError(err error) bool {
	var validationErrors validator.ValidationErrors
	return errors.As(err, &validationErrors)
}

func validationDetails(err error) map[string]string {
	details := map[string]string{}
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, fieldErr := range validationErrors {
			details[fieldErr.Field()] = fieldErr.Tag()
		}
	}
	return details
}
