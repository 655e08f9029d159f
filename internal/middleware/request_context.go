package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const maxProfileIDLen = 128

type requestContextKey string

const (
	correlationKey requestContextKey = "correlation_id"
	profileKey     requestContextKey = "profile_id"
	scopesKey      requestContextKey = "scopes"
)

// CorrelationID ensures every request carries a correlation identifier for tracing across services.
func CorrelationID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		incoming := strings.TrimSpace(c.Get("X-Correlation-ID"))
		if incoming == "" {
			incoming = strings.TrimSpace(c.Get("X-Request-ID"))
		}
		if incoming == "" {
			incoming = uuid.NewString()
		}

		c.Locals(string(correlationKey), incoming)
		c.Set("X-Correlation-ID", incoming)
		c.SetUserContext(ContextWithCorrelation(c.UserContext(), incoming))

		return c.Next()
	}
}

// CorrelationIDFromContext extracts the correlation identifier from context, if present.
func CorrelationIDFromContext(ctx context.Context) string {
	return stringFromContext(ctx, correlationKey)
}

// GetCorrelationID returns the correlation identifier bound to the active request.
func GetCorrelationID(c *fiber.Ctx) string {
	return localString(c, correlationKey)
}

// GetProfileID returns the profile bound by JWTProtected, or "" for unauthenticated requests.
func GetProfileID(c *fiber.Ctx) string {
	return localString(c, profileKey)
}

// ContextWithCorrelation attaches the correlation identifier to the provided context.
func ContextWithCorrelation(ctx context.Context, correlationID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if strings.TrimSpace(correlationID) == "" {
		return ctx
	}
	return context.WithValue(ctx, correlationKey, strings.TrimSpace(correlationID))
}

func bindProfile(c *fiber.Ctx, profile string, scopes []string) {
	c.Locals(string(profileKey), profile)
	c.Locals(string(scopesKey), scopes)
	c.SetUserContext(context.WithValue(c.UserContext(), profileKey, profile))
}

func localString(c *fiber.Ctx, key requestContextKey) string {
	if c == nil {
		return ""
	}
	if value, ok := c.Locals(string(key)).(string); ok {
		return value
	}
	return stringFromContext(c.UserContext(), key)
}

func stringFromContext(ctx context.Context, key requestContextKey) string {
	if ctx == nil {
		return ""
	}
	if value, ok := ctx.Value(key).(string); ok {
		return value
	}
	return ""
}
