package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/canvas-helper-api/internal/utils"
)

// Scopes granted by profile tokens.
const (
	ScopeAssignments      = "assignments"
	ScopePreferencesRead  = "preferences:read"
	ScopePreferencesWrite = "preferences:write"
)

// AllScopes lists every scope a token can carry.
var AllScopes = []string{ScopeAssignments, ScopePreferencesRead, ScopePreferencesWrite}

// AuthOptions configures the WithAuth helper.
type AuthOptions struct {
	Scope string
}

// WithAuth wraps a handler so it only runs for an authenticated profile holding the required scope.
func WithAuth(handler fiber.Handler, opts AuthOptions) fiber.Handler {
	required := strings.ToLower(strings.TrimSpace(opts.Scope))

	return func(c *fiber.Ctx) error {
		if GetProfileID(c) == "" {
			return utils.Fail(c, fiber.StatusUnauthorized, "authentication required", nil)
		}
		if required != "" && !HasScope(c, required) {
			return utils.Fail(c, fiber.StatusForbidden, "insufficient scope", map[string]string{"required": required})
		}

		return handler(c)
	}
}

// HasScope reports whether the request's token grants scope.
func HasScope(c *fiber.Ctx, scope string) bool {
	scopes, _ := c.Locals(string(scopesKey)).([]string)
	for _, granted := range scopes {
		if strings.EqualFold(granted, scope) {
			return true
		}
	}
	return false
}
