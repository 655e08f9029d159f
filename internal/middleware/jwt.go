package middleware

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/canvas-helper-api/internal/utils"
)

// HeaderProfileToken carries the profile token. Authorization is reserved for the forwarded Canvas session.
const HeaderProfileToken = "X-Profile-Token"

// ProfileClaims identify a profile and the scopes granted to it.
type ProfileClaims struct {
	Scope string `json:"scope,omitempty"`
	jwt.RegisteredClaims
}

// IssueProfileToken signs an HS256 token for profileID with the given scopes.
func IssueProfileToken(secret, profileID string, scopes []string, ttl time.Duration, now time.Time) (string, error) {
	if strings.TrimSpace(secret) == "" {
		return "", errors.New("jwt secret must not be empty")
	}
	profileID = strings.TrimSpace(profileID)
	if profileID == "" {
		return "", errors.New("profile id must not be empty")
	}
	if len(profileID) > maxProfileIDLen {
		return "", fmt.Errorf("profile id longer than %d characters", maxProfileIDLen)
	}

	claims := ProfileClaims{
		Scope: strings.Join(scopes, " "),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  profileID,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// JWTProtected validates the profile token and binds its subject as the request's profile.
func JWTProtected(secret string) fiber.Handler {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	key := []byte(secret)

	return func(c *fiber.Ctx) error {
		if len(key) == 0 {
			return utils.SendError(c, fiber.StatusUnauthorized, "authentication is not configured")
		}

		header := strings.TrimSpace(c.Get(HeaderProfileToken))
		if header == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "profile token missing")
		}

		const bearer = "Bearer "
		tokenString := header
		if strings.HasPrefix(strings.ToLower(header), strings.ToLower(bearer)) {
			tokenString = strings.TrimSpace(header[len(bearer):])
		}
		if tokenString == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		claims := &ProfileClaims{}
		token, err := parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
			return key, nil
		})
		if err != nil || !token.Valid {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		profile := strings.TrimSpace(claims.Subject)
		if profile == "" || len(profile) > maxProfileIDLen {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token claims")
		}

		bindProfile(c, profile, strings.Fields(claims.Scope))
		return c.Next()
	}
}
