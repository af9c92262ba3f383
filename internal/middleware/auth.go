package middleware

import (
	"strings"

	"wavvly/internal/models"
	"wavvly/internal/services"
	apperrors "wavvly/pkg/errors"

	"github.com/gofiber/fiber/v2"
)

const (
	localUserID   = "user_id"
	localUsername = "username"
)

// AuthRequired is a Fiber middleware to check for a valid JWT token that
// belongs to an existing user.
func AuthRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return apperrors.Unauthenticated("No token, authorization denied")
		}
		tokenString, ok := bearer(authHeader)
		if !ok {
			return apperrors.Unauthenticated("Authorization header format must be 'Bearer <token>'")
		}

		if err := authenticate(c, authService, tokenString); err != nil {
			return err
		}
		return c.Next()
	}
}

// OptionalAuth identifies the caller when a valid token is present and lets
// the request through anonymously otherwise.
func OptionalAuth(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if tokenString, ok := bearer(c.Get(fiber.HeaderAuthorization)); ok {
			_ = authenticate(c, authService, tokenString)
		}
		return c.Next()
	}
}

func bearer(header string) (string, bool) {
	// Expected format: "Bearer <token>"
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

func authenticate(c *fiber.Ctx, authService *services.AuthService, tokenString string) error {
	claims, err := authService.ValidateToken(tokenString)
	if err != nil {
		return err
	}
	userID, _ := claims["user_id"].(string)

	// a token outliving its account is rejected
	user, err := authService.CurrentUser(c.UserContext(), userID)
	if err != nil {
		if apperrors.IsKind(err, apperrors.KindNotFound) {
			return apperrors.Unauthenticated("Token is not valid")
		}
		return err
	}

	// Store claims in Fiber context for subsequent handlers
	c.Locals(localUserID, user.ID)
	c.Locals(localUsername, user.Username)
	return nil
}

// UserID returns the authenticated user's id, or "" for anonymous requests.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(localUserID).(string)
	return id
}

// ValidObjectID rejects requests whose named path parameters are not
// well-formed ids.
func ValidObjectID(params ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		for _, param := range params {
			if !models.IsValidID(c.Params(param)) {
				return apperrors.Validation("Invalid ID format")
			}
		}
		return c.Next()
	}
}
