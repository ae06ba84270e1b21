package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"taskdesk/internal/apierr"
	"taskdesk/internal/token"
	"taskdesk/pkg/logger"
)

// RequireAuth rejects requests without a valid bearer token and attaches the
// resolved user id to the request context. Malformed, badly signed and
// expired tokens are logged with their internal kind but all answer 401.
func RequireAuth(issuer *token.Issuer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return apierr.Respond(c, apierr.MissingToken())
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			return apierr.Respond(c, apierr.InvalidToken(nil))
		}

		userID, err := issuer.Validate(parts[1])
		if err != nil {
			logger.SecurityLogger.Warn("Token rejected",
				zap.Error(err),
				zap.String("path", c.Path()),
			)
			return apierr.Respond(c, apierr.InvalidToken(err))
		}

		c.Locals("userID", userID)
		return c.Next()
	}
}
