package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"taskdesk/internal/apierr"
	"taskdesk/pkg/logger"
)

// Login verifies the presented credentials and answers with a bearer token.
func (h *Handler) Login(c *fiber.Ctx) error {
	type LoginRequest struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("Bad request in login", zap.Error(err))
		return apierr.Respond(c, apierr.BadRequest("Bad request", err))
	}

	if err := h.Validate.Struct(req); err != nil {
		logger.AuditLogger.Warn("Validation error during login", zap.Error(err))
		return apierr.Respond(c, apierr.Validation(err))
	}

	user, err := h.Verifier.Verify(c.Context(), req.Username, req.Password)
	if err != nil {
		logger.SecurityLogger.Warn("Login rejected", zap.String("username", req.Username))
		return apierr.Respond(c, err)
	}

	tokenString, err := h.Issuer.Issue(user.ID)
	if err != nil {
		logger.ErrorLogger.Error("Error generating token", zap.Error(err))
		return apierr.Respond(c, err)
	}

	logger.AuditLogger.Info("Login success", zap.Int("user_id", user.ID))
	return c.JSON(fiber.Map{
		"message": "Login success",
		"success": true,
		"status":  200,
		"data": fiber.Map{
			"user_id": user.ID,
			"token":   tokenString,
		},
	})
}
