package middleware

import (
	"strings"

	"github.com/adpilot/dashboard/internal/auth"
	"github.com/adpilot/dashboard/internal/config"
	"github.com/adpilot/dashboard/internal/http/dto"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	CtxUserID = "user_id"
	CtxEmail  = "email"
)

// AuthMiddleware accepts the "Bearer <jwt>" issued by the embedding
// application. The scheme is matched case-insensitively.
func AuthMiddleware(cfg *config.Config, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		scheme, tokenStr, ok := strings.Cut(c.Get(fiber.HeaderAuthorization), " ")
		tokenStr = strings.TrimSpace(tokenStr)
		if !ok || !strings.EqualFold(scheme, "Bearer") || tokenStr == "" {
			return unauthorized(c, "missing bearer token")
		}

		claims, err := auth.ParseJWT(cfg.JWTSecret, tokenStr)
		if err != nil {
			log.Debug("jwt parse error", zap.Error(err))
			return unauthorized(c, "invalid or expired token")
		}

		c.Locals(CtxUserID, claims.UserID)
		c.Locals(CtxEmail, claims.Email)
		return c.Next()
	}
}

func unauthorized(c *fiber.Ctx, msg string) error {
	reqID, _ := c.Locals(CtxRequestID).(string)
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: msg, RequestID: reqID})
}

func GetUserID(c *fiber.Ctx) uuid.UUID {
	id, _ := c.Locals(CtxUserID).(uuid.UUID)
	return id
}
