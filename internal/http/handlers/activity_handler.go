package handlers

import (
	"context"

	"github.com/adpilot/dashboard/internal/http/dto"
	"github.com/adpilot/dashboard/internal/middleware"
	"github.com/adpilot/dashboard/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ActivityReader interface {
	ListByActor(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.AuditLog, error)
}

type ActivityHandler struct {
	audit ActivityReader
	log   *zap.Logger
}

func NewActivityHandler(audit ActivityReader, log *zap.Logger) *ActivityHandler {
	return &ActivityHandler{audit: audit, log: log}
}

// ListActivity returns the caller's published and edited ads, newest first.
func (h *ActivityHandler) ListActivity(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	entries, err := h.audit.ListByActor(c.Context(), middleware.GetUserID(c), limit, offset)
	if err != nil {
		h.log.Error("failed to list activity", zap.Error(err))
		return writeError(c, err)
	}
	if entries == nil {
		entries = []models.AuditLog{}
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: entries})
}
