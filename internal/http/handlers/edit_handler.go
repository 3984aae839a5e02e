package handlers

import (
	"strings"

	"github.com/adpilot/dashboard/internal/http/dto"
	"github.com/adpilot/dashboard/internal/middleware"
	"github.com/adpilot/dashboard/internal/services"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type EditHandler struct {
	editorService *services.EditorService
	log           *zap.Logger
}

func NewEditHandler(editorService *services.EditorService, log *zap.Logger) *EditHandler {
	return &EditHandler{editorService: editorService, log: log}
}

func (h *EditHandler) OpenEdit(c *fiber.Ctx) error {
	adID := strings.TrimSpace(c.Params("adId"))
	if adID == "" {
		return badRequest(c, "ad id is required")
	}

	userID := middleware.GetUserID(c)
	session, err := h.editorService.Open(c.Context(), userID, adID)
	if err != nil {
		return writeError(c, err)
	}
	view, err := h.editorService.View(userID, session.ID)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: view})
}

func (h *EditHandler) GetEdit(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return writeError(c, services.ErrSessionNotFound)
	}
	view, err := h.editorService.View(middleware.GetUserID(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: view})
}

func (h *EditHandler) GetField(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return writeError(c, services.ErrSessionNotFound)
	}
	path := c.Query("path")
	value, ok, err := h.editorService.Field(middleware.GetUserID(c), id, path)
	if err != nil {
		return writeError(c, err)
	}
	if !ok {
		value = ""
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: dto.FieldResponse{Path: path, Value: value, Exists: ok}})
}

func (h *EditHandler) SetField(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return writeError(c, services.ErrSessionNotFound)
	}
	var req dto.SetFieldRequest
	if err := c.BodyParser(&req); err != nil || req.Path == "" {
		return badRequest(c, "path is required")
	}

	view, err := h.editorService.SetField(middleware.GetUserID(c), id, req.Path, req.Value)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: view})
}

func (h *EditHandler) SetBudget(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return writeError(c, services.ErrSessionNotFound)
	}
	var req dto.SetBudgetRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request")
	}

	view, err := h.editorService.SetDailyBudget(middleware.GetUserID(c), id, req.DailyBudget)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: view})
}

func (h *EditHandler) SaveEdit(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return writeError(c, services.ErrSessionNotFound)
	}
	config, err := h.editorService.Save(c.Context(), middleware.GetUserID(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: config})
}

func (h *EditHandler) CloseEdit(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return writeError(c, services.ErrSessionNotFound)
	}
	if err := h.editorService.Close(middleware.GetUserID(c), id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true})
}
