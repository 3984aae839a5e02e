package handlers

import (
	"github.com/adpilot/dashboard/internal/http/dto"
	"github.com/adpilot/dashboard/internal/middleware"
	"github.com/adpilot/dashboard/internal/services"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type WizardHandler struct {
	wizardService *services.WizardService
	log           *zap.Logger
}

func NewWizardHandler(wizardService *services.WizardService, log *zap.Logger) *WizardHandler {
	return &WizardHandler{wizardService: wizardService, log: log}
}

func wizardView(s *services.WizardSession) dto.WizardResponse {
	return dto.WizardResponse{ID: s.ID, State: s.Snapshot()}
}

func (h *WizardHandler) session(c *fiber.Ctx) (*services.WizardSession, error) {
	id, err := parseID(c, "id")
	if err != nil {
		return nil, services.ErrSessionNotFound
	}
	return h.wizardService.Get(middleware.GetUserID(c), id)
}

func (h *WizardHandler) CreateWizard(c *fiber.Ctx) error {
	session := h.wizardService.Start(c.Context(), middleware.GetUserID(c))
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: wizardView(session)})
}

func (h *WizardHandler) GetWizard(c *fiber.Ctx) error {
	session, err := h.session(c)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: wizardView(session)})
}

func (h *WizardHandler) ChoosePath(c *fiber.Ctx) error {
	var req dto.ChoosePathRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request")
	}

	session, err := h.session(c)
	if err != nil {
		return writeError(c, err)
	}

	switch req.Path {
	case "new":
		err = session.ChooseNew()
	case "existing":
		err = session.ChooseExisting()
	default:
		return badRequest(c, `path must be "new" or "existing"`)
	}
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: wizardView(session)})
}

func (h *WizardHandler) UpdateInput(c *fiber.Ctx) error {
	var req dto.WizardInputRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request")
	}

	session, err := h.session(c)
	if err != nil {
		return writeError(c, err)
	}

	if err := session.SetInputs(req); err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: wizardView(session)})
}

func (h *WizardHandler) ApplyTemplate(c *fiber.Ctx) error {
	var req dto.ApplyTemplateRequest
	if err := c.BodyParser(&req); err != nil || req.TemplateID == "" {
		return badRequest(c, "template_id is required")
	}

	session, err := h.session(c)
	if err != nil {
		return writeError(c, err)
	}
	if err := session.ApplyTemplate(req.TemplateID); err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: wizardView(session)})
}

func (h *WizardHandler) Back(c *fiber.Ctx) error {
	session, err := h.session(c)
	if err != nil {
		return writeError(c, err)
	}
	if err := session.Back(); err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: wizardView(session)})
}

func (h *WizardHandler) Generate(c *fiber.Ctx) error {
	session, err := h.session(c)
	if err != nil {
		return writeError(c, err)
	}
	if _, err := session.Generate(c.Context()); err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: wizardView(session)})
}

func (h *WizardHandler) SelectOption(c *fiber.Ctx) error {
	var req dto.SelectOptionRequest
	if err := c.BodyParser(&req); err != nil || req.OptionID == "" {
		return badRequest(c, "option_id is required")
	}

	session, err := h.session(c)
	if err != nil {
		return writeError(c, err)
	}
	if err := session.Select(req.OptionID); err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: wizardView(session)})
}

func (h *WizardHandler) SetCustomization(c *fiber.Ctx) error {
	var req dto.SetFieldRequest
	if err := c.BodyParser(&req); err != nil || req.Path == "" {
		return badRequest(c, "path is required")
	}

	session, err := h.session(c)
	if err != nil {
		return writeError(c, err)
	}
	if err := session.SetCustomization(req.Path, req.Value); err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: wizardView(session)})
}

func (h *WizardHandler) Publish(c *fiber.Ctx) error {
	session, err := h.session(c)
	if err != nil {
		return writeError(c, err)
	}
	result, err := session.Publish(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: dto.PublishResultResponse{
		Result: result,
		Wizard: wizardView(session),
	}})
}

func (h *WizardHandler) CancelWizard(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return writeError(c, services.ErrSessionNotFound)
	}
	if err := h.wizardService.Cancel(middleware.GetUserID(c), id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true})
}
