package handlers

import (
	"errors"

	"github.com/adpilot/dashboard/internal/http/dto"
	"github.com/adpilot/dashboard/internal/middleware"
	"github.com/adpilot/dashboard/internal/services"
	"github.com/adpilot/dashboard/internal/wizard"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// statusFor maps domain errors to HTTP statuses. Collaborator failures are
// shown to the user with their own message.
func statusFor(err error) int {
	var callErr *wizard.CallError
	var backendErr *services.BackendError
	switch {
	case errors.Is(err, services.ErrSessionNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, wizard.ErrStepNotReady),
		errors.Is(err, wizard.ErrUnknownField),
		errors.Is(err, services.ErrInvalidConfig):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, wizard.ErrBusy),
		errors.Is(err, wizard.ErrInvalidTransition):
		return fiber.StatusConflict
	case errors.Is(err, wizard.ErrClosed):
		return fiber.StatusGone
	case errors.Is(err, wizard.ErrExistingNotSupported):
		return fiber.StatusNotImplemented
	case errors.Is(err, wizard.ErrOptionNotFound),
		errors.Is(err, wizard.ErrTemplateNotFound):
		return fiber.StatusNotFound
	case errors.As(err, &callErr),
		errors.Is(err, services.ErrBackendUnavailable):
		return fiber.StatusBadGateway
	case errors.As(err, &backendErr):
		if backendErr.Status == fiber.StatusNotFound {
			return fiber.StatusNotFound
		}
		return fiber.StatusBadGateway
	}
	return fiber.StatusInternalServerError
}

func writeError(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	if status == fiber.StatusInternalServerError {
		return errorJSON(c, status, "internal error")
	}
	return errorJSON(c, status, err.Error())
}

func badRequest(c *fiber.Ctx, msg string) error {
	return errorJSON(c, fiber.StatusBadRequest, msg)
}

func errorJSON(c *fiber.Ctx, status int, msg string) error {
	reqID, _ := c.Locals(middleware.CtxRequestID).(string)
	return c.Status(status).JSON(dto.ErrorResponse{Error: msg, RequestID: reqID})
}

func parseID(c *fiber.Ctx, param string) (uuid.UUID, error) {
	return uuid.Parse(c.Params(param))
}
