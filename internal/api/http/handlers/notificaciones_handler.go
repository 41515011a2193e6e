package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ciplastic/support-tickets/internal/api/dto"
	"github.com/ciplastic/support-tickets/internal/email"
	"github.com/ciplastic/support-tickets/pkg/util"
)

// NotificacionesHandler exposes the resolution notification directly, for
// callers that manage the status change themselves.
type NotificacionesHandler struct {
	mailer email.Mailer
}

// NewNotificacionesHandler constructs handler.
func NewNotificacionesHandler(mailer email.Mailer) *NotificacionesHandler {
	return &NotificacionesHandler{mailer: mailer}
}

// NotifyResolution POST /api/notificaciones/resolucion.
func (h *NotificacionesHandler) NotifyResolution(c *fiber.Ctx) error {
	var req dto.NotificacionRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}

	id, err := h.mailer.NotifyResolution(c.UserContext(), req.Email, req.NumeroTicket, req.Titulo, req.NombrePaciente)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NotificacionResponse{Success: true, ID: id}})
}
