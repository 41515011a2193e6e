package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/ciplastic/support-tickets/internal/api/dto"
	"github.com/ciplastic/support-tickets/internal/domain"
	"github.com/ciplastic/support-tickets/internal/service"
)

// ComentariosHandler manages ticket comment endpoints.
type ComentariosHandler struct {
	service *service.TicketService
}

// NewComentariosHandler constructs handler.
func NewComentariosHandler(ticketService *service.TicketService) *ComentariosHandler {
	return &ComentariosHandler{service: ticketService}
}

// ListComentarios GET /api/tickets/:id/comentarios.
func (h *ComentariosHandler) ListComentarios(c *fiber.Ctx) error {
	comentarios, err := h.service.ListComentarios(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.ComentarioResponse, 0, len(comentarios))
	for i := range comentarios {
		items = append(items, comentarioResponse(&comentarios[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateComentario POST /api/tickets/:id/comentarios. Accepts multipart form
// data with an optional captura file.
func (h *ComentariosHandler) CreateComentario(c *fiber.Ctx) error {
	input := service.ComentarioCreateInput{
		Contenido: c.FormValue("contenido"),
	}

	file, cleanup, err := capturaFromForm(c)
	if err != nil {
		return err
	}
	if cleanup != nil {
		defer cleanup()
	}
	input.Captura = file

	comentario, err := h.service.CreateComentario(c.UserContext(), c.Params("id"), input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": comentarioResponse(comentario)})
}

func comentarioResponse(comentario *domain.Comentario) dto.ComentarioResponse {
	return dto.ComentarioResponse{
		ID:         comentario.ID,
		TicketID:   comentario.TicketID,
		Contenido:  comentario.Contenido,
		CapturaURL: comentario.CapturaURL,
		CreatedAt:  comentario.CreatedAt,
	}
}
