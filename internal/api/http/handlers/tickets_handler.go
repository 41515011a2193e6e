package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"github.com/ciplastic/support-tickets/internal/api/dto"
	"github.com/ciplastic/support-tickets/internal/domain"
	"github.com/ciplastic/support-tickets/internal/service"
	"github.com/ciplastic/support-tickets/internal/storage"
	"github.com/ciplastic/support-tickets/pkg/util"
)

// TicketsHandler manages ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// ListTickets GET /api/tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	var categoria *domain.Categoria
	if raw := c.Query("categoria"); raw != "" {
		value := domain.Categoria(raw)
		categoria = &value
	}
	var estado *domain.Estado
	if raw := c.Query("estado"); raw != "" {
		value := domain.Estado(raw)
		estado = &value
	}

	tickets, err := h.service.ListTickets(c.UserContext(), categoria, estado)
	if err != nil {
		return err
	}
	items := make([]dto.TicketConConteoResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketConConteoResponse(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetTicketPorNumero GET /api/tickets/numero/:numero.
func (h *TicketsHandler) GetTicketPorNumero(c *fiber.Ctx) error {
	numero, err := strconv.Atoi(c.Params("numero"))
	if err != nil {
		return util.NewValidationError("numero inválido", nil)
	}
	ticket, err := h.service.GetTicketPorNumero(c.UserContext(), numero)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// CreateTicket POST /api/tickets. Accepts multipart form data with an
// optional captura file.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	input := service.TicketCreateInput{
		Titulo:         c.FormValue("titulo"),
		Descripcion:    c.FormValue("descripcion"),
		NombrePaciente: c.FormValue("nombre_paciente"),
		Categoria:      domain.Categoria(c.FormValue("categoria")),
	}

	file, cleanup, err := capturaFromForm(c)
	if err != nil {
		return err
	}
	if cleanup != nil {
		defer cleanup()
	}
	input.Captura = file

	ticket, err := h.service.CreateTicket(c.UserContext(), input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// UpdateEstado PATCH /api/tickets/:id/estado.
func (h *TicketsHandler) UpdateEstado(c *fiber.Ctx) error {
	var req dto.UpdateEstadoRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.UpdateEstado(c.UserContext(), c.Params("id"), req.Estado, req.NotificarEmail)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// EditTicket PATCH /api/tickets/:id.
func (h *TicketsHandler) EditTicket(c *fiber.Ctx) error {
	var req dto.EditTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	input := service.TicketEditInput{
		Titulo:         req.Titulo,
		Descripcion:    req.Descripcion,
		NombrePaciente: req.NombrePaciente,
		Categoria:      req.Categoria,
	}
	if err := h.service.EditTicket(c.UserContext(), c.Params("id"), input); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"updated": true}})
}

// DeleteTicket DELETE /api/tickets/:id.
func (h *TicketsHandler) DeleteTicket(c *fiber.Ctx) error {
	if err := h.service.DeleteTicket(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"deleted": true}})
}

// capturaFromForm extracts the optional captura file from a multipart form.
// An absent part is fine; a multipart body that fails to parse is not.
func capturaFromForm(c *fiber.Ctx) (*storage.File, func(), error) {
	header, err := c.FormFile("captura")
	if err != nil {
		if errors.Is(err, fasthttp.ErrMissingFile) || errors.Is(err, fasthttp.ErrNoMultipartForm) {
			return nil, nil, nil
		}
		return nil, nil, util.NewValidationError("captura inválida", map[string]any{"reason": err.Error()})
	}
	opened, err := header.Open()
	if err != nil {
		return nil, nil, util.NewValidationError("captura ilegible", nil)
	}
	file := &storage.File{
		Name:        header.Filename,
		ContentType: contentTypeOf(header),
		Size:        header.Size,
		Reader:      opened,
	}
	return file, func() { _ = opened.Close() }, nil
}

func contentTypeOf(header *multipart.FileHeader) string {
	if ct := header.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

func ticketResponse(ticket *domain.Ticket) dto.TicketResponse {
	return dto.TicketResponse{
		ID:             ticket.ID,
		Numero:         ticket.Numero,
		NumeroDisplay:  domain.FormatNumero(ticket.Numero),
		Titulo:         ticket.Titulo,
		Descripcion:    ticket.Descripcion,
		NombrePaciente: ticket.NombrePaciente,
		Categoria:      ticket.Categoria,
		Estado:         ticket.Estado,
		CapturaURL:     ticket.CapturaURL,
		CreatedAt:      ticket.CreatedAt,
		UpdatedAt:      ticket.UpdatedAt,
	}
}

func ticketConConteoResponse(ticket *domain.TicketConConteo) dto.TicketConConteoResponse {
	return dto.TicketConConteoResponse{
		TicketResponse:   ticketResponse(&ticket.Ticket),
		TotalComentarios: ticket.TotalComentarios,
	}
}
