package dto

import (
	"time"

	"github.com/ciplastic/support-tickets/internal/domain"
)

// TicketResponse is the wire shape of a ticket.
type TicketResponse struct {
	ID             string           `json:"id"`
	Numero         int              `json:"numero"`
	NumeroDisplay  string           `json:"numero_display"`
	Titulo         string           `json:"titulo"`
	Descripcion    string           `json:"descripcion"`
	NombrePaciente string           `json:"nombre_paciente"`
	Categoria      domain.Categoria `json:"categoria"`
	Estado         domain.Estado    `json:"estado"`
	CapturaURL     *string          `json:"captura_url,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// TicketConConteoResponse augments a ticket with its comment count.
type TicketConConteoResponse struct {
	TicketResponse
	TotalComentarios int `json:"total_comentarios"`
}

// ComentarioResponse is the wire shape of a comment.
type ComentarioResponse struct {
	ID         string    `json:"id"`
	TicketID   string    `json:"ticket_id"`
	Contenido  string    `json:"contenido"`
	CapturaURL *string   `json:"captura_url,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// UpdateEstadoRequest changes a ticket's estado. NotificarEmail, when set and
// the estado is Resolved, addresses the patient notification.
type UpdateEstadoRequest struct {
	Estado         domain.Estado `json:"estado"`
	NotificarEmail string        `json:"notificar_email,omitempty"`
}

// EditTicketRequest carries a partial ticket edit; absent fields are left
// untouched.
type EditTicketRequest struct {
	Titulo         *string           `json:"titulo,omitempty"`
	Descripcion    *string           `json:"descripcion,omitempty"`
	NombrePaciente *string           `json:"nombre_paciente,omitempty"`
	Categoria      *domain.Categoria `json:"categoria,omitempty"`
}

// NotificacionRequest asks for a resolution email.
type NotificacionRequest struct {
	Email          string `json:"email"`
	NumeroTicket   int    `json:"numero_ticket"`
	Titulo         string `json:"titulo"`
	NombrePaciente string `json:"nombre_paciente"`
}

// NotificacionResponse reports the provider message id.
type NotificacionResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
}
