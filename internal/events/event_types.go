package events

import (
	"time"

	"github.com/ciplastic/support-tickets/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketEstadoChanged EventType = "ticket_estado_changed"
	EventTicketDeleted       EventType = "ticket_deleted"
	EventComentarioAdded     EventType = "comentario_added"
)

// Event represents a domain event emitted by the ticket service.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Numero    int              `json:"numero"`
	Titulo    string           `json:"titulo"`
	Categoria domain.Categoria `json:"categoria"`
}

// TicketEstadoChangedPayload payload.
type TicketEstadoChangedPayload struct {
	OldEstado      domain.Estado `json:"old_estado"`
	NewEstado      domain.Estado `json:"new_estado"`
	Numero         int           `json:"numero"`
	Titulo         string        `json:"titulo"`
	NombrePaciente string        `json:"nombre_paciente"`
	NotifyEmail    string        `json:"notify_email,omitempty"`
}

// TicketDeletedPayload payload.
type TicketDeletedPayload struct {
	Numero              int `json:"numero"`
	ComentariosAffected int `json:"comentarios_affected"`
}

// ComentarioAddedPayload payload.
type ComentarioAddedPayload struct {
	ComentarioID string `json:"comentario_id"`
	HasCaptura   bool   `json:"has_captura"`
}
