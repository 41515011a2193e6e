package domain

import "time"

// Comentario is a threaded note attached to exactly one ticket. It has no
// independent lifecycle: deleting the ticket deletes its comentarios.
type Comentario struct {
	ID         string
	TicketID   string
	Contenido  string
	CapturaURL *string
	CreatedAt  time.Time
}
