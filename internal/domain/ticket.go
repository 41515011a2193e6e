package domain

import (
	"fmt"
	"time"
)

// Categoria enumerates the channels a ticket can originate from.
type Categoria string

const (
	CategoriaWhatsApp       Categoria = "WhatsApp"
	CategoriaMessenger      Categoria = "Messenger"
	CategoriaInstagram      Categoria = "Instagram"
	CategoriaBotTraining    Categoria = "Bot-Training"
	CategoriaTechnicalIssue Categoria = "Technical-Issue"
	CategoriaOther          Categoria = "Other"
)

// Categorias lists every valid categoria value.
var Categorias = []Categoria{
	CategoriaWhatsApp,
	CategoriaMessenger,
	CategoriaInstagram,
	CategoriaBotTraining,
	CategoriaTechnicalIssue,
	CategoriaOther,
}

// Valid reports whether the categoria belongs to the closed set.
func (c Categoria) Valid() bool {
	for _, candidate := range Categorias {
		if c == candidate {
			return true
		}
	}
	return false
}

// Estado enumerates workflow statuses. Transitions are unconstrained; any
// estado may be set at any time.
type Estado string

const (
	EstadoNew        Estado = "New"
	EstadoInProgress Estado = "In-Progress"
	EstadoResolved   Estado = "Resolved"
	EstadoClosed     Estado = "Closed"
)

// Estados lists every valid estado value.
var Estados = []Estado{EstadoNew, EstadoInProgress, EstadoResolved, EstadoClosed}

// Valid reports whether the estado belongs to the closed set.
func (e Estado) Valid() bool {
	for _, candidate := range Estados {
		if e == candidate {
			return true
		}
	}
	return false
}

// Ticket is a single support request record.
type Ticket struct {
	ID             string
	Numero         int
	Titulo         string
	Descripcion    string
	NombrePaciente string
	Categoria      Categoria
	Estado         Estado
	CapturaURL     *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TicketConConteo is a ticket augmented with its exact comment count.
type TicketConConteo struct {
	Ticket
	TotalComentarios int
}

// FormatNumero renders a ticket number the way it is displayed, zero-padded
// to five digits.
func FormatNumero(numero int) string {
	return fmt.Sprintf("%05d", numero)
}
