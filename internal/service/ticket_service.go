package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ciplastic/support-tickets/internal/domain"
	"github.com/ciplastic/support-tickets/internal/events"
	"github.com/ciplastic/support-tickets/internal/repository"
	"github.com/ciplastic/support-tickets/internal/storage"
	"github.com/ciplastic/support-tickets/pkg/util"
)

const uniqueViolationCode = "23505"

// TicketService coordinates ticket workflows.
type TicketService struct {
	tickets     repository.TicketRepository
	comentarios repository.ComentarioRepository
	uploader    storage.Uploader
	dispatcher  events.Dispatcher
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo     repository.TicketRepository
	ComentarioRepo repository.ComentarioRepository
	Uploader       storage.Uploader
	Dispatcher     events.Dispatcher
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Titulo         string
	Descripcion    string
	NombrePaciente string
	Categoria      domain.Categoria
	Captura        *storage.File
}

// TicketEditInput carries the editable subset of ticket fields; only non-nil
// fields are written.
type TicketEditInput struct {
	Titulo         *string
	Descripcion    *string
	NombrePaciente *string
	Categoria      *domain.Categoria
}

// ComentarioCreateInput describes comment creation payload.
type ComentarioCreateInput struct {
	Contenido string
	Captura   *storage.File
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:     deps.TicketRepo,
		comentarios: deps.ComentarioRepo,
		uploader:    deps.Uploader,
		dispatcher:  deps.Dispatcher,
	}
}

// ListTickets returns tickets newest first, each with its exact comment
// count. Both filters are optional and conjunctive when supplied.
func (s *TicketService) ListTickets(ctx context.Context, categoria *domain.Categoria, estado *domain.Estado) ([]domain.TicketConConteo, error) {
	if categoria != nil && !categoria.Valid() {
		return nil, util.NewValidationError("categoria inválida", map[string]any{"categoria": *categoria})
	}
	if estado != nil && !estado.Valid() {
		return nil, util.NewValidationError("estado inválido", map[string]any{"estado": *estado})
	}
	tickets, err := s.tickets.List(ctx, repository.TicketFilter{Categoria: categoria, Estado: estado})
	if err != nil {
		return nil, util.NewStorageError("list tickets", err)
	}
	return tickets, nil
}

// GetTicketPorNumero looks a ticket up by its display number.
func (s *TicketService) GetTicketPorNumero(ctx context.Context, numero int) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByNumero(ctx, numero)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewNotFound("ticket", map[string]any{"numero": numero})
		}
		return nil, util.NewStorageError("get ticket", err)
	}
	return ticket, nil
}

// CreateTicket uploads the optional captura first, assigns the next numero
// and inserts the row with estado New. An upload failure aborts the whole
// operation before any row is written.
func (s *TicketService) CreateTicket(ctx context.Context, input TicketCreateInput) (*domain.Ticket, error) {
	if err := validateCreate(input); err != nil {
		return nil, err
	}

	var capturaURL *string
	if input.Captura != nil {
		if err := storage.Validate(*input.Captura); err != nil {
			return nil, err
		}
		url, err := s.uploader.Upload(ctx, *input.Captura)
		if err != nil {
			return nil, err
		}
		capturaURL = &url
	}

	ticket := &domain.Ticket{
		Titulo:         strings.TrimSpace(input.Titulo),
		Descripcion:    strings.TrimSpace(input.Descripcion),
		NombrePaciente: strings.TrimSpace(input.NombrePaciente),
		Categoria:      input.Categoria,
		Estado:         domain.EstadoNew,
		CapturaURL:     capturaURL,
	}

	if err := s.insertWithNumero(ctx, ticket); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Payload: events.TicketCreatedPayload{
			Numero:    ticket.Numero,
			Titulo:    ticket.Titulo,
			Categoria: ticket.Categoria,
		},
	})
	return ticket, nil
}

// insertWithNumero assigns numero as 1 + current maximum. Two concurrent
// creates can compute the same value; the unique index on numero rejects the
// loser, which recomputes and retries once.
func (s *TicketService) insertWithNumero(ctx context.Context, ticket *domain.Ticket) error {
	for attempt := 0; attempt < 2; attempt++ {
		max, err := s.tickets.MaxNumero(ctx)
		if err != nil {
			return util.NewStorageError("next numero", err)
		}
		ticket.Numero = max + 1

		err = s.tickets.Create(ctx, ticket)
		if err == nil {
			return nil
		}
		if isUniqueViolation(err) && attempt == 0 {
			continue
		}
		return util.NewStorageError("create ticket", err)
	}
	return util.NewStorageError("create ticket", errors.New("numero conflict persisted after retry"))
}

// UpdateEstado writes the new estado unconditionally and refreshes
// updated_at. notifyEmail, when present and the new estado is Resolved,
// triggers the patient notification out of band; its failure never fails the
// update itself.
func (s *TicketService) UpdateEstado(ctx context.Context, ticketID string, nuevoEstado domain.Estado, notifyEmail string) (*domain.Ticket, error) {
	if !nuevoEstado.Valid() {
		return nil, util.NewValidationError("estado inválido", map[string]any{"estado": nuevoEstado})
	}

	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	oldEstado := ticket.Estado

	updatedAt, err := s.tickets.UpdateEstado(ctx, ticketID, nuevoEstado)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewNotFound("ticket", map[string]any{"id": ticketID})
		}
		return nil, util.NewStorageError("update estado", err)
	}

	ticket.Estado = nuevoEstado
	ticket.UpdatedAt = updatedAt

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketEstadoChanged,
		TicketID: ticket.ID,
		Payload: events.TicketEstadoChangedPayload{
			OldEstado:      oldEstado,
			NewEstado:      nuevoEstado,
			Numero:         ticket.Numero,
			Titulo:         ticket.Titulo,
			NombrePaciente: ticket.NombrePaciente,
			NotifyEmail:    notifyEmail,
		},
	})
	return ticket, nil
}

// EditTicket overwrites only the supplied fields and refreshes updated_at.
func (s *TicketService) EditTicket(ctx context.Context, ticketID string, input TicketEditInput) error {
	if input.Categoria != nil && !input.Categoria.Valid() {
		return util.NewValidationError("categoria inválida", map[string]any{"categoria": *input.Categoria})
	}

	update := repository.TicketUpdate{
		Titulo:         input.Titulo,
		Descripcion:    input.Descripcion,
		NombrePaciente: input.NombrePaciente,
		Categoria:      input.Categoria,
	}
	if err := s.tickets.Edit(ctx, ticketID, update); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return util.NewNotFound("ticket", map[string]any{"id": ticketID})
		}
		return util.NewStorageError("edit ticket", err)
	}
	return nil
}

// DeleteTicket removes the ticket's comentarios first, then the ticket row.
// If the second step fails the store is left with a commentless ticket; that
// partial state is accepted, there is no rollback.
func (s *TicketService) DeleteTicket(ctx context.Context, ticketID string) error {
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return err
	}

	affected, err := s.comentarios.CountByTicket(ctx, ticketID)
	if err != nil {
		return util.NewStorageError("count comentarios", err)
	}
	if err := s.comentarios.DeleteByTicket(ctx, ticketID); err != nil {
		return util.NewStorageError("delete comentarios", err)
	}
	if err := s.tickets.Delete(ctx, ticketID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return util.NewNotFound("ticket", map[string]any{"id": ticketID})
		}
		return util.NewStorageError("delete ticket", err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketDeleted,
		TicketID: ticketID,
		Payload: events.TicketDeletedPayload{
			Numero:              ticket.Numero,
			ComentariosAffected: affected,
		},
	})
	return nil
}

// ListComentarios returns a ticket's comments in ascending creation order.
func (s *TicketService) ListComentarios(ctx context.Context, ticketID string) ([]domain.Comentario, error) {
	comentarios, err := s.comentarios.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, util.NewStorageError("list comentarios", err)
	}
	return comentarios, nil
}

// CreateComentario appends a comment to an existing ticket, uploading the
// optional captura first. The ticket reference is checked here rather than
// left to a store-side foreign key.
func (s *TicketService) CreateComentario(ctx context.Context, ticketID string, input ComentarioCreateInput) (*domain.Comentario, error) {
	if strings.TrimSpace(input.Contenido) == "" {
		return nil, util.NewValidationError("contenido requerido", nil)
	}

	if _, err := s.getTicket(ctx, ticketID); err != nil {
		return nil, err
	}

	var capturaURL *string
	if input.Captura != nil {
		if err := storage.Validate(*input.Captura); err != nil {
			return nil, err
		}
		url, err := s.uploader.Upload(ctx, *input.Captura)
		if err != nil {
			return nil, err
		}
		capturaURL = &url
	}

	comentario := &domain.Comentario{
		TicketID:   ticketID,
		Contenido:  strings.TrimSpace(input.Contenido),
		CapturaURL: capturaURL,
	}
	if err := s.comentarios.Create(ctx, comentario); err != nil {
		return nil, util.NewStorageError("create comentario", err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventComentarioAdded,
		TicketID: ticketID,
		Payload: events.ComentarioAddedPayload{
			ComentarioID: comentario.ID,
			HasCaptura:   capturaURL != nil,
		},
	})
	return comentario, nil
}

func (s *TicketService) getTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewNotFound("ticket", map[string]any{"id": ticketID})
		}
		return nil, util.NewStorageError("get ticket", err)
	}
	return ticket, nil
}

func validateCreate(input TicketCreateInput) error {
	missing := map[string]any{}
	if strings.TrimSpace(input.Titulo) == "" {
		missing["titulo"] = "requerido"
	}
	if strings.TrimSpace(input.Descripcion) == "" {
		missing["descripcion"] = "requerido"
	}
	if strings.TrimSpace(input.NombrePaciente) == "" {
		missing["nombre_paciente"] = "requerido"
	}
	if len(missing) > 0 {
		return util.NewValidationError("campos requeridos ausentes", missing)
	}
	if !input.Categoria.Valid() {
		return util.NewValidationError("categoria inválida", map[string]any{"categoria": input.Categoria})
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
