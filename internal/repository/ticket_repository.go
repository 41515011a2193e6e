package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ciplastic/support-tickets/internal/domain"
)

// TicketFilter captures listing parameters. Filters are conjunctive when both
// are supplied.
type TicketFilter struct {
	Categoria *domain.Categoria
	Estado    *domain.Estado
}

// TicketUpdate carries the editable subset of ticket fields. Only non-nil
// fields are written.
type TicketUpdate struct {
	Titulo         *string
	Descripcion    *string
	NombrePaciente *string
	Categoria      *domain.Categoria
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	List(ctx context.Context, filter TicketFilter) ([]domain.TicketConConteo, error)
	ListAll(ctx context.Context) ([]domain.Ticket, error)
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	GetByNumero(ctx context.Context, numero int) (*domain.Ticket, error)
	MaxNumero(ctx context.Context) (int, error)
	UpdateEstado(ctx context.Context, id string, estado domain.Estado) (time.Time, error)
	Edit(ctx context.Context, id string, update TicketUpdate) error
	Delete(ctx context.Context, id string) error
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (numero, titulo, descripcion, nombre_paciente, categoria, estado, captura_url)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.Numero,
		ticket.Titulo,
		ticket.Descripcion,
		ticket.NombrePaciente,
		ticket.Categoria,
		ticket.Estado,
		ticket.CapturaURL,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.TicketConConteo, error) {
	base := `SELECT t.id, t.numero, t.titulo, t.descripcion, t.nombre_paciente, t.categoria,
                    t.estado, t.captura_url, t.created_at, t.updated_at,
                    COUNT(c.id) AS total_comentarios
             FROM tickets t
             LEFT JOIN comentarios c ON c.ticket_id = t.id`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Categoria != nil {
		args = append(args, *filter.Categoria)
		clauses = append(clauses, fmt.Sprintf("t.categoria=$%d", len(args)))
	}
	if filter.Estado != nil {
		args = append(args, *filter.Estado)
		clauses = append(clauses, fmt.Sprintf("t.estado=$%d", len(args)))
	}

	query := fmt.Sprintf(`%s WHERE %s GROUP BY t.id ORDER BY t.created_at DESC`,
		base, strings.Join(clauses, " AND "))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TicketConConteo
	for rows.Next() {
		var ticket domain.TicketConConteo
		if err := rows.Scan(
			&ticket.ID,
			&ticket.Numero,
			&ticket.Titulo,
			&ticket.Descripcion,
			&ticket.NombrePaciente,
			&ticket.Categoria,
			&ticket.Estado,
			&ticket.CapturaURL,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
			&ticket.TotalComentarios,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}

func (r *ticketRepository) ListAll(ctx context.Context) ([]domain.Ticket, error) {
	const query = `
        SELECT id, numero, titulo, descripcion, nombre_paciente, categoria, estado,
               captura_url, created_at, updated_at
        FROM tickets ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	const query = `
        SELECT id, numero, titulo, descripcion, nombre_paciente, categoria, estado,
               captura_url, created_at, updated_at
        FROM tickets WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *ticketRepository) GetByNumero(ctx context.Context, numero int) (*domain.Ticket, error) {
	const query = `
        SELECT id, numero, titulo, descripcion, nombre_paciente, categoria, estado,
               captura_url, created_at, updated_at
        FROM tickets WHERE numero=$1`
	return r.fetchSingle(ctx, query, numero)
}

func (r *ticketRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&ticket.ID,
		&ticket.Numero,
		&ticket.Titulo,
		&ticket.Descripcion,
		&ticket.NombrePaciente,
		&ticket.Categoria,
		&ticket.Estado,
		&ticket.CapturaURL,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) MaxNumero(ctx context.Context) (int, error) {
	const query = `SELECT COALESCE(MAX(numero), 0) FROM tickets`
	var max int
	if err := r.pool.QueryRow(ctx, query).Scan(&max); err != nil {
		return 0, err
	}
	return max, nil
}

func (r *ticketRepository) UpdateEstado(ctx context.Context, id string, estado domain.Estado) (time.Time, error) {
	const query = `UPDATE tickets SET estado=$1, updated_at=NOW() WHERE id=$2 RETURNING updated_at`
	var updatedAt time.Time
	if err := r.pool.QueryRow(ctx, query, estado, id).Scan(&updatedAt); err != nil {
		return time.Time{}, err
	}
	return updatedAt, nil
}

func (r *ticketRepository) Edit(ctx context.Context, id string, update TicketUpdate) error {
	sets := []string{}
	args := []any{}

	if update.Titulo != nil {
		args = append(args, *update.Titulo)
		sets = append(sets, fmt.Sprintf("titulo=$%d", len(args)))
	}
	if update.Descripcion != nil {
		args = append(args, *update.Descripcion)
		sets = append(sets, fmt.Sprintf("descripcion=$%d", len(args)))
	}
	if update.NombrePaciente != nil {
		args = append(args, *update.NombrePaciente)
		sets = append(sets, fmt.Sprintf("nombre_paciente=$%d", len(args)))
	}
	if update.Categoria != nil {
		args = append(args, *update.Categoria)
		sets = append(sets, fmt.Sprintf("categoria=$%d", len(args)))
	}

	sets = append(sets, "updated_at=NOW()")
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE tickets SET %s WHERE id=$%d`,
		strings.Join(sets, ", "), len(args))

	cmd, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM tickets WHERE id=$1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.Numero,
			&ticket.Titulo,
			&ticket.Descripcion,
			&ticket.NombrePaciente,
			&ticket.Categoria,
			&ticket.Estado,
			&ticket.CapturaURL,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
