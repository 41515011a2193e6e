package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ciplastic/support-tickets/internal/domain"
)

// ComentarioRepository manages ticket thread comments.
type ComentarioRepository interface {
	Create(ctx context.Context, comentario *domain.Comentario) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.Comentario, error)
	ListAll(ctx context.Context) ([]domain.Comentario, error)
	CountByTicket(ctx context.Context, ticketID string) (int, error)
	DeleteByTicket(ctx context.Context, ticketID string) error
}

type comentarioRepository struct {
	pool *pgxpool.Pool
}

// NewComentarioRepository builds repository.
func NewComentarioRepository(pool *pgxpool.Pool) ComentarioRepository {
	return &comentarioRepository{pool: pool}
}

func (r *comentarioRepository) Create(ctx context.Context, comentario *domain.Comentario) error {
	const query = `
        INSERT INTO comentarios (ticket_id, contenido, captura_url)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		comentario.TicketID,
		comentario.Contenido,
		comentario.CapturaURL,
	).Scan(&comentario.ID, &comentario.CreatedAt)
}

func (r *comentarioRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.Comentario, error) {
	const query = `
        SELECT id, ticket_id, contenido, captura_url, created_at
        FROM comentarios WHERE ticket_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanComentarios(rows)
}

func (r *comentarioRepository) ListAll(ctx context.Context) ([]domain.Comentario, error) {
	const query = `
        SELECT id, ticket_id, contenido, captura_url, created_at
        FROM comentarios ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanComentarios(rows)
}

func (r *comentarioRepository) CountByTicket(ctx context.Context, ticketID string) (int, error) {
	const query = `SELECT COUNT(*) FROM comentarios WHERE ticket_id=$1`
	var count int
	if err := r.pool.QueryRow(ctx, query, ticketID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *comentarioRepository) DeleteByTicket(ctx context.Context, ticketID string) error {
	const query = `DELETE FROM comentarios WHERE ticket_id=$1`
	_, err := r.pool.Exec(ctx, query, ticketID)
	return err
}

func scanComentarios(rows pgx.Rows) ([]domain.Comentario, error) {
	var result []domain.Comentario
	for rows.Next() {
		var comentario domain.Comentario
		if err := rows.Scan(
			&comentario.ID,
			&comentario.TicketID,
			&comentario.Contenido,
			&comentario.CapturaURL,
			&comentario.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, comentario)
	}
	return result, rows.Err()
}
