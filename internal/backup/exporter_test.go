package backup

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ciplastic/support-tickets/internal/domain"
	"github.com/ciplastic/support-tickets/internal/repository"
)

type stubTicketRepo struct {
	repository.TicketRepository
	tickets []domain.Ticket
	err     error
}

func (s *stubTicketRepo) ListAll(context.Context) ([]domain.Ticket, error) {
	return s.tickets, s.err
}

type stubComentarioRepo struct {
	repository.ComentarioRepository
	comentarios []domain.Comentario
	err         error
}

func (s *stubComentarioRepo) ListAll(context.Context) ([]domain.Comentario, error) {
	return s.comentarios, s.err
}

func sampleData() ([]domain.Ticket, []domain.Comentario) {
	now := time.Date(2024, 8, 1, 10, 0, 0, 0, time.UTC)
	url := "https://cdn.example.com/capturas/a.png"
	tickets := []domain.Ticket{
		{
			ID:             "ticket-2",
			Numero:         2,
			Titulo:         "Bot no responde",
			Descripcion:    "El bot dejó de contestar",
			NombrePaciente: "Luis",
			Categoria:      domain.CategoriaBotTraining,
			Estado:         domain.EstadoInProgress,
			CreatedAt:      now.Add(time.Hour),
			UpdatedAt:      now.Add(2 * time.Hour),
		},
		{
			ID:             "ticket-1",
			Numero:         1,
			Titulo:         "Login fails",
			Descripcion:    "No puedo entrar",
			NombrePaciente: "Ana",
			Categoria:      domain.CategoriaTechnicalIssue,
			Estado:         domain.EstadoResolved,
			CapturaURL:     &url,
			CreatedAt:      now,
			UpdatedAt:      now,
		},
	}
	comentarios := []domain.Comentario{
		{ID: "comentario-1", TicketID: "ticket-1", Contenido: "Revisando", CreatedAt: now.Add(time.Minute)},
	}
	return tickets, comentarios
}

func TestExporterWritesSnapshot(t *testing.T) {
	tickets, comentarios := sampleData()
	dir := t.TempDir()
	exporter := NewExporter(
		&stubTicketRepo{tickets: tickets},
		&stubComentarioRepo{comentarios: comentarios},
		dir,
		zap.NewNop(),
	)

	require.NoError(t, exporter.Run(context.Background()))

	dayDir := filepath.Join(dir, time.Now().Format("2006-01-02"))

	var exportedTickets []ticketRecord
	readJSON(t, filepath.Join(dayDir, "tickets.json"), &exportedTickets)
	require.Len(t, exportedTickets, 2)
	assert.Equal(t, "ticket-2", exportedTickets[0].ID)
	assert.Equal(t, "Bot-Training", string(exportedTickets[0].Categoria))
	require.NotNil(t, exportedTickets[1].CapturaURL)

	var exportedComentarios []comentarioRecord
	readJSON(t, filepath.Join(dayDir, "comentarios.json"), &exportedComentarios)
	require.Len(t, exportedComentarios, 1)
	assert.Equal(t, "ticket-1", exportedComentarios[0].TicketID)

	var summary resumen
	readJSON(t, filepath.Join(dayDir, "resumen.json"), &summary)
	assert.Equal(t, 2, summary.Tickets)
	assert.Equal(t, 1, summary.Comentarios)
	assert.False(t, summary.Fecha.IsZero())
}

func TestExporterFailsOnTicketReadError(t *testing.T) {
	exporter := NewExporter(
		&stubTicketRepo{err: errors.New("connection refused")},
		&stubComentarioRepo{},
		t.TempDir(),
		zap.NewNop(),
	)
	err := exporter.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read tickets")
}

func TestExporterFailsOnComentarioReadError(t *testing.T) {
	tickets, _ := sampleData()
	dir := t.TempDir()
	exporter := NewExporter(
		&stubTicketRepo{tickets: tickets},
		&stubComentarioRepo{err: errors.New("connection refused")},
		dir,
		zap.NewNop(),
	)
	err := exporter.Run(context.Background())
	require.Error(t, err)

	// tickets.json was already written; no cleanup is performed
	dayDir := filepath.Join(dir, time.Now().Format("2006-01-02"))
	_, statErr := os.Stat(filepath.Join(dayDir, "tickets.json"))
	assert.NoError(t, statErr)
	_, statErr = os.Stat(filepath.Join(dayDir, "resumen.json"))
	assert.True(t, os.IsNotExist(statErr))
}

func readJSON(t *testing.T, path string, into any) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, into))
}
