package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/ciplastic/support-tickets/internal/domain"
	"github.com/ciplastic/support-tickets/internal/repository"
)

// Exporter snapshots all tickets and comentarios to dated JSON files.
type Exporter struct {
	tickets     repository.TicketRepository
	comentarios repository.ComentarioRepository
	outputDir   string
	logger      *zap.Logger
}

// NewExporter builds an exporter writing under outputDir.
func NewExporter(tickets repository.TicketRepository, comentarios repository.ComentarioRepository, outputDir string, logger *zap.Logger) *Exporter {
	return &Exporter{
		tickets:     tickets,
		comentarios: comentarios,
		outputDir:   outputDir,
		logger:      logger,
	}
}

type ticketRecord struct {
	ID             string           `json:"id"`
	Numero         int              `json:"numero"`
	Titulo         string           `json:"titulo"`
	Descripcion    string           `json:"descripcion"`
	NombrePaciente string           `json:"nombre_paciente"`
	Categoria      domain.Categoria `json:"categoria"`
	Estado         domain.Estado    `json:"estado"`
	CapturaURL     *string          `json:"captura_url,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

type comentarioRecord struct {
	ID         string    `json:"id"`
	TicketID   string    `json:"ticket_id"`
	Contenido  string    `json:"contenido"`
	CapturaURL *string   `json:"captura_url,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type resumen struct {
	Fecha       time.Time `json:"fecha"`
	Tickets     int       `json:"tickets"`
	Comentarios int       `json:"comentarios"`
}

// Run reads both collections and writes tickets.json, comentarios.json and
// resumen.json under <outputDir>/<YYYY-MM-DD>/. Any read failure is fatal to
// the run; partially written files are left in place.
func (e *Exporter) Run(ctx context.Context) error {
	dir := filepath.Join(e.outputDir, time.Now().Format("2006-01-02"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create backup dir: %w", err)
	}

	e.logger.Info("respaldando tickets")
	tickets, err := e.tickets.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("read tickets: %w", err)
	}
	ticketRecords := make([]ticketRecord, 0, len(tickets))
	for _, t := range tickets {
		ticketRecords = append(ticketRecords, ticketRecord{
			ID:             t.ID,
			Numero:         t.Numero,
			Titulo:         t.Titulo,
			Descripcion:    t.Descripcion,
			NombrePaciente: t.NombrePaciente,
			Categoria:      t.Categoria,
			Estado:         t.Estado,
			CapturaURL:     t.CapturaURL,
			CreatedAt:      t.CreatedAt,
			UpdatedAt:      t.UpdatedAt,
		})
	}
	if err := writeJSON(filepath.Join(dir, "tickets.json"), ticketRecords); err != nil {
		return err
	}
	e.logger.Info("tickets respaldados", zap.Int("count", len(ticketRecords)))

	e.logger.Info("respaldando comentarios")
	comentarios, err := e.comentarios.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("read comentarios: %w", err)
	}
	comentarioRecords := make([]comentarioRecord, 0, len(comentarios))
	for _, c := range comentarios {
		comentarioRecords = append(comentarioRecords, comentarioRecord{
			ID:         c.ID,
			TicketID:   c.TicketID,
			Contenido:  c.Contenido,
			CapturaURL: c.CapturaURL,
			CreatedAt:  c.CreatedAt,
		})
	}
	if err := writeJSON(filepath.Join(dir, "comentarios.json"), comentarioRecords); err != nil {
		return err
	}
	e.logger.Info("comentarios respaldados", zap.Int("count", len(comentarioRecords)))

	summary := resumen{
		Fecha:       time.Now(),
		Tickets:     len(ticketRecords),
		Comentarios: len(comentarioRecords),
	}
	if err := writeJSON(filepath.Join(dir, "resumen.json"), summary); err != nil {
		return err
	}

	e.logger.Info("respaldo completado", zap.String("dir", dir))
	return nil
}

func writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}
