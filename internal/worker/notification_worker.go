package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/ciplastic/support-tickets/internal/domain"
	"github.com/ciplastic/support-tickets/internal/email"
	"github.com/ciplastic/support-tickets/internal/events"
)

// NotificationWorker sends the resolution email when a ticket reaches
// Resolved. Send failures are logged and never propagated, so a failed
// notification cannot undo or block the status update.
type NotificationWorker struct {
	mailer email.Mailer
	logger *zap.Logger
}

// NewNotificationWorker creates the worker.
func NewNotificationWorker(mailer email.Mailer, logger *zap.Logger) *NotificationWorker {
	return &NotificationWorker{mailer: mailer, logger: logger}
}

// Register subscribes the worker to estado change events.
func (w *NotificationWorker) Register(dispatcher events.Dispatcher) {
	if dispatcher == nil {
		return
	}
	dispatcher.Subscribe(events.EventTicketEstadoChanged, w.handleEstadoChanged)
}

func (w *NotificationWorker) handleEstadoChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketEstadoChangedPayload)
	if !ok {
		return nil
	}
	if payload.NewEstado != domain.EstadoResolved || payload.NotifyEmail == "" {
		return nil
	}

	id, err := w.mailer.NotifyResolution(ctx, payload.NotifyEmail, payload.Numero, payload.Titulo, payload.NombrePaciente)
	if err != nil {
		w.logger.Warn("resolution notification failed",
			zap.String("ticket_id", event.TicketID),
			zap.Int("numero", payload.Numero),
			zap.Error(err))
		return nil
	}

	w.logger.Info("resolution notification sent",
		zap.String("ticket_id", event.TicketID),
		zap.String("message_id", id))
	return nil
}
