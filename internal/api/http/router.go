package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ciplastic/support-tickets/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Tickets        *handlers.TicketsHandler
	Comentarios    *handlers.ComentariosHandler
	Notificaciones *handlers.NotificacionesHandler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api")

	tickets := api.Group("/tickets")
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Post("/", cfg.Tickets.CreateTicket)
	tickets.Get("/numero/:numero", cfg.Tickets.GetTicketPorNumero)
	tickets.Patch("/:id/estado", cfg.Tickets.UpdateEstado)
	tickets.Patch("/:id", cfg.Tickets.EditTicket)
	tickets.Delete("/:id", cfg.Tickets.DeleteTicket)

	tickets.Get("/:id/comentarios", cfg.Comentarios.ListComentarios)
	tickets.Post("/:id/comentarios", cfg.Comentarios.CreateComentario)

	api.Post("/notificaciones/resolucion", cfg.Notificaciones.NotifyResolution)
}
