package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-desk/internal/api/http/handlers"
	"github.com/spec-kit/ticket-desk/internal/auth"
	"github.com/spec-kit/ticket-desk/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Tickets        *handlers.TicketsHandler
	Dashboard      *handlers.DashboardHandler
	Preferences    *handlers.PreferencesHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)

	protected := app.Group("", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	protected.Post("/auth/logout", cfg.Users.Logout)
	protected.Get("/auth/session", cfg.Users.Session)

	protected.Get("/profile", cfg.Users.Profile)
	protected.Patch("/profile", cfg.Users.UpdateProfile)

	protected.Get("/dashboard", cfg.Dashboard.Dashboard)
	protected.Get("/reports", cfg.Dashboard.Reports)

	protected.Get("/tickets", cfg.Tickets.ListTickets)
	protected.Post("/tickets", cfg.Tickets.CreateTicket)
	protected.Get("/tickets/:id", cfg.Tickets.GetTicket)
	protected.Patch("/tickets/:id", cfg.Tickets.UpdateTicket)
	protected.Delete("/tickets/:id", cfg.Tickets.DeleteTicket)
	protected.Post("/tickets/:id/comments", cfg.Tickets.AddComment)

	protected.Get("/preferences", cfg.Preferences.List)
	protected.Get("/preferences/:key", cfg.Preferences.Get)
	protected.Put("/preferences/:key", cfg.Preferences.Put)
	protected.Delete("/preferences/:key", cfg.Preferences.Delete)

	admin := protected.Group("/admin", auth.RequireRole(domain.UserRoleAdmin))
	admin.Post("/tickets/reset", cfg.Admin.Reset)
	admin.Post("/tickets/clear", cfg.Admin.Clear)
	admin.Post("/tickets/sync", cfg.Admin.Sync)
}
