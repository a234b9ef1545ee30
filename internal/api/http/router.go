package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/digsafe/locate-ticket-service/internal/api/http/handlers"
	"github.com/digsafe/locate-ticket-service/internal/auth"
	"github.com/digsafe/locate-ticket-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Tickets        *handlers.TicketsHandler
	Responses      *handlers.ResponsesHandler
	Members        *handlers.MembersHandler
	Metrics        *handlers.MetricsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)
	authGroup.Post("/password/reset/request", cfg.Users.RequestPasswordReset)
	authGroup.Post("/password/reset/confirm", cfg.Users.ConfirmPasswordReset)

	authProtected := authGroup.Group("", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	authProtected.Post("/password/change", cfg.Users.ChangePassword)
	authProtected.Post("/members/register",
		auth.RequireRole(domain.RoleAdmin), cfg.Users.RegisterMember)

	tickets := app.Group("/tickets", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	tickets.Post("",
		auth.RequireRole(domain.RoleExcavator, domain.RoleAdmin), cfg.Tickets.CreateTicket)
	tickets.Get("", cfg.Tickets.ListTickets)
	tickets.Get("/number/:number", cfg.Tickets.GetTicketByNumber)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Post("/:id/cancel",
		auth.RequireRole(domain.RoleExcavator, domain.RoleAdmin), cfg.Tickets.CancelTicket)
	tickets.Get("/:id/history", cfg.Tickets.ListHistory)

	tickets.Post("/:id/responses",
		auth.RequireRole(domain.RoleMember, domain.RoleAdmin), cfg.Responses.SubmitResponse)
	tickets.Get("/:id/responses", cfg.Responses.ListResponses)
	tickets.Post("/:id/status/recompute",
		auth.RequireRole(domain.RoleAdmin), cfg.Responses.RecomputeStatus)

	members := tickets.Group("/:id/members", auth.RequireRole(domain.RoleAdmin))
	members.Patch("/:code", cfg.Members.UpdateContact)
	members.Delete("/:code", cfg.Members.Remove)
	members.Get("/summary", cfg.Members.Summary)
	members.Get("/validate", cfg.Members.Validate)

	internal := app.Group("/internal", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleAdmin))
	internal.Get("/metrics", cfg.Metrics.Snapshot)
}
