package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/launchlist/waitlist-service/internal/api/http/handlers"
	"github.com/launchlist/waitlist-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Signups        *handlers.SignupHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.SessionMiddleware
	AdminPrincipal string
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api")
	api.Post("/signups", cfg.Signups.Create)
	api.Get("/signups/count", cfg.Signups.Count)

	admin := app.Group("/admin")
	admin.Post("/login", cfg.Admin.Login)
	admin.Post("/logout", cfg.Admin.Logout)

	protected := admin.Group("", cfg.AuthMiddleware.Handle, auth.RequirePrincipal(cfg.AdminPrincipal))
	protected.Get("/dashboard", cfg.Admin.Dashboard)
	protected.Get("/signups", cfg.Admin.Signups)
	protected.Get("/metrics", cfg.Admin.Metrics)
}
