package http

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/lead-service/internal/api/http/handlers"
	"github.com/spec-kit/lead-service/internal/ratelimit"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health  *handlers.HealthHandler
	Leads   *handlers.LeadsHandler
	Limiter *ratelimit.Limiter
	Logger  *zap.Logger
}

// RegisterRoutes wires HTTP routes. Every /leads route passes the request
// limiter; health probes are exempt.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	leads := app.Group("/leads", RateLimitMiddleware(cfg.Limiter, cfg.Logger))
	leads.Post("", cfg.Leads.CreateLead)
	leads.Get("", cfg.Leads.ListLeads)
	leads.Get("/:id", cfg.Leads.GetLead)
	leads.Get("/:id/history", cfg.Leads.GetLeadHistory)
	leads.Patch("/:id", cfg.Leads.UpdateLead)
	leads.Delete("/:id", cfg.Leads.DeleteLead)
}
