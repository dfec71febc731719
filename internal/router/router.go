package router

import (
	"github.com/gofiber/fiber/v3"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/LuaAI777/cts-project/internal/handler"
	"github.com/LuaAI777/cts-project/internal/middleware"
)

// Handlers holds all handler instances needed by the router.
type Handlers struct {
	Health     *handler.HealthHandler
	Evaluation *handler.EvaluationHandler
	Admin      *handler.AdminHandler
}

// Limiters holds the per-route rate limiters.
type Limiters struct {
	Evaluate   *middleware.RateLimiter
	Search     *middleware.RateLimiter
	AdminWrite *middleware.RateLimiter
}

// NewLimiters returns the production rate limits.
func NewLimiters() *Limiters {
	return &Limiters{
		Evaluate:   middleware.NewEvaluateRateLimiter(),
		Search:     middleware.NewSearchRateLimiter(),
		AdminWrite: middleware.NewAdminWriteRateLimiter(),
	}
}

// Close stops the limiters' background cleanup.
func (l *Limiters) Close() {
	l.Evaluate.Close()
	l.Search.Close()
	l.AdminWrite.Close()
}

// Setup configures the middleware stack and all API routes on the given Fiber app.
func Setup(app *fiber.App, h *Handlers, rl *Limiters, corsOrigins string) {
	// Middleware stack (order matters)
	app.Use(recoverer.New())
	app.Use(middleware.NewRequestLogger())
	app.Use(middleware.NewCORS(corsOrigins))
	app.Use(handler.MetricsMiddleware())

	app.Get("/health/live", h.Health.Live)
	app.Get("/health/ready", h.Health.Ready)
	app.Get("/metrics", handler.MetricsHandler())

	api := app.Group("/api")

	// Scoring routes
	api.Post("/evaluate", rl.Evaluate.Handler(), h.Evaluation.Evaluate)
	api.Get("/videos/:videoId/evaluation", rl.Evaluate.Handler(), h.Evaluation.EvaluateVideo)
	api.Get("/search", rl.Search.Handler(), h.Evaluation.Search)

	// Config governance routes; every call names its actor.
	admin := api.Group("/admin", middleware.RequireActor())
	admin.Get("/config", h.Admin.GetConfig)
	admin.Get("/pending", h.Admin.ListPending)
	admin.Get("/changes/:changeId", h.Admin.GetChange)
	admin.Get("/history", h.Admin.History)
	admin.Get("/history/export", h.Admin.ExportHistory)

	writes := rl.AdminWrite.Handler()
	admin.Put("/config", writes, h.Admin.UpdateConfig)
	admin.Post("/config/pending", writes, h.Admin.Propose)
	admin.Post("/config/approve/:changeId", writes, h.Admin.Approve)
	admin.Post("/config/reject/:changeId", writes, h.Admin.Reject)
	admin.Post("/config/rollback/:index", writes, h.Admin.Rollback)
}
