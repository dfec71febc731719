package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/LuaAI777/cts-project/internal/service"
	"github.com/LuaAI777/cts-project/internal/store"
)

type HealthHandler struct {
	backend store.Backend
	status  store.Status
	cache   *service.CacheService
	startAt time.Time
}

func NewHealthHandler(backend store.Backend, status store.Status, cache *service.CacheService) *HealthHandler {
	return &HealthHandler{
		backend: backend,
		status:  status,
		cache:   cache,
		startAt: time.Now(),
	}
}

// Live handles GET /health/live (liveness probe).
func (h *HealthHandler) Live(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// Ready handles GET /health/ready (readiness probe). A store that fell back
// to memory still serves traffic and reports "degraded"; a store that does
// not answer makes the instance unready.
func (h *HealthHandler) Ready(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 3*time.Second)
	defer cancel()

	storeCheck := checkStore(ctx, h.backend)
	storeCheck["requested"] = h.status.Requested
	storeCheck["degraded"] = h.status.Degraded

	overallStatus := "healthy"
	if h.status.Degraded {
		overallStatus = "degraded"
	}
	if storeCheck["status"] != "up" {
		overallStatus = "unavailable"
	}

	cacheStatus := "disabled"
	if h.cache.Enabled() {
		cacheStatus = "enabled"
	}

	resp := fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"store":        storeCheck,
			"signal_cache": fiber.Map{"status": cacheStatus},
		},
		"uptime_seconds": int(time.Since(h.startAt).Seconds()),
	}

	status := fiber.StatusOK
	if overallStatus == "unavailable" {
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(resp)
}

func checkStore(ctx context.Context, b store.Backend) fiber.Map {
	start := time.Now()
	err := b.Ping(ctx)
	latency := time.Since(start).Milliseconds()

	if err != nil {
		return fiber.Map{
			"status":     "down",
			"backend":    b.Name(),
			"latency_ms": latency,
			"error":      "connection failed",
		}
	}
	return fiber.Map{
		"status":     "up",
		"backend":    b.Name(),
		"latency_ms": latency,
	}
}
