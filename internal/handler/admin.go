package handler

import (
	"github.com/gofiber/fiber/v3"
	"gopkg.in/yaml.v3"

	"github.com/LuaAI777/cts-project/internal/middleware"
	"github.com/LuaAI777/cts-project/internal/model"
	"github.com/LuaAI777/cts-project/internal/service"
)

type AdminHandler struct {
	svc *service.GovernanceService
}

func NewAdminHandler(svc *service.GovernanceService) *AdminHandler {
	return &AdminHandler{svc: svc}
}

// GetConfig handles GET /api/admin/config
func (h *AdminHandler) GetConfig(c fiber.Ctx) error {
	cfg, err := h.svc.Current(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(cfg)
}

// UpdateConfig handles PUT /api/admin/config
func (h *AdminHandler) UpdateConfig(c fiber.Ctx) error {
	var cfg model.Config
	if err := c.Bind().JSON(&cfg); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
	}
	entry, err := h.svc.Update(c.Context(), &cfg, middleware.Actor(c))
	if err != nil {
		return h.fail(c, "update", err)
	}
	Metrics.GovernanceOps.WithLabelValues("update", "ok").Inc()
	return c.JSON(entry)
}

// Propose handles POST /api/admin/config/pending
func (h *AdminHandler) Propose(c fiber.Ctx) error {
	var cfg model.Config
	if err := c.Bind().JSON(&cfg); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
	}
	change, err := h.svc.Propose(c.Context(), &cfg, middleware.Actor(c))
	if err != nil {
		return h.fail(c, "propose", err)
	}
	Metrics.GovernanceOps.WithLabelValues("propose", "ok").Inc()
	return c.Status(fiber.StatusCreated).JSON(change)
}

// ListPending handles GET /api/admin/pending
func (h *AdminHandler) ListPending(c fiber.Ctx) error {
	pending, err := h.svc.ListPending(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"changes": pending})
}

// GetChange handles GET /api/admin/changes/:changeId
func (h *AdminHandler) GetChange(c fiber.Ctx) error {
	id, errMsg := middleware.ValidateChangeID(c.Params("changeId"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_INPUT", errMsg)
	}
	change, err := h.svc.GetChange(c.Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(change)
}

// Approve handles POST /api/admin/config/approve/:changeId
func (h *AdminHandler) Approve(c fiber.Ctx) error {
	return h.decide(c, true)
}

// Reject handles POST /api/admin/config/reject/:changeId
func (h *AdminHandler) Reject(c fiber.Ctx) error {
	return h.decide(c, false)
}

func (h *AdminHandler) decide(c fiber.Ctx, approve bool) error {
	op := "reject"
	if approve {
		op = "approve"
	}
	id, errMsg := middleware.ValidateChangeID(c.Params("changeId"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_INPUT", errMsg)
	}
	d, err := h.svc.Decide(c.Context(), id, approve, middleware.Actor(c))
	if err != nil {
		return h.fail(c, op, err)
	}
	Metrics.GovernanceOps.WithLabelValues(op, "ok").Inc()
	return c.JSON(d)
}

// Rollback handles POST /api/admin/config/rollback/:index
func (h *AdminHandler) Rollback(c fiber.Ctx) error {
	index, errMsg := middleware.ValidateHistoryIndex(c.Params("index"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_INPUT", errMsg)
	}
	entry, err := h.svc.Rollback(c.Context(), index, middleware.Actor(c))
	if err != nil {
		return h.fail(c, "rollback", err)
	}
	Metrics.GovernanceOps.WithLabelValues("rollback", "ok").Inc()
	return c.JSON(entry)
}

// History handles GET /api/admin/history?offset=&limit=
func (h *AdminHandler) History(c fiber.Ctx) error {
	offset, limit, errMsg := middleware.ValidatePage(c.Query("offset"), c.Query("limit"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_INPUT", errMsg)
	}
	entries, err := h.svc.History(c.Context(), offset, limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{
		"offset":  offset,
		"limit":   limit,
		"entries": entries,
	})
}

// ExportHistory handles GET /api/admin/history/export
// Serves the full audit trail as a YAML document.
func (h *AdminHandler) ExportHistory(c fiber.Ctx) error {
	entries, err := h.svc.History(c.Context(), 0, 0)
	if err != nil {
		return writeError(c, err)
	}
	out, err := yaml.Marshal(struct {
		History []model.HistoryEntry `yaml:"history"`
	}{History: entries})
	if err != nil {
		return writeError(c, err)
	}

	c.Set("Content-Type", "application/yaml")
	c.Set("Content-Disposition", "attachment; filename=cts-config-history.yaml")
	return c.Send(out)
}

func (h *AdminHandler) fail(c fiber.Ctx, op string, err error) error {
	Metrics.GovernanceOps.WithLabelValues(op, failureKind(err)).Inc()
	return writeError(c, err)
}
