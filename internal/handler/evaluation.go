package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v3"

	"github.com/LuaAI777/cts-project/internal/middleware"
	"github.com/LuaAI777/cts-project/internal/model"
	"github.com/LuaAI777/cts-project/internal/service"
)

// maxSearchResults is the provider's page size ceiling.
const maxSearchResults = 50

type EvaluationHandler struct {
	svc        *service.EvaluationService
	maxResults int64
}

func NewEvaluationHandler(svc *service.EvaluationService, maxResults int64) *EvaluationHandler {
	return &EvaluationHandler{svc: svc, maxResults: maxResults}
}

// Evaluate handles POST /api/evaluate
func (h *EvaluationHandler) Evaluate(c fiber.Ctx) error {
	var sig model.VideoSignal
	if err := c.Bind().JSON(&sig); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
	}
	if sig.VideoID != "" {
		id, errMsg := middleware.ValidateVideoID(sig.VideoID)
		if errMsg != "" {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_INPUT", errMsg)
		}
		sig.VideoID = id
	}

	res, err := h.svc.Evaluate(c.Context(), &sig)
	if err != nil {
		Metrics.EvaluationFailures.WithLabelValues(failureKind(err)).Inc()
		return writeError(c, err)
	}
	Metrics.Evaluations.WithLabelValues(string(res.Grade)).Inc()
	return c.JSON(res)
}

// EvaluateVideo handles GET /api/videos/:videoId/evaluation
func (h *EvaluationHandler) EvaluateVideo(c fiber.Ctx) error {
	videoID, errMsg := middleware.ValidateVideoID(c.Params("videoId"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_INPUT", errMsg)
	}

	res, err := h.svc.EvaluateVideo(c.Context(), videoID)
	if err != nil {
		Metrics.EvaluationFailures.WithLabelValues(failureKind(err)).Inc()
		return writeError(c, err)
	}
	Metrics.Evaluations.WithLabelValues(string(res.Grade)).Inc()
	return c.JSON(res)
}

// Search handles GET /api/search?q=&max=
func (h *EvaluationHandler) Search(c fiber.Ctx) error {
	q, errMsg := middleware.ValidateQuery(c.Query("q"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_INPUT", errMsg)
	}
	maxResults := h.maxResults
	if raw := c.Query("max"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 1 || n > maxSearchResults {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_INPUT", "max must be between 1 and 50")
		}
		maxResults = n
	}

	items, err := h.svc.Search(c.Context(), q, maxResults)
	if err != nil {
		return writeError(c, err)
	}
	for _, item := range items {
		if item.Result != nil {
			Metrics.Evaluations.WithLabelValues(string(item.Result.Grade)).Inc()
		} else if item.Error != nil {
			Metrics.EvaluationFailures.WithLabelValues(item.Error.Code).Inc()
		}
	}
	return c.JSON(fiber.Map{
		"query": q,
		"items": items,
	})
}
