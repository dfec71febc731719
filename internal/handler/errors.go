package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/LuaAI777/cts-project/internal/apperr"
	"github.com/LuaAI777/cts-project/internal/middleware"
	"github.com/LuaAI777/cts-project/internal/service"
)

// statusFor maps an error kind to its HTTP status.
func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation, apperr.KindInvalidInput:
		return fiber.StatusBadRequest
	case apperr.KindNotFound:
		return fiber.StatusNotFound
	case apperr.KindRateLimited:
		return fiber.StatusTooManyRequests
	case apperr.KindStoreUnavailable:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// writeError renders err in the standard error envelope. Errors without a
// kind are logged and hidden behind INTERNAL_ERROR.
func writeError(c fiber.Ctx, err error) error {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		body := fiber.Map{
			"code":    string(ae.Kind),
			"message": ae.Detail,
		}
		if ae.Field != "" {
			body["field"] = ae.Field
		}
		return c.Status(statusFor(ae.Kind)).JSON(fiber.Map{"error": body})
	}
	if errors.Is(err, service.ErrNoProvider) {
		return middleware.ErrorResponse(c, fiber.StatusServiceUnavailable, "PROVIDER_UNAVAILABLE", err.Error())
	}

	middleware.Logger.Error().Err(err).
		Str("path", middleware.SanitizePath(c.Path())).
		Msg("unhandled error")
	return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal error")
}

func failureKind(err error) string {
	if k := apperr.KindOf(err); k != "" {
		return string(k)
	}
	return "INTERNAL_ERROR"
}
