package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/taxonomia-api/internal/application/dto"
	"github.com/jhoicas/taxonomia-api/internal/domain"
	"github.com/jhoicas/taxonomia-api/pkg/logger"
)

var errorStatuses = []struct {
	target error
	status int
	code   string
}{
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrInvalidScope, fiber.StatusUnprocessableEntity, "INVALID_SCOPE"},
	{domain.ErrCategoryMismatch, fiber.StatusUnprocessableEntity, "CATEGORY_MISMATCH"},
	{domain.ErrUnknownValue, fiber.StatusBadRequest, "UNKNOWN_VALUE"},
	{domain.ErrInvalidTransition, fiber.StatusConflict, "INVALID_TRANSITION"},
}

// writeError traduce errores de dominio a status HTTP. Lo que no es de dominio se registra
// y sale como 500 sin detalles.
func writeError(c *fiber.Ctx, log *logger.Logger, err error) error {
	for _, e := range errorStatuses {
		if errors.Is(err, e.target) {
			return c.Status(e.status).JSON(dto.ErrorResponse{Code: e.code, Message: err.Error()})
		}
	}
	log.Error().Err(err).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Str("tenant_id", GetTenantID(c)).
		Msg("error interno")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
}

func badRequest(c *fiber.Ctx, code, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: code, Message: message})
}
