package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/labstock-api/internal/application/dto"
	"github.com/jhoicas/labstock-api/internal/domain"
)

const localError = "error"

// writeError traduce errores de dominio al cuerpo y estado HTTP.
// Los rechazos de lote incluyen el detalle por fila.
func writeError(c *fiber.Ctx, err error) error {
	status, code := fiber.StatusInternalServerError, "INTERNAL"
	var integrity *domain.IntegrityError
	switch {
	case errors.As(err, &integrity):
		status, code = fiber.StatusInternalServerError, "ITEM_NOT_FOUND"
	case errors.Is(err, domain.ErrValidation):
		status, code = fiber.StatusUnprocessableEntity, "VALIDATION"
	case errors.Is(err, domain.ErrDuplicateItemInBatch):
		status, code = fiber.StatusUnprocessableEntity, "DUPLICATE_ITEM_IN_BATCH"
	case errors.Is(err, domain.ErrInsufficientStock):
		status, code = fiber.StatusConflict, "INSUFFICIENT_STOCK"
	case errors.Is(err, domain.ErrItemNotFound):
		status, code = fiber.StatusNotFound, "ITEM_NOT_FOUND"
	case errors.Is(err, domain.ErrConcurrencyConflict):
		c.Set(fiber.HeaderRetryAfter, "1")
		status, code = fiber.StatusServiceUnavailable, "CONCURRENCY_CONFLICT"
	case errors.Is(err, domain.ErrInvalidInput):
		status, code = fiber.StatusBadRequest, "INVALID_INPUT"
	case errors.Is(err, domain.ErrNotFound):
		status, code = fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrUnauthorized):
		status, code = fiber.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, domain.ErrForbidden):
		status, code = fiber.StatusForbidden, "FORBIDDEN"
	}
	msg := err.Error()
	if status == fiber.StatusInternalServerError {
		c.Locals(localError, err)
		if code == "INTERNAL" {
			msg = "error interno"
		}
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: msg, Rows: domain.RowErrors(err)})
}

func badRequest(c *fiber.Ctx, code, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: code, Message: msg})
}
