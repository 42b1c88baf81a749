package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/labstock-api/pkg/logger"
)

// AccessLog registra método, ruta, estado y latencia de cada petición.
func AccessLog(log *logger.Logger) fiber.Handler {
	log = log.Component("http")
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		ev := log.Info()
		if status >= fiber.StatusInternalServerError {
			cause := err
			if logged, ok := c.Locals(localError).(error); ok {
				cause = logged
			}
			ev = log.Error().Err(cause)
		}
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("employee_id", GetEmployeeID(c)).
			Msg("request")
		return err
	}
}
