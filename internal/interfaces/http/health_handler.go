package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Pinger verifica la conectividad con el almacén (pgxpool o sqlx).
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapta una función a Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// HealthHandler estado del servicio.
type HealthHandler struct {
	db Pinger
}

// NewHealthHandler construye el handler. db puede ser nil.
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

// Health godoc
// @Summary      Estado del servicio
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "db": "unreachable"})
		}
	}
	return c.JSON(fiber.Map{"status": "ok"})
}
