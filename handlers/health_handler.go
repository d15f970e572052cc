package handlers

import (
	"context"
	"time"

	"github.com/A25-CS060-teamAsah/backend/database"
	"github.com/A25-CS060-teamAsah/backend/services"
	"github.com/gofiber/fiber/v2"
)

type HealthHandler struct {
	Gateway *services.ScoringGateway
}

func NewHealthHandler(gateway *services.ScoringGateway) *HealthHandler {
	return &HealthHandler{Gateway: gateway}
}

// Health reports overall service health. The ML service being down
// degrades the report but does not fail it; the API itself still
// serves reads and uploads.
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "ok"
	if err := database.HealthCheck(ctx); err != nil {
		dbStatus = "error: " + err.Error()
	}

	mlStatus := "ok"
	if healthy, reason := h.Gateway.HealthCheck(ctx); !healthy {
		mlStatus = "degraded: " + reason
	}

	status := "ok"
	httpStatus := fiber.StatusOK
	if dbStatus != "ok" {
		status = "error"
		httpStatus = fiber.StatusServiceUnavailable
	} else if mlStatus != "ok" {
		status = "degraded"
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":     status,
		"database":   dbStatus,
		"ml_service": mlStatus,
		"timestamp":  time.Now().UTC(),
	})
}
