package handlers

import (
	"errors"

	"github.com/A25-CS060-teamAsah/backend/jobs"
	"github.com/A25-CS060-teamAsah/backend/services"
	"github.com/gofiber/fiber/v2"
)

type AutoPredictHandler struct {
	Job     *jobs.AutoPredictJob
	Cache   *services.CacheStore
	Gateway *services.ScoringGateway
}

func NewAutoPredictHandler(job *jobs.AutoPredictJob, cache *services.CacheStore, gateway *services.ScoringGateway) *AutoPredictHandler {
	return &AutoPredictHandler{Job: job, Cache: cache, Gateway: gateway}
}

// GetStatus returns the scheduler state plus the last sweep summary
func (h *AutoPredictHandler) GetStatus(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"data":    h.Job.Status(),
	})
}

// TriggerSweep runs a sweep immediately. A sweep already in flight
// yields 409 rather than queuing a second one.
func (h *AutoPredictHandler) TriggerSweep(c *fiber.Ctx) error {
	summary, err := h.Job.TriggerManually()
	if err != nil {
		if errors.Is(err, jobs.ErrSweepInProgress) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"success": false,
				"error":   err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    summary,
	})
}

// GetCacheStats returns prediction cache effectiveness counters
func (h *AutoPredictHandler) GetCacheStats(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"data":    h.Cache.Stats(),
	})
}

// GetGatewayMetrics returns scoring gateway request metrics
func (h *AutoPredictHandler) GetGatewayMetrics(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"data":    h.Gateway.Metrics(),
	})
}
