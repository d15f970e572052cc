package handlers

import (
	"strconv"

	"github.com/A25-CS060-teamAsah/backend/services"
	"github.com/gofiber/fiber/v2"
)

type PredictionHandler struct {
	Service *services.PredictionService
}

func NewPredictionHandler(service *services.PredictionService) *PredictionHandler {
	return &PredictionHandler{Service: service}
}

// GetLatestForCustomer returns the newest stored prediction for a customer
func (h *PredictionHandler) GetLatestForCustomer(c *fiber.Ctx) error {
	customerID := c.Params("id")

	prediction, err := h.Service.LatestForCustomer(c.Context(), customerID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}
	if prediction == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "no prediction for this customer",
		})
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    prediction,
	})
}

// GetStats returns aggregate prediction counts
func (h *PredictionHandler) GetStats(c *fiber.Ctx) error {
	total, err := h.Service.CountAll(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{"total_predictions": total},
	})
}

// GetHistoryForCustomer returns a customer's prediction history
func (h *PredictionHandler) GetHistoryForCustomer(c *fiber.Ctx) error {
	customerID := c.Params("id")
	limit, _ := strconv.Atoi(c.Query("limit", "20"))

	predictions, err := h.Service.ListForCustomer(c.Context(), customerID, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    predictions,
	})
}
