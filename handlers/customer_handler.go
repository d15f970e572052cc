package handlers

import (
	"strconv"

	"github.com/A25-CS060-teamAsah/backend/models"
	"github.com/A25-CS060-teamAsah/backend/services"
	"github.com/A25-CS060-teamAsah/backend/shared"
	"github.com/gofiber/fiber/v2"
)

type CustomerHandler struct {
	Service     *services.CustomerService
	Cache       *services.CacheStore
	AutoPredict *services.AutoPredictService
}

func NewCustomerHandler(service *services.CustomerService, cache *services.CacheStore, autoPredict *services.AutoPredictService) *CustomerHandler {
	return &CustomerHandler{Service: service, Cache: cache, AutoPredict: autoPredict}
}

func (h *CustomerHandler) CreateCustomer(c *fiber.Ctx) error {
	var input models.CustomerInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "invalid request body",
		})
	}

	customer, err := h.Service.Create(c.Context(), &input)
	if err != nil {
		status := fiber.StatusInternalServerError
		if shared.HasCode(err, shared.CodeRowValidation) {
			status = fiber.StatusBadRequest
		}
		return c.Status(status).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}

	// Scoring happens after the response returns
	h.AutoPredict.TriggerForNewCustomer(customer.ID)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    customer,
	})
}

func (h *CustomerHandler) GetCustomers(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))

	customers, total, err := h.Service.List(c.Context(), limit, offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    customers,
		"total":   total,
	})
}

func (h *CustomerHandler) GetCustomerByID(c *fiber.Ctx) error {
	id := c.Params("id")
	customer, err := h.Service.GetByID(c.Context(), id)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}
	if customer == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "customer not found",
		})
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    customer,
	})
}

func (h *CustomerHandler) UpdateCustomer(c *fiber.Ctx) error {
	id := c.Params("id")

	var input models.CustomerInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "invalid request body",
		})
	}

	customer, err := h.Service.Update(c.Context(), id, &input)
	if err != nil {
		status := fiber.StatusInternalServerError
		if shared.HasCode(err, shared.CodeRowValidation) {
			status = fiber.StatusBadRequest
		}
		return c.Status(status).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}
	if customer == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "customer not found",
		})
	}

	// The stored score no longer matches the updated attributes
	h.Cache.InvalidatePrediction(id)
	h.AutoPredict.TriggerForNewCustomer(id)

	return c.JSON(fiber.Map{
		"success": true,
		"data":    customer,
	})
}

func (h *CustomerHandler) DeleteCustomer(c *fiber.Ctx) error {
	id := c.Params("id")

	deleted, err := h.Service.Delete(c.Context(), id)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}
	if !deleted {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "customer not found",
		})
	}

	h.Cache.InvalidatePrediction(id)

	return c.JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{"deleted": true},
	})
}

// PredictCustomer scores one customer through the cached path.
// ?refresh=true bypasses the cache.
func (h *CustomerHandler) PredictCustomer(c *fiber.Ctx) error {
	id := c.Params("id")
	forceRefresh := c.Query("refresh") == "true"

	result, err := h.AutoPredict.ScoreCustomerCached(c.Context(), id, forceRefresh)
	if err != nil {
		status := fiber.StatusInternalServerError
		switch {
		case shared.HasCode(err, shared.CodeNotFound):
			status = fiber.StatusNotFound
		case shared.HasCode(err, shared.CodeServiceUnavailable):
			status = fiber.StatusServiceUnavailable
		}
		return c.Status(status).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}

	if result.Pending {
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
			"success": true,
			"data":    result,
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    result,
	})
}
