package handler

import (
	"go-storefront/internal/model"
	"go-storefront/internal/service"

	"github.com/gofiber/fiber/v2"
)

type OrderHandler struct {
	service service.OrderService
}

func NewOrderHandler(s service.OrderService) *OrderHandler {
	return &OrderHandler{service: s}
}

// GET /api/v1/orders
func (h *OrderHandler) GetOrders(c *fiber.Ctx) error {
	orders, err := h.service.ListAll()
	if err != nil {
		return fail(c, err)
	}

	out := make([]model.OrderResponse, len(orders))
	for i := range orders {
		out[i] = orders[i].ToResponse()
	}
	return c.JSON(out)
}

// GET /api/v1/orders/:id
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid order ID"})
	}

	order, err := h.service.GetByID(id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(order.ToResponse())
}

// GET /api/v1/orders/:id/items
func (h *OrderHandler) GetOrderItems(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid order ID"})
	}

	items, err := h.service.GetOrderItems(id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(items)
}

// GET /api/v1/pickup-points
func (h *OrderHandler) GetPickupPoints(c *fiber.Ctx) error {
	points, err := h.service.ListPickupPoints()
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(points)
}

// POST /api/v1/orders
func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	var req service.CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	order, err := h.service.Create(&req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Order created", "data": order.ToResponse()})
}

// PUT /api/v1/orders/:id
func (h *OrderHandler) UpdateOrder(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid order ID"})
	}

	var req service.UpdateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	order, err := h.service.Update(id, &req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Order updated", "data": order.ToResponse()})
}

// DELETE /api/v1/orders/:id
func (h *OrderHandler) DeleteOrder(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid order ID"})
	}

	if err := h.service.Delete(id); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Order deleted"})
}

// ReplaceItemsRequest is the complete new item set of an order
type ReplaceItemsRequest struct {
	Items []service.OrderItemInput `json:"items"`
}

// PUT /api/v1/orders/:id/items
func (h *OrderHandler) ReplaceOrderItems(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid order ID"})
	}

	var req ReplaceItemsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	items, err := h.service.ReplaceOrderItems(id, req.Items)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Order items replaced", "data": items})
}
