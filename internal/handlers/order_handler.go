package handlers

import (
	"errors"
	"log"

	"needleshop/internal/repositories"
	"needleshop/internal/services"

	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for order placement and history.
type OrderHandler struct {
	orderService *services.OrderService
	authService  *services.AuthService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orderService *services.OrderService, authService *services.AuthService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		authService:  authService,
	}
}

// RegisterRoutes registers the order routes with the Fiber app. All of them
// require authentication.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Get("/", h.HandleGetOrders)
	orderRoutes.Post("/", h.HandlePlaceOrder)
}

// HandleGetOrders serves the order history from the session snapshot taken
// at login. Orders placed since then show up after the next login, the same
// way the account page has always behaved.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	token, _ := c.Locals("token").(string)
	sess, err := h.authService.Session(token)
	if err != nil {
		log.Printf("Error loading session: %v", err)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Session expired, please log in again",
		})
	}
	return c.JSON(sess.Orders)
}

// PlaceOrderRequest represents the body for placing an order.
type PlaceOrderRequest struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

// HandlePlaceOrder places an order for a single item. On success the created
// order, including its generated id and dispatch/delivery dates, is
// returned; on failure the user's history is untouched and the error is
// retryable.
func (h *OrderHandler) HandlePlaceOrder(c *fiber.Ctx) error {
	var req PlaceOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if req.ItemID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "item_id is required",
		})
	}

	userID, _ := c.Locals("user_id").(string)
	order, err := h.orderService.PlaceOrder(userID, req.ItemID, req.Quantity)
	if err != nil {
		log.Printf("Error placing order for user %s: %v", userID, err)
		if errors.Is(err, repositories.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Item not found",
				"error":   err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not place order",
			"error":   err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(order)
}
