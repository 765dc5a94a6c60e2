package handlers

import (
	"errors"
	"log"

	"needleshop/internal/repositories"
	"needleshop/internal/services"

	"github.com/gofiber/fiber/v2"
)

// CartHandler handles HTTP requests for the authenticated user's cart.
type CartHandler struct {
	service *services.CartService
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(service *services.CartService) *CartHandler {
	return &CartHandler{
		service: service,
	}
}

// RegisterRoutes registers the cart routes with the Fiber app. All of them
// require authentication.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	cartRoutes := router.Group("/cart")
	cartRoutes.Get("/", h.HandleGetCart)
	cartRoutes.Post("/items", h.HandleAddItem)
	cartRoutes.Patch("/items/:id/increase", h.HandleIncrease)
	cartRoutes.Patch("/items/:id/decrease", h.HandleDecrease)
	cartRoutes.Delete("/items/:id", h.HandleRemove)
}

func currentUserID(c *fiber.Ctx) string {
	userID, _ := c.Locals("user_id").(string)
	return userID
}

// HandleGetCart returns the hydrated cart and its computed totals.
func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	userID := currentUserID(c)

	items, err := h.service.Hydrate(userID)
	if err != nil {
		log.Printf("Error hydrating cart for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve cart",
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"items":  items,
		"totals": h.service.Totals(items),
	})
}

// AddItemRequest represents the body for adding an item to the cart.
type AddItemRequest struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

// HandleAddItem puts an item into the cart.
func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	var req AddItemRequest
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

	userID := currentUserID(c)
	cart, err := h.service.Add(userID, req.ItemID, req.Quantity)
	if err != nil {
		return h.cartError(c, userID, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"cart": cart})
}

// HandleIncrease bumps the quantity of a cart entry by one.
func (h *CartHandler) HandleIncrease(c *fiber.Ctx) error {
	userID := currentUserID(c)
	cart, err := h.service.Increase(userID, c.Params("id"))
	if err != nil {
		return h.cartError(c, userID, err)
	}
	return c.JSON(fiber.Map{"cart": cart})
}

// HandleDecrease lowers the quantity of a cart entry by one, floored at 1.
func (h *CartHandler) HandleDecrease(c *fiber.Ctx) error {
	userID := currentUserID(c)
	cart, err := h.service.Decrease(userID, c.Params("id"))
	if err != nil {
		return h.cartError(c, userID, err)
	}
	return c.JSON(fiber.Map{"cart": cart})
}

// HandleRemove deletes a cart entry entirely.
func (h *CartHandler) HandleRemove(c *fiber.Ctx) error {
	userID := currentUserID(c)
	cart, err := h.service.Remove(userID, c.Params("id"))
	if err != nil {
		return h.cartError(c, userID, err)
	}
	return c.JSON(fiber.Map{"cart": cart})
}

func (h *CartHandler) cartError(c *fiber.Ctx, userID string, err error) error {
	log.Printf("Cart operation failed for user %s: %v", userID, err)
	switch {
	case errors.Is(err, services.ErrNotInCart):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Item is not in the cart",
			"error":   err.Error(),
		})
	case errors.Is(err, repositories.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Item not found",
			"error":   err.Error(),
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not update cart",
			"error":   err.Error(),
		})
	}
}
