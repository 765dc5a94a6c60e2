package handlers

import (
	"errors"
	"fmt"
	"log"
	"strconv"

	"needleshop/internal/repositories"
	"needleshop/internal/services"

	"github.com/gofiber/fiber/v2"
)

// CatalogHandler handles HTTP requests for browsing the catalog.
type CatalogHandler struct {
	service *services.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(service *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{
		service: service,
	}
}

// RegisterRoutes registers the catalog routes with the Fiber app.
func (h *CatalogHandler) RegisterRoutes(router fiber.Router) {
	itemRoutes := router.Group("/items")
	itemRoutes.Get("/", h.HandleListItems)
	itemRoutes.Get("/:id", h.HandleGetItem)
	itemRoutes.Get("/:id/similar", h.HandleGetSimilar)
}

// parseFilterParams builds FilterParams from the query string. An
// unparseable number or unknown sort key is a validation failure and stops
// the request before any catalog fetch.
func parseFilterParams(c *fiber.Ctx) (services.FilterParams, error) {
	params := services.DefaultFilterParams()
	params.Query = c.Query("q")
	params.Category = c.Query("category")

	if raw := c.Query("min_price"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return params, fmt.Errorf("invalid min_price %q", raw)
		}
		params.MinPrice = v
	}
	if raw := c.Query("max_price"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return params, fmt.Errorf("invalid max_price %q", raw)
		}
		params.MaxPrice = v
	}

	if raw := c.Query("sort"); raw != "" {
		switch sort := services.SortOrder(raw); sort {
		case services.SortLatest, services.SortOldest, services.SortPriceLowHigh,
			services.SortPriceHighLow, services.SortMostSold:
			params.Sort = sort
		default:
			return params, fmt.Errorf("invalid sort %q", raw)
		}
	}

	return params, nil
}

// HandleListItems returns the filtered, sorted catalog view. An empty result
// is a valid 200 with an empty list; only a failed fetch is an error.
func (h *CatalogHandler) HandleListItems(c *fiber.Ctx) error {
	params, err := parseFilterParams(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid filter parameters",
			"error":   err.Error(),
		})
	}

	items, err := h.service.Browse(params)
	if err != nil {
		log.Printf("Error browsing catalog: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve items",
			"error":   err.Error(),
		})
	}
	return c.JSON(items)
}

// HandleGetItem retrieves a single item by its ID.
func (h *CatalogHandler) HandleGetItem(c *fiber.Ctx) error {
	itemID := c.Params("id")
	item, err := h.service.GetItem(itemID)
	if err != nil {
		log.Printf("Error getting item %s: %v", itemID, err)
		if errors.Is(err, repositories.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": fmt.Sprintf("Item %s not found", itemID),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve item",
			"error":   err.Error(),
		})
	}
	return c.JSON(item)
}

// HandleGetSimilar returns a few other items from the same category.
func (h *CatalogHandler) HandleGetSimilar(c *fiber.Ctx) error {
	itemID := c.Params("id")
	items, err := h.service.GetSimilar(itemID)
	if err != nil {
		log.Printf("Error getting similar items for %s: %v", itemID, err)
		if errors.Is(err, repositories.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": fmt.Sprintf("Item %s not found", itemID),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve similar items",
			"error":   err.Error(),
		})
	}
	return c.JSON(items)
}
