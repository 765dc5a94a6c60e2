package handlers

import (
	"fmt"
	"io"
	"log"
	"strconv"

	"needleshop/internal/models"
	"needleshop/internal/services"
	"needleshop/internal/storage"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// AdminHandler handles the admin-only item upload flow: store the image,
// then insert the item record pointing at it.
type AdminHandler struct {
	catalogService *services.CatalogService
	blobs          storage.BlobStore
	validate       *validator.Validate
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(catalogService *services.CatalogService, blobs storage.BlobStore) *AdminHandler {
	return &AdminHandler{
		catalogService: catalogService,
		blobs:          blobs,
		validate:       validator.New(),
	}
}

// RegisterRoutes registers the admin routes. The caller is expected to mount
// these behind the auth and admin-role middleware.
func (h *AdminHandler) RegisterRoutes(router fiber.Router) {
	adminRoutes := router.Group("/admin")
	adminRoutes.Post("/items", h.HandleUploadItem)
}

// HandleUploadItem accepts a multipart form with the item fields and an
// image file. Malformed numeric fields fail validation before anything is
// stored.
func (h *AdminHandler) HandleUploadItem(c *fiber.Ctx) error {
	item := models.Item{
		Name:        c.FormValue("name"),
		Category:    c.FormValue("category"),
		Subcategory: c.FormValue("subcategory"),
		Description: c.FormValue("description"),
	}

	var err error
	if item.Price, err = parseFormFloat(c, "price"); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid item fields",
			"error":   err.Error(),
		})
	}
	if raw := c.FormValue("offer_percent"); raw != "" {
		if item.OfferPercent, err = parseFormFloat(c, "offer_percent"); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Invalid item fields",
				"error":   err.Error(),
			})
		}
	}
	if item.Stock, err = strconv.Atoi(c.FormValue("stock")); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid item fields",
			"error":   fmt.Sprintf("invalid stock %q", c.FormValue("stock")),
		})
	}

	if err := h.validate.Struct(item); err != nil {
		return validationErrorResponse(c, err)
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "An image file is required",
			"error":   err.Error(),
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Could not read image file",
			"error":   err.Error(),
		})
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Could not read image file",
			"error":   err.Error(),
		})
	}

	imageURL, err := h.blobs.Save(uuid.New().String()+"-"+fileHeader.Filename, data)
	if err != nil {
		log.Printf("Error storing item image: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not store item image",
			"error":   err.Error(),
		})
	}
	item.ImageURL = imageURL

	if err := h.catalogService.AddItem(&item); err != nil {
		log.Printf("Error inserting item: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not insert item",
			"error":   err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(item)
}

func parseFormFloat(c *fiber.Ctx, field string) (float64, error) {
	raw := c.FormValue(field)
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", field, raw)
	}
	return v, nil
}
