package repositories

import (
	"needleshop/internal/models"
)

// ItemRepository defines the interface for catalog data access.
type ItemRepository interface {
	GetAll() ([]models.Item, error)
	GetByID(id string) (*models.Item, error)
	GetSimilar(category, excludeID string, limit int) ([]models.Item, error)
	Create(item *models.Item) error
}
