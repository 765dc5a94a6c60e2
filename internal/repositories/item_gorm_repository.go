package repositories

import (
	"fmt"

	"needleshop/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMItemRepository is a GORM implementation of ItemRepository.
type GORMItemRepository struct {
	db *gorm.DB
}

// NewGORMItemRepository creates a new instance of GORMItemRepository.
func NewGORMItemRepository(db *gorm.DB) *GORMItemRepository {
	return &GORMItemRepository{
		db: db,
	}
}

// GetAll retrieves all catalog items from the database.
func (r *GORMItemRepository) GetAll() ([]models.Item, error) {
	var items []models.Item
	if err := r.db.Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to get all items: %w", err)
	}
	return items, nil
}

// GetByID retrieves a single item by its ID from the database.
func (r *GORMItemRepository) GetByID(id string) (*models.Item, error) {
	var item models.Item
	if err := r.db.First(&item, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("item %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get item by ID %s: %w", id, err)
	}
	return &item, nil
}

// GetSimilar retrieves up to limit items sharing a category, excluding one item.
func (r *GORMItemRepository) GetSimilar(category, excludeID string, limit int) ([]models.Item, error) {
	var items []models.Item
	err := r.db.Where("category = ? AND id <> ?", category, excludeID).
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get similar items for category %s: %w", category, err)
	}
	return items, nil
}

// Create inserts a new item into the database.
func (r *GORMItemRepository) Create(item *models.Item) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if err := r.db.Create(item).Error; err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}
	return nil
}
