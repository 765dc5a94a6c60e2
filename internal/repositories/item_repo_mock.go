package repositories

import (
	"fmt"
	"sync"

	"needleshop/internal/models"

	"github.com/google/uuid"
)

// MockItemRepository is an in-memory implementation of ItemRepository.
type MockItemRepository struct {
	items map[string]models.Item
	order []string // insertion order, so GetAll is deterministic
	mu    sync.RWMutex
}

// NewMockItemRepository creates a new instance of MockItemRepository.
func NewMockItemRepository() *MockItemRepository {
	return &MockItemRepository{
		items: make(map[string]models.Item),
	}
}

// GetAll returns all items in insertion order.
func (r *MockItemRepository) GetAll() ([]models.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	itemList := make([]models.Item, 0, len(r.items))
	for _, id := range r.order {
		itemList = append(itemList, r.items[id])
	}
	return itemList, nil
}

// GetByID returns an item by its ID.
func (r *MockItemRepository) GetByID(id string) (*models.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	if !ok {
		return nil, fmt.Errorf("item %s: %w", id, ErrNotFound)
	}
	return &item, nil
}

// GetSimilar returns up to limit items sharing a category, excluding one item.
func (r *MockItemRepository) GetSimilar(category, excludeID string, limit int) ([]models.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var similar []models.Item
	for _, id := range r.order {
		item := r.items[id]
		if item.ID == excludeID || item.Category != category {
			continue
		}
		similar = append(similar, item)
		if len(similar) == limit {
			break
		}
	}
	return similar, nil
}

// Create adds a new item.
func (r *MockItemRepository) Create(item *models.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if _, ok := r.items[item.ID]; !ok {
		r.order = append(r.order, item.ID)
	}
	r.items[item.ID] = *item
	return nil
}

// Delete removes an item by its ID. It is not part of ItemRepository; tests
// use it to simulate an item vanishing underneath a stored cart.
func (r *MockItemRepository) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.items, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}
