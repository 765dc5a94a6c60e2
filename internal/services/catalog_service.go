package services

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"needleshop/internal/models"
	"needleshop/internal/repositories"
)

// SortOrder selects the comparator applied to a filtered catalog view.
type SortOrder string

const (
	SortLatest       SortOrder = "latest"
	SortOldest       SortOrder = "oldest"
	SortPriceLowHigh SortOrder = "price-low-high"
	SortPriceHighLow SortOrder = "price-high-low"
	SortMostSold     SortOrder = "most-sold"
)

// FilterParams are the four independent predicates plus the sort key used to
// derive a catalog view. All active predicates must hold for an item to
// appear in the result.
type FilterParams struct {
	Query    string
	MinPrice float64
	MaxPrice float64
	Category string
	Sort     SortOrder
}

// DefaultFilterParams covers the full price range and sorts newest first.
func DefaultFilterParams() FilterParams {
	return FilterParams{
		MinPrice: 0,
		MaxPrice: math.MaxFloat64,
		Sort:     SortLatest,
	}
}

// FilterItems derives a filtered, sorted view of items. The view is always
// recomputed from scratch; the catalog is small enough that nothing
// incremental is worth the bookkeeping. The sort is stable, so equal-key
// items keep their prior relative order.
func FilterItems(items []models.Item, p FilterParams) []models.Item {
	query := strings.ToLower(p.Query)

	result := make([]models.Item, 0, len(items))
	for _, item := range items {
		if p.Category != "" && !strings.EqualFold(item.Category, p.Category) {
			continue
		}
		if query != "" && !matchesQuery(item, query) {
			continue
		}
		if item.Price < p.MinPrice || item.Price > p.MaxPrice {
			continue
		}
		result = append(result, item)
	}

	switch p.Sort {
	case SortLatest:
		sort.SliceStable(result, func(i, j int) bool {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		})
	case SortOldest:
		sort.SliceStable(result, func(i, j int) bool {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		})
	case SortPriceLowHigh:
		sort.SliceStable(result, func(i, j int) bool {
			return result[i].Price < result[j].Price
		})
	case SortPriceHighLow:
		sort.SliceStable(result, func(i, j int) bool {
			return result[i].Price > result[j].Price
		})
	case SortMostSold:
		sort.SliceStable(result, func(i, j int) bool {
			return result[i].Sold > result[j].Sold
		})
	}

	return result
}

// matchesQuery reports whether the lowercased query is a substring of the
// item's name, category, or subcategory.
func matchesQuery(item models.Item, query string) bool {
	return strings.Contains(strings.ToLower(item.Name), query) ||
		strings.Contains(strings.ToLower(item.Category), query) ||
		(item.Subcategory != "" && strings.Contains(strings.ToLower(item.Subcategory), query))
}

// CatalogService handles business logic for browsing the catalog.
type CatalogService struct {
	itemRepo repositories.ItemRepository
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(itemRepo repositories.ItemRepository) *CatalogService {
	return &CatalogService{
		itemRepo: itemRepo,
	}
}

// Browse fetches the full catalog and applies the filter. A fetch failure is
// returned as an error so callers can show it as such; it never comes back
// as an empty view.
func (s *CatalogService) Browse(p FilterParams) ([]models.Item, error) {
	items, err := s.itemRepo.GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	return FilterItems(items, p), nil
}

// GetItem retrieves a single item by its ID.
func (s *CatalogService) GetItem(id string) (*models.Item, error) {
	return s.itemRepo.GetByID(id)
}

// GetSimilar returns up to four other items from the same category.
func (s *CatalogService) GetSimilar(id string) ([]models.Item, error) {
	item, err := s.itemRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	return s.itemRepo.GetSimilar(item.Category, item.ID, 4)
}

// AddItem inserts a new catalog item. Only the admin upload flow calls this.
func (s *CatalogService) AddItem(item *models.Item) error {
	return s.itemRepo.Create(item)
}
