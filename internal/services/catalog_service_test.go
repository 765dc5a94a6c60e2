package services_test

import (
	"fmt"
	"testing"
	"time"

	"needleshop/internal/models"
	"needleshop/internal/repositories"
	"needleshop/internal/services"

	"github.com/stretchr/testify/assert"
)

func day(n int) time.Time {
	return time.Date(2025, 1, n, 0, 0, 0, 0, time.UTC)
}

func sampleItems() []models.Item {
	return []models.Item{
		{ID: "1", Name: "Kanchipuram Saree", Category: "Sarees", Subcategory: "Silk Saree", Price: 1000, OfferPercent: 10, Sold: 5, CreatedAt: day(1)},
		{ID: "2", Name: "Cotton Saree", Category: "Sarees", Subcategory: "Cotton Saree", Price: 500, Sold: 20, CreatedAt: day(2)},
		{ID: "3", Name: "Bridal Lehenga", Category: "Lehengas", Price: 8000, Sold: 2, CreatedAt: day(3)},
		{ID: "4", Name: "Designer Blouse", Category: "Blouses", Subcategory: "Boat Neck Blouse", Price: 500, Sold: 12, CreatedAt: day(4)},
	}
}

func ids(items []models.Item) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.ID)
	}
	return out
}

func TestFilterItems_TextQuery(t *testing.T) {
	items := sampleItems()

	// Matches against name, category, or subcategory, case-insensitively.
	result := services.FilterItems(items, services.FilterParams{Query: "saree", MaxPrice: 1e12})
	assert.ElementsMatch(t, []string{"1", "2"}, ids(result))

	result = services.FilterItems(items, services.FilterParams{Query: "BOAT NECK", MaxPrice: 1e12})
	assert.Equal(t, []string{"4"}, ids(result))

	// An item without a subcategory still matches through the other fields.
	result = services.FilterItems(items, services.FilterParams{Query: "lehenga", MaxPrice: 1e12})
	assert.Equal(t, []string{"3"}, ids(result))

	result = services.FilterItems(items, services.FilterParams{Query: "no such thing", MaxPrice: 1e12})
	assert.Empty(t, result)
	assert.NotNil(t, result, "empty view must still be a valid list")
}

func TestFilterItems_PriceRange(t *testing.T) {
	items := []models.Item{
		{ID: "1", Price: 1000, OfferPercent: 10},
		{ID: "2", Price: 500, OfferPercent: 0},
	}

	result := services.FilterItems(items, services.FilterParams{MinPrice: 0, MaxPrice: 600})
	assert.Equal(t, []string{"2"}, ids(result))

	// The interval is inclusive on both ends.
	result = services.FilterItems(items, services.FilterParams{MinPrice: 500, MaxPrice: 1000})
	assert.ElementsMatch(t, []string{"1", "2"}, ids(result))

	// Effective price is derived from the raw price and the offer.
	assert.InDelta(t, 900, items[0].EffectivePrice(), 1e-9)
	assert.InDelta(t, 500, items[1].EffectivePrice(), 1e-9)
}

func TestFilterItems_Category(t *testing.T) {
	items := sampleItems()

	result := services.FilterItems(items, services.FilterParams{Category: "sarees", MaxPrice: 1e12})
	assert.ElementsMatch(t, []string{"1", "2"}, ids(result))

	// Predicates combine with AND.
	result = services.FilterItems(items, services.FilterParams{Category: "Sarees", Query: "cotton", MaxPrice: 1e12})
	assert.Equal(t, []string{"2"}, ids(result))

	result = services.FilterItems(items, services.FilterParams{Category: "Sarees", MinPrice: 600, MaxPrice: 1e12})
	assert.Equal(t, []string{"1"}, ids(result))
}

func TestFilterItems_Sorting(t *testing.T) {
	items := sampleItems()
	params := services.DefaultFilterParams()

	params.Sort = services.SortLatest
	assert.Equal(t, []string{"4", "3", "2", "1"}, ids(services.FilterItems(items, params)))

	params.Sort = services.SortOldest
	assert.Equal(t, []string{"1", "2", "3", "4"}, ids(services.FilterItems(items, params)))

	params.Sort = services.SortPriceLowHigh
	assert.Equal(t, []string{"2", "4", "1", "3"}, ids(services.FilterItems(items, params)))

	params.Sort = services.SortPriceHighLow
	assert.Equal(t, []string{"3", "1", "4", "2"}, ids(services.FilterItems(items, params)))

	params.Sort = services.SortMostSold
	assert.Equal(t, []string{"2", "4", "1", "3"}, ids(services.FilterItems(items, params)))
}

func TestFilterItems_StableSort(t *testing.T) {
	// Items 2 and 4 share a price; their input order must survive sorting,
	// across repeated derivations.
	items := sampleItems()
	params := services.DefaultFilterParams()
	params.Sort = services.SortPriceLowHigh

	for i := 0; i < 5; i++ {
		result := services.FilterItems(items, params)
		assert.Equal(t, []string{"2", "4", "1", "3"}, ids(result))
	}
}

func TestFilterItems_MissingSoldCountsAsZero(t *testing.T) {
	items := []models.Item{
		{ID: "a", Sold: 0},
		{ID: "b", Sold: 3},
	}
	params := services.DefaultFilterParams()
	params.Sort = services.SortMostSold
	assert.Equal(t, []string{"b", "a"}, ids(services.FilterItems(items, params)))
}

func TestFilterItems_DoesNotMutateInput(t *testing.T) {
	items := sampleItems()
	params := services.DefaultFilterParams()
	params.Sort = services.SortPriceHighLow
	services.FilterItems(items, params)
	assert.Equal(t, []string{"1", "2", "3", "4"}, ids(items))
}

func TestCatalogService_Browse(t *testing.T) {
	itemRepo := repositories.NewMockItemRepository()
	for _, item := range sampleItems() {
		it := item
		assert.NoError(t, itemRepo.Create(&it))
	}
	service := services.NewCatalogService(itemRepo)

	params := services.DefaultFilterParams()
	params.Category = "Sarees"
	items, err := service.Browse(params)
	assert.NoError(t, err)
	assert.Len(t, items, 2)
}

// failingItemRepo simulates the backend being unreachable.
type failingItemRepo struct{}

func (failingItemRepo) GetAll() ([]models.Item, error) {
	return nil, fmt.Errorf("backend unreachable")
}
func (failingItemRepo) GetByID(string) (*models.Item, error) {
	return nil, fmt.Errorf("backend unreachable")
}
func (failingItemRepo) GetSimilar(string, string, int) ([]models.Item, error) {
	return nil, fmt.Errorf("backend unreachable")
}
func (failingItemRepo) Create(*models.Item) error {
	return fmt.Errorf("backend unreachable")
}

func TestCatalogService_BrowseFetchFailure(t *testing.T) {
	service := services.NewCatalogService(failingItemRepo{})

	items, err := service.Browse(services.DefaultFilterParams())
	assert.Error(t, err, "a failed fetch must surface as an error, not an empty view")
	assert.Nil(t, items)
}

func TestCatalogService_GetSimilar(t *testing.T) {
	itemRepo := repositories.NewMockItemRepository()
	for _, item := range sampleItems() {
		it := item
		assert.NoError(t, itemRepo.Create(&it))
	}
	service := services.NewCatalogService(itemRepo)

	similar, err := service.GetSimilar("1")
	assert.NoError(t, err)
	assert.Equal(t, []string{"2"}, ids(similar), "same category, excluding the item itself")
}
