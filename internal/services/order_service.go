package services

import (
	"fmt"
	"log"
	"time"

	"needleshop/internal/models"
	"needleshop/internal/repositories"
	"needleshop/pkg/rabbitmq"

	"github.com/google/uuid"
)

// OrderService handles business logic related to order placement.
type OrderService struct {
	userRepo repositories.UserRepository
	itemRepo repositories.ItemRepository
	mqClient *rabbitmq.Client
	now      func() time.Time
}

// NewOrderService creates a new OrderService. mqClient may be nil; order
// events are then skipped.
func NewOrderService(userRepo repositories.UserRepository, itemRepo repositories.ItemRepository, mqClient *rabbitmq.Client) *OrderService {
	return &OrderService{
		userRepo: userRepo,
		itemRepo: itemRepo,
		mqClient: mqClient,
		now:      time.Now,
	}
}

// GetOrders retrieves a user's current order history from the store.
func (s *OrderService) GetOrders(userID string) (models.OrderList, error) {
	return s.userRepo.GetOrders(userID)
}

// PlaceOrder builds an order for a single item and appends it to the user's
// order history. The append reads the current list, appends, and writes the
// whole list back with no concurrency check: two sessions placing orders for
// the same user at once can overwrite each other's append. SetOrders is the
// one seam where a versioned write would slot in.
//
// A failure at any step leaves the stored order history unmodified. No
// automatic retry is performed.
func (s *OrderService) PlaceOrder(userID, itemID string, quantity int) (*models.Order, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("quantity must be at least 1, got %d", quantity)
	}

	item, err := s.itemRepo.GetByID(itemID)
	if err != nil {
		return nil, fmt.Errorf("cannot place order: %w", err)
	}

	placedAt := s.now()
	lineTotal := item.Price * float64(quantity)
	newOrder := models.Order{
		ID: uuid.New().String(),
		Items: []models.OrderLine{
			{
				ItemID:   item.ID,
				Name:     item.Name,
				Price:    item.Price,
				Quantity: quantity,
				Total:    lineTotal,
			},
		},
		TotalAmount:  lineTotal,
		Status:       models.OrderStatusPlaced,
		PlacedAt:     placedAt,
		DispatchDate: placedAt.AddDate(0, 0, 1),
		DeliveryDate: placedAt.AddDate(0, 0, 5),
	}

	existing, err := s.userRepo.GetOrders(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get existing orders: %w", err)
	}

	updated := append(existing, newOrder)
	if err := s.userRepo.SetOrders(userID, updated); err != nil {
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	s.publishPlaced(&newOrder, userID)

	return &newOrder, nil
}

// publishPlaced emits an order.placed event. Publishing is best effort; a
// broker failure is logged and the order still stands.
func (s *OrderService) publishPlaced(order *models.Order, userID string) {
	if s.mqClient == nil {
		return
	}

	event := map[string]interface{}{
		"order_id": order.ID,
		"user_id":  userID,
		"status":   order.Status,
		"total":    order.TotalAmount,
	}
	if err := s.mqClient.PublishOrderPlaced(event); err != nil {
		log.Printf("Warning: Failed to publish order placed event for order %s: %v", order.ID, err)
	} else {
		log.Printf("Published order placed event for order %s", order.ID)
	}
}
