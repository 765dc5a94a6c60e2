package services

import (
	"errors"
	"fmt"
	"log"

	"needleshop/internal/models"
	"needleshop/internal/repositories"
)

// ErrNotInCart reports a cart mutation against an item id with no entry.
var ErrNotInCart = errors.New("item not in cart")

// discountRate is the flat discount applied to every cart subtotal.
const discountRate = 0.10

// CartTotals are the price lines derived from a hydrated cart. They are
// recomputed from the cart on every request, never cached.
type CartTotals struct {
	Subtotal float64 `json:"subtotal"`
	Discount float64 `json:"discount"`
	Shipping float64 `json:"shipping"`
	Total    float64 `json:"total"`
}

// CartService maintains per-user carts. Every mutation writes the entire
// cart back to the store, mirroring how the cart column has always been
// updated.
type CartService struct {
	userRepo          repositories.UserRepository
	itemRepo          repositories.ItemRepository
	freeShippingAbove float64
	shippingFee       float64
}

// NewCartService creates a new CartService. Shipping is free for subtotals
// above freeShippingAbove; otherwise shippingFee applies.
func NewCartService(userRepo repositories.UserRepository, itemRepo repositories.ItemRepository, freeShippingAbove, shippingFee float64) *CartService {
	return &CartService{
		userRepo:          userRepo,
		itemRepo:          itemRepo,
		freeShippingAbove: freeShippingAbove,
		shippingFee:       shippingFee,
	}
}

// Get returns the raw (item id, quantity) pairs stored for a user.
func (s *CartService) Get(userID string) (models.CartEntries, error) {
	return s.userRepo.GetCart(userID)
}

// Add puts quantity of an item into the cart, merging with an existing entry
// for the same item id so the cart never holds duplicates.
func (s *CartService) Add(userID, itemID string, quantity int) (models.CartEntries, error) {
	if quantity < 1 {
		quantity = 1
	}
	if _, err := s.itemRepo.GetByID(itemID); err != nil {
		return nil, fmt.Errorf("cannot add to cart: %w", err)
	}

	cart, err := s.userRepo.GetCart(userID)
	if err != nil {
		return nil, err
	}

	merged := false
	for i := range cart {
		if cart[i].ItemID == itemID {
			cart[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		cart = append(cart, models.CartEntry{ItemID: itemID, Quantity: quantity})
	}

	return cart, s.persist(userID, cart)
}

// Increase bumps the quantity of an existing entry by one. There is no upper
// bound and no stock check here; that is a known gap carried over from the
// original store behavior.
func (s *CartService) Increase(userID, itemID string) (models.CartEntries, error) {
	return s.updateQuantity(userID, itemID, +1)
}

// Decrease lowers the quantity of an existing entry by one, floored at 1.
// Removing the entry entirely requires an explicit Remove.
func (s *CartService) Decrease(userID, itemID string) (models.CartEntries, error) {
	return s.updateQuantity(userID, itemID, -1)
}

func (s *CartService) updateQuantity(userID, itemID string, delta int) (models.CartEntries, error) {
	cart, err := s.userRepo.GetCart(userID)
	if err != nil {
		return nil, err
	}

	found := false
	for i := range cart {
		if cart[i].ItemID != itemID {
			continue
		}
		cart[i].Quantity += delta
		if cart[i].Quantity < 1 {
			cart[i].Quantity = 1
		}
		found = true
		break
	}
	if !found {
		return nil, fmt.Errorf("item %s: %w", itemID, ErrNotInCart)
	}

	return cart, s.persist(userID, cart)
}

// Remove deletes the entry for an item id entirely. Removing an id that is
// not in the cart is a no-op, so repeated calls are safe.
func (s *CartService) Remove(userID, itemID string) (models.CartEntries, error) {
	cart, err := s.userRepo.GetCart(userID)
	if err != nil {
		return nil, err
	}

	updated := make(models.CartEntries, 0, len(cart))
	for _, entry := range cart {
		if entry.ItemID != itemID {
			updated = append(updated, entry)
		}
	}

	return updated, s.persist(userID, updated)
}

// persist writes the whole cart back for the user. Failures are both logged
// and returned; a cart the store did not accept must not look saved.
func (s *CartService) persist(userID string, cart models.CartEntries) error {
	if err := s.userRepo.SetCart(userID, cart); err != nil {
		log.Printf("Error updating cart for user %s: %v", userID, err)
		return fmt.Errorf("failed to persist cart: %w", err)
	}
	return nil
}

// Hydrate resolves the stored (id, quantity) pairs against the catalog.
// Entries whose item no longer exists are dropped from the view rather than
// failing the whole cart.
func (s *CartService) Hydrate(userID string) ([]models.CartItem, error) {
	cart, err := s.userRepo.GetCart(userID)
	if err != nil {
		return nil, err
	}

	hydrated := make([]models.CartItem, 0, len(cart))
	for _, entry := range cart {
		item, err := s.itemRepo.GetByID(entry.ItemID)
		if errors.Is(err, repositories.ErrNotFound) {
			log.Printf("Dropping cart entry for user %s: %v", userID, err)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to hydrate cart: %w", err)
		}
		hydrated = append(hydrated, models.CartItem{Item: *item, Quantity: entry.Quantity})
	}
	return hydrated, nil
}

// Totals computes the price lines for a hydrated cart: subtotal, the flat
// 10% discount, shipping, and total = subtotal - discount + shipping.
func (s *CartService) Totals(items []models.CartItem) CartTotals {
	var subtotal float64
	for _, ci := range items {
		subtotal += ci.Item.Price * float64(ci.Quantity)
	}

	discount := discountRate * subtotal
	shipping := s.shippingFee
	if subtotal > s.freeShippingAbove {
		shipping = 0
	}

	return CartTotals{
		Subtotal: subtotal,
		Discount: discount,
		Shipping: shipping,
		Total:    subtotal - discount + shipping,
	}
}
