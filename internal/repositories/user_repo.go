package repositories

import (
	"needleshop/internal/models"
)

// UserRepository defines the interface for user data access. Cart and order
// writes replace the whole column for that user; there is no optimistic
// concurrency check, so SetCart/SetOrders are the single seam where a
// versioned write could later be substituted without touching callers.
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByPhone(phone string) (*models.User, error)
	GetByVerificationToken(token string) (*models.User, error)
	SetVerified(id string) error
	GetCart(userID string) (models.CartEntries, error)
	SetCart(userID string, cart models.CartEntries) error
	GetOrders(userID string) (models.OrderList, error)
	SetOrders(userID string, orders models.OrderList) error
}
