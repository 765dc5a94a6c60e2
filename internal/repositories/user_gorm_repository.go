package repositories

import (
	"fmt"

	"needleshop/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{
		db: db,
	}
}

// Create inserts a new user into the database.
func (r *GORMUserRepository) Create(user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if err := r.db.Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by their ID from the database.
func (r *GORMUserRepository) GetByID(id string) (*models.User, error) {
	return r.getBy("id = ?", id)
}

// GetByEmail retrieves a user by their email from the database.
func (r *GORMUserRepository) GetByEmail(email string) (*models.User, error) {
	return r.getBy("email = ?", email)
}

// GetByPhone retrieves a user by their phone number from the database.
func (r *GORMUserRepository) GetByPhone(phone string) (*models.User, error) {
	return r.getBy("phone = ?", phone)
}

// GetByVerificationToken retrieves a user by their pending verification token.
func (r *GORMUserRepository) GetByVerificationToken(token string) (*models.User, error) {
	return r.getBy("verification_token = ?", token)
}

func (r *GORMUserRepository) getBy(cond string, arg string) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, cond, arg).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("user (%s) %s: %w", cond, arg, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user (%s) %s: %w", cond, arg, err)
	}
	return &user, nil
}

// SetVerified marks a user's email address as verified and clears the token.
func (r *GORMUserRepository) SetVerified(id string) error {
	res := r.db.Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"verified": true, "verification_token": ""})
	if res.Error != nil {
		return fmt.Errorf("failed to mark user %s verified: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	return nil
}

// GetCart retrieves the cart column for a user.
func (r *GORMUserRepository) GetCart(userID string) (models.CartEntries, error) {
	user, err := r.GetByID(userID)
	if err != nil {
		return nil, err
	}
	return user.Cart, nil
}

// SetCart replaces the entire cart column for a user.
func (r *GORMUserRepository) SetCart(userID string, cart models.CartEntries) error {
	user, err := r.GetByID(userID)
	if err != nil {
		return err
	}
	user.Cart = cart
	if err := r.db.Save(user).Error; err != nil {
		return fmt.Errorf("failed to update cart for user %s: %w", userID, err)
	}
	return nil
}

// GetOrders retrieves the order history column for a user.
func (r *GORMUserRepository) GetOrders(userID string) (models.OrderList, error) {
	user, err := r.GetByID(userID)
	if err != nil {
		return nil, err
	}
	return user.Orders, nil
}

// SetOrders replaces the entire order history column for a user.
func (r *GORMUserRepository) SetOrders(userID string, orders models.OrderList) error {
	user, err := r.GetByID(userID)
	if err != nil {
		return err
	}
	user.Orders = orders
	if err := r.db.Save(user).Error; err != nil {
		return fmt.Errorf("failed to update orders for user %s: %w", userID, err)
	}
	return nil
}
