package repositories

import (
	"fmt"
	"sync"

	"needleshop/internal/models"

	"github.com/google/uuid"
)

// MockUserRepository is an in-memory implementation of UserRepository.
type MockUserRepository struct {
	users map[string]models.User
	mu    sync.RWMutex
}

// NewMockUserRepository creates a new instance of MockUserRepository.
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users: make(map[string]models.User),
	}
}

// Create adds a new user.
func (r *MockUserRepository) Create(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	r.users[user.ID] = *user
	return nil
}

// GetByID returns a user by their ID.
func (r *MockUserRepository) GetByID(id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	return &user, nil
}

// GetByEmail returns a user by their email.
func (r *MockUserRepository) GetByEmail(email string) (*models.User, error) {
	return r.findBy(func(u models.User) bool { return u.Email == email }, email)
}

// GetByPhone returns a user by their phone number.
func (r *MockUserRepository) GetByPhone(phone string) (*models.User, error) {
	return r.findBy(func(u models.User) bool { return u.Phone == phone }, phone)
}

// GetByVerificationToken returns a user by their pending verification token.
func (r *MockUserRepository) GetByVerificationToken(token string) (*models.User, error) {
	return r.findBy(func(u models.User) bool { return u.VerificationToken == token && token != "" }, token)
}

func (r *MockUserRepository) findBy(match func(models.User) bool, key string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if match(user) {
			u := user
			return &u, nil
		}
	}
	return nil, fmt.Errorf("user %s: %w", key, ErrNotFound)
}

// SetVerified marks a user's email address as verified and clears the token.
func (r *MockUserRepository) SetVerified(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	user.Verified = true
	user.VerificationToken = ""
	r.users[id] = user
	return nil
}

// GetCart returns the stored cart for a user.
func (r *MockUserRepository) GetCart(userID string) (models.CartEntries, error) {
	user, err := r.GetByID(userID)
	if err != nil {
		return nil, err
	}
	return user.Cart, nil
}

// SetCart replaces the stored cart for a user.
func (r *MockUserRepository) SetCart(userID string, cart models.CartEntries) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[userID]
	if !ok {
		return fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}
	user.Cart = cart
	r.users[userID] = user
	return nil
}

// GetOrders returns the stored order history for a user.
func (r *MockUserRepository) GetOrders(userID string) (models.OrderList, error) {
	user, err := r.GetByID(userID)
	if err != nil {
		return nil, err
	}
	return user.Orders, nil
}

// SetOrders replaces the stored order history for a user.
func (r *MockUserRepository) SetOrders(userID string, orders models.OrderList) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[userID]
	if !ok {
		return fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}
	user.Orders = orders
	r.users[userID] = user
	return nil
}
