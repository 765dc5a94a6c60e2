package services_test

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"testing"
	"time"

	"needleshop/internal/models"
	"needleshop/internal/services"
	"needleshop/internal/session"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

// MockUserRepo is a testify mock implementation of repositories.UserRepository.
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepo) GetByID(id string) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepo) GetByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepo) GetByPhone(phone string) (*models.User, error) {
	args := m.Called(phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepo) GetByVerificationToken(token string) (*models.User, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepo) SetVerified(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockUserRepo) GetCart(userID string) (models.CartEntries, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(models.CartEntries), args.Error(1)
}

func (m *MockUserRepo) SetCart(userID string, cart models.CartEntries) error {
	args := m.Called(userID, cart)
	return args.Error(0)
}

func (m *MockUserRepo) GetOrders(userID string) (models.OrderList, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(models.OrderList), args.Error(1)
}

func (m *MockUserRepo) SetOrders(userID string, orders models.OrderList) error {
	args := m.Called(userID, orders)
	return args.Error(0)
}

// TestMain suppresses logging during tests for cleaner output.
func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	code := m.Run()
	os.Exit(code)
}

const testJWTSecret = "test_jwt_secret"

func TestAuthService_Register(t *testing.T) {
	mockRepo := new(MockUserRepo)
	authService := services.NewAuthService(mockRepo, session.NewMemoryStore(), testJWTSecret)

	user := &models.User{
		Name:     "Asha",
		Email:    "asha@example.com",
		Phone:    "9876543210",
		Password: "password123",
	}

	mockRepo.On("GetByEmail", user.Email).Return(nil, fmt.Errorf("not found")).Once()
	mockRepo.On("GetByPhone", user.Phone).Return(nil, fmt.Errorf("not found")).Once()
	mockRepo.On("Create", mock.AnythingOfType("*models.User")).Return(nil).Once()

	token, err := authService.Register(user)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, token, user.VerificationToken)
	assert.False(t, user.Verified)
	assert.Equal(t, models.RoleCustomer, user.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("password123")))
	mockRepo.AssertExpectations(t)

	// Email already registered.
	mockRepo.On("GetByEmail", user.Email).Return(&models.User{ID: "1"}, nil).Once()
	_, err = authService.Register(user)
	assert.ErrorIs(t, err, services.ErrEmailTaken)
	mockRepo.AssertExpectations(t)

	// Phone already registered.
	mockRepo.On("GetByEmail", user.Email).Return(nil, fmt.Errorf("not found")).Once()
	mockRepo.On("GetByPhone", user.Phone).Return(&models.User{ID: "1"}, nil).Once()
	_, err = authService.Register(user)
	assert.ErrorIs(t, err, services.ErrPhoneTaken)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_VerifyEmail(t *testing.T) {
	mockRepo := new(MockUserRepo)
	authService := services.NewAuthService(mockRepo, session.NewMemoryStore(), testJWTSecret)

	mockRepo.On("GetByVerificationToken", "tok-1").Return(&models.User{ID: "user-1"}, nil).Once()
	mockRepo.On("SetVerified", "user-1").Return(nil).Once()
	assert.NoError(t, authService.VerifyEmail("tok-1"))
	mockRepo.AssertExpectations(t)

	mockRepo.On("GetByVerificationToken", "bogus").Return(nil, fmt.Errorf("not found")).Once()
	assert.Error(t, authService.VerifyEmail("bogus"))
	mockRepo.AssertExpectations(t)
}

func TestAuthService_AwaitVerification(t *testing.T) {
	mockRepo := new(MockUserRepo)
	authService := services.NewAuthService(mockRepo, session.NewMemoryStore(), testJWTSecret)

	// Verified on the third poll.
	mockRepo.On("GetByID", "user-1").Return(&models.User{ID: "user-1"}, nil).Twice()
	mockRepo.On("GetByID", "user-1").Return(&models.User{ID: "user-1", Verified: true}, nil).Once()
	err := authService.AwaitVerification(context.Background(), "user-1", 5, time.Millisecond)
	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)

	// Attempts exhausted.
	mockRepo.On("GetByID", "user-2").Return(&models.User{ID: "user-2"}, nil).Times(3)
	err = authService.AwaitVerification(context.Background(), "user-2", 3, time.Millisecond)
	assert.ErrorIs(t, err, services.ErrVerificationTimeout)
	mockRepo.AssertExpectations(t)

	// Caller gives up.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	mockRepo.On("GetByID", "user-3").Return(&models.User{ID: "user-3"}, nil).Once()
	err = authService.AwaitVerification(ctx, "user-3", 10, time.Minute)
	assert.ErrorIs(t, err, context.Canceled)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_Login(t *testing.T) {
	mockRepo := new(MockUserRepo)
	sessions := session.NewMemoryStore()
	authService := services.NewAuthService(mockRepo, sessions, testJWTSecret)

	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	user := &models.User{
		ID:       "user-123",
		Name:     "Asha",
		Email:    "asha@example.com",
		Phone:    "9876543210",
		Password: string(hashedPassword),
		Role:     models.RoleAdmin,
		Verified: true,
		Orders:   models.OrderList{{ID: "order-1", Status: models.OrderStatusPlaced}},
	}

	// Successful login.
	mockRepo.On("GetByEmail", user.Email).Return(user, nil).Once()
	snapshot, tokenString, err := authService.Login(user.Email, "password123")
	assert.NoError(t, err)
	assert.NotEmpty(t, tokenString)
	assert.Empty(t, snapshot.Password, "the snapshot never carries the hash")

	// The token carries identity and the role as trusted claims.
	parsedToken, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(testJWTSecret), nil
	})
	assert.NoError(t, err)
	claims, ok := parsedToken.Claims.(jwt.MapClaims)
	assert.True(t, ok)
	assert.Equal(t, user.ID, claims["user_id"])
	assert.Equal(t, user.Email, claims["email"])
	assert.Equal(t, models.RoleAdmin, claims["role"])

	// A session snapshot was created for the token.
	sess, err := authService.Session(tokenString)
	assert.NoError(t, err)
	assert.Equal(t, user.ID, sess.User.ID)
	assert.Len(t, sess.Orders, 1)
	mockRepo.AssertExpectations(t)

	// Logout destroys the session.
	assert.NoError(t, authService.Logout(tokenString))
	_, err = authService.Session(tokenString)
	assert.ErrorIs(t, err, session.ErrNotFound)

	// Wrong password.
	mockRepo.On("GetByEmail", user.Email).Return(user, nil).Once()
	_, _, err = authService.Login(user.Email, "wrongpassword")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)

	// Unknown email gets the same generic failure.
	mockRepo.On("GetByEmail", "nobody@example.com").Return(nil, fmt.Errorf("not found")).Once()
	_, _, err = authService.Login("nobody@example.com", "password123")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_LoginUnverified(t *testing.T) {
	mockRepo := new(MockUserRepo)
	authService := services.NewAuthService(mockRepo, session.NewMemoryStore(), testJWTSecret)

	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	user := &models.User{
		ID:       "user-123",
		Email:    "asha@example.com",
		Password: string(hashedPassword),
		Verified: false,
	}

	mockRepo.On("GetByEmail", user.Email).Return(user, nil).Once()
	_, _, err := authService.Login(user.Email, "password123")
	assert.ErrorIs(t, err, services.ErrEmailNotVerified)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_ValidateToken(t *testing.T) {
	mockRepo := new(MockUserRepo)
	authService := services.NewAuthService(mockRepo, session.NewMemoryStore(), testJWTSecret)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "user-123",
		"role":    models.RoleCustomer,
		"exp":     jwt.TimeFunc().Add(time.Hour).Unix(),
	})
	validTokenString, _ := token.SignedString([]byte(testJWTSecret))

	claims, err := authService.ValidateToken(validTokenString)
	assert.NoError(t, err)
	assert.Equal(t, "user-123", claims["user_id"])

	_, err = authService.ValidateToken("invalid.token.string")
	assert.Error(t, err)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "user-123",
		"exp":     jwt.TimeFunc().Add(-time.Hour).Unix(),
	})
	expiredTokenString, _ := expired.SignedString([]byte(testJWTSecret))
	_, err = authService.ValidateToken(expiredTokenString)
	assert.Error(t, err)
}
