package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"needleshop/internal/models"
	"needleshop/internal/repositories"
	"needleshop/internal/session"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Auth failure kinds. Handlers map these to responses; everything else from
// the auth service is a backend failure.
var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrEmailNotVerified    = errors.New("email not verified")
	ErrEmailTaken          = errors.New("email already registered")
	ErrPhoneTaken          = errors.New("phone number already registered")
	ErrVerificationTimeout = errors.New("verification timed out")
)

// AuthService handles registration, email verification, login, and the
// session lifecycle. The role carried in the token comes from the stored
// user record at login, never from anything the client sent.
type AuthService struct {
	userRepo   repositories.UserRepository
	sessions   session.Store
	jwtSecret  []byte
	tokenDurat time.Duration
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, sessions session.Store, jwtSecret string) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		sessions:   sessions,
		jwtSecret:  []byte(jwtSecret),
		tokenDurat: 24 * time.Hour,
	}
}

// Register creates an unverified user with a hashed password and returns the
// verification token the user must present before they can log in. Sending
// that token by mail is someone else's job; here it is only logged.
func (s *AuthService) Register(user *models.User) (string, error) {
	if existing, err := s.userRepo.GetByEmail(user.Email); err == nil && existing != nil {
		return "", fmt.Errorf("%w: %s", ErrEmailTaken, user.Email)
	}
	if existing, err := s.userRepo.GetByPhone(user.Phone); err == nil && existing != nil {
		return "", fmt.Errorf("%w: %s", ErrPhoneTaken, user.Phone)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = string(hashedPassword)

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.Role == "" {
		user.Role = models.RoleCustomer
	}
	user.Verified = false
	token := uuid.New().String()
	user.VerificationToken = token

	if err := s.userRepo.Create(user); err != nil {
		return "", fmt.Errorf("failed to register user: %w", err)
	}

	log.Printf("Verification token for %s: %s", user.Email, token)
	return token, nil
}

// VerifyEmail marks the account holding this verification token as verified.
func (s *AuthService) VerifyEmail(token string) error {
	user, err := s.userRepo.GetByVerificationToken(token)
	if err != nil {
		return fmt.Errorf("invalid verification token: %w", err)
	}
	return s.userRepo.SetVerified(user.ID)
}

// AwaitVerification polls the user record until it is verified, up to
// maxAttempts polls spaced by interval. It returns ErrVerificationTimeout
// when the attempts run out, replacing the old inline polling loop the
// sign-up screen used to carry.
func (s *AuthService) AwaitVerification(ctx context.Context, userID string, maxAttempts int, interval time.Duration) error {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		user, err := s.userRepo.GetByID(userID)
		if err != nil {
			return fmt.Errorf("failed to check verification status: %w", err)
		}
		if user.Verified {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
	return ErrVerificationTimeout
}

// Login authenticates a user, issues a JWT, and creates the session snapshot
// of their profile and order history. The snapshot is what protected routes
// read until logout; placing an order does not refresh it.
func (s *AuthService) Login(email, password string) (*models.User, string, error) {
	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		// Do not reveal whether the email exists.
		return nil, "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	if !user.Verified {
		return nil, "", ErrEmailNotVerified
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    user.Role,
		"exp":     now.Add(s.tokenDurat).Unix(),
		"iat":     now.Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	snapshot := *user
	snapshot.Password = ""
	if err := s.sessions.Put(tokenString, &session.Session{
		User:      snapshot,
		Orders:    user.Orders,
		CreatedAt: now,
	}); err != nil {
		return nil, "", fmt.Errorf("failed to create session: %w", err)
	}

	return &snapshot, tokenString, nil
}

// Logout destroys the session for a token.
func (s *AuthService) Logout(token string) error {
	return s.sessions.Delete(token)
}

// Session returns the identity snapshot created at login for a token.
func (s *AuthService) Session(token string) (*session.Session, error) {
	return s.sessions.Get(token)
}

// ValidateToken parses and validates a JWT, returning the claims if valid.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})

	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}
