package handlers

import (
	"errors"
	"fmt"
	"log"
	"time"

	"needleshop/internal/models"
	"needleshop/internal/repositories"
	"needleshop/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles HTTP requests for registration, verification, login,
// and logout.
type AuthHandler struct {
	authService    *services.AuthService
	validate       *validator.Validate
	verifyAttempts int
	verifyInterval time.Duration
}

// NewAuthHandler creates a new AuthHandler. verifyAttempts and
// verifyInterval bound the verification-status wait.
func NewAuthHandler(authService *services.AuthService, verifyAttempts int, verifyInterval time.Duration) *AuthHandler {
	return &AuthHandler{
		authService:    authService,
		validate:       validator.New(),
		verifyAttempts: verifyAttempts,
		verifyInterval: verifyInterval,
	}
}

// RegisterRoutes registers the public authentication routes.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/register", h.HandleRegister)
	authRoutes.Get("/verify/:token", h.HandleVerify)
	authRoutes.Get("/verification-status", h.HandleVerificationStatus)
	authRoutes.Post("/login", h.HandleLogin)
}

// RegisterProtectedRoutes registers the auth routes that need a valid token.
func (h *AuthHandler) RegisterProtectedRoutes(router fiber.Router) {
	router.Post("/auth/logout", h.HandleLogout)
}

// RegisterRequest represents the request body for registration.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required,len=10,numeric"`
	Address  string `json:"address" validate:"omitempty,max=500"`
	Password string `json:"password" validate:"required,min=6"`
}

func validationErrorResponse(c *fiber.Ctx, err error) error {
	validationErrors := err.(validator.ValidationErrors)
	errorMessages := make(map[string]string)
	for _, e := range validationErrors {
		errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Validation failed",
		"errors":  errorMessages,
	})
}

// HandleRegister creates an unverified account. The verification token is
// delivered out of band; the response only tells the user to go check.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing register request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(req); err != nil {
		return validationErrorResponse(c, err)
	}

	user := models.User{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Address:  req.Address,
		Password: req.Password,
	}
	if _, err := h.authService.Register(&user); err != nil {
		log.Printf("Error registering user: %v", err)
		if errors.Is(err, services.ErrEmailTaken) || errors.Is(err, services.ErrPhoneTaken) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"message": "Registration failed",
				"error":   err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not register user",
			"error":   err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Account created. Check your email to verify your account.",
		"user_id": user.ID,
	})
}

// HandleVerify consumes a verification token from the email link.
func (h *AuthHandler) HandleVerify(c *fiber.Ctx) error {
	if err := h.authService.VerifyEmail(c.Params("token")); err != nil {
		log.Printf("Error verifying email: %v", err)
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Invalid or already used verification token",
		})
	}
	return c.JSON(fiber.Map{
		"message": "Email verified. You can now log in.",
	})
}

// HandleVerificationStatus waits, with a bounded number of polls, for the
// account to become verified. A timeout is reported as its own outcome so
// the caller can tell "not yet" from "broken".
func (h *AuthHandler) HandleVerificationStatus(c *fiber.Ctx) error {
	userID := c.Query("user_id")
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "user_id is required",
		})
	}

	err := h.authService.AwaitVerification(c.Context(), userID, h.verifyAttempts, h.verifyInterval)
	switch {
	case err == nil:
		return c.JSON(fiber.Map{"verified": true})
	case errors.Is(err, services.ErrVerificationTimeout):
		return c.Status(fiber.StatusRequestTimeout).JSON(fiber.Map{
			"verified": false,
			"message":  "Verification timeout. Please try again.",
		})
	case errors.Is(err, repositories.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Unknown user",
		})
	default:
		log.Printf("Error checking verification status: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to check verification status",
			"error":   err.Error(),
		})
	}
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// HandleLogin authenticates a user, issues a JWT, and creates the session
// snapshot of profile and order history.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing login request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(req); err != nil {
		return validationErrorResponse(c, err)
	}

	user, token, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		log.Printf("Error during login for %s: %v", req.Email, err)
		if errors.Is(err, services.ErrEmailNotVerified) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "Email not verified",
				"error":   err.Error(),
			})
		}
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Authentication failed",
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"token":   token,
		"user":    user,
	})
}

// HandleLogout destroys the current session.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	token, _ := c.Locals("token").(string)
	if err := h.authService.Logout(token); err != nil {
		log.Printf("Error during logout: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not log out",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"message": "Logged out",
	})
}
