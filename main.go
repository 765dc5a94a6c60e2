package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/google/uuid"
	"github.com/spf13/viper"
	"github.com/streadway/amqp"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"needleshop/internal/handlers"
	"needleshop/internal/middleware"
	"needleshop/internal/models"
	"needleshop/internal/repositories"
	"needleshop/internal/services"
	"needleshop/internal/session"
	"needleshop/internal/storage"
	"needleshop/pkg/rabbitmq"
)

func main() {
	// --- Configuration ---
	viper.SetDefault("APP_PORT", ":8080")
	viper.SetDefault("DB_DRIVER", "sqlite")
	viper.SetDefault("DB_DSN", "needleshop.db")
	viper.SetDefault("JWT_SECRET", "change-me")
	viper.SetDefault("RABBITMQ_URL", "")
	viper.SetDefault("REDIS_ADDR", "")
	viper.SetDefault("UPLOAD_DIR", "uploads")
	viper.SetDefault("UPLOAD_BASE_URL", "/uploads")
	viper.SetDefault("FREE_SHIPPING_THRESHOLD", 2000.0)
	viper.SetDefault("SHIPPING_FEE", 99.0)
	viper.SetDefault("VERIFY_MAX_ATTEMPTS", 10)
	viper.SetDefault("VERIFY_INTERVAL", "5s")
	viper.AutomaticEnv()

	// --- Database ---
	var dialector gorm.Dialector
	switch driver := viper.GetString("DB_DRIVER"); driver {
	case "postgres":
		dialector = postgres.Open(viper.GetString("DB_DSN"))
	case "sqlite":
		dialector = sqlite.Open(viper.GetString("DB_DSN"))
	default:
		log.Fatalf("Unknown DB_DRIVER %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := db.AutoMigrate(&models.Item{}, &models.User{}); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// --- Session store ---
	var sessions session.Store
	if redisAddr := viper.GetString("REDIS_ADDR"); redisAddr != "" {
		redisStore, err := session.NewRedisStore(redisAddr, 24*time.Hour)
		if err != nil {
			log.Fatalf("Failed to initialize Redis session store: %v", err)
		}
		sessions = redisStore
	} else {
		sessions = session.NewMemoryStore()
	}

	// --- RabbitMQ (optional) ---
	var mqClient *rabbitmq.Client
	if mqURL := viper.GetString("RABBITMQ_URL"); mqURL != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: mqURL})
		if err != nil {
			log.Printf("RabbitMQ unavailable, order events disabled: %v", err)
			mqClient = nil
		} else {
			defer mqClient.Close()
		}
	}

	// --- Blob storage ---
	blobs, err := storage.NewDiskBlobStore(
		viper.GetString("UPLOAD_DIR"),
		viper.GetString("UPLOAD_BASE_URL"),
	)
	if err != nil {
		log.Fatalf("Failed to initialize blob storage: %v", err)
	}

	// --- Repositories ---
	itemRepo := repositories.NewGORMItemRepository(db)
	userRepo := repositories.NewGORMUserRepository(db)

	// --- Services ---
	catalogService := services.NewCatalogService(itemRepo)
	cartService := services.NewCartService(
		userRepo,
		itemRepo,
		viper.GetFloat64("FREE_SHIPPING_THRESHOLD"),
		viper.GetFloat64("SHIPPING_FEE"),
	)
	orderService := services.NewOrderService(userRepo, itemRepo, mqClient)
	authService := services.NewAuthService(userRepo, sessions, viper.GetString("JWT_SECRET"))

	seedAdmin(userRepo)

	// --- Handlers ---
	catalogHandler := handlers.NewCatalogHandler(catalogService)
	cartHandler := handlers.NewCartHandler(cartService)
	orderHandler := handlers.NewOrderHandler(orderService, authService)
	authHandler := handlers.NewAuthHandler(
		authService,
		viper.GetInt("VERIFY_MAX_ATTEMPTS"),
		viper.GetDuration("VERIFY_INTERVAL"),
	)
	adminHandler := handlers.NewAdminHandler(catalogService, blobs)

	// --- Fiber app ---
	app := fiber.New()
	app.Use(logger.New())
	app.Static(viper.GetString("UPLOAD_BASE_URL"), viper.GetString("UPLOAD_DIR"))

	apiV1 := app.Group("/api/v1")

	// Public routes: browsing and authentication.
	authHandler.RegisterRoutes(apiV1)
	catalogHandler.RegisterRoutes(apiV1)

	// Protected routes.
	protectedRoutes := apiV1.Group("", middleware.AuthRequired(authService))
	authHandler.RegisterProtectedRoutes(protectedRoutes)
	cartHandler.RegisterRoutes(protectedRoutes)
	orderHandler.RegisterRoutes(protectedRoutes)

	// Admin routes.
	adminHandler.RegisterRoutes(protectedRoutes.Group("", middleware.AdminRequired()))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// --- Order event consumer ---
	if mqClient != nil {
		go func() {
			log.Println("Starting order event consumer...")
			messageHandler := func(msg amqp.Delivery) error {
				log.Printf("Received order event (tag %d): %s", msg.DeliveryTag, string(msg.Body))
				return nil
			}
			if consumerErr := mqClient.ConsumeOrderEvents(messageHandler); consumerErr != nil {
				log.Printf("Failed to start order event consumer: %v", consumerErr)
			}
		}()
	}

	// --- Start HTTP server ---
	appPort := viper.GetString("APP_PORT")
	log.Printf("Starting server on %s", appPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(appPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}

	log.Println("Server gracefully stopped")
}

// seedAdmin ensures an admin account exists when ADMIN_EMAIL and
// ADMIN_PASSWORD are configured, so the upload routes are reachable on a
// fresh database.
func seedAdmin(userRepo repositories.UserRepository) {
	email := viper.GetString("ADMIN_EMAIL")
	password := viper.GetString("ADMIN_PASSWORD")
	if email == "" || password == "" {
		return
	}

	if _, err := userRepo.GetByEmail(email); err == nil {
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("Error hashing admin password: %v", err)
		return
	}

	admin := models.User{
		ID:       uuid.New().String(),
		Name:     "Administrator",
		Email:    email,
		Phone:    viper.GetString("ADMIN_PHONE"),
		Password: string(hashed),
		Role:     models.RoleAdmin,
		Verified: true,
	}
	if err := userRepo.Create(&admin); err != nil {
		log.Printf("Error seeding admin user: %v", err)
		return
	}
	log.Printf("Seeded admin user %s", email)
}
