package main

import (
	"log"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/AOladipo/thriftcircle_backend/config"
	"github.com/AOladipo/thriftcircle_backend/controllers"
	"github.com/AOladipo/thriftcircle_backend/middleware"
	"github.com/AOladipo/thriftcircle_backend/repositories"
	"github.com/AOladipo/thriftcircle_backend/routes"
	"github.com/AOladipo/thriftcircle_backend/services"
	"github.com/AOladipo/thriftcircle_backend/utils"
	"github.com/AOladipo/thriftcircle_backend/websocket"
)

// CustomValidator is a custom validator for Echo
type CustomValidator struct {
	validator *validator.Validate
}

// Validate validates the request body
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	// Fail fast when the token secret is missing
	_ = middleware.GetJWTSecret()

	// Initialize Firebase
	config.InitFirebase()

	// Connect to Redis
	config.ConnectRedis()

	// Connect to database
	client := config.ConnectDB()

	// Create WebSocket hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Clean expired tokens out of the fallback logout blacklist
	go middleware.CleanupBlacklist()

	// Initialize repositories
	userRepo := repositories.NewUserRepository(client)
	transactionRepo := repositories.NewTransactionRepository(client)
	withdrawalRepo := repositories.NewWithdrawalRepository(client)
	notificationRepo := repositories.NewNotificationRepository(client)
	configRepo := repositories.NewConfigRepository(client)

	// Initialize services
	locker := services.NewUserLocker()
	notifier := services.NewNotificationService(userRepo, transactionRepo, withdrawalRepo, notificationRepo, wsHub)
	paymentService := services.NewPaymentService(userRepo, transactionRepo, configRepo, notifier, locker)
	withdrawalService := services.NewWithdrawalService(userRepo, transactionRepo, withdrawalRepo, configRepo, notifier, locker)

	// Start the payment reminder and overdue sweep schedules
	reminderService := services.NewReminderService(userRepo, configRepo, notifier, locker)
	reminderService.Start()

	// Create a new Echo instance
	e := echo.New()

	// Initialize custom validator
	e.Validator = &CustomValidator{validator: validator.New()}

	// Initialize rate limiter
	rateLimiter := middleware.NewRateLimiter()

	// Middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(middleware.GlobalCORS())
	e.Use(echoMiddleware.Secure())
	e.Use(rateLimiter.RateLimit())
	e.Use(middleware.SecurityHeaders())

	e.Match([]string{"GET", "HEAD"}, "/", func(c echo.Context) error {
		return c.JSON(200, map[string]string{
			"status":  "OK",
			"message": "ThriftCircle Backend is running",
			"version": "1.0",
		})
	})

	e.Match([]string{"GET", "HEAD"}, "/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{
			"status":   "healthy",
			"database": "connected",
		})
	})

	// Initialize controllers and register routes
	ctrl := routes.Controllers{
		Auth:         controllers.NewAuthController(userRepo, notifier),
		Payment:      controllers.NewPaymentController(paymentService),
		Withdrawal:   controllers.NewWithdrawalController(withdrawalService),
		Dashboard:    controllers.NewDashboardController(userRepo, transactionRepo, configRepo, withdrawalService),
		Notification: controllers.NewNotificationController(notificationRepo),
		Admin:        controllers.NewAdminController(userRepo, configRepo, notifier),
	}
	routes.SetupRoutes(e, client, wsHub, ctrl)

	// Ensure upload directories exist and serve them
	if err := utils.InitializeStorage(); err != nil {
		log.Printf("Warning: failed to initialize upload storage: %v", err)
	}
	e.Static("/uploads", "uploads")

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	e.Logger.Fatal(e.Start(":" + port))
}
