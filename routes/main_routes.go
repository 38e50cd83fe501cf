package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/AOladipo/thriftcircle_backend/controllers"
	"github.com/AOladipo/thriftcircle_backend/websocket"
)

// Controllers bundles every HTTP controller for route registration
type Controllers struct {
	Auth         *controllers.AuthController
	Payment      *controllers.PaymentController
	Withdrawal   *controllers.WithdrawalController
	Dashboard    *controllers.DashboardController
	Notification *controllers.NotificationController
	Admin        *controllers.AdminController
}

// SetupRoutes configures all API routes by calling individual route registration functions
func SetupRoutes(e *echo.Echo, db *mongo.Client, hub *websocket.Hub, ctrl Controllers) {
	RegisterAuthRoutes(e, ctrl.Auth)
	RegisterUserRoutes(e, db, hub, ctrl)
	RegisterAdminRoutes(e, ctrl)
}
