package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/AOladipo/thriftcircle_backend/middleware"
	"github.com/AOladipo/thriftcircle_backend/models"
)

// RegisterAdminRoutes sets up the admin-only surface
func RegisterAdminRoutes(e *echo.Echo, ctrl Controllers) {
	admin := e.Group("/api/admin")
	admin.Use(middleware.JWTMiddleware())
	admin.Use(middleware.RequireUserType(models.UserTypeAdmin))

	// Payment review queue
	admin.GET("/payments/pending", ctrl.Payment.GetPending)
	admin.GET("/payments", ctrl.Payment.GetAll)
	admin.PUT("/payments/:id/decision", ctrl.Payment.Decide)

	// Payout processing
	admin.POST("/withdrawals/:userId/process", ctrl.Withdrawal.Process)
	admin.GET("/withdrawals", ctrl.Withdrawal.GetAll)

	// Member administration
	admin.GET("/users", ctrl.Admin.ListUsers)
	admin.PUT("/users/:id/verify", ctrl.Admin.VerifyUser)

	// Savings settings
	admin.GET("/config", ctrl.Admin.GetConfig)
	admin.PUT("/config", ctrl.Admin.UpdateConfig)
}
