package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/AOladipo/thriftcircle_backend/middleware"
	"github.com/AOladipo/thriftcircle_backend/models"
	"github.com/AOladipo/thriftcircle_backend/utils"
	"github.com/AOladipo/thriftcircle_backend/websocket"
)

// RegisterUserRoutes sets up all member-facing protected routes
func RegisterUserRoutes(e *echo.Echo, db *mongo.Client, hub *websocket.Hub, ctrl Controllers) {
	r := e.Group("/api")
	r.Use(middleware.JWTMiddleware())

	r.GET("/dashboard", ctrl.Dashboard.Dashboard)

	// Payment routes
	r.POST("/payments", ctrl.Payment.Submit)
	r.GET("/payments", ctrl.Payment.GetMyPayments)

	// Withdrawal routes
	r.PUT("/withdrawals/:id/confirm", ctrl.Withdrawal.Confirm)
	r.GET("/withdrawals", ctrl.Withdrawal.GetMyWithdrawals)

	// Referral routes
	r.GET("/referrals/stats", ctrl.Dashboard.ReferralStats)
	r.GET("/referrals/qr", ctrl.Dashboard.ReferralQR)

	// Notification routes
	r.GET("/notifications", ctrl.Notification.List)
	r.PUT("/notifications/:id/read", ctrl.Notification.MarkRead)
	r.PUT("/notifications/read-all", ctrl.Notification.MarkAllRead)

	// WebSocket route. The JWT middleware also reads the token query
	// parameter, which is how browser clients authenticate the handshake.
	e.GET("/ws", func(c echo.Context) error {
		user, err := utils.GetUserFromToken(c, db)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, models.Response{
				Status:  http.StatusUnauthorized,
				Message: "Unauthorized",
			})
		}

		return websocket.HandleWebSocket(c, hub, user.ID, user.IsAdmin)
	}, middleware.JWTMiddleware())
}
