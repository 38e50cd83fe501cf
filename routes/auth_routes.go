package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/AOladipo/thriftcircle_backend/controllers"
	"github.com/AOladipo/thriftcircle_backend/middleware"
)

// RegisterAuthRoutes sets up the public and token-protected auth routes
func RegisterAuthRoutes(e *echo.Echo, authController *controllers.AuthController) {
	e.POST("/api/auth/register", authController.Register)
	e.POST("/api/auth/login", authController.Login)

	r := e.Group("/api/auth")
	r.Use(middleware.JWTMiddleware())
	r.POST("/logout", authController.Logout)
	r.GET("/me", authController.Me)
}
