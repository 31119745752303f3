package auth

import (
	"github.com/labstack/echo/v4"

	pkgauth "github.com/kindredhq/kindred/pkg/auth"
)

// RegisterRoutes registers auth routes
func RegisterRoutes(e *echo.Echo, h *Handler, authMiddleware *pkgauth.Middleware) {
	g := e.Group("/api/auth")

	g.POST("/login", h.Login)
	g.POST("/forgot-password", h.ForgotPassword)
	g.POST("/reset-password", h.ResetPassword)
	g.GET("/me", h.Me, authMiddleware.RequireAuth())
}
