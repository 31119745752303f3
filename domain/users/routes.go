package users

import (
	"github.com/labstack/echo/v4"

	"github.com/kindredhq/kindred/pkg/auth"
)

// RegisterRoutes registers user routes
func RegisterRoutes(e *echo.Echo, h *Handler, authMiddleware *auth.Middleware) {
	g := e.Group("/api/user")

	// Public endpoints
	g.POST("/signup", h.Signup)
	g.GET("/validate-username", h.ValidateUserName)

	// Authenticated endpoints
	authed := g.Group("", authMiddleware.RequireAuth())
	authed.GET("/me", h.Me)
	authed.GET("/search", h.Search)
	authed.GET("/:id", h.Get)
	authed.PATCH("", h.Update)
	authed.POST("/photo-upload", h.PhotoUpload)
}
