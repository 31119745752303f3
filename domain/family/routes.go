package family

import (
	"github.com/labstack/echo/v4"

	"github.com/kindredhq/kindred/pkg/auth"
)

// RegisterRoutes registers family routes
func RegisterRoutes(e *echo.Echo, h *Handler, authMiddleware *auth.Middleware) {
	g := e.Group("/api/family", authMiddleware.RequireAuth())

	g.POST("", h.Create)
	g.POST("/join", h.Join)
	g.GET("/search", h.Search)
	g.GET("/query", h.Query)
	g.GET("/validate-family-type", h.ValidateFamilyType)
	g.GET("/validate-relationship", h.ValidateRelationship)
	g.GET("/:id", h.Get)
	g.PATCH("/:id", h.Update)
	g.POST("/:id/cover-upload", h.CoverUpload)
}
