// Package auth provides JWT access tokens, argon2id password hashing and the
// echo middleware guarding authenticated routes.
package auth

import (
	"log/slog"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"

	"github.com/kindredhq/kindred/pkg/apperror"
	"github.com/kindredhq/kindred/pkg/logger"
)

// Module provides auth dependencies
var Module = fx.Module("auth",
	fx.Provide(NewTokenIssuer),
	fx.Provide(NewMiddleware),
)

// AuthUser represents an authenticated user
type AuthUser struct {
	ID       string `json:"id"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	UserName string `json:"userName,omitempty"`
}

type contextKey string

// UserContextKey is where the authenticated user is stored on the echo context
const UserContextKey contextKey = "auth_user"

// GetUser retrieves the authenticated user from the Echo context
func GetUser(c echo.Context) *AuthUser {
	if user, ok := c.Get(string(UserContextKey)).(*AuthUser); ok {
		return user
	}
	return nil
}

// Middleware handles authentication for routes
type Middleware struct {
	tokens *TokenIssuer
	log    *slog.Logger
}

// NewMiddleware creates a new auth middleware
func NewMiddleware(tokens *TokenIssuer, log *slog.Logger) *Middleware {
	return &Middleware{
		tokens: tokens,
		log:    log.With(logger.Scope("auth")),
	}
}

// RequireAuth returns middleware that rejects requests without a valid bearer token
func (m *Middleware) RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return apperror.ErrUnauthorized
			}

			tokenString, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				return apperror.ErrUnauthorized.WithMessage("Authorization header must use the Bearer scheme")
			}

			claims, err := m.tokens.Verify(tokenString)
			if err != nil {
				m.log.Debug("token rejected", logger.Error(err))
				return apperror.ErrInvalidToken
			}

			c.Set(string(UserContextKey), &AuthUser{
				ID:       claims.UserID,
				Email:    claims.Email,
				Phone:    claims.Phone,
				UserName: claims.UserName,
			})
			return next(c)
		}
	}
}
