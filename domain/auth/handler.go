package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kindredhq/kindred/pkg/apperror"
	pkgauth "github.com/kindredhq/kindred/pkg/auth"
	"github.com/kindredhq/kindred/pkg/respond"
)

// Handler handles HTTP requests for authentication
type Handler struct {
	svc *Service
}

// NewHandler creates a new auth handler
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Login authenticates a user and returns an access token
func (h *Handler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	result, err := h.svc.Login(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return respond.JSON(c, http.StatusOK, "login successful", result)
}

// ForgotPassword starts the OTP reset flow
func (h *Handler) ForgotPassword(c echo.Context) error {
	var req ForgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	if err := h.svc.ForgotPassword(c.Request().Context(), req); err != nil {
		return err
	}
	return respond.JSON(c, http.StatusOK, "if the email exists, a reset OTP has been sent", nil)
}

// ResetPassword completes the OTP reset flow
func (h *Handler) ResetPassword(c echo.Context) error {
	var req ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	if err := h.svc.ResetPassword(c.Request().Context(), req); err != nil {
		return err
	}
	return respond.JSON(c, http.StatusOK, "password reset successfully", nil)
}

// Me returns the authenticated user's record
func (h *Handler) Me(c echo.Context) error {
	authed := pkgauth.GetUser(c)
	if authed == nil {
		return apperror.ErrUnauthorized
	}

	user, err := h.svc.Me(c.Request().Context(), authed.ID)
	if err != nil {
		return err
	}
	return respond.JSON(c, http.StatusOK, "user fetched successfully", user)
}
