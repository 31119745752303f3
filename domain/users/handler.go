package users

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/kindredhq/kindred/internal/config"
	"github.com/kindredhq/kindred/internal/storage"
	"github.com/kindredhq/kindred/pkg/apperror"
	"github.com/kindredhq/kindred/pkg/auth"
	"github.com/kindredhq/kindred/pkg/respond"
)

// Handler handles HTTP requests for users
type Handler struct {
	svc     *Service
	storage *storage.Service

	// signup throttle, per remote address
	rate     rate.Limit
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewHandler creates a new users handler
func NewHandler(svc *Service, storage *storage.Service, cfg *config.Config) *Handler {
	perMinute := cfg.Auth.SignupRatePerMinute
	if perMinute <= 0 {
		perMinute = 5
	}
	return &Handler{
		svc:      svc,
		storage:  storage,
		rate:     rate.Limit(float64(perMinute) / 60.0),
		limiters: make(map[string]*rate.Limiter),
	}
}

func (h *Handler) allowSignup(ip string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	limiter, ok := h.limiters[ip]
	if !ok {
		limiter = rate.NewLimiter(h.rate, 3)
		h.limiters[ip] = limiter
	}
	return limiter.Allow()
}

// Signup registers a new user
func (h *Handler) Signup(c echo.Context) error {
	if !h.allowSignup(c.RealIP()) {
		return apperror.ErrThrottle
	}

	var req SignupRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	user, err := h.svc.Signup(c.Request().Context(), req)
	if err != nil {
		return err
	}

	return respond.JSON(c, http.StatusCreated, "user created successfully", user)
}

// Get returns a user by id
func (h *Handler) Get(c echo.Context) error {
	user, err := h.svc.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return respond.JSON(c, http.StatusOK, "user fetched successfully", user)
}

// Me returns the authenticated user's record
func (h *Handler) Me(c echo.Context) error {
	authed := auth.GetUser(c)
	if authed == nil {
		return apperror.ErrUnauthorized
	}
	user, err := h.svc.GetByID(c.Request().Context(), authed.ID)
	if err != nil {
		return err
	}
	return respond.JSON(c, http.StatusOK, "user fetched successfully", user)
}

// Search looks a user up by email or username
func (h *Handler) Search(c echo.Context) error {
	var req SearchUserRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid search parameters")
	}

	user, err := h.svc.Search(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return respond.JSON(c, http.StatusOK, "user retrieved successfully", user)
}

// Update applies a partial update to the authenticated user's profile
func (h *Handler) Update(c echo.Context) error {
	authed := auth.GetUser(c)
	if authed == nil {
		return apperror.ErrUnauthorized
	}

	var req UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	user, err := h.svc.Update(c.Request().Context(), authed.ID, req)
	if err != nil {
		return err
	}
	return respond.JSON(c, http.StatusOK, "user updated successfully", user)
}

// PhotoUpload presigns an upload slot for the authenticated user's profile
// photo
func (h *Handler) PhotoUpload(c echo.Context) error {
	authed := auth.GetUser(c)
	if authed == nil {
		return apperror.ErrUnauthorized
	}

	var req PhotoUploadRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}
	if !h.storage.Enabled() {
		return apperror.NewBadRequest("media storage is not configured")
	}

	key := storage.MediaKey("profile-photos", authed.ID, req.Filename)
	uploadURL, err := h.storage.PresignUpload(c.Request().Context(), key, req.ContentType, 15*time.Minute)
	if err != nil {
		return apperror.NewInternal("failed to presign photo upload", err)
	}

	return respond.JSON(c, http.StatusOK, "upload slot created", map[string]string{
		"uploadUrl": uploadURL,
		"publicUrl": h.storage.PublicURL(key),
		"key":       key,
	})
}

// ValidateUserName reports whether a username is still free
func (h *Handler) ValidateUserName(c echo.Context) error {
	userName := c.QueryParam("userName")

	free, err := h.svc.ValidateUserName(c.Request().Context(), userName)
	if err != nil {
		return err
	}
	if !free {
		return respond.JSON(c, http.StatusConflict, "a user with this username already exists", false)
	}
	return respond.JSON(c, http.StatusOK, "username valid", true)
}
