package family

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kindredhq/kindred/internal/storage"
	"github.com/kindredhq/kindred/pkg/apperror"
	"github.com/kindredhq/kindred/pkg/respond"
)

// Handler handles HTTP requests for families
type Handler struct {
	svc     *Service
	storage *storage.Service
}

// NewHandler creates a new family handler
func NewHandler(svc *Service, storage *storage.Service) *Handler {
	return &Handler{svc: svc, storage: storage}
}

// Create creates a new family
func (h *Handler) Create(c echo.Context) error {
	var req CreateFamilyRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	fam, err := h.svc.CreateFamily(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return respond.JSON(c, http.StatusCreated, fam.FamilyName+" family created successfully", fam)
}

// Join attaches the caller to an existing family
func (h *Handler) Join(c echo.Context) error {
	var req JoinFamilyRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	result, err := h.svc.JoinFamily(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return respond.JSON(c, http.StatusOK, "you've successfully joined "+result.FamilyName+" family", result)
}

// Get returns a family by id with roster, root and branches expanded
func (h *Handler) Get(c echo.Context) error {
	fam, err := h.svc.GetFamily(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return respond.JSON(c, http.StatusOK, "family fetched successfully", fam)
}

// Search performs a free-text family search
func (h *Handler) Search(c echo.Context) error {
	var req SearchFamilyRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid search parameters")
	}

	fams, err := h.svc.Search(c.Request().Context(), req)
	if err != nil {
		return err
	}
	if len(fams) == 0 {
		return respond.JSON(c, http.StatusOK, "no family found with "+req.SearchText, []*Family{})
	}
	return respond.JSON(c, http.StatusOK, "families with ["+req.SearchText+"] retrieved successfully", fams)
}

// Query filters families by name, country, state and tribe
func (h *Handler) Query(c echo.Context) error {
	var req QueryFamiliesRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid query parameters")
	}

	fams, err := h.svc.Query(c.Request().Context(), req)
	if err != nil {
		return err
	}
	if len(fams) == 0 {
		return respond.JSON(c, http.StatusOK, "no family found with these records", []*FamilyOverview{})
	}
	return respond.JSON(c, http.StatusOK, "families found", fams)
}

// Update applies a partial update to a family
func (h *Handler) Update(c echo.Context) error {
	var req UpdateFamilyRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	fam, err := h.svc.Update(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return err
	}
	return respond.JSON(c, http.StatusOK, "family updated successfully", fam)
}

// ValidateFamilyType reports whether the caller is still free on a family
// type axis
func (h *Handler) ValidateFamilyType(c echo.Context) error {
	userID := c.QueryParam("userId")
	familyType := c.QueryParam("familyType")
	if userID == "" || familyType == "" {
		return apperror.NewBadRequest("userId and familyType are required")
	}

	result, err := h.svc.ValidateFamilyTypeUniqueness(c.Request().Context(), userID, familyType)
	if err != nil {
		return err
	}
	if !result.Unique {
		return respond.JSON(c, http.StatusOK,
			"you already belong to a "+familyType+" family, exit it before creating or joining another of the same type", result)
	}
	return respond.JSON(c, http.StatusOK, "user does not belong to any family of same type", result)
}

// ValidateRelationship reports whether a relationship connects directly to
// the root
func (h *Handler) ValidateRelationship(c echo.Context) error {
	topLevel, err := h.svc.ValidateRelationshipToRoot(c.QueryParam("relationshipToRoot"))
	if err != nil {
		return err
	}
	if !topLevel {
		return respond.JSON(c, http.StatusOK,
			"relationship is disconnected from root, create or select your parent who links you to the root", false)
	}
	return respond.JSON(c, http.StatusOK, "relationship is directly related to root, skip parent create or select", true)
}

// CoverUpload presigns an upload slot for a family cover image
func (h *Handler) CoverUpload(c echo.Context) error {
	var req CoverUploadRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}
	if !h.storage.Enabled() {
		return apperror.NewBadRequest("media storage is not configured")
	}

	familyID := c.Param("id")
	if _, err := h.svc.GetFamily(c.Request().Context(), familyID); err != nil {
		return err
	}

	key := storage.MediaKey("family-covers", familyID, req.Filename)
	uploadURL, err := h.storage.PresignUpload(c.Request().Context(), key, req.ContentType, 15*time.Minute)
	if err != nil {
		return apperror.NewInternal("failed to presign cover upload", err)
	}

	return respond.JSON(c, http.StatusOK, "upload slot created", map[string]string{
		"uploadUrl": uploadURL,
		"publicUrl": h.storage.PublicURL(key),
		"key":       key,
	})
}
