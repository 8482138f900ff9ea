package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ironbros/aura-api/internal/models"
	appErrors "github.com/ironbros/aura-api/pkg/errors"
	"github.com/ironbros/aura-api/pkg/response"
)

type profileService interface {
	Get(ctx context.Context, userID string) (*models.Profile, error)
	AdjustAura(ctx context.Context, userID string, delta int64) (*models.Profile, error)
}

// AdjustAuraRequest is the payload for a manual aura correction.
type AdjustAuraRequest struct {
	Delta int64 `json:"delta" binding:"required"`
}

// ProfileHandler exposes the authenticated user's profile and aura balance.
type ProfileHandler struct {
	service profileService
}

// NewProfileHandler builds a new handler.
func NewProfileHandler(service profileService) *ProfileHandler {
	return &ProfileHandler{service: service}
}

// Get godoc
// @Summary Get the authenticated user's profile
// @Tags Profiles
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /profiles [get]
func (h *ProfileHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	profile, err := h.service.Get(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}

// AdjustAura godoc
// @Summary Apply a signed manual correction to the authenticated user's aura
// @Tags Profiles
// @Accept json
// @Produce json
// @Param payload body AdjustAuraRequest true "Signed delta"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /profiles/aura [put]
func (h *ProfileHandler) AdjustAura(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req AdjustAuraRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid aura adjustment payload"))
		return
	}

	profile, err := h.service.AdjustAura(c.Request.Context(), claims.UserID, req.Delta)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}
