package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ironbros/aura-api/internal/models"
	"github.com/ironbros/aura-api/internal/service"
	appErrors "github.com/ironbros/aura-api/pkg/errors"
	"github.com/ironbros/aura-api/pkg/response"
)

type assignmentService interface {
	Create(ctx context.Context, personID, personName string) (*models.Assignment, error)
	Get(ctx context.Context, personID string) (*models.Assignment, error)
	GetMissions(ctx context.Context, personID string) (*models.AssignmentMissions, error)
	ReplaceSlot(ctx context.Context, personID string, slotType models.SlotType) (*models.Assignment, error)
	UpdateSlotParams(ctx context.Context, personID string, req service.UpdateSlotParamsRequest) (*models.Assignment, error)
	CastVote(ctx context.Context, personID, voterID string, req service.VoteRequest) (*models.Assignment, error)
}

// AssignmentHandler exposes the mission assignment and voting endpoints.
type AssignmentHandler struct {
	service assignmentService
}

// NewAssignmentHandler builds a new handler.
func NewAssignmentHandler(service assignmentService) *AssignmentHandler {
	return &AssignmentHandler{service: service}
}

// Create godoc
// @Summary Create the assignment for the authenticated user
// @Tags Assignments
// @Produce json
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /assignments [post]
func (h *AssignmentHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	assignment, err := h.service.Create(c.Request.Context(), claims.UserID, claims.Name)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, assignment)
}

// Get godoc
// @Summary Get a user's assignment
// @Tags Assignments
// @Produce json
// @Param user_id path string true "User ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /assignments/{user_id} [get]
func (h *AssignmentHandler) Get(c *gin.Context) {
	assignment, err := h.service.Get(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignment, nil)
}

// GetMissions godoc
// @Summary Get the full mission records behind a user's populated slots
// @Tags Assignments
// @Produce json
// @Param user_id path string true "User ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /assignments/{user_id}/missions [get]
func (h *AssignmentHandler) GetMissions(c *gin.Context) {
	missions, err := h.service.GetMissions(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, missions, nil)
}

// ReplaceSlot godoc
// @Summary Replace the mission in a slot of the authenticated user
// @Tags Assignments
// @Produce json
// @Param type path string true "Slot type (mission or secondary_mission)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /assignments/missions/{type} [put]
func (h *AssignmentHandler) ReplaceSlot(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	assignment, err := h.service.ReplaceSlot(c.Request.Context(), claims.UserID, models.SlotType(c.Param("type")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignment, nil)
}

// UpdateSlotParams godoc
// @Summary Partially update a mission slot of the authenticated user
// @Tags Assignments
// @Accept json
// @Produce json
// @Param payload body service.UpdateSlotParamsRequest true "Slot update payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /assignments/missions/params [put]
func (h *AssignmentHandler) UpdateSlotParams(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.UpdateSlotParamsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid slot update payload"))
		return
	}
	assignment, err := h.service.UpdateSlotParams(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignment, nil)
}

// CastVote godoc
// @Summary Cast a vote on a mission slot of another user
// @Tags Assignments
// @Accept json
// @Produce json
// @Param user_id path string true "Owner of the voted assignment"
// @Param payload body service.VoteRequest true "Vote payload"
// @Success 200 {object} response.Envelope
// @Failure 406 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /assignments/{user_id}/missions/votes [put]
func (h *AssignmentHandler) CastVote(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid vote payload"))
		return
	}
	assignment, err := h.service.CastVote(c.Request.Context(), c.Param("user_id"), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignment, nil)
}
