package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ironbros/aura-api/internal/models"
	"github.com/ironbros/aura-api/internal/service"
	appErrors "github.com/ironbros/aura-api/pkg/errors"
	"github.com/ironbros/aura-api/pkg/response"
)

type historyService interface {
	Append(ctx context.Context, event *models.Event) error
	ListByUser(ctx context.Context, userID string, limit int) ([]models.Event, error)
	GroupHistory(ctx context.Context, groupID string, limit int) ([]models.UserHistory, error)
	ExportGroupHistory(ctx context.Context, groupID string, limit int, format service.ExportFormat) ([]byte, string, string, error)
}

// HistoryHandler exposes the mission outcome log.
type HistoryHandler struct {
	service historyService
}

// NewHistoryHandler builds a new handler.
func NewHistoryHandler(service historyService) *HistoryHandler {
	return &HistoryHandler{service: service}
}

// Append godoc
// @Summary Archive an outcome event directly
// @Tags History
// @Accept json
// @Produce json
// @Param payload body models.Event true "Event payload"
// @Success 201 {object} response.Envelope
// @Router /history/events [post]
func (h *HistoryHandler) Append(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var event models.Event
	if err := c.ShouldBindJSON(&event); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid event payload"))
		return
	}
	event.UserID = claims.UserID
	if err := h.service.Append(c.Request.Context(), &event); err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, event)
}

// List godoc
// @Summary List the authenticated user's history
// @Tags History
// @Produce json
// @Param limit query int false "Maximum number of events"
// @Success 200 {object} response.Envelope
// @Router /history [get]
func (h *HistoryHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	events, err := h.service.ListByUser(c.Request.Context(), claims.UserID, queryLimit(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, events, nil)
}

// GroupHistory godoc
// @Summary List the recent history of every group member
// @Tags History
// @Produce json
// @Param group_id path string true "Group ID"
// @Param limit query int false "Maximum events per member"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /history/group/{group_id} [get]
func (h *HistoryHandler) GroupHistory(c *gin.Context) {
	histories, err := h.service.GroupHistory(c.Request.Context(), c.Param("group_id"), queryLimit(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, histories, nil)
}

// ExportGroupHistory godoc
// @Summary Export the group history as CSV or PDF
// @Tags History
// @Produce text/csv
// @Produce application/pdf
// @Param group_id path string true "Group ID"
// @Param format query string true "Export format (csv or pdf)"
// @Param limit query int false "Maximum events per member"
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Router /history/group/{group_id}/export [get]
func (h *HistoryHandler) ExportGroupHistory(c *gin.Context) {
	format := service.ExportFormat(c.DefaultQuery("format", string(service.ExportCSV)))
	payload, contentType, fileName, err := h.service.ExportGroupHistory(c.Request.Context(), c.Param("group_id"), queryLimit(c), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	c.Data(http.StatusOK, contentType, payload)
}

func queryLimit(c *gin.Context) int {
	raw := c.Query("limit")
	if raw == "" {
		return 0
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0
	}
	return limit
}
