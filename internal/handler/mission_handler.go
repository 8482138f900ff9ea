package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ironbros/aura-api/internal/models"
	"github.com/ironbros/aura-api/pkg/response"
)

type missionService interface {
	List(ctx context.Context) ([]models.Mission, error)
	FindByID(ctx context.Context, id string) (*models.Mission, error)
	ListLogros(ctx context.Context) ([]models.MissionLogro, error)
	Initialize(ctx context.Context, seedFile string) error
}

// MissionHandler exposes the read-only main-story catalog.
type MissionHandler struct {
	service  missionService
	seedFile string
}

// NewMissionHandler builds a new handler.
func NewMissionHandler(service missionService, seedFile string) *MissionHandler {
	return &MissionHandler{service: service, seedFile: seedFile}
}

// List godoc
// @Summary List the mission catalog
// @Tags Missions
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /missions [get]
func (h *MissionHandler) List(c *gin.Context) {
	missions, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, missions, nil)
}

// Get godoc
// @Summary Get one catalog mission
// @Tags Missions
// @Produce json
// @Param id path string true "Mission ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /missions/{id} [get]
func (h *MissionHandler) Get(c *gin.Context) {
	mission, err := h.service.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, mission, nil)
}

// ListLogros godoc
// @Summary List the achievements attached to catalog missions
// @Tags Missions
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /missions/logros [get]
func (h *MissionHandler) ListLogros(c *gin.Context) {
	logros, err := h.service.ListLogros(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, logros, nil)
}

// InitData godoc
// @Summary Seed the catalog from the configured JSON file
// @Tags Missions
// @Produce json
// @Success 204
// @Router /missions/init-data [post]
func (h *MissionHandler) InitData(c *gin.Context) {
	if err := h.service.Initialize(c.Request.Context(), h.seedFile); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
