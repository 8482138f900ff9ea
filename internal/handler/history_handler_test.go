package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironbros/aura-api/internal/models"
	"github.com/ironbros/aura-api/internal/service"
	appErrors "github.com/ironbros/aura-api/pkg/errors"
)

type historyServiceMock struct {
	events     []models.Event
	histories  []models.UserHistory
	payload    []byte
	err        error
	lastUserID string
	lastLimit  int
	lastFormat service.ExportFormat
}

func (m *historyServiceMock) Append(ctx context.Context, event *models.Event) error {
	return m.err
}

func (m *historyServiceMock) ListByUser(ctx context.Context, userID string, limit int) ([]models.Event, error) {
	m.lastUserID = userID
	m.lastLimit = limit
	return m.events, m.err
}

func (m *historyServiceMock) GroupHistory(ctx context.Context, groupID string, limit int) ([]models.UserHistory, error) {
	return m.histories, m.err
}

func (m *historyServiceMock) ExportGroupHistory(ctx context.Context, groupID string, limit int, format service.ExportFormat) ([]byte, string, string, error) {
	m.lastFormat = format
	if m.err != nil {
		return nil, "", "", m.err
	}
	return m.payload, "text/csv", "historial_" + groupID + ".csv", nil
}

func TestHistoryHandlerListUsesAuthenticatedUser(t *testing.T) {
	mockSvc := &historyServiceMock{events: []models.Event{{ID: "ev-1", UserID: "user-2"}}}
	handler := NewHistoryHandler(mockSvc)

	c, w := authedContext(t, http.MethodGet, "/history?limit=5", nil)
	handler.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-2", mockSvc.lastUserID)
	assert.Equal(t, 5, mockSvc.lastLimit)
}

func TestHistoryHandlerGroupHistoryNotFound(t *testing.T) {
	mockSvc := &historyServiceMock{err: appErrors.ErrNotFound}
	handler := NewHistoryHandler(mockSvc)

	c, w := authedContext(t, http.MethodGet, "/history/group/group-9", nil)
	c.Params = gin.Params{{Key: "group_id", Value: "group-9"}}
	handler.GroupHistory(c)

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestHistoryHandlerExportDefaultsToCSV(t *testing.T) {
	mockSvc := &historyServiceMock{payload: []byte("Miembro,Mision\n")}
	handler := NewHistoryHandler(mockSvc)

	c, w := authedContext(t, http.MethodGet, "/history/group/group-1/export", nil)
	c.Params = gin.Params{{Key: "group_id", Value: "group-1"}}
	handler.ExportGroupHistory(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, service.ExportCSV, mockSvc.lastFormat)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "historial_group-1.csv")
}

func TestHistoryHandlerAppendInvalidBody(t *testing.T) {
	handler := NewHistoryHandler(&historyServiceMock{})

	c, w := authedContext(t, http.MethodPost, "/history/events", []byte(`{"tipo":`))
	handler.Append(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}
