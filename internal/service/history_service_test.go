package service

import (
	"bytes"
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironbros/aura-api/internal/models"
	appErrors "github.com/ironbros/aura-api/pkg/errors"
)

type historyRepoStub struct {
	created []*models.Event
	byUser  map[string][]models.Event
}

func (s *historyRepoStub) Create(ctx context.Context, event *models.Event) error {
	s.created = append(s.created, event)
	return nil
}

func (s *historyRepoStub) ListByUser(ctx context.Context, userID string, limit int) ([]models.Event, error) {
	return s.byUser[userID], nil
}

func (s *historyRepoStub) ListByUsers(ctx context.Context, userIDs []string, limit int) ([]models.Event, error) {
	var events []models.Event
	for _, id := range userIDs {
		events = append(events, s.byUser[id]...)
	}
	return events, nil
}

type groupReaderStub struct {
	group *models.Group
	err   error
}

func (s groupReaderStub) FindByID(ctx context.Context, id string) (*models.Group, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.group, nil
}

func testGroup() *models.Group {
	return &models.Group{
		ID:     "group-1",
		Nombre: "Hermanos de hierro",
		Members: []models.GroupMember{
			{GroupID: "group-1", UserID: "user-1", UserName: "Marco"},
			{GroupID: "group-1", UserID: "user-2", UserName: "Pablo"},
		},
	}
}

func testEvents() map[string][]models.Event {
	now := time.Now().UTC()
	return map[string][]models.Event{
		"user-1": {
			{ID: "ev-1", UserID: "user-1", MissionID: "2", Name: "Constancia de hierro",
				Tipo: models.SlotMain, Status: models.StatusCompleted, Created: now},
		},
		"user-2": {
			{ID: "ev-2", UserID: "user-2", MissionID: "sm-1", Name: "Reto extra",
				Tipo: models.SlotSecondary, Status: models.StatusFailed, Created: now},
		},
	}
}

func TestHistoryServiceGroupHistory(t *testing.T) {
	svc := NewHistoryService(&historyRepoStub{byUser: testEvents()}, groupReaderStub{group: testGroup()}, nil)

	histories, err := svc.GroupHistory(context.Background(), "group-1", 10)
	require.NoError(t, err)
	require.Len(t, histories, 2)
	assert.Equal(t, "Marco", histories[0].UserName)
	require.Len(t, histories[0].Events, 1)
	assert.Equal(t, "ev-1", histories[0].Events[0].ID)
	assert.Equal(t, "Pablo", histories[1].UserName)
}

func TestHistoryServiceGroupHistoryMemberWithoutEvents(t *testing.T) {
	svc := NewHistoryService(&historyRepoStub{byUser: map[string][]models.Event{}}, groupReaderStub{group: testGroup()}, nil)

	histories, err := svc.GroupHistory(context.Background(), "group-1", 10)
	require.NoError(t, err)
	require.Len(t, histories, 2)
	assert.NotNil(t, histories[0].Events)
	assert.Empty(t, histories[0].Events)
}

func TestHistoryServiceGroupNotFound(t *testing.T) {
	svc := NewHistoryService(&historyRepoStub{}, groupReaderStub{err: sql.ErrNoRows}, nil)

	_, err := svc.GroupHistory(context.Background(), "group-9", 10)
	require.Error(t, err)
	assertAppCode(t, err, appErrors.ErrNotFound.Code)
}

func TestHistoryServiceExportCSV(t *testing.T) {
	svc := NewHistoryService(&historyRepoStub{byUser: testEvents()}, groupReaderStub{group: testGroup()}, nil)

	payload, contentType, fileName, err := svc.ExportGroupHistory(context.Background(), "group-1", 10, ExportCSV)
	require.NoError(t, err)
	assert.Equal(t, "text/csv", contentType)
	assert.Equal(t, "historial_group-1.csv", fileName)

	body := string(payload)
	assert.True(t, strings.HasPrefix(body, "Miembro,Mision,Tipo,Estado,Resultado,Fecha,Logro"))
	assert.Contains(t, body, "Marco,Constancia de hierro,mission,completed")
	assert.Contains(t, body, "Pablo,Reto extra,secondary_mission,failed")
}

func TestHistoryServiceExportPDF(t *testing.T) {
	svc := NewHistoryService(&historyRepoStub{byUser: testEvents()}, groupReaderStub{group: testGroup()}, nil)

	payload, contentType, fileName, err := svc.ExportGroupHistory(context.Background(), "group-1", 10, ExportPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", contentType)
	assert.Equal(t, "historial_group-1.pdf", fileName)
	assert.True(t, bytes.HasPrefix(payload, []byte("%PDF")))
}

func TestHistoryServiceExportUnknownFormat(t *testing.T) {
	svc := NewHistoryService(&historyRepoStub{byUser: testEvents()}, groupReaderStub{group: testGroup()}, nil)

	_, _, _, err := svc.ExportGroupHistory(context.Background(), "group-1", 10, ExportFormat("xml"))
	require.Error(t, err)
	assertAppCode(t, err, appErrors.ErrValidation.Code)
}

func TestHistoryServiceAppendValidates(t *testing.T) {
	repo := &historyRepoStub{}
	svc := NewHistoryService(repo, groupReaderStub{group: testGroup()}, nil)

	err := svc.Append(context.Background(), &models.Event{
		UserID: "user-1", Tipo: models.SlotType("weird"), Status: models.StatusCompleted,
	})
	require.Error(t, err)
	assertAppCode(t, err, appErrors.ErrValidation.Code)
	assert.Empty(t, repo.created)

	err = svc.Append(context.Background(), &models.Event{
		UserID: "user-1", MissionID: "2", Name: "Constancia",
		Tipo: models.SlotMain, Status: models.StatusCompleted,
	})
	require.NoError(t, err)
	require.Len(t, repo.created, 1)
}
