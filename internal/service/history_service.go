package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/ironbros/aura-api/internal/models"
	appErrors "github.com/ironbros/aura-api/pkg/errors"
	"github.com/ironbros/aura-api/pkg/export"
)

// ExportFormat identifies a supported history export encoding.
type ExportFormat string

const (
	ExportCSV ExportFormat = "csv"
	ExportPDF ExportFormat = "pdf"
)

type historyRepository interface {
	Create(ctx context.Context, event *models.Event) error
	ListByUser(ctx context.Context, userID string, limit int) ([]models.Event, error)
	ListByUsers(ctx context.Context, userIDs []string, limit int) ([]models.Event, error)
}

type groupReader interface {
	FindByID(ctx context.Context, id string) (*models.Group, error)
}

// HistoryService reads and exports the append-only mission outcome log.
type HistoryService struct {
	repo   historyRepository
	groups groupReader
	csv    *export.CSVExporter
	pdf    *export.PDFExporter
	logger *zap.Logger
}

// NewHistoryService constructs the history service.
func NewHistoryService(repo historyRepository, groups groupReader, logger *zap.Logger) *HistoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HistoryService{
		repo:   repo,
		groups: groups,
		csv:    export.NewCSVExporter(),
		pdf:    export.NewPDFExporter(),
		logger: logger,
	}
}

// Append records an outcome event directly. Normal resolution archives events
// transactionally; this path exists for administrative backfills.
func (s *HistoryService) Append(ctx context.Context, event *models.Event) error {
	if !event.Tipo.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown mission type %q", event.Tipo))
	}
	if !event.Status.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown mission status %q", event.Status))
	}
	if err := s.repo.Create(ctx, event); err != nil {
		return appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to archive event")
	}
	return nil
}

// ListByUser returns the user's most recent events, newest first.
func (s *HistoryService) ListByUser(ctx context.Context, userID string, limit int) ([]models.Event, error) {
	events, err := s.repo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list history")
	}
	if events == nil {
		events = []models.Event{}
	}
	return events, nil
}

// GroupHistory returns the recent events of every group member, grouped and
// ordered by member name.
func (s *HistoryService) GroupHistory(ctx context.Context, groupID string, limit int) ([]models.UserHistory, error) {
	group, err := s.loadGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(group.Members))
	for i, m := range group.Members {
		ids[i] = m.UserID
	}

	events, err := s.repo.ListByUsers(ctx, ids, limit*len(ids))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list group history")
	}

	byUser := make(map[string][]models.Event, len(ids))
	for _, e := range events {
		byUser[e.UserID] = append(byUser[e.UserID], e)
	}

	result := make([]models.UserHistory, 0, len(group.Members))
	for _, m := range group.Members {
		memberEvents := byUser[m.UserID]
		if memberEvents == nil {
			memberEvents = []models.Event{}
		}
		if limit > 0 && len(memberEvents) > limit {
			memberEvents = memberEvents[:limit]
		}
		result = append(result, models.UserHistory{UserName: m.UserName, Events: memberEvents})
	}
	return result, nil
}

// ExportGroupHistory renders the group's history as a CSV or PDF document and
// returns the bytes together with the content type and a file name.
func (s *HistoryService) ExportGroupHistory(ctx context.Context, groupID string, limit int, format ExportFormat) ([]byte, string, string, error) {
	group, err := s.loadGroup(ctx, groupID)
	if err != nil {
		return nil, "", "", err
	}

	histories, err := s.GroupHistory(ctx, groupID, limit)
	if err != nil {
		return nil, "", "", err
	}

	dataset := export.Dataset{
		Headers: []string{"Miembro", "Mision", "Tipo", "Estado", "Resultado", "Fecha", "Logro"},
	}
	for _, h := range histories {
		for _, e := range h.Events {
			logro := ""
			if e.LogroName != nil {
				logro = *e.LogroName
			}
			dataset.Rows = append(dataset.Rows, map[string]string{
				"Miembro":   h.UserName,
				"Mision":    e.Name,
				"Tipo":      string(e.Tipo),
				"Estado":    string(e.Status),
				"Resultado": e.Result,
				"Fecha":     e.Created.Format("2006-01-02 15:04"),
				"Logro":     logro,
			})
		}
	}

	switch format {
	case ExportCSV:
		payload, err := s.csv.Render(dataset)
		if err != nil {
			return nil, "", "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render CSV export")
		}
		return payload, "text/csv", fmt.Sprintf("historial_%s.csv", groupID), nil
	case ExportPDF:
		payload, err := s.pdf.Render(dataset, fmt.Sprintf("Historial de %s", group.Nombre))
		if err != nil {
			return nil, "", "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render PDF export")
		}
		return payload, "application/pdf", fmt.Sprintf("historial_%s.pdf", groupID), nil
	default:
		return nil, "", "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q, use %s", format, strconv.Quote(string(ExportCSV))+" or "+strconv.Quote(string(ExportPDF))))
	}
}

func (s *HistoryService) loadGroup(ctx context.Context, groupID string) (*models.Group, error) {
	group, err := s.groups.FindByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("group %s not found", groupID))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load group")
	}
	if len(group.Members) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("group %s has no members", groupID))
	}
	return group, nil
}
