package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ironbros/aura-api/internal/models"
)

const eventColumns = "id, user_id, mission_id, name, tipo, result, status, created, logro_name"

// HistoryRepository persists the append-only event log of mission outcomes.
// Events are never updated or deleted.
type HistoryRepository struct {
	db *sqlx.DB
}

// NewHistoryRepository constructs a HistoryRepository.
func NewHistoryRepository(db *sqlx.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Create appends one event.
func (r *HistoryRepository) Create(ctx context.Context, event *models.Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Created.IsZero() {
		event.Created = time.Now().UTC()
	}
	if _, err := r.db.NamedExecContext(ctx, `INSERT INTO history (id, user_id, mission_id, name, tipo, result, status, created, logro_name)
VALUES (:id, :user_id, :mission_id, :name, :tipo, :result, :status, :created, :logro_name)`, event); err != nil {
		return fmt.Errorf("create history event: %w", err)
	}
	return nil
}

// ListByUser returns the most recent events for one user.
func (r *HistoryRepository) ListByUser(ctx context.Context, userID string, limit int) ([]models.Event, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var events []models.Event
	if err := r.db.SelectContext(ctx, &events,
		fmt.Sprintf(`SELECT %s FROM history WHERE user_id = $1 ORDER BY created DESC LIMIT %d`, eventColumns, limit),
		userID); err != nil {
		return nil, fmt.Errorf("list history for user: %w", err)
	}
	return events, nil
}

// ListByUsers returns recent events for a set of users in one query; callers
// group the flat result per member.
func (r *HistoryRepository) ListByUsers(ctx context.Context, userIDs []string, limit int) ([]models.Event, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	if limit <= 0 || limit > 2000 {
		limit = 1000
	}
	var events []models.Event
	if err := r.db.SelectContext(ctx, &events,
		fmt.Sprintf(`SELECT %s FROM history WHERE user_id = ANY($1) ORDER BY user_id, created DESC LIMIT %d`, eventColumns, limit),
		pq.Array(userIDs)); err != nil {
		return nil, fmt.Errorf("list history for users: %w", err)
	}
	return events, nil
}
