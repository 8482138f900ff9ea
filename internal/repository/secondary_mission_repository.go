package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ironbros/aura-api/internal/models"
)

// SecondaryMissionRepository persists generated missions. Records are written
// once by the generator and read back by id during vote resolution.
type SecondaryMissionRepository struct {
	db *sqlx.DB
}

// NewSecondaryMissionRepository constructs the repository.
func NewSecondaryMissionRepository(db *sqlx.DB) *SecondaryMissionRepository {
	return &SecondaryMissionRepository{db: db}
}

// Create inserts a freshly generated mission.
func (r *SecondaryMissionRepository) Create(ctx context.Context, mission *models.SecondaryMission) error {
	if mission.ID == "" {
		mission.ID = uuid.NewString()
	}
	if mission.Created.IsZero() {
		mission.Created = time.Now().UTC()
	}
	if _, err := r.db.NamedExecContext(ctx, `INSERT INTO secondary_missions (id, user_id, nombre, descripcion, recompensa, is_active, created)
VALUES (:id, :user_id, :nombre, :descripcion, :recompensa, :is_active, :created)`, mission); err != nil {
		return fmt.Errorf("create secondary mission: %w", err)
	}
	return nil
}

// FindByID fetches a generated mission by id.
func (r *SecondaryMissionRepository) FindByID(ctx context.Context, id string) (*models.SecondaryMission, error) {
	var mission models.SecondaryMission
	if err := r.db.GetContext(ctx, &mission,
		`SELECT id, user_id, nombre, descripcion, recompensa, is_active, created FROM secondary_missions WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &mission, nil
}
