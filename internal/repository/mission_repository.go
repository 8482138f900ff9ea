package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ironbros/aura-api/internal/models"
)

const missionColumns = "id, nombre, descripcion, recompensa, imagen, logro_nombre, logro_descripcion, logro_pegatina"

// MissionRepository reads the static main-story mission catalog. The catalog
// is seeded once and read-only at runtime.
type MissionRepository struct {
	db *sqlx.DB
}

// NewMissionRepository constructs a MissionRepository.
func NewMissionRepository(db *sqlx.DB) *MissionRepository {
	return &MissionRepository{db: db}
}

// FindByID fetches a catalog mission by its sequential id.
func (r *MissionRepository) FindByID(ctx context.Context, id string) (*models.Mission, error) {
	var mission models.Mission
	if err := r.db.GetContext(ctx, &mission,
		fmt.Sprintf(`SELECT %s FROM missions WHERE id = $1`, missionColumns), id); err != nil {
		return nil, err
	}
	mission.FoldLogro()
	return &mission, nil
}

// List returns the whole catalog ordered by numeric id.
func (r *MissionRepository) List(ctx context.Context) ([]models.Mission, error) {
	var missions []models.Mission
	if err := r.db.SelectContext(ctx, &missions,
		fmt.Sprintf(`SELECT %s FROM missions ORDER BY id::integer`, missionColumns)); err != nil {
		return nil, fmt.Errorf("list missions: %w", err)
	}
	for i := range missions {
		missions[i].FoldLogro()
	}
	return missions, nil
}

// ListLogros returns the achievements attached to catalog missions.
func (r *MissionRepository) ListLogros(ctx context.Context) ([]models.Mission, error) {
	var missions []models.Mission
	if err := r.db.SelectContext(ctx, &missions,
		fmt.Sprintf(`SELECT %s FROM missions WHERE logro_nombre IS NOT NULL ORDER BY id::integer`, missionColumns)); err != nil {
		return nil, fmt.Errorf("list mission logros: %w", err)
	}
	for i := range missions {
		missions[i].FoldLogro()
	}
	return missions, nil
}

// Seed upserts the catalog entries. Used once at initialization; re-running
// refreshes existing rows in place.
func (r *MissionRepository) Seed(ctx context.Context, missions []models.Mission) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed missions: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for i := range missions {
		mission := &missions[i]
		mission.FoldLogro()
		if _, err := tx.NamedExecContext(ctx, `INSERT INTO missions (id, nombre, descripcion, recompensa, imagen, logro_nombre, logro_descripcion, logro_pegatina)
VALUES (:id, :nombre, :descripcion, :recompensa, :imagen, :logro_nombre, :logro_descripcion, :logro_pegatina)
ON CONFLICT (id) DO UPDATE SET
    nombre = EXCLUDED.nombre,
    descripcion = EXCLUDED.descripcion,
    recompensa = EXCLUDED.recompensa,
    imagen = EXCLUDED.imagen,
    logro_nombre = EXCLUDED.logro_nombre,
    logro_descripcion = EXCLUDED.logro_descripcion,
    logro_pegatina = EXCLUDED.logro_pegatina`, mission); err != nil {
			return fmt.Errorf("seed mission %s: %w", mission.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed missions: %w", err)
	}
	return nil
}
