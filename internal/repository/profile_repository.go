package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ironbros/aura-api/internal/models"
)

// ProfileRepository reads profiles and applies aura adjustments. The balance
// is only ever mutated with an atomic increment, never read-modify-write.
type ProfileRepository struct {
	db *sqlx.DB
}

// NewProfileRepository constructs a ProfileRepository.
func NewProfileRepository(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// FindByUser fetches a profile by user id.
func (r *ProfileRepository) FindByUser(ctx context.Context, userID string) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.GetContext(ctx, &profile,
		`SELECT user_id, name, apodo, objetivo, aura, created_at, updated_at FROM profiles WHERE user_id = $1`, userID); err != nil {
		return nil, err
	}
	return &profile, nil
}

// AdjustAura adds the signed delta to the user's balance.
func (r *ProfileRepository) AdjustAura(ctx context.Context, userID string, delta int64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE profiles SET aura = aura + $2, updated_at = $3 WHERE user_id = $1`,
		userID, delta, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("adjust aura: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("adjust aura: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
