package models

import "time"

// SecondaryMission is a generated, per-user mission persisted by the
// generator. Referenced by id from a mission slot.
type SecondaryMission struct {
	ID          string    `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"user_id"`
	Nombre      string    `db:"nombre" json:"nombre"`
	Descripcion string    `db:"descripcion" json:"descripcion"`
	Recompensa  int64     `db:"recompensa" json:"recompensa"`
	IsActive    bool      `db:"is_active" json:"is_active"`
	Created     time.Time `db:"created" json:"created"`
}
