package models

import "time"

// Profile holds the per-user reputation balance plus the descriptive fields
// the generator personalizes missions with. Aura is mutated only through
// atomic delta application, by vote resolution and by manual corrections.
type Profile struct {
	UserID    string    `db:"user_id" json:"user_id"`
	Name      string    `db:"name" json:"name"`
	Apodo     string    `db:"apodo" json:"apodo"`
	Objetivo  string    `db:"objetivo" json:"objetivo"`
	Aura      int64     `db:"aura" json:"aura"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
