package models

import "time"

// Event is an append-only record of a resolved mission outcome. Events are
// never mutated once written.
type Event struct {
	ID        string        `db:"id" json:"id"`
	UserID    string        `db:"user_id" json:"user_id"`
	MissionID string        `db:"mission_id" json:"mission_id"`
	Name      string        `db:"name" json:"name"`
	Tipo      SlotType      `db:"tipo" json:"tipo"`
	Result    string        `db:"result" json:"result"`
	Status    MissionStatus `db:"status" json:"status"`
	Created   time.Time     `db:"created" json:"created"`
	LogroName *string       `db:"logro_name" json:"logro_name,omitempty"`
}

// UserHistory groups a member's events for group-wide history views.
type UserHistory struct {
	UserName string  `json:"user_name"`
	Events   []Event `json:"events"`
}
