package models

import (
	"time"

	"github.com/lib/pq"
)

// SlotType identifies one of the three mission slots of an assignment.
// The values double as wire names and as the slot_type column.
type SlotType string

const (
	SlotMain      SlotType = "mission"
	SlotSecondary SlotType = "secondary_mission"
	SlotGroup     SlotType = "group_mission"
)

// Valid reports whether the slot type is one of the known slots.
func (t SlotType) Valid() bool {
	switch t {
	case SlotMain, SlotSecondary, SlotGroup:
		return true
	}
	return false
}

// MissionStatus is the lifecycle state of a mission slot.
type MissionStatus string

const (
	StatusActive        MissionStatus = "active"
	StatusPendingReview MissionStatus = "pending_review"
	StatusCompleted     MissionStatus = "completed"
	StatusFailed        MissionStatus = "failed"
)

// Valid reports whether the status is a known value.
func (s MissionStatus) Valid() bool {
	switch s {
	case StatusActive, StatusPendingReview, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// Terminal reports whether the status ends a voting round.
func (s MissionStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// MissionSlot is one populated mission slot of an assignment, including the
// voting round state for the current mission instance.
type MissionSlot struct {
	PersonID     string         `db:"person_id" json:"-"`
	SlotType     SlotType       `db:"slot_type" json:"-"`
	MissionID    string         `db:"mission_id" json:"mission_id"`
	MissionName  string         `db:"mission_name" json:"mission_name"`
	Status       MissionStatus  `db:"status" json:"status"`
	CreationDate time.Time      `db:"creation_date" json:"creation_date"`
	Result       string         `db:"result" json:"result"`
	Like         int            `db:"like_count" json:"like"`
	Dislike      int            `db:"dislike_count" json:"dislike"`
	Voters       pq.StringArray `db:"voters" json:"voters"`
}

// HasVoter reports whether the given user already voted in the current round.
func (s *MissionSlot) HasVoter(userID string) bool {
	for _, v := range s.Voters {
		if v == userID {
			return true
		}
	}
	return false
}

// Assignment owns a user's three mission slots. The main slot is populated at
// creation time and never null afterwards; the other two are optional.
type Assignment struct {
	PersonID         string       `db:"person_id" json:"person_id"`
	PersonName       string       `db:"person_name" json:"person_name"`
	Mission          *MissionSlot `db:"-" json:"mission"`
	SecondaryMission *MissionSlot `db:"-" json:"secondary_mission"`
	GroupMission     *MissionSlot `db:"-" json:"group_mission"`
	CreatedAt        time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time    `db:"updated_at" json:"updated_at"`
}

// Slot returns the slot stored under the given type, nil when unpopulated.
func (a *Assignment) Slot(t SlotType) *MissionSlot {
	switch t {
	case SlotMain:
		return a.Mission
	case SlotSecondary:
		return a.SecondaryMission
	case SlotGroup:
		return a.GroupMission
	}
	return nil
}

// SetSlot stores the slot under its type.
func (a *Assignment) SetSlot(slot *MissionSlot) {
	if slot == nil {
		return
	}
	switch slot.SlotType {
	case SlotMain:
		a.Mission = slot
	case SlotSecondary:
		a.SecondaryMission = slot
	case SlotGroup:
		a.GroupMission = slot
	}
}

// AssignmentMissions carries the full catalog/secondary records referenced by
// the populated slots of an assignment.
type AssignmentMissions struct {
	Mission          *Mission          `json:"mission"`
	SecondaryMission *SecondaryMission `json:"secondary_mission"`
	GroupMission     *SecondaryMission `json:"group_mission"`
}

// SlotParams carries the optional scalar fields of a targeted partial slot
// update. Only non-nil fields are written.
type SlotParams struct {
	Status  *MissionStatus
	Result  *string
	Like    *int
	Dislike *int
}

// HasUpdates reports whether at least one field is set.
func (p SlotParams) HasUpdates() bool {
	return p.Status != nil || p.Result != nil || p.Like != nil || p.Dislike != nil
}

// SlotResolution describes the terminal transition of a voting round: the
// outcome status, the event to archive and the signed aura delta, applied
// together.
type SlotResolution struct {
	PersonID  string
	SlotType  SlotType
	Status    MissionStatus
	Event     *Event
	AuraDelta int64
}
