package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ironbros/aura-api/internal/models"
)

// Sentinel errors surfaced by write operations whose outcome depends on
// current row state. Services map them onto the API error taxonomy.
var (
	ErrDuplicate       = errors.New("duplicate record")
	ErrAlreadyResolved = errors.New("slot already resolved")
)

const slotColumns = "person_id, slot_type, mission_id, mission_name, status, creation_date, result, like_count, dislike_count, voters"

// AssignmentRepository manages persistence for assignments and their mission
// slots. Each populated slot is one row in assignment_slots keyed by
// (person_id, slot_type), so a single conditional UPDATE covers the whole
// voting round state of a slot.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository constructs a new repository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// Create inserts the assignment together with its initial main slot. Returns
// ErrDuplicate when an assignment already exists for the person.
func (r *AssignmentRepository) Create(ctx context.Context, assignment *models.Assignment) error {
	if assignment.Mission == nil {
		return fmt.Errorf("create assignment: missing main slot")
	}
	now := time.Now().UTC()
	assignment.CreatedAt = now
	assignment.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("create assignment: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.ExecContext(ctx, `INSERT INTO assignments (person_id, person_name, created_at, updated_at)
VALUES ($1, $2, $3, $4) ON CONFLICT (person_id) DO NOTHING`,
		assignment.PersonID, assignment.PersonName, assignment.CreatedAt, assignment.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create assignment: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return ErrDuplicate
	}

	if err := insertSlot(ctx, tx, assignment.Mission); err != nil {
		return fmt.Errorf("create assignment main slot: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("create assignment: %w", err)
	}
	return nil
}

func insertSlot(ctx context.Context, tx *sqlx.Tx, slot *models.MissionSlot) error {
	if slot.Voters == nil {
		slot.Voters = pq.StringArray{}
	}
	_, err := tx.NamedExecContext(ctx, `INSERT INTO assignment_slots (person_id, slot_type, mission_id, mission_name, status, creation_date, result, like_count, dislike_count, voters)
VALUES (:person_id, :slot_type, :mission_id, :mission_name, :status, :creation_date, :result, :like_count, :dislike_count, :voters)`, slot)
	return err
}

// FindByPerson loads the assignment and all populated slots.
func (r *AssignmentRepository) FindByPerson(ctx context.Context, personID string) (*models.Assignment, error) {
	var assignment models.Assignment
	if err := r.db.GetContext(ctx, &assignment,
		`SELECT person_id, person_name, created_at, updated_at FROM assignments WHERE person_id = $1`, personID); err != nil {
		return nil, err
	}

	var slots []models.MissionSlot
	if err := r.db.SelectContext(ctx, &slots,
		fmt.Sprintf(`SELECT %s FROM assignment_slots WHERE person_id = $1`, slotColumns), personID); err != nil {
		return nil, fmt.Errorf("load assignment slots: %w", err)
	}
	for i := range slots {
		slot := slots[i]
		assignment.SetSlot(&slot)
	}
	return &assignment, nil
}

// FindSlot loads a single slot row. sql.ErrNoRows when the slot is not
// populated.
func (r *AssignmentRepository) FindSlot(ctx context.Context, personID string, slotType models.SlotType) (*models.MissionSlot, error) {
	var slot models.MissionSlot
	err := r.db.GetContext(ctx, &slot,
		fmt.Sprintf(`SELECT %s FROM assignment_slots WHERE person_id = $1 AND slot_type = $2`, slotColumns),
		personID, slotType)
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

// ReplaceSlot writes the slot as a full replacement of the previous contents,
// which implicitly starts a fresh voting round (empty voters, zero tallies).
func (r *AssignmentRepository) ReplaceSlot(ctx context.Context, slot *models.MissionSlot) error {
	if slot.Voters == nil {
		slot.Voters = pq.StringArray{}
	}
	_, err := r.db.NamedExecContext(ctx, `INSERT INTO assignment_slots (person_id, slot_type, mission_id, mission_name, status, creation_date, result, like_count, dislike_count, voters)
VALUES (:person_id, :slot_type, :mission_id, :mission_name, :status, :creation_date, :result, :like_count, :dislike_count, :voters)
ON CONFLICT (person_id, slot_type) DO UPDATE SET
    mission_id = EXCLUDED.mission_id,
    mission_name = EXCLUDED.mission_name,
    status = EXCLUDED.status,
    creation_date = EXCLUDED.creation_date,
    result = EXCLUDED.result,
    like_count = EXCLUDED.like_count,
    dislike_count = EXCLUDED.dislike_count,
    voters = EXCLUDED.voters`, slot)
	if err != nil {
		return fmt.Errorf("replace slot: %w", err)
	}
	return nil
}

// UpdateSlotParams applies a partial update to a populated slot. Returns the
// number of rows touched; zero means the slot row does not exist.
func (r *AssignmentRepository) UpdateSlotParams(ctx context.Context, personID string, slotType models.SlotType, params models.SlotParams) (int64, error) {
	sets := []string{}
	args := []interface{}{personID, slotType}
	if params.Status != nil {
		sets = append(sets, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, *params.Status)
	}
	if params.Result != nil {
		sets = append(sets, fmt.Sprintf("result = $%d", len(args)+1))
		args = append(args, *params.Result)
	}
	if params.Like != nil {
		sets = append(sets, fmt.Sprintf("like_count = $%d", len(args)+1))
		args = append(args, *params.Like)
	}
	if params.Dislike != nil {
		sets = append(sets, fmt.Sprintf("dislike_count = $%d", len(args)+1))
		args = append(args, *params.Dislike)
	}
	if len(sets) == 0 {
		return 0, fmt.Errorf("update slot params: no fields to update")
	}

	query := fmt.Sprintf("UPDATE assignment_slots SET %s WHERE person_id = $1 AND slot_type = $2", strings.Join(sets, ", "))
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("update slot params: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("update slot params: %w", err)
	}
	return rows, nil
}

// AppendVote atomically records a vote on a non-terminal slot. The duplicate
// voter and round fullness guards are part of the UPDATE filter, so two
// interleaved requests can never both append the same voter or overfill the
// round. sql.ErrNoRows signals that a guard rejected the write.
func (r *AssignmentRepository) AppendVote(ctx context.Context, personID string, slotType models.SlotType, voterID string, like bool, maxVoters int) (*models.MissionSlot, error) {
	var slot models.MissionSlot
	err := r.db.GetContext(ctx, &slot, fmt.Sprintf(`UPDATE assignment_slots
SET voters = array_append(voters, $3),
    like_count = like_count + CASE WHEN $4 THEN 1 ELSE 0 END,
    dislike_count = dislike_count + CASE WHEN $4 THEN 0 ELSE 1 END
WHERE person_id = $1 AND slot_type = $2
  AND status IN ('active', 'pending_review')
  AND NOT ($3 = ANY(voters))
  AND COALESCE(array_length(voters, 1), 0) < $5
RETURNING %s`, slotColumns),
		personID, slotType, voterID, like, maxVoters)
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

// ResolveSlot commits the terminal status, the history event and the aura
// adjustment as one transaction. The conditional status update doubles as the
// exactly-once gate: if another resolution already landed, nothing is written
// and ErrAlreadyResolved is returned.
func (r *AssignmentRepository) ResolveSlot(ctx context.Context, params models.SlotResolution) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("resolve slot: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.ExecContext(ctx, `UPDATE assignment_slots SET status = $3
WHERE person_id = $1 AND slot_type = $2 AND status IN ('active', 'pending_review')`,
		params.PersonID, params.SlotType, params.Status)
	if err != nil {
		return fmt.Errorf("resolve slot status: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return ErrAlreadyResolved
	}

	if _, err := tx.NamedExecContext(ctx, `INSERT INTO history (id, user_id, mission_id, name, tipo, result, status, created, logro_name)
VALUES (:id, :user_id, :mission_id, :name, :tipo, :result, :status, :created, :logro_name)`, params.Event); err != nil {
		return fmt.Errorf("resolve slot archive: %w", err)
	}

	res, err = tx.ExecContext(ctx, `UPDATE profiles SET aura = aura + $2, updated_at = $3 WHERE user_id = $1`,
		params.PersonID, params.AuraDelta, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("resolve slot reward: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return fmt.Errorf("resolve slot reward: profile %s: %w", params.PersonID, sql.ErrNoRows)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("resolve slot: %w", err)
	}
	return nil
}
