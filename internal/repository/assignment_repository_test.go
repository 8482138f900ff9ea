package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironbros/aura-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	cleanup := func() {
		_ = sqlxDB.Close()
		db.Close()
	}
	return sqlxDB, mock, cleanup
}

func slotRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"person_id", "slot_type", "mission_id", "mission_name", "status", "creation_date", "result", "like_count", "dislike_count", "voters"})
}

func TestAssignmentRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO assignments")).
		WithArgs("user-1", "Marco", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO assignment_slots")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Create(context.Background(), &models.Assignment{
		PersonID:   "user-1",
		PersonName: "Marco",
		Mission: &models.MissionSlot{
			PersonID:    "user-1",
			SlotType:    models.SlotMain,
			MissionID:   "1",
			MissionName: "Primer paso",
			Status:      models.StatusActive,
		},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryCreateDuplicate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO assignments")).
		WithArgs("user-1", "Marco", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &models.Assignment{
		PersonID:   "user-1",
		PersonName: "Marco",
		Mission:    &models.MissionSlot{PersonID: "user-1", SlotType: models.SlotMain, MissionID: "1"},
	})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestAssignmentRepositoryFindByPerson(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT person_id, person_name, created_at, updated_at FROM assignments")).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"person_id", "person_name", "created_at", "updated_at"}).
			AddRow("user-1", "Marco", now, now))
	mock.ExpectQuery(regexp.QuoteMeta("FROM assignment_slots WHERE person_id = $1")).
		WithArgs("user-1").
		WillReturnRows(slotRows().
			AddRow("user-1", "mission", "2", "Constancia de hierro", "active", now, "", 1, 0, "{user-2}").
			AddRow("user-1", "secondary_mission", "sm-1", "Reto extra", "pending_review", now, "", 0, 0, "{}"))

	assignment, err := repo.FindByPerson(context.Background(), "user-1")
	require.NoError(t, err)
	require.NotNil(t, assignment.Mission)
	require.NotNil(t, assignment.SecondaryMission)
	assert.Nil(t, assignment.GroupMission)
	assert.Equal(t, "2", assignment.Mission.MissionID)
	assert.True(t, assignment.Mission.HasVoter("user-2"))
}

func TestAssignmentRepositoryAppendVote(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE assignment_slots")).
		WithArgs("user-1", models.SlotMain, "user-2", true, 3).
		WillReturnRows(slotRows().
			AddRow("user-1", "mission", "2", "Constancia de hierro", "active", now, "", 1, 0, "{user-2}"))

	slot, err := repo.AppendVote(context.Background(), "user-1", models.SlotMain, "user-2", true, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, slot.Like)
	assert.Equal(t, pq.StringArray{"user-2"}, slot.Voters)
}

func TestAssignmentRepositoryAppendVoteRejected(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE assignment_slots")).
		WithArgs("user-1", models.SlotMain, "user-2", false, 1).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.AppendVote(context.Background(), "user-1", models.SlotMain, "user-2", false, 1)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestAssignmentRepositoryResolveSlot(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE assignment_slots SET status = $3")).
		WithArgs("user-1", models.SlotMain, models.StatusCompleted).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO history")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE profiles SET aura = aura + $2")).
		WithArgs("user-1", int64(100), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.ResolveSlot(context.Background(), models.SlotResolution{
		PersonID: "user-1",
		SlotType: models.SlotMain,
		Status:   models.StatusCompleted,
		Event: &models.Event{
			ID:        "ev-1",
			UserID:    "user-1",
			MissionID: "2",
			Name:      "Constancia de hierro",
			Tipo:      models.SlotMain,
			Status:    models.StatusCompleted,
			Created:   time.Now().UTC(),
		},
		AuraDelta: 100,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryResolveSlotAlreadyResolved(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE assignment_slots SET status = $3")).
		WithArgs("user-1", models.SlotMain, models.StatusFailed).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.ResolveSlot(context.Background(), models.SlotResolution{
		PersonID:  "user-1",
		SlotType:  models.SlotMain,
		Status:    models.StatusFailed,
		Event:     &models.Event{ID: "ev-1", UserID: "user-1"},
		AuraDelta: -100,
	})
	assert.ErrorIs(t, err, ErrAlreadyResolved)
}

func TestAssignmentRepositoryResolveSlotMissingProfile(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE assignment_slots SET status = $3")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO history")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE profiles SET aura = aura + $2")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.ResolveSlot(context.Background(), models.SlotResolution{
		PersonID:  "user-1",
		SlotType:  models.SlotMain,
		Status:    models.StatusCompleted,
		Event:     &models.Event{ID: "ev-1", UserID: "user-1"},
		AuraDelta: 100,
	})
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestAssignmentRepositoryUpdateSlotParams(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	status := models.StatusPendingReview
	result := "subida de video"
	mock.ExpectExec(regexp.QuoteMeta("UPDATE assignment_slots SET status = $3, result = $4 WHERE person_id = $1 AND slot_type = $2")).
		WithArgs("user-1", models.SlotSecondary, status, result).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rows, err := repo.UpdateSlotParams(context.Background(), "user-1", models.SlotSecondary, models.SlotParams{
		Status: &status,
		Result: &result,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)
}

func TestAssignmentRepositoryUpdateSlotParamsEmpty(t *testing.T) {
	db, _, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	_, err := repo.UpdateSlotParams(context.Background(), "user-1", models.SlotMain, models.SlotParams{})
	assert.Error(t, err)
}
