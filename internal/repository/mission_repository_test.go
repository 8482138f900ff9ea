package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironbros/aura-api/internal/models"
)

func missionRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "nombre", "descripcion", "recompensa", "imagen", "logro_nombre", "logro_descripcion", "logro_pegatina"})
}

func TestMissionRepositoryFindByIDFoldsLogro(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewMissionRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM missions WHERE id = $1")).
		WithArgs("2").
		WillReturnRows(missionRows().
			AddRow("2", "Constancia de hierro", "Entrena dos semanas seguidas.", int64(100), nil, "Hermano de hierro", "Dos semanas sin fallar.", "hierro.png"))

	mission, err := repo.FindByID(context.Background(), "2")
	require.NoError(t, err)
	require.NotNil(t, mission.Logro)
	assert.Equal(t, "Hermano de hierro", mission.Logro.Nombre)
	assert.Equal(t, int64(100), mission.Recompensa)
}

func TestMissionRepositoryFindByIDMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewMissionRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM missions WHERE id = $1")).
		WithArgs("99").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "99")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestMissionRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewMissionRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM missions ORDER BY id::integer")).
		WillReturnRows(missionRows().
			AddRow("1", "Primer paso", "Primera semana.", int64(50), nil, nil, nil, nil).
			AddRow("2", "Constancia de hierro", "Dos semanas.", int64(100), nil, "Hermano de hierro", nil, nil))

	missions, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, missions, 2)
	assert.Nil(t, missions[0].Logro)
	require.NotNil(t, missions[1].Logro)
	assert.Equal(t, "Hermano de hierro", missions[1].Logro.Nombre)
}

func TestMissionRepositorySeed(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewMissionRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO missions")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO missions")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Seed(context.Background(), []models.Mission{
		{ID: "1", Nombre: "Primer paso", Descripcion: "Primera semana.", Recompensa: 50},
		{ID: "2", Nombre: "Constancia", Descripcion: "Dos semanas.", Recompensa: 100,
			Logro: &models.MissionLogro{Nombre: "Hermano de hierro"}},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
