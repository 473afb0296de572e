package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwaterman104/habitta-home-insight-platform-sub003/internal/model"
)

func newMockPostgres(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPostgresFromPool(mock), mock
}

func TestPostgres_GetHome(t *testing.T) {
	st, mock := newMockPostgres(t)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT id, address, city, state").
		WithArgs("home-1").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "address", "city", "state", "construction_year", "climate_zone",
			"coastal", "freeze_thaw", "occupants", "created_at", "updated_at",
		}).AddRow("home-1", "512 Pelican Way", "Tampa", "FL", 2001, "hot_humid", true, false, 3, now, now))

	home, err := st.GetHome(context.Background(), "home-1")
	require.NoError(t, err)
	assert.Equal(t, "512 Pelican Way", home.Address)
	assert.Equal(t, 2001, home.ConstructionYear)
	assert.True(t, home.Coastal)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_GetHome_NotFound(t *testing.T) {
	st, mock := newMockPostgres(t)

	mock.ExpectQuery("SELECT id, address, city, state").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := st.GetHome(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_ListSystems(t *testing.T) {
	st, mock := newMockPostgres(t)
	now := time.Now().UTC()
	year := 2015

	mock.ExpectQuery("SELECT id, home_id, system_type, material").
		WithArgs("home-1").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "home_id", "system_type", "material", "recorded_year",
			"recorded_source", "stored_confidence", "owner_statement", "created_at", "updated_at",
		}).
			AddRow("sys-1", "home-1", "roof", "asphalt", &year, "permit_verified", 0.9, "", now, now).
			AddRow("sys-2", "home-1", "hvac", "", (*int)(nil), "", 0.0, "replaced in 2016", now, now))

	systems, err := st.ListSystems(context.Background(), "home-1")
	require.NoError(t, err)
	require.Len(t, systems, 2)

	assert.Equal(t, model.SystemRoof, systems[0].SystemType)
	require.NotNil(t, systems[0].RecordedYear)
	assert.Equal(t, 2015, *systems[0].RecordedYear)

	assert.Equal(t, model.SystemHVAC, systems[1].SystemType)
	assert.Nil(t, systems[1].RecordedYear)
	assert.Equal(t, "replaced in 2016", systems[1].OwnerStatement)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_UpdateSystemResolution(t *testing.T) {
	st, mock := newMockPostgres(t)
	year := 2015

	mock.ExpectExec("UPDATE home_systems SET recorded_year").
		WithArgs(&year, "permit_verified", 0.9, pgxmock.AnyArg(), "sys-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := st.UpdateSystemResolution(context.Background(), "sys-1", &year, "permit_verified", 0.9)
	require.NoError(t, err)

	mock.ExpectExec("UPDATE home_systems SET recorded_year").
		WithArgs(&year, "permit_verified", 0.9, pgxmock.AnyArg(), "missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err = st.UpdateSystemResolution(context.Background(), "missing", &year, "permit_verified", 0.9)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_InsertPermits_Transactional(t *testing.T) {
	st, mock := newMockPostgres(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO permits").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO permits").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	n, err := st.InsertPermits(context.Background(), []model.PermitRow{
		{HomeID: "home-1", Description: "Re-roof"},
		{HomeID: "home-1", Description: "Water heater change out"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_GetLatestEvaluation(t *testing.T) {
	st, mock := newMockPostgres(t)

	// No snapshot yet: nil, nil.
	mock.ExpectQuery("SELECT result FROM evaluations").
		WithArgs("home-1").
		WillReturnError(pgx.ErrNoRows)

	got, err := st.GetLatestEvaluation(context.Background(), "home-1")
	require.NoError(t, err)
	assert.Nil(t, got)

	stored := &model.EvaluationResult{
		ID:     "eval-1",
		HomeID: "home-1",
		Narrative: model.NarrativeResult{
			Tag:            model.PriorityPlanning,
			DominantSystem: model.SystemWaterHeater,
		},
	}
	data, err := json.Marshal(stored)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT result FROM evaluations").
		WithArgs("home-1").
		WillReturnRows(pgxmock.NewRows([]string{"result"}).AddRow(data))

	got, err = st.GetLatestEvaluation(context.Background(), "home-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, model.PriorityPlanning, got.Narrative.Tag)
	assert.Equal(t, model.SystemWaterHeater, got.Narrative.DominantSystem)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_SaveEvaluation_AssignsID(t *testing.T) {
	st, mock := newMockPostgres(t)

	mock.ExpectExec("INSERT INTO evaluations").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	result := &model.EvaluationResult{HomeID: "home-1", EvaluatedAt: time.Now().UTC()}
	require.NoError(t, st.SaveEvaluation(context.Background(), result))
	assert.NotEmpty(t, result.ID)

	assert.NoError(t, mock.ExpectationsWereMet())
}
