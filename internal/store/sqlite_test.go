package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwaterman104/habitta-home-insight-platform-sub003/internal/model"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	st, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func seedHome(t *testing.T, st *SQLiteStore) *model.Home {
	t.Helper()
	home, err := st.CreateHome(context.Background(), model.Home{
		Address:          "512 Pelican Way",
		City:             "Tampa",
		State:            "FL",
		ConstructionYear: 2001,
		ClimateZone:      "hot_humid",
		Coastal:          true,
		Occupants:        3,
	})
	require.NoError(t, err)
	return home
}

func TestSQLite_HomeRoundTrip(t *testing.T) {
	st := newTestSQLite(t)
	ctx := context.Background()

	created := seedHome(t, st)
	require.NotEmpty(t, created.ID)

	got, err := st.GetHome(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "512 Pelican Way", got.Address)
	assert.Equal(t, 2001, got.ConstructionYear)
	assert.True(t, got.Coastal)
	assert.False(t, got.FreezeThaw)
	assert.Equal(t, 3, got.Occupants)

	homes, err := st.ListHomes(ctx)
	require.NoError(t, err)
	require.Len(t, homes, 1)
	assert.Equal(t, created.ID, homes[0].ID)
}

func TestSQLite_GetHome_NotFound(t *testing.T) {
	st := newTestSQLite(t)
	_, err := st.GetHome(context.Background(), "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSQLite_UpsertSystem(t *testing.T) {
	st := newTestSQLite(t)
	ctx := context.Background()
	home := seedHome(t, st)

	first, err := st.UpsertSystem(ctx, model.HomeSystem{
		HomeID:         home.ID,
		SystemType:     model.SystemHVAC,
		OwnerStatement: "replaced in 2016",
	})
	require.NoError(t, err)

	// Same home and system type: the row is replaced, not duplicated.
	_, err = st.UpsertSystem(ctx, model.HomeSystem{
		HomeID:         home.ID,
		SystemType:     model.SystemHVAC,
		Material:       "heat_pump",
		OwnerStatement: "replaced in 2018",
	})
	require.NoError(t, err)

	systems, err := st.ListSystems(ctx, home.ID)
	require.NoError(t, err)
	require.Len(t, systems, 1)
	assert.Equal(t, first.ID, systems[0].ID)
	assert.Equal(t, "heat_pump", systems[0].Material)
	assert.Equal(t, "replaced in 2018", systems[0].OwnerStatement)
	assert.Nil(t, systems[0].RecordedYear)
}

func TestSQLite_UpdateSystemResolution(t *testing.T) {
	st := newTestSQLite(t)
	ctx := context.Background()
	home := seedHome(t, st)

	sys, err := st.UpsertSystem(ctx, model.HomeSystem{HomeID: home.ID, SystemType: model.SystemRoof})
	require.NoError(t, err)

	year := 2015
	require.NoError(t, st.UpdateSystemResolution(ctx, sys.ID, &year, "permit_verified", 0.9))

	systems, err := st.ListSystems(ctx, home.ID)
	require.NoError(t, err)
	require.Len(t, systems, 1)
	require.NotNil(t, systems[0].RecordedYear)
	assert.Equal(t, 2015, *systems[0].RecordedYear)
	assert.Equal(t, "permit_verified", systems[0].RecordedSource)
	assert.InDelta(t, 0.9, systems[0].StoredConfidence, 0.001)

	err = st.UpdateSystemResolution(ctx, "missing", &year, "permit_verified", 0.9)
	require.Error(t, err)
}

func TestSQLite_PermitsRoundTrip(t *testing.T) {
	st := newTestSQLite(t)
	ctx := context.Background()
	home := seedHome(t, st)

	finalize := time.Date(2015, time.August, 20, 0, 0, 0, 0, time.UTC)
	n, err := st.InsertPermits(ctx, []model.PermitRow{
		{HomeID: home.ID, Description: "Re-roof with asphalt shingles", Status: "Final", FinalizeDate: &finalize, Valuation: 14500},
		{HomeID: home.ID, Description: "Water heater change out", Status: "Issued"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	permits, err := st.ListPermits(ctx, home.ID)
	require.NoError(t, err)
	require.Len(t, permits, 2)

	byDesc := map[string]model.PermitRow{}
	for _, p := range permits {
		byDesc[p.Description] = p
	}
	roof := byDesc["Re-roof with asphalt shingles"]
	require.NotNil(t, roof.FinalizeDate)
	assert.True(t, roof.FinalizeDate.Equal(finalize))
	assert.Nil(t, roof.IssueDate)
	assert.Equal(t, 14500.0, roof.Valuation)

	wh := byDesc["Water heater change out"]
	assert.Nil(t, wh.FinalizeDate)
	assert.Equal(t, "Issued", wh.Status)
}

func TestSQLite_MaintenanceEvents(t *testing.T) {
	st := newTestSQLite(t)
	ctx := context.Background()
	home := seedHome(t, st)

	older := time.Date(2022, time.March, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2023, time.March, 1, 0, 0, 0, 0, time.UTC)
	_, err := st.AddMaintenanceEvent(ctx, model.MaintenanceEvent{HomeID: home.ID, SystemType: model.SystemHVAC, ServicedAt: newer, Description: "annual tune-up"})
	require.NoError(t, err)
	_, err = st.AddMaintenanceEvent(ctx, model.MaintenanceEvent{HomeID: home.ID, SystemType: model.SystemHVAC, ServicedAt: older})
	require.NoError(t, err)

	events, err := st.ListMaintenanceEvents(ctx, home.ID)
	require.NoError(t, err)
	require.Len(t, events, 2)
	// Ordered by service date ascending.
	assert.True(t, events[0].ServicedAt.Before(events[1].ServicedAt))
}

func TestSQLite_EvaluationSnapshot(t *testing.T) {
	st := newTestSQLite(t)
	ctx := context.Background()
	home := seedHome(t, st)

	// No evaluation yet: nil result, no error.
	got, err := st.GetLatestEvaluation(ctx, home.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	year := 2015
	older := &model.EvaluationResult{
		HomeID:      home.ID,
		EvaluatedAt: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		Narrative:   model.NarrativeResult{Tag: model.PriorityStability},
	}
	newer := &model.EvaluationResult{
		HomeID:      home.ID,
		EvaluatedAt: time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
		Systems: []model.SystemEvaluation{{
			SystemType: model.SystemRoof,
			Install:    model.ResolvedInstall{SystemType: model.SystemRoof, Year: &year, Source: model.SourcePermitVerified, Confidence: 0.9},
		}},
		Narrative: model.NarrativeResult{Tag: model.PriorityUrgency, DominantSystem: model.SystemRoof},
	}
	require.NoError(t, st.SaveEvaluation(ctx, older))
	require.NoError(t, st.SaveEvaluation(ctx, newer))

	got, err = st.GetLatestEvaluation(ctx, home.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, model.PriorityUrgency, got.Narrative.Tag)
	require.Len(t, got.Systems, 1)
	require.NotNil(t, got.Systems[0].Install.Year)
	assert.Equal(t, 2015, *got.Systems[0].Install.Year)
}
