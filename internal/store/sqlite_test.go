package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/verdantcity/greenspace-cli/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "greenspace.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func testMultiPolygon(t *testing.T) *geom.MultiPolygon {
	t.Helper()
	mp := geom.NewMultiPolygon(geom.XY).SetSRID(4326)
	poly := geom.NewPolygon(geom.XY)
	require.NoError(t, poly.Push(geom.NewLinearRingFlat(geom.XY,
		[]float64{-122.62, 45.52, -122.62, 45.53, -122.61, 45.53, -122.61, 45.52, -122.62, 45.52},
	)))
	require.NoError(t, mp.Push(poly))
	return mp
}

func TestSQLite_RunLifecycle(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, "Portland")
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusRunning, run.Status)

	result := &model.AnalysisResult{
		GreenSpaceHa:        120.5,
		ResidentialHa:       840.2,
		GreenFeatures:       34,
		ResidentialFeatures: 210,
		GreenSharePct:       12.5,
	}
	require.NoError(t, st.CompleteRun(ctx, run.ID, result))

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, "Portland", got.City)
	assert.Equal(t, model.RunStatusCompleted, got.Status)
	require.NotNil(t, got.Result)
	assert.InDelta(t, 120.5, got.Result.GreenSpaceHa, 1e-9)
	assert.Equal(t, 34, got.Result.GreenFeatures)
}

func TestSQLite_FailRun(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, "Portland")
	require.NoError(t, err)
	require.NoError(t, st.FailRun(ctx, run.ID))

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusFailed, got.Status)
}

func TestSQLite_GetRun_NotFound(t *testing.T) {
	st := newTestSQLiteStore(t)

	_, err := st.GetRun(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSQLite_CompleteRun_NotFound(t *testing.T) {
	st := newTestSQLiteStore(t)

	err := st.CompleteRun(context.Background(), "missing", &model.AnalysisResult{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSQLite_ListRuns(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run1, err := st.CreateRun(ctx, "Portland")
	require.NoError(t, err)
	_, err = st.CreateRun(ctx, "Seattle")
	require.NoError(t, err)
	require.NoError(t, st.CompleteRun(ctx, run1.ID, &model.AnalysisResult{}))

	all, err := st.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	completed, err := st.ListRuns(ctx, RunFilter{Status: model.RunStatusCompleted})
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.Equal(t, run1.ID, completed[0].ID)

	portland, err := st.ListRuns(ctx, RunFilter{City: "Portland"})
	require.NoError(t, err)
	assert.Len(t, portland, 1)

	limited, err := st.ListRuns(ctx, RunFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestSQLite_FeatureRoundTrip(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, "Portland")
	require.NoError(t, err)

	features := []model.Feature{
		{
			Layer:    model.LayerLanduse,
			FClass:   "park",
			Name:     "Laurelhurst Park",
			Category: model.CategoryGreenSpace,
			AreaHa:   10.7,
			Geometry: testMultiPolygon(t),
		},
		{
			Layer:    model.LayerLanduse,
			FClass:   "residential",
			Category: model.CategoryResidential,
			AreaHa:   55.0,
		},
	}
	require.NoError(t, st.SaveFeatures(ctx, run.ID, features))

	got, err := st.FeaturesByRun(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)

	var park *model.Feature
	for i := range got {
		if got[i].FClass == "park" {
			park = &got[i]
		}
	}
	require.NotNil(t, park)
	assert.Equal(t, "Laurelhurst Park", park.Name)
	assert.Equal(t, model.CategoryGreenSpace, park.Category)
	assert.InDelta(t, 10.7, park.AreaHa, 1e-9)
	require.NotNil(t, park.Geometry)
	assert.Equal(t, 1, park.Geometry.NumPolygons())
	assert.Equal(t, 4326, park.Geometry.SRID())
}

func TestSQLite_FeaturesByRun_Empty(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, "Portland")
	require.NoError(t, err)

	got, err := st.FeaturesByRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Empty(t, got)
}
