package report

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/verdantcity/greenspace-cli/internal/model"
)

func testRun() *model.Run {
	return &model.Run{
		ID:     "run-1",
		City:   "Portland",
		Status: model.RunStatusCompleted,
		Result: &model.AnalysisResult{
			GreenSpaceHa:        1234.5,
			ResidentialHa:       8765.4,
			GreenFeatures:       42,
			ResidentialFeatures: 1200,
			GreenSharePct:       12.3,
		},
	}
}

func TestSummary(t *testing.T) {
	out := Summary(testRun())

	assert.Contains(t, out, "Urban Green Space Analysis - Portland")
	assert.Contains(t, out, "Green space")
	assert.Contains(t, out, "Residential")
	// Thousands grouping from the message printer.
	assert.Contains(t, out, "1,234.5")
	assert.Contains(t, out, "8,765.4")
	assert.Contains(t, out, "1,200")
	assert.Contains(t, out, "12.3%")
}

func TestSummary_NoResult(t *testing.T) {
	run := testRun()
	run.Result = nil
	run.Status = model.RunStatusFailed

	out := Summary(run)
	assert.Contains(t, out, "No results recorded")
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), XLSXName("Portland"))

	features := []model.Feature{
		{Layer: model.LayerLanduse, FClass: "park", Name: "Laurelhurst Park", Category: model.CategoryGreenSpace, AreaHa: 10.7},
		{Layer: model.LayerNatural, FClass: "forest", Category: model.CategoryGreenSpace, AreaHa: 103.2},
	}
	require.NoError(t, WriteXLSX(path, testRun(), features))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, f.Sheets, 2)

	summary := f.Sheet["Summary"]
	require.NotNil(t, summary)
	require.GreaterOrEqual(t, len(summary.Rows), 4)
	assert.Equal(t, "Green space", summary.Rows[1].Cells[3].String())

	featSheet := f.Sheet["Features"]
	require.NotNil(t, featSheet)
	require.Len(t, featSheet.Rows, 3)
	assert.Equal(t, "Laurelhurst Park", featSheet.Rows[1].Cells[2].String())

	area, err := featSheet.Rows[2].Cells[4].Float()
	require.NoError(t, err)
	assert.InDelta(t, 103.2, area, 1e-9)
}

func TestWriteXLSX_NoResult(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	run := testRun()
	run.Result = nil

	require.NoError(t, WriteXLSX(path, run, nil))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	assert.Len(t, f.Sheet["Summary"].Rows, 1)
}

func TestXLSXName(t *testing.T) {
	assert.Equal(t, "urban_green_space_report_Portland.xlsx", XLSXName("Portland"))
}
