package area

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
)

// buildMultiPolygon assembles a MultiPolygon from flat ring coordinates.
// The first ring of each polygon is the exterior, the rest are holes.
func buildMultiPolygon(t *testing.T, polys ...[][]float64) *geom.MultiPolygon {
	t.Helper()
	mp := geom.NewMultiPolygon(geom.XY)
	for _, rings := range polys {
		poly := geom.NewPolygon(geom.XY)
		for _, flat := range rings {
			require.NoError(t, poly.Push(geom.NewLinearRingFlat(geom.XY, flat)))
		}
		require.NoError(t, mp.Push(poly))
	}
	return mp
}

func TestHectares_PlanarSquare(t *testing.T) {
	// 100m x 100m square = exactly one hectare.
	mp := buildMultiPolygon(t, [][]float64{
		{0, 0, 100, 0, 100, 100, 0, 100, 0, 0},
	})

	assert.InDelta(t, 1.0, Hectares(mp, false), 1e-9)
}

func TestHectares_PlanarHoleSubtracts(t *testing.T) {
	mp := buildMultiPolygon(t, [][]float64{
		{0, 0, 100, 0, 100, 100, 0, 100, 0, 0},
		{25, 25, 75, 25, 75, 75, 25, 75, 25, 25}, // 50x50 hole
	})

	assert.InDelta(t, 0.75, Hectares(mp, false), 1e-9)
}

func TestHectares_PlanarOrientationIndependent(t *testing.T) {
	ccw := buildMultiPolygon(t, [][]float64{
		{0, 0, 100, 0, 100, 100, 0, 100, 0, 0},
	})
	cw := buildMultiPolygon(t, [][]float64{
		{0, 0, 0, 100, 100, 100, 100, 0, 0, 0},
	})

	assert.InDelta(t, Hectares(ccw, false), Hectares(cw, false), 1e-9)
}

func TestHectares_SphericalEquatorSquare(t *testing.T) {
	// 1 degree x 1 degree at the equator. The exact spherical area is
	// R^2 * dLng * (sin(lat2) - sin(lat1)).
	mp := buildMultiPolygon(t, [][]float64{
		{0, 0, 1, 0, 1, 1, 0, 1, 0, 0},
	})

	rad := math.Pi / 180
	expectedSqm := earthRadiusM * earthRadiusM * rad * math.Sin(rad)

	assert.InEpsilon(t, expectedSqm/sqmPerHectare, Hectares(mp, true), 1e-9)
}

func TestHectares_SumOfParts(t *testing.T) {
	left := buildMultiPolygon(t, [][]float64{
		{0, 0, 100, 0, 100, 100, 0, 100, 0, 0},
	})
	right := buildMultiPolygon(t, [][]float64{
		{100, 0, 200, 0, 200, 100, 100, 100, 100, 0},
	})
	both := buildMultiPolygon(t,
		[][]float64{{0, 0, 100, 0, 100, 100, 0, 100, 0, 0}},
		[][]float64{{100, 0, 200, 0, 200, 100, 100, 100, 100, 0}},
	)

	assert.InDelta(t,
		Hectares(left, false)+Hectares(right, false),
		Hectares(both, false), 1e-9)
}

func TestHectares_Degenerate(t *testing.T) {
	assert.Zero(t, Hectares(nil, false))

	line := buildMultiPolygon(t, [][]float64{
		{0, 0, 100, 100, 0, 0},
	})
	assert.Zero(t, Hectares(line, false))
}

func TestIsGeographic(t *testing.T) {
	lonlat := buildMultiPolygon(t, [][]float64{
		{-122.6, 45.5, -122.5, 45.5, -122.5, 45.6, -122.6, 45.6, -122.6, 45.5},
	})
	projected := buildMultiPolygon(t, [][]float64{
		{500000, 5040000, 500100, 5040000, 500100, 5040100, 500000, 5040100, 500000, 5040000},
	})

	assert.True(t, IsGeographic(lonlat))
	assert.False(t, IsGeographic(projected))
	assert.True(t, IsGeographic(nil))
}
