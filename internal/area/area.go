// Package area computes polygon areas in hectares.
//
// Projected coordinates get the planar shoelace formula; geographic
// (lon/lat) coordinates get a spherical ring area so hectares come out
// right without a projection step.
package area

import (
	"math"

	"github.com/twpayne/go-geom"
)

// Mean authalic Earth radius in meters.
const earthRadiusM = 6371008.8

// Square meters per hectare.
const sqmPerHectare = 10000.0

// Hectares returns the area of a MultiPolygon in hectares. Interior rings
// subtract from their exterior ring. geographic selects spherical math for
// lon/lat coordinates; otherwise coordinates are treated as meters.
// The result is never negative.
func Hectares(mp *geom.MultiPolygon, geographic bool) float64 {
	if mp == nil {
		return 0
	}

	var sqm float64
	for i := 0; i < mp.NumPolygons(); i++ {
		poly := mp.Polygon(i)
		for j := 0; j < poly.NumLinearRings(); j++ {
			ring := ringArea(poly.LinearRing(j), geographic)
			if j == 0 {
				sqm += ring
			} else {
				sqm -= ring
			}
		}
	}

	if sqm < 0 {
		sqm = 0
	}
	return sqm / sqmPerHectare
}

// IsGeographic reports whether every coordinate of the MultiPolygon fits in
// the lon/lat value range. Projected data (meters, feet) falls outside it
// almost immediately, so this is a reliable heuristic for OSM extracts.
func IsGeographic(mp *geom.MultiPolygon) bool {
	if mp == nil {
		return true
	}
	flat := mp.FlatCoords()
	stride := mp.Stride()
	for i := 0; i+1 < len(flat); i += stride {
		x, y := flat[i], flat[i+1]
		if x < -180 || x > 180 || y < -90 || y > 90 {
			return false
		}
	}
	return true
}

// ringArea returns the absolute area of a ring in square meters.
func ringArea(ring *geom.LinearRing, geographic bool) float64 {
	if geographic {
		return sphericalRingArea(ring)
	}
	return planarRingArea(ring)
}

// planarRingArea applies the shoelace formula to a closed ring whose
// coordinates are already in meters.
func planarRingArea(ring *geom.LinearRing) float64 {
	n := ring.NumCoords()
	if n < 3 {
		return 0
	}

	var sum float64
	for i := 0; i < n; i++ {
		p := ring.Coord(i)
		q := ring.Coord((i + 1) % n)
		sum += p[0]*q[1] - q[0]*p[1]
	}
	return math.Abs(sum / 2)
}

// sphericalRingArea computes the area of a lon/lat ring on a sphere using
// the Chamberlain–Duquette formula.
func sphericalRingArea(ring *geom.LinearRing) float64 {
	n := ring.NumCoords()
	if n < 3 {
		return 0
	}

	var sum float64
	for i := 0; i < n; i++ {
		p := ring.Coord(i)
		q := ring.Coord((i + 1) % n)
		lng1 := p[0] * math.Pi / 180
		lng2 := q[0] * math.Pi / 180
		lat1 := p[1] * math.Pi / 180
		lat2 := q[1] * math.Pi / 180
		sum += (lng2 - lng1) * (2 + math.Sin(lat1) + math.Sin(lat2))
	}

	return math.Abs(sum * earthRadiusM * earthRadiusM / 2)
}
