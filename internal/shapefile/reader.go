// Package shapefile reads polygon layers from ESRI shapefiles.
package shapefile

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/htmlindex"
)

// RawFeature is one polygon record with its attributes, before
// classification.
type RawFeature struct {
	Attrs    map[string]string
	Geometry *geom.MultiPolygon
}

// Options configures shapefile reading.
type Options struct {
	// Attrs lists the DBF column names to extract (case-insensitive).
	// Columns missing from the file come back as empty strings.
	Attrs []string

	// Charset names the DBF text encoding. Empty or "utf-8" means no
	// transcoding. OSM extracts occasionally ship windows-1252.
	Charset string
}

// Find locates a shapefile in dir whose name contains pattern
// (case-insensitive), mirroring a `*pattern*.shp` glob.
func Find(dir, pattern string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", eris.Wrapf(err, "shapefile: read workspace %s", dir)
	}

	pattern = strings.ToLower(pattern)
	for _, e := range entries {
		name := strings.ToLower(e.Name())
		if e.IsDir() || !strings.HasSuffix(name, ".shp") {
			continue
		}
		if strings.Contains(name, pattern) {
			return filepath.Join(dir, e.Name()), nil
		}
	}

	return "", eris.Errorf("shapefile: no *%s*.shp found in %s", pattern, dir)
}

// ReadPolygons reads all polygon records from a shapefile. Non-polygon
// shapes and records with degenerate geometry are skipped with a debug log.
func ReadPolygons(path string, opts Options) ([]RawFeature, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "shapefile: open %s", path)
	}
	defer func() { _ = reader.Close() }()

	decode, err := attributeDecoder(opts.Charset)
	if err != nil {
		return nil, err
	}

	// Build field name -> index map.
	fields := reader.Fields()
	fieldIdx := make(map[string]int, len(fields))
	for i, f := range fields {
		name := strings.TrimRight(f.String(), "\x00")
		fieldIdx[strings.ToLower(name)] = i
	}

	var features []RawFeature
	var skipped int

	for reader.Next() {
		_, shape := reader.Shape()

		poly, ok := shape.(*shp.Polygon)
		if !ok {
			skipped++
			continue
		}

		mp := toMultiPolygon(poly)
		if mp == nil {
			skipped++
			continue
		}

		attrs := make(map[string]string, len(opts.Attrs))
		for _, col := range opts.Attrs {
			key := strings.ToLower(col)
			idx, ok := fieldIdx[key]
			if !ok {
				attrs[key] = ""
				continue
			}
			val := strings.TrimRight(reader.Attribute(idx), "\x00")
			attrs[key] = decode(strings.TrimSpace(val))
		}

		features = append(features, RawFeature{Attrs: attrs, Geometry: mp})
	}

	if err := reader.Err(); err != nil {
		return nil, eris.Wrapf(err, "shapefile: read %s", path)
	}

	if skipped > 0 {
		zap.L().Debug("shapefile: skipped records",
			zap.String("path", path),
			zap.Int("skipped", skipped),
		)
	}

	return features, nil
}

// attributeDecoder returns a transcoding function for DBF strings.
func attributeDecoder(charset string) (func(string) string, error) {
	charset = strings.ToLower(strings.TrimSpace(charset))
	if charset == "" || charset == "utf-8" || charset == "utf8" {
		return func(s string) string { return s }, nil
	}

	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, eris.Wrapf(err, "shapefile: unknown charset %q", charset)
	}

	decoder := enc.NewDecoder()
	return func(s string) string {
		out, err := decoder.String(s)
		if err != nil {
			return s
		}
		return out
	}, nil
}

// toMultiPolygon converts a shapefile Polygon to a geom.MultiPolygon.
// Shapefile exterior rings wind clockwise and holes counter-clockwise;
// each counter-clockwise part attaches as a hole to the preceding exterior.
func toMultiPolygon(p *shp.Polygon) *geom.MultiPolygon {
	if p == nil || p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}

	mp := geom.NewMultiPolygon(geom.XY).SetSRID(4326)
	var current *geom.Polygon

	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		var end int32
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		} else {
			end = int32(len(p.Points))
		}

		flat := make([]float64, 0, (end-start)*2)
		for j := start; j < end; j++ {
			flat = append(flat, p.Points[j].X, p.Points[j].Y)
		}

		ring := geom.NewLinearRingFlat(geom.XY, flat)

		if signedArea(flat) < 0 || current == nil {
			// Clockwise: new exterior ring. The first part always starts a
			// polygon regardless of winding, for tolerance of sloppy writers.
			if current != nil {
				if err := mp.Push(current); err != nil {
					zap.L().Debug("shapefile: skipping malformed part", zap.Int32("part", i), zap.Error(err))
				}
			}
			current = geom.NewPolygon(geom.XY)
			if err := current.Push(ring); err != nil {
				zap.L().Debug("shapefile: skipping malformed ring", zap.Int32("part", i), zap.Error(err))
				current = nil
			}
			continue
		}

		// Counter-clockwise: hole in the current exterior.
		if err := current.Push(ring); err != nil {
			zap.L().Debug("shapefile: skipping malformed hole", zap.Int32("part", i), zap.Error(err))
		}
	}

	if current != nil {
		if err := mp.Push(current); err != nil {
			zap.L().Debug("shapefile: skipping malformed part", zap.Error(err))
		}
	}

	if mp.NumPolygons() == 0 {
		return nil
	}
	return mp
}

// signedArea computes twice the signed shoelace area of a flat XY ring.
// Positive means counter-clockwise.
func signedArea(flat []float64) float64 {
	n := len(flat) / 2
	if n < 3 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += flat[2*i]*flat[2*j+1] - flat[2*j]*flat[2*i+1]
	}
	return sum
}
