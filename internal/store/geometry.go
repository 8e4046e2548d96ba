package store

import (
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkb"
)

// encodeGeometry marshals a MultiPolygon to EWKB bytes. Nil geometry
// encodes as nil.
func encodeGeometry(mp *geom.MultiPolygon) ([]byte, error) {
	if mp == nil {
		return nil, nil
	}
	data, err := ewkb.Marshal(mp, ewkb.NDR)
	if err != nil {
		return nil, eris.Wrap(err, "store: encode geometry")
	}
	return data, nil
}

// decodeGeometry unmarshals EWKB bytes back into a MultiPolygon. Nil or
// empty input decodes as nil.
func decodeGeometry(data []byte) (*geom.MultiPolygon, error) {
	if len(data) == 0 {
		return nil, nil
	}
	g, err := ewkb.Unmarshal(data)
	if err != nil {
		return nil, eris.Wrap(err, "store: decode geometry")
	}
	mp, ok := g.(*geom.MultiPolygon)
	if !ok {
		return nil, eris.Errorf("store: unexpected geometry type %T", g)
	}
	return mp, nil
}
