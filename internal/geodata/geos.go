package geodata

import (
	"encoding/json"
	"fmt"

	"github.com/twpayne/go-geos"

	"boundary-georef/pkg/geometry"
)

// ToGeos converts a polygon into a GEOS geometry. Conversion goes through
// GeoJSON so both sides agree on ring closure and winding.
func ToGeos(p geometry.Polygon) (*geos.Geom, error) {
	raw, err := EncodePolygon(p)
	if err != nil {
		return nil, err
	}
	g, err := geos.NewGeomFromGeoJSON(string(raw))
	if err != nil {
		return nil, fmt.Errorf("geodata: to geos: %w", err)
	}
	return g, nil
}

// MultiToGeos converts polygons into a single GEOS geometry, unioning when
// more than one polygon is present.
func MultiToGeos(polys []geometry.Polygon) (*geos.Geom, error) {
	if len(polys) == 0 {
		return nil, fmt.Errorf("geodata: no polygons to convert")
	}
	acc, err := ToGeos(polys[0])
	if err != nil {
		return nil, err
	}
	for _, p := range polys[1:] {
		g, err := ToGeos(p)
		if err != nil {
			acc.Destroy()
			return nil, err
		}
		merged := acc.Union(g)
		g.Destroy()
		acc.Destroy()
		acc = merged
	}
	return acc, nil
}

// FromGeos extracts polygons from a GEOS geometry. Non-areal parts are
// dropped; an empty geometry yields an empty slice.
func FromGeos(g *geos.Geom) ([]geometry.Polygon, error) {
	if g == nil || g.IsEmpty() {
		return nil, nil
	}
	raw := g.ToGeoJSON(-1)
	var env Geometry
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return nil, fmt.Errorf("geodata: from geos: %w", err)
	}
	return decodeTyped(env)
}
