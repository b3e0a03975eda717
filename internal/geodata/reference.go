package geodata

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"boundary-georef/internal/crs"
	"boundary-georef/pkg/geometry"
)

// mercatorThreshold separates geographic-degree coordinates from projected
// meters. Anything with |coord| beyond this cannot be WGS84 degrees.
const mercatorThreshold = 1000.0

// LoadReference reads the largest polygon exterior ring from a GeoJSON file.
// Multiple polygons are unioned first, so overlapping features are measured
// as one region. Coordinates that are clearly projected meters are
// reprojected to degrees through proj when one is supplied.
func LoadReference(path string, proj crs.Projection) (geometry.Ring, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("geodata: read reference: %w", err)
	}
	polys, err := collectPolygons(data)
	if err != nil {
		return nil, err
	}
	if len(polys) == 0 {
		return nil, fmt.Errorf("%w: no polygon found in %s", ErrMalformedReferenceGeometry, path)
	}
	if len(polys) > 1 {
		merged, err := MultiToGeos(polys)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedReferenceGeometry, err)
		}
		unioned, err := FromGeos(merged)
		merged.Destroy()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedReferenceGeometry, err)
		}
		if len(unioned) > 0 {
			polys = unioned
		}
	}

	best := polys[0]
	bestArea := math.Abs(best.Area())
	for _, p := range polys[1:] {
		if a := math.Abs(p.Area()); a > bestArea {
			best, bestArea = p, a
		}
	}
	ring := best.Exterior.Open()
	if len(ring) < 3 {
		return nil, fmt.Errorf("%w: exterior ring has %d points", ErrMalformedReferenceGeometry, len(ring))
	}

	if proj != nil && looksProjected(ring) {
		out := make(geometry.Ring, len(ring))
		for i, pt := range ring {
			lon, lat := proj.ToWGS84(pt.X, pt.Y)
			out[i] = geometry.Point2D{X: lon, Y: lat}
		}
		ring = out
	}
	return ring, nil
}

func looksProjected(ring geometry.Ring) bool {
	for _, pt := range ring {
		if math.Abs(pt.X) > mercatorThreshold || math.Abs(pt.Y) > mercatorThreshold {
			return true
		}
	}
	return false
}

// collectPolygons accepts a FeatureCollection, a single Feature or a bare
// geometry document.
func collectPolygons(data []byte) ([]geometry.Polygon, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedReferenceGeometry, err)
	}
	switch probe.Type {
	case "FeatureCollection":
		var fc FeatureCollection
		if err := json.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedReferenceGeometry, err)
		}
		var out []geometry.Polygon
		for _, f := range fc.Features {
			if len(f.Geometry) == 0 {
				continue
			}
			polys, err := DecodeGeometry(f.Geometry)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrMalformedReferenceGeometry, err)
			}
			out = append(out, polys...)
		}
		return out, nil
	case "Feature":
		var f Feature
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedReferenceGeometry, err)
		}
		polys, err := DecodeGeometry(f.Geometry)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedReferenceGeometry, err)
		}
		return polys, nil
	default:
		polys, err := DecodeGeometry(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedReferenceGeometry, err)
		}
		return polys, nil
	}
}
