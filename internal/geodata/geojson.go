// Package geodata handles GeoJSON interchange and the bridge between the
// in-memory polygon model and the GEOS geometry kernel.
package geodata

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"boundary-georef/pkg/geometry"
)

// ErrMalformedReferenceGeometry is returned when a reference GeoJSON file
// contains no usable polygon.
var ErrMalformedReferenceGeometry = errors.New("geodata: malformed reference geometry")

// FeatureCollection is a GeoJSON feature collection envelope.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// Feature is a GeoJSON feature. Geometry stays raw so polygon and
// multi-polygon payloads pass through one code path.
type Feature struct {
	Type       string                 `json:"type"`
	Geometry   json.RawMessage        `json:"geometry"`
	Properties map[string]interface{} `json:"properties"`
}

// Geometry is the typed GeoJSON geometry envelope used when coordinates need
// decoding.
type Geometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates,omitempty"`
	Geometries  []Geometry      `json:"geometries,omitempty"`
}

// EncodePolygon builds a GeoJSON geometry for a single polygon.
func EncodePolygon(p geometry.Polygon) (json.RawMessage, error) {
	return json.Marshal(struct {
		Type        string        `json:"type"`
		Coordinates [][][]float64 `json:"coordinates"`
	}{"Polygon", polygonCoords(p)})
}

// EncodeBoundary wraps polygons as a FeatureCollection of Polygon features
// with empty properties, coordinates in geographic degrees.
func EncodeBoundary(polys []geometry.Polygon) (*FeatureCollection, error) {
	fc := &FeatureCollection{Type: "FeatureCollection", Features: make([]Feature, 0, len(polys))}
	for _, p := range polys {
		raw, err := EncodePolygon(p)
		if err != nil {
			return nil, err
		}
		fc.Features = append(fc.Features, Feature{
			Type:       "Feature",
			Geometry:   raw,
			Properties: map[string]interface{}{},
		})
	}
	return fc, nil
}

// WriteBoundary writes polygons as a GeoJSON FeatureCollection file.
func WriteBoundary(path string, polys []geometry.Polygon) error {
	fc, err := EncodeBoundary(polys)
	if err != nil {
		return err
	}
	data, err := json.Marshal(fc)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// DecodeGeometry extracts polygons from a GeoJSON geometry. Polygon,
// MultiPolygon and GeometryCollection are understood; anything else yields an
// empty result, which callers treat as "nothing usable here".
func DecodeGeometry(raw json.RawMessage) ([]geometry.Polygon, error) {
	var g Geometry
	if err := json.Unmarshal(raw, &g); err != nil {
		return nil, fmt.Errorf("geodata: decode geometry: %w", err)
	}
	return decodeTyped(g)
}

func decodeTyped(g Geometry) ([]geometry.Polygon, error) {
	switch g.Type {
	case "Polygon":
		var coords [][][]float64
		if err := json.Unmarshal(g.Coordinates, &coords); err != nil {
			return nil, fmt.Errorf("geodata: polygon coordinates: %w", err)
		}
		p, ok := polygonFromCoords(coords)
		if !ok {
			return nil, nil
		}
		return []geometry.Polygon{p}, nil
	case "MultiPolygon":
		var coords [][][][]float64
		if err := json.Unmarshal(g.Coordinates, &coords); err != nil {
			return nil, fmt.Errorf("geodata: multipolygon coordinates: %w", err)
		}
		var out []geometry.Polygon
		for _, pc := range coords {
			if p, ok := polygonFromCoords(pc); ok {
				out = append(out, p)
			}
		}
		return out, nil
	case "GeometryCollection":
		var out []geometry.Polygon
		for _, sub := range g.Geometries {
			polys, err := decodeTyped(sub)
			if err != nil {
				return nil, err
			}
			out = append(out, polys...)
		}
		return out, nil
	default:
		return nil, nil
	}
}

func polygonCoords(p geometry.Polygon) [][][]float64 {
	rings := make([][][]float64, 0, 1+len(p.Holes))
	rings = append(rings, ringCoords(p.Exterior))
	for _, h := range p.Holes {
		rings = append(rings, ringCoords(h))
	}
	return rings
}

func ringCoords(r geometry.Ring) [][]float64 {
	closed := r.Closed()
	out := make([][]float64, len(closed))
	for i, pt := range closed {
		out[i] = []float64{pt.X, pt.Y}
	}
	return out
}

func polygonFromCoords(coords [][][]float64) (geometry.Polygon, bool) {
	if len(coords) == 0 {
		return geometry.Polygon{}, false
	}
	ext := ringFromCoords(coords[0])
	if len(ext.Open()) < 3 {
		return geometry.Polygon{}, false
	}
	p := geometry.Polygon{Exterior: ext}
	for _, rc := range coords[1:] {
		h := ringFromCoords(rc)
		if len(h.Open()) >= 3 {
			p.Holes = append(p.Holes, h)
		}
	}
	return p, true
}

func ringFromCoords(coords [][]float64) geometry.Ring {
	ring := make(geometry.Ring, 0, len(coords))
	for _, c := range coords {
		if len(c) < 2 {
			continue
		}
		ring = append(ring, geometry.Point2D{X: c[0], Y: c[1]})
	}
	return ring.Open()
}
