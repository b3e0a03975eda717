// Package gcp loads ground-control points: hand-picked correspondences
// between pixel locations and map coordinates.
package gcp

import (
	"errors"

	"boundary-georef/pkg/geometry"
)

// MinPoints is the minimum number of control points required for a
// homography fit.
const MinPoints = 4

// ErrInsufficientControlPoints is returned when fewer than MinPoints valid
// rows survive parsing.
var ErrInsufficientControlPoints = errors.New("gcp: insufficient control points")

// GroundControlPoint pairs a pixel location with a map coordinate. The map
// coordinate may be degrees or projected meters; the CRS resolver decides
// later.
type GroundControlPoint struct {
	PixelX float64
	PixelY float64
	GeoX   float64
	GeoY   float64
}

// Set is an unordered collection of control points.
type Set []GroundControlPoint

// PixelPoints returns the pixel-side coordinates as points.
func (s Set) PixelPoints() []geometry.Point2D {
	out := make([]geometry.Point2D, len(s))
	for i, g := range s {
		out[i] = geometry.Point2D{X: g.PixelX, Y: g.PixelY}
	}
	return out
}

// GeoColumns returns the raw map-side coordinate columns.
func (s Set) GeoColumns() (xs, ys []float64) {
	xs = make([]float64, len(s))
	ys = make([]float64, len(s))
	for i, g := range s {
		xs[i] = g.GeoX
		ys[i] = g.GeoY
	}
	return xs, ys
}
