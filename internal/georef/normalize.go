// Package georef fits pixel-to-geographic transforms from ground-control
// points, resolving the ambiguous CRS of the map-side coordinates by scoring
// candidate interpretations against each other.
package georef

import (
	"boundary-georef/pkg/geometry"
)

// rangeEpsilon floors the per-axis extent during rescaling so a degenerate
// axis cannot divide by zero.
const rangeEpsilon = 1e-6

// NormalizeOptions controls how raw control-point pixel coordinates are
// mapped into image space.
type NormalizeOptions struct {
	Normalize bool // rescale observed extents into [0,w-1] x [0,h-1]
	FlipX     bool // reflect horizontally after the Y flip
	SwapXY    bool // swap axes last
}

// NormalizePixels maps arbitrary pixel coordinates into image space with the
// Y axis pointing down. The operation order is fixed and non-commutative:
// optional rescale, then Y flip, then optional horizontal flip, then optional
// axis swap.
func NormalizePixels(pts []geometry.Point2D, w, h int, opts NormalizeOptions) []geometry.Point2D {
	out := make([]geometry.Point2D, len(pts))
	copy(out, pts)

	if opts.Normalize && len(out) > 0 {
		bounds := geometry.BoundingBox(out)
		rangeX := bounds.Width
		if rangeX < rangeEpsilon {
			rangeX = rangeEpsilon
		}
		rangeY := bounds.Height
		if rangeY < rangeEpsilon {
			rangeY = rangeEpsilon
		}
		for i := range out {
			out[i].X = (out[i].X - bounds.X) * float64(w-1) / rangeX
			out[i].Y = (out[i].Y - bounds.Y) * float64(h-1) / rangeY
		}
	}

	for i := range out {
		out[i].Y = float64(h-1) - out[i].Y
	}

	if opts.FlipX {
		for i := range out {
			out[i].X = float64(w-1) - out[i].X
		}
	}

	if opts.SwapXY {
		for i := range out {
			out[i].X, out[i].Y = out[i].Y, out[i].X
		}
	}

	return out
}
