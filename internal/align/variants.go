// Package align registers an extracted pixel boundary against a reference
// polygon in geographic coordinates. The search is brute force over the
// discrete symmetries of the raster: four rotations, three flip states, both
// traversal directions of the reference ring, and three transform models.
package align

import (
	"fmt"

	"boundary-georef/pkg/geometry"
)

// Rotation is a quarter-turn count applied to the pixel frame.
type Rotation int

const (
	Rot0 Rotation = iota
	Rot90
	Rot180
	Rot270
)

// Flip mirrors the rotated frame.
type Flip int

const (
	FlipNone Flip = iota
	FlipHorizontal
	FlipVertical
)

// Variant is one rotation and flip combination.
type Variant struct {
	Rotation Rotation
	Flip     Flip
}

func (v Variant) String() string {
	rot := [...]string{"rot0", "rot90", "rot180", "rot270"}[v.Rotation]
	switch v.Flip {
	case FlipHorizontal:
		return rot + "+fliph"
	case FlipVertical:
		return rot + "+flipv"
	default:
		return rot
	}
}

// AllVariants enumerates the twelve rotation and flip combinations in a
// fixed order.
func AllVariants() []Variant {
	out := make([]Variant, 0, 12)
	for rot := Rot0; rot <= Rot270; rot++ {
		for _, flip := range []Flip{FlipNone, FlipHorizontal, FlipVertical} {
			out = append(out, Variant{Rotation: rot, Flip: flip})
		}
	}
	return out
}

// Affine returns the map from original pixel coordinates into the variant's
// frame for a w x h raster. Quarter turns swap the frame dimensions; flips
// apply inside the rotated frame.
func (v Variant) Affine(w, h int) (geometry.AffineTransform, error) {
	fw, fh := float64(w), float64(h)

	var rot geometry.AffineTransform
	rw, rh := fw, fh
	switch v.Rotation {
	case Rot0:
		rot = geometry.Identity()
	case Rot90:
		rot = geometry.AffineTransform{B: 1, C: -1, TY: fw - 1}
		rw, rh = fh, fw
	case Rot180:
		rot = geometry.AffineTransform{A: -1, TX: fw - 1, D: -1, TY: fh - 1}
	case Rot270:
		rot = geometry.AffineTransform{B: -1, TX: fh - 1, C: 1}
		rw, rh = fh, fw
	default:
		return geometry.AffineTransform{}, fmt.Errorf("align: unknown rotation %d", v.Rotation)
	}

	switch v.Flip {
	case FlipNone:
		return rot, nil
	case FlipHorizontal:
		flip := geometry.AffineTransform{A: -1, TX: rw - 1, D: 1}
		return flip.Compose(rot), nil
	case FlipVertical:
		flip := geometry.AffineTransform{A: 1, D: -1, TY: rh - 1}
		return flip.Compose(rot), nil
	default:
		return geometry.AffineTransform{}, fmt.Errorf("align: unknown flip %d", v.Flip)
	}
}
