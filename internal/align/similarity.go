package align

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"boundary-georef/pkg/geometry"
)

// ErrDegenerateGeometry is returned when a point set collapses to a single
// location and no transform can be estimated from it.
var ErrDegenerateGeometry = errors.New("align: degenerate geometry")

// FitSimilarity estimates the rotation, uniform scale and translation that
// best maps src[i] onto dst[i] in the least-squares sense (the Kabsch
// construction extended with scale). With allowReflection false the result
// stays in SO(2) and mirrored inputs show up as residual instead; the flip
// variants cover those cases explicitly.
func FitSimilarity(src, dst []geometry.Point2D, allowReflection bool) (geometry.AffineTransform, error) {
	if len(src) != len(dst) {
		return geometry.AffineTransform{}, fmt.Errorf("align: point count mismatch: %d vs %d", len(src), len(dst))
	}
	if len(src) < 2 {
		return geometry.AffineTransform{}, fmt.Errorf("%w: %d correspondences", ErrDegenerateGeometry, len(src))
	}

	srcMean := geometry.Centroid(src)
	dstMean := geometry.Centroid(dst)

	var normSrc, normDst float64
	for i := range src {
		ds := src[i].Sub(srcMean)
		dd := dst[i].Sub(dstMean)
		normSrc += ds.X*ds.X + ds.Y*ds.Y
		normDst += dd.X*dd.X + dd.Y*dd.Y
	}
	normSrc = math.Sqrt(normSrc)
	normDst = math.Sqrt(normDst)
	if normSrc < 1e-12 || normDst < 1e-12 {
		return geometry.AffineTransform{}, fmt.Errorf("%w: zero spread around centroid", ErrDegenerateGeometry)
	}

	// Cross-covariance of the normalized point clouds.
	var h00, h01, h10, h11 float64
	for i := range src {
		sx := (src[i].X - srcMean.X) / normSrc
		sy := (src[i].Y - srcMean.Y) / normSrc
		dx := (dst[i].X - dstMean.X) / normDst
		dy := (dst[i].Y - dstMean.Y) / normDst
		h00 += sx * dx
		h01 += sx * dy
		h10 += sy * dx
		h11 += sy * dy
	}

	H := mat.NewDense(2, 2, []float64{h00, h01, h10, h11})
	var svd mat.SVD
	if !svd.Factorize(H, mat.SVDFull) {
		return geometry.AffineTransform{}, fmt.Errorf("%w: covariance factorization failed", ErrDegenerateGeometry)
	}
	var U, V mat.Dense
	svd.UTo(&U)
	svd.VTo(&V)

	var R mat.Dense
	R.Mul(&V, U.T())
	if !allowReflection && mat.Det(&R) < 0 {
		// Flip the sign of V's last column to stay in SO(2).
		V.Set(0, 1, -V.At(0, 1))
		V.Set(1, 1, -V.At(1, 1))
		R.Mul(&V, U.T())
	}

	s := normDst / normSrc
	a := s * R.At(0, 0)
	b := s * R.At(0, 1)
	c := s * R.At(1, 0)
	d := s * R.At(1, 1)

	t := geometry.AffineTransform{
		A: a, B: b, TX: dstMean.X - a*srcMean.X - b*srcMean.Y,
		C: c, D: d, TY: dstMean.Y - c*srcMean.X - d*srcMean.Y,
	}
	if !t.IsFinite() {
		return geometry.AffineTransform{}, fmt.Errorf("%w: non-finite similarity", ErrDegenerateGeometry)
	}
	return t, nil
}
