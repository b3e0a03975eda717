package georef

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"boundary-georef/internal/gcp"
	"boundary-georef/pkg/geometry"
)

// ErrNoTransformFound is returned when every candidate model was degenerate
// or produced a non-finite error.
var ErrNoTransformFound = errors.New("georef: no transform found")

// FitHomography fits a planar homography mapping src[i] -> dst[i] with an
// unweighted least-squares projective fit over all correspondences. No
// outlier rejection is applied: control points are assumed to be curated by
// hand, and a bad point shows up in the candidate RMSE rather than being
// silently dropped.
func FitHomography(src, dst []geometry.Point2D) (geometry.Homography, error) {
	if len(src) != len(dst) {
		return geometry.Homography{}, fmt.Errorf("georef: point count mismatch: %d vs %d", len(src), len(dst))
	}
	if len(src) < 4 {
		return geometry.Homography{}, fmt.Errorf("%w: homography needs at least 4 correspondences, got %d",
			gcp.ErrInsufficientControlPoints, len(src))
	}

	// 8 unknowns h00..h21 with h22 fixed to 1. Two rows per correspondence:
	//   x' = h00 X + h01 Y + h02 - h20 X x' - h21 Y x'
	//   y' = h10 X + h11 Y + h12 - h20 X y' - h21 Y y'
	n := len(src)
	A := mat.NewDense(2*n, 8, nil)
	b := mat.NewVecDense(2*n, nil)

	for i := 0; i < n; i++ {
		X, Y := src[i].X, src[i].Y
		x, y := dst[i].X, dst[i].Y
		r := 2 * i

		A.Set(r, 0, X)
		A.Set(r, 1, Y)
		A.Set(r, 2, 1)
		A.Set(r, 6, -X*x)
		A.Set(r, 7, -Y*x)
		b.SetVec(r, x)

		A.Set(r+1, 3, X)
		A.Set(r+1, 4, Y)
		A.Set(r+1, 5, 1)
		A.Set(r+1, 6, -X*y)
		A.Set(r+1, 7, -Y*y)
		b.SetVec(r+1, y)
	}

	var qr mat.QR
	qr.Factorize(A)

	var params mat.VecDense
	if err := qr.SolveVecTo(&params, false, b); err != nil {
		return geometry.Homography{}, fmt.Errorf("georef: homography solve: %w", err)
	}

	H := geometry.Homography{
		{params.AtVec(0), params.AtVec(1), params.AtVec(2)},
		{params.AtVec(3), params.AtVec(4), params.AtVec(5)},
		{params.AtVec(6), params.AtVec(7), 1},
	}
	if !H.IsFinite() {
		return geometry.Homography{}, fmt.Errorf("georef: homography fit produced non-finite matrix")
	}
	return H, nil
}

// FitAffine fits a 2x3 affine transform mapping src[i] -> dst[i] using
// least squares over all correspondences.
func FitAffine(src, dst []geometry.Point2D) (geometry.AffineTransform, error) {
	if len(src) != len(dst) {
		return geometry.AffineTransform{}, fmt.Errorf("georef: point count mismatch: %d vs %d", len(src), len(dst))
	}
	if len(src) < 3 {
		return geometry.AffineTransform{}, fmt.Errorf("%w: affine needs at least 3 correspondences, got %d",
			gcp.ErrInsufficientControlPoints, len(src))
	}

	n := len(src)
	A := mat.NewDense(2*n, 6, nil)
	b := mat.NewVecDense(2*n, nil)

	for i := 0; i < n; i++ {
		x, y := src[i].X, src[i].Y
		xp, yp := dst[i].X, dst[i].Y

		A.Set(i*2, 0, x)
		A.Set(i*2, 1, y)
		A.Set(i*2, 2, 1)
		b.SetVec(i*2, xp)

		A.Set(i*2+1, 3, x)
		A.Set(i*2+1, 4, y)
		A.Set(i*2+1, 5, 1)
		b.SetVec(i*2+1, yp)
	}

	var qr mat.QR
	qr.Factorize(A)

	var params mat.VecDense
	if err := qr.SolveVecTo(&params, false, b); err != nil {
		return geometry.AffineTransform{}, fmt.Errorf("georef: affine solve: %w", err)
	}

	t := geometry.AffineTransform{
		A:  params.AtVec(0),
		B:  params.AtVec(1),
		TX: params.AtVec(2),
		C:  params.AtVec(3),
		D:  params.AtVec(4),
		TY: params.AtVec(5),
	}
	if !t.IsFinite() {
		return geometry.AffineTransform{}, fmt.Errorf("georef: affine fit produced non-finite matrix")
	}
	return t, nil
}
