package georef

import (
	"math"
	"testing"

	"boundary-georef/pkg/geometry"
)

func TestRMSEMetersExactFitIsZero(t *testing.T) {
	tr := geometry.AffineTransform{A: 0.001, D: -0.001, TX: -122, TY: 38}
	src := []geometry.Point2D{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 100}, {X: 0, Y: 100}}
	dst := applyAll(tr, src)
	if got := RMSEMeters(tr, src, dst); got > 1e-6 {
		t.Errorf("exact fit scored %g m", got)
	}
}

func TestRMSEMetersKnownResidual(t *testing.T) {
	// A uniform one-degree latitude offset at the equator scores exactly the
	// meters-per-degree factor.
	id := geometry.Identity()
	src := []geometry.Point2D{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}}
	dst := []geometry.Point2D{{X: 0, Y: 1}, {X: 1, Y: 1}, {X: 2, Y: 1}}
	got := RMSEMeters(id, src, dst)
	// The anchor latitude is the mean of dst, 1 degree, which only affects
	// the longitude factor; the residual here is pure latitude.
	if math.Abs(got-MetersPerDegLat) > 1e-6 {
		t.Errorf("got %g, want %g", got, MetersPerDegLat)
	}
}

func TestRMSEMetersLongitudeShrinksWithLatitude(t *testing.T) {
	id := geometry.Identity()
	src := []geometry.Point2D{{X: 0, Y: 60}, {X: 1, Y: 60}}
	dst := []geometry.Point2D{{X: 0.1, Y: 60}, {X: 1.1, Y: 60}}
	got := RMSEMeters(id, src, dst)
	want := 0.1 * MetersPerDegLonEquator * math.Cos(60*math.Pi/180)
	if math.Abs(got-want) > 1e-6 {
		t.Errorf("got %g, want %g", got, want)
	}
}

func TestRMSEMetersPermutationInvariant(t *testing.T) {
	tr := geometry.AffineTransform{A: 0.001, B: 2e-5, TX: -122.5, C: -1e-5, D: -0.001, TY: 37.9}
	src := []geometry.Point2D{{X: 0, Y: 0}, {X: 100, Y: 20}, {X: 400, Y: 300}, {X: 799, Y: 599}, {X: 50, Y: 550}}
	dst := applyAll(tr, src)
	dst[2].X += 0.002
	dst[4].Y -= 0.001

	base := RMSEMeters(tr, src, dst)
	perm := []int{3, 0, 4, 2, 1}
	psrc := make([]geometry.Point2D, len(src))
	pdst := make([]geometry.Point2D, len(dst))
	for i, j := range perm {
		psrc[i], pdst[i] = src[j], dst[j]
	}
	if got := RMSEMeters(tr, psrc, pdst); math.Abs(got-base) > 1e-9 {
		t.Errorf("permuted RMSE %g differs from %g", got, base)
	}
}

func TestRMSEMetersDegenerateInputs(t *testing.T) {
	id := geometry.Identity()
	if !math.IsInf(RMSEMeters(id, nil, nil), 1) {
		t.Error("empty input should score +Inf")
	}
	src := []geometry.Point2D{{X: 0, Y: 0}}
	if !math.IsInf(RMSEMeters(id, src, nil), 1) {
		t.Error("mismatched input should score +Inf")
	}
	bad := geometry.AffineTransform{A: math.NaN()}
	dst := []geometry.Point2D{{X: 0, Y: 0}}
	if !math.IsInf(RMSEMeters(bad, src, dst), 1) {
		t.Error("NaN prediction should score +Inf")
	}
}
