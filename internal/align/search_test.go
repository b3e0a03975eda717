package align

import (
	"errors"
	"math"
	"testing"

	"boundary-georef/pkg/geometry"
)

// lShape is deliberately asymmetric so only one rotation and flip state can
// match the reference.
func lShape() geometry.Ring {
	return geometry.Ring{
		{0, 0}, {60, 0}, {60, 20}, {20, 20}, {20, 80}, {0, 80},
	}
}

func TestSearchRecoversIdentityPlacement(t *testing.T) {
	const w, h = 100, 100
	contour := lShape()
	truth := geometry.Translation(-122.5, 37.9).Compose(geometry.Scale(0.001, -0.001))
	ref := geometry.MapRing(contour, truth)

	res, err := Search(contour, ref, w, h, Options{SamplePoints: 400})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if res.RMSEDeg > 1e-6 {
		t.Errorf("RMSE %g deg, want near zero", res.RMSEDeg)
	}
	if res.MedianErrDeg > res.RMSEDeg+1e-12 {
		t.Errorf("median %g exceeds RMSE %g", res.MedianErrDeg, res.RMSEDeg)
	}
	for _, p := range contour {
		got := res.Transform.Apply(p)
		want := truth.Apply(p)
		if got.Distance(want) > 1e-6 {
			t.Errorf("vertex %v maps to %v, want %v", p, got, want)
		}
	}
}

func TestSearchRecoversRotatedPlacement(t *testing.T) {
	const w, h = 100, 100
	contour := lShape()

	// The raster shows the shape rotated: express the reference through the
	// rot90 frame change and a similarity.
	v := Variant{Rot90, FlipNone}
	va, err := v.Affine(w, h)
	if err != nil {
		t.Fatal(err)
	}
	place := geometry.Translation(10, 45).Compose(geometry.Scale(0.01, 0.01))
	ref := geometry.MapRing(geometry.MapRing(contour, va), place)

	res, err := Search(contour, ref, w, h, Options{SamplePoints: 400})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if res.RMSEDeg > 1e-6 {
		t.Errorf("RMSE %g deg, want near zero", res.RMSEDeg)
	}
	for _, p := range contour {
		want := place.Apply(va.Apply(p))
		got := res.Transform.Apply(p)
		if got.Distance(want) > 1e-6 {
			t.Errorf("vertex %v maps to %v, want %v", p, got, want)
		}
	}
}

func TestSearchPrefersSimplerModelOnTie(t *testing.T) {
	// A pure similarity placement is fit exactly by all three model
	// families; the tie must go to the plain similarity.
	const w, h = 100, 100
	contour := lShape()
	place := geometry.Translation(3, 7).Compose(geometry.Scale(0.02, 0.02)).Compose(geometry.Rotation(0.3))
	ref := geometry.MapRing(contour, place)

	res, err := Search(contour, ref, w, h, Options{SamplePoints: 400})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if res.Model != ModelSimilarity {
		t.Errorf("winning model = %s, want similarity", res.Model)
	}
}

func TestSearchTransformMatchesPixelAffine(t *testing.T) {
	const w, h = 100, 100
	contour := lShape()
	place := geometry.Translation(-5, 2).Compose(geometry.Scale(0.01, 0.01))
	ref := geometry.MapRing(contour, place)

	res, err := Search(contour, ref, w, h, Options{SamplePoints: 200})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	p := geometry.Point2D{X: 12, Y: 34}
	if d := res.Transform.Apply(p).Distance(res.PixelAffine.Apply(p)); d > 1e-12 {
		t.Errorf("lifted transform disagrees with pixel affine by %g", d)
	}
}

func TestSearchDegenerateInputs(t *testing.T) {
	ref := lShape()
	if _, err := Search(geometry.Ring{{0, 0}, {1, 1}}, ref, 10, 10, Options{}); !errors.Is(err, ErrDegenerateGeometry) {
		t.Errorf("short contour: err = %v", err)
	}
	if _, err := Search(ref, geometry.Ring{{0, 0}}, 10, 10, Options{}); !errors.Is(err, ErrDegenerateGeometry) {
		t.Errorf("short reference: err = %v", err)
	}
}

func TestScoreDeg(t *testing.T) {
	id := geometry.Identity()
	src := []geometry.Point2D{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}, {X: 3, Y: 0}}
	dst := []geometry.Point2D{{X: 0, Y: 1}, {X: 1, Y: 1}, {X: 2, Y: 1}, {X: 3, Y: 1}}
	rmse, med := scoreDeg(id, src, dst)
	if math.Abs(rmse-1) > 1e-12 || math.Abs(med-1) > 1e-12 {
		t.Errorf("rmse=%g median=%g, want 1 and 1", rmse, med)
	}

	rmse, _ = scoreDeg(id, nil, nil)
	if !math.IsInf(rmse, 1) {
		t.Error("empty input should score +Inf")
	}
}
