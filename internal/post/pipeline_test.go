package post

import (
	"math"
	"testing"

	"boundary-georef/internal/crs"
	"boundary-georef/pkg/geometry"
)

func rect(x, y, w, h float64) geometry.Ring {
	return geometry.Ring{{X: x, Y: y}, {X: x + w, Y: y}, {X: x + w, Y: y + h}, {X: x, Y: y + h}}
}

func TestKeepNLargest(t *testing.T) {
	polys := []geometry.Polygon{
		{Exterior: rect(0, 0, 1, 1)},
		{Exterior: rect(0, 0, 5, 5)},
		{Exterior: rect(0, 0, 3, 3)},
	}

	kept := KeepNLargest(polys, 2)
	if len(kept) != 2 {
		t.Fatalf("kept %d polygons, want 2", len(kept))
	}
	if kept[0].Area() != 25 || kept[1].Area() != 9 {
		t.Errorf("kept areas = %g, %g, want 25, 9", kept[0].Area(), kept[1].Area())
	}

	if polys[0].Area() != 1 {
		t.Error("KeepNLargest mutated its input order")
	}
}

func TestKeepNLargestZeroIsNoOp(t *testing.T) {
	polys := []geometry.Polygon{
		{Exterior: rect(0, 0, 1, 1)},
		{Exterior: rect(0, 0, 5, 5)},
		{Exterior: rect(0, 0, 3, 3)},
	}
	all := KeepNLargest(polys, 0)
	if len(all) != 3 {
		t.Fatalf("n=0 dropped polygons: kept %d", len(all))
	}
	for i, want := range []float64{1, 25, 9} {
		if all[i].Area() != want {
			t.Errorf("n=0 reordered: polygon %d has area %g, want %g", i, all[i].Area(), want)
		}
	}
}

func TestApplyHolePolicyExteriorOnly(t *testing.T) {
	polys := []geometry.Polygon{{
		Exterior: rect(0, 0, 10, 10),
		Holes:    []geometry.Ring{rect(1, 1, 2, 2), rect(5, 5, 1, 1)},
	}}
	out := ApplyHolePolicy(polys, false, 0.25)
	if len(out[0].Holes) != 0 {
		t.Errorf("%d holes survived with holes excluded", len(out[0].Holes))
	}
}

func TestApplyHolePolicyMinArea(t *testing.T) {
	// threshold 0.25 km2 in squared degrees
	minDeg2 := (0.25 * 1e6) / (111320.0 * 110540.0)
	side := math.Sqrt(minDeg2)

	polys := []geometry.Polygon{{
		Exterior: rect(0, 0, 1, 1),
		Holes: []geometry.Ring{
			rect(0.1, 0.1, side*2, side*2), // 4x the threshold, kept
			rect(0.5, 0.5, side/2, side/2), // a quarter of it, filled
		},
	}}
	out := ApplyHolePolicy(polys, true, 0.25)
	if len(out[0].Holes) != 1 {
		t.Fatalf("%d holes survived, want 1", len(out[0].Holes))
	}
	if out[0].Holes[0][0].X != 0.1 {
		t.Errorf("wrong hole kept: %v", out[0].Holes[0][0])
	}
}

func TestApplyHolePolicyUnfiltered(t *testing.T) {
	polys := []geometry.Polygon{{
		Exterior: rect(0, 0, 1, 1),
		Holes:    []geometry.Ring{rect(0.4, 0.4, 0.0001, 0.0001)},
	}}
	out := ApplyHolePolicy(polys, true, 0)
	if len(out[0].Holes) != 1 {
		t.Error("hole policy with no threshold altered the polygon")
	}
}

func TestSimplifyByRatio(t *testing.T) {
	// A square with many collinear vertices along each edge collapses back
	// to its corners.
	var ring geometry.Ring
	const n = 25
	for i := 0; i < n; i++ {
		ring = append(ring, geometry.Point2D{X: float64(i), Y: 0})
	}
	for i := 0; i < n; i++ {
		ring = append(ring, geometry.Point2D{X: n, Y: float64(i)})
	}
	for i := n; i > 0; i-- {
		ring = append(ring, geometry.Point2D{X: float64(i), Y: n})
	}
	for i := n; i > 0; i-- {
		ring = append(ring, geometry.Point2D{X: 0, Y: float64(i)})
	}

	out := SimplifyByRatio([]geometry.Polygon{{Exterior: ring}}, 0.001, 4)
	if len(out) != 1 {
		t.Fatalf("got %d polygons, want 1", len(out))
	}
	if got := len(out[0].Exterior); got > 8 {
		t.Errorf("simplified ring still has %d vertices", got)
	}
	if math.Abs(out[0].Area()-float64(n*n)) > 1 {
		t.Errorf("simplification changed area to %g", out[0].Area())
	}
}

func TestSimplifyByRatioDropsShortRings(t *testing.T) {
	// Rings that end up under the minimum vertex count are noise blobs and
	// must not survive the stage.
	small := rect(0, 0, 1, 1)
	out := SimplifyByRatio([]geometry.Polygon{{Exterior: small}}, 0.001, 20)
	if len(out) != 0 {
		t.Errorf("4-vertex ring survived a 20-vertex minimum: %d polygons kept", len(out))
	}
}

func TestSimplifyByRatioDropsShortHoles(t *testing.T) {
	var ring geometry.Ring
	for i := 0; i < 10; i++ {
		ring = append(ring, geometry.Point2D{X: 50 + 40*math.Cos(2*math.Pi*float64(i)/10), Y: 50 + 40*math.Sin(2*math.Pi*float64(i)/10)})
	}
	polys := []geometry.Polygon{{Exterior: ring, Holes: []geometry.Ring{rect(45, 45, 2, 2)}}}
	out := SimplifyByRatio(polys, 0, 8)
	if len(out) != 1 {
		t.Fatalf("got %d polygons, want 1", len(out))
	}
	if len(out[0].Holes) != 0 {
		t.Errorf("4-vertex hole survived an 8-vertex minimum")
	}
}

func TestRepairKeepsValidPolygon(t *testing.T) {
	polys := []geometry.Polygon{{Exterior: rect(0, 0, 2, 3)}}
	out, err := Repair(polys)
	if err != nil {
		t.Fatalf("Repair: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("got %d polygons, want 1", len(out))
	}
	if math.Abs(out[0].Area()-6) > 1e-9 {
		t.Errorf("repair changed area to %g", out[0].Area())
	}
}

func TestSmoothMetricStableOnConvex(t *testing.T) {
	// A 20 m closing radius is noise against a ~10 km square; the shape must
	// come back essentially unchanged.
	sq := rect(-122.5, 37.7, 0.1, 0.1)
	in := []geometry.Polygon{{Exterior: sq}}
	out, err := SmoothMetric(in, 20, 0, crs.ForEPSG(3857), false)
	if err != nil {
		t.Fatalf("SmoothMetric: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("got %d polygons, want 1", len(out))
	}
	if rel := math.Abs(out[0].Area()-in[0].Area()) / in[0].Area(); rel > 0.005 {
		t.Errorf("area changed by %g%%", rel*100)
	}
	bb := geometry.BoundingBox(out[0].Exterior)
	if math.Abs(bb.X-(-122.5)) > 2e-4 || math.Abs(bb.Width-0.1) > 4e-4 {
		t.Errorf("bbox drifted: %+v", bb)
	}
}

func TestSmoothMetricFillsNarrowNotch(t *testing.T) {
	// A notch roughly 9 m wide cut 200 m into the top edge is narrower than
	// twice the 20 m radius, so the closing pass fills it.
	const (
		x0, y0 = -122.5, 37.7
		side   = 0.01
		nw     = 1e-4
		nd     = 2e-3
	)
	mid := x0 + side/2
	ring := geometry.Ring{
		{X: x0, Y: y0},
		{X: x0 + side, Y: y0},
		{X: x0 + side, Y: y0 + side},
		{X: mid + nw/2, Y: y0 + side},
		{X: mid + nw/2, Y: y0 + side - nd},
		{X: mid - nw/2, Y: y0 + side - nd},
		{X: mid - nw/2, Y: y0 + side},
		{X: x0, Y: y0 + side},
	}
	probe := geometry.Point2D{X: mid, Y: y0 + side - nd/2}
	if geometry.PointInRing(probe, ring) {
		t.Fatal("probe point should start outside the notched polygon")
	}

	out, err := SmoothMetric([]geometry.Polygon{{Exterior: ring}}, 20, 0, crs.ForEPSG(3857), false)
	if err != nil {
		t.Fatalf("SmoothMetric: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("got %d polygons, want 1", len(out))
	}
	if !geometry.PointInRing(probe, out[0].Exterior) {
		t.Error("notch survived the closing pass")
	}
}

func TestSmoothMetricDegreeFallback(t *testing.T) {
	sq := rect(0, 0, 0.1, 0.1)
	out, err := SmoothMetric([]geometry.Polygon{{Exterior: sq}}, 20, 0, nil, false)
	if err != nil {
		t.Fatalf("SmoothMetric: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("got %d polygons, want 1", len(out))
	}
	if rel := math.Abs(out[0].Area()-0.01) / 0.01; rel > 0.01 {
		t.Errorf("area changed by %g%%", rel*100)
	}
}

func TestSmoothMetricSimplifyWithoutBuffer(t *testing.T) {
	// Radius disabled, metric tolerance on: the simplification still runs and
	// strips the collinear edge points.
	var ring geometry.Ring
	const n = 10
	step := 0.1 / n
	for i := 0; i < n; i++ {
		ring = append(ring, geometry.Point2D{X: -122.5 + float64(i)*step, Y: 37.7})
	}
	for i := 0; i < n; i++ {
		ring = append(ring, geometry.Point2D{X: -122.4, Y: 37.7 + float64(i)*step})
	}
	for i := n; i > 0; i-- {
		ring = append(ring, geometry.Point2D{X: -122.5 + float64(i)*step, Y: 37.8})
	}
	for i := n; i > 0; i-- {
		ring = append(ring, geometry.Point2D{X: -122.5, Y: 37.7 + float64(i)*step})
	}
	in := []geometry.Polygon{{Exterior: ring}}

	out, err := SmoothMetric(in, 0, 5, crs.ForEPSG(3857), false)
	if err != nil {
		t.Fatalf("SmoothMetric: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("got %d polygons, want 1", len(out))
	}
	if got := len(out[0].Exterior); got >= len(ring) {
		t.Errorf("tolerance-only pass left %d vertices, want fewer than %d", got, len(ring))
	}
	if rel := math.Abs(out[0].Area()-in[0].Area()) / in[0].Area(); rel > 0.005 {
		t.Errorf("area changed by %g%%", rel*100)
	}
}

func TestSimplifyByRatioDisabled(t *testing.T) {
	polys := []geometry.Polygon{{Exterior: rect(0, 0, 2, 2)}}
	out := SimplifyByRatio(polys, 0, 4)
	if len(out) != 1 || len(out[0].Exterior) != 4 {
		t.Error("disabled simplify altered the polygons")
	}
}
