package geometry

import (
	"testing"
)

func square(size float64) Ring {
	return Ring{{0, 0}, {size, 0}, {size, size}, {0, size}}
}

func TestRingClosedOpen(t *testing.T) {
	r := square(2)
	closed := r.Closed()
	if len(closed) != 5 || closed[0] != closed[4] {
		t.Fatalf("Closed() = %v", closed)
	}
	if len(closed.Closed()) != 5 {
		t.Error("Closed() on a closed ring added a vertex")
	}
	if len(closed.Open()) != 4 {
		t.Errorf("Open() on a closed ring has %d vertices, want 4", len(closed.Open()))
	}
}

func TestRingArea(t *testing.T) {
	vs := []struct {
		name string
		ring Ring
		want float64
	}{
		{"unit square", square(1), 1},
		{"square ccw", square(3), 9},
		{"square cw", Ring{{0, 0}, {0, 3}, {3, 3}, {3, 0}}, 9},
		{"triangle", Ring{{0, 0}, {4, 0}, {0, 3}}, 6},
		{"degenerate", Ring{{0, 0}, {1, 1}}, 0},
	}
	for _, v := range vs {
		if got := v.ring.Area(); !almostEqual(got, v.want, 1e-12) {
			t.Errorf("%s: area = %g, want %g", v.name, got, v.want)
		}
	}
}

func TestPolygonAreaSubtractsHoles(t *testing.T) {
	p := Polygon{
		Exterior: square(10),
		Holes:    []Ring{{{2, 2}, {4, 2}, {4, 4}, {2, 4}}},
	}
	if got := p.Area(); !almostEqual(got, 96, 1e-12) {
		t.Errorf("area with hole = %g, want 96", got)
	}
}

func TestRingLength(t *testing.T) {
	if got := square(2).Length(); !almostEqual(got, 8, 1e-12) {
		t.Errorf("perimeter = %g, want 8", got)
	}
}

func TestSimplifyDropsCollinear(t *testing.T) {
	r := Ring{{0, 0}, {1, 0}, {2, 0}, {4, 0}, {4, 4}, {0, 4}}
	s := r.Simplify(0.01)
	if len(s) != 4 {
		t.Fatalf("simplified ring has %d vertices, want 4: %v", len(s), s)
	}
	if !almostEqual(s.Area(), r.Area(), 1e-12) {
		t.Errorf("simplification changed area: %g vs %g", s.Area(), r.Area())
	}
}

func TestSimplifyKeepsCorners(t *testing.T) {
	r := square(5)
	s := r.Simplify(0.5)
	if len(s) != 4 {
		t.Errorf("square simplified to %d vertices", len(s))
	}
}

func TestPointInRing(t *testing.T) {
	r := square(4)
	vs := []struct {
		p    Point2D
		want bool
	}{
		{Point2D{2, 2}, true},
		{Point2D{0.1, 0.1}, true},
		{Point2D{5, 2}, false},
		{Point2D{-1, -1}, false},
		{Point2D{2, 7}, false},
	}
	for _, v := range vs {
		if got := PointInRing(v.p, r); got != v.want {
			t.Errorf("PointInRing(%v) = %v, want %v", v.p, got, v.want)
		}
	}
}

func TestMapRingAndPolygon(t *testing.T) {
	tr := Translation(10, 20)
	p := Polygon{Exterior: square(2), Holes: []Ring{{{0.5, 0.5}, {1, 0.5}, {1, 1}}}}
	mapped := MapPolygon(p, tr)
	if mapped.Exterior[0] != (Point2D{10, 20}) {
		t.Errorf("mapped exterior origin = %v", mapped.Exterior[0])
	}
	if mapped.Holes[0][0] != (Point2D{10.5, 20.5}) {
		t.Errorf("mapped hole origin = %v", mapped.Holes[0][0])
	}
	if !almostEqual(mapped.Area(), p.Area(), 1e-12) {
		t.Error("translation changed polygon area")
	}
}

func TestMapRingHomography(t *testing.T) {
	h := HomographyFromAffine(Scale(2, 2))
	r := MapRing(square(1), h)
	if !almostEqual(r.Area(), 4, 1e-12) {
		t.Errorf("scaled area = %g, want 4", r.Area())
	}
}
