package geometry

import "math"

// Ring is an ordered sequence of vertices forming a closed loop. The closing
// edge from the last vertex back to the first is implicit; a ring may or may
// not repeat its first vertex at the end, and Closed() normalizes that.
type Ring []Point2D

// Polygon is a simple polygon: one exterior ring plus zero or more interior
// rings (holes). A slice of Polygon stands in for a MultiPolygon.
type Polygon struct {
	Exterior Ring
	Holes    []Ring
}

// Closed returns the ring with its first vertex repeated at the end, the form
// GeoJSON and most geometry kernels expect.
func (r Ring) Closed() Ring {
	if len(r) == 0 {
		return r
	}
	if r[0] == r[len(r)-1] {
		return r
	}
	out := make(Ring, 0, len(r)+1)
	out = append(out, r...)
	out = append(out, r[0])
	return out
}

// Open returns the ring without a repeated closing vertex.
func (r Ring) Open() Ring {
	if len(r) >= 2 && r[0] == r[len(r)-1] {
		return r[:len(r)-1]
	}
	return r
}

// Area returns the absolute shoelace area of the ring, in squared coordinate
// units.
func (r Ring) Area() float64 {
	pts := r.Open()
	if len(pts) < 3 {
		return 0
	}
	var sum float64
	n := len(pts)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += pts[i].X*pts[j].Y - pts[j].X*pts[i].Y
	}
	return math.Abs(sum) / 2
}

// Length returns the perimeter of the ring including the closing edge.
func (r Ring) Length() float64 {
	pts := r.Open()
	if len(pts) < 2 {
		return 0
	}
	var total float64
	for i := range pts {
		total += pts[i].Distance(pts[(i+1)%len(pts)])
	}
	return total
}

// Area returns the polygon area: exterior area minus the area of its holes.
func (p Polygon) Area() float64 {
	a := p.Exterior.Area()
	for _, h := range p.Holes {
		a -= h.Area()
	}
	return a
}

// Simplify reduces the vertex count of the ring using the Douglas-Peucker
// algorithm with the given absolute tolerance. The ring is treated as open;
// the result is open too.
func (r Ring) Simplify(epsilon float64) Ring {
	pts := r.Open()
	if len(pts) <= 3 || epsilon <= 0 {
		return pts
	}
	return Ring(simplifyPath(pts, epsilon))
}

// simplifyPath reduces the number of vertices using Douglas-Peucker.
func simplifyPath(path []Point2D, epsilon float64) []Point2D {
	if len(path) <= 2 {
		return path
	}

	dmax := 0.0
	index := 0
	end := len(path) - 1

	for i := 1; i < end; i++ {
		d := perpendicularDistance(path[i], path[0], path[end])
		if d > dmax {
			dmax = d
			index = i
		}
	}

	if dmax > epsilon {
		left := simplifyPath(path[:index+1], epsilon)
		right := simplifyPath(path[index:], epsilon)

		result := make([]Point2D, 0, len(left)+len(right)-1)
		result = append(result, left[:len(left)-1]...)
		result = append(result, right...)
		return result
	}

	return []Point2D{path[0], path[end]}
}

// perpendicularDistance calculates the perpendicular distance from point p to line a-b.
func perpendicularDistance(p, a, b Point2D) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y

	if dx == 0 && dy == 0 {
		return p.Distance(a)
	}

	num := math.Abs(dy*p.X - dx*p.Y + b.X*a.Y - b.Y*a.X)
	den := math.Sqrt(dx*dx + dy*dy)
	return num / den
}

// PointInRing tests if a point is inside the ring using ray casting.
func PointInRing(p Point2D, r Ring) bool {
	pts := r.Open()
	if len(pts) < 3 {
		return false
	}

	inside := false
	n := len(pts)

	for i := 0; i < n; i++ {
		j := (i + 1) % n
		pi, pj := pts[i], pts[j]

		if ((pi.Y > p.Y) != (pj.Y > p.Y)) &&
			(p.X < (pj.X-pi.X)*(p.Y-pi.Y)/(pj.Y-pi.Y)+pi.X) {
			inside = !inside
		}
	}

	return inside
}

// MapRing applies a transform to every vertex of a ring.
func MapRing(r Ring, t Transform) Ring {
	out := make(Ring, len(r))
	for i, p := range r {
		out[i] = t.Apply(p)
	}
	return out
}

// MapPolygon applies a transform to every ring of a polygon.
func MapPolygon(p Polygon, t Transform) Polygon {
	out := Polygon{Exterior: MapRing(p.Exterior, t)}
	if len(p.Holes) > 0 {
		out.Holes = make([]Ring, len(p.Holes))
		for i, h := range p.Holes {
			out.Holes[i] = MapRing(h, t)
		}
	}
	return out
}
