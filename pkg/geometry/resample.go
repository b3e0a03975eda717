package geometry

// ResampleRing resamples a closed ring to n points spaced evenly along its
// cumulative arc length, closing edge included. Corresponding indices of two
// rings resampled this way represent the same normalized position along each
// ring, which is what lets index-aligned fitting skip explicit point
// correspondence.
func ResampleRing(ring Ring, n int) []Point2D {
	return Resample(ring.Closed(), n)
}

// Resample resamples an ordered polyline to n points spaced evenly along its
// cumulative arc length. A zero-length input repeats its first point n times.
func Resample(pts []Point2D, n int) []Point2D {
	if n <= 0 || len(pts) == 0 {
		return nil
	}

	// Cumulative arc length per vertex.
	cum := make([]float64, len(pts))
	for i := 1; i < len(pts); i++ {
		cum[i] = cum[i-1] + pts[i].Distance(pts[i-1])
	}
	total := cum[len(cum)-1]

	out := make([]Point2D, n)
	if total == 0 {
		for i := range out {
			out[i] = pts[0]
		}
		return out
	}

	seg := 0
	for i := 0; i < n; i++ {
		target := total * float64(i) / float64(n-1)
		if n == 1 {
			target = 0
		}
		for seg < len(pts)-2 && cum[seg+1] < target {
			seg++
		}
		segLen := cum[seg+1] - cum[seg]
		t := 0.0
		if segLen > 0 {
			t = (target - cum[seg]) / segLen
		}
		out[i] = Point2D{
			X: pts[seg].X + t*(pts[seg+1].X-pts[seg].X),
			Y: pts[seg].Y + t*(pts[seg+1].Y-pts[seg].Y),
		}
	}
	return out
}

// Reverse returns the points in reverse order.
func Reverse(pts []Point2D) []Point2D {
	out := make([]Point2D, len(pts))
	for i, p := range pts {
		out[len(pts)-1-i] = p
	}
	return out
}
