// Package post cleans extracted boundary polygons: validity repair, shape
// simplification, metric smoothing, hole policy and a keep-N cut.
package post

import (
	"fmt"
	"math"
	"sort"

	"boundary-georef/internal/crs"
	"boundary-georef/internal/geodata"
	"boundary-georef/internal/georef"
	"boundary-georef/pkg/geometry"
)

const bufferQuadSegs = 8

// Options drives the pipeline. Zero or negative values disable the matching
// stage.
type Options struct {
	SimplifyRatio   float64 // tolerance as a fraction of the larger bbox side
	MinRingPoints   int     // rings with fewer vertices after simplification are discarded
	SmoothMeters    float64 // buffer out-and-in radius
	SmoothTolMeters float64 // post-smoothing simplify tolerance
	IncludeHoles    bool    // false flattens every polygon to its exterior
	MinHoleAreaSqKm float64 // with IncludeHoles, holes below this are filled
	KeepLargest     int     // 0 keeps everything
	Debug           bool
}

// DefaultOptions mirrors the map-boundary presets used across the project.
func DefaultOptions() Options {
	return Options{
		SimplifyRatio:   0.001,
		MinRingPoints:   20,
		SmoothMeters:    20,
		SmoothTolMeters: 5,
		MinHoleAreaSqKm: 0.25,
		KeepLargest:     2,
	}
}

// Run applies the pipeline stages in order. Polygons that collapse to
// nothing along the way are dropped; an empty result is legal.
func Run(polys []geometry.Polygon, opts Options, proj crs.Projection) ([]geometry.Polygon, error) {
	polys, err := Repair(polys)
	if err != nil {
		return nil, err
	}
	polys = SimplifyByRatio(polys, opts.SimplifyRatio, opts.MinRingPoints)
	polys, err = SmoothMetric(polys, opts.SmoothMeters, opts.SmoothTolMeters, proj, opts.Debug)
	if err != nil {
		return nil, err
	}
	polys = ApplyHolePolicy(polys, opts.IncludeHoles, opts.MinHoleAreaSqKm)
	polys = KeepNLargest(polys, opts.KeepLargest)
	return polys, nil
}

// Repair runs every polygon through GEOS validity repair and re-extracts the
// areal parts of whatever comes back.
func Repair(polys []geometry.Polygon) ([]geometry.Polygon, error) {
	var out []geometry.Polygon
	for _, p := range polys {
		g, err := geodata.ToGeos(p)
		if err != nil {
			return nil, err
		}
		if !g.IsValid() {
			fixed := g.MakeValid()
			g.Destroy()
			g = fixed
		}
		fixed, err := geodata.FromGeos(g)
		g.Destroy()
		if err != nil {
			return nil, err
		}
		out = append(out, fixed...)
	}
	return out, nil
}

// SimplifyByRatio simplifies each ring with a tolerance proportional to the
// polygon's bounding box, then discards rings left with fewer than minPoints
// vertices. A discarded exterior drops its whole polygon, so noise blobs
// never reach the later stages.
func SimplifyByRatio(polys []geometry.Polygon, ratio float64, minPoints int) []geometry.Polygon {
	out := make([]geometry.Polygon, 0, len(polys))
	for _, p := range polys {
		tol := 0.0
		if ratio > 0 {
			bbox := geometry.BoundingBox(p.Exterior)
			tol = ratio * math.Max(bbox.Width, bbox.Height)
		}
		ext := simplifyRing(p.Exterior, tol)
		if len(ext) < 3 || len(ext) < minPoints {
			continue
		}
		q := geometry.Polygon{Exterior: ext}
		for _, h := range p.Holes {
			hs := simplifyRing(h, tol)
			if len(hs) >= 3 && len(hs) >= minPoints {
				q.Holes = append(q.Holes, hs)
			}
		}
		out = append(out, q)
	}
	return out
}

func simplifyRing(r geometry.Ring, tol float64) geometry.Ring {
	open := r.Open()
	if tol <= 0 {
		return open
	}
	return open.Simplify(tol)
}

// SmoothMetric rounds jagged edges with a buffer out-and-in pass in a metric
// frame, then simplifies with a metric tolerance. Either knob can be disabled
// on its own. With no projection the radius falls back to an equator-scaled
// degree value, which distorts away from the equator.
func SmoothMetric(polys []geometry.Polygon, radiusM, tolM float64, proj crs.Projection, debug bool) ([]geometry.Polygon, error) {
	if (radiusM <= 0 && tolM <= 0) || len(polys) == 0 {
		return polys, nil
	}
	var out []geometry.Polygon
	for _, p := range polys {
		work := p
		metric := proj != nil
		if metric {
			work = projectPolygon(p, proj.FromWGS84)
		} else if debug {
			fmt.Printf("[post] no metric projection, smoothing with degree radius %.6g\n",
				radiusM/georef.MetersPerDegLonEquator)
		}
		radius := radiusM
		tol := tolM
		if !metric {
			radius = radiusM / georef.MetersPerDegLonEquator
			tol = tolM / georef.MetersPerDegLonEquator
		}

		smoothed, err := geodata.ToGeos(work)
		if err != nil {
			return nil, err
		}
		if radius > 0 {
			outward := smoothed.Buffer(radius, bufferQuadSegs)
			smoothed.Destroy()
			inward := outward.Buffer(-radius, bufferQuadSegs)
			outward.Destroy()
			smoothed = inward
		}
		if tol > 0 && !smoothed.IsEmpty() {
			simpler := smoothed.TopologyPreserveSimplify(tol)
			smoothed.Destroy()
			smoothed = simpler
		}
		result, err := geodata.FromGeos(smoothed)
		smoothed.Destroy()
		if err != nil {
			return nil, err
		}
		if metric {
			for i := range result {
				result[i] = projectPolygon(result[i], proj.ToWGS84)
			}
		}
		out = append(out, result...)
	}
	return out, nil
}

// ApplyHolePolicy flattens every polygon to its exterior ring unless holes
// are included, in which case only holes of at least minAreaSqKm survive.
// The threshold converts to squared degrees with equator-scale meter factors.
func ApplyHolePolicy(polys []geometry.Polygon, includeHoles bool, minAreaSqKm float64) []geometry.Polygon {
	if includeHoles && minAreaSqKm <= 0 {
		return polys
	}
	minDeg2 := (minAreaSqKm * 1e6) / (georef.MetersPerDegLonEquator * georef.MetersPerDegLat)
	out := make([]geometry.Polygon, len(polys))
	for i, p := range polys {
		q := geometry.Polygon{Exterior: p.Exterior}
		if includeHoles {
			for _, h := range p.Holes {
				if math.Abs(h.Area()) >= minDeg2 {
					q.Holes = append(q.Holes, h)
				}
			}
		}
		out[i] = q
	}
	return out
}

// KeepNLargest keeps the n polygons with the largest absolute area, ordered
// by descending area. n <= 0 returns the input unchanged.
func KeepNLargest(polys []geometry.Polygon, n int) []geometry.Polygon {
	if n <= 0 {
		return polys
	}
	sorted := append([]geometry.Polygon(nil), polys...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return math.Abs(sorted[i].Area()) > math.Abs(sorted[j].Area())
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

func projectPolygon(p geometry.Polygon, f func(float64, float64) (float64, float64)) geometry.Polygon {
	out := geometry.Polygon{Exterior: projectRing(p.Exterior, f)}
	for _, h := range p.Holes {
		out.Holes = append(out.Holes, projectRing(h, f))
	}
	return out
}

func projectRing(r geometry.Ring, f func(float64, float64) (float64, float64)) geometry.Ring {
	out := make(geometry.Ring, len(r))
	for i, pt := range r {
		x, y := f(pt.X, pt.Y)
		out[i] = geometry.Point2D{X: x, Y: y}
	}
	return out
}
