package georef

import (
	"math"

	"boundary-georef/pkg/geometry"
)

// Local equirectangular meters-per-degree factors. Good for the small deltas
// of a residual near a known latitude; not a general projection.
const (
	MetersPerDegLonEquator = 111320.0
	MetersPerDegLat        = 110540.0
)

// RMSEMeters reprojects every source point through the model and returns the
// root-mean-square Euclidean residual against dst, converted from degrees to
// meters with an equirectangular approximation anchored at the mean
// destination latitude. Returns +Inf for empty input or any non-finite
// residual, so failed fits sort last.
func RMSEMeters(model geometry.Transform, src, dst []geometry.Point2D) float64 {
	if len(src) == 0 || len(src) != len(dst) {
		return math.Inf(1)
	}

	var lat0 float64
	for _, p := range dst {
		lat0 += p.Y
	}
	lat0 /= float64(len(dst))
	cosLat0 := math.Cos(lat0 * math.Pi / 180)

	var sumSq float64
	for i, p := range src {
		pred := model.Apply(p)
		mx := (pred.X - dst[i].X) * MetersPerDegLonEquator * cosLat0
		my := (pred.Y - dst[i].Y) * MetersPerDegLat
		sumSq += mx*mx + my*my
	}

	rmse := math.Sqrt(sumSq / float64(len(src)))
	if math.IsNaN(rmse) {
		return math.Inf(1)
	}
	return rmse
}
