package georef

import (
	"fmt"

	"boundary-georef/internal/crs"
	"boundary-georef/pkg/geometry"
)

// Candidate is one interpretation of the map-side GCP columns: a label, the
// destination point set in geographic degrees under that interpretation, and
// whether the interpretation was degraded by a missing reprojection
// capability. The resolver only proposes candidates; scoring and selection
// happen elsewhere.
type Candidate struct {
	Label    string
	Dst      []geometry.Point2D
	Degraded bool
}

// ResolveOptions controls candidate generation.
type ResolveOptions struct {
	// ForceCRS skips the comparison and emits a single candidate:
	// "auto" (or empty) proposes both, "4326" only as-is, "3857" only the
	// mercator reinterpretation.
	ForceCRS string

	// SwapLatLon swaps the two map columns uniformly across every candidate.
	SwapLatLon bool
}

// ResolveCandidates builds destination point sets from the raw map columns of
// a GCP set. Candidate A takes the columns as geographic degrees; Candidate B
// reinterprets them as spherical-mercator meters and reprojects. When the
// mercator projection capability is nil, Candidate B degrades to equal A and
// is flagged, not failed.
func ResolveCandidates(xs, ys []float64, opts ResolveOptions, mercator crs.Projection) ([]Candidate, error) {
	asIs := make([]geometry.Point2D, len(xs))
	for i := range xs {
		asIs[i] = geometry.Point2D{X: xs[i], Y: ys[i]}
	}

	reprojected := asIs
	degraded := true
	if mercator != nil {
		reprojected = make([]geometry.Point2D, len(xs))
		for i := range xs {
			lon, lat := mercator.ToWGS84(xs[i], ys[i])
			reprojected[i] = geometry.Point2D{X: lon, Y: lat}
		}
		degraded = false
	}

	var candidates []Candidate
	switch opts.ForceCRS {
	case "", "auto":
		candidates = []Candidate{
			{Label: "4326", Dst: asIs},
			{Label: "3857->4326", Dst: reprojected, Degraded: degraded},
		}
	case "4326":
		candidates = []Candidate{{Label: "4326", Dst: asIs}}
	case "3857":
		candidates = []Candidate{{Label: "3857->4326", Dst: reprojected, Degraded: degraded}}
	default:
		return nil, fmt.Errorf("georef: unknown force_crs %q (want auto, 4326 or 3857)", opts.ForceCRS)
	}

	if opts.SwapLatLon {
		for i := range candidates {
			swapped := make([]geometry.Point2D, len(candidates[i].Dst))
			for j, p := range candidates[i].Dst {
				swapped[j] = geometry.Point2D{X: p.Y, Y: p.X}
			}
			candidates[i].Dst = swapped
			candidates[i].Label += " + swap_latlon"
		}
	}

	return candidates, nil
}
