package georef

import (
	"fmt"
	"math"
	"sort"

	"boundary-georef/pkg/geometry"
)

// Selection is the winning candidate of a transform search.
type Selection struct {
	Label      string
	Transform  geometry.Homography
	RMSEMeters float64
	Dst        []geometry.Point2D
}

// SelectTransform fits a homography for every candidate destination set,
// scores each fit in meters, and picks the lowest finite RMSE. Ties keep the
// first-encountered candidate under a stable sort. If no candidate yields a
// finite score the whole operation fails with ErrNoTransformFound.
func SelectTransform(src []geometry.Point2D, candidates []Candidate, debug bool) (*Selection, error) {
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: no candidates proposed", ErrNoTransformFound)
	}

	type scored struct {
		Selection
		ok bool
	}
	results := make([]scored, 0, len(candidates))

	for _, cand := range candidates {
		s := scored{Selection: Selection{Label: cand.Label, RMSEMeters: math.Inf(1), Dst: cand.Dst}}
		if cand.Degraded && debug {
			fmt.Printf("[georef] candidate %s: mercator reprojection unavailable, using coordinates as-is\n", cand.Label)
		}
		H, err := FitHomography(src, cand.Dst)
		if err == nil {
			s.Transform = H
			s.RMSEMeters = RMSEMeters(H, src, cand.Dst)
			s.ok = true
		}
		if debug {
			fmt.Printf("[georef] candidate %s RMSE ~ %.2f m\n", cand.Label, s.RMSEMeters)
		}
		results = append(results, s)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].RMSEMeters < results[j].RMSEMeters
	})

	best := results[0]
	if !best.ok || math.IsInf(best.RMSEMeters, 1) {
		return nil, fmt.Errorf("%w: homography failed for all %d candidates", ErrNoTransformFound, len(candidates))
	}
	if debug {
		fmt.Printf("[georef] selected %s RMSE ~ %.2f m\n", best.Label, best.RMSEMeters)
	}
	return &best.Selection, nil
}
