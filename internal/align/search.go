package align

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"boundary-georef/internal/georef"
	"boundary-georef/pkg/geometry"
)

// ModelKind identifies the transform family fitted for one search cell.
// Simpler families enumerate first and win RMSE ties.
type ModelKind int

const (
	ModelSimilarity ModelKind = iota
	ModelSimilarityReflect
	ModelAffine
)

func (m ModelKind) String() string {
	switch m {
	case ModelSimilarity:
		return "similarity"
	case ModelSimilarityReflect:
		return "similarity+reflect"
	case ModelAffine:
		return "affine"
	default:
		return fmt.Sprintf("model(%d)", int(m))
	}
}

// rmseMargin guards the best-model comparison against float noise, so the
// earlier (simpler) model keeps ties.
const rmseMargin = 1e-12

// Options tunes the symmetry search.
type Options struct {
	SamplePoints int // resampled points per ring
	Debug        bool
}

// DefaultOptions matches the registration presets used by the CLI.
func DefaultOptions() Options {
	return Options{SamplePoints: 800}
}

// Result is the winning registration. PixelAffine maps original pixel
// coordinates to geographic degrees with the variant's frame change folded
// in; Transform is the same map lifted to projective form for callers that
// compose with homographies.
type Result struct {
	Variant      Variant
	Reversed     bool
	Model        ModelKind
	PixelAffine  geometry.AffineTransform
	Transform    geometry.Homography
	RMSEDeg      float64
	MedianErrDeg float64
}

// Search fits all 72 candidate registrations of contour onto ref and keeps
// the one with the lowest degree-space RMSE. contour is an open pixel ring
// in a w x h raster; ref is the reference exterior ring in degrees.
func Search(contour, ref geometry.Ring, w, h int, opts Options) (*Result, error) {
	if opts.SamplePoints < 4 {
		opts.SamplePoints = DefaultOptions().SamplePoints
	}
	if len(contour.Open()) < 3 {
		return nil, fmt.Errorf("%w: contour has %d points", ErrDegenerateGeometry, len(contour.Open()))
	}
	if len(ref.Open()) < 3 {
		return nil, fmt.Errorf("%w: reference ring has %d points", ErrDegenerateGeometry, len(ref.Open()))
	}

	src := geometry.ResampleRing(contour, opts.SamplePoints)
	refFwd := geometry.ResampleRing(ref, opts.SamplePoints)
	refRev := geometry.Reverse(refFwd)

	type cell struct {
		variant  Variant
		reversed bool
		model    ModelKind
	}
	var cells []cell
	for _, v := range AllVariants() {
		for _, rev := range []bool{false, true} {
			for _, m := range []ModelKind{ModelSimilarity, ModelSimilarityReflect, ModelAffine} {
				cells = append(cells, cell{v, rev, m})
			}
		}
	}

	results := make([]*Result, len(cells))
	var wg sync.WaitGroup
	for i, c := range cells {
		wg.Add(1)
		go func(i int, c cell) {
			defer wg.Done()
			va, err := c.variant.Affine(w, h)
			if err != nil {
				return
			}
			varSrc := make([]geometry.Point2D, len(src))
			for j, p := range src {
				varSrc[j] = va.Apply(p)
			}
			dst := refFwd
			if c.reversed {
				dst = refRev
			}
			model, err := fitModel(c.model, varSrc, dst)
			if err != nil {
				return
			}
			full := model.Compose(va)
			rmse, med := scoreDeg(full, src, dst)
			if math.IsInf(rmse, 0) || math.IsNaN(rmse) {
				return
			}
			results[i] = &Result{
				Variant:      c.variant,
				Reversed:     c.reversed,
				Model:        c.model,
				PixelAffine:  full,
				Transform:    geometry.HomographyFromAffine(full),
				RMSEDeg:      rmse,
				MedianErrDeg: med,
			}
		}(i, c)
	}
	wg.Wait()

	var best *Result
	for i, r := range results {
		if r == nil {
			continue
		}
		if opts.Debug {
			fmt.Printf("[align] %s rev=%v %s RMSE %.6g deg\n",
				cells[i].variant, cells[i].reversed, cells[i].model, r.RMSEDeg)
		}
		if best == nil {
			best = r
			continue
		}
		if r.RMSEDeg < best.RMSEDeg && best.RMSEDeg-r.RMSEDeg > rmseMargin*math.Max(1, best.RMSEDeg) {
			best = r
		}
	}
	if best == nil {
		return nil, fmt.Errorf("%w: no candidate registration converged", georef.ErrNoTransformFound)
	}
	if opts.Debug {
		fmt.Printf("[align] selected %s rev=%v %s RMSE %.6g deg median %.6g deg\n",
			best.Variant, best.Reversed, best.Model, best.RMSEDeg, best.MedianErrDeg)
	}
	return best, nil
}

func fitModel(kind ModelKind, src, dst []geometry.Point2D) (geometry.AffineTransform, error) {
	switch kind {
	case ModelSimilarity:
		return FitSimilarity(src, dst, false)
	case ModelSimilarityReflect:
		return FitSimilarity(src, dst, true)
	case ModelAffine:
		return georef.FitAffine(src, dst)
	default:
		return geometry.AffineTransform{}, fmt.Errorf("align: unknown model %d", kind)
	}
}

// scoreDeg evaluates the registered contour against the reference in plain
// degree space, returning RMSE and the median point error.
func scoreDeg(t geometry.Transform, src, dst []geometry.Point2D) (rmse, median float64) {
	if len(src) == 0 || len(src) != len(dst) {
		return math.Inf(1), math.Inf(1)
	}
	errs := make([]float64, len(src))
	var sumSq float64
	for i := range src {
		d := t.Apply(src[i]).Distance(dst[i])
		errs[i] = d
		sumSq += d * d
	}
	sort.Float64s(errs)
	median = errs[len(errs)/2]
	if len(errs)%2 == 0 {
		median = (errs[len(errs)/2-1] + errs[len(errs)/2]) / 2
	}
	return math.Sqrt(sumSq / float64(len(src))), median
}
