package extract

import (
	"fmt"

	"gocv.io/x/gocv"

	"boundary-georef/pkg/geometry"
)

// minContourPoints is the smallest contour worth keeping. Anything shorter
// is tracing noise.
const minContourPoints = 10

// MaskToPolygons traces a binary mask into pixel-space polygons. Two-level
// contour retrieval keeps outer rings and their immediate holes together;
// deeper nesting collapses into the hole level above it.
func MaskToPolygons(mask gocv.Mat) ([]geometry.Polygon, error) {
	if gocv.CountNonZero(mask) == 0 {
		return nil, fmt.Errorf("%w: 0 foreground pixels", ErrEmptyBoundaryMask)
	}

	hierarchy := gocv.NewMat()
	defer hierarchy.Close()
	contours := gocv.FindContoursWithParams(mask, &hierarchy, gocv.RetrievalCComp, gocv.ChainApproxSimple)
	defer contours.Close()

	var polys []geometry.Polygon
	for i := 0; i < contours.Size(); i++ {
		h := hierarchy.GetVeciAt(0, i)
		parent := int(h[3])
		if parent != -1 {
			continue
		}
		ext := contourRing(contours.At(i))
		if len(ext) < 3 {
			continue
		}
		poly := geometry.Polygon{Exterior: ext}
		for child := int(h[2]); child != -1; {
			hole := contourRing(contours.At(child))
			if len(hole) >= 3 {
				poly.Holes = append(poly.Holes, hole)
			}
			child = int(hierarchy.GetVeciAt(0, child)[0])
		}
		polys = append(polys, poly)
	}
	if len(polys) == 0 {
		return nil, fmt.Errorf("%w: no usable contours", ErrEmptyBoundaryMask)
	}
	return polys, nil
}

// LargestContour returns the single biggest outer ring in the mask. When the
// mask is empty or every contour is shorter than minContourPoints, the mask
// is dumped to debugPath (when set) and the failure reports the foreground
// pixel count.
func LargestContour(mask gocv.Mat, debugPath string) (geometry.Ring, error) {
	hierarchy := gocv.NewMat()
	defer hierarchy.Close()
	contours := gocv.FindContoursWithParams(mask, &hierarchy, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	bestIdx := -1
	bestArea := 0.0
	for i := 0; i < contours.Size(); i++ {
		if contours.At(i).Size() < minContourPoints {
			continue
		}
		area := gocv.ContourArea(contours.At(i))
		if bestIdx < 0 || area > bestArea {
			bestIdx, bestArea = i, area
		}
	}
	if bestIdx < 0 {
		if debugPath != "" {
			gocv.IMWrite(debugPath, mask)
		}
		return nil, fmt.Errorf("%w: %d foreground pixels, no contour with %d+ points",
			ErrEmptyBoundaryMask, gocv.CountNonZero(mask), minContourPoints)
	}
	return contourRing(contours.At(bestIdx)), nil
}

func contourRing(pv gocv.PointVector) geometry.Ring {
	pts := pv.ToPoints()
	ring := make(geometry.Ring, len(pts))
	for i, p := range pts {
		ring[i] = geometry.Point2D{X: float64(p.X), Y: float64(p.Y)}
	}
	return ring
}
