package align

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"boundary-georef/pkg/geometry"
)

const overlaySamples = 1000

// WriteOverlay draws the reference ring back onto the source raster through
// the inverse of the registration, then writes the annotated copy. A match
// that converged geometrically but landed on the wrong feature is obvious at
// a glance in the overlay.
func WriteOverlay(path string, img gocv.Mat, ref geometry.Ring, transform geometry.Homography) error {
	inv, ok := transform.Inverse()
	if !ok {
		return fmt.Errorf("align: registration is not invertible, cannot draw overlay")
	}

	samples := geometry.ResampleRing(ref, overlaySamples)
	pts := make([]image.Point, len(samples))
	for i, p := range samples {
		px := inv.Apply(p)
		pts[i] = image.Pt(int(px.X+0.5), int(px.Y+0.5))
	}

	canvas := img.Clone()
	defer canvas.Close()

	pv := gocv.NewPointsVectorFromPoints([][]image.Point{pts})
	defer pv.Close()
	gocv.Polylines(&canvas, pv, true, color.RGBA{R: 255}, 2)

	if ok := gocv.IMWrite(path, canvas); !ok {
		return fmt.Errorf("align: write overlay %s failed", path)
	}
	return nil
}
