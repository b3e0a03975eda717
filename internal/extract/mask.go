// Package extract turns raster imagery into boundary polygons. A color mask
// is thresholded in HSV space, closed morphologically and traced into
// contours with hole topology.
package extract

import (
	"errors"
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// ErrUnreadableImage is returned when an input raster cannot be decoded.
var ErrUnreadableImage = errors.New("extract: unreadable image")

// ErrEmptyBoundaryMask is returned when thresholding leaves no foreground.
var ErrEmptyBoundaryMask = errors.New("extract: empty boundary mask")

// HSVRange bounds a color band in OpenCV HSV space (H 0..180, S/V 0..255).
type HSVRange struct {
	LowH, LowS, LowV    float64
	HighH, HighS, HighV float64
}

// DefaultBlueRange matches the blue boundary overlays the maps in this
// project carry.
func DefaultBlueRange() HSVRange {
	return HSVRange{LowH: 90, LowS: 50, LowV: 50, HighH: 130, HighS: 255, HighV: 255}
}

// LoadImage reads a raster as a BGR Mat. The caller owns the returned Mat.
func LoadImage(path string) (gocv.Mat, error) {
	img := gocv.IMRead(path, gocv.IMReadColor)
	if img.Empty() {
		img.Close()
		return gocv.Mat{}, fmt.Errorf("%w: %s", ErrUnreadableImage, path)
	}
	return img, nil
}

// BuildMask thresholds a BGR image against an HSV band and closes small gaps
// with a closeKernel x closeKernel rectangular element. closeKernel < 2
// skips the morphology step. The caller owns the returned Mat.
func BuildMask(img gocv.Mat, band HSVRange, closeKernel int) gocv.Mat {
	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(img, &hsv, gocv.ColorBGRToHSV)

	mask := gocv.NewMat()
	lb := gocv.NewScalar(band.LowH, band.LowS, band.LowV, 0)
	ub := gocv.NewScalar(band.HighH, band.HighS, band.HighV, 0)
	gocv.InRangeWithScalar(hsv, lb, ub, &mask)

	if closeKernel >= 2 {
		kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(closeKernel, closeKernel))
		defer kernel.Close()
		closed := gocv.NewMat()
		gocv.MorphologyEx(mask, &closed, gocv.MorphClose, kernel)
		mask.Close()
		return closed
	}
	return mask
}
