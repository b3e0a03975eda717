package raster

import (
	"fmt"
	"image"
	"os"

	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"gocv.io/x/gocv"

	"boundary-georef/pkg/geometry"
)

// ImageSize reads only the header of an image file and returns its pixel
// dimensions.
func ImageSize(path string) (w, h int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("raster: open %s: %w", path, err)
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("raster: decode %s: %w", path, err)
	}
	return cfg.Width, cfg.Height, nil
}

// WriteRegistered writes the raster together with its world file and
// projection sidecars, producing a georeferenced image any GIS can load.
func WriteRegistered(path string, img gocv.Mat, t geometry.AffineTransform) error {
	if ok := gocv.IMWrite(path, img); !ok {
		return fmt.Errorf("raster: write %s failed", path)
	}
	if err := WriteWorldFile(WorldFilePath(path), t); err != nil {
		return err
	}
	return WritePrj(PrjPath(path))
}

// HomographyToAffine collapses a pixel-to-geographic homography into the
// corner-anchored affine a world file can carry. The top-left pixel anchors
// the origin, steps along the first row and first column set the axis
// vectors. A projective component beyond that sampling is discarded.
func HomographyToAffine(h geometry.Homography, w, hgt int) (geometry.AffineTransform, error) {
	if w < 2 || hgt < 2 {
		return geometry.AffineTransform{}, fmt.Errorf("raster: image %dx%d too small to anchor an affine", w, hgt)
	}
	origin := h.Apply(geometry.Point2D{X: 0, Y: 0})
	right := h.Apply(geometry.Point2D{X: float64(w - 1), Y: 0})
	down := h.Apply(geometry.Point2D{X: 0, Y: float64(hgt - 1)})

	t := geometry.AffineTransform{
		A:  (right.X - origin.X) / float64(w-1),
		C:  (right.Y - origin.Y) / float64(w-1),
		B:  (down.X - origin.X) / float64(hgt-1),
		D:  (down.Y - origin.Y) / float64(hgt-1),
		TX: origin.X,
		TY: origin.Y,
	}
	if !t.IsFinite() {
		return geometry.AffineTransform{}, fmt.Errorf("raster: non-finite affine from homography")
	}
	return t, nil
}
