// Package raster reads imagery and reads and writes the world-file plus
// projection sidecars that carry georeferencing for plain image formats.
package raster

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"boundary-georef/pkg/geometry"
)

// ErrUnsupportedCRS is returned when a raster's projection sidecar names
// anything other than geographic WGS84.
var ErrUnsupportedCRS = errors.New("raster: unsupported CRS")

// wgs84Marker strings accepted in a .prj file. ESRI WKT for EPSG:4326 always
// carries one of these.
var wgs84Markers = []string{"GCS_WGS_1984", "WGS 84", "WGS84", "4326"}

// wgs84WKT is the projection sidecar written next to registered output.
const wgs84WKT = `GEOGCS["WGS 84",DATUM["WGS_1984",SPHEROID["WGS 84",6378137,298.257223563]],PRIMEM["Greenwich",0],UNIT["degree",0.0174532925199433],AUTHORITY["EPSG","4326"]]`

// WorldFilePath returns the sidecar path for an image: .tfw for TIFFs,
// .pgw for PNGs, .jgw for JPEGs, .wld otherwise.
func WorldFilePath(imagePath string) string {
	base := strings.TrimSuffix(imagePath, filepath.Ext(imagePath))
	switch strings.ToLower(filepath.Ext(imagePath)) {
	case ".tif", ".tiff":
		return base + ".tfw"
	case ".png":
		return base + ".pgw"
	case ".jpg", ".jpeg":
		return base + ".jgw"
	default:
		return base + ".wld"
	}
}

// PrjPath returns the projection sidecar path for an image.
func PrjPath(imagePath string) string {
	return strings.TrimSuffix(imagePath, filepath.Ext(imagePath)) + ".prj"
}

// WriteWorldFile writes the six affine coefficients in ESRI world-file line
// order: x-scale, y-rotation, x-rotation, y-scale, then the geographic
// coordinates of the center of the top-left pixel.
func WriteWorldFile(path string, t geometry.AffineTransform) error {
	lines := []float64{t.A, t.C, t.B, t.D, t.TX, t.TY}
	var sb strings.Builder
	for _, v := range lines {
		fmt.Fprintf(&sb, "%.12g\n", v)
	}
	return os.WriteFile(path, []byte(sb.String()), 0o644)
}

// ReadWorldFile parses a world file back into an affine transform.
func ReadWorldFile(path string) (geometry.AffineTransform, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return geometry.AffineTransform{}, fmt.Errorf("raster: read world file: %w", err)
	}
	var vals []float64
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		v, err := strconv.ParseFloat(line, 64)
		if err != nil {
			return geometry.AffineTransform{}, fmt.Errorf("raster: world file %s: bad line %q", path, line)
		}
		vals = append(vals, v)
	}
	if len(vals) < 6 {
		return geometry.AffineTransform{}, fmt.Errorf("raster: world file %s has %d values, want 6", path, len(vals))
	}
	return geometry.AffineTransform{
		A: vals[0], C: vals[1], B: vals[2], D: vals[3], TX: vals[4], TY: vals[5],
	}, nil
}

// WritePrj writes the WGS84 projection sidecar.
func WritePrj(path string) error {
	return os.WriteFile(path, []byte(wgs84WKT+"\n"), 0o644)
}

// CheckPrj verifies that an image's projection sidecar, when present, names
// geographic WGS84. A missing sidecar passes; coordinates are assumed to be
// degrees throughout this project and the check only rejects rasters that
// declare something else.
func CheckPrj(imagePath string) error {
	data, err := os.ReadFile(PrjPath(imagePath))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("raster: read prj: %w", err)
	}
	wkt := string(data)
	// Projected CRSs built on the WGS84 datum still mention "WGS 84", so the
	// PROJCS envelope is rejected before the marker scan.
	if strings.Contains(wkt, "PROJCS") || strings.Contains(wkt, "PROJCRS") {
		return fmt.Errorf("%w: %s declares a projected CRS", ErrUnsupportedCRS, PrjPath(imagePath))
	}
	for _, marker := range wgs84Markers {
		if strings.Contains(wkt, marker) {
			return nil
		}
	}
	return fmt.Errorf("%w: %s does not declare WGS84", ErrUnsupportedCRS, PrjPath(imagePath))
}
