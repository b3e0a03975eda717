// Command autogeoref registers a raster against a reference boundary polygon
// with no control points, by matching the largest color-keyed contour to the
// reference ring across rotations, flips and traversal directions.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"boundary-georef/internal/align"
	"boundary-georef/internal/crs"
	"boundary-georef/internal/extract"
	"boundary-georef/internal/geodata"
	"boundary-georef/internal/raster"
	"boundary-georef/internal/version"
)

func main() {
	blue := extract.DefaultBlueRange()

	imagePath := flag.String("i", "", "Path to input raster")
	refPath := flag.String("ref", "", "Path to reference boundary GeoJSON")
	outPath := flag.String("o", "", "Path for the registered output raster")
	overlayPath := flag.String("overlay", "", "QC overlay path (default <out>_qc.png)")
	reportPath := flag.String("report", "", "Sidecar JSON path (default <out>.json)")
	hsvLow := flag.String("hsv-low", formatTriple(blue.LowH, blue.LowS, blue.LowV), "Lower HSV bound as H,S,V")
	hsvHigh := flag.String("hsv-high", formatTriple(blue.HighH, blue.HighS, blue.HighV), "Upper HSV bound as H,S,V")
	closeKernel := flag.Int("close", 7, "Morphological close kernel size")
	samples := flag.Int("samples", align.DefaultOptions().SamplePoints, "Resampled points per ring")
	debugMask := flag.String("debug-mask", "", "Mask dump path when no contour is found (default <out>_mask_debug.png)")
	debug := flag.Bool("debug", false, "Print per-candidate scores")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("autogeoref %s (%s, built %s)\n", version.Version, version.GitCommit, version.BuildTime)
		return
	}

	if *imagePath == "" || *refPath == "" || *outPath == "" {
		fmt.Println("Usage: autogeoref -i <image> -ref <boundary.geojson> -o <registered> [options]")
		os.Exit(1)
	}
	if *overlayPath == "" {
		ext := filepath.Ext(*outPath)
		*overlayPath = strings.TrimSuffix(*outPath, ext) + "_qc.png"
	}
	if *reportPath == "" {
		*reportPath = *outPath + ".json"
	}
	if *debugMask == "" {
		ext := filepath.Ext(*outPath)
		*debugMask = strings.TrimSuffix(*outPath, ext) + "_mask_debug.png"
	}

	band, err := parseBand(*hsvLow, *hsvHigh)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Bad HSV bounds: %v\n", err)
		os.Exit(1)
	}

	img, err := extract.LoadImage(*imagePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load raster: %v\n", err)
		os.Exit(1)
	}
	defer img.Close()
	w, h := img.Cols(), img.Rows()

	ref, err := geodata.LoadReference(*refPath, crs.ForEPSG(3857))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load reference boundary: %v\n", err)
		os.Exit(1)
	}

	mask := extract.BuildMask(img, band, *closeKernel)
	defer mask.Close()

	contour, err := extract.LargestContour(mask, *debugMask)
	if err != nil {
		fail(*reportPath, w, h, err)
	}

	result, err := align.Search(contour, ref, w, h, align.Options{
		SamplePoints: *samples,
		Debug:        *debug,
	})
	if err != nil {
		fail(*reportPath, w, h, err)
	}

	affine := result.PixelAffine
	if err := raster.WriteRegistered(*outPath, img, affine); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write registered raster: %v\n", err)
		os.Exit(1)
	}
	if err := align.WriteOverlay(*overlayPath, img, ref, result.Transform); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write QC overlay: %v\n", err)
		os.Exit(1)
	}

	rep := geodata.AutoGeorefReport{
		OK:           true,
		RMSEDeg:      result.RMSEDeg,
		MedianErrDeg: result.MedianErrDeg,
		Affine:       affine.Coefficients(),
		Width:        w,
		Height:       h,
		QCOverlay:    *overlayPath,
	}
	if err := geodata.WriteReport(*reportPath, rep); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write report: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Registered %s with %s/%s model, RMSE %.6g deg\n",
		*imagePath, result.Variant, result.Model, result.RMSEDeg)
}

// fail records an unsuccessful run in the sidecar before exiting, so batch
// drivers can tell "failed" from "never ran".
func fail(reportPath string, w, h int, cause error) {
	_ = geodata.WriteReport(reportPath, geodata.AutoGeorefReport{Width: w, Height: h})
	fmt.Fprintf(os.Stderr, "Registration failed: %v\n", cause)
	os.Exit(1)
}

func parseBand(low, high string) (extract.HSVRange, error) {
	lo, err := parseTriple(low)
	if err != nil {
		return extract.HSVRange{}, err
	}
	hi, err := parseTriple(high)
	if err != nil {
		return extract.HSVRange{}, err
	}
	return extract.HSVRange{
		LowH: lo[0], LowS: lo[1], LowV: lo[2],
		HighH: hi[0], HighS: hi[1], HighV: hi[2],
	}, nil
}

func formatTriple(h, s, v float64) string {
	return fmt.Sprintf("%g,%g,%g", h, s, v)
}

func parseTriple(s string) ([3]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return [3]float64{}, fmt.Errorf("%q is not an H,S,V triple", s)
	}
	var out [3]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return [3]float64{}, fmt.Errorf("%q is not an H,S,V triple", s)
		}
		out[i] = v
	}
	return out, nil
}
