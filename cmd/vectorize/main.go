// Command vectorize extracts a color-keyed boundary from a georeferenced
// raster and writes it as a cleaned GeoJSON FeatureCollection.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"boundary-georef/internal/crs"
	"boundary-georef/internal/extract"
	"boundary-georef/internal/geodata"
	"boundary-georef/internal/post"
	"boundary-georef/internal/raster"
	"boundary-georef/internal/version"
	"boundary-georef/pkg/geometry"
)

func main() {
	defs := post.DefaultOptions()
	blue := extract.DefaultBlueRange()

	imagePath := flag.String("i", "", "Path to georeferenced raster (world file sidecar required)")
	outPath := flag.String("o", "", "Path to output GeoJSON")
	hsvLow := flag.String("hsv-low", formatTriple(blue.LowH, blue.LowS, blue.LowV), "Lower HSV bound as H,S,V")
	hsvHigh := flag.String("hsv-high", formatTriple(blue.HighH, blue.HighS, blue.HighV), "Upper HSV bound as H,S,V")
	closeKernel := flag.Int("close", 5, "Morphological close kernel size, <2 disables")
	simplifyRatio := flag.Float64("simplify-ratio", defs.SimplifyRatio, "Simplify tolerance as a fraction of the bbox size")
	minRing := flag.Int("min-ring", defs.MinRingPoints, "Discard rings with fewer than this many vertices after simplification")
	smooth := flag.Float64("smooth", defs.SmoothMeters, "Smoothing buffer radius in meters, <=0 disables")
	smoothTol := flag.Float64("smooth-tol", defs.SmoothTolMeters, "Post-smoothing simplify tolerance in meters")
	includeHoles := flag.Bool("include-holes", defs.IncludeHoles, "Keep interior rings above the hole area threshold")
	minHole := flag.Float64("min-hole", defs.MinHoleAreaSqKm, "With -include-holes, fill holes smaller than this many square kilometers")
	keep := flag.Int("keep", defs.KeepLargest, "Keep only the N largest polygons, <=0 keeps all")
	debug := flag.Bool("debug", false, "Print pipeline progress")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("vectorize %s (%s, built %s)\n", version.Version, version.GitCommit, version.BuildTime)
		return
	}

	if *imagePath == "" || *outPath == "" {
		fmt.Println("Usage: vectorize -i <image> -o <out.geojson> [options]")
		os.Exit(1)
	}

	band, err := parseBand(*hsvLow, *hsvHigh)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Bad HSV bounds: %v\n", err)
		os.Exit(1)
	}

	if err := raster.CheckPrj(*imagePath); err != nil {
		fmt.Fprintf(os.Stderr, "Projection check failed: %v\n", err)
		os.Exit(1)
	}
	world, err := raster.ReadWorldFile(raster.WorldFilePath(*imagePath))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read world file: %v\n", err)
		os.Exit(1)
	}

	img, err := extract.LoadImage(*imagePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load raster: %v\n", err)
		os.Exit(1)
	}
	defer img.Close()

	mask := extract.BuildMask(img, band, *closeKernel)
	defer mask.Close()

	pixelPolys, err := extract.MaskToPolygons(mask)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Boundary extraction failed: %v\n", err)
		os.Exit(1)
	}
	if *debug {
		fmt.Printf("[vectorize] traced %d pixel polygons\n", len(pixelPolys))
	}

	geoPolys := make([]geometry.Polygon, len(pixelPolys))
	for i, p := range pixelPolys {
		geoPolys[i] = geometry.MapPolygon(p, world)
	}

	merged, err := geodata.MultiToGeos(geoPolys)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Polygon merge failed: %v\n", err)
		os.Exit(1)
	}
	unioned, err := geodata.FromGeos(merged)
	merged.Destroy()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Polygon merge failed: %v\n", err)
		os.Exit(1)
	}

	opts := post.Options{
		SimplifyRatio:   *simplifyRatio,
		MinRingPoints:   *minRing,
		SmoothMeters:    *smooth,
		SmoothTolMeters: *smoothTol,
		IncludeHoles:    *includeHoles,
		MinHoleAreaSqKm: *minHole,
		KeepLargest:     *keep,
		Debug:           *debug,
	}
	cleaned, err := post.Run(unioned, opts, crs.ForEPSG(3857))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Post-processing failed: %v\n", err)
		os.Exit(1)
	}
	if *debug {
		fmt.Printf("[vectorize] keeping %d polygons after cleanup\n", len(cleaned))
	}

	if err := geodata.WriteBoundary(*outPath, cleaned); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write GeoJSON: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %d polygons to %s\n", len(cleaned), *outPath)
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
