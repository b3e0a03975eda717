// Command georef fits a pixel-to-geographic transform from a ground-control
// point file and optionally writes a registered copy of the raster.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"boundary-georef/internal/crs"
	"boundary-georef/internal/extract"
	"boundary-georef/internal/gcp"
	"boundary-georef/internal/georef"
	"boundary-georef/internal/raster"
	"boundary-georef/internal/version"
	"boundary-georef/pkg/geometry"
)

type report struct {
	Candidate  string              `json:"candidate"`
	RMSEMeters float64             `json:"rmse_m"`
	Homography geometry.Homography `json:"homography"`
	Affine     [6]float64          `json:"affine"`
	Width      int                 `json:"w"`
	Height     int                 `json:"h"`
}

func main() {
	imagePath := flag.String("i", "", "Path to input raster")
	gcpPath := flag.String("g", "", "Path to control point file (.points or CSV)")
	outPath := flag.String("o", "", "Write a registered copy of the raster here (optional)")
	forceCRS := flag.String("force-crs", "auto", "Map coordinate CRS: auto, 4326 or 3857")
	swapLatLon := flag.Bool("swap-latlon", false, "Swap the two map coordinate columns")
	normalize := flag.Bool("normalize", false, "Rescale pixel coordinates to the image extent")
	flipX := flag.Bool("flip-x", false, "Mirror pixel X coordinates")
	swapXY := flag.Bool("swap-xy", false, "Swap pixel axes")
	debug := flag.Bool("debug", false, "Print candidate scores")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("georef %s (%s, built %s)\n", version.Version, version.GitCommit, version.BuildTime)
		return
	}

	if *imagePath == "" || *gcpPath == "" {
		fmt.Println("Usage: georef -i <image> -g <points> [-o <registered>] [-force-crs auto|4326|3857]")
		os.Exit(1)
	}

	if err := raster.CheckPrj(*imagePath); err != nil {
		fmt.Fprintf(os.Stderr, "Projection check failed: %v\n", err)
		os.Exit(1)
	}

	points, err := gcp.Load(*gcpPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load control points: %v\n", err)
		os.Exit(1)
	}

	w, h, err := raster.ImageSize(*imagePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read image size: %v\n", err)
		os.Exit(1)
	}

	src := georef.NormalizePixels(points.PixelPoints(), w, h, georef.NormalizeOptions{
		Normalize: *normalize,
		FlipX:     *flipX,
		SwapXY:    *swapXY,
	})

	xs, ys := points.GeoColumns()
	candidates, err := georef.ResolveCandidates(xs, ys, georef.ResolveOptions{
		ForceCRS:   *forceCRS,
		SwapLatLon: *swapLatLon,
	}, crs.ForEPSG(3857))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Candidate resolution failed: %v\n", err)
		os.Exit(1)
	}

	sel, err := georef.SelectTransform(src, candidates, *debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Transform search failed: %v\n", err)
		os.Exit(1)
	}

	affine, err := raster.HomographyToAffine(sel.Transform, w, h)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Affine extraction failed: %v\n", err)
		os.Exit(1)
	}

	if *outPath != "" {
		img, err := extract.LoadImage(*imagePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load raster: %v\n", err)
			os.Exit(1)
		}
		defer img.Close()
		if err := raster.WriteRegistered(*outPath, img, affine); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write registered raster: %v\n", err)
			os.Exit(1)
		}
	}

	out := report{
		Candidate:  sel.Label,
		RMSEMeters: sel.RMSEMeters,
		Homography: sel.Transform,
		Affine:     affine.Coefficients(),
		Width:      w,
		Height:     h,
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to encode report: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(data))
}
