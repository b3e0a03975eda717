// Package crs provides coordinate reference system conversions between
// geographic degrees (EPSG:4326) and the projected spaces this pipeline
// encounters. The Projection interface is an injected capability: callers
// receive one at startup and never branch on availability themselves.
package crs

import "math"

// EarthRadius is the spherical-mercator sphere radius in meters (EPSG:3857).
const EarthRadius = 6378137.0

// Projection converts between a source CRS and WGS84 geographic degrees.
type Projection interface {
	// ToWGS84 converts source CRS coordinates to longitude/latitude degrees.
	ToWGS84(x, y float64) (lon, lat float64)

	// FromWGS84 converts longitude/latitude degrees to source CRS coordinates.
	FromWGS84(lon, lat float64) (x, y float64)

	// EPSG returns the EPSG code for this projection.
	EPSG() int
}

// ForEPSG returns a Projection for the given EPSG code, or nil if the code is
// not supported. A nil result is the "capability unavailable" signal callers
// hand to the degraded code paths.
func ForEPSG(epsg int) Projection {
	switch epsg {
	case 4326:
		return WGS84Identity{}
	case 3857:
		return WebMercator{}
	default:
		return nil
	}
}

// WGS84Identity is a no-op projection for data already in EPSG:4326. It is the
// null implementation of the reprojection capability.
type WGS84Identity struct{}

func (WGS84Identity) ToWGS84(x, y float64) (float64, float64)       { return x, y }
func (WGS84Identity) FromWGS84(lon, lat float64) (float64, float64) { return lon, lat }
func (WGS84Identity) EPSG() int                                     { return 4326 }

// WebMercator converts between spherical-mercator meters (EPSG:3857) and
// geographic degrees.
type WebMercator struct{}

func (WebMercator) ToWGS84(x, y float64) (float64, float64) {
	lon := x / EarthRadius * 180 / math.Pi
	lat := (2*math.Atan(math.Exp(y/EarthRadius)) - math.Pi/2) * 180 / math.Pi
	return lon, lat
}

func (WebMercator) FromWGS84(lon, lat float64) (float64, float64) {
	x := lon * math.Pi / 180 * EarthRadius
	y := math.Log(math.Tan(math.Pi/4+lat*math.Pi/360)) * EarthRadius
	return x, y
}

func (WebMercator) EPSG() int { return 3857 }
