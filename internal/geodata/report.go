package geodata

import (
	"encoding/json"
	"os"
)

// AutoGeorefReport is the sidecar written next to an auto-registered raster.
// Affine holds the pixel-to-geographic coefficients in a,b,tx,c,d,ty order.
type AutoGeorefReport struct {
	OK           bool       `json:"ok"`
	RMSEDeg      float64    `json:"rmse_deg"`
	MedianErrDeg float64    `json:"median_err_deg"`
	Affine       [6]float64 `json:"affine"`
	Width        int        `json:"w"`
	Height       int        `json:"h"`
	QCOverlay    string     `json:"qc_overlay,omitempty"`
}

// WriteReport writes the sidecar JSON with indentation so it reads well in a
// terminal.
func WriteReport(path string, rep AutoGeorefReport) error {
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
