package gcp

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Column name synonyms accepted in .points files, checked in order.
var (
	mapXNames   = []string{"mapx", "lon", "x", "long"}
	mapYNames   = []string{"mapy", "lat", "y", "latitude"}
	pixelXNames = []string{"pixelx", "sourcex", "x_src", "source_x", "imgx"}
	pixelYNames = []string{"pixely", "sourcey", "y_src", "source_y", "imgy"}
)

// Load reads control points from path. A ".points" file (QGIS export) is
// parsed by an ordered list of strategies: delimiter-sniffed header rows
// first, whitespace-split columns as the fallback. Any other extension is
// treated as a strict CSV with headers pixel_x,pixel_y,lon,lat.
func Load(path string) (Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read GCP file: %w", err)
	}

	var set Set
	if strings.EqualFold(filepath.Ext(path), ".points") {
		set = loadPointsFile(string(data))
	} else {
		set, err = loadStrictCSV(string(data))
		if err != nil {
			return nil, err
		}
	}

	if len(set) < MinPoints {
		return nil, fmt.Errorf("%w: need at least %d rows in %s, found %d",
			ErrInsufficientControlPoints, MinPoints, path, len(set))
	}
	return set, nil
}

// parserStrategy parses the cleaned lines of a .points file. Strategies are
// tried in order; the first one producing enough rows wins.
type parserStrategy func(lines []string) Set

// loadPointsFile runs the strategy list over the non-comment lines.
func loadPointsFile(text string) Set {
	var lines []string
	for _, ln := range strings.Split(text, "\n") {
		ln = strings.TrimSpace(ln)
		if ln == "" || strings.HasPrefix(ln, "#") {
			continue
		}
		lines = append(lines, ln)
	}

	strategies := []parserStrategy{parseDelimited, parseWhitespace}
	for _, parse := range strategies {
		if set := parse(lines); len(set) >= MinPoints {
			return set
		}
	}
	return nil
}

// parseDelimited sniffs a delimiter from the header line, then reads rows by
// header name using the synonym lists.
func parseDelimited(lines []string) Set {
	if len(lines) < 2 {
		return nil
	}

	delim := sniffDelimiter(lines[0])
	if delim == 0 {
		return nil
	}

	r := csv.NewReader(strings.NewReader(strings.Join(lines, "\n")))
	r.Comma = delim
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil || len(records) < 2 {
		return nil
	}

	header := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		header[strings.ToLower(strings.TrimSpace(name))] = i
	}

	var set Set
	for _, rec := range records[1:] {
		mX, ok1 := fieldBySynonym(rec, header, mapXNames)
		mY, ok2 := fieldBySynonym(rec, header, mapYNames)
		pX, ok3 := fieldBySynonym(rec, header, pixelXNames)
		pY, ok4 := fieldBySynonym(rec, header, pixelYNames)
		if !(ok1 && ok2 && ok3 && ok4) {
			continue
		}
		set = append(set, GroundControlPoint{PixelX: pX, PixelY: pY, GeoX: mX, GeoY: mY})
	}
	return set
}

// parseWhitespace splits each line on whitespace and takes the first four
// fields as mapX mapY pixelX pixelY, the legacy .points column order.
func parseWhitespace(lines []string) Set {
	var set Set
	for _, ln := range lines {
		fields := strings.Fields(strings.ReplaceAll(ln, "\t", " "))
		if len(fields) < 4 {
			continue
		}
		vals := make([]float64, 4)
		ok := true
		for i := 0; i < 4; i++ {
			v, err := strconv.ParseFloat(fields[i], 64)
			if err != nil {
				ok = false
				break
			}
			vals[i] = v
		}
		if !ok {
			continue
		}
		set = append(set, GroundControlPoint{GeoX: vals[0], GeoY: vals[1], PixelX: vals[2], PixelY: vals[3]})
	}
	return set
}

// loadStrictCSV requires the pixel_x,pixel_y,lon,lat headers.
func loadStrictCSV(text string) (Set, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse GCP CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: empty CSV", ErrInsufficientControlPoints)
	}

	header := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		header[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"pixel_x", "pixel_y", "lon", "lat"} {
		if _, ok := header[required]; !ok {
			return nil, fmt.Errorf("gcp: CSV must have headers pixel_x,pixel_y,lon,lat, got %v", records[0])
		}
	}

	var set Set
	for _, rec := range records[1:] {
		px, err1 := parseField(rec, header["pixel_x"])
		py, err2 := parseField(rec, header["pixel_y"])
		lon, err3 := parseField(rec, header["lon"])
		lat, err4 := parseField(rec, header["lat"])
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
			continue
		}
		set = append(set, GroundControlPoint{PixelX: px, PixelY: py, GeoX: lon, GeoY: lat})
	}
	return set, nil
}

// sniffDelimiter returns the candidate delimiter occurring most often in the
// header line, or 0 if none occurs.
func sniffDelimiter(header string) rune {
	best := rune(0)
	bestCount := 0
	for _, d := range []rune{',', ';', '\t'} {
		if c := strings.Count(header, string(d)); c > bestCount {
			best = d
			bestCount = c
		}
	}
	return best
}

func fieldBySynonym(rec []string, header map[string]int, names []string) (float64, bool) {
	for _, name := range names {
		idx, ok := header[name]
		if !ok || idx >= len(rec) {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(rec[idx]), 64)
		if err != nil {
			continue
		}
		return v, true
	}
	return 0, false
}

func parseField(rec []string, idx int) (float64, error) {
	if idx >= len(rec) {
		return 0, fmt.Errorf("missing field %d", idx)
	}
	return strconv.ParseFloat(strings.TrimSpace(rec[idx]), 64)
}
