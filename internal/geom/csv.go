package geom

import (
	"encoding/csv"
	"errors"
	"io"
	"strconv"
	"strings"

	"choromap/internal/config"
)

// ParseCSV reads rows into datums. Column detection: lat|latitude|y and
// lon|lng|long|longitude|x (case-insensitive) become "latitude" and
// "longitude"; numeric cells become numbers. Rows with unparsable
// coordinates are skipped. A table without coordinate columns but with an
// "id" column is read as-is (choropleth rows).
func ParseCSV(r io.Reader) ([]config.Datum, BBox, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	recs, err := cr.ReadAll()
	if err != nil {
		return nil, BBox{}, err
	}
	if len(recs) == 0 {
		return nil, BBox{}, errors.New("empty csv")
	}
	header := recs[0]
	idxLat, idxLon, idxID := -1, -1, -1
	keys := make([]string, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		keys[i] = h
		switch strings.ToLower(h) {
		case "lat", "latitude", "y":
			if idxLat == -1 {
				idxLat = i
				keys[i] = "latitude"
			}
		case "lon", "lng", "long", "longitude", "x":
			if idxLon == -1 {
				idxLon = i
				keys[i] = "longitude"
			}
		case "id":
			idxID = i
		}
	}
	located := idxLat != -1 && idxLon != -1
	if !located && idxID == -1 {
		return nil, BBox{}, errors.New("csv: latitude/longitude columns not found")
	}

	var (
		out []config.Datum
		bb  BBox
	)
	for _, row := range recs[1:] {
		d := config.Datum{}
		for i, cell := range row {
			if i >= len(keys) || keys[i] == "" {
				continue
			}
			cell = strings.TrimSpace(cell)
			if i == idxID {
				d[keys[i]] = cell
				continue
			}
			if f, err := strconv.ParseFloat(cell, 64); err == nil {
				d[keys[i]] = f
			} else {
				d[keys[i]] = cell
			}
		}
		if located {
			lat, lon, ok := d.LatLng()
			if !ok {
				continue
			}
			bb.Extend(lon, lat, len(out) == 0)
		}
		out = append(out, d)
	}
	if len(out) == 0 {
		return nil, BBox{}, errors.New("csv: no valid rows parsed")
	}
	return out, bb, nil
}
