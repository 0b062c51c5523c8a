package geom

import (
	"encoding/xml"
	"errors"
	"io"
	"strconv"
	"strings"

	"choromap/internal/config"
)

// ParseKML turns Placemark > Point coordinates into bubble datums carrying
// the placemark name. KML coordinates are "lon,lat[,alt]"; altitude is
// ignored.
func ParseKML(r io.Reader) ([]config.Datum, BBox, error) {
	type kmlPoint struct {
		Coordinates string `xml:"coordinates"`
	}
	type kmlPlacemark struct {
		Name        string    `xml:"name"`
		Description string    `xml:"description"`
		Point       *kmlPoint `xml:"Point"`
	}
	type kmlDoc struct {
		Placemarks []kmlPlacemark `xml:"Placemark"`
		Document   struct {
			Placemarks []kmlPlacemark `xml:"Placemark"`
			Folders    []struct {
				Placemarks []kmlPlacemark `xml:"Placemark"`
			} `xml:"Folder"`
		} `xml:"Document"`
	}

	var doc kmlDoc
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, BBox{}, err
	}
	placemarks := append([]kmlPlacemark{}, doc.Placemarks...)
	placemarks = append(placemarks, doc.Document.Placemarks...)
	for _, f := range doc.Document.Folders {
		placemarks = append(placemarks, f.Placemarks...)
	}

	var (
		out []config.Datum
		bb  BBox
	)
	for _, pm := range placemarks {
		if pm.Point == nil {
			continue
		}
		// only the first tuple of a point is meaningful
		parts := strings.Fields(pm.Point.Coordinates)
		if len(parts) == 0 {
			continue
		}
		vals := strings.Split(parts[0], ",")
		if len(vals) < 2 {
			continue
		}
		lon, err1 := strconv.ParseFloat(strings.TrimSpace(vals[0]), 64)
		lat, err2 := strconv.ParseFloat(strings.TrimSpace(vals[1]), 64)
		if err1 != nil || err2 != nil {
			continue
		}
		d := config.Datum{"latitude": lat, "longitude": lon}
		if pm.Name != "" {
			d["name"] = strings.TrimSpace(pm.Name)
		}
		if pm.Description != "" {
			d["description"] = strings.TrimSpace(pm.Description)
		}
		bb.Extend(lon, lat, len(out) == 0)
		out = append(out, d)
	}
	if len(out) == 0 {
		return nil, BBox{}, errors.New("kml: no points found")
	}
	return out, bb, nil
}
