package geom

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/paulmach/orb/geojson"
)

// FeatureSet is a GeoJSON boundary source. It holds a single object, so every
// object name yields the same features.
type FeatureSet []Feature

func (s FeatureSet) Features(string) ([]Feature, error) {
	out := make([]Feature, len(s))
	copy(out, s)
	return out, nil
}

// ParseGeoJSON reads a FeatureCollection, a single Feature or a bare geometry.
func ParseGeoJSON(data []byte) (FeatureSet, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, err
	}
	var out FeatureSet
	switch head.Type {
	case "":
		return nil, errors.New("invalid geojson: missing type")
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return nil, fmt.Errorf("geojson: %w", err)
		}
		for _, f := range fc.Features {
			out = append(out, fromGeoJSON(f))
		}
	case "Feature":
		f, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return nil, fmt.Errorf("geojson: %w", err)
		}
		out = append(out, fromGeoJSON(f))
	default:
		g, err := geojson.UnmarshalGeometry(data)
		if err != nil {
			return nil, fmt.Errorf("geojson: %w", err)
		}
		out = append(out, Feature{Geometry: g.Geometry()})
	}
	if len(out) == 0 {
		return nil, errors.New("no geometries found")
	}
	return out, nil
}

func fromGeoJSON(f *geojson.Feature) Feature {
	props := map[string]any(f.Properties)
	id := idString(f.ID)
	if id == "" {
		id = idString(props["id"])
	}
	return Feature{ID: id, Properties: props, Geometry: f.Geometry}
}
