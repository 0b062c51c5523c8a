package datamap

import (
	"encoding/json"
	"reflect"

	"github.com/paulmach/orb"

	"choromap/internal/config"
	"choromap/internal/projection"
)

// datums converts an overlay data argument into records. ok is false when
// data is not an array.
func datums(data any) ([]config.Datum, bool) {
	if data == nil {
		return nil, false
	}
	switch v := data.(type) {
	case []config.Datum:
		return v, true
	case []map[string]any:
		out := make([]config.Datum, len(v))
		for i, d := range v {
			out[i] = config.Datum(d)
		}
		return out, true
	}
	rv := reflect.ValueOf(data)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]config.Datum, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		if d, ok := toDatum(rv.Index(i).Interface()); ok {
			out = append(out, d)
		}
	}
	return out, true
}

func toDatum(v any) (config.Datum, bool) {
	switch d := v.(type) {
	case config.Datum:
		return d, true
	case map[string]any:
		return config.Datum(d), true
	case nil:
		return nil, false
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, false
	}
	var d config.Datum
	if err := json.Unmarshal(b, &d); err != nil || d == nil {
		return nil, false
	}
	return d, true
}

// fixedPositions pins arc endpoints for countries whose centroid falls
// somewhere unhelpful (lat, lng).
var fixedPositions = map[string][2]float64{
	"CAN": {56.624472, -114.665293},
	"CHL": {-33.448890, -70.669265},
	"IDN": {-6.208763, 106.845599},
	"JPN": {35.689487, 139.691706},
	"MYS": {3.139003, 101.686855},
	"NOR": {59.913869, 10.752245},
	"USA": {41.140276, -100.760145},
	"VNM": {21.027764, 105.834160},
}

// usaCenter is the geographic center of the contiguous United States.
var usaCenter = orb.Point{-98.58333, 39.83333}

// centroid returns the projected centroid of a subunit of the scope.
func (m *Map) centroid(id string) (orb.Point, bool) {
	for _, f := range m.features {
		if f.ID == id {
			return projection.Centroid(f.Geometry, m.proj)
		}
	}
	return orb.Point{}, false
}

func (m *Map) project(lat, lng float64) (orb.Point, bool) {
	x, y, ok := m.proj.Project(lng, lat)
	return orb.Point{x, y}, ok
}
