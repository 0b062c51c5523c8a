package config

import (
	"encoding/json"
	"strconv"
)

// Datum is a free-form record attached to a subunit, bubble or arc. The keys
// the library understands have accessors; everything else is passed through
// to popup templates and serialized with the element.
type Datum map[string]any

// Location is an arc endpoint: either a subunit id or explicit coordinates.
type Location struct {
	ID        string
	Latitude  float64
	Longitude float64
	HasCoords bool
}

func (d Datum) String(key string) (string, bool) {
	s, ok := d[key].(string)
	return s, ok
}

func (d Datum) Float(key string) (float64, bool) {
	return toFloat(d[key])
}

func (d Datum) FillKey() string {
	s, _ := d.String("fillKey")
	return s
}

// LatLng reports the datum's own coordinates.
func (d Datum) LatLng() (lat, lng float64, ok bool) {
	lat, ok1 := d.Float("latitude")
	lng, ok2 := d.Float("longitude")
	return lat, lng, ok1 && ok2
}

// Location reads an arc endpoint stored under key.
func (d Datum) Location(key string) (Location, bool) {
	switch v := d[key].(type) {
	case string:
		return Location{ID: v}, v != ""
	case map[string]any:
		lat, lng, ok := Datum(v).LatLng()
		return Location{Latitude: lat, Longitude: lng, HasCoords: ok}, ok
	case Datum:
		lat, lng, ok := v.LatLng()
		return Location{Latitude: lat, Longitude: lng, HasCoords: ok}, ok
	}
	return Location{}, false
}

// Clone returns a deep copy of d.
func (d Datum) Clone() Datum {
	if d == nil {
		return nil
	}
	out := Datum{}
	Merge(&out, d)
	return out
}

// JSON encodes the datum the way it is serialized onto rendered elements.
func (d Datum) JSON() string {
	if d == nil {
		return "{}"
	}
	b, err := json.Marshal(map[string]any(d))
	if err != nil {
		return "{}"
	}
	return string(b)
}

// ParseDatum decodes a serialized datum. Anything that is not a JSON object
// yields an empty datum.
func ParseDatum(s string) Datum {
	var d Datum
	if err := json.Unmarshal([]byte(s), &d); err != nil || d == nil {
		return Datum{}
	}
	return d
}

// DatumDefaults returns a copy of d with every key missing from d filled from
// def. Neither argument is modified.
func DatumDefaults(d, def Datum) Datum {
	out := d.Clone()
	if out == nil {
		out = Datum{}
	}
	Merge(&out, def)
	return out
}

// DefaultKey is the bubble key used when none is configured.
func DefaultKey(d Datum) string { return d.JSON() }

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	return 0, false
}
