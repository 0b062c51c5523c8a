package geom

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"choromap/internal/config"
)

var ErrUnsupportedFormat = errors.New("unsupported data format")

// LoadDatums reads an overlay dataset (bubbles or arcs) by file extension:
// .csv, .kml, .json or .yaml/.yml (a list of records).
func LoadDatums(ctx context.Context, src string) ([]config.Datum, error) {
	data, err := ReadAll(ctx, src)
	if err != nil {
		return nil, err
	}
	switch ext(src) {
	case ".csv":
		out, _, err := ParseCSV(bytes.NewReader(data))
		return out, err
	case ".kml":
		out, _, err := ParseKML(bytes.NewReader(data))
		return out, err
	case ".json":
		var out []config.Datum
		if err := json.Unmarshal(data, &out); err != nil {
			return nil, fmt.Errorf("decode %s: %w", src, err)
		}
		return out, nil
	case ".yaml", ".yml":
		var out []config.Datum
		if err := yaml.Unmarshal(data, &out); err != nil {
			return nil, fmt.Errorf("decode %s: %w", src, err)
		}
		return normalizeAll(out), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, src)
}

// LoadChoropleth reads a subunit id -> value map. Values are color strings or
// records. CSV input needs an "id" column.
func LoadChoropleth(ctx context.Context, src string) (map[string]any, error) {
	data, err := ReadAll(ctx, src)
	if err != nil {
		return nil, err
	}
	switch ext(src) {
	case ".csv":
		rows, _, err := ParseCSV(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		out := make(map[string]any, len(rows))
		for _, r := range rows {
			id, _ := r.String("id")
			if id == "" {
				continue
			}
			delete(r, "id")
			out[id] = r
		}
		return out, nil
	case ".yaml", ".yml":
		var out map[string]any
		if err := yaml.Unmarshal(data, &out); err != nil {
			return nil, fmt.Errorf("decode %s: %w", src, err)
		}
		return normalize(out).(map[string]any), nil
	case ".json", "":
		return ParseChoropleth(data)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, src)
}

// ParseChoropleth decodes a JSON choropleth map.
func ParseChoropleth(data []byte) (map[string]any, error) {
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode choropleth: %w", err)
	}
	if out == nil {
		out = map[string]any{}
	}
	return out, nil
}

func normalizeAll(ds []config.Datum) []config.Datum {
	for i, d := range ds {
		ds[i] = config.Datum(normalize(map[string]any(d)).(map[string]any))
	}
	return ds
}

// normalize converts YAML decoded values into the shapes JSON decoding
// produces (float64 numbers, map[string]any objects).
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			t[k] = normalize(e)
		}
		if t == nil {
			return map[string]any{}
		}
		return t
	case config.Datum:
		return normalize(map[string]any(t))
	case []any:
		for i, e := range t {
			t[i] = normalize(e)
		}
		return t
	case int:
		return float64(t)
	case int64:
		return float64(t)
	}
	return v
}
