package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithDefaultsFillsUnset(t *testing.T) {
	opts := WithDefaults(Options{
		Scope: "usa",
		Fills: map[string]string{"HIGH": "#f00"},
		Geography: GeographyConfig{
			PopupOnHover: Bool(false),
			BorderColor:  "#000",
		},
	})

	assert.Equal(t, "usa", opts.Scope)
	assert.Equal(t, 800.0, opts.Width)
	assert.Equal(t, "equirectangular", opts.Projection)
	if diff := cmp.Diff(map[string]string{"HIGH": "#f00", DefaultFill: "#ABDDA4"}, opts.Fills); diff != "" {
		t.Errorf("fills mismatch (-want +got):\n%s", diff)
	}
	assert.False(t, Enabled(opts.Geography.PopupOnHover), "explicit false survives")
	assert.True(t, Enabled(opts.Geography.HighlightOnHover))
	assert.Equal(t, "#000", opts.Geography.BorderColor)
	assert.Equal(t, 1.0, Value(opts.Geography.BorderWidth))
	assert.Equal(t, Duration(100*time.Millisecond), Value(opts.Bubbles.ExitDelay))
	require.NotNil(t, opts.Bubbles.Key)
	assert.Equal(t, `{"a":1}`, opts.Bubbles.Key(Datum{"a": 1}))
}

func TestExplicitZerosSurviveDefaults(t *testing.T) {
	f, err := Parse([]byte(`
map:
  geographyConfig:
    borderWidth: 0
    highlightBorderWidth: 0
  bubblesConfig:
    fillOpacity: 0
    exitDelay: 0
  arcConfig:
    arcSharpness: 0
    animationSpeed: 0
  labelsConfig:
    lineWidth: 0
`))
	require.NoError(t, err)
	opts := WithDefaults(f.Map)

	for name, p := range map[string]*float64{
		"borderWidth":          opts.Geography.BorderWidth,
		"highlightBorderWidth": opts.Geography.HighlightBorderWidth,
		"fillOpacity":          opts.Bubbles.FillOpacity,
		"arcSharpness":         opts.Arcs.ArcSharpness,
		"lineWidth":            opts.Labels.LineWidth,
	} {
		require.NotNil(t, p, name)
		assert.Zero(t, *p, name)
	}
	require.NotNil(t, opts.Bubbles.ExitDelay)
	assert.Zero(t, *opts.Bubbles.ExitDelay)
	require.NotNil(t, opts.Arcs.AnimationSpeed)
	assert.Zero(t, *opts.Arcs.AnimationSpeed)

	// fields left out still take the defaults
	assert.Equal(t, 1.0, Value(opts.Geography.BorderOpacity))
	assert.Equal(t, 2.0, Value(opts.Bubbles.BorderWidth))
	assert.Equal(t, 1.0, Value(opts.Arcs.StrokeWidth))

	var fromJSON Options
	require.NoError(t, json.Unmarshal([]byte(`{"geographyConfig":{"borderWidth":0}}`), &fromJSON))
	assert.Zero(t, Value(WithDefaults(fromJSON).Geography.BorderWidth))
	assert.Equal(t, 0.0, Value[float64](nil))
}

func TestWithDefaultsDoesNotAlias(t *testing.T) {
	in := Options{Fills: map[string]string{"A": "#111"}}
	a := WithDefaults(in)
	b := WithDefaults(Options{})

	a.Fills["B"] = "#222"
	a.ProjectionConfig.Rotation[0] = 10
	a.Geography.HideAntarctica = Bool(false)

	assert.Len(t, in.Fills, 1, "input untouched")
	assert.NotContains(t, b.Fills, "B")
	assert.Equal(t, []float64{97, 0}, b.ProjectionConfig.Rotation)
	assert.Equal(t, []float64{97, 0}, DefaultOptions().ProjectionConfig.Rotation)
	assert.True(t, Enabled(b.Geography.HideAntarctica))
}

func TestMergeNestedMaps(t *testing.T) {
	dst := map[string]any{
		"a": 1.0,
		"nested": map[string]any{
			"x": "keep",
		},
		"nil": nil,
	}
	Merge(&dst, map[string]any{
		"a": 2.0,
		"b": "added",
		"nested": map[string]any{
			"x": "lost",
			"y": "filled",
		},
		"nil": "now set",
	})

	want := map[string]any{
		"a":   1.0,
		"b":   "added",
		"nil": "now set",
		"nested": map[string]any{
			"x": "keep",
			"y": "filled",
		},
	}
	if diff := cmp.Diff(want, dst); diff != "" {
		t.Errorf("merge mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeIgnoresMismatchedTypes(t *testing.T) {
	dst := Options{}
	Merge(&dst, LegendConfig{LegendTitle: "x"})
	Merge(dst, DefaultOptions())
	Merge(nil, DefaultOptions())
	assert.Equal(t, "", dst.Scope)

	var nilPtr *Options
	Merge(&dst, nilPtr)
	assert.Equal(t, "", dst.Scope)

	Merge(&dst, &Options{Scope: "usa"})
	assert.Equal(t, "usa", dst.Scope)
}

func TestMergeDeepCopiesDefaults(t *testing.T) {
	def := Datum{"inner": map[string]any{"k": "v"}, "list": []any{1.0}}
	var d Datum
	Merge(&d, def)
	d["inner"].(map[string]any)["k"] = "changed"
	d["list"].([]any)[0] = 2.0

	assert.Equal(t, "v", def["inner"].(map[string]any)["k"])
	assert.Equal(t, 1.0, def["list"].([]any)[0])
}

func TestDatumAccessors(t *testing.T) {
	d := Datum{
		"fillKey":     "HIGH",
		"latitude":    "40.5",
		"longitude":   -73,
		"origin":      "USA",
		"destination": map[string]any{"latitude": 1.0, "longitude": 2.0},
	}
	assert.Equal(t, "HIGH", d.FillKey())
	lat, lng, ok := d.LatLng()
	require.True(t, ok)
	assert.Equal(t, 40.5, lat)
	assert.Equal(t, -73.0, lng)

	o, ok := d.Location("origin")
	require.True(t, ok)
	assert.Equal(t, Location{ID: "USA"}, o)
	dst, ok := d.Location("destination")
	require.True(t, ok)
	assert.Equal(t, Location{Latitude: 1, Longitude: 2, HasCoords: true}, dst)
	_, ok = d.Location("missing")
	assert.False(t, ok)

	assert.Equal(t, Datum{}, ParseDatum("not json"))
	assert.Equal(t, Datum{}, ParseDatum("null"))
	assert.Equal(t, "{}", Datum(nil).JSON())
	assert.Equal(t, "HIGH", ParseDatum(d.JSON()).FillKey())
}

func TestDatumDefaults(t *testing.T) {
	prev := Datum{"fillKey": "LOW", "count": 3.0}
	got := DatumDefaults(Datum{"fillKey": "HIGH"}, prev)
	assert.Equal(t, Datum{"fillKey": "HIGH", "count": 3.0}, got)
	assert.Equal(t, "LOW", prev.FillKey())
	assert.Equal(t, Datum{"count": 3.0}, DatumDefaults(nil, Datum{"count": 3.0}))
}

func TestParseStrict(t *testing.T) {
	f, err := Parse([]byte(`
topology: world.topo.json
map:
  scope: world
  fills:
    HIGH: "#f00"
  arcConfig:
    animationSpeed: 250
  bubblesConfig:
    exitDelay: 1s
server:
  listen: ":9000"
`))
	require.NoError(t, err)
	assert.Equal(t, "world.topo.json", f.Topology)
	assert.Equal(t, "#f00", f.Map.Fills["HIGH"])
	assert.Equal(t, 250*time.Millisecond, f.Map.Arcs.AnimationSpeed.Std())
	assert.Equal(t, time.Second, f.Map.Bubbles.ExitDelay.Std())
	assert.Equal(t, ":9000", f.Server.Listen)

	_, err = Parse([]byte("map:\n  scop: world\n"))
	require.ErrorIs(t, err, ErrUnknownConfigField)

	_, err = Parse([]byte("topology: a\n---\ntopology: b\n"))
	require.ErrorIs(t, err, ErrMultipleDocuments)

	empty, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, &File{}, empty)

	_, err = Parse([]byte("map:\n  arcConfig:\n    animationSpeed: soon\n"))
	require.Error(t, err)
}

func TestLoadAppliesDefaultsAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "choromap.yaml")
	require.NoError(t, os.WriteFile(path, []byte("map:\n  scope: usa\nserver:\n  watch: false\n"), 0o600))

	t.Setenv("CHOROMAP_LISTEN", ":7070")
	f, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "usa", f.Map.Scope)
	assert.Equal(t, ":7070", f.Server.Listen)
	assert.Equal(t, "info", f.Log.Level)
	assert.Equal(t, 120, f.Server.RateLimit)
	assert.False(t, Enabled(f.Server.Watch))
	assert.Equal(t, 5*time.Minute, f.Server.CacheTTL.Std())

	_, err = LoadFile(filepath.Join(dir, "config.toml"))
	require.ErrorContains(t, err, "unsupported config format")
	_, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"CHOROMAP_LOG_LEVEL": "debug",
		"CHOROMAP_TOPOLOGY":  "https://example.test/world.json",
	}
	f := DefaultFile()
	ApplyEnv(&f, func(k string) string { return env[k] })
	assert.Equal(t, "debug", f.Log.Level)
	assert.Equal(t, "https://example.test/world.json", f.Topology)
	assert.Equal(t, ":8080", f.Server.Listen)
}

func TestValidate(t *testing.T) {
	f := DefaultFile()
	require.NoError(t, Validate(&f))

	bad := DefaultFile()
	bad.Map.Projection = "conic"
	require.ErrorIs(t, Validate(&bad), ErrInvalidOptions)

	bad = DefaultFile()
	bad.Map.Scope = ""
	require.ErrorIs(t, Validate(&bad), ErrInvalidOptions)

	bad = DefaultFile()
	bad.Map.ProjectionConfig.Rotation = []float64{1, 2, 3, 4}
	require.ErrorIs(t, Validate(&bad), ErrInvalidOptions)

	bad = DefaultFile()
	bad.Server.RateLimit = -1
	require.ErrorContains(t, Validate(&bad), "rateLimit")
}

func TestDurationJSON(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalJSON([]byte(`600`)))
	assert.Equal(t, 600*time.Millisecond, d.Std())
	require.NoError(t, d.UnmarshalJSON([]byte(`"1.5s"`)))
	assert.Equal(t, 1500*time.Millisecond, d.Std())
	require.Error(t, d.UnmarshalJSON([]byte(`true`)))

	b, err := Duration(time.Second).MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"1s"`, string(b))
}
