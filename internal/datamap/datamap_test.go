package datamap

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"choromap/internal/config"
	"choromap/internal/projection"
	"choromap/internal/scene"
	"choromap/internal/testutil"
)

func newMap(t *testing.T, opts config.Options) *Map {
	t.Helper()
	m, err := New(context.Background(), opts, WithBoundaries(testutil.Topology(t)))
	require.NoError(t, err)
	return m
}

func subunitIDs(m *Map) []string {
	var ids []string
	for _, e := range m.Scene().Layer(SubunitsClass).Elements {
		ids = append(ids, e.Key)
	}
	return ids
}

func TestNewRequiresTopology(t *testing.T) {
	_, err := New(context.Background(), config.Options{})
	require.ErrorIs(t, err, ErrNoTopology)
}

func TestNewUnknownScope(t *testing.T) {
	_, err := New(context.Background(), config.Options{Scope: "mars"}, WithBoundaries(testutil.Topology(t)))
	require.ErrorIs(t, err, ErrUnknownScope)
}

func TestNewRejectsUnknownProjection(t *testing.T) {
	_, err := New(context.Background(), config.Options{Projection: "peters"}, WithBoundaries(testutil.Topology(t)))
	require.ErrorIs(t, err, projection.ErrUnknownProjection)
}

func TestDefaultProjectionAndSize(t *testing.T) {
	done := 0
	m := newMap(t, config.Options{Done: func() { done++ }})
	assert.Equal(t, 1, done)
	assert.Equal(t, 800.0, m.Options().Width)
	assert.Equal(t, 450.0, m.Options().Height)

	x, y, ok := m.LatLngToXY(0, 0)
	require.True(t, ok)
	assert.InDelta(t, 400, x, 1e-9)
	assert.InDelta(t, 250, y, 1e-9)

	x, y, _ = m.LatLngToXY(40, -100)
	lat, lng, ok := m.XYToLatLng(x, y)
	require.True(t, ok)
	assert.InDelta(t, 40, lat, 1e-9)
	assert.InDelta(t, -100, lng, 1e-9)
}

func TestSetProjectionHook(t *testing.T) {
	var gotW, gotH float64
	m := newMap(t, config.Options{
		Width: 300, Height: 200,
		SetProjection: func(w, h float64) (projection.Projection, error) {
			gotW, gotH = w, h
			return projection.New("mercator", projection.Scale(100), projection.Translate(w/2, h/2))
		},
	})
	assert.Equal(t, 300.0, gotW)
	assert.Equal(t, 200.0, gotH)
	x, y, _ := m.LatLngToXY(0, 0)
	assert.InDelta(t, 150, x, 1e-9)
	assert.InDelta(t, 100, y, 1e-9)
}

func TestHideFlags(t *testing.T) {
	m := newMap(t, config.Options{})
	assert.Equal(t, []string{"USA", "CAN", "FRA", "JPN"}, subunitIDs(m))

	m = newMap(t, config.Options{Geography: config.GeographyConfig{HideAntarctica: config.Bool(false)}})
	assert.Contains(t, subunitIDs(m), "ATA")

	m = newMap(t, config.Options{Scope: "usa", Geography: config.GeographyConfig{HideHawaiiAndAlaska: true}})
	assert.Equal(t, []string{"NY", "CA", "VT"}, subunitIDs(m))
}

func TestSubunitFillResolution(t *testing.T) {
	m := newMap(t, config.Options{
		Fills: map[string]string{"high": "#f00"},
		Data: map[string]config.Datum{
			"USA": {"fillKey": "high", "fillColor": "#999"},
			"CAN": {"fillKey": "high"},
			"FRA": {"fillKey": "missing"},
		},
	})
	l := m.Scene().Layer(SubunitsClass)
	assert.Equal(t, "#999", l.Find("USA").Style["fill"], "explicit color wins over the palette")
	assert.Equal(t, "#f00", l.Find("CAN").Style["fill"])
	assert.Equal(t, "#ABDDA4", l.Find("FRA").Style["fill"])
	assert.Equal(t, "#ABDDA4", l.Find("JPN").Style["fill"])

	usa := l.Find("USA")
	assert.Equal(t, "datamaps-subunit USA", usa.Class)
	assert.JSONEq(t, `{"fillKey":"high","fillColor":"#999"}`, usa.Attrs[scene.AttrInfo])
	assert.NotContains(t, l.Find("JPN").Attrs, scene.AttrInfo)
	assert.Equal(t, "1", usa.Style["stroke-width"])
	assert.Equal(t, "#FDFDFD", usa.Style["stroke"])
	assert.True(t, strings.HasPrefix(usa.Attrs["d"], "M"))
	assert.Equal(t, "United States", usa.Title)
}

func TestUpdateChoropleth(t *testing.T) {
	m := newMap(t, config.Options{
		Fills: map[string]string{"high": "#f00", "low": "#00f"},
		Data:  map[string]config.Datum{"USA": {"fillKey": "high", "name": "x"}},
	})
	l := m.Scene().Layer(SubunitsClass)

	update := map[string]any{
		"USA": map[string]any{"fillKey": "low", "extra": 1.0},
		"CAN": "#0f0",
		"FRA": map[string]any{"color": "#123"},
		"JPN": map[string]any{"fillKey": "nope"},
	}
	m.UpdateChoropleth(update, false)
	first := map[string]string{}
	for _, e := range l.Elements {
		first[e.Key] = e.Style["fill"]
	}
	assert.Equal(t, map[string]string{"USA": "#00f", "CAN": "#0f0", "FRA": "#123", "JPN": "#ABDDA4"}, first)
	assert.Equal(t, config.Datum{"fillKey": "low", "extra": 1.0, "name": "x"}, l.Find("USA").Info())

	m.UpdateChoropleth(update, false)
	for _, e := range l.Elements {
		assert.Equal(t, first[e.Key], e.Style["fill"], e.Key)
	}

	m.UpdateChoropleth(map[string]any{"CAN": "#abc"}, true)
	assert.Equal(t, "#ABDDA4", l.Find("USA").Style["fill"])
	assert.Equal(t, "{}", l.Find("USA").Attrs[scene.AttrInfo])
	assert.Equal(t, "#abc", l.Find("CAN").Style["fill"])
}

func TestHoverHighlightAndPopup(t *testing.T) {
	m := newMap(t, config.Options{})
	s := m.Scene()
	usa := s.Layer(SubunitsClass).Find("USA")
	before := map[string]string{}
	for k, v := range usa.Style {
		before[k] = v
	}

	x, y, _ := m.LatLngToXY(39, -100)
	require.True(t, s.MouseMove(x, y))
	assert.Same(t, usa, s.Hovered())
	assert.Equal(t, "#FC8D59", usa.Style["fill"])
	assert.Equal(t, "2", usa.Style["stroke-width"])
	assert.Equal(t, `<div class="hoverinfo"><strong>United States</strong></div>`, s.Popup.Content)
	assert.InDelta(t, y+30, s.Popup.Y, 1e-9)

	ox, oy, _ := m.LatLngToXY(-50, 0)
	s.MouseMove(ox, oy)
	assert.False(t, s.Popup.Visible)
	assert.Equal(t, before, usa.Style)
}

func TestHoverUsesDatumHighlightOverrides(t *testing.T) {
	m := newMap(t, config.Options{Data: map[string]config.Datum{"USA": {"highlightFillColor": "#000"}}})
	x, y, _ := m.LatLngToXY(39, -100)
	m.Scene().MouseMove(x, y)
	assert.Equal(t, "#000", m.Scene().Layer(SubunitsClass).Find("USA").Style["fill"])
}

func TestPopupFailureIsEmpty(t *testing.T) {
	m := newMap(t, config.Options{Geography: config.GeographyConfig{PopupTemplate: "{{.Geography.Properties.name"}})
	x, y, _ := m.LatLngToXY(39, -100)
	m.Scene().MouseMove(x, y)
	assert.True(t, m.Scene().Popup.Visible)
	assert.Empty(t, m.Scene().Popup.Content)

	m = newMap(t, config.Options{Geography: config.GeographyConfig{
		Popup: func(config.PopupContext) string { panic("boom") },
	}})
	m.Scene().MouseMove(x, y)
	assert.Empty(t, m.Scene().Popup.Content)
}

func TestPopupFailureLogsThroughMapLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)
	m, err := New(context.Background(), config.Options{
		Geography: config.GeographyConfig{PopupTemplate: "{{.Geography.Properties.name"},
	}, WithBoundaries(testutil.Topology(t)), WithLogger(logger))
	require.NoError(t, err)

	x, y, _ := m.LatLngToXY(39, -100)
	m.Scene().MouseMove(x, y)
	assert.Empty(t, m.Scene().Popup.Content)
	assert.Contains(t, buf.String(), "popup template does not parse")
	assert.Contains(t, buf.String(), `"scope":"world"`)
}

func TestHoverDisabled(t *testing.T) {
	m := newMap(t, config.Options{Geography: config.GeographyConfig{
		HighlightOnHover: config.Bool(false),
		PopupOnHover:     config.Bool(false),
	}})
	x, y, _ := m.LatLngToXY(39, -100)
	assert.False(t, m.Scene().MouseMove(x, y))
	assert.Equal(t, "#ABDDA4", m.Scene().Layer(SubunitsClass).Find("USA").Style["fill"])
}

func TestBubbles(t *testing.T) {
	m := newMap(t, config.Options{
		Fills:   map[string]string{"high": "#f00"},
		Filters: map[string]string{"glow": "url(#glow)"},
	})
	data := []config.Datum{
		{"name": "Paris", "latitude": 48.85, "longitude": 2.35, "radius": 10, "fillKey": "high", "filterKey": "glow"},
		{"name": "US", "centered": "USA", "radius": 5},
		{"name": "France", "centered": "FRA", "radius": 4, "borderColor": "#000"},
		{"name": "nowhere", "radius": 3},
	}
	require.NoError(t, m.Bubbles(data, nil))
	l := m.Layer("bubbles")
	require.NotNil(t, l)
	require.Len(t, l.Elements, 3)

	paris := l.Elements[0]
	x, y, _ := m.LatLngToXY(48.85, 2.35)
	assert.Equal(t, scene.Num(x), paris.Attrs["cx"])
	assert.Equal(t, scene.Num(y), paris.Attrs["cy"])
	assert.Equal(t, "0", paris.Attrs["r"])
	assert.Equal(t, "10", paris.Final("r"))
	assert.Equal(t, "#f00", paris.Style["fill"])
	assert.Equal(t, "url(#glow)", paris.Attrs["filter"])
	assert.Equal(t, "0.75", paris.Style["fill-opacity"])
	assert.Equal(t, "Paris", paris.Title)

	us := l.Elements[1]
	ux, uy, _ := m.LatLngToXY(39.83333, -98.58333)
	assert.Equal(t, scene.Num(ux), us.Attrs["cx"])
	assert.Equal(t, scene.Num(uy), us.Attrs["cy"])
	assert.Equal(t, "#ABDDA4", us.Style["fill"])

	fra := l.Elements[2]
	c, ok := projection.Centroid(m.Features()[2].Geometry, m.Projection())
	require.True(t, ok)
	assert.Equal(t, scene.Num(c[0]), fra.Attrs["cx"])
	assert.Equal(t, "#000", fra.Style["stroke"])

	m.Scene().Settle()
	assert.Equal(t, "10", paris.Attrs["r"])

	// keyed join: only Paris survives
	require.NoError(t, m.Bubbles(data[:1], nil))
	assert.Len(t, l.Live(), 1)
	m.Scene().Settle()
	assert.Len(t, l.Elements, 1)
	assert.Same(t, paris, l.Elements[0])
}

func TestBubblesWithoutAnimation(t *testing.T) {
	m := newMap(t, config.Options{})
	require.NoError(t, m.Bubbles([]any{map[string]any{"latitude": 1.0, "longitude": 2.0}}, &config.BubblesConfig{
		Radius:  7,
		Animate: config.Bool(false),
	}))
	e := m.Layer("bubbles").Elements[0]
	assert.Equal(t, "7", e.Attrs["r"])
	assert.Empty(t, e.Transitions)
}

func TestBubblesMustBeArray(t *testing.T) {
	m := newMap(t, config.Options{})
	require.ErrorIs(t, m.Bubbles(config.Datum{"latitude": 1}, nil), ErrBubblesNotArray)
	require.ErrorIs(t, m.Bubbles(nil, nil), ErrBubblesNotArray)
	require.ErrorIs(t, m.Bubbles("x", nil), ErrBubblesNotArray)
}

func TestBubbleHover(t *testing.T) {
	m := newMap(t, config.Options{})
	require.NoError(t, m.Bubbles([]config.Datum{{"name": "Paris", "latitude": 48.85, "longitude": 2.35, "radius": 10}}, nil))
	m.Scene().Settle()
	x, y, _ := m.LatLngToXY(48.85, 2.35)
	m.Scene().MouseMove(x+1, y)
	b := m.Layer("bubbles").Elements[0]
	assert.Same(t, b, m.Scene().Hovered())
	assert.Equal(t, "#FC8D59", b.Style["fill"])
	assert.Equal(t, "0.85", b.Style["fill-opacity"])
	assert.Contains(t, m.Scene().Popup.Content, "Paris")
}

func TestArcs(t *testing.T) {
	m := newMap(t, config.Options{})
	data := []config.Datum{
		{"origin": "CAN", "destination": map[string]any{"latitude": 48.85, "longitude": 2.35}, "options": map[string]any{"strokeWidth": 3.0}},
		{"origin": "FRA", "destination": "JPN"},
		{"origin": "ZZZ", "destination": "JPN"},
	}
	require.NoError(t, m.Arcs(data, nil))
	l := m.Layer("arc")
	require.Len(t, l.Elements, 2)

	first := l.Elements[0]
	ox, oy, _ := m.LatLngToXY(56.624472, -114.665293)
	dx, dy, _ := m.LatLngToXY(48.85, 2.35)
	mx, my := (ox+dx)/2+50, (oy+dy)/2-75
	want := "M" + scene.Num(ox) + "," + scene.Num(oy) + "S" + scene.Num(mx) + "," + scene.Num(my) + "," + scene.Num(dx) + "," + scene.Num(dy)
	assert.Equal(t, want, first.Attrs["d"])
	assert.Equal(t, "3", first.Style["stroke-width"])
	assert.Equal(t, "round", first.Style["stroke-linecap"])
	assert.Equal(t, "none", first.Style["fill"])
	assert.Equal(t, "#DD1C77", first.Style["stroke"])
	assert.NotContains(t, first.Info(), "options")
	assert.Equal(t, 3.0, first.Info()["strokeWidth"])
	assert.NotEmpty(t, first.Style["stroke-dasharray"])
	assert.Empty(t, first.Title)
	assert.Nil(t, first.Hover)

	m.Scene().Settle()
	assert.Equal(t, "0", first.Style["stroke-dashoffset"])
}

func TestExplicitZeroStyles(t *testing.T) {
	m := newMap(t, config.Options{Geography: config.GeographyConfig{BorderWidth: config.Float(0)}})
	assert.Equal(t, "0", m.Scene().Layer(SubunitsClass).Find("USA").Style["stroke-width"])

	require.NoError(t, m.Arcs([]config.Datum{{"origin": "CAN", "destination": "JPN"}}, &config.ArcConfig{
		ArcSharpness: config.Float(0),
	}))
	ox, oy, _ := m.LatLngToXY(56.624472, -114.665293)
	dx, dy, _ := m.LatLngToXY(35.689487, 139.691706)
	mx, my := (ox+dx)/2, (oy+dy)/2
	want := "M" + scene.Num(ox) + "," + scene.Num(oy) + "S" + scene.Num(mx) + "," + scene.Num(my) + "," + scene.Num(dx) + "," + scene.Num(dy)
	assert.Equal(t, want, m.Layer("arc").Elements[0].Attrs["d"], "zero sharpness puts the control point on the chord")

	require.NoError(t, m.Bubbles([]config.Datum{{"latitude": 48.85, "longitude": 2.35, "radius": 5}}, &config.BubblesConfig{
		FillOpacity: config.Float(0),
	}))
	assert.Equal(t, "0", m.Layer("bubbles").Elements[0].Style["fill-opacity"])
}

func TestArcsGreatArcAndPopup(t *testing.T) {
	m := newMap(t, config.Options{})
	err := m.Arcs([]config.Datum{{"origin": "USA", "destination": "FRA"}}, &config.ArcConfig{
		GreatArc:     true,
		PopupOnHover: config.Bool(true),
	})
	require.NoError(t, err)
	e := m.Layer("arc").Elements[0]
	assert.True(t, strings.HasPrefix(e.Attrs["d"], "M"))
	assert.NotContains(t, e.Attrs["d"], "S")
	require.NotNil(t, e.Hover)
	assert.Contains(t, e.Hover.Popup(e), "destination")
}

func TestArcsMustBeArray(t *testing.T) {
	m := newMap(t, config.Options{})
	require.ErrorIs(t, m.Arcs(map[string]any{}, nil), ErrArcsNotArray)
}

func TestLabels(t *testing.T) {
	m := newMap(t, config.Options{Scope: "usa", Labels: config.LabelsConfig{CustomLabelText: map[string]string{"CA": "Calif."}}})
	require.NoError(t, m.Labels(nil))
	l := m.Layer("labels")

	texts := map[string]*scene.Element{}
	var lines []*scene.Element
	for _, e := range l.Elements {
		switch e.Kind {
		case scene.Text:
			texts[e.Key] = e
		case scene.Line:
			lines = append(lines, e)
		}
	}
	require.Contains(t, texts, "NY")
	require.Contains(t, texts, "VT")
	assert.Equal(t, "Calif.", texts["CA"].Text)
	assert.Equal(t, "10px", texts["NY"].Style["font-size"])
	assert.Equal(t, "Verdana", texts["NY"].Style["font-family"])

	var ny screenPoint
	for _, f := range m.Features() {
		if f.ID == "NY" {
			c, ok := projection.Centroid(f.Geometry, m.Projection())
			require.True(t, ok)
			ny = screenPoint{c[0], c[1]}
		}
	}
	assert.Equal(t, scene.Num(ny.x+1), texts["NY"].Attrs["x"])
	assert.Equal(t, scene.Num(ny.y+5), texts["NY"].Attrs["y"])

	ax, ay, _ := m.LatLngToXY(42.722131, -67.707617)
	assert.Equal(t, scene.Num(ax), texts["VT"].Attrs["x"])
	assert.Equal(t, scene.Num(ay), texts["VT"].Attrs["y"])
	require.Len(t, lines, 1)
	assert.Equal(t, "VT", lines[0].Key)
	assert.Equal(t, scene.Num(ax-3), lines[0].Attrs["x1"])

	// a second call redraws instead of stacking duplicates
	n := len(l.Elements)
	require.NoError(t, m.Labels(nil))
	assert.Len(t, l.Elements, n)
}

type screenPoint struct{ x, y float64 }

func TestLegend(t *testing.T) {
	m := newMap(t, config.Options{Fills: map[string]string{"high": "#f00", "low": "#00f"}})
	require.NoError(t, m.Legend(&config.LegendConfig{LegendTitle: "Key", Labels: map[string]string{"high": "High"}}))
	assert.Equal(t,
		`<div class="datamaps-legend"><h2>Key</h2><dl><dt>High</dt><dd style="background-color:#f00">&nbsp;</dd>`+
			`<dt>low: </dt><dd style="background-color:#00f">&nbsp;</dd></dl></div>`,
		m.LegendHTML())

	require.NoError(t, m.Legend(&config.LegendConfig{DefaultFillName: "Other"}))
	assert.Contains(t, m.LegendHTML(), `<dt>Other</dt><dd style="background-color:#ABDDA4">`)
	assert.NotContains(t, m.LegendHTML(), "<h2>")

	var swatches int
	for _, e := range m.Layer("legend").Elements {
		if e.Kind == scene.Rect {
			swatches++
		}
	}
	assert.Equal(t, 3, swatches)
}

func TestGraticuleBeneathSubunits(t *testing.T) {
	m := newMap(t, config.Options{})
	require.NoError(t, m.Graticule(nil))
	var classes []string
	for _, l := range m.Scene().Layers {
		classes = append(classes, l.Class)
	}
	assert.Equal(t, []string{GraticuleClass, SubunitsClass, "graticule"}, classes)
	g := m.Scene().Layer(GraticuleClass).Elements[0]
	assert.Equal(t, "none", g.Style["fill"])
	assert.NotEmpty(t, g.Attrs["d"])
}

func TestPlugins(t *testing.T) {
	m := newMap(t, config.Options{})
	require.ErrorIs(t, m.AddPlugin("bubbles", nil), ErrPluginExists)
	require.ErrorIs(t, m.Call("nope", nil, nil), ErrUnknownPlugin)

	var got []any
	require.NoError(t, m.AddPlugin("dots", func(_ *Map, l *scene.Layer, _ any, opts any) error {
		got = append(got, opts)
		l.Append(scene.NewElement(scene.Circle, "dot"))
		return nil
	}))
	require.ErrorIs(t, m.AddPlugin("dots", nil), ErrPluginExists)
	m.SetPluginConfig("dots", config.Datum{"color": "red", "size": 2.0})

	callerOpts := config.Datum{"size": 5.0}
	require.NoError(t, m.Call("dots", nil, callerOpts))
	assert.Equal(t, config.Datum{"color": "red", "size": 5.0}, got[0])
	assert.Equal(t, config.Datum{"size": 5.0}, callerOpts)

	first := m.Layer("dots")
	require.NoError(t, m.Call("dots", nil, nil))
	assert.Equal(t, config.Datum{"color": "red", "size": 2.0}, got[1])
	assert.Same(t, first, m.Layer("dots"))
	assert.Len(t, first.Elements, 2)

	var cb *scene.Layer
	require.NoError(t, m.Call("dots", nil, nil, NewLayer(), Then(func(l *scene.Layer) { cb = l })))
	assert.NotSame(t, first, m.Layer("dots"))
	assert.Same(t, cb, m.Layer("dots"))
	assert.Len(t, cb.Elements, 1)
}

func TestCallMergesBuiltinOptions(t *testing.T) {
	m := newMap(t, config.Options{})
	var seen config.BubblesConfig
	m.plugins["bubbles"] = func(_ *Map, _ *scene.Layer, _ any, opts any) error {
		seen = opts.(config.BubblesConfig)
		return nil
	}
	require.NoError(t, m.Bubbles([]config.Datum{}, &config.BubblesConfig{BorderColor: "#000"}))
	assert.Equal(t, "#000", seen.BorderColor)
	assert.Equal(t, 2.0, config.Value(seen.BorderWidth))
	assert.Equal(t, 0.75, config.Value(seen.FillOpacity))
	assert.NotNil(t, seen.Key)
}

func TestResize(t *testing.T) {
	m := newMap(t, config.Options{})
	require.NoError(t, m.Bubbles([]config.Datum{{"latitude": 0, "longitude": 0, "radius": 4}}, nil))
	require.NoError(t, m.Resize(400, 0))
	x, y, _ := m.LatLngToXY(0, 0)
	assert.InDelta(t, 200, x, 1e-9)
	assert.InDelta(t, 125, y, 1e-9)
	require.Len(t, m.Layer("bubbles").Elements, 1)
	b := m.Layer("bubbles").Elements[0]
	assert.Equal(t, "200", b.Attrs["cx"])
	assert.Equal(t, "4", b.Attrs["r"])

	r := newMap(t, config.Options{Responsive: true})
	require.NoError(t, r.Resize(1600, 0))
	assert.Equal(t, 2.0, r.Scene().Scale)
	assert.Equal(t, 900.0, r.Scene().Height)

	require.Error(t, r.Resize(0, 0))
}

func TestOrthographicSphere(t *testing.T) {
	m := newMap(t, config.Options{Projection: "orthographic"})
	s := m.Scene()
	require.Len(t, s.Defs, 1)
	assert.Equal(t, "sphere", s.Defs[0].ID)
	assert.Equal(t, "datamaps-sphere", s.Layers[0].Class)
	assert.Equal(t, "#sphere", s.Layers[0].Elements[0].Attrs["xlink:href"])

	// rotated to lon -97: France is on the far side
	_, _, ok := m.LatLngToXY(46, 4)
	assert.False(t, ok)
	_, _, ok = m.LatLngToXY(39, -97)
	assert.True(t, ok)
}

func TestRemoteDataAndTopology(t *testing.T) {
	dir := t.TempDir()
	topo := filepath.Join(dir, "world.topo.json")
	require.NoError(t, os.WriteFile(topo, []byte(testutil.TopologyJSON), 0o600))
	data := filepath.Join(dir, "data.json")
	require.NoError(t, os.WriteFile(data, []byte(`{"USA":"#123456"}`), 0o600))

	m, err := New(context.Background(), config.Options{
		DataURL:   data,
		Geography: config.GeographyConfig{DataURL: topo},
	})
	require.NoError(t, err)
	assert.Equal(t, "#123456", m.Scene().Layer(SubunitsClass).Find("USA").Style["fill"])
}

func TestApplyOverlays(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
		return p
	}
	data := write("data.yaml", "USA:\n  fillKey: HIGH\n")
	bubbles := write("bubbles.csv", "name,lat,lon,radius\nChicago,41.8,-87.6,10\nParis,48.8,2.3,5\n")
	arcs := write("arcs.json", `[{"origin":"CAN","destination":"JPN"}]`)

	m := newMap(t, config.Options{Fills: map[string]string{"HIGH": "#f00"}})
	require.NoError(t, m.ApplyOverlays(context.Background(), data, config.OverlaysConfig{
		Bubbles:   bubbles,
		Arcs:      arcs,
		Labels:    true,
		Legend:    true,
		Graticule: true,
	}))

	assert.Equal(t, "#f00", m.Scene().Layer(SubunitsClass).Find("USA").Style["fill"])
	assert.Len(t, m.Layer("bubbles").Live(), 2)
	assert.Len(t, m.Layer("arc").Live(), 1)
	assert.NotEmpty(t, m.Layer("labels").Live())
	assert.Contains(t, m.LegendHTML(), "HIGH")
	assert.Equal(t, "datamaps-graticule", m.Scene().Layers[0].Class)

	err := m.ApplyOverlays(context.Background(), "", config.OverlaysConfig{Bubbles: filepath.Join(dir, "b.txt")})
	require.ErrorContains(t, err, "load bubbles")
}
