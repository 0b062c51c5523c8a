package geom_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"choromap/internal/config"
	"choromap/internal/geom"
	"choromap/internal/testutil"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestParseCSVDetectsCoordinateColumns(t *testing.T) {
	in := "Name,LAT,lng,radius\nParis,48.85,2.35,12\nbroken,x,y,1\nTokyo,35.68,139.69,20\n"
	ds, bb, err := geom.ParseCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, ds, 2)
	assert.Equal(t, config.Datum{"Name": "Paris", "latitude": 48.85, "longitude": 2.35, "radius": 12.0}, ds[0])
	assert.Equal(t, geom.BBox{MinX: 2.35, MinY: 35.68, MaxX: 139.69, MaxY: 48.85}, bb)
}

func TestParseCSVChoroplethRows(t *testing.T) {
	ds, _, err := geom.ParseCSV(strings.NewReader("id,fillKey\nUSA,high\n"))
	require.NoError(t, err)
	assert.Equal(t, []config.Datum{{"id": "USA", "fillKey": "high"}}, ds)

	_, _, err = geom.ParseCSV(strings.NewReader("a,b\n1,2\n"))
	require.Error(t, err)
}

func TestParseKML(t *testing.T) {
	in := `<?xml version="1.0"?>
<kml xmlns="http://www.opengis.net/kml/2.2"><Document>
  <Placemark><name>Oslo</name><Point><coordinates>10.75,59.91,0</coordinates></Point></Placemark>
  <Folder><Placemark><name>Bergen</name><Point><coordinates>5.32,60.39</coordinates></Point></Placemark></Folder>
  <Placemark><name>no point</name></Placemark>
</Document></kml>`
	ds, bb, err := geom.ParseKML(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, ds, 2)
	assert.Equal(t, "Oslo", ds[0]["name"])
	lat, lng, ok := ds[1].LatLng()
	require.True(t, ok)
	assert.InDelta(t, 60.39, lat, 1e-9)
	assert.InDelta(t, 5.32, lng, 1e-9)
	assert.Equal(t, 5.32, bb.MinX)
}

func TestLoadDatumsByExtension(t *testing.T) {
	ctx := context.Background()

	ds, err := geom.LoadDatums(ctx, writeFile(t, "b.json", `[{"name":"a","latitude":1,"longitude":2}]`))
	require.NoError(t, err)
	assert.Equal(t, 1.0, ds[0]["latitude"])

	ds, err = geom.LoadDatums(ctx, writeFile(t, "b.yaml", "- name: a\n  radius: 5\n  origin: {latitude: 1, longitude: 2}\n"))
	require.NoError(t, err)
	assert.Equal(t, 5.0, ds[0]["radius"])
	loc, ok := ds[0].Location("origin")
	require.True(t, ok)
	assert.Equal(t, 2.0, loc.Longitude)

	_, err = geom.LoadDatums(ctx, writeFile(t, "b.txt", "x"))
	require.ErrorIs(t, err, geom.ErrUnsupportedFormat)
}

func TestLoadChoropleth(t *testing.T) {
	ctx := context.Background()

	m, err := geom.LoadChoropleth(ctx, writeFile(t, "c.json", `{"USA":"#f00","CAN":{"fillKey":"high"}}`))
	require.NoError(t, err)
	assert.Equal(t, "#f00", m["USA"])
	assert.Equal(t, map[string]any{"fillKey": "high"}, m["CAN"])

	m, err = geom.LoadChoropleth(ctx, writeFile(t, "c.yml", "USA:\n  fillKey: low\n  count: 3\n"))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"fillKey": "low", "count": 3.0}, m["USA"])

	m, err = geom.LoadChoropleth(ctx, writeFile(t, "c.csv", "id,fillKey\nFRA,mid\n"))
	require.NoError(t, err)
	assert.Equal(t, config.Datum{"fillKey": "mid"}, m["FRA"])
}

func TestLoadBoundariesFromURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/world.topo.json" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(testutil.TopologyJSON))
	}))
	defer srv.Close()

	b, err := geom.LoadBoundaries(context.Background(), srv.URL+"/world.topo.json")
	require.NoError(t, err)
	fs, err := b.Features("usa")
	require.NoError(t, err)
	assert.Len(t, fs, 5)

	_, err = geom.LoadTopology(context.Background(), srv.URL+"/missing.json")
	require.Error(t, err)
}

func TestLoadBoundariesHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := geom.LoadBoundaries(ctx, "http://127.0.0.1:1/never")
	require.Error(t, err)
}

func TestParseGeoJSON(t *testing.T) {
	in := `{"type":"FeatureCollection","features":[
	  {"type":"Feature","id":"FRA","properties":{"name":"France"},
	   "geometry":{"type":"Polygon","coordinates":[[[0,42],[8,42],[8,50],[0,50],[0,42]]]}},
	  {"type":"Feature","properties":{"id":"ESP"},
	   "geometry":{"type":"Point","coordinates":[-3.7,40.4]}}
	]}`
	b, err := geom.ParseBoundaries([]byte(in))
	require.NoError(t, err)
	fs, err := b.Features("anything")
	require.NoError(t, err)
	require.Len(t, fs, 2)
	assert.Equal(t, "FRA", fs[0].ID)
	assert.Equal(t, "France", fs[0].Name())
	assert.Equal(t, "ESP", fs[1].ID)
	assert.Equal(t, orb.Point{-3.7, 40.4}, fs[1].Geometry)

	_, err = geom.ParseGeoJSON([]byte(`{"features":[]}`))
	require.Error(t, err)
}
