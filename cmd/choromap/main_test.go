package main

import (
	"bytes"
	"context"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"choromap/internal/testutil"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func setup(t *testing.T) (dir, cfg string) {
	t.Helper()
	dir = t.TempDir()
	topo := writeFile(t, dir, "world.topo.json", testutil.TopologyJSON)
	data := writeFile(t, dir, "values.json", `{"USA": {"fillKey": "HIGH"}}`)
	cfg = writeFile(t, dir, "config.yaml", `
log:
  level: error
topology: `+topo+`
data: `+data+`
map:
  width: 400
  fills:
    HIGH: "#ff0000"
overlays:
  labels: true
`)
	return dir, cfg
}

func TestRunUsage(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 2, run(context.Background(), nil, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "Usage:")

	stderr.Reset()
	assert.Equal(t, 2, run(context.Background(), []string{"bogus"}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), `unknown command "bogus"`)

	assert.Equal(t, 0, run(context.Background(), []string{"version"}, &stdout, &stderr))
	assert.Equal(t, "dev\n", stdout.String())
}

func TestValidate(t *testing.T) {
	dir, cfg := setup(t)
	var stdout, stderr bytes.Buffer

	assert.Equal(t, 0, run(context.Background(), []string{"validate", "-f", cfg}, &stdout, &stderr))
	assert.Contains(t, stdout.String(), "is valid")

	assert.Equal(t, 2, run(context.Background(), []string{"validate"}, &stdout, &stderr))

	bad := writeFile(t, dir, "bad.yaml", "map:\n  projection: bogus\n")
	stderr.Reset()
	assert.Equal(t, 1, run(context.Background(), []string{"validate", "--file", bad}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "Configuration error in "+bad)
}

func TestRenderSVGToStdout(t *testing.T) {
	_, cfg := setup(t)
	var stdout, stderr bytes.Buffer

	code := run(context.Background(), []string{"render", "-f", cfg}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	out := stdout.String()
	assert.Contains(t, out, "<svg")
	assert.Contains(t, out, "datamaps-subunit USA")
	assert.Contains(t, out, "#ff0000")
	assert.Contains(t, out, ">USA</text>")
}

func TestRenderFormats(t *testing.T) {
	dir, cfg := setup(t)
	var stdout, stderr bytes.Buffer

	pngPath := filepath.Join(dir, "out.png")
	require.Equal(t, 0, run(context.Background(), []string{"render", "-f", cfg, "-o", pngPath}, &stdout, &stderr), stderr.String())
	f, err := os.Open(pngPath)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 400, img.Bounds().Dx())
	assert.Equal(t, 225, img.Bounds().Dy())

	htmlPath := filepath.Join(dir, "out.html")
	require.Equal(t, 0, run(context.Background(), []string{"render", "-f", cfg, "-o", htmlPath}, &stdout, &stderr), stderr.String())
	page, err := os.ReadFile(htmlPath)
	require.NoError(t, err)
	assert.Contains(t, string(page), "choromap: world")
	assert.Contains(t, string(page), "<svg")
}

func TestRenderErrors(t *testing.T) {
	dir, cfg := setup(t)
	var stdout, stderr bytes.Buffer

	assert.Equal(t, 2, run(context.Background(), []string{"render"}, &stdout, &stderr))
	assert.Equal(t, 2, run(context.Background(), []string{"render", "-f", cfg, "-o", "out.gif"}, &stdout, &stderr))
	assert.Equal(t, 2, run(context.Background(), []string{"render", "-nope"}, &stdout, &stderr))

	missing := writeFile(t, dir, "missing.yaml", "topology: "+filepath.Join(dir, "nope.json")+"\n")
	stderr.Reset()
	assert.Equal(t, 1, run(context.Background(), []string{"render", "-f", missing}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "load topology")

	scope := writeFile(t, dir, "scope.yaml", "topology: "+filepath.Join(dir, "world.topo.json")+"\nmap:\n  scope: mars\n")
	stderr.Reset()
	assert.Equal(t, 1, run(context.Background(), []string{"render", "-f", scope}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "unknown scope")
}

func TestPreviewRequiresInput(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 2, run(context.Background(), []string{"preview"}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "topology path is required")
}

func TestServeReportsListenFailure(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "serve.yaml", `
log:
  level: error
server:
  listen: "127.0.0.1:-1"
  watch: false
`)
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 1, run(context.Background(), []string{"serve", "-f", cfg}, &stdout, &stderr))
}
