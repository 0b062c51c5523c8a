package render

import (
	"bytes"
	"encoding/xml"
	"image/png"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"choromap/internal/config"
	"choromap/internal/scene"
)

func sample() *scene.Scene {
	s := scene.New(200, 100)
	l := s.AddLayer("datamaps-subunits", false)
	p := scene.NewElement(scene.Path, "datamaps-subunit USA")
	p.Key = "USA"
	p.Attrs["d"] = "M10,10L90,10L90,90L10,90Z"
	p.Shape = orb.Polygon{{{10, 10}, {90, 10}, {90, 90}, {10, 90}, {10, 10}}}
	p.SetInfo(config.Datum{"name": "Kansas"})
	p.Style["fill"] = "#ABDDA4"
	p.Style["stroke"] = "rgba(250, 15, 160, 0.2)"
	p.Title = "United States"
	l.Append(p)

	b := s.AddLayer("bubbles", false)
	c := b.Append(scene.NewElement(scene.Circle, "datamaps-bubble"))
	c.SetAttr("cx", 150).SetAttr("cy", 50)
	c.Style["fill"] = "#f00"
	c.Animate(&scene.Transition{Attr: "r", From: 0, To: 20, Duration: 400 * time.Millisecond})

	labels := s.AddLayer("labels", false)
	t := scene.NewElement(scene.Text, "datamaps-label")
	t.SetAttr("x", 5).SetAttr("y", 5)
	t.Text = "<NY>"
	labels.Append(t)

	s.AddLayer("hidden", true).Append(scene.NewElement(scene.Rect, "never"))
	return s
}

func TestWriteSVGStatic(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSVG(&buf, sample(), SVGOptions{Titles: true}))
	out := buf.String()

	assert.Contains(t, out, `class="datamap"`)
	assert.Contains(t, out, `<g class="datamaps-subunits"`)
	assert.Contains(t, out, `<path class="datamaps-subunit USA" d="M10,10L90,10L90,90L10,90Z"`)
	assert.Contains(t, out, `data-info="{&#34;name&#34;:&#34;Kansas&#34;}"`)
	assert.Contains(t, out, `<title>United States</title>`)
	assert.Contains(t, out, `r="20"`)
	assert.NotContains(t, out, "<animate")
	assert.Contains(t, out, `&lt;NY&gt;</text>`)
	assert.NotContains(t, out, "never")

	// the document is well-formed XML
	dec := xml.NewDecoder(strings.NewReader(out))
	for {
		_, err := dec.Token()
		if err != nil {
			assert.ErrorIs(t, err, io.EOF)
			break
		}
	}
}

func TestWriteSVGAnimated(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSVG(&buf, sample(), SVGOptions{Animate: true}))
	out := buf.String()
	assert.Contains(t, out, `r="0"`)
	assert.Contains(t, out, `<animate attributeName="r" attributeType="XML" begin="0s" dur="0.4s" values="0;`)
	assert.Contains(t, out, `;20" keyTimes="0;0.125;0.25;`)
	assert.NotContains(t, out, "<title>")
}

func TestWriteSVGResponsiveScale(t *testing.T) {
	s := sample()
	s.Scale = 2
	var buf bytes.Buffer
	require.NoError(t, WriteSVG(&buf, s, SVGOptions{}))
	assert.Contains(t, buf.String(), `transform="scale(2)"`)
	assert.Contains(t, buf.String(), `data-width="100"`)
}

func TestExitingElementsAreSkipped(t *testing.T) {
	s := sample()
	b := s.Layer("bubbles").Elements[0]
	b.Exit(time.Second)
	var buf bytes.Buffer
	require.NoError(t, WriteSVG(&buf, s, SVGOptions{}))
	assert.NotContains(t, buf.String(), "datamaps-bubble")
}

func TestWritePNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePNG(&buf, sample(), 0, 0))
	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 200, img.Bounds().Dx())
	assert.Equal(t, 100, img.Bounds().Dy())

	r, g, b, a := img.At(50, 50).RGBA()
	assert.NotZero(t, a)
	assert.Greater(t, g, r)
	assert.Greater(t, g, b)
	_, _, _, a = img.At(195, 5).RGBA()
	assert.Zero(t, a)
}

func TestRasterizeEmpty(t *testing.T) {
	_, err := Rasterize(scene.New(0, 0), 0, 0)
	require.ErrorIs(t, err, ErrEmptyImage)
}

func TestWriteHTML(t *testing.T) {
	var buf bytes.Buffer
	legend := `<div class="datamaps-legend"><dl></dl></div>`
	require.NoError(t, WriteHTML(&buf, sample(), "World & Co", legend))
	out := buf.String()
	assert.Contains(t, out, "<title>World &amp; Co</title>")
	assert.Contains(t, out, legend)
	assert.Contains(t, out, "<svg")
	assert.NotContains(t, out, "<?xml")
	assert.Contains(t, out, "<animate")
}
