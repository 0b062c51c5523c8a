package datamap

import (
	"fmt"

	"choromap/internal/config"
	"choromap/internal/projection"
	"choromap/internal/scene"
)

const GraticuleClass = "datamaps-graticule"

// drawGraticule inserts the graticule beneath the subunits; the plugin
// layer itself stays empty.
func drawGraticule(m *Map, _ *scene.Layer, _ any, options any) error {
	opts, ok := options.(config.GraticuleConfig)
	if !ok {
		return fmt.Errorf("%w: graticule options %T", config.ErrInvalidOptions, options)
	}
	l := m.scene.Layer(GraticuleClass)
	if l == nil {
		l = m.scene.InsertLayer(GraticuleClass, SubunitsClass)
	}
	l.Clear()
	g := projection.Graticule(opts.Step)
	e := scene.NewElement(scene.Path, GraticuleClass)
	e.Attrs["d"] = projection.Path(g, m.proj)
	e.Shape = projection.Screen(g, m.proj)
	e.Style["fill"] = "none"
	e.Style["stroke"] = "#777"
	e.Style["stroke-width"] = "0.5"
	e.Style["stroke-opacity"] = "0.5"
	l.Append(e)
	return nil
}
