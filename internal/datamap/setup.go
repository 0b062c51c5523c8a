package datamap

import (
	"fmt"
	"math"

	"choromap/internal/projection"
	"choromap/internal/scene"
)

// setProjection picks the projection for the scope and adds the globe
// outline for orthographic maps.
func (m *Map) setProjection() (projection.Projection, error) {
	w, h := m.opts.Width, m.opts.Height
	if m.opts.SetProjection != nil {
		p, err := m.opts.SetProjection(w, h)
		if err != nil {
			return nil, fmt.Errorf("setProjection: %w", err)
		}
		return p, nil
	}
	if m.opts.Scope == "usa" {
		return projection.New("albersUsa", projection.Scale(w), projection.Translate(w/2, h/2))
	}

	ty := h / 1.8
	if m.opts.Projection == "mercator" {
		ty = h / 1.45
	}
	opts := []projection.Option{
		projection.Scale((w + 1) / 2 / math.Pi),
		projection.Translate(w/2, ty),
	}
	if m.opts.Projection == "orthographic" {
		opts = append(opts,
			projection.Scale(250),
			projection.ClipAngle(90),
			projection.Rotate(m.opts.ProjectionConfig.Rotation...),
		)
	}
	p, err := projection.New(m.opts.Projection, opts...)
	if err != nil {
		return nil, err
	}
	if o, ok := p.(projection.Outliner); ok {
		m.drawSphere(o)
	}
	return p, nil
}

func (m *Map) drawSphere(o projection.Outliner) {
	cx, cy, r, ok := o.Outline()
	if !ok {
		return
	}
	sphere := scene.NewElement(scene.Path, "")
	sphere.ID = "sphere"
	sphere.Attrs["d"] = circlePath(cx, cy, r)
	m.scene.Defs = append(m.scene.Defs, sphere)

	l := m.scene.AddLayer("datamaps-sphere", false)
	stroke := scene.NewElement(scene.Use, "stroke")
	stroke.Attrs["xlink:href"] = "#sphere"
	stroke.Style["fill"] = "none"
	stroke.Style["stroke"] = "#000"
	stroke.Style["stroke-width"] = "3"
	l.Append(stroke)
	fill := scene.NewElement(scene.Use, "fill")
	fill.Attrs["xlink:href"] = "#sphere"
	fill.Style["fill"] = "#fff"
	l.Append(fill)
}

func circlePath(cx, cy, r float64) string {
	return fmt.Sprintf("M%s,%sA%s,%s 0 1,1 %s,%sA%s,%s 0 1,1 %s,%sZ",
		scene.Num(cx), scene.Num(cy-r),
		scene.Num(r), scene.Num(r), scene.Num(cx), scene.Num(cy+r),
		scene.Num(r), scene.Num(r), scene.Num(cx), scene.Num(cy-r))
}
