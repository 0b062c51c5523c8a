package tui

import (
	"math"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"choromap/internal/scene"
)

// viewport maps scene coordinates onto the braille microgrid of a w x h
// cell area. The scene is fitted into the area, then zoomed around its
// center and panned by whole cells.
type viewport struct {
	w, h   int
	sw, sh float64
	zoom   float64
	ox, oy int
}

func (v viewport) scale() float64 {
	if v.sw <= 0 || v.sh <= 0 {
		return 0
	}
	return math.Min(float64(v.w*2)/v.sw, float64(v.h*4)/v.sh) * v.zoom
}

// toMicro converts a scene point to micro-pixel coordinates.
func (v viewport) toMicro(x, y float64) (float64, float64) {
	s := v.scale()
	return (x-v.sw/2)*s + float64(v.w) + float64(v.ox*2),
		(y-v.sh/2)*s + float64(v.h*2) + float64(v.oy*4)
}

// toScene converts the center of a cell back to scene coordinates.
func (v viewport) toScene(cx, cy int) (float64, float64, bool) {
	s := v.scale()
	if s <= 0 {
		return 0, 0, false
	}
	mx, my := float64(cx*2)+1, float64(cy*4)+2
	return (mx-float64(v.w)-float64(v.ox*2))/s + v.sw/2,
		(my-float64(v.h*2)-float64(v.oy*4))/s + v.sh/2, true
}

func (m Model) viewport(w, h int) viewport {
	s := m.dm.Scene()
	scale := s.Scale
	if scale <= 0 {
		scale = 1
	}
	return viewport{w: w, h: h, sw: s.Width / scale, sh: s.Height / scale, zoom: m.zoom, ox: m.offsetX, oy: m.offsetY}
}

// renderMap paints every visible layer of the scene, bottom to top.
func (m Model) renderMap(w, h int) string {
	v := m.viewport(w, h)
	br := newBrailleBuf(w, h)
	for _, l := range m.dm.Scene().Layers {
		if l.Hidden {
			continue
		}
		for _, e := range l.Elements {
			paintElement(br, v, e)
		}
	}
	return strings.Join(br.toLines(), "\n")
}

func paintElement(br *brailleBuf, v viewport, e *scene.Element) {
	fill, hasFill := termColor(e.Style["fill"])
	stroke, hasStroke := termColor(e.Style["stroke"])
	if w, ok := e.Style["stroke-width"]; ok && strings.TrimSuffix(w, "px") == "0" {
		hasStroke = false
	}

	switch e.Kind {
	case scene.Path:
		switch g := e.Shape.(type) {
		case orb.Polygon:
			paintPolygon(br, v, g, fill, hasFill, stroke, hasStroke)
		case orb.MultiPolygon:
			for _, p := range g {
				paintPolygon(br, v, p, fill, hasFill, stroke, hasStroke)
			}
		case orb.LineString, orb.MultiLineString:
			if !hasStroke {
				return
			}
			for _, ls := range visibleLines(e, g) {
				strokeLine(br, v, ls, stroke)
			}
		}
	case scene.Circle:
		if !hasFill {
			fill, hasFill = stroke, hasStroke
		}
		if !hasFill {
			return
		}
		x, y := v.toMicro(e.Float("cx"), e.Float("cy"))
		br.fillCircle(x, y, e.Float("r")*v.scale(), fill)
	case scene.Line:
		if hasStroke {
			strokeLine(br, v, orb.LineString{{e.Float("x1"), e.Float("y1")}, {e.Float("x2"), e.Float("y2")}}, stroke)
		}
	case scene.Rect:
		if hasFill {
			x, y, wd, ht := e.Float("x"), e.Float("y"), e.Float("width"), e.Float("height")
			ring := orb.Ring{{x, y}, {x + wd, y}, {x + wd, y + ht}, {x, y + ht}, {x, y}}
			paintPolygon(br, v, orb.Polygon{ring}, fill, true, "", false)
		}
	case scene.Text:
		color := fill
		if !hasFill {
			color = ""
		}
		x, y := v.toMicro(e.Float("x"), e.Float("y"))
		br.putText(int(math.Floor(x/2)), int(math.Floor((y-1)/4)), e.Text, color)
	}
}

func paintPolygon(br *brailleBuf, v viewport, p orb.Polygon, fill string, hasFill bool, stroke string, hasStroke bool) {
	rings := make([][][2]float64, 0, len(p))
	for _, r := range p {
		pts := make([][2]float64, 0, len(r))
		for _, q := range r {
			x, y := v.toMicro(q[0], q[1])
			pts = append(pts, [2]float64{x, y})
		}
		if len(pts) >= 3 {
			rings = append(rings, pts)
		}
	}
	if len(rings) == 0 {
		return
	}
	if hasFill {
		br.fillRings(rings, fill)
	}
	if hasStroke {
		for _, r := range rings {
			for i := 0; i+1 < len(r); i++ {
				br.drawLineMicro(int(r[i][0]), int(r[i][1]), int(r[i+1][0]), int(r[i+1][1]), stroke)
			}
		}
	}
}

func strokeLine(br *brailleBuf, v viewport, ls orb.LineString, color string) {
	for i := 0; i+1 < len(ls); i++ {
		x0, y0 := v.toMicro(ls[i][0], ls[i][1])
		x1, y1 := v.toMicro(ls[i+1][0], ls[i+1][1])
		br.drawLineMicro(int(x0), int(y0), int(x1), int(y1), color)
	}
}

// visibleLines honors an animated stroke-dashoffset: an arc being drawn in
// shows only the part of its length already traced.
func visibleLines(e *scene.Element, g orb.Geometry) []orb.LineString {
	var lines []orb.LineString
	switch t := g.(type) {
	case orb.LineString:
		lines = []orb.LineString{t}
	case orb.MultiLineString:
		lines = append(lines, t...)
	}
	offset := parseFloat(e.Style["stroke-dashoffset"])
	if offset <= 0 || len(lines) != 1 {
		return lines
	}
	total := planar.Length(lines[0])
	return []orb.LineString{truncate(lines[0], total-offset)}
}

// truncate keeps the first length units of ls.
func truncate(ls orb.LineString, length float64) orb.LineString {
	if length <= 0 {
		return nil
	}
	out := orb.LineString{ls[0]}
	for i := 1; i < len(ls); i++ {
		seg := planar.Distance(ls[i-1], ls[i])
		if seg >= length {
			t := length / seg
			out = append(out, orb.Point{
				ls[i-1][0] + t*(ls[i][0]-ls[i-1][0]),
				ls[i-1][1] + t*(ls[i][1]-ls[i-1][1]),
			})
			return out
		}
		length -= seg
		out = append(out, ls[i])
	}
	return out
}
