// Package scene is the retained drawing surface a map renders into: ordered
// layers of SVG-like elements with styles, serialized data, screen-space
// outlines for hit testing and sampled enter/exit transitions.
package scene

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"choromap/internal/config"
	"choromap/internal/projection"
)

type Kind int

const (
	Path Kind = iota
	Circle
	Line
	Text
	Rect
	Use
)

func (k Kind) String() string {
	switch k {
	case Path:
		return "path"
	case Circle:
		return "circle"
	case Line:
		return "line"
	case Text:
		return "text"
	case Rect:
		return "rect"
	case Use:
		return "use"
	}
	return "unknown"
}

const (
	AttrInfo     = "data-info"
	AttrPrevious = "data-previousAttributes"
)

// highlighted lists the styles saved before a highlight and restored after.
var highlighted = []string{"fill", "stroke", "stroke-width", "fill-opacity"}

// Hover configures the interaction of an element. Highlight returns the
// styles to apply while hovered (nil disables highlighting); Popup returns
// the popup content (nil disables the popup).
type Hover struct {
	Highlight func(e *Element) map[string]string
	Popup     func(e *Element) string
}

// Element is one drawable node. Attrs are SVG attributes, Style the inline
// style properties.
type Element struct {
	Kind  Kind
	Key   string
	Class string
	ID    string
	Attrs map[string]string
	Style map[string]string
	Text  string
	// Title is plain-text popup content emitted for static output.
	Title string
	Datum config.Datum
	// Shape is the screen-space outline used for hit testing paths.
	Shape       orb.Geometry
	Hover       *Hover
	Transitions []*Transition

	layer   *Layer
	born    time.Duration
	exiting bool
	exitAt  time.Duration
}

func NewElement(kind Kind, class string) *Element {
	return &Element{Kind: kind, Class: class, Attrs: map[string]string{}, Style: map[string]string{}}
}

func (e *Element) SetAttr(k string, v float64) *Element {
	e.Attrs[k] = Num(v)
	return e
}

func (e *Element) Float(k string) float64 {
	v, _ := strconv.ParseFloat(e.Attrs[k], 64)
	return v
}

// SetInfo serializes the datum into the data-info attribute.
func (e *Element) SetInfo(d config.Datum) {
	e.Datum = d
	e.Attrs[AttrInfo] = d.JSON()
}

// Info parses the data-info attribute.
func (e *Element) Info() config.Datum {
	return config.ParseDatum(e.Attrs[AttrInfo])
}

func (e *Element) HasClass(c string) bool {
	for _, f := range strings.Fields(e.Class) {
		if f == c {
			return true
		}
	}
	return false
}

func (e *Element) Layer() *Layer { return e.layer }

func (e *Element) Exiting() bool { return e.exiting }

// Highlight stores the current highlightable styles, and any other style
// values overrides, in data-previousAttributes, then applies values.
func (e *Element) Highlight(values map[string]string) {
	prev := make(map[string]string, len(highlighted)+len(values))
	for _, k := range highlighted {
		prev[k] = e.Style[k]
	}
	for k := range values {
		prev[k] = e.Style[k]
	}
	b, _ := json.Marshal(prev)
	e.Attrs[AttrPrevious] = string(b)
	for k, v := range values {
		e.Style[k] = v
	}
}

// Restore applies the styles saved by Highlight.
func (e *Element) Restore() bool {
	raw, ok := e.Attrs[AttrPrevious]
	if !ok {
		return false
	}
	var prev map[string]string
	if err := json.Unmarshal([]byte(raw), &prev); err != nil {
		return false
	}
	for k, v := range prev {
		if v == "" {
			delete(e.Style, k)
			continue
		}
		e.Style[k] = v
	}
	return true
}

// Contains reports whether the screen point hits the element.
func (e *Element) Contains(p orb.Point) bool {
	switch e.Kind {
	case Circle:
		dx, dy := p[0]-e.Float("cx"), p[1]-e.Float("cy")
		return math.Hypot(dx, dy) <= e.Float("r")
	case Rect:
		x, y := e.Float("x"), e.Float("y")
		return p[0] >= x && p[0] <= x+e.Float("width") && p[1] >= y && p[1] <= y+e.Float("height")
	}
	switch g := e.Shape.(type) {
	case orb.Polygon:
		return planar.PolygonContains(g, p)
	case orb.MultiPolygon:
		return planar.MultiPolygonContains(g, p)
	case orb.LineString, orb.MultiLineString:
		w, err := strconv.ParseFloat(e.Style["stroke-width"], 64)
		if err != nil {
			w = 1
		}
		return planar.DistanceFrom(g, p) <= w/2+2
	}
	return false
}

// Num formats an attribute value the way path data is formatted.
func Num(v float64) string { return projection.Num(v) }
