package geom

import (
	"github.com/paulmach/orb"
)

type BBox struct {
	MinX float64
	MinY float64
	MaxX float64
	MaxY float64
}

// Extend grows b to cover (x, y). empty reports whether b held nothing yet.
func (b *BBox) Extend(x, y float64, empty bool) {
	if empty {
		*b = BBox{MinX: x, MinY: y, MaxX: x, MaxY: y}
		return
	}
	if x < b.MinX {
		b.MinX = x
	}
	if y < b.MinY {
		b.MinY = y
	}
	if x > b.MaxX {
		b.MaxX = x
	}
	if y > b.MaxY {
		b.MaxY = y
	}
}

func (b BBox) Valid() bool { return b.MaxX > b.MinX && b.MaxY > b.MinY }

// Feature is one renderable region (a subunit) with its lon/lat geometry.
type Feature struct {
	ID         string
	Properties map[string]any
	Geometry   orb.Geometry
}

// Name returns the "name" property, falling back to the id.
func (f Feature) Name() string {
	if n, ok := f.Properties["name"].(string); ok && n != "" {
		return n
	}
	return f.ID
}

// Boundaries yields the features of a named object (the map scope).
type Boundaries interface {
	Features(object string) ([]Feature, error)
}

// Bounds covers every vertex of the features.
func Bounds(features []Feature) BBox {
	var bb BBox
	n := 0
	for _, f := range features {
		if f.Geometry == nil {
			continue
		}
		b := f.Geometry.Bound()
		bb.Extend(b.Min[0], b.Min[1], n == 0)
		bb.Extend(b.Max[0], b.Max[1], false)
		n++
	}
	return bb
}
