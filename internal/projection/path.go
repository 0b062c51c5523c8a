package projection

import (
	"math"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// PointRadius is the radius of the circle drawn for point geometries.
const PointRadius = 4.5

// Path renders g as SVG path data in screen space. Points the projection
// rejects break the current subpath; rings keep at least three points or are
// dropped.
func Path(g orb.Geometry, p Projection) string {
	var b strings.Builder
	writePath(&b, Screen(g, p))
	return b.String()
}

func writePath(b *strings.Builder, g orb.Geometry) {
	switch v := g.(type) {
	case orb.Point:
		x, y := v[0], v[1]
		b.WriteString("M" + Num(x) + "," + Num(y+PointRadius))
		b.WriteString("a" + Num(PointRadius) + "," + Num(PointRadius) + " 0 1,1 0," + Num(-2*PointRadius))
		b.WriteString("a" + Num(PointRadius) + "," + Num(PointRadius) + " 0 1,1 0," + Num(2*PointRadius) + "Z")
	case orb.MultiPoint:
		for _, pt := range v {
			writePath(b, pt)
		}
	case orb.LineString:
		writeLine(b, v, false)
	case orb.MultiLineString:
		for _, ls := range v {
			writeLine(b, ls, false)
		}
	case orb.Ring:
		writeLine(b, orb.LineString(v), true)
	case orb.Polygon:
		for _, r := range v {
			writeLine(b, orb.LineString(r), true)
		}
	case orb.MultiPolygon:
		for _, poly := range v {
			writePath(b, poly)
		}
	case orb.Collection:
		for _, c := range v {
			writePath(b, c)
		}
	}
}

func writeLine(b *strings.Builder, ls orb.LineString, closed bool) {
	if len(ls) == 0 {
		return
	}
	for i, pt := range ls {
		if i == 0 {
			b.WriteByte('M')
		} else {
			b.WriteByte('L')
		}
		b.WriteString(Num(pt[0]))
		b.WriteByte(',')
		b.WriteString(Num(pt[1]))
	}
	if closed {
		b.WriteByte('Z')
	}
}

// Num formats a coordinate with at most two decimals.
func Num(v float64) string {
	v = math.Round(v*100) / 100
	if v == 0 {
		v = 0 // drop negative zero
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Screen projects g into screen space. Lines are split where points are
// clipped; polygon rings lose their clipped points.
func Screen(g orb.Geometry, p Projection) orb.Geometry {
	switch v := g.(type) {
	case orb.Point:
		x, y, ok := p.Project(v[0], v[1])
		if !ok {
			return orb.MultiPoint{}
		}
		return orb.Point{x, y}
	case orb.MultiPoint:
		out := make(orb.MultiPoint, 0, len(v))
		for _, pt := range v {
			if x, y, ok := p.Project(pt[0], pt[1]); ok {
				out = append(out, orb.Point{x, y})
			}
		}
		return out
	case orb.LineString:
		return screenLine(v, p)
	case orb.MultiLineString:
		var out orb.MultiLineString
		for _, ls := range v {
			out = append(out, screenLine(ls, p)...)
		}
		return out
	case orb.Ring:
		return screenPolygon(orb.Polygon{v}, p)
	case orb.Polygon:
		return screenPolygon(v, p)
	case orb.MultiPolygon:
		var out orb.MultiPolygon
		for _, poly := range v {
			if sp := screenPolygon(poly, p); len(sp) > 0 {
				out = append(out, sp)
			}
		}
		return out
	case orb.Collection:
		var out orb.Collection
		for _, c := range v {
			out = append(out, Screen(c, p))
		}
		return out
	}
	return orb.Collection{}
}

func screenLine(ls orb.LineString, p Projection) orb.MultiLineString {
	var out orb.MultiLineString
	var cur orb.LineString
	for _, pt := range ls {
		x, y, ok := p.Project(pt[0], pt[1])
		if !ok {
			if len(cur) > 1 {
				out = append(out, cur)
			}
			cur = nil
			continue
		}
		cur = append(cur, orb.Point{x, y})
	}
	if len(cur) > 1 {
		out = append(out, cur)
	}
	return out
}

func screenPolygon(poly orb.Polygon, p Projection) orb.Polygon {
	var out orb.Polygon
	for i, r := range poly {
		var sr orb.Ring
		for _, pt := range r {
			if x, y, ok := p.Project(pt[0], pt[1]); ok {
				sr = append(sr, orb.Point{x, y})
			}
		}
		if len(sr) < 3 {
			if i == 0 {
				return nil
			}
			continue
		}
		if !sr.Closed() {
			sr = append(sr, sr[0])
		}
		out = append(out, sr)
	}
	return out
}

// Centroid is the area-weighted centroid of g in screen space.
func Centroid(g orb.Geometry, p Projection) (orb.Point, bool) {
	s := Screen(g, p)
	if isEmpty(s) {
		return orb.Point{}, false
	}
	c, _ := planar.CentroidArea(s)
	if math.IsNaN(c[0]) || math.IsNaN(c[1]) {
		return orb.Point{}, false
	}
	return c, true
}

func isEmpty(g orb.Geometry) bool {
	switch v := g.(type) {
	case orb.Point:
		return false
	case orb.MultiPoint:
		return len(v) == 0
	case orb.MultiLineString:
		return len(v) == 0
	case orb.Polygon:
		return len(v) == 0
	case orb.MultiPolygon:
		return len(v) == 0
	case orb.Collection:
		for _, c := range v {
			if !isEmpty(c) {
				return false
			}
		}
		return true
	}
	return g == nil
}
