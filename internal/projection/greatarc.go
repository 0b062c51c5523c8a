package projection

import (
	"math"

	"github.com/paulmach/orb"
)

// GreatArc interpolates the shorter great circle between two lon/lat points,
// one vertex per degree of arc (at least two vertices).
func GreatArc(from, to orb.Point) orb.LineString {
	l0, f0 := from[0]*rad, from[1]*rad
	l1, f1 := to[0]*rad, to[1]*rad
	x0, y0, z0 := math.Cos(f0)*math.Cos(l0), math.Cos(f0)*math.Sin(l0), math.Sin(f0)
	x1, y1, z1 := math.Cos(f1)*math.Cos(l1), math.Cos(f1)*math.Sin(l1), math.Sin(f1)

	d := math.Acos(math.Max(-1, math.Min(1, x0*x1+y0*y1+z0*z1)))
	if d < epsilon {
		return orb.LineString{from, to}
	}
	n := int(math.Ceil(d*deg)) + 1
	if n < 2 {
		n = 2
	}
	sind := math.Sin(d)
	out := make(orb.LineString, 0, n)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(n-1)
		a := math.Sin((1-t)*d) / sind
		b := math.Sin(t*d) / sind
		x := a*x0 + b*x1
		y := a*y0 + b*y1
		z := a*z0 + b*z1
		out = append(out, orb.Point{math.Atan2(y, x) * deg, math.Atan2(z, math.Hypot(x, y)) * deg})
	}
	return out
}
