package projection

import (
	"math"

	"github.com/paulmach/orb"
)

const graticulePrecision = 2.5

// Graticule returns meridians and parallels every step degrees. Minor
// meridians stop at 80 degrees of latitude; the meridians on multiples of 90
// run pole to pole.
func Graticule(step float64) orb.MultiLineString {
	if step <= 0 {
		step = 10
	}
	var out orb.MultiLineString
	for x := -180.0; x < 180-epsilon; x += step {
		ext := 80.0
		if math.Abs(math.Remainder(x, 90)) < epsilon {
			ext = 90 - epsilon
		}
		var ls orb.LineString
		for y := -ext; y < ext; y += graticulePrecision {
			ls = append(ls, orb.Point{x, y})
		}
		ls = append(ls, orb.Point{x, ext})
		out = append(out, ls)
	}
	for y := -80.0; y <= 80+epsilon; y += step {
		var ls orb.LineString
		for x := -180.0; x < 180; x += graticulePrecision {
			ls = append(ls, orb.Point{x, y})
		}
		ls = append(ls, orb.Point{180, y})
		out = append(out, ls)
	}
	return out
}
