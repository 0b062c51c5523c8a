package projection

import "math"

// conicEqualAreaRaw is the Albers conic equal-area projection for two
// standard parallels, in radians.
type conicEqualAreaRaw struct {
	n, c, rho0 float64
}

func newConicEqualArea(phi0, phi1 float64) conicEqualAreaRaw {
	sin0 := math.Sin(phi0)
	n := (sin0 + math.Sin(phi1)) / 2
	c := 1 + sin0*(2*n-sin0)
	return conicEqualAreaRaw{n: n, c: c, rho0: math.Sqrt(c) / n}
}

func (r conicEqualAreaRaw) forward(l, f float64) (float64, float64, bool) {
	v := r.c - 2*r.n*math.Sin(f)
	if v < 0 {
		v = 0
	}
	rho := math.Sqrt(v) / r.n
	return rho * math.Sin(l*r.n), r.rho0 - rho*math.Cos(l*r.n), true
}

func (r conicEqualAreaRaw) inverse(x, y float64) (float64, float64, bool) {
	rho0y := r.rho0 - y
	return math.Atan2(x, rho0y) / r.n, asin((r.c - (x*x+rho0y*rho0y)*r.n*r.n) / (2 * r.n)), true
}

// newAlbers is the conic equal-area projection centered on the contiguous
// United States unless overridden.
func newAlbers(s settings) Projection {
	if !s.hasRotate {
		s.rotate = [3]float64{96, 0, 0}
	}
	if !s.hasCenter {
		s.center = [2]float64{-0.6, 38.7}
	}
	if !s.hasParalls {
		s.parallels = [2]float64{29.5, 45.5}
	}
	if !s.hasScale {
		s.scale = 1070
	}
	return newProjector(newConicEqualArea(s.parallels[0]*rad, s.parallels[1]*rad), s)
}

// albersUSA composes the lower 48 with Alaska and Hawaii insets placed below
// and to the left of the mainland.
type albersUSA struct {
	lower48, alaska, hawaii *projector
	k, x, y                 float64
	extents                 [3][4]float64
}

func newAlbersUSA(s settings) Projection {
	if !s.hasScale {
		s.scale = 1070
	}
	k, x, y := s.scale, s.translate[0], s.translate[1]
	sub := func(rot, center, parallels [2]float64, scale, tx, ty float64) *projector {
		return newProjector(newConicEqualArea(parallels[0]*rad, parallels[1]*rad), settings{
			scale:     scale,
			translate: [2]float64{tx, ty},
			rotate:    [3]float64{rot[0], rot[1], 0},
			center:    center,
		})
	}
	a := &albersUSA{
		lower48: sub([2]float64{96, 0}, [2]float64{-0.6, 38.7}, [2]float64{29.5, 45.5}, k, x, y),
		alaska:  sub([2]float64{154, 0}, [2]float64{-2, 58.5}, [2]float64{55, 65}, k*0.35, x-0.307*k, y+0.201*k),
		hawaii:  sub([2]float64{157, 0}, [2]float64{-3, 19.9}, [2]float64{8, 18}, k, x-0.205*k, y+0.212*k),
		k:       k, x: x, y: y,
	}
	a.extents = [3][4]float64{
		{x - 0.455*k, y - 0.238*k, x + 0.455*k, y + 0.238*k},
		{x - 0.425*k, y + 0.120*k, x - 0.214*k, y + 0.234*k},
		{x - 0.214*k, y + 0.166*k, x - 0.115*k, y + 0.234*k},
	}
	return a
}

func (a *albersUSA) Project(lon, lat float64) (float64, float64, bool) {
	for i, p := range []*projector{a.lower48, a.alaska, a.hawaii} {
		px, py, ok := p.Project(lon, lat)
		if !ok {
			continue
		}
		e := a.extents[i]
		if px >= e[0] && px < e[2] && py >= e[1] && py < e[3] {
			return px, py, true
		}
	}
	return 0, 0, false
}

func (a *albersUSA) Invert(x, y float64) (float64, float64, bool) {
	if a.k == 0 {
		return 0, 0, false
	}
	nx, ny := (x-a.x)/a.k, (y-a.y)/a.k
	switch {
	case ny >= 0.120 && ny < 0.234 && nx >= -0.425 && nx < -0.214:
		return a.alaska.Invert(x, y)
	case ny >= 0.166 && ny < 0.234 && nx >= -0.214 && nx < -0.115:
		return a.hawaii.Invert(x, y)
	}
	return a.lower48.Invert(x, y)
}
