package projection

import "math"

// rotation turns the sphere by lambda around the polar axis, then by phi and
// gamma around the other two axes.
type rotation struct {
	dl                         float64
	cosPhi, sinPhi, cosG, sinG float64
	axial                      bool
}

func newRotation(dl, dphi, dgamma float64) rotation {
	return rotation{
		dl:     dl,
		cosPhi: math.Cos(dphi), sinPhi: math.Sin(dphi),
		cosG: math.Cos(dgamma), sinG: math.Sin(dgamma),
		axial: dphi != 0 || dgamma != 0,
	}
}

func wrap(l float64) float64 {
	if l > math.Pi {
		return l - 2*math.Pi
	}
	if l < -math.Pi {
		return l + 2*math.Pi
	}
	return l
}

func (r rotation) forward(l, f float64) (float64, float64) {
	l = wrap(l + r.dl)
	if !r.axial {
		return l, f
	}
	cosf := math.Cos(f)
	x := math.Cos(l) * cosf
	y := math.Sin(l) * cosf
	z := math.Sin(f)
	k := z*r.cosPhi + x*r.sinPhi
	return math.Atan2(y*r.cosG-k*r.sinG, x*r.cosPhi-z*r.sinPhi), asin(k*r.cosG + y*r.sinG)
}

func (r rotation) inverse(l, f float64) (float64, float64) {
	if r.axial {
		cosf := math.Cos(f)
		x := math.Cos(l) * cosf
		y := math.Sin(l) * cosf
		z := math.Sin(f)
		k := z*r.cosG - y*r.sinG
		l = math.Atan2(y*r.cosG+z*r.sinG, x*r.cosPhi+k*r.sinPhi)
		f = asin(k*r.cosPhi - x*r.sinPhi)
	}
	return wrap(l - r.dl), f
}

func asin(v float64) float64 {
	if v > 1 {
		return math.Pi / 2
	}
	if v < -1 {
		return -math.Pi / 2
	}
	return math.Asin(v)
}
