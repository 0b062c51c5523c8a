// Package projection maps longitude/latitude to screen coordinates and turns
// geometries into SVG path data.
package projection

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

const (
	rad     = math.Pi / 180
	deg     = 180 / math.Pi
	epsilon = 1e-6
)

var ErrUnknownProjection = errors.New("unknown projection")

// Projection maps lon/lat degrees to screen pixels and back. ok is false for
// points the projection clips away.
type Projection interface {
	Project(lon, lat float64) (x, y float64, ok bool)
	Invert(x, y float64) (lon, lat float64, ok bool)
}

// Outliner is implemented by projections that draw a globe outline.
type Outliner interface {
	Outline() (cx, cy, r float64, ok bool)
}

type settings struct {
	scale      float64
	translate  [2]float64
	rotate     [3]float64
	center     [2]float64
	clipAngle  float64
	parallels  [2]float64
	hasCenter  bool
	hasParalls bool
	hasScale   bool
	hasRotate  bool
}

// Option adjusts a projection built by New.
type Option func(*settings)

func Scale(k float64) Option {
	return func(s *settings) { s.scale, s.hasScale = k, true }
}

func Translate(x, y float64) Option {
	return func(s *settings) { s.translate = [2]float64{x, y} }
}

// Rotate takes up to three angles in degrees: lambda, phi, gamma.
func Rotate(angles ...float64) Option {
	return func(s *settings) {
		s.rotate, s.hasRotate = [3]float64{}, true
		for i := 0; i < len(angles) && i < 3; i++ {
			s.rotate[i] = angles[i]
		}
	}
}

func Center(lon, lat float64) Option {
	return func(s *settings) { s.center, s.hasCenter = [2]float64{lon, lat}, true }
}

// ClipAngle hides points farther than angle degrees from the projection
// center. Zero disables clipping.
func ClipAngle(angle float64) Option {
	return func(s *settings) { s.clipAngle = angle }
}

// Parallels sets the standard parallels of conic projections.
func Parallels(phi0, phi1 float64) Option {
	return func(s *settings) { s.parallels, s.hasParalls = [2]float64{phi0, phi1}, true }
}

type constructor func(s settings) Projection

var registry = map[string]constructor{
	"equirectangular": func(s settings) Projection { return newProjector(equirectangularRaw{}, s) },
	"mercator":        func(s settings) Projection { return newProjector(mercatorRaw{}, s) },
	"orthographic":    func(s settings) Projection { return newProjector(orthographicRaw{}, s) },
	"albers":          newAlbers,
	"albersUsa":       newAlbersUSA,
}

// New builds the named projection. Defaults follow the usual cartographic
// library conventions: scale 150 and translate (480, 250).
func New(name string, opts ...Option) (Projection, error) {
	ctor, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProjection, name)
	}
	s := settings{scale: 150, translate: [2]float64{480, 250}}
	for _, o := range opts {
		o(&s)
	}
	return ctor(s), nil
}

// Known reports whether New accepts name.
func Known(name string) bool {
	_, ok := registry[name]
	return ok
}

// Names lists the supported projections.
func Names() []string {
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// rawProjection works in radians on the unit sphere.
type rawProjection interface {
	forward(lambda, phi float64) (x, y float64, ok bool)
	inverse(x, y float64) (lambda, phi float64, ok bool)
}

// projector applies rotation, clipping, scale, center and translate around a
// raw projection.
type projector struct {
	raw    rawProjection
	k      float64
	x, y   float64
	center [2]float64
	rot    rotation
	clip   float64 // cosine of the clip angle, or -2 when disabled
	dx, dy float64
	globe  bool
}

func newProjector(raw rawProjection, s settings) *projector {
	p := &projector{
		raw:    raw,
		k:      s.scale,
		x:      s.translate[0],
		y:      s.translate[1],
		center: [2]float64{s.center[0] * rad, s.center[1] * rad},
		rot:    newRotation(s.rotate[0]*rad, s.rotate[1]*rad, s.rotate[2]*rad),
		clip:   -2,
	}
	if s.clipAngle > 0 {
		p.clip = math.Cos(s.clipAngle * rad)
	}
	_, p.globe = raw.(orthographicRaw)
	p.reset()
	return p
}

// reset places the center, given in the rotated frame, at the translate point.
func (p *projector) reset() {
	cx, cy, _ := p.raw.forward(p.center[0], p.center[1])
	p.dx = p.x - cx*p.k
	p.dy = p.y + cy*p.k
}

func (p *projector) Project(lon, lat float64) (float64, float64, bool) {
	if math.IsNaN(lon) || math.IsNaN(lat) {
		return 0, 0, false
	}
	l, f := p.rot.forward(lon*rad, lat*rad)
	if p.clip > -2 && math.Cos(l)*math.Cos(f) < p.clip-epsilon {
		return 0, 0, false
	}
	x, y, ok := p.raw.forward(l, f)
	if !ok {
		return 0, 0, false
	}
	return x*p.k + p.dx, p.dy - y*p.k, true
}

func (p *projector) Invert(x, y float64) (float64, float64, bool) {
	if p.k == 0 {
		return 0, 0, false
	}
	l, f, ok := p.raw.inverse((x-p.dx)/p.k, (p.dy-y)/p.k)
	if !ok {
		return 0, 0, false
	}
	l, f = p.rot.inverse(l, f)
	return l * deg, f * deg, true
}

// Outline reports the visible disc of globe projections.
func (p *projector) Outline() (float64, float64, float64, bool) {
	if !p.globe {
		return 0, 0, 0, false
	}
	cx, cy, _ := p.raw.forward(0, 0)
	return cx*p.k + p.dx, p.dy - cy*p.k, p.k, true
}

type equirectangularRaw struct{}

func (equirectangularRaw) forward(l, f float64) (float64, float64, bool) { return l, f, true }
func (equirectangularRaw) inverse(x, y float64) (float64, float64, bool) { return x, y, true }

// mercatorRaw clamps latitude to the usual web-map limit.
type mercatorRaw struct{}

const mercatorMaxLat = 85.0511287798 * rad

func (mercatorRaw) forward(l, f float64) (float64, float64, bool) {
	f = math.Max(-mercatorMaxLat, math.Min(mercatorMaxLat, f))
	return l, math.Log(math.Tan(math.Pi/4 + f/2)), true
}

func (mercatorRaw) inverse(x, y float64) (float64, float64, bool) {
	return x, 2*math.Atan(math.Exp(y)) - math.Pi/2, true
}

type orthographicRaw struct{}

func (orthographicRaw) forward(l, f float64) (float64, float64, bool) {
	return math.Cos(f) * math.Sin(l), math.Sin(f), true
}

func (orthographicRaw) inverse(x, y float64) (float64, float64, bool) {
	rho := math.Hypot(x, y)
	if rho > 1+epsilon {
		return 0, 0, false
	}
	if rho < epsilon {
		return 0, 0, true
	}
	c := math.Asin(math.Min(1, rho))
	sinc, cosc := math.Sin(c), math.Cos(c)
	return math.Atan2(x*sinc, rho*cosc), math.Asin(y * sinc / rho), true
}
