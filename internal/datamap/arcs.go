package datamap

import (
	"fmt"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/tanema/gween/ease"

	"choromap/internal/config"
	"choromap/internal/projection"
	"choromap/internal/scene"
)

const (
	ArcClass   = "datamaps-arc"
	arcDelay   = 100 * time.Millisecond
	bezierStep = 24
)

func drawArcs(m *Map, layer *scene.Layer, data any, options any) error {
	ds, ok := datums(data)
	if !ok {
		return ErrArcsNotArray
	}
	opts, ok := options.(config.ArcConfig)
	if !ok {
		return fmt.Errorf("%w: arc options %T", config.ErrInvalidOptions, options)
	}
	// per-arc "options" are folded into the arc itself
	folded := make([]config.Datum, len(ds))
	keys := make([]string, len(ds))
	for i, d := range ds {
		var inner config.Datum
		if o, ok := toDatum(d["options"]); ok {
			inner = o
		}
		f := config.DatumDefaults(d, inner)
		delete(f, "options")
		folded[i] = f
		keys[i] = f.JSON()
	}

	enter := func(i int) *scene.Element {
		d := folded[i]
		origin, ok1 := m.arcEndpoint(d, "origin")
		dest, ok2 := m.arcEndpoint(d, "destination")
		if !ok1 || !ok2 {
			m.log.Debug().Interface("datum", d).Msg("arc endpoint cannot be placed")
			return nil
		}
		e := scene.NewElement(scene.Path, ArcClass)
		e.Style["stroke-linecap"] = "round"
		e.Style["stroke"] = str(d, "strokeColor", opts.StrokeColor)
		e.Style["fill"] = "none"
		e.Style["stroke-width"] = scene.Num(num(d, "strokeWidth", config.Value(opts.StrokeWidth)))

		var shape orb.Geometry
		if b, ok := d["greatArc"].(bool); (ok && b) || (!ok && opts.GreatArc) {
			arc := projection.GreatArc(origin.lonLat, dest.lonLat)
			e.Attrs["d"] = projection.Path(arc, m.proj)
			shape = projection.Screen(arc, m.proj)
		} else {
			s := num(d, "arcSharpness", config.Value(opts.ArcSharpness))
			ctrl := orb.Point{
				(origin.xy[0]+dest.xy[0])/2 + 50*s,
				(origin.xy[1]+dest.xy[1])/2 - 75*s,
			}
			e.Attrs["d"] = fmt.Sprintf("M%s,%sS%s,%s,%s,%s",
				scene.Num(origin.xy[0]), scene.Num(origin.xy[1]),
				scene.Num(ctrl[0]), scene.Num(ctrl[1]),
				scene.Num(dest.xy[0]), scene.Num(dest.xy[1]))
			shape = smoothCurve(origin.xy, ctrl, dest.xy)
		}
		e.Shape = shape
		e.SetInfo(d)

		length := planar.Length(shape)
		speed := config.Value(opts.AnimationSpeed).Std()
		if ms, ok := d.Float("animationSpeed"); ok {
			speed = time.Duration(ms * float64(time.Millisecond))
		}
		e.Style["stroke-dasharray"] = scene.Num(length) + " " + scene.Num(length)
		e.Animate(&scene.Transition{
			Attr: "stroke-dashoffset", Style: true,
			From: length, To: 0,
			Delay: arcDelay, Duration: speed, Ease: ease.OutCubic,
		})
		if config.Enabled(opts.PopupOnHover) {
			e.Hover = &scene.Hover{Popup: func(e *scene.Element) string {
				d := e.Info()
				return m.popups.render(opts.Popup, opts.PopupTemplate, config.PopupContext{
					Geography: config.Geography{Properties: d},
					Data:      d,
				})
			}}
			e.Title = plainText(e.Hover.Popup(e))
		}
		return e
	}
	for _, e := range layer.Join(keys, enter, nil) {
		e.Exit(0, &scene.Transition{Attr: "opacity", Style: true, From: 1, To: 0, Duration: exitTime})
	}
	return nil
}

type endpoint struct {
	lonLat orb.Point
	xy     orb.Point
}

// arcEndpoint resolves an origin or destination: explicit coordinates,
// a pinned country position, or the subunit centroid.
func (m *Map) arcEndpoint(d config.Datum, key string) (endpoint, bool) {
	loc, ok := d.Location(key)
	if !ok {
		return endpoint{}, false
	}
	if loc.HasCoords {
		xy, ok := m.project(loc.Latitude, loc.Longitude)
		return endpoint{lonLat: orb.Point{loc.Longitude, loc.Latitude}, xy: xy}, ok
	}
	if p, ok := fixedPositions[loc.ID]; ok {
		xy, ok := m.project(p[0], p[1])
		return endpoint{lonLat: orb.Point{p[1], p[0]}, xy: xy}, ok
	}
	xy, ok := m.centroid(loc.ID)
	if !ok {
		return endpoint{}, false
	}
	lat, lng, ok := m.XYToLatLng(xy[0], xy[1])
	if !ok {
		return endpoint{}, false
	}
	return endpoint{lonLat: orb.Point{lng, lat}, xy: xy}, true
}

// smoothCurve samples the cubic Bezier "M a S c b", whose first control
// point coincides with a.
func smoothCurve(a, c, b orb.Point) orb.LineString {
	ls := make(orb.LineString, 0, bezierStep+1)
	for i := 0; i <= bezierStep; i++ {
		t := float64(i) / bezierStep
		u := 1 - t
		w0 := u*u*u + 3*u*u*t
		w2 := 3 * u * t * t
		w3 := t * t * t
		ls = append(ls, orb.Point{
			w0*a[0] + w2*c[0] + w3*b[0],
			w0*a[1] + w2*c[1] + w3*b[1],
		})
	}
	return ls
}
