package datamap

import (
	"fmt"
	"time"

	"github.com/paulmach/orb"

	"choromap/internal/config"
	"choromap/internal/scene"
)

const (
	BubbleClass    = "datamaps-bubble"
	bubbleGrowTime = 400 * time.Millisecond
	exitTime       = 250 * time.Millisecond
)

func drawBubbles(m *Map, layer *scene.Layer, data any, options any) error {
	ds, ok := datums(data)
	if !ok {
		return ErrBubblesNotArray
	}
	opts, ok := options.(config.BubblesConfig)
	if !ok {
		return fmt.Errorf("%w: bubbles options %T", config.ErrInvalidOptions, options)
	}
	key := opts.Key
	if key == nil {
		key = config.DefaultKey
	}
	keys := make([]string, len(ds))
	for i, d := range ds {
		keys[i] = key(d)
	}

	enter := func(i int) *scene.Element {
		d := ds[i]
		pos, ok := m.bubblePosition(d)
		if !ok {
			m.log.Debug().Interface("datum", d).Msg("bubble has no position")
			return nil
		}
		e := scene.NewElement(scene.Circle, BubbleClass)
		e.SetAttr("cx", pos[0]).SetAttr("cy", pos[1])
		radius := num(d, "radius", opts.Radius)
		if config.Enabled(opts.Animate) {
			e.SetAttr("r", 0)
		} else {
			e.SetAttr("r", radius)
		}
		e.SetInfo(d)
		if f, ok := m.opts.Filters[str(d, "filterKey", opts.FilterKey)]; ok && f != "" {
			e.Attrs["filter"] = f
		}
		e.Style["stroke"] = str(d, "borderColor", opts.BorderColor)
		e.Style["stroke-width"] = scene.Num(num(d, "borderWidth", config.Value(opts.BorderWidth)))
		e.Style["stroke-opacity"] = scene.Num(num(d, "borderOpacity", config.Value(opts.BorderOpacity)))
		e.Style["fill-opacity"] = scene.Num(num(d, "fillOpacity", config.Value(opts.FillOpacity)))
		fill, ok := m.opts.Fills[str(d, "fillKey", opts.FillKey)]
		if !ok || fill == "" {
			fill = m.opts.Fills[config.DefaultFill]
		}
		e.Style["fill"] = fill
		m.bubbleHover(e, opts)
		return e
	}
	update := func(i int, e *scene.Element) {
		d := ds[i]
		from := e.Float("r")
		to := num(d, "radius", opts.Radius)
		if from != to {
			e.Animate(&scene.Transition{Attr: "r", From: from, To: to, Duration: bubbleGrowTime})
		}
		e.SetInfo(d)
		if e.Hover != nil && e.Hover.Popup != nil {
			e.Title = plainText(e.Hover.Popup(e))
		}
	}
	for _, e := range layer.Join(keys, enter, update) {
		e.Exit(config.Value(opts.ExitDelay).Std(), &scene.Transition{Attr: "r", From: e.Float("r"), To: 0, Duration: exitTime})
	}
	return nil
}

// bubblePosition places a bubble at its coordinates or at the centroid of
// the subunit named by "centered".
func (m *Map) bubblePosition(d config.Datum) (orb.Point, bool) {
	if lat, lng, ok := d.LatLng(); ok {
		return m.project(lat, lng)
	}
	c, _ := d.String("centered")
	switch c {
	case "":
		return orb.Point{}, false
	case "USA":
		return m.project(usaCenter[1], usaCenter[0])
	}
	return m.centroid(c)
}

func (m *Map) bubbleHover(e *scene.Element, opts config.BubblesConfig) {
	highlight := config.Enabled(opts.HighlightOnHover)
	popup := config.Enabled(opts.PopupOnHover)
	if !highlight && !popup {
		return
	}
	h := &scene.Hover{}
	if highlight {
		h.Highlight = func(e *scene.Element) map[string]string {
			d := e.Info()
			return map[string]string{
				"fill":           str(d, "highlightFillColor", opts.HighlightFillColor),
				"stroke":         str(d, "highlightBorderColor", opts.HighlightBorderColor),
				"stroke-width":   scene.Num(num(d, "highlightBorderWidth", config.Value(opts.HighlightBorderWidth))),
				"stroke-opacity": scene.Num(num(d, "highlightBorderOpacity", config.Value(opts.HighlightBorderOpacity))),
				"fill-opacity":   scene.Num(num(d, "highlightFillOpacity", config.Value(opts.HighlightFillOpacity))),
			}
		}
	}
	if popup {
		h.Popup = func(e *scene.Element) string {
			d := e.Info()
			return m.popups.render(opts.Popup, opts.PopupTemplate, config.PopupContext{
				Geography: config.Geography{Properties: d},
				Data:      d,
			})
		}
		e.Title = plainText(h.Popup(e))
	}
	e.Hover = h
}
