package datamap

import (
	"sort"

	"choromap/internal/config"
	"choromap/internal/geom"
	"choromap/internal/projection"
	"choromap/internal/scene"
)

// visible drops the subunits hidden by the geography flags.
func (m *Map) visible() []geom.Feature {
	g := m.opts.Geography
	out := make([]geom.Feature, 0, len(m.features))
	for _, f := range m.features {
		if config.Enabled(g.HideAntarctica) && f.ID == "ATA" {
			continue
		}
		if g.HideHawaiiAndAlaska && (f.ID == "HI" || f.ID == "AK") {
			continue
		}
		out = append(out, f)
	}
	return out
}

func (m *Map) drawSubunits() {
	g := m.opts.Geography
	m.subunits = m.scene.AddLayer(SubunitsClass, false)
	for _, f := range m.visible() {
		e := scene.NewElement(scene.Path, SubunitClass+" "+f.ID)
		e.Key = f.ID
		e.Attrs["d"] = projection.Path(f.Geometry, m.proj)
		e.Shape = projection.Screen(f.Geometry, m.proj)
		if d, ok := m.opts.Data[f.ID]; ok {
			e.SetInfo(d)
		}
		if c, ok := m.colors[f.ID]; ok {
			e.Style["fill"] = c
		} else {
			e.Style["fill"] = m.fillFor(m.opts.Data[f.ID])
		}
		e.Style["stroke-width"] = scene.Num(config.Value(g.BorderWidth))
		e.Style["stroke-opacity"] = scene.Num(config.Value(g.BorderOpacity))
		e.Style["stroke"] = g.BorderColor
		m.subunits.Append(e)
		m.geographyHover(e, f)
	}
}

// fillFor resolves a subunit color: the datum's own fillColor, then
// fills[fillKey], then the default fill.
func (m *Map) fillFor(d config.Datum) string {
	if d != nil {
		if c, ok := d.String("fillColor"); ok && c != "" {
			return c
		}
		if k := d.FillKey(); k != "" {
			if c, ok := m.opts.Fills[k]; ok {
				return c
			}
		}
	}
	return m.opts.Fills[config.DefaultFill]
}

func (m *Map) geographyHover(e *scene.Element, f geom.Feature) {
	g := m.opts.Geography
	highlight := config.Enabled(g.HighlightOnHover)
	popup := config.Enabled(g.PopupOnHover)
	if !highlight && !popup {
		return
	}
	h := &scene.Hover{}
	if highlight {
		h.Highlight = func(e *scene.Element) map[string]string {
			d := e.Info()
			return map[string]string{
				"fill":           str(d, "highlightFillColor", g.HighlightFillColor),
				"stroke":         str(d, "highlightBorderColor", g.HighlightBorderColor),
				"stroke-width":   scene.Num(num(d, "highlightBorderWidth", config.Value(g.HighlightBorderWidth))),
				"stroke-opacity": scene.Num(num(d, "highlightBorderOpacity", config.Value(g.HighlightBorderOpacity))),
				"fill-opacity":   scene.Num(num(d, "highlightFillOpacity", config.Value(g.HighlightFillOpacity))),
			}
		}
	}
	if popup {
		geo := config.Geography{ID: f.ID, Properties: f.Properties}
		h.Popup = func(e *scene.Element) string {
			return m.popups.render(g.Popup, g.PopupTemplate, config.PopupContext{Geography: geo, Data: e.Info()})
		}
		e.Title = plainText(h.Popup(e))
	}
	e.Hover = h
}

// UpdateChoropleth recolors subunits. Values are color strings or datums;
// a datum's color comes from "color", then "fillColor", then
// fills[fillKey], and its keys are merged over the stored datum. reset
// first returns every subunit to the default fill with empty data.
func (m *Map) UpdateChoropleth(data map[string]any, reset bool) {
	if reset {
		def := m.opts.Fills[config.DefaultFill]
		for _, e := range m.subunits.Elements {
			e.Attrs[scene.AttrInfo] = "{}"
			e.Datum = config.Datum{}
			e.Style["fill"] = def
		}
		m.opts.Data = map[string]config.Datum{}
		m.colors = map[string]string{}
	}

	ids := make([]string, 0, len(data))
	for id := range data {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if id == "" {
			continue
		}
		var (
			color string
			d     config.Datum
		)
		switch v := data[id].(type) {
		case string:
			color = v
		case config.Datum:
			d = v
		case map[string]any:
			d = config.Datum(v)
		default:
			continue
		}
		if d != nil {
			if c, ok := d.String("color"); ok {
				color = c
			} else if c, ok := d.String("fillColor"); ok {
				color = c
			} else {
				color = m.opts.Fills[d.FillKey()]
			}
			merged := config.DatumDefaults(d, m.opts.Data[id])
			m.opts.Data[id] = merged
			if e := m.subunits.Find(id); e != nil {
				e.SetInfo(merged)
			}
		}
		if color == "" {
			continue
		}
		m.colors[id] = color
		if e := m.subunits.Find(id); e != nil {
			e.Style["fill"] = color
		}
	}
	m.refreshTitles()
}

func (m *Map) refreshTitles() {
	for _, e := range m.subunits.Elements {
		if e.Hover != nil && e.Hover.Popup != nil {
			e.Title = plainText(e.Hover.Popup(e))
		}
	}
}

// str reads a datum override, falling back to def.
func str(d config.Datum, key, def string) string {
	if v, ok := d.String(key); ok && v != "" {
		return v
	}
	return def
}

func num(d config.Datum, key string, def float64) float64 {
	if v, ok := d.Float(key); ok {
		return v
	}
	return def
}
