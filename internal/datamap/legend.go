package datamap

import (
	"fmt"
	"html"
	"sort"
	"strings"

	"choromap/internal/config"
	"choromap/internal/scene"
)

const (
	LegendClass = "datamaps-legend"
	swatch      = 12
	legendRow   = 18
)

type legendEntry struct {
	label string
	color string
}

// legendEntries lists the palette in key order. The default fill is only
// included when it has a name.
func (m *Map) legendEntries(opts config.LegendConfig) []legendEntry {
	keys := make([]string, 0, len(m.opts.Fills))
	for k := range m.opts.Fills {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var out []legendEntry
	for _, k := range keys {
		var label string
		switch {
		case k == config.DefaultFill:
			if opts.DefaultFillName == "" {
				continue
			}
			label = opts.DefaultFillName
		case opts.Labels[k] != "":
			label = opts.Labels[k]
		default:
			label = k + ": "
		}
		out = append(out, legendEntry{label: label, color: m.opts.Fills[k]})
	}
	return out
}

// legendHTML renders the definition list fragment placed next to the map.
func legendHTML(title string, entries []legendEntry) string {
	var b strings.Builder
	if title != "" {
		b.WriteString("<h2>" + html.EscapeString(title) + "</h2>")
	}
	b.WriteString("<dl>")
	for _, e := range entries {
		b.WriteString("<dt>" + html.EscapeString(e.label) + "</dt>")
		b.WriteString(`<dd style="background-color:` + html.EscapeString(e.color) + `">&nbsp;</dd>`)
	}
	b.WriteString("</dl>")
	return `<div class="` + LegendClass + `">` + b.String() + "</div>"
}

func drawLegend(m *Map, layer *scene.Layer, _ any, options any) error {
	opts, ok := options.(config.LegendConfig)
	if !ok {
		return fmt.Errorf("%w: legend options %T", config.ErrInvalidOptions, options)
	}
	entries := m.legendEntries(opts)
	m.legend = legendHTML(opts.LegendTitle, entries)

	layer.Clear()
	x := 10.0
	y := m.opts.Height - 10 - float64(len(entries))*legendRow
	if opts.LegendTitle != "" {
		title := scene.NewElement(scene.Text, LegendClass+"-title")
		title.SetAttr("x", x).SetAttr("y", y-4)
		title.Style["font-size"] = "12px"
		title.Style["font-weight"] = "bold"
		title.Text = opts.LegendTitle
		layer.Append(title)
	}
	for i, e := range entries {
		row := y + float64(i)*legendRow
		r := scene.NewElement(scene.Rect, LegendClass+"-swatch")
		r.SetAttr("x", x).SetAttr("y", row).SetAttr("width", swatch).SetAttr("height", swatch)
		r.Style["fill"] = e.color
		layer.Append(r)
		t := scene.NewElement(scene.Text, LegendClass+"-label")
		t.SetAttr("x", x+swatch+6).SetAttr("y", row+swatch-2)
		t.Style["font-size"] = "11px"
		t.Text = strings.TrimSuffix(e.label, ": ")
		layer.Append(t)
	}
	return nil
}
