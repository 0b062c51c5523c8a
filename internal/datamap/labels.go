package datamap

import (
	"fmt"

	"choromap/internal/config"
	"choromap/internal/scene"
)

const LabelClass = "datamaps-label"

// smallStates are stacked off the coast with a leader line to their
// centroid, in this order.
var smallStates = []string{"VT", "NH", "MA", "RI", "CT", "NJ", "DE", "MD", "DC"}

// labelAnchor is where the stack of small state labels starts (lon, lat).
var labelAnchor = [2]float64{-67.707617, 42.722131}

func labelOffset(id string) (dx, dy float64) {
	dx, dy = 7.5, 5
	switch id {
	case "FL", "KY":
		dx = -2.5
	case "MI":
		dx, dy = -2.5, 18
	case "NY":
		dx = -1
	case "LA":
		dx = 13
	}
	return dx, dy
}

func drawLabels(m *Map, layer *scene.Layer, _ any, options any) error {
	opts, ok := options.(config.LabelsConfig)
	if !ok {
		return fmt.Errorf("%w: labels options %T", config.ErrInvalidOptions, options)
	}
	layer.Clear()
	fontSize := opts.FontSize
	if fontSize == 0 {
		fontSize = 10
	}
	spacing := opts.FontSize
	if spacing == 0 {
		spacing = 12
	}
	color := opts.LabelColor
	if color == "" {
		color = "#000"
	}
	lineWidth := 1.0
	if opts.LineWidth != nil {
		lineWidth = *opts.LineWidth
	}
	family := opts.FontFamily
	if family == "" {
		family = "Verdana"
	}
	start, startOK := m.project(labelAnchor[1], labelAnchor[0])

	for _, sub := range m.subunits.Elements {
		id := sub.Key
		center, ok := m.centroid(id)
		if !ok {
			continue
		}
		dx, dy := labelOffset(id)
		x, y := center[0]-dx, center[1]+dy
		if idx := indexOf(smallStates, id); idx >= 0 && startOK {
			x = start[0]
			y = start[1] + float64(idx)*(2+spacing)
			line := scene.NewElement(scene.Line, LabelClass+"-line")
			line.Key = id
			line.SetAttr("x1", x-3).SetAttr("y1", y-5).SetAttr("x2", center[0]).SetAttr("y2", center[1])
			line.Style["stroke"] = color
			line.Style["stroke-width"] = scene.Num(lineWidth)
			layer.Append(line)
		}
		text := scene.NewElement(scene.Text, LabelClass)
		text.Key = id
		text.SetAttr("x", x).SetAttr("y", y)
		text.Style["font-size"] = scene.Num(fontSize) + "px"
		text.Style["font-family"] = family
		text.Style["fill"] = color
		text.Text = id
		if custom := opts.CustomLabelText[id]; custom != "" {
			text.Text = custom
		}
		layer.Append(text)
	}
	return nil
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}
