package tui

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

var rgbFunc = regexp.MustCompile(`^rgba?\(\s*([\d.]+)\s*,\s*([\d.]+)\s*,\s*([\d.]+)\s*(?:,\s*[\d.]+\s*)?\)$`)

var namedColors = map[string]string{
	"black":  "#000000",
	"white":  "#ffffff",
	"red":    "#ff0000",
	"green":  "#008000",
	"blue":   "#0000ff",
	"yellow": "#ffff00",
	"orange": "#ffa500",
	"gray":   "#808080",
	"grey":   "#808080",
}

// termColor converts a CSS color to the hex form lipgloss understands.
// "none", empty and unparsable colors report false. Alpha is dropped.
func termColor(css string) (string, bool) {
	css = strings.ToLower(strings.TrimSpace(css))
	if css == "" || css == "none" || css == "transparent" {
		return "", false
	}
	if hex, ok := namedColors[css]; ok {
		return hex, true
	}
	if strings.HasPrefix(css, "#") {
		if len(css) == 4 {
			css = "#" + strings.Repeat(css[1:2], 2) + strings.Repeat(css[2:3], 2) + strings.Repeat(css[3:4], 2)
		}
		c, err := colorful.Hex(css)
		if err != nil {
			return "", false
		}
		return c.Hex(), true
	}
	if m := rgbFunc.FindStringSubmatch(css); m != nil {
		var ch [3]float64
		for i := range ch {
			v, err := strconv.ParseFloat(m[i+1], 64)
			if err != nil {
				return "", false
			}
			ch[i] = min(v, 255) / 255
		}
		return colorful.Color{R: ch[0], G: ch[1], B: ch[2]}.Clamped().Hex(), true
	}
	return "", false
}

// formatValue renders a datum value for the attribute table.
func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "?"
	}
	return string(b)
}

// parseFloat reads a numeric style value, ignoring a px unit.
func parseFloat(s string) float64 {
	v, _ := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(s), "px"), 64)
	return v
}
