package tui

import (
	"math"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// brailleBuf is a 2x4 micro-pixel grid per terminal cell. Each cell keeps
// the color of the last pixel written to it; text overlays replace the
// braille glyph of a cell.
type brailleBuf struct {
	w, h int       // in cells
	m    [][]uint8 // per-cell 8-bit mask
	fg   [][]string
	text [][]rune
}

func newBrailleBuf(w, h int) *brailleBuf {
	b := &brailleBuf{w: w, h: h}
	b.m = make([][]uint8, h)
	b.fg = make([][]string, h)
	b.text = make([][]rune, h)
	for i := 0; i < h; i++ {
		b.m[i] = make([]uint8, w)
		b.fg[i] = make([]string, w)
		b.text[i] = make([]rune, w)
	}
	return b
}

var dotBits = [2][4]uint8{
	{0x01, 0x02, 0x04, 0x40},
	{0x08, 0x10, 0x20, 0x80},
}

// setPixel sets a micro-pixel at micro coords (2x4 per cell)
func (b *brailleBuf) setPixel(mx, my int, color string) {
	if mx < 0 || my < 0 {
		return
	}
	cx, rx := mx/2, mx%2
	cy, ry := my/4, my%4
	if cy >= b.h || cx >= b.w {
		return
	}
	b.m[cy][cx] |= dotBits[rx][ry]
	b.fg[cy][cx] = color
}

// drawLineMicro draws a line on the microgrid using Bresenham
func (b *brailleBuf) drawLineMicro(x0, y0, x1, y1 int, color string) {
	// keep runaway coordinates from a deep zoom bounded
	limit := 4 * (b.w + b.h) * 4
	if abs(x0) > limit || abs(y0) > limit || abs(x1) > limit || abs(y1) > limit {
		return
	}
	dx := abs(x1 - x0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -abs(y1 - y0)
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		b.setPixel(x0, y0, color)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// fillRings fills the area enclosed by rings with the even-odd rule, so
// inner rings punch holes. Sampling happens at micro-pixel centers.
func (b *brailleBuf) fillRings(rings [][][2]float64, color string) {
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, r := range rings {
		for _, p := range r {
			minY = math.Min(minY, p[1])
			maxY = math.Max(maxY, p[1])
		}
	}
	hMic, wMic := b.h*4, b.w*2
	y0 := max(0, int(math.Floor(minY)))
	y1 := min(hMic-1, int(math.Ceil(maxY)))
	var xs []float64
	for y := y0; y <= y1; y++ {
		yc := float64(y) + 0.5
		xs = xs[:0]
		for _, r := range rings {
			for i := 0; i+1 < len(r); i++ {
				a, c := r[i], r[i+1]
				if (a[1] <= yc) == (c[1] <= yc) {
					continue
				}
				t := (yc - a[1]) / (c[1] - a[1])
				xs = append(xs, a[0]+t*(c[0]-a[0]))
			}
		}
		sort.Float64s(xs)
		for i := 0; i+1 < len(xs); i += 2 {
			xa := max(0, int(math.Ceil(xs[i]-0.5)))
			xb := min(wMic-1, int(math.Floor(xs[i+1]-0.5)))
			for x := xa; x <= xb; x++ {
				b.setPixel(x, y, color)
			}
		}
	}
}

// fillCircle fills a disk; a radius under one micro-pixel still marks the
// center.
func (b *brailleBuf) fillCircle(cx, cy, r float64, color string) {
	if r <= 0 {
		return
	}
	if r < 1 {
		b.setPixel(int(cx), int(cy), color)
		return
	}
	for y := int(math.Floor(cy - r)); y <= int(math.Ceil(cy+r)); y++ {
		for x := int(math.Floor(cx - r)); x <= int(math.Ceil(cx+r)); x++ {
			dx, dy := float64(x)+0.5-cx, float64(y)+0.5-cy
			if dx*dx+dy*dy <= r*r {
				b.setPixel(x, y, color)
			}
		}
	}
}

// putText writes s starting at the given cell.
func (b *brailleBuf) putText(cx, cy int, s, color string) {
	if cy < 0 || cy >= b.h {
		return
	}
	for i, r := range []rune(s) {
		x := cx + i
		if x < 0 || x >= b.w {
			continue
		}
		b.text[cy][x] = r
		b.fg[cy][x] = color
	}
}

// toLines renders the buffer, styling runs of equally colored cells.
func (b *brailleBuf) toLines() []string {
	out := make([]string, b.h)
	for y := 0; y < b.h; y++ {
		var (
			line  strings.Builder
			run   []rune
			color string
		)
		flush := func() {
			if len(run) == 0 {
				return
			}
			if color == "" {
				line.WriteString(string(run))
			} else {
				line.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(string(run)))
			}
			run = run[:0]
		}
		for x := 0; x < b.w; x++ {
			r, c := ' ', ""
			switch {
			case b.text[y][x] != 0:
				r, c = b.text[y][x], b.fg[y][x]
			case b.m[y][x] != 0:
				r, c = rune(0x2800+int(b.m[y][x])), b.fg[y][x]
			}
			if c != color {
				flush()
				color = c
			}
			run = append(run, r)
		}
		flush()
		out[y] = line.String()
	}
	return out
}
