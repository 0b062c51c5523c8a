// Package render encodes a map scene as SVG, PNG or a standalone HTML page.
package render

import (
	"fmt"
	"html"
	"io"
	"math"
	"sort"
	"strings"
	"time"

	svg "github.com/ajstarks/svgo"

	"choromap/internal/scene"
)

// keyframes is the number of samples per animated transition.
const keyframes = 8

// SVGOptions controls SVG output.
type SVGOptions struct {
	// Animate emits pending transitions as SMIL animations. Otherwise
	// elements are written in their final state.
	Animate bool
	// Titles adds popup text as <title> children.
	Titles bool
}

type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	e.err = err
	return n, err
}

// WriteSVG serializes the scene.
func WriteSVG(w io.Writer, s *scene.Scene, opts SVGOptions) error {
	ew := &errWriter{w: w}
	canvas := svg.New(ew)

	width, height := int(math.Round(s.Width)), int(math.Round(s.Height))
	canvas.Start(width, height,
		attr("class", s.Class),
		attr("data-width", scene.Num(s.Width/scale(s))),
		attr("viewBox", fmt.Sprintf("0 0 %d %d", width, height)),
	)
	if len(s.Defs) > 0 {
		canvas.Def()
		for _, e := range s.Defs {
			writeElement(canvas, e, opts)
		}
		canvas.DefEnd()
	}
	for _, l := range s.Layers {
		if l.Hidden {
			continue
		}
		group := []string{attr("class", l.Class)}
		if sc := scale(s); sc != 1 {
			group = append(group, attr("transform", "scale("+scene.Num(sc)+")"))
		}
		canvas.Group(group...)
		for _, e := range l.Elements {
			if e.Exiting() {
				continue
			}
			writeElement(canvas, e, opts)
		}
		canvas.Gend()
	}
	canvas.End()
	return ew.err
}

func scale(s *scene.Scene) float64 {
	if s.Scale <= 0 {
		return 1
	}
	return s.Scale
}

func attr(k, v string) string {
	return k + `="` + html.EscapeString(v) + `"`
}

// writeElement writes one element with its title and animation children.
func writeElement(canvas *svg.SVG, e *scene.Element, opts SVGOptions) {
	var b strings.Builder
	b.WriteString("<" + e.Kind.String())
	if e.Class != "" {
		b.WriteString(" " + attr("class", e.Class))
	}
	if e.ID != "" {
		b.WriteString(" " + attr("id", e.ID))
	}
	for _, k := range sortedKeys(e.Attrs) {
		v := e.Attrs[k]
		if !opts.Animate {
			v = e.Final(k)
		}
		b.WriteString(" " + attr(k, v))
	}
	if len(e.Style) > 0 {
		parts := make([]string, 0, len(e.Style))
		for _, k := range sortedKeys(e.Style) {
			v := e.Style[k]
			if !opts.Animate {
				v = e.FinalStyle(k)
			}
			parts = append(parts, k+":"+v)
		}
		b.WriteString(" " + attr("style", strings.Join(parts, ";")))
	}

	var children []string
	if opts.Titles && e.Title != "" {
		children = append(children, "<title>"+html.EscapeString(e.Title)+"</title>")
	}
	if opts.Animate {
		for _, t := range e.Transitions {
			children = append(children, animate(t))
		}
	}
	if e.Kind == scene.Text {
		b.WriteString(">" + html.EscapeString(e.Text) + strings.Join(children, "") + "</text>\n")
	} else if len(children) == 0 {
		b.WriteString("/>\n")
	} else {
		b.WriteString(">" + strings.Join(children, "") + "</" + e.Kind.String() + ">\n")
	}
	io.WriteString(canvas.Writer, b.String())
}

// animate samples a transition into a SMIL keyframe animation.
func animate(t *scene.Transition) string {
	values := make([]string, 0, keyframes+1)
	times := make([]string, 0, keyframes+1)
	for i := 0; i <= keyframes; i++ {
		frac := float64(i) / keyframes
		v, _ := t.At(t.Delay + time.Duration(frac*float64(t.Duration)))
		values = append(values, scene.Num(v))
		times = append(times, seconds(frac))
	}
	dur := t.Duration.Seconds()
	if dur <= 0 {
		dur = 0.001
	}
	attrType := "XML"
	if t.Style {
		attrType = "CSS"
	}
	return fmt.Sprintf(`<animate attributeName="%s" attributeType="%s" begin="%ss" dur="%ss" values="%s" keyTimes="%s" fill="freeze"/>`,
		html.EscapeString(t.Attr), attrType,
		seconds(t.Delay.Seconds()), seconds(dur),
		strings.Join(values, ";"), strings.Join(times, ";"))
}

func seconds(v float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.3f", v), "0"), ".")
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
