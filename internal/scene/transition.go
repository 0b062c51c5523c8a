package scene

import (
	"time"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// DefaultEase matches the cubic in-out curve of browser transitions.
var DefaultEase ease.TweenFunc = ease.InOutCubic

// Transition interpolates one numeric attribute or style from From to To,
// starting Delay after the element entered the scene.
type Transition struct {
	Attr     string
	Style    bool
	From     float64
	To       float64
	Duration time.Duration
	Delay    time.Duration
	Ease     ease.TweenFunc
}

// At samples the transition at elapsed time since the element was born.
func (t *Transition) At(elapsed time.Duration) (float64, bool) {
	if elapsed < t.Delay {
		return t.From, false
	}
	if t.Duration <= 0 {
		return t.To, true
	}
	fn := t.Ease
	if fn == nil {
		fn = DefaultEase
	}
	tw := gween.New(float32(t.From), float32(t.To), float32(t.Duration.Seconds()), fn)
	v, done := tw.Update(float32((elapsed - t.Delay).Seconds()))
	if done {
		return t.To, true
	}
	return float64(v), false
}

// End is when the transition finishes relative to the element's birth.
func (t *Transition) End() time.Duration { return t.Delay + t.Duration }

func (t *Transition) apply(e *Element, v float64) {
	if t.Style {
		e.Style[t.Attr] = Num(v)
		return
	}
	e.Attrs[t.Attr] = Num(v)
}

// Animate starts a transition now; the element jumps to its From value.
func (e *Element) Animate(t *Transition) {
	if e.layer != nil && e.layer.scene != nil {
		e.born = e.layer.scene.clock
	}
	t.apply(e, t.From)
	e.Transitions = append(e.Transitions, t)
}

// Final returns the value the attribute reaches once transitions finish.
func (e *Element) Final(attr string) string {
	for i := len(e.Transitions) - 1; i >= 0; i-- {
		if t := e.Transitions[i]; t.Attr == attr && !t.Style {
			return Num(t.To)
		}
	}
	return e.Attrs[attr]
}

// FinalStyle is Final for style properties.
func (e *Element) FinalStyle(prop string) string {
	for i := len(e.Transitions) - 1; i >= 0; i-- {
		if t := e.Transitions[i]; t.Attr == prop && t.Style {
			return Num(t.To)
		}
	}
	return e.Style[prop]
}

// step applies sampled values and reports whether transitions remain.
func (e *Element) step(now time.Duration) bool {
	if len(e.Transitions) == 0 {
		return false
	}
	elapsed := now - e.born
	pending := e.Transitions[:0]
	for _, t := range e.Transitions {
		v, done := t.At(elapsed)
		t.apply(e, v)
		if !done {
			pending = append(pending, t)
		}
	}
	e.Transitions = pending
	return len(pending) > 0
}
