package scene

import (
	"time"

	"github.com/paulmach/orb"
)

// PopupOffset is the vertical distance between the pointer and the popup.
const PopupOffset = 30

// Popup is the floating hover info box.
type Popup struct {
	Visible bool
	X, Y    float64
	Content string
}

// Scene is the root surface.
type Scene struct {
	Class  string
	Width  float64
	Height float64
	// Scale is applied to every layer group (responsive maps).
	Scale  float64
	Defs   []*Element
	Layers []*Layer
	Popup  Popup

	hovered *Element
	clock   time.Duration
}

func New(width, height float64) *Scene {
	return &Scene{Class: "datamap", Width: width, Height: height, Scale: 1}
}

// AddLayer appends a layer on top of the others.
func (s *Scene) AddLayer(class string, hidden bool) *Layer {
	l := &Layer{Class: class, Hidden: hidden, scene: s}
	s.Layers = append(s.Layers, l)
	return l
}

// InsertLayer adds a layer immediately beneath the layer with class below.
// An unknown class puts it at the bottom.
func (s *Scene) InsertLayer(class, below string) *Layer {
	l := &Layer{Class: class, scene: s}
	idx := 0
	for i, x := range s.Layers {
		if x.Class == below {
			idx = i
			break
		}
	}
	s.Layers = append(s.Layers, nil)
	copy(s.Layers[idx+1:], s.Layers[idx:])
	s.Layers[idx] = l
	return l
}

func (s *Scene) Layer(class string) *Layer {
	for _, l := range s.Layers {
		if l.Class == class {
			return l
		}
	}
	return nil
}

func (s *Scene) RemoveLayer(l *Layer) {
	for i, x := range s.Layers {
		if x == l {
			s.Layers = append(s.Layers[:i], s.Layers[i+1:]...)
			return
		}
	}
}

func (s *Scene) Clock() time.Duration { return s.clock }

// Hovered is the element currently under the pointer.
func (s *Scene) Hovered() *Element { return s.hovered }

// HitTest returns the topmost visible element under the screen point that
// reacts to hover.
func (s *Scene) HitTest(x, y float64) *Element {
	scale := s.Scale
	if scale <= 0 {
		scale = 1
	}
	p := orb.Point{x / scale, y / scale}
	for i := len(s.Layers) - 1; i >= 0; i-- {
		l := s.Layers[i]
		if l.Hidden {
			continue
		}
		for j := len(l.Elements) - 1; j >= 0; j-- {
			e := l.Elements[j]
			if e.Hover == nil || e.exiting {
				continue
			}
			if e.Contains(p) {
				return e
			}
		}
	}
	return nil
}

// MouseMove routes a pointer position to mouse over/out handlers. It
// reports whether anything visible changed.
func (s *Scene) MouseMove(x, y float64) bool {
	hit := s.HitTest(x, y)
	if hit == s.hovered {
		if hit != nil && s.Popup.Visible {
			s.Popup.X, s.Popup.Y = x, y+PopupOffset
			return true
		}
		return false
	}
	if s.hovered != nil {
		s.MouseOut(s.hovered)
	}
	if hit != nil {
		s.MouseOver(hit, x, y)
	}
	return true
}

// MouseOver highlights e and shows its popup.
func (s *Scene) MouseOver(e *Element, x, y float64) {
	s.hovered = e
	if e.Hover == nil {
		return
	}
	if e.Hover.Highlight != nil {
		if values := e.Hover.Highlight(e); values != nil {
			e.Highlight(values)
			if e.layer != nil {
				e.layer.MoveToFront(e)
			}
		}
	}
	if e.Hover.Popup != nil {
		s.Popup = Popup{Visible: true, X: x, Y: y + PopupOffset, Content: e.Hover.Popup(e)}
	}
}

// MouseOut restores e and hides the popup.
func (s *Scene) MouseOut(e *Element) {
	if s.hovered == e {
		s.hovered = nil
	}
	if e.Hover != nil && e.Hover.Highlight != nil {
		e.Restore()
	}
	s.Popup.Visible = false
}

// Advance moves the scene clock forward, sampling transitions and dropping
// exited elements. It reports whether anything is still animating.
func (s *Scene) Advance(dt time.Duration) bool {
	s.clock += dt
	busy := false
	for _, l := range s.Layers {
		kept := l.Elements[:0]
		for _, e := range l.Elements {
			if e.step(s.clock) {
				busy = true
			}
			if e.exiting && s.clock >= e.exitAt {
				if s.hovered == e {
					s.hovered = nil
					s.Popup.Visible = false
				}
				e.layer = nil
				continue
			}
			if e.exiting {
				busy = true
			}
			kept = append(kept, e)
		}
		for i := len(kept); i < len(l.Elements); i++ {
			l.Elements[i] = nil
		}
		l.Elements = kept
	}
	return busy
}

// Settle finishes every transition and exit immediately.
func (s *Scene) Settle() {
	var longest time.Duration
	for _, l := range s.Layers {
		for _, e := range l.Elements {
			for _, t := range e.Transitions {
				if d := e.born + t.End() - s.clock; d > longest {
					longest = d
				}
			}
			if e.exiting && e.exitAt-s.clock > longest {
				longest = e.exitAt - s.clock
			}
		}
	}
	s.Advance(longest)
}
