package scene

import "time"

// Layer is an ordered group of elements, drawn back to front.
type Layer struct {
	Class    string
	Hidden   bool
	Elements []*Element

	scene *Scene
}

func (l *Layer) Scene() *Scene { return l.scene }

// Append adds e on top of the layer.
func (l *Layer) Append(e *Element) *Element {
	e.layer = l
	if l.scene != nil {
		e.born = l.scene.clock
	}
	l.Elements = append(l.Elements, e)
	return e
}

// Find returns the first live element with key.
func (l *Layer) Find(key string) *Element {
	for _, e := range l.Elements {
		if e.Key == key && !e.exiting {
			return e
		}
	}
	return nil
}

func (l *Layer) Remove(e *Element) {
	for i, x := range l.Elements {
		if x == e {
			l.Elements = append(l.Elements[:i], l.Elements[i+1:]...)
			e.layer = nil
			return
		}
	}
}

// MoveToFront re-appends e so it draws above its siblings.
func (l *Layer) MoveToFront(e *Element) {
	for i, x := range l.Elements {
		if x == e {
			copy(l.Elements[i:], l.Elements[i+1:])
			l.Elements[len(l.Elements)-1] = e
			return
		}
	}
}

func (l *Layer) Clear() {
	for _, e := range l.Elements {
		e.layer = nil
	}
	l.Elements = nil
}

// Live returns the elements that are not on their way out.
func (l *Layer) Live() []*Element {
	out := make([]*Element, 0, len(l.Elements))
	for _, e := range l.Elements {
		if !e.exiting {
			out = append(out, e)
		}
	}
	return out
}

// Join matches keys against the live elements of the layer. Elements whose
// key is still present are passed to update, missing keys are created by
// enter and appended, and elements whose key is gone are returned so the
// caller can schedule their exit.
func (l *Layer) Join(keys []string, enter func(i int) *Element, update func(i int, e *Element)) []*Element {
	live := map[string]*Element{}
	for _, e := range l.Elements {
		if !e.exiting {
			if _, dup := live[e.Key]; !dup {
				live[e.Key] = e
			}
		}
	}
	seen := map[string]bool{}
	for i, k := range keys {
		if seen[k] {
			continue
		}
		seen[k] = true
		if e, ok := live[k]; ok {
			if update != nil {
				update(i, e)
			}
			continue
		}
		if e := enter(i); e != nil {
			e.Key = k
			l.Append(e)
			if update != nil {
				update(i, e)
			}
		}
	}
	var exited []*Element
	for _, e := range l.Elements {
		if !e.exiting && !seen[e.Key] {
			exited = append(exited, e)
		}
	}
	return exited
}

// Exit schedules e for removal after delay, running the given transitions
// in the meantime. Without a scene clock it is removed at once.
func (e *Element) Exit(delay time.Duration, ts ...*Transition) {
	l := e.layer
	if l == nil {
		return
	}
	if l.scene == nil {
		l.Remove(e)
		return
	}
	e.exiting = true
	e.born = l.scene.clock
	end := delay
	for _, t := range ts {
		t.Delay += delay
		e.Transitions = append(e.Transitions, t)
		if t.End() > end {
			end = t.End()
		}
	}
	e.exitAt = l.scene.clock + end
}
