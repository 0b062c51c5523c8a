package tui

import (
	"fmt"
	"strings"

	list "github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"choromap/internal/datamap"
	"choromap/internal/geom"
)

const zoomTime = 0.25

// layerToggles binds the number keys to scene layers by class.
var layerToggles = []struct {
	key, name string
	classes   []string
}{
	{"1", "subunits", []string{datamap.SubunitsClass}},
	{"2", "bubbles", []string{"bubbles"}},
	{"3", "arcs", []string{"arc"}},
	{"4", "labels", []string{"labels"}},
	{"5", "graticule", []string{datamap.GraticuleClass, "graticule"}},
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.showSidebar {
			m.l.SetSize(sidebarWidth-2, m.height-headerHeight-footerHeight-2)
		}
	case tickMsg:
		busy := m.dm.Scene().Advance(frameInterval)
		if m.zoomTween != nil {
			z, done := m.zoomTween.Update(float32(frameInterval.Seconds()))
			m.zoom = float64(z)
			if done {
				m.zoomTween = nil
			}
		}
		if busy || m.zoomTween != nil {
			return m, tick()
		}
		m.animating = false
		return m, nil
	case tea.KeyMsg:
		// If list is visible and filtering, send keys to list and ignore global commands
		if m.showSidebar && m.l.FilterState() == list.Filtering {
			var cmd tea.Cmd
			m.l, cmd = m.l.Update(msg)
			return m, cmd
		}
		if m.pasteMode {
			switch msg.String() {
			case "esc":
				m.pasteMode = false
				m.ta.Blur()
				return m, nil
			case "enter":
				text := strings.TrimSpace(m.ta.Value())
				if text == "" {
					m.status = "paste: empty"
					return m, nil
				}
				values, err := geom.ParseChoropleth([]byte(text))
				if err != nil {
					m.status = "json error: " + err.Error()
					return m, nil
				}
				m.dm.UpdateChoropleth(values, false)
				m.status = fmt.Sprintf("choropleth updated: %d subunits", len(values))
				m.pasteMode = false
				m.ta.Blur()
				return m, nil
			}
			var cmd tea.Cmd
			m.ta, cmd = m.ta.Update(msg)
			return m, cmd
		}
		switch key := msg.String(); key {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "1", "2", "3", "4", "5":
			for _, t := range layerToggles {
				if t.key == key {
					m.hidden[t.name] = !m.hidden[t.name]
					m.status = fmt.Sprintf("%s: %v", t.name, !m.hidden[t.name])
				}
			}
			m.applyLayers()
		case "l":
			// toggle all layers
			all := true
			for _, t := range layerToggles {
				all = all && !m.hidden[t.name]
			}
			for _, t := range layerToggles {
				m.hidden[t.name] = all
			}
			m.applyLayers()
			m.status = fmt.Sprintf("layers: %v", !all)
		case "+", "=":
			if m.zoom < 64 {
				return m, m.zoomTo(m.zoom * 1.5)
			}
		case "-", "_":
			if m.zoom > 0.25 {
				return m, m.zoomTo(m.zoom / 1.5)
			}
		case "0":
			m.offsetX, m.offsetY = 0, 0
			return m, m.zoomTo(1)
		case "tab":
			m.showSidebar = !m.showSidebar
			if m.showSidebar {
				m.refreshDir()
				m.l.SetSize(sidebarWidth-2, m.height-headerHeight-footerHeight-2)
			}
		case "p":
			m.pasteMode = !m.pasteMode
			if m.pasteMode {
				m.ta.SetValue("")
				m.status = "paste mode"
				m.ta.Focus()
			} else {
				m.status = "view mode"
				m.ta.Blur()
			}
		case "h":
			m.helpVisible = !m.helpVisible
		case "a":
			m.showAttrs = !m.showAttrs
			if m.showAttrs {
				m.refreshAttrs()
			}
		case "enter":
			if m.showSidebar {
				if it, ok := m.l.SelectedItem().(fileItem); ok {
					m.loadPath(it.path)
					return m, m.animate()
				}
			}
		case "up":
			m.offsetY -= 1
		case "down":
			m.offsetY += 1
		case "left":
			m.offsetX -= 2
		case "right":
			m.offsetX += 2
		}
	case tea.MouseMsg:
		m.hover(msg.X, msg.Y)
	}
	// Pass messages to list when visible
	if m.showSidebar {
		var cmd tea.Cmd
		m.l, cmd = m.l.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) zoomTo(target float64) tea.Cmd {
	m.zoomTween = gween.New(float32(m.zoom), float32(target), zoomTime, ease.OutCubic)
	m.status = fmt.Sprintf("zoom: %.2fx", target)
	return m.animate()
}

// applyLayers pushes the toggle state onto the scene. Plugins add layers
// lazily, so this runs again after every load.
func (m *Model) applyLayers() {
	s := m.dm.Scene()
	for _, t := range layerToggles {
		for _, class := range t.classes {
			if l := s.Layer(class); l != nil {
				l.Hidden = m.hidden[t.name]
			}
		}
	}
}

// hover routes a terminal mouse position through the scene's hover model.
func (m *Model) hover(cellX, cellY int) {
	s := m.dm.Scene()
	ox, oy, w, h := m.mapArea()
	cx, cy := cellX-ox, cellY-oy
	inside := !m.pasteMode && cx >= 0 && cx < w && cy >= 0 && cy < h
	var x, y float64
	if inside {
		x, y, inside = m.viewport(w, h).toScene(cx, cy)
	}
	if !inside {
		m.hovering, m.hoverHasGeo = false, false
		if e := s.Hovered(); e != nil {
			s.MouseOut(e)
		}
		return
	}
	m.hovering = true
	m.hoverCellX, m.hoverCellY = cx, cy
	m.hoverLat, m.hoverLon, m.hoverHasGeo = m.dm.XYToLatLng(x, y)

	scale := s.Scale
	if scale <= 0 {
		scale = 1
	}
	if s.MouseMove(x*scale, y*scale) && m.showAttrs {
		m.refreshAttrs()
	}
}
