// Package tui previews a map in the terminal: braille rendering of the
// scene, mouse hover with highlight and popup, layer toggles, a data file
// sidebar and a paste box for choropleth JSON.
package tui

import (
	"os"
	"time"

	list "github.com/charmbracelet/bubbles/list"
	table "github.com/charmbracelet/bubbles/table"
	textarea "github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/tanema/gween"

	"choromap/internal/datamap"
)

const (
	sidebarWidth  = 28
	headerHeight  = 1
	footerHeight  = 2
	frameInterval = time.Second / 30
)

type tickMsg time.Time

type Model struct {
	width  int
	height int

	showSidebar bool
	helpVisible bool

	zoom      float64
	zoomTween *gween.Tween
	offsetX   int
	offsetY   int

	status string

	// File explorer
	cwd     string
	l       list.Model
	items   []list.Item
	selPath string

	dm        *datamap.Map
	hidden    map[string]bool
	animating bool

	// paste mode
	pasteMode bool
	ta        textarea.Model

	// hover state
	hovering    bool
	hoverCellX  int
	hoverCellY  int
	hoverHasGeo bool
	hoverLon    float64
	hoverLat    float64

	// attributes table
	showAttrs bool
	tbl       table.Model
}

// New previews dm. Transitions still pending on its scene play on ticks.
func New(dm *datamap.Map) Model {
	m := Model{
		helpVisible: true,
		zoom:        1.0,
		status:      "choromap ready",
		dm:          dm,
		hidden:      map[string]bool{},
		animating:   true,
	}
	m.cwd, _ = os.Getwd()
	// list setup
	d := list.NewDefaultDelegate()
	d.ShowDescription = false
	m.l = list.New(nil, d, 0, 0)
	m.l.Title = "Files"
	m.l.SetShowHelp(false)
	m.l.SetShowStatusBar(false)
	m.l.SetFilteringEnabled(true)
	// textarea setup
	m.ta = textarea.New()
	m.ta.Placeholder = `Paste choropleth JSON, e.g. {"USA": {"fillKey": "HIGH"}, "CAN": "#ff0000"}. Enter applies; Esc cancels.`
	m.ta.CharLimit = 0
	m.ta.SetWidth(50)
	m.ta.SetHeight(6)
	m.tbl = table.New(
		table.WithColumns([]table.Column{{Title: "key", Width: 16}, {Title: "value", Width: 32}}),
		table.WithFocused(true),
	)
	m.tbl.SetHeight(12)
	m.refreshDir()
	return m
}

// NewWithPath previews dm with a data file applied at launch.
func NewWithPath(dm *datamap.Map, path string) Model {
	m := New(dm)
	m.loadPath(path)
	return m
}

func (m Model) Init() tea.Cmd {
	if m.animating {
		return tick()
	}
	return nil
}

// Run starts the previewer in the alternate screen with mouse motion
// reporting.
func Run(m Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion()).Run()
	return err
}

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// animate starts the tick loop unless it is already running.
func (m *Model) animate() tea.Cmd {
	if m.animating {
		return nil
	}
	m.animating = true
	return tick()
}

// mapArea returns the origin and size of the map canvas in cells. It must
// match the layout built by View.
func (m Model) mapArea() (x, y, w, h int) {
	contentHeight := max(4, m.height-headerHeight-footerHeight)
	contentWidth := max(10, m.width)
	if m.showSidebar {
		x = sidebarWidth + 1
		w = contentWidth - sidebarWidth - 1
	} else {
		w = contentWidth - 1
	}
	return x, headerHeight, max(10, w), contentHeight
}
