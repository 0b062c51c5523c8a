package tui

import (
	"sort"

	table "github.com/charmbracelet/bubbles/table"

	"choromap/internal/datamap"
)

// refreshAttrs fills the table with the datum of the hovered element.
func (m *Model) refreshAttrs() {
	rows := m.buildAttributes()
	if len(rows) == 0 {
		rows = []table.Row{{"", "hover a subunit, bubble or arc"}}
	}
	valueW := 32
	for _, r := range rows {
		valueW = max(valueW, min(48, len(r[1])+2))
	}
	// Avoid transient mismatch: clear rows, set columns, then set rows
	m.tbl.SetRows(nil)
	m.tbl.SetColumns([]table.Column{{Title: "key", Width: 16}, {Title: "value", Width: valueW}})
	m.tbl.SetRows(rows)
}

// buildAttributes lists the hovered element's identity and datum.
func (m *Model) buildAttributes() []table.Row {
	e := m.dm.Scene().Hovered()
	if e == nil {
		return nil
	}
	var rows []table.Row
	if e.HasClass(datamap.SubunitClass) {
		rows = append(rows, table.Row{"id", e.Key})
	}
	if e.Title != "" {
		rows = append(rows, table.Row{"popup", e.Title})
	}
	d := e.Info()
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		rows = append(rows, table.Row{k, formatValue(d[k])})
	}
	return rows
}
