package tui

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	list "github.com/charmbracelet/bubbles/list"
	"gopkg.in/yaml.v3"

	"choromap/internal/config"
	"choromap/internal/datamap"
	"choromap/internal/geom"
)

type fileItem struct {
	title, desc string
	path        string
}

func (f fileItem) Title() string       { return f.title }
func (f fileItem) Description() string { return f.desc }
func (f fileItem) FilterValue() string { return f.title }

var supported = map[string]bool{
	".json": true, ".geojson": true, ".topojson": true,
	".csv": true, ".kml": true, ".yaml": true, ".yml": true,
}

func (m *Model) refreshDir() {
	entries, err := os.ReadDir(m.cwd)
	if err != nil {
		m.status = "read dir error: " + err.Error()
		return
	}
	var items []list.Item
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if supported[ext] {
			items = append(items, fileItem{title: name, desc: ext, path: filepath.Join(m.cwd, name)})
		}
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].(fileItem).Title() < items[j].(fileItem).Title() })
	m.items = items
	m.l.SetItems(items)
	if len(items) == 0 {
		m.status = "no supported files in current directory"
	}
}

type dataKind int

const (
	kindUnknown dataKind = iota
	kindBoundaries
	kindChoropleth
	kindBubbles
	kindArcs
)

// classify decides what a data file feeds: the boundaries, the choropleth
// or one of the overlay plugins.
func classify(path string, data []byte) dataKind {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".geojson", ".topojson":
		return kindBoundaries
	case ".kml":
		return kindBubbles
	case ".csv":
		rows, _, err := geom.ParseCSV(bytes.NewReader(data))
		if err != nil || len(rows) == 0 {
			return kindUnknown
		}
		if _, _, ok := rows[0].LatLng(); ok {
			return kindBubbles
		}
		return kindChoropleth
	}

	var probe any
	var err error
	if ext == ".json" {
		err = json.Unmarshal(data, &probe)
	} else {
		err = yaml.Unmarshal(data, &probe)
	}
	if err != nil {
		return kindUnknown
	}
	switch v := probe.(type) {
	case []any:
		if len(v) > 0 {
			if rec, ok := v[0].(map[string]any); ok {
				if _, ok := rec["origin"]; ok {
					return kindArcs
				}
			}
		}
		return kindBubbles
	case map[string]any:
		switch v["type"] {
		case "Topology", "FeatureCollection", "Feature":
			return kindBoundaries
		}
		return kindChoropleth
	}
	return kindUnknown
}

// loadPath applies a data file to the previewed map.
func (m *Model) loadPath(p string) {
	m.selPath = p
	ctx := context.Background()
	data, err := os.ReadFile(p)
	if err != nil {
		m.status = "load error: " + err.Error()
		return
	}
	name := filepath.Base(p)
	kind := classify(p, data)
	switch kind {
	case kindBoundaries:
		dm, err := m.reload(ctx, data)
		if err != nil {
			m.status = "load error: " + err.Error()
			return
		}
		m.dm = dm
		m.status = fmt.Sprintf("loaded: %s  subunits=%d", name, len(dm.Features()))
	case kindChoropleth:
		values, err := geom.LoadChoropleth(ctx, p)
		if err != nil {
			m.status = "load error: " + err.Error()
			return
		}
		m.dm.UpdateChoropleth(values, false)
		m.status = fmt.Sprintf("loaded: %s  choropleth=%d", name, len(values))
	case kindBubbles, kindArcs:
		datums, err := geom.LoadDatums(ctx, p)
		if err != nil {
			m.status = "load error: " + err.Error()
			return
		}
		if kind == kindArcs {
			err = m.dm.Arcs(datums, nil)
		} else {
			err = m.dm.Bubbles(datums, nil)
		}
		if err != nil {
			m.status = "draw error: " + err.Error()
			return
		}
		m.status = fmt.Sprintf("loaded: %s  records=%d", name, len(datums))
	default:
		m.status = "unsupported file: " + name
		return
	}
	m.applyLayers()
	if m.showAttrs {
		m.refreshAttrs()
	}
}

// reload rebuilds the map on new boundaries with the current options. A
// topology without the current scope falls back to its first object.
func (m *Model) reload(ctx context.Context, data []byte) (*datamap.Map, error) {
	b, err := geom.ParseBoundaries(data)
	if err != nil {
		return nil, err
	}
	opts := m.dm.Options()
	opts.DataURL = ""
	opts.Geography.DataURL = ""
	opts.Data = map[string]config.Datum{}
	dm, err := datamap.New(ctx, opts, datamap.WithBoundaries(b))
	if errors.Is(err, datamap.ErrUnknownScope) {
		if t, ok := b.(*geom.Topology); ok && len(t.ObjectNames()) > 0 {
			opts.Scope = t.ObjectNames()[0]
			dm, err = datamap.New(ctx, opts, datamap.WithBoundaries(b))
		}
	}
	return dm, err
}
