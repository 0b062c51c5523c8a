// Package datamap draws choropleth maps with bubble, arc, label, legend and
// graticule overlays onto a retained scene, and implements the hover
// interaction model on top of it.
package datamap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"choromap/internal/config"
	"choromap/internal/geom"
	xlog "choromap/internal/log"
	"choromap/internal/projection"
	"choromap/internal/scene"
)

var (
	ErrNoTopology      = errors.New("no topology: supply boundaries or geographyConfig.dataUrl")
	ErrUnknownScope    = errors.New("unknown scope")
	ErrBubblesNotArray = errors.New("bubbles must be an array")
	ErrArcsNotArray    = errors.New("arcs must be an array")
	ErrPluginExists    = errors.New("plugin already exists")
	ErrUnknownPlugin   = errors.New("unknown plugin")
)

const (
	SubunitsClass = "datamaps-subunits"
	SubunitClass  = "datamaps-subunit"
)

// Option configures a Map beyond its options record.
type Option func(*Map)

// WithBoundaries supplies the topology instead of geographyConfig.dataUrl.
func WithBoundaries(b geom.Boundaries) Option {
	return func(m *Map) { m.bounds = b }
}

// WithLogger replaces the map's logger. Plugins and popup failures log
// through it.
func WithLogger(l zerolog.Logger) Option {
	return func(m *Map) { m.log = l }
}

// Map is one drawn map instance.
type Map struct {
	opts     config.Options
	bounds   geom.Boundaries
	features []geom.Feature
	proj     projection.Projection
	scene    *scene.Scene
	subunits *scene.Layer
	log      zerolog.Logger

	baseWidth float64
	colors    map[string]string
	plugins   map[string]PluginFunc
	layers    map[string]*scene.Layer
	pluginOpt map[string]any
	calls     []call
	popups    *popups
	legend    string
}

// New merges opts with the defaults, loads remote topology and data when
// configured, draws the subunits and installs the built-in plugins.
func New(ctx context.Context, opts config.Options, options ...Option) (*Map, error) {
	m := &Map{
		opts:      config.WithDefaults(opts),
		log:       xlog.WithComponent("datamap"),
		colors:    map[string]string{},
		plugins:   map[string]PluginFunc{},
		layers:    map[string]*scene.Layer{},
		pluginOpt: map[string]any{},
	}
	for _, o := range options {
		o(m)
	}
	m.popups = newPopups(&m.log)
	if err := config.ValidateOptions(m.opts); err != nil {
		return nil, err
	}
	if m.bounds == nil && m.opts.Geography.DataURL != "" {
		b, err := geom.LoadBoundaries(ctx, m.opts.Geography.DataURL)
		if err != nil {
			return nil, fmt.Errorf("load topology: %w", err)
		}
		m.bounds = b
	}
	if m.bounds == nil {
		return nil, ErrNoTopology
	}
	features, err := m.bounds.Features(m.opts.Scope)
	if err != nil {
		if errors.Is(err, geom.ErrUnknownObject) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownScope, m.opts.Scope)
		}
		return nil, err
	}
	m.features = features
	m.log = m.log.With().Str(xlog.FieldScope, m.opts.Scope).Logger()

	if m.opts.Height == 0 {
		m.opts.Height = m.opts.Width * m.opts.AspectRatio
	}
	m.baseWidth = m.opts.Width

	m.installBuiltins()
	start := time.Now()
	if err := m.draw(); err != nil {
		return nil, err
	}

	if m.opts.DataURL != "" {
		data, err := geom.LoadChoropleth(ctx, m.opts.DataURL)
		if err != nil {
			return nil, fmt.Errorf("load data: %w", err)
		}
		m.UpdateChoropleth(data, false)
	}
	m.log.Debug().
		Str(xlog.FieldProjection, m.opts.Projection).
		Int(xlog.FieldCount, len(m.subunits.Elements)).
		Dur(xlog.FieldDuration, time.Since(start)).
		Msg("map drawn")
	if m.opts.Done != nil {
		m.opts.Done()
	}
	return m, nil
}

// draw builds the surface, projection and subunit layer from scratch.
func (m *Map) draw() error {
	m.scene = scene.New(m.opts.Width, m.opts.Height)
	m.layers = map[string]*scene.Layer{}
	proj, err := m.setProjection()
	if err != nil {
		return err
	}
	m.proj = proj
	m.drawSubunits()
	return nil
}

func (m *Map) Options() config.Options { return m.opts }

func (m *Map) Scene() *scene.Scene { return m.scene }

func (m *Map) Projection() projection.Projection { return m.proj }

// Features returns the subunits of the scope, hidden ones included.
func (m *Map) Features() []geom.Feature { return m.features }

// LegendHTML is the fragment produced by the last legend call.
func (m *Map) LegendHTML() string { return m.legend }

// LatLngToXY projects a coordinate onto the surface.
func (m *Map) LatLngToXY(lat, lng float64) (x, y float64, ok bool) {
	return m.proj.Project(lng, lat)
}

// XYToLatLng inverts LatLngToXY.
func (m *Map) XYToLatLng(x, y float64) (lat, lng float64, ok bool) {
	lng, lat, ok = m.proj.Invert(x, y)
	return lat, lng, ok
}

// AddLayer appends a layer group with the given class.
func (m *Map) AddLayer(class string, hidden bool) *scene.Layer {
	return m.scene.AddLayer(class, hidden)
}

// Resize adapts the map to a new container size. Responsive maps scale the
// existing layers; fixed maps re-project and redraw, replaying overlays.
func (m *Map) Resize(width, height float64) error {
	if width <= 0 {
		return fmt.Errorf("%w: width %g", config.ErrInvalidOptions, width)
	}
	if height <= 0 {
		height = width * m.opts.AspectRatio
	}
	if m.opts.Responsive {
		m.scene.Scale = width / m.baseWidth
		m.scene.Width, m.scene.Height = width, height
		return nil
	}
	m.opts.Width, m.opts.Height = width, height
	if err := m.draw(); err != nil {
		return err
	}
	calls := m.calls
	m.calls = nil
	for _, c := range calls {
		if err := m.Call(c.name, c.data, c.options, c.callOpts...); err != nil {
			return err
		}
	}
	m.scene.Settle()
	return nil
}
