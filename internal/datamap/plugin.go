package datamap

import (
	"fmt"
	"reflect"

	"choromap/internal/config"
	xlog "choromap/internal/log"
	"choromap/internal/scene"
)

// PluginFunc draws data into layer. options is the caller's options merged
// over the plugin's configured defaults.
type PluginFunc func(m *Map, layer *scene.Layer, data any, options any) error

type callSettings struct {
	newLayer bool
	callback func(*scene.Layer)
}

// CallOption adjusts a single plugin call.
type CallOption func(*callSettings)

// NewLayer draws into a fresh layer instead of the plugin's current one.
func NewLayer() CallOption {
	return func(c *callSettings) { c.newLayer = true }
}

// Then runs fn with the plugin layer once drawing succeeds.
func Then(fn func(*scene.Layer)) CallOption {
	return func(c *callSettings) { c.callback = fn }
}

type call struct {
	name     string
	data     any
	options  any
	callOpts []CallOption
}

// AddPlugin installs a named drawing capability.
func (m *Map) AddPlugin(name string, fn PluginFunc) error {
	if _, ok := m.plugins[name]; ok {
		return fmt.Errorf("%w: %q", ErrPluginExists, name)
	}
	m.plugins[name] = fn
	return nil
}

// Plugins lists the installed plugin names.
func (m *Map) Plugins() []string {
	out := make([]string, 0, len(m.plugins))
	for k := range m.plugins {
		out = append(out, k)
	}
	return out
}

// SetPluginConfig sets the defaults a custom plugin's options are merged
// over. Built-in plugins use their block of the options record.
func (m *Map) SetPluginConfig(name string, defaults any) {
	m.pluginOpt[name] = defaults
}

// Call runs a plugin. The plugin draws into the layer of its previous call
// unless NewLayer is given or it has never run.
func (m *Map) Call(name string, data any, options any, opts ...CallOption) error {
	fn, ok := m.plugins[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPlugin, name)
	}
	var cs callSettings
	for _, o := range opts {
		o(&cs)
	}
	merged := mergeOptions(options, m.pluginDefaults(name))

	layer, ok := m.layers[name]
	if cs.newLayer || !ok {
		layer = m.scene.AddLayer(name, false)
		m.layers[name] = layer
	}
	if err := fn(m, layer, data, merged); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	m.calls = append(m.calls, call{name: name, data: data, options: options, callOpts: opts})
	m.log.Debug().Str(xlog.FieldPlugin, name).Int(xlog.FieldCount, len(layer.Elements)).Msg("plugin drawn")
	if cs.callback != nil {
		cs.callback(layer)
	}
	return nil
}

// Layer returns the current layer of a plugin.
func (m *Map) Layer(name string) *scene.Layer { return m.layers[name] }

func (m *Map) pluginDefaults(name string) any {
	switch name {
	case "bubbles":
		return m.opts.Bubbles
	case "arc":
		return m.opts.Arcs
	case "labels":
		return m.opts.Labels
	case "legend":
		return m.opts.Legend
	case "graticule":
		return m.opts.Graticule
	}
	return m.pluginOpt[name]
}

// mergeOptions deep-copies options and fills it from defaults. Pointers to
// a config block are dereferenced; options of another type pass through.
func mergeOptions(options, defaults any) any {
	if defaults == nil {
		return options
	}
	if options == nil {
		out := reflect.New(reflect.TypeOf(defaults))
		config.Merge(out.Interface(), defaults)
		return out.Elem().Interface()
	}
	v := reflect.ValueOf(options)
	if v.Kind() == reflect.Pointer && !v.IsNil() {
		v = v.Elem()
	}
	if v.Type() != reflect.TypeOf(defaults) {
		return options
	}
	out := reflect.New(v.Type())
	config.Merge(out.Interface(), v.Interface())
	config.Merge(out.Interface(), defaults)
	return out.Elem().Interface()
}

func (m *Map) installBuiltins() {
	for name, fn := range map[string]PluginFunc{
		"bubbles":   drawBubbles,
		"arc":       drawArcs,
		"labels":    drawLabels,
		"legend":    drawLegend,
		"graticule": drawGraticule,
	} {
		m.plugins[name] = fn
	}
}

// Bubbles calls the bubbles plugin.
func (m *Map) Bubbles(data any, options *config.BubblesConfig, opts ...CallOption) error {
	return m.Call("bubbles", data, optional(options), opts...)
}

// Arcs calls the arc plugin.
func (m *Map) Arcs(data any, options *config.ArcConfig, opts ...CallOption) error {
	return m.Call("arc", data, optional(options), opts...)
}

// Labels calls the labels plugin.
func (m *Map) Labels(options *config.LabelsConfig, opts ...CallOption) error {
	return m.Call("labels", nil, optional(options), opts...)
}

// Legend calls the legend plugin.
func (m *Map) Legend(options *config.LegendConfig, opts ...CallOption) error {
	return m.Call("legend", nil, optional(options), opts...)
}

// Graticule calls the graticule plugin.
func (m *Map) Graticule(options *config.GraticuleConfig, opts ...CallOption) error {
	return m.Call("graticule", nil, optional(options), opts...)
}

func optional[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}
