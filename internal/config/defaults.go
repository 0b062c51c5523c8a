package config

// DefaultFill is the palette entry used when no other color applies.
const DefaultFill = "defaultFill"

// DefaultGeographyPopup and friends are html/template sources.
const (
	DefaultGeographyPopup = `<div class="hoverinfo"><strong>{{.Geography.Properties.name}}</strong></div>`
	DefaultBubblePopup    = `<div class="hoverinfo"><strong>{{.Data.name}}</strong></div>`
	DefaultArcPopup       = `<div class="hoverinfo">{{json .Data}}</div>`
)

// DefaultOptions returns a fresh copy of the option defaults.
func DefaultOptions() Options {
	return Options{
		Scope:       "world",
		Width:       800,
		AspectRatio: 0.5625,
		Projection:  "equirectangular",
		ProjectionConfig: ProjectionConfig{
			Rotation: []float64{97, 0},
		},
		Data:    map[string]Datum{},
		Fills:   map[string]string{DefaultFill: "#ABDDA4"},
		Filters: map[string]string{},
		Geography: GeographyConfig{
			HideAntarctica:         Bool(true),
			BorderWidth:            Float(1),
			BorderOpacity:          Float(1),
			BorderColor:            "#FDFDFD",
			PopupTemplate:          DefaultGeographyPopup,
			PopupOnHover:           Bool(true),
			HighlightOnHover:       Bool(true),
			HighlightFillColor:     "#FC8D59",
			HighlightBorderColor:   "rgba(250, 15, 160, 0.2)",
			HighlightBorderWidth:   Float(2),
			HighlightBorderOpacity: Float(1),
			HighlightFillOpacity:   Float(1),
		},
		Bubbles: BubblesConfig{
			BorderWidth:            Float(2),
			BorderOpacity:          Float(1),
			BorderColor:            "#FFFFFF",
			PopupOnHover:           Bool(true),
			PopupTemplate:          DefaultBubblePopup,
			FillOpacity:            Float(0.75),
			Animate:                Bool(true),
			HighlightOnHover:       Bool(true),
			HighlightFillColor:     "#FC8D59",
			HighlightBorderColor:   "rgba(250, 15, 160, 0.2)",
			HighlightBorderWidth:   Float(2),
			HighlightBorderOpacity: Float(1),
			HighlightFillOpacity:   Float(0.85),
			ExitDelay:              Millis(100),
			Key:                    DefaultKey,
		},
		Arcs: ArcConfig{
			StrokeColor:    "#DD1C77",
			StrokeWidth:    Float(1),
			ArcSharpness:   Float(1),
			AnimationSpeed: Millis(600),
			PopupOnHover:   Bool(false),
			PopupTemplate:  DefaultArcPopup,
		},
		Labels: LabelsConfig{
			FontFamily: "Verdana",
			LabelColor: "#000",
			LineWidth:  Float(1),
		},
		Graticule: GraticuleConfig{Step: 10},
	}
}

// WithDefaults returns opts with every unset field filled from
// DefaultOptions. opts is not modified.
func WithDefaults(opts Options) Options {
	out := opts
	out.Data = cloneData(opts.Data)
	out.Fills = cloneStringMap(opts.Fills)
	out.Filters = cloneStringMap(opts.Filters)
	out.ProjectionConfig.Rotation = cloneFloats(opts.ProjectionConfig.Rotation)
	out.Labels.CustomLabelText = cloneStringMap(opts.Labels.CustomLabelText)
	out.Legend.Labels = cloneStringMap(opts.Legend.Labels)
	Merge(&out, DefaultOptions())
	return out
}

func cloneData(in map[string]Datum) map[string]Datum {
	if in == nil {
		return nil
	}
	out := make(map[string]Datum, len(in))
	for k, v := range in {
		out[k] = v.Clone()
	}
	return out
}

func cloneStringMap(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func cloneFloats(in []float64) []float64 {
	if in == nil {
		return nil
	}
	out := make([]float64, len(in))
	copy(out, in)
	return out
}
