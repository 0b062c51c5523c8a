package config

import (
	"time"

	"choromap/internal/projection"
)

// ProjectionFactory replaces the default projection selection. It receives
// the drawing surface size.
type ProjectionFactory func(width, height float64) (projection.Projection, error)

// PopupFunc renders popup HTML for a hovered element. It takes precedence
// over the template string of the same config block.
type PopupFunc func(ctx PopupContext) string

// KeyFunc identifies a bubble across redraws.
type KeyFunc func(d Datum) string

// Geography is the subject handed to popup templates: a subunit for
// geography popups, the datum itself for bubbles and arcs.
type Geography struct {
	ID         string         `json:"id"`
	Properties map[string]any `json:"properties"`
}

// PopupContext is the value popup templates execute against.
type PopupContext struct {
	Geography Geography
	Data      Datum
}

// Options is the map options record.
type Options struct {
	Scope            string            `yaml:"scope" json:"scope,omitempty"`
	Width            float64           `yaml:"width" json:"width,omitempty"`
	Height           float64           `yaml:"height" json:"height,omitempty"`
	Responsive       bool              `yaml:"responsive" json:"responsive,omitempty"`
	AspectRatio      float64           `yaml:"aspectRatio" json:"aspectRatio,omitempty"`
	Projection       string            `yaml:"projection" json:"projection,omitempty"`
	ProjectionConfig ProjectionConfig  `yaml:"projectionConfig" json:"projectionConfig"`
	DataURL          string            `yaml:"dataUrl" json:"dataUrl,omitempty"`
	Data             map[string]Datum  `yaml:"data" json:"data,omitempty"`
	Fills            map[string]string `yaml:"fills" json:"fills,omitempty"`
	Filters          map[string]string `yaml:"filters" json:"filters,omitempty"`

	Geography GeographyConfig `yaml:"geographyConfig" json:"geographyConfig"`
	Bubbles   BubblesConfig   `yaml:"bubblesConfig" json:"bubblesConfig"`
	Arcs      ArcConfig       `yaml:"arcConfig" json:"arcConfig"`
	Labels    LabelsConfig    `yaml:"labelsConfig" json:"labelsConfig"`
	Legend    LegendConfig    `yaml:"legendConfig" json:"legendConfig"`
	Graticule GraticuleConfig `yaml:"graticuleConfig" json:"graticuleConfig"`

	SetProjection ProjectionFactory `yaml:"-" json:"-"`
	Done          func()            `yaml:"-" json:"-"`
}

type ProjectionConfig struct {
	Rotation []float64 `yaml:"rotation" json:"rotation,omitempty"`
}

// GeographyConfig styles the subunit layer.
type GeographyConfig struct {
	DataURL                string    `yaml:"dataUrl" json:"dataUrl,omitempty"`
	HideAntarctica         *bool     `yaml:"hideAntarctica" json:"hideAntarctica,omitempty"`
	HideHawaiiAndAlaska    bool      `yaml:"hideHawaiiAndAlaska" json:"hideHawaiiAndAlaska,omitempty"`
	BorderWidth            *float64  `yaml:"borderWidth" json:"borderWidth,omitempty"`
	BorderOpacity          *float64  `yaml:"borderOpacity" json:"borderOpacity,omitempty"`
	BorderColor            string    `yaml:"borderColor" json:"borderColor,omitempty"`
	PopupTemplate          string    `yaml:"popupTemplate" json:"popupTemplate,omitempty"`
	PopupOnHover           *bool     `yaml:"popupOnHover" json:"popupOnHover,omitempty"`
	HighlightOnHover       *bool     `yaml:"highlightOnHover" json:"highlightOnHover,omitempty"`
	HighlightFillColor     string    `yaml:"highlightFillColor" json:"highlightFillColor,omitempty"`
	HighlightBorderColor   string    `yaml:"highlightBorderColor" json:"highlightBorderColor,omitempty"`
	HighlightBorderWidth   *float64  `yaml:"highlightBorderWidth" json:"highlightBorderWidth,omitempty"`
	HighlightBorderOpacity *float64  `yaml:"highlightBorderOpacity" json:"highlightBorderOpacity,omitempty"`
	HighlightFillOpacity   *float64  `yaml:"highlightFillOpacity" json:"highlightFillOpacity,omitempty"`
	Popup                  PopupFunc `yaml:"-" json:"-"`
}

// BubblesConfig styles the bubbles plugin.
type BubblesConfig struct {
	BorderWidth            *float64  `yaml:"borderWidth" json:"borderWidth,omitempty"`
	BorderOpacity          *float64  `yaml:"borderOpacity" json:"borderOpacity,omitempty"`
	BorderColor            string    `yaml:"borderColor" json:"borderColor,omitempty"`
	PopupOnHover           *bool     `yaml:"popupOnHover" json:"popupOnHover,omitempty"`
	Radius                 float64   `yaml:"radius" json:"radius,omitempty"`
	PopupTemplate          string    `yaml:"popupTemplate" json:"popupTemplate,omitempty"`
	FillOpacity            *float64  `yaml:"fillOpacity" json:"fillOpacity,omitempty"`
	Animate                *bool     `yaml:"animate" json:"animate,omitempty"`
	HighlightOnHover       *bool     `yaml:"highlightOnHover" json:"highlightOnHover,omitempty"`
	HighlightFillColor     string    `yaml:"highlightFillColor" json:"highlightFillColor,omitempty"`
	HighlightBorderColor   string    `yaml:"highlightBorderColor" json:"highlightBorderColor,omitempty"`
	HighlightBorderWidth   *float64  `yaml:"highlightBorderWidth" json:"highlightBorderWidth,omitempty"`
	HighlightBorderOpacity *float64  `yaml:"highlightBorderOpacity" json:"highlightBorderOpacity,omitempty"`
	HighlightFillOpacity   *float64  `yaml:"highlightFillOpacity" json:"highlightFillOpacity,omitempty"`
	ExitDelay              *Duration `yaml:"exitDelay" json:"exitDelay,omitempty"`
	FillKey                string    `yaml:"fillKey" json:"fillKey,omitempty"`
	FilterKey              string    `yaml:"filterKey" json:"filterKey,omitempty"`
	Key                    KeyFunc   `yaml:"-" json:"-"`
	Popup                  PopupFunc `yaml:"-" json:"-"`
}

// ArcConfig styles the arcs plugin.
type ArcConfig struct {
	StrokeColor    string    `yaml:"strokeColor" json:"strokeColor,omitempty"`
	StrokeWidth    *float64  `yaml:"strokeWidth" json:"strokeWidth,omitempty"`
	ArcSharpness   *float64  `yaml:"arcSharpness" json:"arcSharpness,omitempty"`
	AnimationSpeed *Duration `yaml:"animationSpeed" json:"animationSpeed,omitempty"`
	PopupOnHover   *bool     `yaml:"popupOnHover" json:"popupOnHover,omitempty"`
	PopupTemplate  string    `yaml:"popupTemplate" json:"popupTemplate,omitempty"`
	GreatArc       bool      `yaml:"greatArc" json:"greatArc,omitempty"`
	Popup          PopupFunc `yaml:"-" json:"-"`
}

// LabelsConfig styles the labels plugin. A zero FontSize renders 10px text
// and stacks off-map labels 14px apart.
type LabelsConfig struct {
	FontSize        float64           `yaml:"fontSize" json:"fontSize,omitempty"`
	FontFamily      string            `yaml:"fontFamily" json:"fontFamily,omitempty"`
	LabelColor      string            `yaml:"labelColor" json:"labelColor,omitempty"`
	LineWidth       *float64          `yaml:"lineWidth" json:"lineWidth,omitempty"`
	CustomLabelText map[string]string `yaml:"customLabelText" json:"customLabelText,omitempty"`
}

type LegendConfig struct {
	LegendTitle     string            `yaml:"legendTitle" json:"legendTitle,omitempty"`
	DefaultFillName string            `yaml:"defaultFillName" json:"defaultFillName,omitempty"`
	Labels          map[string]string `yaml:"labels" json:"labels,omitempty"`
}

type GraticuleConfig struct {
	Step float64 `yaml:"step" json:"step,omitempty"`
}

// Bool returns a pointer to v, for the pointer flags above.
func Bool(v bool) *bool { return &v }

// Float returns a pointer to v, for numeric options whose zero is a
// meaningful setting.
func Float(v float64) *float64 { return &v }

// Millis returns a pointer to a Duration of ms milliseconds.
func Millis(ms int) *Duration {
	d := Duration(time.Duration(ms) * time.Millisecond)
	return &d
}

// Value dereferences an optional setting, yielding the zero value when it
// is unset.
func Value[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}

// Enabled reports the value of a pointer flag, false when unset.
func Enabled(p *bool) bool { return p != nil && *p }
