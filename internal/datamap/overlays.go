package datamap

import (
	"context"
	"fmt"

	"choromap/internal/config"
	"choromap/internal/geom"
)

// ApplyOverlays loads the choropleth file and the overlay datasets named by
// an application file and draws them. The graticule goes first so that it
// sits beneath everything else.
func (m *Map) ApplyOverlays(ctx context.Context, data string, o config.OverlaysConfig) error {
	if data != "" {
		values, err := geom.LoadChoropleth(ctx, data)
		if err != nil {
			return fmt.Errorf("load data: %w", err)
		}
		m.UpdateChoropleth(values, false)
	}
	if o.Graticule {
		if err := m.Graticule(nil); err != nil {
			return err
		}
	}
	if o.Bubbles != "" {
		bubbles, err := geom.LoadDatums(ctx, o.Bubbles)
		if err != nil {
			return fmt.Errorf("load bubbles: %w", err)
		}
		if err := m.Bubbles(bubbles, nil); err != nil {
			return err
		}
	}
	if o.Arcs != "" {
		arcs, err := geom.LoadDatums(ctx, o.Arcs)
		if err != nil {
			return fmt.Errorf("load arcs: %w", err)
		}
		if err := m.Arcs(arcs, nil); err != nil {
			return err
		}
	}
	if o.Labels {
		if err := m.Labels(nil); err != nil {
			return err
		}
	}
	if o.Legend {
		if err := m.Legend(nil); err != nil {
			return err
		}
	}
	return nil
}
