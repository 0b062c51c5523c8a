package geom

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"sync"

	"github.com/paulmach/orb"
)

var (
	ErrNotTopology   = errors.New("not a topology")
	ErrUnknownObject = errors.New("unknown topology object")
)

// Topology is a TopoJSON document: shared arcs, an optional quantization
// transform and named objects.
type Topology struct {
	Type      string                   `json:"type"`
	Transform *Transform               `json:"transform,omitempty"`
	BBox      []float64                `json:"bbox,omitempty"`
	Objects   map[string]*TopoGeometry `json:"objects"`
	Arcs      [][][]float64            `json:"arcs"`

	once    sync.Once
	decoded [][]orb.Point
}

type Transform struct {
	Scale     [2]float64 `json:"scale"`
	Translate [2]float64 `json:"translate"`
}

// TopoGeometry is a topology object. Arcs hold arc indexes whose nesting
// depends on Type; negative indexes (~i) reference arc i reversed.
type TopoGeometry struct {
	Type        string          `json:"type"`
	ID          any             `json:"id,omitempty"`
	Properties  map[string]any  `json:"properties,omitempty"`
	Arcs        json.RawMessage `json:"arcs,omitempty"`
	Coordinates json.RawMessage `json:"coordinates,omitempty"`
	Geometries  []*TopoGeometry `json:"geometries,omitempty"`
}

// DecodeTopology reads a TopoJSON document.
func DecodeTopology(r io.Reader) (*Topology, error) {
	var t Topology
	if err := json.NewDecoder(r).Decode(&t); err != nil {
		return nil, fmt.Errorf("decode topology: %w", err)
	}
	if t.Type != "Topology" {
		return nil, fmt.Errorf("%w: type %q", ErrNotTopology, t.Type)
	}
	return &t, nil
}

// ObjectNames lists the objects in the topology.
func (t *Topology) ObjectNames() []string {
	out := make([]string, 0, len(t.Objects))
	for k := range t.Objects {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Features converts the named object into features, one per member of a
// GeometryCollection or a single feature for any other object type.
func (t *Topology) Features(object string) ([]Feature, error) {
	obj, ok := t.Objects[object]
	if !ok || obj == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownObject, object)
	}
	t.once.Do(t.decodeArcs)

	members := []*TopoGeometry{obj}
	if obj.Type == "GeometryCollection" {
		members = obj.Geometries
	}
	out := make([]Feature, 0, len(members))
	for _, g := range members {
		if g == nil {
			continue
		}
		geometry, err := t.geometry(g)
		if err != nil {
			return nil, fmt.Errorf("object %q id %v: %w", object, g.ID, err)
		}
		out = append(out, Feature{ID: idString(g.ID), Properties: g.Properties, Geometry: geometry})
	}
	return out, nil
}

// decodeArcs resolves delta encoding and the quantization transform once.
func (t *Topology) decodeArcs() {
	t.decoded = make([][]orb.Point, len(t.Arcs))
	for i, arc := range t.Arcs {
		pts := make([]orb.Point, 0, len(arc))
		var x, y float64
		for _, p := range arc {
			if len(p) < 2 {
				continue
			}
			if t.Transform != nil {
				x, y = x+p[0], y+p[1]
				pts = append(pts, t.point(x, y))
			} else {
				pts = append(pts, orb.Point{p[0], p[1]})
			}
		}
		t.decoded[i] = pts
	}
}

func (t *Topology) point(x, y float64) orb.Point {
	if t.Transform == nil {
		return orb.Point{x, y}
	}
	return orb.Point{
		x*t.Transform.Scale[0] + t.Transform.Translate[0],
		y*t.Transform.Scale[1] + t.Transform.Translate[1],
	}
}

func (t *Topology) geometry(g *TopoGeometry) (orb.Geometry, error) {
	switch g.Type {
	case "Point":
		var c []float64
		if err := json.Unmarshal(g.Coordinates, &c); err != nil || len(c) < 2 {
			return nil, fmt.Errorf("point coordinates: %v", err)
		}
		return t.point(c[0], c[1]), nil
	case "MultiPoint":
		var cs [][]float64
		if err := json.Unmarshal(g.Coordinates, &cs); err != nil {
			return nil, fmt.Errorf("multipoint coordinates: %w", err)
		}
		mp := make(orb.MultiPoint, 0, len(cs))
		for _, c := range cs {
			if len(c) >= 2 {
				mp = append(mp, t.point(c[0], c[1]))
			}
		}
		return mp, nil
	case "LineString":
		var arcs []int
		if err := json.Unmarshal(g.Arcs, &arcs); err != nil {
			return nil, fmt.Errorf("linestring arcs: %w", err)
		}
		return orb.LineString(t.stitch(arcs)), nil
	case "MultiLineString":
		var arcs [][]int
		if err := json.Unmarshal(g.Arcs, &arcs); err != nil {
			return nil, fmt.Errorf("multilinestring arcs: %w", err)
		}
		mls := make(orb.MultiLineString, 0, len(arcs))
		for _, a := range arcs {
			mls = append(mls, orb.LineString(t.stitch(a)))
		}
		return mls, nil
	case "Polygon":
		var rings [][]int
		if err := json.Unmarshal(g.Arcs, &rings); err != nil {
			return nil, fmt.Errorf("polygon arcs: %w", err)
		}
		return t.polygon(rings), nil
	case "MultiPolygon":
		var polys [][][]int
		if err := json.Unmarshal(g.Arcs, &polys); err != nil {
			return nil, fmt.Errorf("multipolygon arcs: %w", err)
		}
		mp := make(orb.MultiPolygon, 0, len(polys))
		for _, rings := range polys {
			mp = append(mp, t.polygon(rings))
		}
		return mp, nil
	case "GeometryCollection":
		var c orb.Collection
		for _, m := range g.Geometries {
			sub, err := t.geometry(m)
			if err != nil {
				return nil, err
			}
			c = append(c, sub)
		}
		return c, nil
	case "", "null":
		return orb.Collection{}, nil
	}
	return nil, fmt.Errorf("unsupported geometry type %q", g.Type)
}

func (t *Topology) polygon(rings [][]int) orb.Polygon {
	poly := make(orb.Polygon, 0, len(rings))
	for _, r := range rings {
		ring := orb.Ring(t.stitch(r))
		if len(ring) > 0 && !ring.Closed() {
			ring = append(ring, ring[0])
		}
		poly = append(poly, ring)
	}
	return poly
}

// stitch concatenates arcs, dropping the shared first point of each
// following arc.
func (t *Topology) stitch(arcs []int) []orb.Point {
	var out []orb.Point
	for i, a := range arcs {
		reversed := a < 0
		if reversed {
			a = ^a
		}
		if a >= len(t.decoded) {
			continue
		}
		src := t.decoded[a]
		pts := make([]orb.Point, len(src))
		copy(pts, src)
		if reversed {
			for l, r := 0, len(pts)-1; l < r; l, r = l+1, r-1 {
				pts[l], pts[r] = pts[r], pts[l]
			}
		}
		if i > 0 && len(pts) > 0 {
			pts = pts[1:]
		}
		out = append(out, pts...)
	}
	return out
}

func idString(v any) string {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return id
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	case json.Number:
		return id.String()
	}
	return fmt.Sprint(v)
}
