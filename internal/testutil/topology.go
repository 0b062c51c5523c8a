// Package testutil ships a small quantized topology shared by tests.
//
// Quantization uses scale [1,1] and translate [-180,-90], so a decoded arc
// vertex (x, y) is (x-180, y-90) in degrees.
package testutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"choromap/internal/geom"
)

// TopologyJSON has two objects. "world": USA (lon -120..-80, lat 30..48),
// CAN (-120..-60, 50..70), FRA (0..8, 42..50), ATA (-170..170, -85..-65)
// and JPN as a two-part MultiPolygon. "usa": NY, CA, HI, AK and VT.
const TopologyJSON = `{
  "type": "Topology",
  "transform": {"scale": [1, 1], "translate": [-180, -90]},
  "objects": {
    "world": {
      "type": "GeometryCollection",
      "geometries": [
        {"type": "Polygon", "id": "USA", "properties": {"name": "United States"}, "arcs": [[0]]},
        {"type": "Polygon", "id": "CAN", "properties": {"name": "Canada"}, "arcs": [[1]]},
        {"type": "Polygon", "id": "FRA", "properties": {"name": "France"}, "arcs": [[2]]},
        {"type": "Polygon", "id": "ATA", "properties": {"name": "Antarctica"}, "arcs": [[3]]},
        {"type": "MultiPolygon", "id": "JPN", "properties": {"name": "Japan"}, "arcs": [[[4]], [[5]]]}
      ]
    },
    "usa": {
      "type": "GeometryCollection",
      "geometries": [
        {"type": "Polygon", "id": "NY", "properties": {"name": "New York"}, "arcs": [[6]]},
        {"type": "Polygon", "id": "CA", "properties": {"name": "California"}, "arcs": [[7]]},
        {"type": "Polygon", "id": "HI", "properties": {"name": "Hawaii"}, "arcs": [[8]]},
        {"type": "Polygon", "id": "AK", "properties": {"name": "Alaska"}, "arcs": [[9]]},
        {"type": "Polygon", "id": "VT", "properties": {"name": "Vermont"}, "arcs": [[10]]}
      ]
    }
  },
  "arcs": [
    [[60, 120], [40, 0], [0, 18], [-40, 0], [0, -18]],
    [[60, 140], [60, 0], [0, 20], [-60, 0], [0, -20]],
    [[180, 132], [8, 0], [0, 8], [-8, 0], [0, -8]],
    [[10, 5], [340, 0], [0, 20], [-340, 0], [0, -20]],
    [[310, 121], [5, 0], [0, 5], [-5, 0], [0, -5]],
    [[318, 127], [4, 0], [0, 5], [-4, 0], [0, -5]],
    [[101, 130], [6, 0], [0, 5], [-6, 0], [0, -5]],
    [[56, 122], [10, 0], [0, 10], [-10, 0], [0, -10]],
    [[20, 109], [5, 0], [0, 3], [-5, 0], [0, -3]],
    [[15, 145], [25, 0], [0, 15], [-25, 0], [0, -15]],
    [[107, 133], [1, 0], [0, 2], [-1, 0], [0, -2]]
  ]
}`

// Topology decodes TopologyJSON.
func Topology(t testing.TB) *geom.Topology {
	t.Helper()
	topo, err := geom.DecodeTopology(strings.NewReader(TopologyJSON))
	require.NoError(t, err)
	return topo
}
