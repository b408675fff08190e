package boundary

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/banshee-data/hexboundary/internal/faces"
	"github.com/banshee-data/hexboundary/internal/hexgrid"
	"github.com/banshee-data/hexboundary/internal/planar"
)

// OrbRing converts a ring to orb's [lon, lat] representation.
func OrbRing(r planar.Ring) orb.Ring {
	out := make(orb.Ring, len(r))
	for i, p := range r {
		out[i] = orb.Point{p.X, p.Y}
	}
	return out
}

// RingFromOrb converts an orb ring back to a planar ring.
func RingFromOrb(r orb.Ring) planar.Ring {
	out := make(planar.Ring, len(r))
	for i, p := range r {
		out[i] = planar.Point{X: p.X(), Y: p.Y()}
	}
	return out
}

func polygonFeature(r planar.Ring) *geojson.Feature {
	return geojson.NewFeature(orb.Polygon{OrbRing(r.Closed())})
}

// CellFeature returns the cell outline as a GeoJSON feature.
func (a *Assembler) CellFeature(cell hexgrid.Cell) *geojson.Feature {
	f := polygonFeature(a.CellBoundary(cell))
	f.Properties["h3_index"] = cell.String()
	return f
}

// Feature wraps the result as a GeoJSON feature for cell, with the
// properties that describe how it was built.
func (r Result) Feature(cell hexgrid.Cell) *geojson.Feature {
	f := polygonFeature(r.Ring)
	f.Properties["h3_index"] = cell.String()
	f.Properties["method"] = string(r.Method)
	switch r.Method {
	case MethodMerged:
		f.Properties["child_resolution"] = r.IntermediateRes
		f.Properties["num_boundary_cells"] = r.BoundaryCells
	case MethodBuffered:
		f.Properties["buffer_meters"] = r.BufferMeters
	case MethodBufferedBoundary, MethodBufferedBoundaryHull:
		f.Properties["intermediate_res"] = r.IntermediateRes
		f.Properties["buffer_meters"] = r.BufferMeters
		f.Properties["num_boundary_cells"] = r.BoundaryCells
	}
	return f
}

// BoundaryChildrenCollection returns one outline feature per boundary
// child of parent at targetRes, in expansion order.
func (a *Assembler) BoundaryChildrenCollection(parent hexgrid.Cell, targetRes int) (*geojson.FeatureCollection, error) {
	children, err := faces.BoundaryChildren(a.grid, parent, targetRes, faces.AllLabels)
	if err != nil {
		return nil, err
	}
	fc := geojson.NewFeatureCollection()
	for _, c := range children {
		fc.Append(a.CellFeature(c))
	}
	return fc, nil
}

// DemoLayers is the set of layers used to illustrate how a cover is built
// for one cell.
type DemoLayers struct {
	CellBoundary     *geojson.Feature
	BoundaryChildren *geojson.FeatureCollection
	MergedBoundary   *geojson.Feature
	BufferedAccurate *geojson.Feature
	BufferedFast     *geojson.Feature
}

// DemoLayers builds the five illustration layers for cell with children at
// intermediateRes and an automatic buffer.
func (a *Assembler) DemoLayers(cell hexgrid.Cell, intermediateRes int) (*DemoLayers, error) {
	children, err := a.BoundaryChildrenCollection(cell, intermediateRes)
	if err != nil {
		return nil, err
	}
	merged, err := a.MergedBoundary(cell, intermediateRes)
	if err != nil {
		return nil, err
	}
	accurate, err := a.BufferedMergedBoundary(cell, intermediateRes, -1, false)
	if err != nil {
		return nil, err
	}
	fast, err := a.BufferedMergedBoundary(cell, intermediateRes, -1, true)
	if err != nil {
		return nil, err
	}
	return &DemoLayers{
		CellBoundary:     a.CellFeature(cell),
		BoundaryChildren: children,
		MergedBoundary:   merged.Feature(cell),
		BufferedAccurate: accurate.Feature(cell),
		BufferedFast:     fast.Feature(cell),
	}, nil
}

// WriteJS writes the layers as JavaScript variable declarations for a
// static map page.
func (d *DemoLayers) WriteJS(w io.Writer) error {
	layers := []struct {
		name  string
		value any
	}{
		{"cellBoundary", d.CellBoundary},
		{"boundaryChildren", d.BoundaryChildren},
		{"mergedBoundary", d.MergedBoundary},
		{"bufferedAccurate", d.BufferedAccurate},
		{"bufferedFast", d.BufferedFast},
	}
	for _, l := range layers {
		data, err := json.Marshal(l.value)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", l.name, err)
		}
		if _, err := fmt.Fprintf(w, "var %s = %s;\n", l.name, data); err != nil {
			return err
		}
	}
	return nil
}
