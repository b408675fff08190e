package boundary

import (
	"fmt"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/hexboundary/internal/faces"
	"github.com/banshee-data/hexboundary/internal/hexgrid"
	"github.com/banshee-data/hexboundary/internal/monitoring"
	"github.com/banshee-data/hexboundary/internal/planar"
)

// openRing returns the cell's vertices in degrees without the closing
// vertex, plus their latitudes.
func (a *Assembler) openRing(cell hexgrid.Cell) (planar.Ring, []float64) {
	raw := a.grid.RawBoundary(cell)
	ring := make(planar.Ring, len(raw))
	lats := make([]float64, len(raw))
	for i, v := range raw {
		ring[i] = planar.Point{X: hexgrid.RadsToDegs(v.Lng), Y: hexgrid.RadsToDegs(v.Lat)}
		lats[i] = ring[i].Y
	}
	return ring, lats
}

// CellBoundary returns the cell's outline as a closed ring.
func (a *Assembler) CellBoundary(cell hexgrid.Cell) planar.Ring {
	ring, _ := a.openRing(cell)
	return ring.Closed()
}

// MergedBoundary returns the outer ring of the union of parent's boundary
// children at targetRes. A targetRes equal to parent's resolution returns
// the cell's own outline.
func (a *Assembler) MergedBoundary(parent hexgrid.Cell, targetRes int) (Result, error) {
	if targetRes == a.grid.Resolution(parent) {
		return Result{Ring: a.CellBoundary(parent), Method: MethodCell}, nil
	}
	start := a.clock.Now()
	children, err := faces.BoundaryChildren(a.grid, parent, targetRes, faces.AllLabels)
	if err != nil {
		return Result{}, err
	}
	if len(children) == 0 {
		monitoring.Logf("[boundary] %s has no boundary children at res %d, using cell outline", parent, targetRes)
		return Result{Ring: a.CellBoundary(parent), Method: MethodCell}, nil
	}

	merged, _, err := a.unionChildren(children)
	if err != nil {
		return Result{}, fmt.Errorf("merge boundary of %s: %w", parent, err)
	}
	a.log.Debug("merged boundary",
		zap.Stringer("cell", parent),
		zap.Int("target_res", targetRes),
		zap.Int("children", len(children)),
		zap.Int("vertices", len(merged.Outer)),
		zap.Duration("elapsed", a.since(start)))

	return Result{
		Ring:            merged.Outer.Closed(),
		Method:          MethodMerged,
		IntermediateRes: targetRes,
		BoundaryCells:   len(children),
	}, nil
}

// unionChildren folds the child outlines into one polygon by pairwise
// union and returns the first member, with the latitudes of every child
// vertex.
func (a *Assembler) unionChildren(children []hexgrid.Cell) (planar.Polygon, []float64, error) {
	var merged planar.MultiPolygon
	lats := make([]float64, 0, len(children)*6)
	for _, child := range children {
		ring, childLats := a.openRing(child)
		lats = append(lats, childLats...)
		var err error
		merged, err = a.geom.Union(merged, planar.MultiPolygon{{Outer: ring.Closed()}})
		if err != nil {
			return planar.Polygon{}, nil, err
		}
	}
	if len(merged) == 0 {
		return planar.Polygon{}, nil, planar.ErrEmptyGeometry
	}
	return merged[0], lats, nil
}

// hullChildren returns the convex hull of every child vertex, with their
// latitudes.
func (a *Assembler) hullChildren(children []hexgrid.Cell) (planar.Polygon, []float64, error) {
	points := make([]planar.Point, 0, len(children)*6)
	lats := make([]float64, 0, len(children)*6)
	for _, child := range children {
		ring, childLats := a.openRing(child)
		points = append(points, ring...)
		lats = append(lats, childLats...)
	}
	hull, err := a.geom.ConvexHull(points)
	if err != nil {
		return planar.Polygon{}, nil, err
	}
	return hull, lats, nil
}

// BufferedCell buffers the cell's own outline by bufferMeters. A negative
// distance is derived from the average edge length a few resolutions finer
// (auto_buffer_res_offset, capped at 15).
func (a *Assembler) BufferedCell(cell hexgrid.Cell, bufferMeters float64) (Result, error) {
	res := a.grid.Resolution(cell)
	edgeRes := res + a.cfg.GetAutoBufferResOffset()
	if edgeRes > hexgrid.MaxResolution {
		edgeRes = hexgrid.MaxResolution
	}
	if bufferMeters < 0 {
		bufferMeters = a.autoBufferMeters(edgeRes)
	}

	ring, lats := a.openRing(cell)
	deg := a.MetersToDegrees(bufferMeters, stat.Mean(lats, nil))
	buffered, err := a.geom.Buffer(planar.Polygon{Outer: ring.Closed()}, deg, planar.JoinRound, planar.EndRound)
	if err != nil {
		return Result{}, fmt.Errorf("buffer %s: %w", cell, err)
	}
	a.log.Debug("buffered cell",
		zap.Stringer("cell", cell),
		zap.Float64("buffer_meters", bufferMeters),
		zap.Float64("buffer_degrees", deg))

	return Result{
		Ring:            buffered.Outer.Closed(),
		Method:          MethodBuffered,
		BufferMeters:    bufferMeters,
		IntermediateRes: edgeRes,
	}, nil
}

// BufferedMergedBoundary builds a polygon containing every finest
// descendant of cell. The boundary children at intermediateRes (clamped to
// just finer than cell and at most 15) are combined either by exact union
// or, with useConvexHull, by the convex hull of their vertices, and the
// result is buffered by bufferMeters. A negative distance uses the average
// edge length at the intermediate resolution. A zero distance, or an
// intermediate resolution of 15, returns the combined polygon unbuffered.
func (a *Assembler) BufferedMergedBoundary(cell hexgrid.Cell, intermediateRes int, bufferMeters float64, useConvexHull bool) (Result, error) {
	res := a.grid.Resolution(cell)
	method := MethodBufferedBoundary
	if useConvexHull {
		method = MethodBufferedBoundaryHull
	}
	if res >= hexgrid.MaxResolution {
		// A finest cell is its own only descendant.
		return Result{Ring: a.CellBoundary(cell), Method: method, IntermediateRes: res}, nil
	}
	if intermediateRes <= res {
		intermediateRes = res + 1
	}
	if intermediateRes > hexgrid.MaxResolution {
		intermediateRes = hexgrid.MaxResolution
	}

	start := a.clock.Now()
	children, err := faces.BoundaryChildren(a.grid, cell, intermediateRes, faces.AllLabels)
	if err != nil {
		return Result{}, err
	}
	if len(children) == 0 {
		monitoring.Logf("[boundary] %s has no boundary children at res %d, using cell outline", cell, intermediateRes)
		return Result{Ring: a.CellBoundary(cell), Method: MethodCell, IntermediateRes: intermediateRes}, nil
	}

	var base planar.Polygon
	var lats []float64
	if useConvexHull {
		base, lats, err = a.hullChildren(children)
	} else {
		base, lats, err = a.unionChildren(children)
	}
	if err != nil {
		return Result{}, fmt.Errorf("combine boundary of %s: %w", cell, err)
	}

	if bufferMeters < 0 {
		bufferMeters = a.autoBufferMeters(intermediateRes)
	}
	out := Result{
		Method:          method,
		IntermediateRes: intermediateRes,
		BoundaryCells:   len(children),
	}
	if bufferMeters == 0 || intermediateRes >= hexgrid.MaxResolution {
		out.Ring = base.Outer.Closed()
		return out, nil
	}

	deg := a.MetersToDegrees(bufferMeters, stat.Mean(lats, nil))
	buffered, err := a.geom.Buffer(base, deg, planar.JoinRound, planar.EndRound)
	if err != nil {
		return Result{}, fmt.Errorf("buffer boundary of %s: %w", cell, err)
	}
	out.Ring = buffered.Outer.Closed()
	out.BufferMeters = bufferMeters

	a.log.Debug("buffered boundary",
		zap.Stringer("cell", cell),
		zap.Int("intermediate_res", intermediateRes),
		zap.Int("children", len(children)),
		zap.Bool("convex_hull", useConvexHull),
		zap.Float64("buffer_meters", bufferMeters),
		zap.Duration("elapsed", a.since(start)))
	return out, nil
}

// Cover is BufferedMergedBoundary with the configured intermediate
// resolution, buffer distance and combine mode.
func (a *Assembler) Cover(cell hexgrid.Cell) (Result, error) {
	return a.BufferedMergedBoundary(cell,
		a.cfg.GetIntermediateRes(),
		a.cfg.GetBufferMeters(),
		a.cfg.GetUseConvexHull())
}
