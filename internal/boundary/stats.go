package boundary

import (
	"fmt"
	"time"

	"github.com/banshee-data/hexboundary/internal/faces"
	"github.com/banshee-data/hexboundary/internal/hexgrid"
)

// PerimeterRow reports the cost of merging one cell's boundary at a fixed
// child resolution.
type PerimeterRow struct {
	ParentRes        int
	BoundaryChildren int
	PolygonVertices  int
	Elapsed          time.Duration
}

// PerimeterStats walks from cell down its centre children and, for each
// resolution below targetRes, merges that cell's boundary at targetRes.
func (a *Assembler) PerimeterStats(cell hexgrid.Cell, targetRes int) ([]PerimeterRow, error) {
	res := a.grid.Resolution(cell)
	if targetRes <= res || targetRes > hexgrid.MaxResolution {
		return nil, fmt.Errorf("%w: stats target %d must be in (%d, %d]",
			faces.ErrInvalidArgument, targetRes, res, hexgrid.MaxResolution)
	}

	rows := make([]PerimeterRow, 0, targetRes-res)
	current := cell
	for parentRes := res; parentRes < targetRes; parentRes++ {
		if parentRes > res {
			current = a.grid.ChildrenAt(current, parentRes)[0]
		}
		start := a.clock.Now()
		merged, err := a.MergedBoundary(current, targetRes)
		if err != nil {
			return nil, err
		}
		vertices := len(merged.Ring)
		if merged.Ring.IsClosed() {
			vertices--
		}
		rows = append(rows, PerimeterRow{
			ParentRes:        parentRes,
			BoundaryChildren: merged.BoundaryCells,
			PolygonVertices:  vertices,
			Elapsed:          a.since(start),
		})
	}
	return rows, nil
}
