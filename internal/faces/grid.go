package faces

import (
	"errors"
	"fmt"

	"github.com/banshee-data/hexboundary/internal/hexgrid"
)

// ErrInvalidArgument reports a resolution-ordering violation.
var ErrInvalidArgument = errors.New("invalid argument")

func invalidArgf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// Grid is the subset of the grid-index capability the tracer and expander
// need. hexgrid.H3 satisfies it.
type Grid interface {
	Resolution(c hexgrid.Cell) int
	IsPentagon(c hexgrid.Cell) bool
	ParentAt(c hexgrid.Cell, res int) hexgrid.Cell
	DigitAt(c hexgrid.Cell, res int) int
	ChildrenAt(c hexgrid.Cell, res int) []hexgrid.Cell
}

func shapeOf(g Grid, c hexgrid.Cell) Shape {
	if g.IsPentagon(c) {
		return Pentagon
	}
	return Hexagon
}
