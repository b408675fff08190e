package faces

import (
	"testing"

	"github.com/banshee-data/hexboundary/internal/hexgrid"
)

var grid = hexgrid.H3{}

const (
	baseHexagon  = "8001fffffffffff"
	basePentagon = "8009fffffffffff"
	res6Hexagon  = "86283082fffffff"
	res1Pentagon = "81083ffffffffff"
)

// countingGrid records how many times the expander asks for children.
type countingGrid struct {
	hexgrid.H3
	childrenCalls int
}

func (g *countingGrid) ChildrenAt(c hexgrid.Cell, res int) []hexgrid.Cell {
	g.childrenCalls++
	return g.H3.ChildrenAt(c, res)
}

func childWithDigit(t *testing.T, parent hexgrid.Cell, digit int) hexgrid.Cell {
	t.Helper()
	res := grid.Resolution(parent) + 1
	for _, c := range grid.ChildrenAt(parent, res) {
		if grid.DigitAt(c, res) == digit {
			return c
		}
	}
	t.Fatalf("%s has no child with digit %d", parent, digit)
	return 0
}

// onParentEdge reports whether c has a neighbour outside its ancestor at res.
func onParentEdge(c hexgrid.Cell, res int) bool {
	parent := grid.ParentAt(c, res)
	for _, n := range grid.Neighbors(c) {
		if grid.ParentAt(n, res) != parent {
			return true
		}
	}
	return false
}
