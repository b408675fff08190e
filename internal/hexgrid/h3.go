package hexgrid

import (
	"math"

	"github.com/uber/h3-go/v4"
)

// LatLng is a vertex in radians.
type LatLng struct {
	Lat, Lng float64
}

// H3 implements the grid-index capability on top of the H3 library.
// It is stateless and safe for concurrent use.
type H3 struct{}

// Resolution returns the cell's resolution in [0,15].
func (H3) Resolution(c Cell) int {
	return c.Resolution()
}

// IsPentagon reports whether the cell is one of the twelve pentagons at its
// resolution.
func (H3) IsPentagon(c Cell) bool {
	return h3.Cell(c).IsPentagon()
}

// ParentAt returns the ancestor of c at res. res must not be finer than c.
func (H3) ParentAt(c Cell, res int) Cell {
	return Cell(h3.Cell(c).Parent(res))
}

// DigitAt returns c's child position at res relative to its ancestor at res-1.
func (H3) DigitAt(c Cell, res int) int {
	return c.Digit(res)
}

// ChildrenAt returns the descendants of c at res in the grid's enumeration
// order (ascending digit at each level).
func (H3) ChildrenAt(c Cell, res int) []Cell {
	kids := h3.Cell(c).Children(res)
	out := make([]Cell, 0, len(kids))
	for _, k := range kids {
		if k == 0 {
			continue
		}
		out = append(out, Cell(k))
	}
	return out
}

// Neighbors returns c and every cell sharing an edge or vertex with it.
func (H3) Neighbors(c Cell) []Cell {
	disk := h3.GridDisk(h3.Cell(c), 1)
	out := make([]Cell, 0, len(disk))
	for _, n := range disk {
		if n == 0 {
			continue
		}
		out = append(out, Cell(n))
	}
	return out
}

// ChildCount returns the number of descendants of c at res without
// enumerating them. A pentagon loses one child per hexagonal ring member.
func (g H3) ChildCount(c Cell, res int) int {
	n := res - c.Resolution()
	if n < 0 {
		return 0
	}
	full := ipow7(n)
	if !g.IsPentagon(c) {
		return full
	}
	return 1 + 5*(full-1)/6
}

// RawBoundary returns the cell's boundary vertices in radians, unclosed.
func (H3) RawBoundary(c Cell) []LatLng {
	b := h3.Cell(c).Boundary()
	out := make([]LatLng, len(b))
	for i, v := range b {
		out[i] = LatLng{Lat: degsToRads(v.Lat), Lng: degsToRads(v.Lng)}
	}
	return out
}

// AverageEdgeLengthKm returns the mean hexagon edge length at res.
func (H3) AverageEdgeLengthKm(res int) float64 {
	return h3.HexagonEdgeLengthAvgKm(res)
}

// FromLatLng returns the cell containing the point (degrees) at res.
func FromLatLng(lat, lng float64, res int) Cell {
	return Cell(h3.LatLngToCell(h3.NewLatLng(lat, lng), res))
}

// Res0Cells returns the 122 base cells.
func Res0Cells() []Cell {
	base := h3.Res0Cells()
	out := make([]Cell, len(base))
	for i, b := range base {
		out[i] = Cell(b)
	}
	return out
}

// Pentagons returns the twelve pentagons at res.
func Pentagons(res int) []Cell {
	ps := h3.Pentagons(res)
	out := make([]Cell, len(ps))
	for i, p := range ps {
		out[i] = Cell(p)
	}
	return out
}

// RadsToDegs converts radians to degrees.
func RadsToDegs(r float64) float64 {
	return r * 180.0 / math.Pi
}

func degsToRads(d float64) float64 {
	return d * math.Pi / 180.0
}

func ipow7(n int) int {
	v := 1
	for i := 0; i < n; i++ {
		v *= 7
	}
	return v
}
