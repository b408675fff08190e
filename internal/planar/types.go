package planar

import (
	"errors"
	"math"
)

// ErrEmptyGeometry is returned when an operation produces no polygon.
var ErrEmptyGeometry = errors.New("empty geometry")

// Point is a planar vertex. The boundary package uses X for longitude and
// Y for latitude, both in degrees.
type Point struct {
	X, Y float64
}

// Ring is a sequence of vertices. A closed ring repeats its first vertex
// at the end.
type Ring []Point

// IsClosed reports whether r ends where it starts.
func (r Ring) IsClosed() bool {
	return len(r) > 0 && r[0] == r[len(r)-1]
}

// Closed returns r with the first vertex appended if it is not already
// closed. The input is not modified.
func (r Ring) Closed() Ring {
	if len(r) == 0 || r.IsClosed() {
		return r
	}
	out := make(Ring, len(r), len(r)+1)
	copy(out, r)
	return append(out, r[0])
}

// Area returns the unsigned shoelace area of r.
func (r Ring) Area() float64 {
	c := r.Closed()
	sum := 0.0
	for i := 0; i+1 < len(c); i++ {
		sum += c[i].X*c[i+1].Y - c[i+1].X*c[i].Y
	}
	return math.Abs(sum) / 2
}

// Coords returns the ring as [x, y] pairs.
func (r Ring) Coords() [][]float64 {
	out := make([][]float64, len(r))
	for i, p := range r {
		out[i] = []float64{p.X, p.Y}
	}
	return out
}

// RingFromCoords builds a ring from [x, y] pairs. Extra ordinates are
// ignored.
func RingFromCoords(coords [][]float64) Ring {
	out := make(Ring, 0, len(coords))
	for _, c := range coords {
		if len(c) < 2 {
			continue
		}
		out = append(out, Point{X: c[0], Y: c[1]})
	}
	return out
}

// Polygon is an outer ring with optional holes.
type Polygon struct {
	Outer Ring
	Holes []Ring
}

// Points returns every vertex of the outer ring.
func (p Polygon) Points() []Point {
	return []Point(p.Outer)
}

// MultiPolygon is a set of disjoint polygons, as produced by a union of
// non-touching shapes.
type MultiPolygon []Polygon

// JoinStyle selects how buffered edges meet at vertices.
type JoinStyle uint8

const (
	JoinRound JoinStyle = iota
	JoinMitre
	JoinBevel
)

// EndStyle selects how buffered open ends are capped.
type EndStyle uint8

const (
	EndRound EndStyle = iota
	EndFlat
	EndSquare
)

// Geometry is the polygon capability the boundary assembler consumes.
// Every returned ring is closed.
type Geometry interface {
	Union(a, b MultiPolygon) (MultiPolygon, error)
	ConvexHull(points []Point) (Polygon, error)
	Buffer(p Polygon, distance float64, join JoinStyle, end EndStyle) (Polygon, error)
}
