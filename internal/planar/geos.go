package planar

import (
	"fmt"

	"github.com/twpayne/go-geos"
)

// DefaultQuadSegments is the number of segments per quarter circle in round
// joins and caps: 32 points per full circle.
const DefaultQuadSegments = 8

// GEOS implements Geometry with the GEOS library. A fresh GEOS context is
// created per call, so a GEOS value is safe for concurrent use.
type GEOS struct {
	// QuadSegments controls round join/cap smoothness. Zero means
	// DefaultQuadSegments.
	QuadSegments int
	// MitreLimit bounds mitre joins. Zero means 5.
	MitreLimit float64
}

// NewGEOS returns a GEOS geometry whose round buffers approximate a full
// circle with pointsPerCircle vertices (rounded down to a multiple of four).
func NewGEOS(pointsPerCircle int) *GEOS {
	q := pointsPerCircle / 4
	if q < 1 {
		q = DefaultQuadSegments
	}
	return &GEOS{QuadSegments: q}
}

func (g *GEOS) quadSegments() int {
	if g == nil || g.QuadSegments <= 0 {
		return DefaultQuadSegments
	}
	return g.QuadSegments
}

func (g *GEOS) mitreLimit() float64 {
	if g == nil || g.MitreLimit <= 0 {
		return 5
	}
	return g.MitreLimit
}

// Union returns the union of a and b. Touching or overlapping polygons are
// merged; disjoint ones are kept as separate members.
func (g *GEOS) Union(a, b MultiPolygon) (out MultiPolygon, err error) {
	defer recoverGEOS("union", &err)
	if len(a) == 0 {
		return closeAll(b), nil
	}
	if len(b) == 0 {
		return closeAll(a), nil
	}
	ctx := geos.NewContext()
	merged := toGeom(ctx, a).Union(toGeom(ctx, b))
	out = fromGeom(merged)
	if len(out) == 0 {
		return nil, ErrEmptyGeometry
	}
	return out, nil
}

// ConvexHull returns the smallest convex polygon containing points.
func (g *GEOS) ConvexHull(points []Point) (out Polygon, err error) {
	defer recoverGEOS("convex hull", &err)
	if len(points) < 3 {
		return Polygon{}, fmt.Errorf("convex hull of %d points: %w", len(points), ErrEmptyGeometry)
	}
	ctx := geos.NewContext()
	geoms := make([]*geos.Geom, len(points))
	for i, p := range points {
		geoms[i] = ctx.NewPoint([]float64{p.X, p.Y})
	}
	hull := ctx.NewCollection(geos.TypeIDMultiPoint, geoms).ConvexHull()
	polys := fromGeom(hull)
	if len(polys) == 0 {
		return Polygon{}, fmt.Errorf("convex hull is degenerate: %w", ErrEmptyGeometry)
	}
	return polys[0], nil
}

// Buffer grows p by distance (same units as the coordinates). If the
// result splits into several polygons the first is returned.
func (g *GEOS) Buffer(p Polygon, distance float64, join JoinStyle, end EndStyle) (out Polygon, err error) {
	defer recoverGEOS("buffer", &err)
	if len(p.Outer) < 3 {
		return Polygon{}, fmt.Errorf("buffer of %d-vertex ring: %w", len(p.Outer), ErrEmptyGeometry)
	}
	ctx := geos.NewContext()
	buffered := toGeom(ctx, MultiPolygon{p}).BufferWithStyle(
		distance, g.quadSegments(), capStyle(end), joinStyle(join), g.mitreLimit())
	polys := fromGeom(buffered)
	if len(polys) == 0 {
		return Polygon{}, ErrEmptyGeometry
	}
	return polys[0], nil
}

func capStyle(e EndStyle) geos.BufCapStyle {
	switch e {
	case EndFlat:
		return geos.BufCapStyleFlat
	case EndSquare:
		return geos.BufCapStyleSquare
	default:
		return geos.BufCapStyleRound
	}
}

func joinStyle(j JoinStyle) geos.BufJoinStyle {
	switch j {
	case JoinMitre:
		return geos.BufJoinStyleMitre
	case JoinBevel:
		return geos.BufJoinStyleBevel
	default:
		return geos.BufJoinStyleRound
	}
}

func toGeom(ctx *geos.Context, mp MultiPolygon) *geos.Geom {
	polys := make([]*geos.Geom, 0, len(mp))
	for _, p := range mp {
		rings := make([][][]float64, 0, 1+len(p.Holes))
		rings = append(rings, p.Outer.Closed().Coords())
		for _, h := range p.Holes {
			rings = append(rings, h.Closed().Coords())
		}
		polys = append(polys, ctx.NewPolygon(rings))
	}
	if len(polys) == 1 {
		return polys[0]
	}
	return ctx.NewCollection(geos.TypeIDMultiPolygon, polys)
}

// fromGeom collects the polygons of g, skipping lower-dimensional parts.
func fromGeom(g *geos.Geom) MultiPolygon {
	if g == nil || g.IsEmpty() {
		return nil
	}
	switch g.TypeID() {
	case geos.TypeIDPolygon:
		return MultiPolygon{polygonFromGeom(g)}
	case geos.TypeIDMultiPolygon, geos.TypeIDGeometryCollection:
		var out MultiPolygon
		for i := 0; i < g.NumGeometries(); i++ {
			out = append(out, fromGeom(g.Geometry(i))...)
		}
		return out
	default:
		return nil
	}
}

func polygonFromGeom(g *geos.Geom) Polygon {
	p := Polygon{Outer: RingFromCoords(g.ExteriorRing().CoordSeq().ToCoords())}
	for i := 0; i < g.NumInteriorRings(); i++ {
		p.Holes = append(p.Holes, RingFromCoords(g.InteriorRing(i).CoordSeq().ToCoords()))
	}
	return p
}

func closeAll(mp MultiPolygon) MultiPolygon {
	out := make(MultiPolygon, len(mp))
	for i, p := range mp {
		out[i] = Polygon{Outer: p.Outer.Closed()}
		for _, h := range p.Holes {
			out[i].Holes = append(out[i].Holes, h.Closed())
		}
	}
	return out
}

// go-geos panics on GEOS exceptions (invalid rings and the like).
func recoverGEOS(op string, err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("geos %s: %v", op, r)
	}
}
