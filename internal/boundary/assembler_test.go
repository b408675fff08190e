package boundary

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/paulmach/orb"
	orbplanar "github.com/paulmach/orb/planar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/banshee-data/hexboundary/internal/config"
	"github.com/banshee-data/hexboundary/internal/faces"
	"github.com/banshee-data/hexboundary/internal/hexgrid"
	"github.com/banshee-data/hexboundary/internal/monitoring"
	"github.com/banshee-data/hexboundary/internal/planar"
	"github.com/banshee-data/hexboundary/internal/timeutil"
)

const sfRes6 = "86283082fffffff"

var grid = hexgrid.H3{}

// fineCell returns the res-13 ancestor of the finest cell at a point in
// San Francisco.
func fineCell() hexgrid.Cell {
	leaf := hexgrid.FromLatLng(37.7752702151959, -122.418307270836, 15)
	return grid.ParentAt(leaf, 13)
}

func newTestAssembler(t *testing.T, opts ...Option) *Assembler {
	t.Helper()
	monitoring.SetLogger(t.Logf)
	t.Cleanup(func() { monitoring.SetLogger(nil) })
	return NewAssembler(grid, nil, config.DefaultAssemblyConfig(), opts...)
}

func TestCellBoundary(t *testing.T) {
	a := newTestAssembler(t)
	ring := a.CellBoundary(hexgrid.MustParseCell(sfRes6))

	require.Len(t, ring, 7)
	assert.True(t, ring.IsClosed())
	for _, p := range ring {
		assert.InDelta(t, -122.4, p.X, 0.2, "longitude")
		assert.InDelta(t, 37.77, p.Y, 0.2, "latitude")
	}
}

func TestMergedBoundaryIdentity(t *testing.T) {
	a := newTestAssembler(t)
	cell := hexgrid.MustParseCell(sfRes6)

	got, err := a.MergedBoundary(cell, 6)
	require.NoError(t, err)
	assert.Equal(t, MethodCell, got.Method)
	if diff := cmp.Diff(a.CellBoundary(cell), got.Ring); diff != "" {
		t.Errorf("identity merge differs from cell outline (-want +got):\n%s", diff)
	}
}

func TestMergedBoundaryRejectsCoarserTarget(t *testing.T) {
	a := newTestAssembler(t)
	_, err := a.MergedBoundary(hexgrid.MustParseCell(sfRes6), 5)
	assert.True(t, errors.Is(err, faces.ErrInvalidArgument))
}

func TestMergedBoundary(t *testing.T) {
	a := newTestAssembler(t)
	cell := hexgrid.MustParseCell(sfRes6)

	got, err := a.MergedBoundary(cell, 8)
	require.NoError(t, err)
	assert.Equal(t, MethodMerged, got.Method)
	assert.Equal(t, 24, got.BoundaryCells)
	assert.Equal(t, 8, got.IntermediateRes)
	assert.True(t, got.Ring.IsClosed())
	assert.Greater(t, len(got.Ring), 7)

	cellArea := a.CellBoundary(cell).Area()
	assert.InEpsilon(t, cellArea, got.Ring.Area(), 0.15)
}

func TestBufferedMergedBoundaryZeroBufferIsBasePolygon(t *testing.T) {
	a := newTestAssembler(t)
	cell := hexgrid.MustParseCell(sfRes6)
	children, err := faces.BoundaryChildren(grid, cell, 8, faces.AllLabels)
	require.NoError(t, err)

	union, _, err := a.unionChildren(children)
	require.NoError(t, err)
	hull, _, err := a.hullChildren(children)
	require.NoError(t, err)

	tests := []struct {
		name string
		hull bool
		want planar.Ring
	}{
		{"union", false, union.Outer},
		{"hull", true, hull.Outer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := a.BufferedMergedBoundary(cell, 8, 0, tt.hull)
			require.NoError(t, err)
			assert.Zero(t, got.BufferMeters)
			assert.Equal(t, 24, got.BoundaryCells)
			if diff := cmp.Diff(tt.want.Closed(), got.Ring); diff != "" {
				t.Errorf("unbuffered polygon mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBufferedMergedBoundaryContainsDescendants(t *testing.T) {
	a := newTestAssembler(t)
	cell := hexgrid.MustParseCell(sfRes6)

	for _, hull := range []bool{false, true} {
		got, err := a.BufferedMergedBoundary(cell, 8, -1, hull)
		require.NoError(t, err)
		assert.InDelta(t, grid.AverageEdgeLengthKm(8)*1000, got.BufferMeters, 1e-9)
		if hull {
			assert.Equal(t, MethodBufferedBoundaryHull, got.Method)
		} else {
			assert.Equal(t, MethodBufferedBoundary, got.Method)
		}

		cover := OrbRing(got.Ring)
		fine, err := faces.BoundaryChildren(grid, cell, 10, faces.AllLabels)
		require.NoError(t, err)
		for _, c := range fine {
			for _, v := range a.CellBoundary(c) {
				if !orbplanar.RingContains(cover, orb.Point{v.X, v.Y}) {
					t.Fatalf("hull=%v: vertex %v of %s lies outside the cover", hull, v, c)
				}
			}
		}
	}
}

func TestBufferedMergedBoundaryClampsResolution(t *testing.T) {
	a := newTestAssembler(t)

	low, err := a.BufferedMergedBoundary(hexgrid.MustParseCell(sfRes6), 3, 0, true)
	require.NoError(t, err)
	assert.Equal(t, 7, low.IntermediateRes)
	assert.Equal(t, 6, low.BoundaryCells)

	fine := fineCell()
	high, err := a.BufferedMergedBoundary(fine, 20, 50, false)
	require.NoError(t, err)
	assert.Equal(t, 15, high.IntermediateRes)
	assert.Zero(t, high.BufferMeters, "no buffer at the finest resolution")
	assert.Equal(t, 24, high.BoundaryCells)
}

func TestBufferedMergedBoundaryFinestCell(t *testing.T) {
	a := newTestAssembler(t)
	leaf := grid.ChildrenAt(fineCell(), 15)[3]

	got, err := a.BufferedMergedBoundary(leaf, 15, -1, false)
	require.NoError(t, err)
	if diff := cmp.Diff(a.CellBoundary(leaf), got.Ring); diff != "" {
		t.Errorf("finest cell cover should be its outline (-want +got):\n%s", diff)
	}
}

func TestBufferedCell(t *testing.T) {
	a := newTestAssembler(t)
	cell := hexgrid.MustParseCell(sfRes6)
	outline := a.CellBoundary(cell)

	auto, err := a.BufferedCell(cell, -1)
	require.NoError(t, err)
	assert.Equal(t, MethodBuffered, auto.Method)
	assert.Equal(t, 10, auto.IntermediateRes)
	assert.InDelta(t, grid.AverageEdgeLengthKm(10)*1000, auto.BufferMeters, 1e-9)
	assert.True(t, auto.Ring.IsClosed())
	assert.Greater(t, auto.Ring.Area(), outline.Area())

	wide, err := a.BufferedCell(cell, 2000)
	require.NoError(t, err)
	assert.Equal(t, 2000.0, wide.BufferMeters)
	assert.Greater(t, wide.Ring.Area(), auto.Ring.Area())

	for _, v := range outline {
		assert.True(t, orbplanar.RingContains(OrbRing(auto.Ring), orb.Point{v.X, v.Y}))
	}
}

func TestBufferedCellCapsEdgeResolution(t *testing.T) {
	a := newTestAssembler(t)
	got, err := a.BufferedCell(fineCell(), -1)
	require.NoError(t, err)
	assert.Equal(t, 15, got.IntermediateRes)
}

func TestMetersToDegrees(t *testing.T) {
	a := newTestAssembler(t)

	tests := []struct {
		name   string
		meters float64
		lat    float64
		want   float64
	}{
		{"equator", 111320, 0, 1},
		{"sixty north", 111320, 60, 1 / 0.75},
		{"sixty south", 111320, -60, 1 / 0.75},
		{"pole", 55660, 90, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, a.MetersToDegrees(tt.meters, tt.lat), 1e-9)
		})
	}
}

func TestCoverUsesConfig(t *testing.T) {
	cfg := config.DefaultAssemblyConfig()
	res, buf, hull := 8, 0.0, true
	cfg.IntermediateRes = &res
	cfg.BufferMeters = &buf
	cfg.UseConvexHull = &hull
	a := NewAssembler(grid, nil, cfg)

	got, err := a.Cover(hexgrid.MustParseCell(sfRes6))
	require.NoError(t, err)
	assert.Equal(t, 8, got.IntermediateRes)
	assert.Equal(t, MethodBufferedBoundaryHull, got.Method)
	assert.Zero(t, got.BufferMeters)
	assert.Same(t, cfg, a.Config())
}

func TestNewAssemblerDefaults(t *testing.T) {
	a := NewAssembler(grid, nil, nil, WithLogger(nil), WithClock(nil))
	require.NotNil(t, a.cfg)
	require.NotNil(t, a.log)
	require.NotNil(t, a.clock)
	assert.IsType(t, &planar.GEOS{}, a.geom)
}

func TestAssemblerLogsStructuredFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	a := newTestAssembler(t, WithLogger(zap.New(core)))

	_, err := a.MergedBoundary(hexgrid.MustParseCell(sfRes6), 7)
	require.NoError(t, err)

	entries := logs.FilterMessage("merged boundary").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "86283082fffffff", fields["cell"])
	assert.EqualValues(t, 6, fields["children"])
}

type failingGeometry struct{ planar.Geometry }

var errGeometry = errors.New("geometry unavailable")

func (failingGeometry) Union(a, b planar.MultiPolygon) (planar.MultiPolygon, error) {
	return nil, errGeometry
}

func (failingGeometry) Buffer(p planar.Polygon, d float64, j planar.JoinStyle, e planar.EndStyle) (planar.Polygon, error) {
	return planar.Polygon{}, errGeometry
}

func TestGeometryErrorsPropagate(t *testing.T) {
	a := NewAssembler(grid, failingGeometry{}, nil)
	cell := hexgrid.MustParseCell(sfRes6)

	_, err := a.MergedBoundary(cell, 7)
	assert.True(t, errors.Is(err, errGeometry))

	_, err = a.BufferedCell(cell, 10)
	assert.True(t, errors.Is(err, errGeometry))
}

func TestPerimeterStats(t *testing.T) {
	clock := timeutil.NewMockClock(time.Unix(0, 0))
	clock.SetStep(10 * time.Millisecond)
	a := newTestAssembler(t, WithClock(clock))

	rows, err := a.PerimeterStats(hexgrid.MustParseCell(sfRes6), 9)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []int{6, 7, 8}, []int{rows[0].ParentRes, rows[1].ParentRes, rows[2].ParentRes})
	assert.Equal(t, 78, rows[0].BoundaryChildren)
	assert.Equal(t, 24, rows[1].BoundaryChildren)
	assert.Equal(t, 6, rows[2].BoundaryChildren)
	for _, r := range rows {
		assert.Greater(t, r.PolygonVertices, 6)
		assert.Greater(t, r.Elapsed, time.Duration(0))
	}
}

func TestPerimeterStatsRejectsBadTarget(t *testing.T) {
	a := newTestAssembler(t)
	_, err := a.PerimeterStats(hexgrid.MustParseCell(sfRes6), 6)
	assert.True(t, errors.Is(err, faces.ErrInvalidArgument))
	_, err = a.PerimeterStats(hexgrid.MustParseCell(sfRes6), 16)
	assert.True(t, errors.Is(err, faces.ErrInvalidArgument))
}

func TestResultFeatureProperties(t *testing.T) {
	a := newTestAssembler(t)
	cell := hexgrid.MustParseCell(sfRes6)

	merged, err := a.MergedBoundary(cell, 7)
	require.NoError(t, err)
	f := merged.Feature(cell)
	assert.Equal(t, "86283082fffffff", f.Properties["h3_index"])
	assert.Equal(t, "merged", f.Properties["method"])
	assert.Equal(t, 7, f.Properties["child_resolution"])
	assert.Equal(t, 6, f.Properties["num_boundary_cells"])

	buffered, err := a.BufferedMergedBoundary(cell, 7, 30, false)
	require.NoError(t, err)
	f = buffered.Feature(cell)
	assert.Equal(t, "buffered_boundary", f.Properties["method"])
	assert.Equal(t, 7, f.Properties["intermediate_res"])
	assert.Equal(t, 30.0, f.Properties["buffer_meters"])

	poly, ok := f.Geometry.(orb.Polygon)
	require.True(t, ok)
	assert.Equal(t, poly[0][0], poly[0][len(poly[0])-1])
}

func TestCellFeatureRoundTrip(t *testing.T) {
	a := newTestAssembler(t)
	cell := hexgrid.MustParseCell(sfRes6)
	f := a.CellFeature(cell)

	poly := f.Geometry.(orb.Polygon)
	if diff := cmp.Diff(a.CellBoundary(cell), RingFromOrb(poly[0])); diff != "" {
		t.Errorf("orb round trip (-want +got):\n%s", diff)
	}
}

func TestBoundaryChildrenCollection(t *testing.T) {
	a := newTestAssembler(t)
	fc, err := a.BoundaryChildrenCollection(hexgrid.MustParseCell(sfRes6), 8)
	require.NoError(t, err)
	assert.Len(t, fc.Features, 24)

	_, err = a.BoundaryChildrenCollection(hexgrid.MustParseCell(sfRes6), 6)
	assert.Error(t, err)
}

func TestDemoLayers(t *testing.T) {
	a := newTestAssembler(t)
	layers, err := a.DemoLayers(hexgrid.MustParseCell(sfRes6), 8)
	require.NoError(t, err)

	assert.Len(t, layers.BoundaryChildren.Features, 24)
	assert.Equal(t, "buffered_boundary", layers.BufferedAccurate.Properties["method"])
	assert.Equal(t, "buffered_boundary_hull", layers.BufferedFast.Properties["method"])

	var sb strings.Builder
	require.NoError(t, layers.WriteJS(&sb))
	out := sb.String()
	for _, name := range []string{"cellBoundary", "boundaryChildren", "mergedBoundary", "bufferedAccurate", "bufferedFast"} {
		assert.Contains(t, out, "var "+name+" = {")
	}
	assert.Equal(t, 5, strings.Count(out, ";\n"))
}

func TestHullNotSmallerThanUnion(t *testing.T) {
	a := newTestAssembler(t)
	cell := hexgrid.MustParseCell(sfRes6)

	union, err := a.BufferedMergedBoundary(cell, 8, 0, false)
	require.NoError(t, err)
	hull, err := a.BufferedMergedBoundary(cell, 8, 0, true)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, hull.Ring.Area(), union.Ring.Area()*(1-1e-9))
	assert.False(t, math.IsNaN(hull.Ring.Area()))
}
