package boundary

import (
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/banshee-data/hexboundary/internal/config"
	"github.com/banshee-data/hexboundary/internal/faces"
	"github.com/banshee-data/hexboundary/internal/hexgrid"
	"github.com/banshee-data/hexboundary/internal/planar"
	"github.com/banshee-data/hexboundary/internal/timeutil"
)

// Grid is the grid-index capability the assembler needs on top of what the
// face tracer uses.
type Grid interface {
	faces.Grid
	ChildCount(c hexgrid.Cell, res int) int
	RawBoundary(c hexgrid.Cell) []hexgrid.LatLng
	AverageEdgeLengthKm(res int) float64
}

// Method names how a polygon was produced. The values are written to the
// "method" property of GeoJSON output.
type Method string

const (
	MethodCell                 Method = "cell"
	MethodMerged               Method = "merged"
	MethodBuffered             Method = "buffered"
	MethodBufferedBoundary     Method = "buffered_boundary"
	MethodBufferedBoundaryHull Method = "buffered_boundary_hull"
)

// Result is a polygon ring plus the parameters that produced it.
type Result struct {
	Ring   planar.Ring
	Method Method
	// BufferMeters is the buffer actually applied (after automatic
	// derivation); 0 when unbuffered.
	BufferMeters float64
	// IntermediateRes is the resolution the boundary children were taken
	// at, after clamping. For BufferedCell it is the resolution whose edge
	// length sizes an automatic buffer (cell resolution plus
	// auto_buffer_res_offset, capped at 15).
	IntermediateRes int
	// BoundaryCells is the number of boundary children merged.
	BoundaryCells int
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithLogger attaches a structured logger for per-call debug output.
func WithLogger(l *zap.Logger) Option {
	return func(a *Assembler) {
		if l != nil {
			a.log = l
		}
	}
}

// WithClock replaces the clock used to time operations.
func WithClock(c timeutil.Clock) Option {
	return func(a *Assembler) {
		if c != nil {
			a.clock = c
		}
	}
}

// Assembler builds boundary polygons. It holds no per-call state and is
// safe for concurrent use when its Grid and Geometry are.
type Assembler struct {
	grid  Grid
	geom  planar.Geometry
	cfg   *config.AssemblyConfig
	log   *zap.Logger
	clock timeutil.Clock
}

// NewAssembler returns an Assembler. A nil geom uses GEOS with the
// configured circle resolution; a nil cfg uses built-in defaults.
func NewAssembler(grid Grid, geom planar.Geometry, cfg *config.AssemblyConfig, opts ...Option) *Assembler {
	if cfg == nil {
		cfg = config.EmptyAssemblyConfig()
	}
	if geom == nil {
		geom = planar.NewGEOS(cfg.GetCirclePoints())
	}
	a := &Assembler{
		grid:  grid,
		geom:  geom,
		cfg:   cfg,
		log:   zap.NewNop(),
		clock: timeutil.RealClock{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Config returns the assembly configuration in use.
func (a *Assembler) Config() *config.AssemblyConfig {
	return a.cfg
}

// MetersToDegrees converts a distance to an approximate degree distance at
// latitude lat (degrees), averaging the latitude and longitude scale.
func (a *Assembler) MetersToDegrees(meters, lat float64) float64 {
	mpd := a.cfg.GetMetersPerDegree()
	lon := mpd * math.Abs(math.Cos(lat*math.Pi/180))
	return meters / ((mpd + lon) / 2)
}

func (a *Assembler) autoBufferMeters(res int) float64 {
	return a.grid.AverageEdgeLengthKm(res) * 1000
}

func (a *Assembler) since(start time.Time) time.Duration {
	return a.clock.Since(start)
}
