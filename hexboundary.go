// Package hexboundary builds containment polygons for H3 cells.
//
// A Toolkit works on string-encoded cells. It traces which faces of an
// ancestor a cell touches, finds the coarsest ancestor a cell still
// touches, lists the descendants that line a cell's perimeter, and
// assembles the polygons that enclose every descendant of a cell.
package hexboundary

import (
	"context"
	"fmt"
	"runtime"

	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/banshee-data/hexboundary/internal/boundary"
	"github.com/banshee-data/hexboundary/internal/config"
	"github.com/banshee-data/hexboundary/internal/coverindex"
	"github.com/banshee-data/hexboundary/internal/coverstore"
	"github.com/banshee-data/hexboundary/internal/faces"
	"github.com/banshee-data/hexboundary/internal/hexgrid"
	"github.com/banshee-data/hexboundary/internal/planar"
	"github.com/banshee-data/hexboundary/internal/version"
)

type (
	// Label names one of the six outer faces of a hexagon (1..6).
	Label = faces.Label
	// LabelSet is a set of face labels.
	LabelSet = faces.LabelSet
	// Config tunes polygon assembly.
	Config = config.AssemblyConfig
	// Result is an assembled polygon with the parameters used to build it.
	Result = boundary.Result
	// Method names how a Result was built.
	Method = boundary.Method
	// Point is a (longitude, latitude) pair in degrees.
	Point = planar.Point
	// Ring is a closed sequence of points.
	Ring = planar.Ring
	// PerimeterRow is one row of PerimeterStats output.
	PerimeterRow = boundary.PerimeterRow
	// Cover is a stored polygon.
	Cover = coverstore.Cover
	// Store persists covers in SQLite.
	Store = coverstore.Store
	// Index answers point-in-cover queries over loaded covers.
	Index = coverindex.Index
	// DemoLayers holds the illustration layers for one cell.
	DemoLayers = boundary.DemoLayers
)

// AllLabels is the set of all six outer faces.
const AllLabels = faces.AllLabels

var (
	// ErrInvalidArgument is wrapped by every resolution-ordering error.
	ErrInvalidArgument = faces.ErrInvalidArgument
	// ErrInvalidCell is wrapped when a cell string does not parse.
	ErrInvalidCell = hexgrid.ErrInvalidCell
	// ErrNotFound is returned by Store lookups that match nothing.
	ErrNotFound = coverstore.ErrNotFound
)

// NewLabelSet returns the set of the given labels.
func NewLabelSet(labels ...Label) LabelSet {
	return faces.NewLabelSet(labels...)
}

// Toolkit runs boundary operations on string-encoded cells.
type Toolkit struct {
	grid hexgrid.H3
	asm  *boundary.Assembler
}

// New returns a Toolkit using cfg; nil uses the built-in defaults. A nil
// logger is replaced by a no-op logger.
func New(cfg *Config, logger *zap.Logger) (*Toolkit, error) {
	if cfg == nil {
		cfg = config.DefaultAssemblyConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	grid := hexgrid.H3{}
	return &Toolkit{
		grid: grid,
		asm:  boundary.NewAssembler(grid, nil, cfg, boundary.WithLogger(logger)),
	}, nil
}

// LoadConfig reads an assembly config from a JSON file.
func LoadConfig(path string) (*Config, error) {
	return config.LoadAssemblyConfig(path)
}

// Version reports the build version string.
func (t *Toolkit) Version() string {
	return version.String()
}

// Config returns the config the toolkit was built with.
func (t *Toolkit) Config() *Config {
	return t.asm.Config()
}

// TraceToAncestor returns the faces of cell's ancestor at targetRes that
// the given faces of cell lie on.
func (t *Toolkit) TraceToAncestor(cell string, labels LabelSet, targetRes int) (LabelSet, error) {
	c, err := hexgrid.ParseCell(cell)
	if err != nil {
		return 0, err
	}
	return faces.TraceToAncestor(t.grid, c, labels, targetRes)
}

// TraceToParent is TraceToAncestor one resolution up.
func (t *Toolkit) TraceToParent(cell string, labels LabelSet) (LabelSet, error) {
	c, err := hexgrid.ParseCell(cell)
	if err != nil {
		return 0, err
	}
	return faces.TraceToParent(t.grid, c, labels)
}

// CoarsestAncestorOn returns the coarsest ancestor of cell whose boundary
// the given faces of cell still lie on.
func (t *Toolkit) CoarsestAncestorOn(cell string, labels LabelSet) (string, error) {
	c, err := hexgrid.ParseCell(cell)
	if err != nil {
		return "", err
	}
	return faces.CoarsestAncestorOn(t.grid, c, labels).String(), nil
}

// BoundaryChildren returns the descendants of parent at targetRes that lie
// on the given faces of parent, in depth-first order.
func (t *Toolkit) BoundaryChildren(parent string, targetRes int, labels LabelSet) ([]string, error) {
	c, err := hexgrid.ParseCell(parent)
	if err != nil {
		return nil, err
	}
	children, err := faces.BoundaryChildren(t.grid, c, targetRes, labels)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(children))
	for i, child := range children {
		out[i] = child.String()
	}
	return out, nil
}

// CellBoundary returns the closed outline of cell.
func (t *Toolkit) CellBoundary(cell string) (Ring, error) {
	c, err := hexgrid.ParseCell(cell)
	if err != nil {
		return nil, err
	}
	return t.asm.CellBoundary(c), nil
}

// MergedBoundary returns the outline of the union of parent's boundary
// children at targetRes.
func (t *Toolkit) MergedBoundary(parent string, targetRes int) (Result, error) {
	c, err := hexgrid.ParseCell(parent)
	if err != nil {
		return Result{}, err
	}
	return t.asm.MergedBoundary(c, targetRes)
}

// BufferedCell returns cell's outline grown by bufferMeters; a negative
// buffer is derived from the cell resolution.
func (t *Toolkit) BufferedCell(cell string, bufferMeters float64) (Result, error) {
	c, err := hexgrid.ParseCell(cell)
	if err != nil {
		return Result{}, err
	}
	return t.asm.BufferedCell(c, bufferMeters)
}

// BufferedMergedBoundary returns a polygon containing every descendant of
// cell, built from its boundary children at intermediateRes.
func (t *Toolkit) BufferedMergedBoundary(cell string, intermediateRes int, bufferMeters float64, useConvexHull bool) (Result, error) {
	c, err := hexgrid.ParseCell(cell)
	if err != nil {
		return Result{}, err
	}
	return t.asm.BufferedMergedBoundary(c, intermediateRes, bufferMeters, useConvexHull)
}

// Cover is BufferedMergedBoundary with the configured parameters.
func (t *Toolkit) Cover(cell string) (Result, error) {
	c, err := hexgrid.ParseCell(cell)
	if err != nil {
		return Result{}, err
	}
	return t.asm.Cover(c)
}

// CoverFeature returns the configured cover of cell as a GeoJSON feature.
func (t *Toolkit) CoverFeature(cell string) (*geojson.Feature, error) {
	c, err := hexgrid.ParseCell(cell)
	if err != nil {
		return nil, err
	}
	r, err := t.asm.Cover(c)
	if err != nil {
		return nil, err
	}
	return r.Feature(c), nil
}

// DemoLayers returns the illustration layers for cell.
func (t *Toolkit) DemoLayers(cell string, intermediateRes int) (*DemoLayers, error) {
	c, err := hexgrid.ParseCell(cell)
	if err != nil {
		return nil, err
	}
	return t.asm.DemoLayers(c, intermediateRes)
}

// PerimeterStats reports boundary child counts and merge cost per parent
// resolution from cell down to targetRes.
func (t *Toolkit) PerimeterStats(cell string, targetRes int) ([]PerimeterRow, error) {
	c, err := hexgrid.ParseCell(cell)
	if err != nil {
		return nil, err
	}
	return t.asm.PerimeterStats(c, targetRes)
}

// OpenStore opens (or creates) the cover database at path.
func OpenStore(path string) (*Store, error) {
	return coverstore.Open(path)
}

// NewIndex returns an empty cover index.
func NewIndex() *Index {
	return coverindex.New()
}

// LoadIndex builds an index from every cover in s.
func LoadIndex(s *Store) (*Index, error) {
	return coverindex.Load(s)
}

// StoreCover computes the configured cover of each cell concurrently and,
// once all succeed, saves them in one transaction in argument order.
func (t *Toolkit) StoreCover(ctx context.Context, s *Store, cells ...string) ([]*Cover, error) {
	parsed := make([]hexgrid.Cell, len(cells))
	for i, cell := range cells {
		c, err := hexgrid.ParseCell(cell)
		if err != nil {
			return nil, err
		}
		parsed[i] = c
	}

	covers := make([]*Cover, len(parsed))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, c := range parsed {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r, err := t.asm.Cover(c)
			if err != nil {
				return fmt.Errorf("cover %s: %w", c, err)
			}
			covers[i] = coverstore.NewCover(c, r)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := s.PutAll(ctx, covers); err != nil {
		return nil, err
	}
	return covers, nil
}

// Lookup returns the cells whose stored covers contain the point.
func Lookup(idx *Index, lng, lat float64) []string {
	cells := idx.Candidates(lng, lat)
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = c.String()
	}
	return out
}
