// Command hexboundary computes face traces, boundary children and covers
// for H3 cells.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"

	"github.com/banshee-data/hexboundary"
	"github.com/banshee-data/hexboundary/internal/boundary"
	"github.com/banshee-data/hexboundary/internal/config"
	"github.com/banshee-data/hexboundary/internal/faces"
	"github.com/banshee-data/hexboundary/internal/hexgrid"
	"github.com/banshee-data/hexboundary/internal/monitoring"
	"github.com/banshee-data/hexboundary/internal/render"
	"github.com/banshee-data/hexboundary/internal/security"
	"github.com/banshee-data/hexboundary/internal/units"
)

const usage = `usage: hexboundary <command> [flags]

commands:
  trace     faces of an ancestor touched by a cell's faces
  ancestor  coarsest ancestor a cell's faces still touch
  children  boundary descendants of a cell
  cover     containment polygon for a cell (GeoJSON)
  demo      illustration layers for a cell
  stats     perimeter growth per parent resolution
  store     compute and save covers for cells
  lookup    cells whose stored covers contain a point
  version   print the build version
`

var errUsage = errors.New("bad usage")

func main() {
	monitoring.UseStdLog()
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		log.Fatalf("hexboundary: %v", err)
	}
}

// common holds flags shared by every command.
type common struct {
	configPath string
	verbose    bool
}

func (c *common) register(fs *flag.FlagSet) {
	fs.StringVar(&c.configPath, "config", "", "path to assembly config JSON (defaults built in)")
	fs.BoolVar(&c.verbose, "v", false, "verbose logging")
}

func (c *common) toolkit() (*hexboundary.Toolkit, error) {
	var cfg *config.AssemblyConfig
	if c.configPath != "" {
		var err error
		if cfg, err = config.LoadAssemblyConfig(c.configPath); err != nil {
			return nil, err
		}
	}
	var logger *zap.Logger
	if c.verbose {
		var err error
		if logger, err = monitoring.NewLogger(true); err != nil {
			return nil, err
		}
		monitoring.UseZap(logger)
	}
	return hexboundary.New(cfg, logger)
}

func run(args []string, stdout io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, args := args[0], args[1:]
	switch cmd {
	case "trace":
		return runTrace(args, stdout)
	case "ancestor":
		return runAncestor(args, stdout)
	case "children":
		return runChildren(args, stdout)
	case "cover":
		return runCover(args, stdout)
	case "demo":
		return runDemo(args, stdout)
	case "stats":
		return runStats(args, stdout)
	case "store":
		return runStore(args, stdout)
	case "lookup":
		return runLookup(args, stdout)
	case "version":
		tk, err := hexboundary.New(nil, nil)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(stdout, tk.Version())
		return err
	case "help", "-h", "--help":
		_, err := fmt.Fprint(stdout, usage)
		return err
	}
	return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
}

// parseLabels reads a comma-separated list such as "1,2,6". The empty
// string and "all" select every face.
func parseLabels(s string) (hexboundary.LabelSet, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "all" {
		return hexboundary.AllLabels, nil
	}
	var ints []int
	for _, part := range strings.Split(s, ",") {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return 0, fmt.Errorf("bad label %q: %w", part, err)
		}
		ints = append(ints, v)
	}
	return faces.LabelSetFromInts(ints)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runTrace(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("trace", flag.ContinueOnError)
	var c common
	c.register(fs)
	cell := fs.String("cell", "", "cell index")
	labels := fs.String("labels", "all", "comma-separated face labels")
	res := fs.Int("res", -1, "ancestor resolution (default: parent)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	set, err := parseLabels(*labels)
	if err != nil {
		return err
	}
	tk, err := c.toolkit()
	if err != nil {
		return err
	}
	var out hexboundary.LabelSet
	if *res < 0 {
		out, err = tk.TraceToParent(*cell, set)
	} else {
		out, err = tk.TraceToAncestor(*cell, set, *res)
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, out)
	return err
}

func runAncestor(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("ancestor", flag.ContinueOnError)
	var c common
	c.register(fs)
	cell := fs.String("cell", "", "cell index")
	labels := fs.String("labels", "all", "comma-separated face labels")
	if err := fs.Parse(args); err != nil {
		return err
	}
	set, err := parseLabels(*labels)
	if err != nil {
		return err
	}
	tk, err := c.toolkit()
	if err != nil {
		return err
	}
	out, err := tk.CoarsestAncestorOn(*cell, set)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, out)
	return err
}

func runChildren(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("children", flag.ContinueOnError)
	var c common
	c.register(fs)
	cell := fs.String("cell", "", "parent cell index")
	labels := fs.String("labels", "all", "comma-separated face labels")
	res := fs.Int("res", -1, "child resolution")
	geo := fs.Bool("geojson", false, "print a GeoJSON FeatureCollection instead of indexes")
	if err := fs.Parse(args); err != nil {
		return err
	}
	set, err := parseLabels(*labels)
	if err != nil {
		return err
	}
	tk, err := c.toolkit()
	if err != nil {
		return err
	}
	children, err := tk.BoundaryChildren(*cell, *res, set)
	if err != nil {
		return err
	}
	if *geo {
		a := boundary.NewAssembler(hexgrid.H3{}, nil, tk.Config())
		fc := geojson.NewFeatureCollection()
		for _, child := range children {
			fc.Append(a.CellFeature(hexgrid.MustParseCell(child)))
		}
		return writeJSON(stdout, fc)
	}
	for _, child := range children {
		if _, err := fmt.Fprintln(stdout, child); err != nil {
			return err
		}
	}
	return nil
}

func runCover(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("cover", flag.ContinueOnError)
	var c common
	c.register(fs)
	cell := fs.String("cell", "", "cell index")
	res := fs.Int("res", 0, "intermediate resolution (0: from config)")
	buffer := fs.Float64("buffer", -1, "buffer distance (negative: automatic)")
	bufferUnits := fs.String("units", units.M, "buffer distance units ("+units.GetValidUnitsString()+")")
	hull := fs.Bool("hull", false, "combine boundary children by convex hull")
	single := fs.Bool("single", false, "buffer the cell outline only")
	if err := fs.Parse(args); err != nil {
		return err
	}
	meters, err := units.ToMeters(*buffer, *bufferUnits)
	if err != nil {
		return err
	}
	*buffer = meters
	tk, err := c.toolkit()
	if err != nil {
		return err
	}
	parsed, err := hexgrid.ParseCell(*cell)
	if err != nil {
		return err
	}

	var r hexboundary.Result
	switch {
	case *single:
		r, err = tk.BufferedCell(*cell, *buffer)
	case *res == 0 && *buffer < 0 && !*hull:
		r, err = tk.Cover(*cell)
	default:
		ir := *res
		if ir == 0 {
			ir = tk.Config().GetIntermediateRes()
		}
		r, err = tk.BufferedMergedBoundary(*cell, ir, *buffer, *hull || tk.Config().GetUseConvexHull())
	}
	if err != nil {
		return err
	}
	return writeJSON(stdout, r.Feature(parsed))
}

func runDemo(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("demo", flag.ContinueOnError)
	var c common
	c.register(fs)
	cell := fs.String("cell", "", "cell index")
	res := fs.Int("res", 0, "intermediate resolution (0: from config)")
	plotPath := fs.String("plot", "", "also draw the layers to this image file (\"auto\": demo_<cell>.png)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *plotPath == "auto" {
		*plotPath = security.SanitizeFilename("demo_"+*cell) + ".png"
	}
	if *plotPath != "" {
		if err := security.ValidateOutputPath(*plotPath); err != nil {
			return err
		}
	}
	tk, err := c.toolkit()
	if err != nil {
		return err
	}
	ir := *res
	if ir == 0 {
		ir = tk.Config().GetIntermediateRes()
	}
	layers, err := tk.DemoLayers(*cell, ir)
	if err != nil {
		return err
	}
	if err := layers.WriteJS(stdout); err != nil {
		return err
	}
	if *plotPath == "" {
		return nil
	}
	parsed, err := hexgrid.ParseCell(*cell)
	if err != nil {
		return err
	}
	a := boundary.NewAssembler(hexgrid.H3{}, nil, tk.Config())
	plotLayers, err := render.CoverLayers(a, parsed, ir)
	if err != nil {
		return err
	}
	return render.SaveLayers(*plotPath, parsed.String(), plotLayers)
}

func runStats(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("stats", flag.ContinueOnError)
	var c common
	c.register(fs)
	cell := fs.String("cell", "", "starting cell index")
	res := fs.Int("res", 10, "boundary child resolution")
	htmlPath := fs.String("html", "", "also write an HTML chart to this file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *htmlPath != "" {
		if err := security.ValidateOutputPath(*htmlPath); err != nil {
			return err
		}
	}
	tk, err := c.toolkit()
	if err != nil {
		return err
	}
	rows, err := tk.PerimeterStats(*cell, *res)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%-10s %-18s %-16s %s\n", "parent_res", "boundary_children", "polygon_vertices", "elapsed")
	for _, r := range rows {
		fmt.Fprintf(stdout, "%-10d %-18d %-16d %s\n", r.ParentRes, r.BoundaryChildren, r.PolygonVertices, r.Elapsed)
	}
	if *htmlPath == "" {
		return nil
	}
	f, err := os.Create(*htmlPath)
	if err != nil {
		return err
	}
	defer f.Close()
	return render.PerimeterChart(f, "Perimeter growth from "+*cell, rows)
}

func runStore(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("store", flag.ContinueOnError)
	var c common
	c.register(fs)
	dbPath := fs.String("db", "covers.db", "path to cover database")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("%w: store needs at least one cell", errUsage)
	}
	tk, err := c.toolkit()
	if err != nil {
		return err
	}
	s, err := hexboundary.OpenStore(*dbPath)
	if err != nil {
		return err
	}
	defer s.Close()

	covers, err := tk.StoreCover(context.Background(), s, fs.Args()...)
	for _, cv := range covers {
		fmt.Fprintf(stdout, "%s %s res=%d buffer=%.1fm\n", cv.ID, cv.Cell, cv.IntermediateRes, cv.BufferMeters)
	}
	return err
}

func runLookup(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("lookup", flag.ContinueOnError)
	dbPath := fs.String("db", "covers.db", "path to cover database")
	lng := fs.Float64("lng", 0, "longitude in degrees")
	lat := fs.Float64("lat", 0, "latitude in degrees")
	if err := fs.Parse(args); err != nil {
		return err
	}
	s, err := hexboundary.OpenStore(*dbPath)
	if err != nil {
		return err
	}
	defer s.Close()

	idx, err := hexboundary.LoadIndex(s)
	if err != nil {
		return err
	}
	for _, cell := range hexboundary.Lookup(idx, *lng, *lat) {
		if _, err := fmt.Fprintln(stdout, cell); err != nil {
			return err
		}
	}
	return nil
}
