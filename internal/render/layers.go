package render

import (
	"fmt"
	"image/color"

	"github.com/paulmach/orb"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/hexboundary/internal/boundary"
	"github.com/banshee-data/hexboundary/internal/hexgrid"
	"github.com/banshee-data/hexboundary/internal/monitoring"
	"github.com/banshee-data/hexboundary/internal/planar"
)

// Layer is a named group of rings drawn in one colour.
type Layer struct {
	Name  string
	Rings []planar.Ring
	Color color.Color
	Width vg.Length
}

var palette = []color.Color{
	color.RGBA{R: 0x44, G: 0x44, B: 0x44, A: 0xff},
	color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff},
	color.RGBA{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff},
	color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff},
	color.RGBA{R: 0xff, G: 0x7f, B: 0x0e, A: 0xff},
	color.RGBA{R: 0x94, G: 0x67, B: 0xbd, A: 0xff},
}

// NewLayerPlot draws the layers in order, one legend entry per non-empty
// layer. Layers without a colour take one from a fixed palette.
func NewLayerPlot(title string, layers []Layer) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Longitude"
	p.Y.Label.Text = "Latitude"

	for i, l := range layers {
		c := l.Color
		if c == nil {
			c = palette[i%len(palette)]
		}
		w := l.Width
		if w == 0 {
			w = vg.Points(1)
		}
		for j, r := range l.Rings {
			if len(r) == 0 {
				continue
			}
			pts := make(plotter.XYs, 0, len(r)+1)
			for _, pt := range r.Closed() {
				pts = append(pts, plotter.XY{X: pt.X, Y: pt.Y})
			}
			line, err := plotter.NewLine(pts)
			if err != nil {
				return nil, fmt.Errorf("layer %q ring %d: %w", l.Name, j, err)
			}
			line.Color = c
			line.Width = w
			p.Add(line)
			if j == 0 {
				p.Legend.Add(l.Name, line)
			}
		}
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10
	return p, nil
}

// SaveLayers draws the layers and writes them to path. The extension
// selects the format (.png, .svg, .pdf, ...).
func SaveLayers(path, title string, layers []Layer) error {
	p, err := NewLayerPlot(title, layers)
	if err != nil {
		return err
	}
	if err := p.Save(8*vg.Inch, 8*vg.Inch, path); err != nil {
		return fmt.Errorf("save layer plot: %w", err)
	}
	monitoring.Logf("[render] wrote %s (%d layers)", path, len(layers))
	return nil
}

// CoverLayers builds the illustration layers for cell: its outline, the
// boundary children at intermediateRes, their merged outline, and the
// buffered cover with an automatic buffer.
func CoverLayers(a *boundary.Assembler, cell hexgrid.Cell, intermediateRes int) ([]Layer, error) {
	children, err := a.BoundaryChildrenCollection(cell, intermediateRes)
	if err != nil {
		return nil, err
	}
	childRings := make([]planar.Ring, 0, len(children.Features))
	for _, f := range children.Features {
		if poly, ok := f.Geometry.(orb.Polygon); ok && len(poly) > 0 {
			childRings = append(childRings, boundary.RingFromOrb(poly[0]))
		}
	}

	merged, err := a.MergedBoundary(cell, intermediateRes)
	if err != nil {
		return nil, err
	}
	cover, err := a.BufferedMergedBoundary(cell, intermediateRes, -1, false)
	if err != nil {
		return nil, err
	}

	return []Layer{
		{Name: "cell", Rings: []planar.Ring{a.CellBoundary(cell)}, Width: vg.Points(2)},
		{Name: "boundary children", Rings: childRings, Width: vg.Points(0.5)},
		{Name: "merged", Rings: []planar.Ring{merged.Ring}},
		{Name: fmt.Sprintf("cover (%.0f m)", cover.BufferMeters), Rings: []planar.Ring{cover.Ring}, Width: vg.Points(1.5)},
	}, nil
}
