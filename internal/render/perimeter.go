package render

import (
	"fmt"
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/hexboundary/internal/boundary"
)

// GrowthRatio returns the mean ratio between boundary child counts of
// consecutive rows. Rows run from coarse to fine parents, so the ratio is
// how much the count grows per extra level of depth. Zero when fewer than
// two rows have children.
func GrowthRatio(rows []boundary.PerimeterRow) float64 {
	var ratios []float64
	for i := 1; i < len(rows); i++ {
		if rows[i].BoundaryChildren > 0 {
			ratios = append(ratios, float64(rows[i-1].BoundaryChildren)/float64(rows[i].BoundaryChildren))
		}
	}
	if len(ratios) == 0 {
		return 0
	}
	return stat.Mean(ratios, nil)
}

// PerimeterChart renders boundary child counts and merge timings per
// parent resolution as an HTML page.
func PerimeterChart(w io.Writer, title string, rows []boundary.PerimeterRow) error {
	if len(rows) == 0 {
		return fmt.Errorf("no perimeter rows to chart")
	}

	x := make([]string, len(rows))
	children := make([]opts.BarData, len(rows))
	vertices := make([]opts.BarData, len(rows))
	elapsed := make([]float64, len(rows))
	elapsedData := make([]opts.LineData, len(rows))
	for i, r := range rows {
		x[i] = "res " + strconv.Itoa(r.ParentRes)
		children[i] = opts.BarData{Value: r.BoundaryChildren}
		vertices[i] = opts.BarData{Value: r.PolygonVertices}
		elapsed[i] = float64(r.Elapsed.Microseconds()) / 1000
		elapsedData[i] = opts.LineData{Value: elapsed[i]}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "100%", Height: "480px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: fmt.Sprintf("mean growth ×%.2f per level", GrowthRatio(rows)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(x).
		AddSeries("boundary children", children,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"})).
		AddSeries("polygon vertices", vertices)

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "360px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Merge time (ms)",
			Subtitle: fmt.Sprintf("total %.2f ms", floats.Sum(elapsed)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	line.SetXAxis(x).AddSeries("elapsed", elapsedData)

	page := components.NewPage()
	page.PageTitle = title
	page.AddCharts(bar, line)
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render perimeter chart: %w", err)
	}
	return nil
}
