// Package render draws covers and perimeter statistics for inspection.
//
// Layer plots are written with gonum/plot (the output format follows the
// file extension); perimeter statistics are rendered as an HTML page of
// ECharts charts.
package render
