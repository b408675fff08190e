package faces

import (
	"errors"
	"fmt"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/hexboundary/internal/hexgrid"
)

func TestBoundaryChildrenRejectsBadTargets(t *testing.T) {
	parent := hexgrid.MustParseCell(res6Hexagon)

	for _, target := range []int{6, 5, 16} {
		_, err := BoundaryChildren(grid, parent, target, AllLabels)
		require.Error(t, err, "target %d", target)
		assert.True(t, errors.Is(err, ErrInvalidArgument))
	}
}

func TestBoundaryChildrenEmptyLabels(t *testing.T) {
	got, err := BoundaryChildren(grid, hexgrid.MustParseCell(baseHexagon), 3, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestBoundaryChildrenCounts(t *testing.T) {
	tests := []struct {
		name   string
		parent string
		offset int
		want   int
	}{
		{"hexagon +1", baseHexagon, 1, 6},
		{"hexagon +2", baseHexagon, 2, 24},
		{"hexagon +3", baseHexagon, 3, 78},
		{"hexagon +4", baseHexagon, 4, 240},
		{"pentagon +1", basePentagon, 1, 5},
		{"pentagon +2", basePentagon, 2, 20},
		{"pentagon +3", basePentagon, 3, 65},
		{"res 6 hexagon +1", res6Hexagon, 1, 6},
		{"res 6 hexagon +2", res6Hexagon, 2, 24},
		{"res 6 hexagon +3", res6Hexagon, 3, 78},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parent := hexgrid.MustParseCell(tt.parent)
			got, err := BoundaryChildren(grid, parent, grid.Resolution(parent)+tt.offset, AllLabels)
			require.NoError(t, err)
			assert.Len(t, got, tt.want)
		})
	}
}

func TestBoundaryChildrenOneLevelIsOuterRing(t *testing.T) {
	hex := hexgrid.MustParseCell(baseHexagon)
	got, err := BoundaryChildren(grid, hex, 1, AllLabels)
	require.NoError(t, err)
	digits := make([]int, len(got))
	for i, c := range got {
		digits[i] = grid.DigitAt(c, 1)
	}
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, digits)

	pent := hexgrid.MustParseCell(basePentagon)
	got, err = BoundaryChildren(grid, pent, 1, AllLabels)
	require.NoError(t, err)
	digits = digits[:0]
	for _, c := range got {
		digits = append(digits, grid.DigitAt(c, 1))
	}
	assert.Equal(t, []int{2, 3, 4, 5, 6}, digits)
}

func TestBoundaryChildrenLabelSubsets(t *testing.T) {
	base := hexgrid.MustParseCell(baseHexagon)
	tests := []struct {
		labels LabelSet
		want   []int
	}{
		{NewLabelSet(1), []int{2, 5, 14, 41, 122}},
		{NewLabelSet(3), []int{2, 5, 14, 41, 122}},
		{NewLabelSet(2, 5), []int{4, 10, 28, 82, 244}},
	}
	for _, tt := range tests {
		t.Run(tt.labels.String(), func(t *testing.T) {
			got := make([]int, 0, len(tt.want))
			for target := 1; target <= len(tt.want); target++ {
				cells, err := BoundaryChildren(grid, base, target, tt.labels)
				require.NoError(t, err)
				got = append(got, len(cells))
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

// Every cell returned traces back onto the requested faces, and every
// descendant that traces onto them is returned.
func TestBoundaryChildrenMatchesTrace(t *testing.T) {
	cases := []struct {
		parent string
		labels LabelSet
	}{
		{baseHexagon, AllLabels},
		{baseHexagon, NewLabelSet(4, 6)},
		{basePentagon, AllLabels},
		{basePentagon, NewLabelSet(2)},
		{res6Hexagon, NewLabelSet(1, 5)},
	}
	for _, tc := range cases {
		t.Run(tc.parent+tc.labels.String(), func(t *testing.T) {
			parent := hexgrid.MustParseCell(tc.parent)
			res := grid.Resolution(parent)
			target := res + 3

			got, err := BoundaryChildren(grid, parent, target, tc.labels)
			require.NoError(t, err)

			var want []hexgrid.Cell
			for _, c := range grid.ChildrenAt(parent, target) {
				traced, err := TraceToAncestor(grid, c, AllLabels, res)
				require.NoError(t, err)
				if !traced.Intersect(tc.labels).Empty() {
					want = append(want, c)
				}
			}

			if diff := cmp.Diff(sortedCells(want), sortedCells(got)); diff != "" {
				t.Errorf("boundary set mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBoundaryChildrenMatchesNeighbourGeometry(t *testing.T) {
	for _, parentID := range []string{baseHexagon, res6Hexagon, basePentagon, res1Pentagon} {
		parent := hexgrid.MustParseCell(parentID)
		res := grid.Resolution(parent)
		for offset := 1; offset <= 4; offset++ {
			target := res + offset
			t.Run(fmt.Sprintf("%s+%d", parentID, offset), func(t *testing.T) {
				got, err := BoundaryChildren(grid, parent, target, AllLabels)
				require.NoError(t, err)

				var want []hexgrid.Cell
				for _, c := range grid.ChildrenAt(parent, target) {
					edge := onParentEdge(c, res)
					if edge {
						want = append(want, c)
					}
					traced, err := TraceToAncestor(grid, c, AllLabels, res)
					require.NoError(t, err)
					assert.Equal(t, edge, !traced.Empty(), "trace of %s", c)
				}

				if diff := cmp.Diff(sortedCells(want), sortedCells(got)); diff != "" {
					t.Errorf("boundary set mismatch (-want +got):\n%s", diff)
				}
			})
		}
	}
}

func TestBoundaryChildrenOfPentagonAtTwoLevels(t *testing.T) {
	got, err := BoundaryChildren(grid, hexgrid.MustParseCell(basePentagon), 2, AllLabels)
	require.NoError(t, err)

	assert.Contains(t, got, hexgrid.MustParseCell("820917fffffffff"))
	assert.NotContains(t, got, hexgrid.MustParseCell("82090ffffffffff"))
}

func TestBoundaryChildrenPrunesInterior(t *testing.T) {
	tests := []struct {
		parent string
		target int
		calls  int
	}{
		{baseHexagon, 1, 1},
		{baseHexagon, 2, 7},
		{baseHexagon, 3, 31},
		{baseHexagon, 4, 109},
		{baseHexagon, 5, 349},
		{basePentagon, 4, 91},
		{basePentagon, 5, 291},
	}
	for _, tt := range tests {
		g := &countingGrid{}
		_, err := BoundaryChildren(g, hexgrid.MustParseCell(tt.parent), tt.target, AllLabels)
		require.NoError(t, err)
		assert.Equal(t, tt.calls, g.childrenCalls, "%s to res %d", tt.parent, tt.target)
	}
}

func TestBoundaryChildrenGrowsLikePerimeter(t *testing.T) {
	base := hexgrid.MustParseCell(baseHexagon)
	prev := 0
	for target := 1; target <= 6; target++ {
		cells, err := BoundaryChildren(grid, base, target, AllLabels)
		require.NoError(t, err)
		if prev > 0 {
			ratio := float64(len(cells)) / float64(prev)
			assert.Less(t, ratio, 4.5, "res %d", target)
		}
		total := grid.ChildCount(base, target)
		assert.Less(t, len(cells), total)
		prev = len(cells)
	}
}

func sortedCells(in []hexgrid.Cell) []hexgrid.Cell {
	out := append([]hexgrid.Cell(nil), in...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
