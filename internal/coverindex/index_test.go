package coverindex

import (
	"fmt"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"github.com/banshee-data/hexboundary/internal/boundary"
	"github.com/banshee-data/hexboundary/internal/config"
	"github.com/banshee-data/hexboundary/internal/coverstore"
	"github.com/banshee-data/hexboundary/internal/hexgrid"
	"github.com/banshee-data/hexboundary/internal/planar"
	"github.com/banshee-data/hexboundary/internal/testutil"
)

var (
	res6 = hexgrid.MustParseCell("86283082fffffff")
	res3 = hexgrid.MustParseCell("832830fffffffff")
	base = hexgrid.MustParseCell("8001fffffffffff")
	grid = hexgrid.H3{}
)

func square(id string, cell hexgrid.Cell, x, y, side float64) *coverstore.Cover {
	return &coverstore.Cover{ID: id, Cell: cell, Ring: testutil.Square(x, y, side)}
}

func TestCandidatesSquares(t *testing.T) {
	idx := New()
	idx.Add(square("a", res6, 0, 0, 2))
	idx.Add(square("b", res3, 1, 1, 2))
	idx.Add(square("c", base, 10, 10, 1))

	tests := []struct {
		name     string
		lng, lat float64
		want     []hexgrid.Cell
	}{
		{"only a", 0.5, 0.5, []hexgrid.Cell{res6}},
		{"overlap finest first", 1.5, 1.5, []hexgrid.Cell{res6, res3}},
		{"only b", 2.5, 2.5, []hexgrid.Cell{res3}},
		{"only c", 10.5, 10.5, []hexgrid.Cell{base}},
		{"nowhere", 5, 5, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := idx.Candidates(tt.lng, tt.lat)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Candidates(%v, %v) (-want +got):\n%s", tt.lng, tt.lat, diff)
			}
		})
	}
}

func TestBoundingBoxHitOutsideRing(t *testing.T) {
	idx := New()
	// Triangle whose bounding box is the unit square.
	idx.Add(&coverstore.Cover{ID: "tri", Cell: res6, Ring: planar.Ring{
		{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}, {X: 0, Y: 0},
	}})

	if got := idx.Candidates(0.9, 0.9); len(got) != 0 {
		t.Errorf("point outside triangle matched %v", got)
	}
	if got := idx.Candidates(0.2, 0.2); len(got) != 1 {
		t.Errorf("point inside triangle matched %v", got)
	}
}

func TestDuplicateCellCollapses(t *testing.T) {
	idx := New()
	idx.Add(square("a1", res6, 0, 0, 1))
	idx.Add(square("a2", res6, 0, 0, 2))

	if got := idx.Covering(0.5, 0.5); len(got) != 2 {
		t.Errorf("Covering returned %d covers, want 2", len(got))
	}
	if diff := cmp.Diff([]hexgrid.Cell{res6}, idx.Candidates(0.5, 0.5)); diff != "" {
		t.Errorf("Candidates (-want +got):\n%s", diff)
	}
}

func TestAddReplacesAndRemove(t *testing.T) {
	idx := New()
	idx.Add(square("a", res6, 0, 0, 1))
	idx.Add(square("a", res6, 5, 5, 1))

	if idx.Len() != 1 {
		t.Fatalf("Len = %d, want 1", idx.Len())
	}
	if got := idx.Candidates(0.5, 0.5); len(got) != 0 {
		t.Errorf("old ring still indexed: %v", got)
	}
	if got := idx.Candidates(5.5, 5.5); len(got) != 1 {
		t.Errorf("new ring not indexed: %v", got)
	}

	if !idx.Remove("a") {
		t.Error("Remove returned false for present cover")
	}
	if idx.Remove("a") {
		t.Error("Remove returned true for absent cover")
	}
	if idx.Len() != 0 || len(idx.Candidates(5.5, 5.5)) != 0 {
		t.Error("cover still indexed after Remove")
	}
}

func TestAddIgnoresUnusableCovers(t *testing.T) {
	idx := New()
	idx.Add(&coverstore.Cover{Cell: res6, Ring: testutil.Square(0, 0, 1)})
	idx.Add(&coverstore.Cover{ID: "short", Cell: res6, Ring: planar.Ring{{X: 0, Y: 0}}})
	if idx.Len() != 0 {
		t.Errorf("Len = %d, want 0", idx.Len())
	}
}

func centroid(r planar.Ring) (float64, float64) {
	var x, y float64
	open := r[:len(r)-1]
	for _, p := range open {
		x += p.X
		y += p.Y
	}
	n := float64(len(open))
	return x / n, y / n
}

func TestLoadAssembledCovers(t *testing.T) {
	s, err := coverstore.Open(testutil.TempDBPath(t))
	testutil.AssertNoError(t, err)
	defer s.Close()

	a := boundary.NewAssembler(grid, nil, config.DefaultAssemblyConfig())
	r, err := a.BufferedMergedBoundary(res6, 9, -1, false)
	testutil.AssertNoError(t, err)
	testutil.AssertNoError(t, s.Put(coverstore.NewCover(res6, r)))

	idx, err := Load(s)
	testutil.AssertNoError(t, err)
	if idx.Len() != 1 {
		t.Fatalf("Len = %d, want 1", idx.Len())
	}

	// Child centres fall inside the cover.
	for _, child := range grid.ChildrenAt(res6, 7) {
		lng, lat := centroid(a.CellBoundary(child))
		if got := idx.Candidates(lng, lat); len(got) != 1 || got[0] != res6 {
			t.Errorf("child %s centre (%v, %v): candidates %v", child, lng, lat, got)
		}
	}

	lng, lat := centroid(a.CellBoundary(res6))
	if got := idx.Candidates(lng+5, lat); len(got) != 0 {
		t.Errorf("distant point matched %v", got)
	}
}

func TestConcurrentAddAndQuery(t *testing.T) {
	defer goleak.VerifyNone(t)

	idx := New()
	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				id := fmt.Sprintf("w%d-%d", w, i)
				idx.Add(square(id, res6, float64(i), float64(w), 1))
				idx.Candidates(float64(i)+0.5, float64(w)+0.5)
			}
		}(w)
	}
	wg.Wait()

	if idx.Len() != 200 {
		t.Errorf("Len = %d, want 200", idx.Len())
	}
	if got := idx.Covering(10.5, 2.5); len(got) != 1 || got[0].ID != "w2-10" {
		t.Errorf("Covering(10.5, 2.5) = %v", got)
	}
}
