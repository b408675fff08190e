// Package coverindex answers point queries against stored covers.
//
// Covers are held in an R-tree keyed on their bounding boxes; a bounding
// box hit is confirmed with a point-in-polygon test on the cover ring.
package coverindex

import (
	"sort"
	"sync"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/index/rtree"

	"github.com/banshee-data/hexboundary/internal/coverstore"
	"github.com/banshee-data/hexboundary/internal/hexgrid"
)

// boxEpsilon pads point queries so the tree never sees a zero-area box.
const boxEpsilon = 1e-12

type entry struct {
	cover *coverstore.Cover
	poly  geom.Polygon
}

func (e *entry) Bounds() *geom.Bounds {
	return e.poly.Bounds()
}

// Index is safe for concurrent use.
type Index struct {
	mu   sync.RWMutex
	tree *rtree.Rtree
	byID map[string]*entry
}

// New returns an empty index.
func New() *Index {
	return &Index{
		tree: rtree.NewTree(25, 50),
		byID: make(map[string]*entry),
	}
}

// Load builds an index from every cover in the store.
func Load(s *coverstore.Store) (*Index, error) {
	covers, err := s.List()
	if err != nil {
		return nil, err
	}
	idx := New()
	for _, c := range covers {
		idx.Add(c)
	}
	return idx, nil
}

// Add inserts c, replacing any cover with the same ID. Covers without an
// ID or with fewer than three ring points are ignored.
func (idx *Index) Add(c *coverstore.Cover) {
	if c.ID == "" || len(c.Ring) < 3 {
		return
	}
	path := make(geom.Path, len(c.Ring))
	for i, p := range c.Ring {
		path[i] = geom.Point{X: p.X, Y: p.Y}
	}
	e := &entry{cover: c, poly: geom.Polygon{path}}

	idx.mu.Lock()
	defer idx.mu.Unlock()
	if old, ok := idx.byID[c.ID]; ok {
		idx.tree.Delete(old)
	}
	idx.byID[c.ID] = e
	idx.tree.Insert(e)
}

// Remove deletes the cover with the given ID and reports whether it was
// present.
func (idx *Index) Remove(id string) bool {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	e, ok := idx.byID[id]
	if !ok {
		return false
	}
	delete(idx.byID, id)
	idx.tree.Delete(e)
	return true
}

// Len returns the number of indexed covers.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.byID)
}

// Covering returns every cover whose ring contains the point or has it on
// an edge, ordered by cell resolution (finest first) then ID.
func (idx *Index) Covering(lng, lat float64) []*coverstore.Cover {
	pt := geom.Point{X: lng, Y: lat}
	box := &geom.Bounds{
		Min: geom.Point{X: lng - boxEpsilon, Y: lat - boxEpsilon},
		Max: geom.Point{X: lng + boxEpsilon, Y: lat + boxEpsilon},
	}

	idx.mu.RLock()
	hits := idx.tree.SearchIntersect(box)
	var out []*coverstore.Cover
	for _, h := range hits {
		e := h.(*entry)
		if pt.Within(e.poly) != geom.Outside {
			out = append(out, e.cover)
		}
	}
	idx.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		ri, rj := out[i].Cell.Resolution(), out[j].Cell.Resolution()
		if ri != rj {
			return ri > rj
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Candidates returns the distinct cells whose covers contain the point.
// Any finest-resolution cell at the point descends from one of them.
func (idx *Index) Candidates(lng, lat float64) []hexgrid.Cell {
	var cells []hexgrid.Cell
	seen := make(map[hexgrid.Cell]bool)
	for _, c := range idx.Covering(lng, lat) {
		if !seen[c.Cell] {
			seen[c.Cell] = true
			cells = append(cells, c.Cell)
		}
	}
	return cells
}
