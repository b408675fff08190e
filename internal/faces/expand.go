package faces

import "github.com/banshee-data/hexboundary/internal/hexgrid"

// BoundaryChildren returns the descendants of parent at targetRes that lie
// on any of the given faces of parent, in depth-first order of the grid's
// child enumeration.
//
// Branches whose mapped face set becomes empty are pruned: a cell interior
// to a face at one resolution has no descendant on that face, so the walk
// visits only cells along the requested perimeter.
func BoundaryChildren(g Grid, parent hexgrid.Cell, targetRes int, labels LabelSet) ([]hexgrid.Cell, error) {
	res := g.Resolution(parent)
	if targetRes <= res {
		return nil, invalidArgf("target must be strictly finer than parent (target %d, parent resolution %d)", targetRes, res)
	}
	if targetRes > hexgrid.MaxResolution {
		return nil, invalidArgf("target resolution %d exceeds %d", targetRes, hexgrid.MaxResolution)
	}

	w := expander{g: g, target: targetRes}
	w.walk(parent, res, labels.Intersect(AllLabels))
	return w.out, nil
}

type expander struct {
	g      Grid
	target int
	out    []hexgrid.Cell
}

func (w *expander) walk(cell hexgrid.Cell, res int, labels LabelSet) {
	if labels.Empty() {
		return
	}
	if res == w.target {
		w.out = append(w.out, cell)
		return
	}
	next := res + 1
	shape := shapeOf(w.g, cell)
	for _, child := range w.g.ChildrenAt(cell, next) {
		mapped := Reverse(next, w.g.DigitAt(child, next), shape).Apply(labels)
		if mapped.Empty() {
			continue
		}
		w.walk(child, next, mapped)
	}
}
