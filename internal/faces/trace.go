package faces

import "github.com/banshee-data/hexboundary/internal/hexgrid"

// TraceToAncestor returns which faces of cell's ancestor at targetRes the
// cell lies on, given the faces of cell itself to follow. An empty result
// means the cell does not touch any of them.
//
// A pentagon anywhere on the climb (including cell itself) yields an empty
// result. Below resolution 0 a pentagon is always the centre child of its
// parent, so it touches none of the parent's faces.
func TraceToAncestor(g Grid, cell hexgrid.Cell, labels LabelSet, targetRes int) (LabelSet, error) {
	res := g.Resolution(cell)
	if targetRes >= res {
		return 0, invalidArgf("target must be strictly coarser (target %d, cell resolution %d)", targetRes, res)
	}
	if targetRes < 0 {
		return 0, invalidArgf("target resolution negative (%d)", targetRes)
	}
	return climb(g, cell, res, labels, targetRes), nil
}

// TraceToParent is TraceToAncestor with the immediate parent as target.
func TraceToParent(g Grid, cell hexgrid.Cell, labels LabelSet) (LabelSet, error) {
	return TraceToAncestor(g, cell, labels, g.Resolution(cell)-1)
}

// climb assumes 0 <= targetRes < res.
func climb(g Grid, cell hexgrid.Cell, res int, labels LabelSet, targetRes int) LabelSet {
	current := cell
	for ; res > targetRes; res-- {
		if labels.Empty() || g.IsPentagon(current) {
			return 0
		}
		digit := g.DigitAt(current, res)
		if digit == 0 {
			return 0
		}
		parent := g.ParentAt(current, res-1)
		labels = Forward(res, digit, shapeOf(g, parent)).Apply(labels)
		current = parent
	}
	return labels
}

// CoarsestAncestorOn climbs from cell one resolution at a time while the
// traced faces stay non-empty, and returns the last cell reached. If contact
// survives to resolution 0 the base cell is returned. An empty label set
// returns cell unchanged.
func CoarsestAncestorOn(g Grid, cell hexgrid.Cell, labels LabelSet) hexgrid.Cell {
	current := cell
	for res := g.Resolution(cell); res > 0; res-- {
		traced := climb(g, current, res, labels, res-1)
		if traced.Empty() {
			return current
		}
		current = g.ParentAt(current, res-1)
		labels = traced
	}
	return current
}
