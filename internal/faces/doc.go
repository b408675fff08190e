// Package faces traces boundary-region labels ("faces") through the grid
// hierarchy.
//
// Responsibilities: the parity- and shape-indexed face tables, the upward
// tracer (which faces of an ancestor a cell touches), the coarsest-ancestor
// finder, and the downward expander (which descendants at a finer
// resolution touch given faces of an ancestor).
// Key types: Label, LabelSet, FaceMap, ReverseMap, Grid.
//
// Loss of boundary contact is an empty LabelSet or an empty cell slice, not
// an error. The only error is ErrInvalidArgument for resolution ordering.
//
// The package is pure computation over immutable tables and is safe for
// concurrent use. It does no logging.
package faces
