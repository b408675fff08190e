// Package planar is the polygon arithmetic used by the boundary assembler:
// pairwise union, convex hull and round buffering of rings in (x, y)
// coordinates, backed by GEOS.
//
// Coordinates are passed through unchanged. The boundary package feeds it
// longitude/latitude degrees and a buffer distance already converted to
// degrees.
package planar
