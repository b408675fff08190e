// Package hexgrid is the grid-index capability used by the face tracer and
// the boundary assembler.
//
// Responsibilities: the Cell value type, structural primitives (resolution,
// pentagon test, parent, children, per-resolution digit) and raw cell
// geometry, all backed by the H3 library.
// Key types: Cell, LatLng, H3.
//
// Digits are read straight from the 64-bit index layout: fifteen 3-bit
// fields, resolution 1 in the most significant position. Index encoding and
// coordinate conversion beyond that are left to H3.
package hexgrid
