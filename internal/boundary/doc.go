// Package boundary assembles the boundary cells found by the faces package
// into polygons: a cell's own outline, the merged outline of its boundary
// descendants, and buffered covers guaranteed to contain every
// finest-resolution descendant of a cell.
//
// Vertices are (longitude, latitude) in degrees; every returned ring is
// closed. Polygon arithmetic is delegated to a planar.Geometry.
package boundary
