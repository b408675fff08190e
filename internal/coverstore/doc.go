// Package coverstore persists computed cell covers in SQLite so they can be
// reloaded into a containment index without recomputing the geometry.
//
// The schema is managed with golang-migrate from migrations embedded in the
// binary. Rings are stored as GeoJSON polygon geometry text alongside their
// bounding box.
package coverstore
