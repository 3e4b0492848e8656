// Package geom provides the low-level simplex geometry used by the matching
// engine: vector helpers, barycentric coordinate solves and containment
// tests. All functions operate on float64 slices of a common dimension; the
// caller is responsible for dimensional consistency unless noted otherwise.
package geom
