// Package tetra implements a tetrahedral spatial index: a uniform grid of
// cubes, each decomposed into six tetrahedra, addressed by a 128-bit
// tetrahedral-Morton (TM) key that preserves spatial locality across a
// refinement hierarchy of up to LMax levels.
//
// The package exposes the SFC key algebra (Key), the tetrahedron value type
// (Tet) and its Bey-refinement children, and the connectivity tables that
// relate a tetrahedron's type to its children, faces and neighbors. The
// higher-level node/entity store and the spatial operations built on top of
// this algebra live in the sibling index and node packages.
package tetra

// LMax is the maximum refinement level. A root Tet spans a cube of side
// 1<<LMax; the anchor coordinates at level l are multiples of cellLen(l).
const LMax = 21

// DomainEdge is the edge length, in integer grid units, of the root cube.
const DomainEdge = int64(1) << LMax
