package tetra

import (
	"math/big"

	"gonum.org/v1/gonum/spatial/r3"
)

// cellLen returns the edge length, in integer grid units, of a cube at the
// given refinement level. Level 0 is the root cube (edge DomainEdge);
// level LMax is the finest cell (edge 1).
func cellLen(level uint8) int64 {
	return int64(1) << (LMax - level)
}

// CellLen is the exported form of cellLen, for callers outside this
// package (region queries) that need to reason about cube sizes at a
// given level without decoding a concrete Tet.
func CellLen(level uint8) int64 { return cellLen(level) }

// axisPerm returns the (i, j, k) axis permutation associated with
// tetrahedron type t, per the Kuhn/Freudenthal construction shared by all
// six types of a cube: i = t/2, j = (i + (2 if t even else 1)) % 3,
// k = 3 - i - j.
func axisPerm(t uint8) (i, j, k uint8) {
	i = t / 2
	if t%2 == 0 {
		j = (i + 2) % 3
	} else {
		j = (i + 1) % 3
	}
	k = 3 - i - j
	return
}

// axis returns the unit step (dx, dy, dz) along grid axis a (0=x, 1=y, 2=z).
func axis(a uint8) [3]int64 {
	var v [3]int64
	v[a] = 1
	return v
}

// vertices returns the four integer corner coordinates of the tetrahedron
// of type t anchored at v0, with cube edge length h. v0 is the cube's
// minimum corner; all six types of a cube share the same main diagonal
// from v0 to v0 + h*(1,1,1), differing in which permutation of the
// remaining three cube vertices forms the path between them.
func vertices(v0 [3]int64, h int64, t uint8) [4][3]int64 {
	i, j, k := axisPerm(t)
	ei, ej := axis(i), axis(j)
	_ = k
	var out [4][3]int64
	out[0] = v0
	out[1] = add3(v0, scale3(ei, h))
	out[2] = add3(out[1], scale3(ej, h))
	out[3] = add3(v0, [3]int64{h, h, h})
	return out
}

func add3(a, b [3]int64) [3]int64 {
	return [3]int64{a[0] + b[0], a[1] + b[1], a[2] + b[2]}
}

func sub3(a, b [3]int64) [3]int64 {
	return [3]int64{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

func scale3(a [3]int64, s int64) [3]int64 {
	return [3]int64{a[0] * s, a[1] * s, a[2] * s}
}

func midpoint(a, b [3]int64) [3]int64 {
	return [3]int64{(a[0] + b[0]) / 2, (a[1] + b[1]) / 2, (a[2] + b[2]) / 2}
}

// cross computes the integer cross product of two vectors; used only by
// coplanarity/orientation tests. With coordinates bounded by
// DomainEdge = 1<<21 each component fits in int64, but a further dot
// product with a third edge vector can reach 2^63 and does not.
func cross(a, b [3]int64) [3]int64 {
	return [3]int64{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func dot(a, b [3]int64) int64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

// scalarTripleProduct returns the sign (-1, 0 or +1) of
// (b-a) . ((c-a) x (d-a)), i.e. the orientation of point d relative to the
// plane through a, b, c. The final dot product is summed exactly in
// big.Int, since at the root level it can overflow int64. It is the core
// primitive used to derive face-neighbor and child-containment tables
// geometrically rather than from a hardcoded literal table.
func scalarTripleProduct(a, b, c, d [3]int64) int64 {
	u := sub3(b, a)
	x := cross(sub3(c, a), sub3(d, a))
	var s, term big.Int
	for i := 0; i < 3; i++ {
		s.Add(&s, term.Mul(big.NewInt(u[i]), big.NewInt(x[i])))
	}
	return int64(s.Sign())
}

// planeSide reports the sign of scalarTripleProduct(a, b, c, p): positive
// if p is on the positive side of plane (a,b,c) under the right-hand rule,
// negative on the other side, zero if coplanar.
func planeSide(a, b, c, p [3]int64) int {
	s := scalarTripleProduct(a, b, c, p)
	switch {
	case s > 0:
		return 1
	case s < 0:
		return -1
	default:
		return 0
	}
}

// containsPoint reports whether integer point p lies within the closed
// tetrahedron with the given four vertices, via a four-plane half-space
// cascade: p must be on the same side of each face as the opposite vertex
// (or exactly on the face).
func containsPoint(v [4][3]int64, p [3]int64) bool {
	for f := 0; f < 4; f++ {
		a, b, c := faceTriangle(v, f)
		opp := v[f]
		sideOpp := planeSide(a, b, c, opp)
		sideP := planeSide(a, b, c, p)
		if sideOpp == 0 {
			continue
		}
		if sideP != 0 && sideP != sideOpp {
			return false
		}
	}
	return true
}

// faceTriangle returns the three corners other than f, in ascending index
// order (faceCorners[f]), which is the same for every tetrahedron type
// since it is purely combinatorial (spec §8 open question: faceCorners
// rows are identical across types).
func faceTriangle(v [4][3]int64, f int) (a, b, c [3]int64) {
	idx := faceCorners[f]
	return v[idx[0]], v[idx[1]], v[idx[2]]
}

// toFloat converts an integer grid point to a gonum r3.Vec for callers
// working in the float64-facing part of the public API (e.g. region
// queries expressed as floating point boxes).
func toFloat(p [3]int64) r3.Vec {
	return r3.Vec{X: float64(p[0]), Y: float64(p[1]), Z: float64(p[2])}
}

// fromFloat converts a float64 point into integer grid coordinates by
// truncation. Callers at the public API boundary (Locate, region queries)
// are responsible for validating the point lies within [0, DomainEdge)
// before relying on the result.
func fromFloat(v r3.Vec) [3]int64 {
	return [3]int64{int64(v.X), int64(v.Y), int64(v.Z)}
}

// inDomain reports whether every coordinate of p lies within
// [0, DomainEdge).
func inDomain(p [3]int64) bool {
	for _, c := range p {
		if c < 0 || c >= DomainEdge {
			return false
		}
	}
	return true
}

// tetCentroid returns the average of t's four vertices, truncated to
// integer grid coordinates. For cells with H < 4 the truncation can move
// the result onto t's boundary or outside t.
func tetCentroid(t Tet) [3]int64 {
	v := t.Vertices()
	var sum [3]int64
	for _, p := range v {
		sum = add3(sum, p)
	}
	return [3]int64{sum[0] / 4, sum[1] / 4, sum[2] / 4}
}

// GridPoint converts a float64 point (e.g. an entity's world position) to
// integer grid coordinates, truncating toward zero, and reports
// ErrInvalidDomain if the point falls outside [0, DomainEdge) on any
// axis — the public entry point callers at the index package's API
// boundary use before calling Locate.
func GridPoint(v r3.Vec) ([3]int64, error) {
	p := fromFloat(v)
	if v.X < 0 || v.Y < 0 || v.Z < 0 || !inDomain(p) {
		return [3]int64{}, newErr(InvalidDomain, "GridPoint", "point lies outside [0, DomainEdge)")
	}
	return p, nil
}

// VerticesFloat returns t's four corners as gonum r3.Vec, for callers
// working in floating point (region queries, distance computations).
func (t Tet) VerticesFloat() [4]r3.Vec {
	v := t.Vertices()
	var out [4]r3.Vec
	for i, p := range v {
		out[i] = toFloat(p)
	}
	return out
}

// Locate returns the tet at the given level containing grid point p. It
// first finds which of the six root types contains p (the domain cube's
// main-diagonal decomposition guarantees exactly one match, modulo shared
// boundary faces, for which the lowest-numbered type wins), then
// descends level by level, at each step picking whichever Bey child
// contains p.
func Locate(p [3]int64, level uint8) (Tet, error) {
	if !inDomain(p) {
		return Tet{}, newErr(InvalidDomain, "Locate", "point lies outside [0, DomainEdge)")
	}
	if level > LMax {
		return Tet{}, newErr(InvalidLevel, "Locate", "level exceeds LMax")
	}
	var cur Tet
	found := false
	for t := uint8(0); t < 6; t++ {
		root, _ := RootTet(t)
		if root.Contains(p) {
			cur = root
			found = true
			break
		}
	}
	if !found {
		return Tet{}, newErr(InvalidDomain, "Locate", "point matched no root tetrahedron")
	}
	for cur.Level < level {
		children, err := cur.Children()
		if err != nil {
			return Tet{}, err
		}
		next, ok := Tet{}, false
		for _, c := range children {
			if c.Contains(p) {
				next, ok = c, true
				break
			}
		}
		if !ok {
			return Tet{}, newErr(InvalidDomain, "Locate", "point matched no child at next level")
		}
		cur = next
	}
	return cur, nil
}
