package tetra

import "fmt"

// Tet is an immutable value identifying one tetrahedron of the refinement
// hierarchy: the cube it lives in (V0, the cube's minimum corner, and H,
// the cube's edge length), which of the six Kuhn/Freudenthal types it is,
// and its refinement level. Tet is comparable and cheap to copy; callers
// never need to clone it (cf. the teacher's Key []byte, which must be
// cloned on every store/return because a slice is shared, mutable state).
type Tet struct {
	V0    [3]int64
	H     int64
	Type  uint8
	Level uint8
}

// RootTet returns the single level-0 tetrahedron of the given type, one of
// six partitioning the domain cube.
func RootTet(t uint8) (Tet, error) {
	if t > 5 {
		return Tet{}, newErr(InvalidIndex, "RootTet", "type must be in [0,5]")
	}
	return Tet{V0: [3]int64{0, 0, 0}, H: DomainEdge, Type: t, Level: 0}, nil
}

// Vertices returns the four integer corners of t.
func (t Tet) Vertices() [4][3]int64 {
	return vertices(t.V0, t.H, t.Type)
}

// Contains reports whether integer point p lies within the closed volume
// of t.
func (t Tet) Contains(p [3]int64) bool {
	return containsPoint(t.Vertices(), p)
}

// cubeID returns this tet's octant index (0..7, bit i set if V0's i-th
// coordinate lies in the upper half of its parent's cube) relative to a
// coarser anchor/edge pair — typically the parent tet's V0 and H.
func (t Tet) cubeID(parentV0 [3]int64, parentH int64) int {
	half := parentH / 2
	id := 0
	for a := 0; a < 3; a++ {
		if t.V0[a]-parentV0[a] >= half {
			id |= 1 << uint(a)
		}
	}
	return id
}

// Cube returns t's octant index (0..7) within parent's cube, for callers
// outside this package that need to know which Bey/store slot t occupies
// under parent (e.g. to mark child presence in a node).
func (t Tet) Cube(parent Tet) int {
	return t.cubeID(parent.V0, parent.H)
}

// Parent returns the tet one level up containing t, and false if t is
// already at level 0.
func (t Tet) Parent() (Tet, bool) {
	if t.Level == 0 {
		return Tet{}, false
	}
	parent := parentGuess(t)
	for _, c := range subdivideAll(parent) {
		if c == t {
			return parent, true
		}
	}
	// Fallback: parentGuess's type is always correct by construction
	// (see parentGuess), so this path is unreachable in a consistent
	// tree; kept only to surface programming errors loudly.
	panic(fmt.Sprintf("tetra: Parent: %+v is not a Bey child of its computed parent", t))
}

// parentGuess reconstructs the unique parent cube/type of t from its own
// geometry: the parent cube is t's cube doubled toward whichever octant t
// occupies, and the parent type is recovered by trial subdivision (see
// Parent), since a child's type alone doesn't determine its parent's type
// without the cube-id/type table lookup performed during subdivision.
func parentGuess(t Tet) Tet {
	parentH := t.H * 2
	parentV0 := [3]int64{}
	for a := 0; a < 3; a++ {
		parentV0[a] = (t.V0[a] / parentH) * parentH
	}
	for pt := uint8(0); pt < 6; pt++ {
		parent := Tet{V0: parentV0, H: parentH, Type: pt, Level: t.Level - 1}
		for _, c := range subdivideAll(parent) {
			if c == t {
				return parent
			}
		}
	}
	panic("tetra: parentGuess: no type reproduces child; table/geometry inconsistency")
}

// Children returns t's eight Bey children, in Bey-number order (0..3
// corner children anchored at t's own four vertices, 4..7 the octahedral
// children sharing the internal diagonal).
func (t Tet) Children() ([8]Tet, error) {
	if t.Level >= LMax {
		return [8]Tet{}, newErr(MaxLevelExceeded, "Children", "already at LMax")
	}
	return subdivideAll(t), nil
}

// Child returns t's Bey child at storeIdx (Morton/store order, not Bey
// order) — the order the node package's storage iterates.
func (t Tet) Child(storeIdx int) (Tet, error) {
	if storeIdx < 0 || storeIdx > 7 {
		return Tet{}, newErr(InvalidIndex, "Child", "storeIdx must be in [0,7]")
	}
	children, err := t.Children()
	if err != nil {
		return Tet{}, err
	}
	beyID := indexToBey[t.Type][storeIdx]
	return children[beyID], nil
}
