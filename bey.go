package tetra

// subdivideAll computes t's eight Bey children purely geometrically: it
// cuts the four corners off t (one half-size similar tet per parent
// vertex) and splits the remaining central octahedron into four tets along
// the diagonal joining the midpoints of t's two opposite edges v0v2 and
// v1v3. Each of the resulting eight vertex sets is then matched back to a
// (anchor, edgeLength, type) triple by computeType, rather than looking up
// a hardcoded per-type child-type table — the subdivision geometry is the
// single source of truth, and tables.go's startup self-check cross-checks
// the derived tables against it.
func subdivideAll(t Tet) [8]Tet {
	v := t.Vertices()
	v0, v1, v2, v3 := v[0], v[1], v[2], v[3]

	m01 := midpoint(v0, v1)
	m02 := midpoint(v0, v2)
	m03 := midpoint(v0, v3)
	m12 := midpoint(v1, v2)
	m13 := midpoint(v1, v3)
	m23 := midpoint(v2, v3)

	sets := [8][4][3]int64{
		{v0, m01, m02, m03}, // corner @ v0
		{v1, m01, m12, m13}, // corner @ v1
		{v2, m02, m12, m23}, // corner @ v2
		{v3, m03, m13, m23}, // corner @ v3
		{m02, m13, m01, m03}, // octahedral 0
		{m02, m13, m03, m23}, // octahedral 1
		{m02, m13, m23, m12}, // octahedral 2
		{m02, m13, m12, m01}, // octahedral 3
	}

	var out [8]Tet
	for i, s := range sets {
		anchor, h, typ, ok := computeType(s)
		if !ok {
			panic("tetra: subdivideAll: Bey child vertex set matches no (anchor, type); geometry invariant broken")
		}
		out[i] = Tet{V0: anchor, H: h, Type: typ, Level: t.Level + 1}
	}
	return out
}

// computeType recovers the (anchor, edge length, type) triple of a
// Freudenthal tetrahedron from its four vertices, by construction: the
// anchor is always the component-wise minimum of the four vertices (the
// start of the tet's main diagonal), the edge length is the component-wise
// span, and the type is whichever of the six axis permutations reproduces
// the given vertex set from (anchor, edgeLength).
func computeType(verts [4][3]int64) (anchor [3]int64, h int64, typ uint8, ok bool) {
	lo := verts[0]
	hi := verts[0]
	for _, v := range verts[1:] {
		for a := 0; a < 3; a++ {
			if v[a] < lo[a] {
				lo[a] = v[a]
			}
			if v[a] > hi[a] {
				hi[a] = v[a]
			}
		}
	}
	span := hi[0] - lo[0]
	if span != hi[1]-lo[1] || span != hi[2]-lo[2] || span <= 0 {
		return [3]int64{}, 0, 0, false
	}
	for t := uint8(0); t < 6; t++ {
		cand := vertices(lo, span, t)
		if sameVertexSet(cand, verts) {
			return lo, span, t, true
		}
	}
	return [3]int64{}, 0, 0, false
}

func sameVertexSet(a, b [4][3]int64) bool {
	var used [4]bool
	for _, x := range a {
		found := false
		for i, y := range b {
			if used[i] {
				continue
			}
			if x == y {
				used[i] = true
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
