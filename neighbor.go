package tetra


// FaceNeighbor returns the same-level tet sharing face f (0..3) of t,
// which may lie in the same cube (an internal face) or an axis-adjacent
// cube (a boundary face), or a NotFound error if that neighbor would fall
// outside the domain.
func (t Tet) FaceNeighbor(f uint8) (Tet, error) {
	if f > 3 {
		return Tet{}, newErr(InvalidIndex, "FaceNeighbor", "face must be in [0,3]")
	}
	off := faceNeighborCube[t.Type][f]
	nv0 := [3]int64{
		t.V0[0] + off[0]*t.H,
		t.V0[1] + off[1]*t.H,
		t.V0[2] + off[2]*t.H,
	}
	if !inDomain(nv0) {
		return Tet{}, wrapErr(NotFound, "FaceNeighbor", "neighbor cube lies outside the domain", ErrNotFound)
	}
	return Tet{V0: nv0, H: t.H, Type: faceNeighborType[t.Type][f], Level: t.Level}, nil
}

// AllFaceNeighbors returns the up to four same-level tets sharing a face
// with t, skipping any that would fall outside the domain.
func (t Tet) AllFaceNeighbors() []Tet {
	out := make([]Tet, 0, 4)
	for f := uint8(0); f < 4; f++ {
		if n, err := t.FaceNeighbor(f); err == nil {
			out = append(out, n)
		}
	}
	return out
}

// EdgeNeighbors returns the same-level tets sharing edge e (0..5),
// including the face neighbors across the two faces bordering it, found
// by combining those two faces: an edge is the intersection of exactly two
// of a tet's four faces, so its neighbors are reached by crossing one of
// them and then any face of that neighbor that keeps both edge vertices,
// deduplicated. The edge-to-face assignment is fixed by
// the tetrahedron's combinatorics (spec §4.6): e0 borders faces {0,2},
// e1 {0,3}, e2 {1,3}, e3 {0,1}, e4 {1,2}, e5 {2,3}; edgeVertexPairs below
// stores each edge's vertex pair, the complement of its two faces (face f
// is the triangle opposite vertex f, so an edge bordering faces {a,b} is
// spanned by the two vertices that are neither a nor b).
func (t Tet) EdgeNeighbors(e uint8) ([]Tet, error) {
	if e > 5 {
		return nil, newErr(InvalidIndex, "EdgeNeighbors", "edge must be in [0,5]")
	}
	pair := edgeVertexPairs[e]
	tv := t.Vertices()
	var faces []uint8
	for f := uint8(0); f < 4; f++ {
		if f == pair[0] || f == pair[1] {
			continue
		}
		faces = append(faces, f)
	}
	seen := make(map[Tet]struct{})
	var out []Tet
	for _, f1 := range faces {
		n1, err := t.FaceNeighbor(f1)
		if err != nil {
			continue
		}
		if _, ok := seen[n1]; !ok {
			seen[n1] = struct{}{}
			out = append(out, n1)
		}
		for g := uint8(0); g < 4; g++ {
			n2, err := n1.FaceNeighbor(g)
			if err != nil || n2 == t || !touchesPoint(n2, tv[pair[0]]) || !touchesPoint(n2, tv[pair[1]]) {
				continue
			}
			if _, ok := seen[n2]; !ok {
				seen[n2] = struct{}{}
				out = append(out, n2)
			}
		}
	}
	return out, nil
}

var edgeVertexPairs = [6][2]uint8{
	{1, 3}, {1, 2}, {0, 2}, {2, 3}, {0, 3}, {0, 1},
}

// FaceNeighborAtLevel returns the neighbor across face f of t's ancestor
// (or t itself) at the given level, which must not exceed t.Level: i.e.
// the face neighbor computed at a coarser level than t, useful for
// locating the coarse neighbor cell a fine tet should search for matches
// within (spec §4.6).
func (t Tet) FaceNeighborAtLevel(f uint8, level uint8) (Tet, error) {
	if level > t.Level {
		return Tet{}, newErr(InvalidLevel, "FaceNeighborAtLevel", "level must not exceed t.Level")
	}
	anc := t
	for anc.Level > level {
		p, ok := anc.Parent()
		if !ok {
			return Tet{}, newErr(InvalidLevel, "FaceNeighborAtLevel", "could not walk up to requested level")
		}
		anc = p
	}
	return anc.FaceNeighbor(f)
}

// VertexNeighbors returns the same-level tets other than t that share
// vertex v (0..3) with t, including those that also share a face or an
// edge with it, found by breadth-first expansion across face-neighbor
// links through tets touching that vertex until no new such tet is
// reached, bounded by searchLimit tets visited (a defensive cap: the
// vertex star of a coarse tet can be large at fine refinement levels).
func (t Tet) VertexNeighbors(v uint8, searchLimit int) ([]Tet, error) {
	if v > 3 {
		return nil, newErr(InvalidIndex, "VertexNeighbors", "vertex must be in [0,3]")
	}
	anchor := t.Vertices()[v]
	visited := map[Tet]struct{}{t: {}}
	frontier := []Tet{t}
	var out []Tet
	for len(frontier) > 0 && len(visited) < searchLimit {
		var next []Tet
		for _, cur := range frontier {
			for _, n := range cur.AllFaceNeighbors() {
				if _, ok := visited[n]; ok {
					continue
				}
				visited[n] = struct{}{}
				if touchesPoint(n, anchor) {
					out = append(out, n)
					next = append(next, n)
				}
			}
		}
		frontier = next
	}
	return out, nil
}

// AllNeighbors returns every same-level tet sharing a face, edge or
// vertex with t — the tetrahedral analog of a grid's 26-cube
// neighborhood — deduplicated. searchLimit bounds each VertexNeighbors
// walk (see its doc comment).
func (t Tet) AllNeighbors(searchLimit int) ([]Tet, error) {
	seen := map[Tet]struct{}{t: {}}
	var out []Tet
	add := func(n Tet) {
		if _, ok := seen[n]; ok {
			return
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	for _, n := range t.AllFaceNeighbors() {
		add(n)
	}
	for e := uint8(0); e < 6; e++ {
		ns, err := t.EdgeNeighbors(e)
		if err != nil {
			return nil, err
		}
		for _, n := range ns {
			add(n)
		}
	}
	for v := uint8(0); v < 4; v++ {
		ns, err := t.VertexNeighbors(v, searchLimit)
		if err != nil {
			return nil, err
		}
		for _, n := range ns {
			add(n)
		}
	}
	return out, nil
}

func touchesPoint(t Tet, p [3]int64) bool {
	for _, v := range t.Vertices() {
		if v == p {
			return true
		}
	}
	return false
}

// LowestCommonAncestorLevel returns the deepest level at which a and b's
// keys agree on both cube-id and type: one level above the first level
// (from the root down) whose groups differ, or the shallower key's level
// if none differ. Keys that already differ at level 0 also give 0. Per
// spec §9, this is not the level at which their cube anchors alone last
// coincide: a type mismatch ends the search just like a cube-id one.
func LowestCommonAncestorLevel(a, b Key) uint8 {
	max := a.Level
	if b.Level < max {
		max = b.Level
	}
	var l uint8
	for l = 0; l <= max; l++ {
		if a.group(l) != b.group(l) {
			if l == 0 {
				return 0
			}
			return l - 1
		}
	}
	return max
}
