package tetra

import "testing"

func TestFaceNeighborInvolutionOnRoots(t *testing.T) {
	root, _ := RootTet(0)
	for f := uint8(0); f < 4; f++ {
		n, err := root.FaceNeighbor(f)
		if err != nil {
			// Some root faces legitimately fall outside the domain.
			continue
		}
		back := false
		for g := uint8(0); g < 4; g++ {
			nn, err := n.FaceNeighbor(g)
			if err == nil && nn == root {
				back = true
				break
			}
		}
		if !back {
			t.Fatalf("face %d neighbor %+v does not face back to root", f, n)
		}
	}
}

func TestLowestCommonAncestorLevel(t *testing.T) {
	root, _ := RootTet(0)
	children, _ := root.Children()
	ka, _ := Encode(children[0])
	kb, _ := Encode(children[0])
	if lvl := LowestCommonAncestorLevel(ka, kb); lvl != 1 {
		t.Fatalf("identical keys: LCA level = %d, want 1", lvl)
	}
	kc, _ := Encode(children[1])
	if lvl := LowestCommonAncestorLevel(ka, kc); lvl != 0 {
		t.Fatalf("sibling keys: LCA level = %d, want 0", lvl)
	}
}

func TestEdgeNeighborsExcludeSelf(t *testing.T) {
	root, _ := RootTet(2)
	children, _ := root.Children()
	c := children[0]
	neighbors, err := c.EdgeNeighbors(0)
	if err != nil {
		t.Fatalf("EdgeNeighbors: %v", err)
	}
	for _, n := range neighbors {
		if n == c {
			t.Fatalf("EdgeNeighbors included the tet itself")
		}
	}
}
