package tetra

import "testing"

func TestTablesBijections(t *testing.T) {
	for typ := uint8(0); typ < 6; typ++ {
		seen := map[uint8]bool{}
		for cid := 0; cid < 8; cid++ {
			bey := typeCidToBeyId[typ][cid]
			if seen[bey] {
				t.Fatalf("type %d: cubeID->beyID not injective", typ)
			}
			seen[bey] = true
			if beyIdToCid[typ][bey] != uint8(cid) {
				t.Fatalf("type %d: cid/bey inverse broken", typ)
			}
		}
	}
}

func TestFaceCornersCombinatorial(t *testing.T) {
	for f := 0; f < 4; f++ {
		seen := map[int]bool{f: true}
		for _, idx := range faceCorners[f] {
			if seen[idx] {
				t.Fatalf("face %d: duplicate or self-referential corner %d", f, idx)
			}
			seen[idx] = true
		}
		if len(seen) != 4 {
			t.Fatalf("face %d: corners don't cover all 4 vertices", f)
		}
	}
}

func TestFaceNeighborInvolution(t *testing.T) {
	for typ := uint8(0); typ < 6; typ++ {
		for f := uint8(0); f < 4; f++ {
			nt := faceNeighborType[typ][f]
			nf := faceNeighborFace[typ][f]
			if faceNeighborType[nt][nf] != typ {
				t.Fatalf("type %d face %d: involution broken (-> type %d face %d -> type %d)",
					typ, f, nt, nf, faceNeighborType[nt][nf])
			}
		}
	}
}
