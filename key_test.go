package tetra

import "testing"

func TestEncodeDecodeRoundTrip(t *testing.T) {
	for typ := uint8(0); typ < 6; typ++ {
		root, _ := RootTet(typ)
		children, _ := root.Children()
		for _, c := range children {
			grandchildren, _ := c.Children()
			for _, gc := range grandchildren {
				k, err := Encode(gc)
				if err != nil {
					t.Fatalf("Encode: %v", err)
				}
				if err := k.Validate(); err != nil {
					t.Fatalf("Validate: %v", err)
				}
				back, err := Decode(k)
				if err != nil {
					t.Fatalf("Decode: %v", err)
				}
				if back != gc {
					t.Fatalf("round trip mismatch: got %+v, want %+v", back, gc)
				}
			}
		}
	}
}

func TestKeyLessOrdersByLevelThenBits(t *testing.T) {
	root0, _ := RootKey(0)
	root1, _ := RootKey(1)
	if !root0.Less(root1) {
		t.Fatalf("expected type-0 root key to sort before type-1 root key")
	}
	children, _ := mustRootTet(t, 0).Children()
	ck, _ := Encode(children[0])
	if !root0.Less(ck) {
		t.Fatalf("expected level-0 key to sort before a level-1 descendant key")
	}
}

func TestParentKey(t *testing.T) {
	root, _ := RootTet(3)
	children, _ := root.Children()
	k, _ := Encode(children[0])
	pk, ok := k.ParentKey()
	if !ok {
		t.Fatalf("ParentKey returned !ok for level-1 key")
	}
	rk, _ := RootKey(3)
	if !pk.Equal(rk) {
		t.Fatalf("ParentKey = %v, want root key %v", pk, rk)
	}
}

func TestAncestor(t *testing.T) {
	root, _ := RootTet(1)
	children, _ := root.Children()
	rk, _ := RootKey(1)
	ck, _ := Encode(children[3])
	if !rk.Ancestor(ck) {
		t.Fatalf("expected root key to be an ancestor of its child's key")
	}
	if ck.Ancestor(rk) {
		t.Fatalf("child key should not be an ancestor of its parent's key")
	}
}

func TestKeyBytesRoundTrip(t *testing.T) {
	root, _ := RootTet(5)
	children, _ := root.Children()
	k, _ := Encode(children[4])
	b := k.Bytes()
	back, err := KeyFromBytes(b)
	if err != nil {
		t.Fatalf("KeyFromBytes: %v", err)
	}
	if !back.Equal(k) {
		t.Fatalf("Bytes round trip mismatch: got %v, want %v", back, k)
	}
}

// TestLevel21SplitEncoding walks all the way down to the deepest
// refinement level, exercising Key.withGroup/group's special 4-bit-low /
// 2-bit-high split for level LMax (the only level whose group doesn't fit
// entirely in one 64-bit word boundary) and confirming Encode/Decode and
// Validate all agree on the result.
func TestLevel21SplitEncoding(t *testing.T) {
	cur := mustRootTet(t, 2)
	for cur.Level < LMax {
		children, err := cur.Children()
		if err != nil {
			t.Fatalf("Children at level %d: %v", cur.Level, err)
		}
		cur = children[0]
	}
	if cur.Level != LMax {
		t.Fatalf("expected to reach level %d, got %d", LMax, cur.Level)
	}

	k, err := Encode(cur)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if k.Level != LMax {
		t.Fatalf("encoded key level = %d, want %d", k.Level, LMax)
	}
	if k.HighBits>>62 != 0 {
		t.Fatalf("HighBits bits 62-63 must stay zero, got %016x", k.HighBits)
	}
	if err := k.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	back, err := Decode(k)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if back != cur {
		t.Fatalf("level-21 round trip mismatch: got %+v, want %+v", back, cur)
	}
}

func mustRootTet(t *testing.T, typ uint8) Tet {
	t.Helper()
	rt, err := RootTet(typ)
	if err != nil {
		t.Fatalf("RootTet: %v", err)
	}
	return rt
}
