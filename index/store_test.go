package index

import (
	"testing"

	"github.com/hellblazer/tetra"
)

func TestStoreSubMapRange(t *testing.T) {
	s := newStore()
	var keys []tetra.Key
	for typ := uint8(0); typ < 6; typ++ {
		k, _ := tetra.RootKey(typ)
		keys = append(keys, k)
		s.getOrCreate(k, DefaultConfig())
	}

	lo, hi := keys[0], keys[len(keys)-1]
	if lo.Less(hi) == false && !lo.Equal(hi) {
		lo, hi = hi, lo
	}
	got := s.subMap(lo, hi)
	if len(got) == 0 {
		t.Fatalf("subMap returned no keys for the full root-key range")
	}
}

func TestStoreGetOrCreateIsIdempotent(t *testing.T) {
	s := newStore()
	k, _ := tetra.RootKey(0)
	n1 := s.getOrCreate(k, DefaultConfig())
	n2 := s.getOrCreate(k, DefaultConfig())
	if n1 != n2 {
		t.Fatalf("getOrCreate returned different nodes for the same key")
	}
	if s.count() != 1 {
		t.Fatalf("count() = %d, want 1", s.count())
	}
}

// TestStoreSubMapMatchesLinearScan checks the binary-searched subMap
// against a naive linear filter over every inserted key, the same
// reference-equivalence check spec §10 asks for between the SFC range
// scan and a brute-force pass over the full key set.
func TestStoreSubMapMatchesLinearScan(t *testing.T) {
	s := newStore()
	var all []tetra.Key
	for typ := uint8(0); typ < 6; typ++ {
		root, _ := tetra.RootTet(typ)
		children, _ := root.Children()
		for _, c := range children {
			k, err := tetra.Encode(c)
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}
			s.getOrCreate(k, DefaultConfig())
			all = append(all, k)
		}
	}

	from, to := all[len(all)/4], all[3*len(all)/4]
	if to.Less(from) {
		from, to = to, from
	}

	var want []tetra.Key
	for _, k := range all {
		if !k.Less(from) && !to.Less(k) {
			want = append(want, k)
		}
	}

	got := s.subMap(from, to)
	if len(got) != len(want) {
		t.Fatalf("subMap returned %d keys, naive scan found %d", len(got), len(want))
	}
	seen := make(map[tetra.Key]bool, len(want))
	for _, k := range want {
		seen[k] = true
	}
	for _, k := range got {
		if !seen[k] {
			t.Fatalf("subMap returned key %v not in naive scan result", k)
		}
	}
}

func TestStoreDelete(t *testing.T) {
	s := newStore()
	k, _ := tetra.RootKey(1)
	s.getOrCreate(k, DefaultConfig())
	s.delete(k)
	if s.count() != 0 {
		t.Fatalf("count() = %d after delete, want 0", s.count())
	}
	if s.get(k) != nil {
		t.Fatalf("get() returned a node after delete")
	}
}
