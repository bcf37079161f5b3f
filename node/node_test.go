package node

import "testing"

func TestAddRemoveContains(t *testing.T) {
	n := New(4, 0.5)
	if !n.Add(10) {
		t.Fatalf("Add(10) should report newly added")
	}
	if n.Add(10) {
		t.Fatalf("Add(10) again should report not newly added")
	}
	if !n.Contains(10) {
		t.Fatalf("expected Contains(10)")
	}
	if !n.Remove(10) {
		t.Fatalf("Remove(10) should report removed")
	}
	if n.Contains(10) {
		t.Fatalf("expected !Contains(10) after remove")
	}
}

func TestGrowsToSetStorageAndBackToArray(t *testing.T) {
	n := New(4, 0.5)
	for i := uint64(0); i < 4; i++ {
		n.Add(i)
	}
	if n.IsArray() {
		t.Fatalf("expected set storage once count reaches arrayThreshold")
	}
	for i := uint64(0); i < 3; i++ {
		n.Remove(i)
	}
	if !n.IsArray() {
		t.Fatalf("expected array storage once count drops below arrayThreshold/2")
	}
	if n.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", n.Count())
	}
}

func TestIDsSortedInBothRepresentations(t *testing.T) {
	// Threshold 64 keeps the four ids in array form; threshold 2 moves
	// them to set form.
	for _, threshold := range []int{64, 2} {
		n := New(threshold, 0.5)
		for _, id := range []uint64{30, 10, 20, 5} {
			n.Add(id)
		}
		got := n.IDs()
		want := []uint64{5, 10, 20, 30}
		if len(got) != len(want) {
			t.Fatalf("threshold %d: IDs() len = %d, want %d", threshold, len(got), len(want))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("threshold %d: IDs()[%d] = %d, want %d", threshold, i, got[i], want[i])
			}
		}
	}
}

func TestChildPresence(t *testing.T) {
	n := New(4, 0.5)
	n.SetChild(3, true)
	n.SetChild(7, true)
	if !n.HasChild(3) || !n.HasChild(7) {
		t.Fatalf("expected child slots 3 and 7 present")
	}
	if n.ChildCount() != 2 {
		t.Fatalf("ChildCount() = %d, want 2", n.ChildCount())
	}
	n.SetChild(3, false)
	if n.HasChild(3) {
		t.Fatalf("expected child slot 3 cleared")
	}
	if n.ChildCount() != 1 {
		t.Fatalf("ChildCount() = %d, want 1", n.ChildCount())
	}
}

func TestEmpty(t *testing.T) {
	n := New(4, 0.5)
	if !n.Empty() {
		t.Fatalf("fresh node should be Empty")
	}
	n.Add(1)
	if n.Empty() {
		t.Fatalf("node with an entity should not be Empty")
	}
	n.Remove(1)
	if !n.Empty() {
		t.Fatalf("node should be Empty again after removing its only entity")
	}
}
