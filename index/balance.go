package index

import (
	"github.com/hellblazer/tetra"
)

// Subdivide splits the cell at key into its eight Bey children: every
// entity currently at key is relocated to whichever child actually
// contains it, key's own node is emptied (and dropped if no longer
// needed), and key is marked to have all eight children present.
//
// Subdivide returns StructuralConflict if every entity at key maps to the
// very same child (the split would accomplish nothing — a degenerate
// case spec §4.9 calls out explicitly, typically meaning every entity
// sits exactly on the same point).
func (idx *Index) Subdivide(key tetra.Key) error {
	t, err := tetra.Decode(key)
	if err != nil {
		return err
	}
	if t.Level >= idx.cfg.MaxDepth {
		return nil
	}
	children, err := t.Children()
	if err != nil {
		return err
	}

	idx.mu.Lock()
	n := idx.store.get(key)
	if n == nil {
		idx.mu.Unlock()
		return nil
	}
	ids := n.IDs()
	idx.mu.Unlock()

	assignments := make(map[uint64]tetra.Key, len(ids))
	distinctChildren := make(map[tetra.Key]struct{})
	for _, id := range ids {
		pos, ok := idx.em.Position(id)
		if !ok {
			continue
		}
		p, err := tetra.GridPoint(pos)
		if err != nil {
			continue
		}
		var childKey tetra.Key
		matched := false
		for _, c := range children {
			if c.Contains(p) {
				ck, err := tetra.Encode(c)
				if err != nil {
					continue
				}
				childKey = ck
				matched = true
				break
			}
		}
		if !matched {
			continue
		}
		assignments[id] = childKey
		distinctChildren[childKey] = struct{}{}
	}
	if len(ids) > 0 && len(distinctChildren) <= 1 {
		return &tetra.Error{Kind: tetra.StructuralConflict, Op: "Subdivide", Msg: "all entities map to the same child; split would not separate them", Err: tetra.ErrStructuralConflict}
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()
	n = idx.store.get(key)
	if n == nil {
		return nil
	}
	for id, childKey := range assignments {
		child := idx.store.getOrCreate(childKey, idx.cfg)
		child.Add(id)
		n.Remove(id)
	}
	for _, c := range children {
		idx.markChildPresenceLocked(key, c)
	}
	if n.Empty() {
		idx.store.delete(key)
	}
	return nil
}

// Merge folds key's occupied children back into key itself when their
// combined entity count is at or below MergeThreshold, the inverse of
// Subdivide. Merge only gathers key's own eight children, so the cells it
// folds are always one sibling set; it takes no caller-supplied set of
// cells and never returns StructuralConflict.
func (idx *Index) Merge(key tetra.Key) error {
	t, err := tetra.Decode(key)
	if err != nil {
		return err
	}
	children, err := t.Children()
	if err != nil {
		return err
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	total := 0
	childKeys := make([]tetra.Key, 0, 8)
	for _, c := range children {
		ck, err := tetra.Encode(c)
		if err != nil {
			continue
		}
		if n := idx.store.get(ck); n != nil {
			total += n.Count()
			childKeys = append(childKeys, ck)
		}
	}
	if len(childKeys) == 0 || total > idx.cfg.MergeThreshold {
		return nil
	}

	parent := idx.store.getOrCreate(key, idx.cfg)
	for _, ck := range childKeys {
		child := idx.store.get(ck)
		if child == nil {
			continue
		}
		for _, id := range child.IDs() {
			parent.Add(id)
		}
		idx.store.delete(ck)
	}
	for i := uint8(0); i < 8; i++ {
		parent.SetChild(i, false)
	}
	return nil
}

// markChildPresenceLocked marks child present under parentKey's node,
// assuming idx.mu is already held for writing.
func (idx *Index) markChildPresenceLocked(parentKey tetra.Key, child tetra.Tet) {
	parentT, err := tetra.Decode(parentKey)
	if err != nil {
		return
	}
	storeIdx := uint8(child.Cube(parentT))
	if pn := idx.store.get(parentKey); pn != nil {
		pn.SetChild(storeIdx, true)
	}
}
