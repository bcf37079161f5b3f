package index

import (
	"sort"

	"github.com/hellblazer/tetra"
	"github.com/hellblazer/tetra/node"
)

// store keeps the occupied tetrahedra of an Index sorted by Key alongside
// a map to each one's Node, generalizing the teacher's arrayBasedMultiMap
// (array_based.go: a linear []kvp[T]) to a binary-searched sorted slice,
// since an SFC index's whole purpose is large ordered range scans, not the
// handful of string keys array_based.go was built for.
type store struct {
	keys  []tetra.Key
	nodes map[tetra.Key]*node.Node
}

func newStore() *store {
	return &store{nodes: make(map[tetra.Key]*node.Node)}
}

func (s *store) search(k tetra.Key) (int, bool) {
	i := sort.Search(len(s.keys), func(i int) bool { return !s.keys[i].Less(k) })
	if i < len(s.keys) && s.keys[i].Equal(k) {
		return i, true
	}
	return i, false
}

// get returns the Node at k, or nil if absent.
func (s *store) get(k tetra.Key) *node.Node {
	return s.nodes[k]
}

// getOrCreate returns the Node at k, creating an empty one (inserted in
// sorted position, built per cfg's storage policy) if absent.
func (s *store) getOrCreate(k tetra.Key, cfg Config) *node.Node {
	if n, ok := s.nodes[k]; ok {
		return n
	}
	i, _ := s.search(k)
	s.keys = append(s.keys, tetra.Key{})
	copy(s.keys[i+1:], s.keys[i:])
	s.keys[i] = k
	n := node.New(cfg.ArrayThreshold, cfg.CompactionThreshold,
		node.WithInitialCapacity(cfg.ArrayInitialCapacity),
		node.WithUseArrayNodes(cfg.UseArrayNodes),
		node.WithAlwaysArray(cfg.AlwaysUseArrayNodes),
		node.WithCompactionEnabled(cfg.EnableNodeCompaction),
	)
	s.nodes[k] = n
	return n
}

// delete removes the Node at k, if present.
func (s *store) delete(k tetra.Key) {
	if _, ok := s.nodes[k]; !ok {
		return
	}
	delete(s.nodes, k)
	i, found := s.search(k)
	if found {
		s.keys = append(s.keys[:i], s.keys[i+1:]...)
	}
}

// subMap returns the keys in [from, to], directly generalizing
// array_based.go's ValuesBetweenInclusive linear scan-and-filter to an
// O(log n + k) binary-searched range.
func (s *store) subMap(from, to tetra.Key) []tetra.Key {
	lo := sort.Search(len(s.keys), func(i int) bool { return !s.keys[i].Less(from) })
	hi := sort.Search(len(s.keys), func(i int) bool { return to.Less(s.keys[i]) })
	if lo >= hi {
		return nil
	}
	out := make([]tetra.Key, hi-lo)
	copy(out, s.keys[lo:hi])
	return out
}

// count returns the number of occupied cells.
func (s *store) count() int { return len(s.keys) }

// all returns every occupied key in sorted order.
func (s *store) all() []tetra.Key {
	out := make([]tetra.Key, len(s.keys))
	copy(out, s.keys)
	return out
}
