// Package node implements the per-cell entity store: each occupied
// tetrahedron in the index holds a Node, which adapts between a compact
// sorted-array representation and a hash-set representation as its entity
// count crosses configurable thresholds.
package node

import (
	"slices"
	"sort"
)

// storage is the common shape behind arrayStorage and setStorage,
// generalizing the teacher's nodeOps growth/shrink interface
// (hasCapacityForChild/grow/isReadyToShrink/shrink in art_node.go) down
// from four ART node sizes to these two storage kinds.
type storage interface {
	add(id uint64) bool
	remove(id uint64) bool
	contains(id uint64) bool
	count() int
	ids() []uint64 // sorted ascending
	clear()
	cap() int
}

// arrayStorage is a sorted slice of entity ids, grounded on
// gaissmai-bart/node.go's rank-then-slices.Insert sorted-array idiom.
type arrayStorage struct {
	data []uint64
}

func newArrayStorage(capacity int) *arrayStorage {
	return &arrayStorage{data: make([]uint64, 0, capacity)}
}

func (a *arrayStorage) search(id uint64) (int, bool) {
	i := sort.Search(len(a.data), func(i int) bool { return a.data[i] >= id })
	if i < len(a.data) && a.data[i] == id {
		return i, true
	}
	return i, false
}

func (a *arrayStorage) add(id uint64) bool {
	i, found := a.search(id)
	if found {
		return false
	}
	a.data = slices.Insert(a.data, i, id)
	return true
}

func (a *arrayStorage) remove(id uint64) bool {
	i, found := a.search(id)
	if !found {
		return false
	}
	a.data = slices.Delete(a.data, i, i+1)
	return true
}

func (a *arrayStorage) contains(id uint64) bool {
	_, found := a.search(id)
	return found
}

func (a *arrayStorage) count() int { return len(a.data) }

func (a *arrayStorage) ids() []uint64 {
	out := make([]uint64, len(a.data))
	copy(out, a.data)
	return out
}

func (a *arrayStorage) clear() { a.data = a.data[:0] }

func (a *arrayStorage) cap() int { return cap(a.data) }

// compact reallocates the backing array at exactly len(data), dropping
// slack capacity left over from growth or removals. Grounded on
// scigolib-hdf5's LazyThreshold ratio-triggered rebalancing idea, applied
// here to slice capacity rather than B-tree occupancy.
func (a *arrayStorage) compact(threshold float64) {
	if len(a.data) == 0 || cap(a.data) == 0 {
		return
	}
	if float64(len(a.data))/float64(cap(a.data)) >= threshold {
		return
	}
	fresh := make([]uint64, len(a.data))
	copy(fresh, a.data)
	a.data = fresh
}

// setStorage is a hash set of entity ids. Per DESIGN.md, this uses the
// standard library map rather than github.com/TomTonic/Set3: every
// observed Set3 call site in the teacher corpus only ever calls
// Add/Remove/Clone/AddAll/Equals/From/Empty/EmptyWithCapacity, never a
// full-membership enumeration — which array<->set conversion requires on
// every threshold crossing. Using an unconfirmed method on a real
// third-party type would be worse than the plain map this replaces.
type setStorage struct {
	data map[uint64]struct{}
}

func newSetStorage(capacity int) *setStorage {
	return &setStorage{data: make(map[uint64]struct{}, capacity)}
}

func (s *setStorage) add(id uint64) bool {
	if _, ok := s.data[id]; ok {
		return false
	}
	s.data[id] = struct{}{}
	return true
}

func (s *setStorage) remove(id uint64) bool {
	if _, ok := s.data[id]; !ok {
		return false
	}
	delete(s.data, id)
	return true
}

func (s *setStorage) contains(id uint64) bool {
	_, ok := s.data[id]
	return ok
}

func (s *setStorage) count() int { return len(s.data) }

func (s *setStorage) ids() []uint64 {
	out := make([]uint64, 0, len(s.data))
	for id := range s.data {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

func (s *setStorage) clear() { s.data = make(map[uint64]struct{}) }

// cap approximates a set's capacity as its current length: Go maps expose
// no capacity introspection, so this is the best a caller can observe
// about slack without walking bucket internals.
func (s *setStorage) cap() int { return len(s.data) }
