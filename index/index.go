// Package index implements the spatial index built on top of the tetra
// package's SFC key algebra: entity insertion, removal, lookup, region and
// k-nearest-neighbor queries, and the adaptive split/merge balancer.
package index

import (
	"sync"

	"github.com/hellblazer/tetra"
	"gonum.org/v1/gonum/spatial/r3"
)

// EntityManager is the caller-supplied collaborator that owns entity
// positions and is told about every location change the index makes, so
// it can keep a reverse (entity -> key) index for its own purposes.
type EntityManager interface {
	Position(id uint64) (r3.Vec, bool)
	AddLocation(id uint64, key tetra.Key)
	RemoveLocation(id uint64, key tetra.Key)
}

// IDGenerator mints new entity ids on Insert.
type IDGenerator interface{ Next() uint64 }

// Index is the concurrency-safe spatial index. Its zero value is not
// usable; construct with New.
//
// Index embeds sync.RWMutex exactly as the teacher's arrayBasedMultiMap
// does (RLock/RUnlock on reads, Lock/Unlock on writes); per spec §5, it
// never calls back into em or idGen while holding the lock — collaborator
// calls happen in the wrapper methods below, outside the critical
// section, mirroring the teacher's rule of never running user code under
// mu.
type Index struct {
	mu    sync.RWMutex
	cfg   Config
	store *store
	em    EntityManager
	idGen IDGenerator
}

// New constructs an Index over the given collaborators.
func New(em EntityManager, idGen IDGenerator, opts ...Option) *Index {
	return &Index{
		cfg:   resolveConfig(opts),
		store: newStore(),
		em:    em,
		idGen: idGen,
	}
}

// Insert locates pos within the coarsest (level-0) root tet, mints a new
// entity id, records it there, and triggers a split if the cell now holds
// more than MaxEntitiesPerNode entities. Repeated splits (Subdivide) are
// what actually grows the tree's depth, up to the index's configured
// MaxDepth, as occupancy demands it — Insert itself never guesses a
// starting depth.
func (idx *Index) Insert(pos r3.Vec) (uint64, tetra.Key, error) {
	key, err := idx.locate(pos)
	if err != nil {
		return 0, tetra.Key{}, err
	}
	id := idx.idGen.Next()
	idx.insertAt(id, key)
	idx.em.AddLocation(id, key)
	return id, key, nil
}

// InsertID records pos under a caller-supplied id instead of minting a
// fresh one via idGen. Repeated calls with the same id and position are
// idempotent (spec §8 scenario S2): node.Add already no-ops on a
// duplicate id, so re-inserting the same (id, pos) pair neither
// double-counts the entity nor retriggers a spurious split.
func (idx *Index) InsertID(id uint64, pos r3.Vec) (tetra.Key, error) {
	key, err := idx.locate(pos)
	if err != nil {
		return tetra.Key{}, err
	}
	idx.insertAt(id, key)
	idx.em.AddLocation(id, key)
	return key, nil
}

// locate resolves pos to the level-0 cell key it falls within, encoding
// the located Tet at once through tetra.DeferredKey.Resolve.
func (idx *Index) locate(pos r3.Vec) (tetra.Key, error) {
	p, err := tetra.GridPoint(pos)
	if err != nil {
		return tetra.Key{}, err
	}
	t, err := tetra.Locate(p, 0)
	if err != nil {
		return tetra.Key{}, err
	}
	dk := tetra.Defer(t)
	return dk.Resolve()
}

// insertAt records id at key, marks child presence on key's parent, and
// triggers a split if the cell now overflows — the shared tail of Insert,
// InsertID and InsertBounded.
func (idx *Index) insertAt(id uint64, key tetra.Key) {
	idx.mu.Lock()
	n := idx.store.getOrCreate(key, idx.cfg)
	n.Add(id)
	count := n.Count()
	idx.markChildPresence(key)
	idx.mu.Unlock()

	if count > idx.cfg.MaxEntitiesPerNode {
		_ = idx.Subdivide(key)
	}
}

// Remove deletes id from the cell at key, dropping the cell if it becomes
// empty, and triggers a merge check on the parent cell.
func (idx *Index) Remove(id uint64, key tetra.Key) error {
	idx.mu.Lock()
	n := idx.store.get(key)
	if n == nil {
		idx.mu.Unlock()
		return wrapNotFound("Remove", "no entities at this key")
	}
	if !n.Remove(id) {
		idx.mu.Unlock()
		return wrapNotFound("Remove", "entity id not present at this key")
	}
	empty := n.Empty()
	if empty {
		idx.store.delete(key)
	}
	idx.mu.Unlock()

	idx.em.RemoveLocation(id, key)

	if empty {
		if parent, ok := key.ParentKey(); ok {
			_ = idx.Merge(parent)
		}
	}
	return nil
}

// Lookup returns the entity ids recorded at key.
func (idx *Index) Lookup(key tetra.Key) ([]uint64, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	n := idx.store.get(key)
	if n == nil {
		return nil, wrapNotFound("Lookup", "no entities at this key")
	}
	return n.IDs(), nil
}

// Enclosing returns the key of the cell at level that would contain pos.
func (idx *Index) Enclosing(pos r3.Vec, level uint8) (tetra.Key, error) {
	p, err := tetra.GridPoint(pos)
	if err != nil {
		return tetra.Key{}, err
	}
	t, err := tetra.Locate(p, level)
	if err != nil {
		return tetra.Key{}, err
	}
	return tetra.Encode(t)
}

// FaceNeighbor returns the key of the occupied cell sharing face f with
// key's cell, if any is currently occupied in this index.
func (idx *Index) FaceNeighbor(key tetra.Key, f uint8) (tetra.Key, bool, error) {
	t, err := tetra.Decode(key)
	if err != nil {
		return tetra.Key{}, false, err
	}
	n, err := t.FaceNeighbor(f)
	if err != nil {
		return tetra.Key{}, false, nil
	}
	nk, err := tetra.Encode(n)
	if err != nil {
		return tetra.Key{}, false, err
	}
	idx.mu.RLock()
	occupied := idx.store.get(nk) != nil
	idx.mu.RUnlock()
	return nk, occupied, nil
}

// EdgeNeighbors returns the keys of occupied cells sharing edge e with
// key's cell.
func (idx *Index) EdgeNeighbors(key tetra.Key, e uint8) ([]tetra.Key, error) {
	t, err := tetra.Decode(key)
	if err != nil {
		return nil, err
	}
	neighbors, err := t.EdgeNeighbors(e)
	if err != nil {
		return nil, err
	}
	return idx.filterOccupied(neighbors), nil
}

// VertexNeighbors returns the keys of occupied cells sharing vertex v with
// key's cell, bounded by searchLimit tets visited during the BFS.
func (idx *Index) VertexNeighbors(key tetra.Key, v uint8, searchLimit int) ([]tetra.Key, error) {
	t, err := tetra.Decode(key)
	if err != nil {
		return nil, err
	}
	neighbors, err := t.VertexNeighbors(v, searchLimit)
	if err != nil {
		return nil, err
	}
	return idx.filterOccupied(neighbors), nil
}

func (idx *Index) filterOccupied(tets []tetra.Tet) []tetra.Key {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	var out []tetra.Key
	for _, t := range tets {
		k, err := tetra.Encode(t)
		if err != nil {
			continue
		}
		if idx.store.get(k) != nil {
			out = append(out, k)
		}
	}
	return out
}

// markChildPresence marks key present in its parent's childPresent
// bitmask, walking one level up; called with idx.mu already held.
func (idx *Index) markChildPresence(key tetra.Key) {
	parentKey, ok := key.ParentKey()
	if !ok {
		return
	}
	t, err := tetra.Decode(key)
	if err != nil {
		return
	}
	idx.markChildPresenceLocked(parentKey, t)
}

// Stats summarizes the index's current state, for diagnostics.
type Stats struct {
	TotalNodes       int
	ArrayNodes       int
	SetNodes         int
	TotalEntities    int
	Capacity         int
	AverageFillRatio float64
}

// Stats returns a snapshot of index statistics, aggregated from every
// occupied node's own node.NodeStats.
func (idx *Index) Stats() Stats {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	var s Stats
	s.TotalNodes = idx.store.count()
	for _, k := range idx.store.keys {
		n := idx.store.nodes[k]
		if n == nil {
			continue
		}
		ns := n.Stats()
		s.TotalEntities += ns.Count
		s.Capacity += ns.Cap
		if ns.Array {
			s.ArrayNodes++
		} else {
			s.SetNodes++
		}
	}
	if s.Capacity > 0 {
		s.AverageFillRatio = float64(s.TotalEntities) / float64(s.Capacity)
	}
	return s
}

func wrapNotFound(op, msg string) error {
	return &tetra.Error{Kind: tetra.NotFound, Op: op, Msg: msg, Err: tetra.ErrNotFound}
}
