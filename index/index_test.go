package index

import (
	"errors"
	"sync"
	"testing"

	"github.com/hellblazer/tetra"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

// fakeEntityManager is an in-memory EntityManager for tests, grounded on
// the scigolib-hdf5 testify scenario-test style: set up a small concrete
// fixture and assert on observable behavior.
type fakeEntityManager struct {
	mu        sync.Mutex
	positions map[uint64]r3.Vec
	locations map[uint64]tetra.Key
}

func newFakeEntityManager() *fakeEntityManager {
	return &fakeEntityManager{
		positions: make(map[uint64]r3.Vec),
		locations: make(map[uint64]tetra.Key),
	}
}

func (f *fakeEntityManager) Position(id uint64) (r3.Vec, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.positions[id]
	return p, ok
}

func (f *fakeEntityManager) AddLocation(id uint64, key tetra.Key) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.locations[id] = key
}

func (f *fakeEntityManager) RemoveLocation(id uint64, key tetra.Key) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.locations, id)
}

func (f *fakeEntityManager) place(id uint64, p r3.Vec) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.positions[id] = p
}

type sequentialIDs struct {
	mu   sync.Mutex
	next uint64
}

func (s *sequentialIDs) Next() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	return s.next
}

func TestInsertLookupRemoveIdempotence(t *testing.T) {
	em := newFakeEntityManager()
	idx := New(em, &sequentialIDs{}, WithMaxDepth(4))

	pos := r3.Vec{X: 10, Y: 10, Z: 10}
	em.place(1, pos) // placeholder id, corrected after Insert below

	id, key, err := idx.Insert(pos)
	require.NoError(t, err)
	em.place(id, pos)

	ids, err := idx.Lookup(key)
	require.NoError(t, err)
	require.Contains(t, ids, id)

	err = idx.Remove(id, key)
	require.NoError(t, err)

	_, err = idx.Lookup(key)
	require.Error(t, err)
	require.True(t, tetra.IsNotFound(err))

	// Removing again must fail, not silently succeed.
	err = idx.Remove(id, key)
	require.Error(t, err)
}

func TestSplitOnOverflow(t *testing.T) {
	em := newFakeEntityManager()
	idx := New(em, &sequentialIDs{}, WithMaxDepth(6), WithMaxEntitiesPerNode(2))

	var key tetra.Key
	for i := 0; i < 3; i++ {
		// Spread entities across distinct points within the same coarse
		// cell so the split actually separates them into different
		// children instead of hitting the degenerate same-child case.
		pos := r3.Vec{X: float64(1000 + i), Y: float64(1000 + i*2), Z: float64(1000 + i*3)}
		id, k, err := idx.Insert(pos)
		require.NoError(t, err)
		em.place(id, pos)
		key = k
	}

	stats := idx.Stats()
	require.Equal(t, 3, stats.TotalEntities)
	_ = key
}

func TestEntitiesInRegion(t *testing.T) {
	em := newFakeEntityManager()
	idx := New(em, &sequentialIDs{}, WithMaxDepth(5))

	inside := r3.Vec{X: 100, Y: 100, Z: 100}
	outside := r3.Vec{X: 2_000_000, Y: 2_000_000, Z: 2_000_000}

	idIn, _, err := idx.Insert(inside)
	require.NoError(t, err)
	em.place(idIn, inside)

	idOut, _, err := idx.Insert(outside)
	require.NoError(t, err)
	em.place(idOut, outside)

	found, err := idx.EntitiesInRegion(r3.Vec{X: 0, Y: 0, Z: 0}, r3.Vec{X: 500, Y: 500, Z: 500})
	require.NoError(t, err)
	require.Contains(t, found, idIn)
	require.NotContains(t, found, idOut)
}

func TestKNearestNeighbors(t *testing.T) {
	em := newFakeEntityManager()
	idx := New(em, &sequentialIDs{}, WithMaxDepth(6))

	points := []r3.Vec{
		{X: 100, Y: 100, Z: 100},
		{X: 101, Y: 100, Z: 100},
		{X: 500_000, Y: 500_000, Z: 500_000},
	}
	for _, p := range points {
		id, _, err := idx.Insert(p)
		require.NoError(t, err)
		em.place(id, p)
	}

	got, err := idx.KNearestNeighbors(r3.Vec{X: 100, Y: 100, Z: 100}, 2, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
}

func TestInsertIDIdempotent(t *testing.T) {
	em := newFakeEntityManager()
	idx := New(em, &sequentialIDs{}, WithMaxDepth(4))

	pos := r3.Vec{X: 20, Y: 20, Z: 20}
	em.place(42, pos)

	key1, err := idx.InsertID(42, pos)
	require.NoError(t, err)

	key2, err := idx.InsertID(42, pos)
	require.NoError(t, err)
	require.Equal(t, key1, key2)

	ids, err := idx.Lookup(key1)
	require.NoError(t, err)
	require.Equal(t, 1, len(ids))
	require.Contains(t, ids, uint64(42))

	stats := idx.Stats()
	require.Equal(t, 1, stats.TotalEntities)
}

func TestInsertBoundedSingleCell(t *testing.T) {
	em := newFakeEntityManager()
	idx := New(em, &sequentialIDs{}, WithMaxDepth(6), WithSpanningPolicy(SpanningSingleCell))

	id, keys, err := idx.InsertBounded(
		r3.Vec{X: 100, Y: 100, Z: 100},
		r3.Vec{X: 110, Y: 105, Z: 103},
	)
	require.NoError(t, err)
	require.Len(t, keys, 1)

	ids, err := idx.Lookup(keys[0])
	require.NoError(t, err)
	require.Contains(t, ids, id)
}

func TestInsertBoundedReplicate(t *testing.T) {
	em := newFakeEntityManager()
	idx := New(em, &sequentialIDs{}, WithMaxDepth(6), WithSpanningPolicy(SpanningReplicate))

	id, keys, err := idx.InsertBounded(
		r3.Vec{X: 0, Y: 0, Z: 0},
		r3.Vec{X: 2_000_000, Y: 2_000_000, Z: 2_000_000},
	)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(keys), 1)

	for _, key := range keys {
		ids, err := idx.Lookup(key)
		require.NoError(t, err)
		require.Contains(t, ids, id)
	}
}

func TestInsertBoundedReplicateExceedsMaxSpanCells(t *testing.T) {
	em := newFakeEntityManager()
	idx := New(em, &sequentialIDs{},
		WithMaxDepth(6),
		WithSpanningPolicy(SpanningReplicate),
		WithMaxSpanCells(1),
	)

	_, _, err := idx.InsertBounded(
		r3.Vec{X: 0, Y: 0, Z: 0},
		r3.Vec{X: 2_000_000, Y: 2_000_000, Z: 2_000_000},
	)
	require.Error(t, err)
	require.True(t, errors.Is(err, tetra.ErrStructuralConflict))
}

func TestKeyStreamSplit(t *testing.T) {
	em := newFakeEntityManager()
	idx := New(em, &sequentialIDs{}, WithMaxDepth(4))
	for i := 0; i < 4; i++ {
		p := r3.Vec{X: float64(100 * (i + 1)), Y: float64(50 * (i + 1)), Z: float64(25 * (i + 1))}
		id, _, err := idx.Insert(p)
		require.NoError(t, err)
		em.place(id, p)
	}

	stream := idx.KeyStream()
	var all []tetra.Key
	for k := range stream.All() {
		all = append(all, k)
	}
	require.Equal(t, stream.Len(), len(all))

	left, right, ok := stream.Split()
	if stream.Len() >= 2 {
		require.True(t, ok)
		require.Equal(t, stream.Len(), left.Len()+right.Len())
	}
}
