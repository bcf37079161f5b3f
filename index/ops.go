package index

import (
	"container/heap"

	"github.com/hellblazer/tetra"
	"gonum.org/v1/gonum/spatial/r3"
)

// EntitiesInRegion returns every entity id whose recorded cell overlaps
// the axis-aligned box [min, max], verified against each entity's exact
// position via the EntityManager. It picks the deepest refinement level
// whose cell edge is larger than the box's largest extent (spec §4.8's
// "optimal level" step), then, at every level from 0 down to that one,
// probes all six types at every cube anchor the box covers. Cells deeper
// than that level are not probed. This is the teacher's
// array_based.go filter-candidates-then-exact-check pattern
// (ValuesBetweenInclusive) lifted from one linear scan to a bounded grid
// walk plus direct key lookups.
func (idx *Index) EntitiesInRegion(min, max r3.Vec) ([]uint64, error) {
	lo, err := tetra.GridPoint(min)
	if err != nil {
		return nil, err
	}
	hi, err := tetra.GridPoint(max)
	if err != nil {
		return nil, err
	}
	level := idx.optimalLevel(lo, hi)

	idx.mu.RLock()
	var candidateIDs []uint64
	for l := uint8(0); l <= level; l++ {
		cell := tetra.CellLen(l)
		cubeLo := [3]int64{lo[0] / cell * cell, lo[1] / cell * cell, lo[2] / cell * cell}
		cubeHi := [3]int64{hi[0] / cell * cell, hi[1] / cell * cell, hi[2] / cell * cell}
		for x := cubeLo[0]; x <= cubeHi[0]; x += cell {
			for y := cubeLo[1]; y <= cubeHi[1]; y += cell {
				for z := cubeLo[2]; z <= cubeHi[2]; z += cell {
					for typ := uint8(0); typ < 6; typ++ {
						t := tetra.Tet{V0: [3]int64{x, y, z}, H: cell, Type: typ, Level: l}
						key, err := tetra.Encode(t)
						if err != nil {
							continue
						}
						n := idx.store.get(key)
						if n == nil {
							continue
						}
						candidateIDs = append(candidateIDs, n.IDs()...)
					}
				}
			}
		}
	}
	idx.mu.RUnlock()

	seen := make(map[uint64]struct{}, len(candidateIDs))
	var out []uint64
	for _, id := range candidateIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		pos, ok := idx.em.Position(id)
		if !ok {
			continue
		}
		if withinBox(pos, min, max) {
			out = append(out, id)
		}
	}
	return out, nil
}

func withinBox(p, min, max r3.Vec) bool {
	return p.X >= min.X && p.X <= max.X &&
		p.Y >= min.Y && p.Y <= max.Y &&
		p.Z >= min.Z && p.Z <= max.Z
}

// optimalLevel returns the deepest level whose cube edge is still larger
// than the box's largest axis extent, bounded by the index's
// configured MaxDepth, so the grid walk in EntitiesInRegion visits a
// bounded, roughly-region-sized number of candidate cubes.
func (idx *Index) optimalLevel(lo, hi [3]int64) uint8 {
	extent := hi[0] - lo[0]
	if d := hi[1] - lo[1]; d > extent {
		extent = d
	}
	if d := hi[2] - lo[2]; d > extent {
		extent = d
	}
	if extent < 0 {
		extent = 0
	}
	var level uint8
	for level = 0; level < idx.cfg.MaxDepth; level++ {
		if tetra.CellLen(level+1) < extent+1 {
			break
		}
	}
	return level
}

// neighbor is one entry of the k-NN best-first search heap: a candidate
// entity at a known distance from the query point.
type neighbor struct {
	id   uint64
	dist float64
}

// neighborHeap is a max-heap by distance, so the farthest of the current
// best k candidates is always at the root and can be evicted in O(log k)
// once a closer candidate is found — grounded on the teacher's consistent
// preference for stdlib container types over hand-rolled ones; no third
// party heap library appears anywhere in the example pack.
type neighborHeap []neighbor

func (h neighborHeap) Len() int            { return len(h) }
func (h neighborHeap) Less(i, j int) bool  { return h[i].dist > h[j].dist }
func (h neighborHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *neighborHeap) Push(x any) { *h = append(*h, x.(neighbor)) }
func (h *neighborHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// cellCandidate is one entry of the k-NN frontier heap: an as-yet-unvisited
// cell, ordered by a conservative lower bound on how close it could hold
// anything to the query point.
type cellCandidate struct {
	tet   tetra.Tet
	bound float64
}

// cellHeap is a min-heap by bound, so the frontier cell that could possibly
// hold the closest unseen entity is always expanded next (best-first
// search) — grounded on the teacher's preference for stdlib container
// types, the same choice as neighborHeap above.
type cellHeap []cellCandidate

func (h cellHeap) Len() int            { return len(h) }
func (h cellHeap) Less(i, j int) bool  { return h[i].bound < h[j].bound }
func (h cellHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *cellHeap) Push(x any)         { *h = append(*h, x.(cellCandidate)) }
func (h *cellHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// cellBound returns a conservative lower bound on the squared distance
// from pos to any point inside t's enclosing cube: t's tetrahedron only
// occupies part of that cube, so this never overestimates the true
// distance to the nearest point t could actually contain.
func cellBound(pos r3.Vec, t tetra.Tet) float64 {
	var d float64
	coords := [3]float64{pos.X, pos.Y, pos.Z}
	lo := [3]float64{float64(t.V0[0]), float64(t.V0[1]), float64(t.V0[2])}
	h := float64(t.H)
	for a := 0; a < 3; a++ {
		switch {
		case coords[a] < lo[a]:
			diff := lo[a] - coords[a]
			d += diff * diff
		case coords[a] > lo[a]+h:
			diff := coords[a] - (lo[a] + h)
			d += diff * diff
		}
	}
	return d
}

// neighborSearchLimit bounds each AllNeighbors/VertexNeighbors walk the
// k-NN frontier expansion performs per cell.
const neighborSearchLimit = 4096

// KNearestNeighbors returns up to k entity ids nearest to pos, each no
// farther than maxDistance (a non-positive maxDistance means unbounded),
// sorted by ascending distance. It performs a best-first search over
// cells: the nearest unexplored cell (by a conservative point-to-cube
// lower bound) is always expanded next, using 26-cube (face, edge and
// vertex) adjacency so the frontier can pass through a cell diagonally
// without double-counting it, and the search stops as soon as that bound
// reaches the current k-th best distance (once k candidates are held) or
// exceeds maxDistance — at that point no unexplored cell can hold
// anything closer or within range (spec §4.8). The frontier visits only
// level-0 cells, so entities recorded at deeper keys are not seen.
func (idx *Index) KNearestNeighbors(pos r3.Vec, k int, maxDistance float64) ([]uint64, error) {
	if k <= 0 {
		return nil, nil
	}
	p, err := tetra.GridPoint(pos)
	if err != nil {
		return nil, err
	}
	start, err := tetra.Locate(p, 0)
	if err != nil {
		return nil, err
	}

	maxDistSq := -1.0
	if maxDistance > 0 {
		maxDistSq = maxDistance * maxDistance
	}

	best := &neighborHeap{}
	heap.Init(best)

	frontier := &cellHeap{{tet: start, bound: cellBound(pos, start)}}
	heap.Init(frontier)
	visited := map[tetra.Tet]struct{}{start: {}}

	for frontier.Len() > 0 {
		cur := (*frontier)[0]
		if best.Len() >= k && cur.bound >= (*best)[0].dist {
			break
		}
		if maxDistSq >= 0 && cur.bound > maxDistSq {
			break
		}
		heap.Pop(frontier)

		dk := tetra.Defer(cur.tet)
		key, err := dk.Resolve()
		if err == nil {
			idx.mu.RLock()
			var ids []uint64
			if n := idx.store.get(key); n != nil {
				ids = n.IDs()
			}
			idx.mu.RUnlock()
			if len(ids) > 0 {
				for _, id := range ids {
					epos, ok := idx.em.Position(id)
					if !ok {
						continue
					}
					d := dist2(pos, epos)
					if maxDistSq >= 0 && d > maxDistSq {
						continue
					}
					if best.Len() < k {
						heap.Push(best, neighbor{id: id, dist: d})
					} else if d < (*best)[0].dist {
						heap.Pop(best)
						heap.Push(best, neighbor{id: id, dist: d})
					}
				}
			}
		}

		neighbors, err := cur.tet.AllNeighbors(neighborSearchLimit)
		if err != nil {
			continue
		}
		for _, nb := range neighbors {
			if _, ok := visited[nb]; ok {
				continue
			}
			visited[nb] = struct{}{}
			heap.Push(frontier, cellCandidate{tet: nb, bound: cellBound(pos, nb)})
		}
	}

	out := make([]uint64, best.Len())
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = heap.Pop(best).(neighbor).id
	}
	return out, nil
}

func dist2(a, b r3.Vec) float64 {
	dx, dy, dz := a.X-b.X, a.Y-b.Y, a.Z-b.Z
	return dx*dx + dy*dy + dz*dz
}

// KeyStream returns a lazy, pull-style iterator (Go 1.23 range-over-func)
// over every currently occupied key, in sorted order, matching the
// teacher's go 1.25.4 toolchain directive. The returned Stream also
// supports Split for parallel-capable range consumption.
func (idx *Index) KeyStream() Stream {
	idx.mu.RLock()
	keys := idx.store.all()
	idx.mu.RUnlock()
	return Stream{keys: keys}
}

// Stream is a snapshot range of keys that can be iterated lazily or split
// into two independent sub-streams for parallel consumption.
type Stream struct {
	keys []tetra.Key
}

// All returns a range-over-func iterator over the stream's keys.
func (s Stream) All() func(yield func(tetra.Key) bool) {
	return func(yield func(tetra.Key) bool) {
		for _, k := range s.keys {
			if !yield(k) {
				return
			}
		}
	}
}

// Split divides the stream roughly in half, returning the two halves and
// false if the stream has fewer than two keys (not worth splitting).
func (s Stream) Split() (Stream, Stream, bool) {
	if len(s.keys) < 2 {
		return s, Stream{}, false
	}
	mid := len(s.keys) / 2
	return Stream{keys: s.keys[:mid]}, Stream{keys: s.keys[mid:]}, true
}

// Len returns the number of keys remaining in the stream.
func (s Stream) Len() int { return len(s.keys) }
