package index

import (
	"github.com/hellblazer/tetra"
	"gonum.org/v1/gonum/spatial/r3"
)

// InsertBounded inserts an entity whose extent is given by an
// axis-aligned box [min, max] rather than a single point, applying the
// configured SpanningPolicy when the box spans more than one cell at the
// level chosen for it (spec §4.7's spanningPolicy option).
func (idx *Index) InsertBounded(min, max r3.Vec) (uint64, []tetra.Key, error) {
	lo, err := tetra.GridPoint(min)
	if err != nil {
		return 0, nil, err
	}
	hi, err := tetra.GridPoint(max)
	if err != nil {
		return 0, nil, err
	}
	level := idx.optimalLevel(lo, hi)

	loTet, err := tetra.Locate(lo, level)
	if err != nil {
		return 0, nil, err
	}
	hiTet, err := tetra.Locate(hi, level)
	if err != nil {
		return 0, nil, err
	}

	id := idx.idGen.Next()

	if loTet == hiTet && idx.cfg.SpanningPolicy != SpanningReplicate {
		key, err := tetra.Encode(loTet)
		if err != nil {
			return 0, nil, err
		}
		idx.insertAt(id, key)
		idx.em.AddLocation(id, key)
		return id, []tetra.Key{key}, nil
	}

	loKey, err := tetra.Encode(loTet)
	if err != nil {
		return 0, nil, err
	}
	hiKey, err := tetra.Encode(hiTet)
	if err != nil {
		return 0, nil, err
	}

	switch idx.cfg.SpanningPolicy {
	case SpanningSingleCell:
		lcaLevel := tetra.LowestCommonAncestorLevel(loKey, hiKey)
		anc := loTet
		for anc.Level > lcaLevel {
			p, ok := anc.Parent()
			if !ok {
				break
			}
			anc = p
		}
		key, err := tetra.Encode(anc)
		if err != nil {
			return 0, nil, err
		}
		idx.insertAt(id, key)
		idx.em.AddLocation(id, key)
		return id, []tetra.Key{key}, nil

	case SpanningReplicate:
		keys, err := idx.spanKeys(lo, hi, level)
		if err != nil {
			return 0, nil, err
		}
		if len(keys) > idx.cfg.MaxSpanCells {
			return 0, nil, &tetra.Error{Kind: tetra.StructuralConflict, Op: "InsertBounded", Msg: "entity bounds span more cells than MaxSpanCells allows", Err: tetra.ErrStructuralConflict}
		}
		for _, key := range keys {
			idx.insertAt(id, key)
			idx.em.AddLocation(id, key)
		}
		return id, keys, nil

	default:
		return 0, nil, &tetra.Error{Kind: tetra.StructuralConflict, Op: "InsertBounded", Msg: "unknown spanning policy", Err: tetra.ErrStructuralConflict}
	}
}

// spanKeys enumerates every level-`level` cube's six type-keys overlapping
// [lo, hi], mirroring EntitiesInRegion's candidate-grid walk (spec §4.8
// step 2) but returning keys rather than filtered entities.
func (idx *Index) spanKeys(lo, hi [3]int64, level uint8) ([]tetra.Key, error) {
	cell := tetra.CellLen(level)
	cubeLo := [3]int64{lo[0] / cell * cell, lo[1] / cell * cell, lo[2] / cell * cell}
	cubeHi := [3]int64{hi[0] / cell * cell, hi[1] / cell * cell, hi[2] / cell * cell}

	var keys []tetra.Key
	for x := cubeLo[0]; x <= cubeHi[0]; x += cell {
		for y := cubeLo[1]; y <= cubeHi[1]; y += cell {
			for z := cubeLo[2]; z <= cubeHi[2]; z += cell {
				for typ := uint8(0); typ < 6; typ++ {
					t := tetra.Tet{V0: [3]int64{x, y, z}, H: cell, Type: typ, Level: level}
					key, err := tetra.Encode(t)
					if err != nil {
						continue
					}
					keys = append(keys, key)
				}
			}
		}
	}
	return keys, nil
}
