package tetra

import (
	"encoding/binary"
	"fmt"
)

// Key is a 128-bit tetrahedral-Morton (TM) index: a space-filling-curve
// address for a Tet that preserves spatial locality across refinement
// levels. Each of up to LMax levels contributes a six-bit group — three
// coordinate (cube-id/octant) bits followed by three type bits — packed
// most-significant-level-first into HighBits then LowBits, the same way
// the teacher's key.go packs a numeric value MSB-first into a byte slice
// so that unsigned lexicographic comparison matches the intended order.
// Level 21 (the deepest) only has room for four bits in LowBits and two
// in HighBits (bits 62-63 of HighBits are always zero); see Encode.
//
// Key is a plain comparable struct, not a slice: unlike the teacher's
// Key []byte (which every store/return path must Clone to avoid aliasing
// shared backing arrays), a Key value can be passed, returned and used as
// a map key directly.
type Key struct {
	HighBits uint64
	LowBits  uint64
	Level    uint8
}

// RootKey returns the level-0 key for tetrahedron type t.
func RootKey(t uint8) (Key, error) {
	if t > 5 {
		return Key{}, newErr(InvalidIndex, "RootKey", "type must be in [0,5]")
	}
	return Key{Level: 0}.withGroup(0, 0, t), nil
}

// withGroup returns a copy of k with level l's group set to
// (cubeID<<3 | typ), packed level-then-hi-then-lo as described on Key.
func (k Key) withGroup(l uint8, cubeID uint8, typ uint8) Key {
	group := uint64(cubeID&0x7)<<3 | uint64(typ&0x7)
	if l < LMax {
		shift := uint(6 * (20 - l))
		if shift < 64 {
			k.LowBits &^= 0x3F << shift
			k.LowBits |= group << shift
		} else {
			hiShift := shift - 64
			k.HighBits &^= 0x3F << hiShift
			k.HighBits |= group << hiShift
		}
		return k
	}
	// Level 21: four bits (coordBits<<1 | typeBits-hi-bit omitted? no —
	// per spec the six group bits split 4-low/2-high) go into
	// LowBits[60:64), and the remaining two bits into HighBits[60:62);
	// HighBits[62:64) must stay zero.
	k.LowBits &^= uint64(0xF) << 60
	k.LowBits |= (group & 0xF) << 60
	k.HighBits &^= uint64(0x3) << 60
	k.HighBits |= ((group >> 4) & 0x3) << 60
	return k
}

// group returns level l's six-bit (cubeID<<3|typ) group.
func (k Key) group(l uint8) uint8 {
	if l < LMax {
		shift := uint(6 * (20 - l))
		if shift < 64 {
			return uint8((k.LowBits >> shift) & 0x3F)
		}
		return uint8((k.HighBits >> (shift - 64)) & 0x3F)
	}
	low := uint8((k.LowBits >> 60) & 0xF)
	high := uint8((k.HighBits >> 60) & 0x3)
	return low | high<<4
}

// CubeID returns the cube-octant bits of level l's group.
func (k Key) CubeID(l uint8) uint8 { return k.group(l) >> 3 }

// TypeAt returns the tetrahedron type bits of level l's group.
func (k Key) TypeAt(l uint8) uint8 { return k.group(l) & 0x7 }

// Type returns the type of the tetrahedron the key addresses, i.e. the
// type bits of its deepest populated level.
func (k Key) Type() uint8 {
	if k.Level == 0 {
		return k.group(0) & 0x7
	}
	return k.TypeAt(k.Level)
}

// Encode returns the TM-index key of t in O(t.Level) with small
// constants: the geometric (type-independent) half comes from
// interleaving t's anchor coordinates once via mortonInterleave, and the
// per-level type is chained forward through the childType table starting
// from a root type recovered by a handful of cheap containment checks —
// replacing a repeated Parent() walk (itself a trial subdivision search)
// with table lookups.
func Encode(t Tet) (Key, error) {
	if t.Level > LMax {
		return Key{}, newErr(InvalidLevel, "Encode", "level exceeds LMax")
	}
	v := t.Vertices()
	rootType, found := uint8(0), false
	for rt := uint8(0); rt < 6; rt++ {
		root, _ := RootTet(rt)
		if root.Contains(v[0]) && root.Contains(v[1]) && root.Contains(v[2]) && root.Contains(v[3]) {
			rootType, found = rt, true
			break
		}
	}
	if !found {
		return Key{}, newErr(InvalidDomain, "Encode", "tet's vertices matched no root type")
	}

	k := Key{Level: t.Level}.withGroup(0, 0, rootType)
	if t.Level == 0 {
		return k, nil
	}

	m := mortonInterleave(t.V0)
	typ := rootType
	for l := uint8(1); l <= t.Level; l++ {
		shift := uint(3 * (LMax - l))
		cid := uint8((m >> shift) & 0x7)
		typ = childType[typ][cid]
		k = k.withGroup(l, cid, typ)
	}
	return k, nil
}

// Decode reconstructs the Tet addressed by k by descending from the root,
// following each level's recorded cube-id through Child.
func Decode(k Key) (Tet, error) {
	rootType := k.group(0) & 0x7
	cur, err := RootTet(rootType)
	if err != nil {
		return Tet{}, err
	}
	for l := uint8(1); l <= k.Level; l++ {
		g := k.group(l)
		cid := g >> 3
		storeIdx := int(cid)
		beyID := indexToBey[cur.Type][storeIdx]
		children := subdivideAll(cur)
		cur = children[beyID]
		if cur.Type != g&0x7 {
			return Tet{}, newErr(InvalidKey, "Decode", "type bits inconsistent with cube-id bits at this level")
		}
	}
	return cur, nil
}

// ParentKey returns the key one level up from k, and false if k is at
// level 0.
func (k Key) ParentKey() (Key, bool) {
	if k.Level == 0 {
		return Key{}, false
	}
	p := k
	p.Level--
	p = p.withGroup(k.Level, 0, 0)
	return p, true
}

// Less reports whether k orders before other: first by Level (shallower
// keys sort before their own descendants' deeper groups, since an
// unpopulated trailing group is encoded as zero), then by HighBits, then
// by LowBits, matching spec §3's ordering rule.
func (k Key) Less(other Key) bool {
	if k.Level != other.Level {
		return k.Level < other.Level
	}
	if k.HighBits != other.HighBits {
		return k.HighBits < other.HighBits
	}
	return k.LowBits < other.LowBits
}

// Equal reports whether k and other address the same key bits and level.
func (k Key) Equal(other Key) bool {
	return k.Level == other.Level && k.HighBits == other.HighBits && k.LowBits == other.LowBits
}

// Ancestor reports whether k is an ancestor of (or equal to) other: every
// populated level of k must match the corresponding level of other.
func (k Key) Ancestor(other Key) bool {
	if k.Level > other.Level {
		return false
	}
	for l := uint8(0); l <= k.Level; l++ {
		if k.group(l) != other.group(l) {
			return false
		}
	}
	return true
}

// Bytes returns k's canonical 17-byte wire encoding: level (1 byte), then
// LowBits and HighBits, each 8 bytes little-endian.
func (k Key) Bytes() []byte {
	var b [17]byte
	b[0] = k.Level
	binary.LittleEndian.PutUint64(b[1:9], k.LowBits)
	binary.LittleEndian.PutUint64(b[9:17], k.HighBits)
	return b[:]
}

// KeyFromBytes parses the wire encoding produced by Bytes and rejects the
// result with the InvalidKey error from Validate if it is not a valid key.
func KeyFromBytes(b []byte) (Key, error) {
	if len(b) != 17 {
		return Key{}, newErr(InvalidKey, "KeyFromBytes", "want 17 bytes")
	}
	k := Key{
		Level:    b[0],
		LowBits:  binary.LittleEndian.Uint64(b[1:9]),
		HighBits: binary.LittleEndian.Uint64(b[9:17]),
	}
	if err := k.Validate(); err != nil {
		return Key{}, err
	}
	return k, nil
}

// String renders k as "L<level>:<high>:<low>" in hex, for diagnostics.
func (k Key) String() string {
	return fmt.Sprintf("L%d:%016x:%016x", k.Level, k.HighBits, k.LowBits)
}

// DeferredKey is the lazy half of spec §4.3's Key sum type
// (Key = Encoded | Deferred{Tet}): it holds a Tet without paying for
// Encode until it is actually compared against an already-encoded Key.
// Two DeferredKeys compare by their underlying Tets directly (cheap
// value equality, no Encode at all); hashing a DeferredKey (e.g. as a
// map key a caller builds itself) uses the coordinate+level+type triple
// from HashSeed, not encoded bits.
type DeferredKey struct {
	tet      Tet
	resolved *Key
}

// Defer wraps t as a DeferredKey without computing its Key bits.
func Defer(t Tet) DeferredKey {
	return DeferredKey{tet: t}
}

// Resolve computes (and memoizes) d's underlying Key via Encode.
func (d *DeferredKey) Resolve() (Key, error) {
	if d.resolved != nil {
		return *d.resolved, nil
	}
	k, err := Encode(d.tet)
	if err != nil {
		return Key{}, err
	}
	d.resolved = &k
	return k, nil
}

// EqualTet reports whether d and other address the same tetrahedron,
// without resolving either to a Key.
func (d DeferredKey) EqualTet(other DeferredKey) bool {
	return d.tet == other.tet
}

// EqualKey reports whether d resolves to the same Key as k, resolving d
// via Encode (once, memoized) if it hasn't been already.
func (d *DeferredKey) EqualKey(k Key) (bool, error) {
	rk, err := d.Resolve()
	if err != nil {
		return false, err
	}
	return rk.Equal(k), nil
}

// HashSeed returns the coordinate+level+type triple spec §4.3 specifies
// as the hash basis for a Deferred key, so a caller building its own hash
// map keyed by DeferredKey never has to force an Encode just to bucket
// one.
func (d DeferredKey) HashSeed() (v0 [3]int64, level uint8, typ uint8) {
	return d.tet.V0, d.tet.Level, d.tet.Type
}

// Validate reports a non-nil *Error if k fails structural validation: an
// out-of-range level, non-zero padding beyond Level's populated groups, or
// (for level 21) non-zero bits 62-63 of HighBits.
func (k Key) Validate() error {
	if k.Level > LMax {
		return newErr(InvalidKey, "Validate", "level exceeds LMax")
	}
	if k.Level < LMax {
		shift := uint(6 * (20 - k.Level))
		var mask uint64
		if shift < 64 {
			if shift > 0 {
				mask = (uint64(1) << shift) - 1
			}
			if k.LowBits&mask != 0 {
				return newErr(InvalidKey, "Validate", "non-zero padding below populated levels")
			}
		} else {
			if k.LowBits != 0 {
				return newErr(InvalidKey, "Validate", "non-zero LowBits padding below populated levels")
			}
			hiShift := shift - 64
			mask = (uint64(1) << hiShift) - 1
			if k.HighBits&mask != 0 {
				return newErr(InvalidKey, "Validate", "non-zero padding below populated levels")
			}
		}
	}
	if k.HighBits>>62 != 0 {
		return newErr(InvalidKey, "Validate", "HighBits bits 62-63 must be zero")
	}
	for l := uint8(0); l <= k.Level; l++ {
		if k.group(l)&0x7 > 5 {
			return newErr(InvalidKey, "Validate", "type bits out of range [0,5]")
		}
	}
	return nil
}
