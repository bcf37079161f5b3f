package index

import "github.com/hellblazer/tetra/node"

// Option configures an Index during construction, following the
// functional-options pattern (grounded on scigolib-hdf5's
// FileWriterOption/WithLazyRebalancing shape — the teacher multimap takes
// no configuration at all, so this ambient concern is enriched from the
// rest of the example pack rather than the teacher).
type Option func(*Config)

// SpanningPolicy controls how InsertBounded handles an entity whose
// bounding box spans more than one cell at the level chosen for it.
type SpanningPolicy int

const (
	// SpanningSingleCell collapses a multi-cell bound to the single cell
	// at the lowest common ancestor level of its two corners, so a
	// spanning entity is recorded exactly once.
	SpanningSingleCell SpanningPolicy = iota
	// SpanningReplicate records the entity at all six type cells of every
	// cube, at the chosen level, that its bound covers (including tets of
	// those cubes the bound itself does not overlap), bounded by
	// MaxSpanCells.
	SpanningReplicate
)

func (p SpanningPolicy) String() string {
	switch p {
	case SpanningSingleCell:
		return "single-cell"
	case SpanningReplicate:
		return "replicate"
	default:
		return "unknown"
	}
}

// Config holds the tunables of an Index. Use New(opts...) to build one
// with defaults applied, or pass Options directly to index.New.
type Config struct {
	// MaxEntitiesPerNode is the largest entity count a leaf node holds; an
	// insert that takes it above this splits it into its Bey children
	// (spec §4.9).
	MaxEntitiesPerNode int
	// MergeThreshold is the combined entity count at or below which
	// sibling leaf children are merged back into their parent.
	MergeThreshold int
	// ArrayThreshold is the entity count at which a node's storage
	// switches from sorted array to hash set (spec §4.7); passed through
	// to node.New for every Node the index creates.
	ArrayThreshold int
	// CompactionThreshold is the load factor below which array storage
	// reclaims slack capacity.
	CompactionThreshold float64
	// ArrayInitialCapacity is the starting capacity of a freshly created
	// node's storage.
	ArrayInitialCapacity int
	// UseArrayNodes enables the adaptive array<->set storage switch; if
	// false, every node starts and stays in hash-set form.
	UseArrayNodes bool
	// AlwaysUseArrayNodes forces every node to stay in array storage
	// regardless of ArrayThreshold, overriding UseArrayNodes.
	AlwaysUseArrayNodes bool
	// EnableNodeCompaction gates whether array storage ever reclaims
	// slack capacity at all.
	EnableNodeCompaction bool
	// MaxDepth bounds refinement below tetra.LMax, for callers that want
	// a shallower working domain.
	MaxDepth uint8
	// SpanningPolicy controls how InsertBounded resolves an entity whose
	// bounding box spans more than one cell.
	SpanningPolicy SpanningPolicy
	// MaxSpanCells bounds the number of cells InsertBounded will record a
	// SpanningReplicate entity at before failing with StructuralConflict.
	MaxSpanCells int
}

// DefaultConfig returns the configuration applied when New is called with
// no options.
func DefaultConfig() Config {
	return Config{
		MaxEntitiesPerNode:   32,
		MergeThreshold:       16,
		ArrayThreshold:       node.DefaultArrayThreshold,
		CompactionThreshold:  node.DefaultCompactionThreshold,
		ArrayInitialCapacity: 4,
		UseArrayNodes:        true,
		AlwaysUseArrayNodes:  false,
		EnableNodeCompaction: true,
		MaxDepth:             21,
		SpanningPolicy:       SpanningSingleCell,
		MaxSpanCells:         64,
	}
}

// WithMaxEntitiesPerNode sets the split threshold.
func WithMaxEntitiesPerNode(n int) Option {
	return func(c *Config) { c.MaxEntitiesPerNode = n }
}

// WithMergeThreshold sets the merge threshold.
func WithMergeThreshold(n int) Option {
	return func(c *Config) { c.MergeThreshold = n }
}

// WithArrayThreshold sets the per-node array/set storage switch point.
func WithArrayThreshold(n int) Option {
	return func(c *Config) { c.ArrayThreshold = n }
}

// WithCompactionRatio sets the array storage compaction load factor.
func WithCompactionRatio(ratio float64) Option {
	return func(c *Config) { c.CompactionThreshold = ratio }
}

// WithArrayInitialCapacity sets a freshly created node's starting storage
// capacity.
func WithArrayInitialCapacity(n int) Option {
	return func(c *Config) { c.ArrayInitialCapacity = n }
}

// WithArrayNodes enables or disables the adaptive array<->set storage
// switch.
func WithArrayNodes(use bool) Option {
	return func(c *Config) { c.UseArrayNodes = use }
}

// WithAlwaysArrayNodes forces every node to stay in array storage
// regardless of ArrayThreshold.
func WithAlwaysArrayNodes(always bool) Option {
	return func(c *Config) { c.AlwaysUseArrayNodes = always }
}

// WithNodeCompaction toggles whether array storage ever reclaims slack
// capacity.
func WithNodeCompaction(enabled bool) Option {
	return func(c *Config) { c.EnableNodeCompaction = enabled }
}

// WithMaxDepth bounds refinement depth below tetra.LMax.
func WithMaxDepth(depth uint8) Option {
	return func(c *Config) { c.MaxDepth = depth }
}

// WithSpanningPolicy sets how InsertBounded resolves a multi-cell bound.
func WithSpanningPolicy(p SpanningPolicy) Option {
	return func(c *Config) { c.SpanningPolicy = p }
}

// WithMaxSpanCells bounds how many cells a SpanningReplicate insert may
// touch before failing.
func WithMaxSpanCells(n int) Option {
	return func(c *Config) { c.MaxSpanCells = n }
}

func resolveConfig(opts []Option) Config {
	c := DefaultConfig()
	for _, opt := range opts {
		opt(&c)
	}
	return c
}
