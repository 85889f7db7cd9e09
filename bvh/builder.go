package bvh

import (
	"github.com/achilleasa/raycast/log"
	"github.com/achilleasa/raycast/scene"
	"github.com/achilleasa/raycast/types"
)

// Centroid bounds thinner than this along the split axis cannot be split any
// further and are turned into a leaf.
const centroidEpsilon = 1e-6

type builder struct {
	logger log.Logger
	opts   Options

	// The input primitives and their cached bounds.
	prims []scene.Primitive
	info  []primitiveInfo

	// Primitives in leaf order, and the input index of each one.
	ordered      []scene.Primitive
	orderedIndex []int

	arena *nodeArena

	// Strategies tried in order to split a primitive range.
	chain []splitStrategy

	// Running count of emitted nodes.
	totalNodes int
	treelets   int
}

func newBuilder(prims []scene.Primitive, opts Options) *builder {
	return &builder{
		logger:       log.New("bvh"),
		opts:         opts,
		prims:        prims,
		info:         collectInfo(prims),
		ordered:      make([]scene.Primitive, len(prims)),
		orderedIndex: make([]int, len(prims)),
		arena:        newNodeArena(2 * len(prims)),
		chain:        splitChain(opts.Split),
	}
}

// build constructs the tree with the configured policy and returns the arena
// index of its root.
func (b *builder) build() int32 {
	if b.opts.Split == SplitHLBVH {
		return b.buildHLBVH()
	}

	var orderedCount int
	return b.recursiveBuild(b.info, &orderedCount)
}

// recursiveBuild builds the subtree for info and appends its primitives to
// the ordered list.
func (b *builder) recursiveBuild(info []primitiveInfo, orderedCount *int) int32 {
	bounds, centroidBounds := rangeBounds(info)
	if len(info) == 1 {
		return b.emitLeaf(info, bounds, orderedCount)
	}

	axis := centroidBounds.MaxExtent()
	if centroidBounds.Max[axis]-centroidBounds.Min[axis] < centroidEpsilon {
		return b.emitLeaf(info, bounds, orderedCount)
	}

	r := splitRange{
		axis:           axis,
		bounds:         bounds,
		centroidBounds: centroidBounds,
		maxLeafPrims:   b.opts.MaxPrimsInLeaf,
	}
	for _, strategy := range b.chain {
		mid, outcome := strategy.split(info, r)
		switch outcome {
		case splitAsLeaf:
			return b.emitLeaf(info, bounds, orderedCount)
		case splitPartitioned:
			b.totalNodes++
			left := b.recursiveBuild(info[:mid], orderedCount)
			right := b.recursiveBuild(info[mid:], orderedCount)
			return b.arena.addInterior(axis, left, right)
		}
	}

	// Unreachable: the last strategy of every chain splits any range with
	// two or more primitives.
	assert(false, "no split strategy accepted a range of %d primitives", len(info))
	return b.emitLeaf(info, bounds, orderedCount)
}

func (b *builder) emitLeaf(info []primitiveInfo, bounds types.BBox, orderedCount *int) int32 {
	first := *orderedCount
	for i := range info {
		b.place(first+i, info[i].index)
	}
	*orderedCount += len(info)
	b.totalNodes++
	return b.arena.addLeaf(first, len(info), bounds)
}

// place stores input primitive primIndex at slot of the ordered list.
func (b *builder) place(slot, primIndex int) {
	b.ordered[slot] = b.prims[primIndex]
	b.orderedIndex[slot] = primIndex
}
