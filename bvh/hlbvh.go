package bvh

import (
	"sort"

	"github.com/achilleasa/raycast/types"
)

const (
	// Primitives whose codes agree on these bits belong to the same treelet.
	treeletMask = 0x3ffc0000

	// Highest code bit below the treelet mask; treelet construction starts
	// splitting on it.
	treeletFirstBit = 17
)

// treelet is a run of Morton-sorted primitives sharing the bits of treeletMask.
type treelet struct {
	start int
	prims []mortonPrimitive
}

// buildHLBVH sorts primitives along a Morton curve, builds a subtree for each
// treelet and merges the treelet roots into an upper tree using SAH.
func (b *builder) buildHLBVH() int32 {
	_, centroidBounds := rangeBounds(b.info)

	mortonPrims := make([]mortonPrimitive, len(b.info))
	for i := range b.info {
		offset := centroidBounds.Offset(b.info[i].centroid)
		mortonPrims[i] = mortonPrimitive{
			index: b.info[i].index,
			code:  encodeMorton3(offset.Mul(mortonScale)),
		}
	}
	radixSortMorton(mortonPrims)

	treelets := findTreelets(mortonPrims)
	b.treelets = len(treelets)

	// Treelets do not share any state; each one is built into its own arena
	// and writes primitives starting at its own offset of the ordered list.
	roots := make([]primitiveInfo, 0, len(treelets))
	for _, tr := range treelets {
		arena := newNodeArena(2 * len(tr.prims))
		root := b.emitLBVH(arena, tr.prims, tr.start, treeletFirstBit)

		root += b.arena.merge(arena)
		bounds := b.arena.nodes[root].bounds
		roots = append(roots, primitiveInfo{
			index:    int(root),
			bounds:   bounds,
			centroid: bounds.Center(),
		})
	}

	return b.buildUpperSAH(roots)
}

// findTreelets splits sorted Morton primitives into treelets.
func findTreelets(mortonPrims []mortonPrimitive) []treelet {
	var treelets []treelet
	for start, end := 0, 1; end <= len(mortonPrims); end++ {
		if end == len(mortonPrims) ||
			mortonPrims[start].code&treeletMask != mortonPrims[end].code&treeletMask {
			treelets = append(treelets, treelet{start: start, prims: mortonPrims[start:end]})
			start = end
		}
	}
	return treelets
}

// emitLBVH builds the subtree for a run of Morton primitives that agree on
// all code bits above bit. Primitives are placed at the ordered list starting
// at orderedOffset.
func (b *builder) emitLBVH(arena *nodeArena, mortonPrims []mortonPrimitive, orderedOffset, bit int) int32 {
	// Primitives sharing a Morton code always land in one leaf, which may
	// then exceed MaxPrimsInLeaf.
	if bit < 0 || len(mortonPrims) <= b.opts.MaxPrimsInLeaf {
		bounds := types.EmptyBBox()
		for i, mp := range mortonPrims {
			b.place(orderedOffset+i, mp.index)
			bounds = bounds.Union(b.info[mp.index].bounds)
		}
		b.totalNodes++
		return arena.addLeaf(orderedOffset, len(mortonPrims), bounds)
	}

	mask := uint32(1) << bit
	last := len(mortonPrims) - 1
	if mortonPrims[0].code&mask == mortonPrims[last].code&mask {
		return b.emitLBVH(arena, mortonPrims, orderedOffset, bit-1)
	}

	// The run is sorted and agrees on all higher bits, so bit flips from 0
	// to 1 exactly once.
	split := sort.Search(len(mortonPrims), func(i int) bool {
		return mortonPrims[i].code&mask != 0
	})
	assert(split > 0 && split < len(mortonPrims), "treelet split at %d for bit %d out of range", split, bit)

	b.totalNodes++
	left := b.emitLBVH(arena, mortonPrims[:split], orderedOffset, bit-1)
	right := b.emitLBVH(arena, mortonPrims[split:], orderedOffset+split, bit-1)
	return arena.addInterior(bitAxis(bit), left, right)
}

// buildUpperSAH merges treelet roots into a single tree. Each entry of roots
// carries the arena index of a treelet root in its index field.
func (b *builder) buildUpperSAH(roots []primitiveInfo) int32 {
	if len(roots) == 1 {
		return int32(roots[0].index)
	}

	bounds, centroidBounds := rangeBounds(roots)
	axis := centroidBounds.MaxExtent()

	mid := len(roots) / 2
	if centroidBounds.Max[axis]-centroidBounds.Min[axis] >= centroidEpsilon {
		r := splitRange{
			axis:           axis,
			bounds:         bounds,
			centroidBounds: centroidBounds,
		}
		costs, bucketOf := sahBucketCosts(roots, r)
		boundary, _ := minCostBoundary(costs)
		if m := partition(roots, func(pi *primitiveInfo) bool {
			return bucketOf(pi) <= boundary
		}); m > 0 && m < len(roots) {
			mid = m
		}
	}

	b.totalNodes++
	left := b.buildUpperSAH(roots[:mid])
	right := b.buildUpperSAH(roots[mid:])
	return b.arena.addInterior(axis, left, right)
}
