package bvh

import (
	"fmt"
	"time"

	"github.com/achilleasa/raycast/scene"
	"github.com/achilleasa/raycast/types"
)

// Index is an immutable bounding volume hierarchy over a snapshot of
// primitives. All query methods are safe for concurrent use.
type Index struct {
	opts Options

	nodes []LinearNode

	// Primitives in leaf order and the input index of each one.
	prims     []scene.Primitive
	primOrder []int

	lanes laneStrategy
	stats Stats
}

// New builds an index over prims. The caller keeps ownership of the
// primitives, which must not change while the index is in use. An empty
// primitive list yields an empty index that never reports hits.
func New(prims []scene.Primitive, opts Options) *Index {
	opts = opts.normalize()
	idx := &Index{
		opts:  opts,
		lanes: newLaneStrategy(opts.Lanes),
	}
	if len(prims) == 0 {
		idx.stats = Stats{Policy: opts.Split}
		return idx
	}

	start := time.Now()
	b := newBuilder(prims, opts)
	root := b.build()
	assert(b.totalNodes == b.arena.len(), "tallied %d nodes; arena holds %d", b.totalNodes, b.arena.len())

	// Only the linear node array outlives the builder.
	idx.nodes = linearize(b.arena, root, b.totalNodes)
	idx.prims = b.ordered
	idx.primOrder = b.orderedIndex

	idx.stats = collectStats(idx.nodes, len(prims))
	idx.stats.Policy = opts.Split
	idx.stats.Treelets = b.treelets
	idx.stats.BuildTime = time.Since(start)

	b.logger.Debugf(
		"BVH tree build time: %d ms, policy: %s, maxDepth: %d, nodes: %d, leafs: %d\n",
		idx.stats.BuildTime.Nanoseconds()/1e6,
		opts.Split, idx.stats.MaxDepth, idx.stats.Nodes, idx.stats.Leaves,
	)
	return idx
}

// Options returns the normalized options the index was built with.
func (idx *Index) Options() Options {
	return idx.opts
}

// Empty returns true if the index contains no primitives.
func (idx *Index) Empty() bool {
	return len(idx.nodes) == 0
}

// Nodes returns the flattened tree. The returned slice must not be modified.
func (idx *Index) Nodes() []LinearNode {
	return idx.nodes
}

// Primitives returns the primitives in leaf order. Leaf nodes refer to ranges
// of this slice. The returned slice must not be modified.
func (idx *Index) Primitives() []scene.Primitive {
	return idx.prims
}

// PrimitiveOrder maps each entry of Primitives() to its position in the list
// passed to New.
func (idx *Index) PrimitiveOrder() []int {
	return idx.primOrder
}

// Bounds returns the bounds of all indexed primitives.
func (idx *Index) Bounds() types.BBox {
	if idx.Empty() {
		return types.EmptyBBox()
	}
	return idx.nodes[0].Bounds
}

// Stats returns the statistics collected while building the index.
func (idx *Index) Stats() Stats {
	return idx.stats
}

// Validate checks the structural invariants of the index.
func (idx *Index) Validate() error {
	if len(idx.nodes) != idx.stats.Nodes {
		return fmt.Errorf("%w: node array holds %d nodes; expected %d", ErrInvariant, len(idx.nodes), idx.stats.Nodes)
	}
	if len(idx.prims) != len(idx.primOrder) {
		return fmt.Errorf("%w: %d primitives but %d order entries", ErrInvariant, len(idx.prims), len(idx.primOrder))
	}

	seen := make([]bool, len(idx.primOrder))
	for slot, inputIndex := range idx.primOrder {
		if inputIndex < 0 || inputIndex >= len(seen) || seen[inputIndex] {
			return fmt.Errorf("%w: primitive slot %d refers to invalid or duplicate input index %d", ErrInvariant, slot, inputIndex)
		}
		seen[inputIndex] = true
	}
	if idx.Empty() {
		return nil
	}

	covered := make([]bool, len(idx.prims))
	if _, err := idx.validateNode(0, covered); err != nil {
		return err
	}
	for slot, ok := range covered {
		if !ok {
			return fmt.Errorf("%w: primitive slot %d is not referenced by any leaf", ErrInvariant, slot)
		}
	}
	return nil
}

// validateNode checks the subtree rooted at nodeIndex and returns the index
// one past its last node.
func (idx *Index) validateNode(nodeIndex int, covered []bool) (int, error) {
	if nodeIndex >= len(idx.nodes) {
		return 0, fmt.Errorf("%w: node index %d out of range", ErrInvariant, nodeIndex)
	}
	node := &idx.nodes[nodeIndex]

	if node.Kind == LeafNode {
		first, count := int(node.PrimitivesOffset), int(node.PrimitiveCount)
		if count == 0 || first+count > len(idx.prims) {
			return 0, fmt.Errorf("%w: leaf %d has invalid primitive range [%d, %d)", ErrInvariant, nodeIndex, first, first+count)
		}
		bounds := types.EmptyBBox()
		for slot := first; slot < first+count; slot++ {
			if covered[slot] {
				return 0, fmt.Errorf("%w: primitive slot %d referenced by more than one leaf", ErrInvariant, slot)
			}
			covered[slot] = true
			primBounds := idx.prims[slot].BBox()
			if !primBounds.Contains(idx.prims[slot].Centroid()) {
				return 0, fmt.Errorf("%w: primitive slot %d centroid lies outside its bounds", ErrInvariant, slot)
			}
			bounds = bounds.Union(primBounds)
		}
		if bounds != node.Bounds {
			return 0, fmt.Errorf("%w: leaf %d bounds %v do not match primitive bounds %v", ErrInvariant, nodeIndex, node.Bounds, bounds)
		}
		return nodeIndex + 1, nil
	}

	secondChild := int(node.SecondChildOffset)
	if secondChild <= nodeIndex+1 {
		return 0, fmt.Errorf("%w: interior node %d has invalid second child %d", ErrInvariant, nodeIndex, secondChild)
	}
	end, err := idx.validateNode(nodeIndex+1, covered)
	if err != nil {
		return 0, err
	}
	if end != secondChild {
		return 0, fmt.Errorf("%w: interior node %d second child at %d; first subtree ends at %d", ErrInvariant, nodeIndex, secondChild, end)
	}
	if end, err = idx.validateNode(secondChild, covered); err != nil {
		return 0, err
	}

	union := idx.nodes[nodeIndex+1].Bounds.Union(idx.nodes[secondChild].Bounds)
	if union != node.Bounds {
		return 0, fmt.Errorf("%w: interior node %d bounds %v do not match child union %v", ErrInvariant, nodeIndex, node.Bounds, union)
	}
	return end, nil
}

// Overlapping calls fn for every primitive that may overlap box, stopping
// early if fn returns false. The primitive index refers to Primitives().
func (idx *Index) Overlapping(box types.BBox, fn func(primIndex int, prim scene.Primitive) bool) {
	if idx.Empty() || box.IsEmpty() {
		return
	}

	var buf [stackSize]int32
	stack := append(buf[:0], 0)
	for len(stack) > 0 {
		nodeIndex := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		node := &idx.nodes[nodeIndex]
		if !node.Bounds.Overlaps(box) {
			continue
		}
		if node.Kind == InteriorNode {
			stack = append(stack, int32(node.SecondChildOffset), nodeIndex+1)
			continue
		}
		for slot := node.PrimitivesOffset; slot < node.PrimitivesOffset+node.PrimitiveCount; slot++ {
			prim := idx.prims[slot]
			if prim.IntersectsBBox(box) && !fn(int(slot), prim) {
				return
			}
		}
	}
}
