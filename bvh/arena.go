package bvh

import "github.com/achilleasa/raycast/types"

// buildNode is a tree node that only exists during construction. Nodes refer
// to their children by arena index.
type buildNode struct {
	bounds types.BBox
	kind   NodeKind

	firstPrim, primCount int

	axis     types.Axis
	children [2]int32
}

// nodeArena owns the nodes of a tree under construction.
type nodeArena struct {
	nodes []buildNode
}

func newNodeArena(capacity int) *nodeArena {
	return &nodeArena{nodes: make([]buildNode, 0, capacity)}
}

func (a *nodeArena) addLeaf(firstPrim, primCount int, bounds types.BBox) int32 {
	a.nodes = append(a.nodes, buildNode{
		bounds:    bounds,
		kind:      LeafNode,
		firstPrim: firstPrim,
		primCount: primCount,
	})
	return int32(len(a.nodes) - 1)
}

func (a *nodeArena) addInterior(axis types.Axis, left, right int32) int32 {
	a.nodes = append(a.nodes, buildNode{
		bounds:   a.nodes[left].bounds.Union(a.nodes[right].bounds),
		kind:     InteriorNode,
		axis:     axis,
		children: [2]int32{left, right},
	})
	return int32(len(a.nodes) - 1)
}

// merge appends the nodes of other, re-basing its child references, and
// returns the offset that must be added to node indices of other.
func (a *nodeArena) merge(other *nodeArena) int32 {
	offset := int32(len(a.nodes))
	for _, node := range other.nodes {
		if node.kind == InteriorNode {
			node.children[0] += offset
			node.children[1] += offset
		}
		a.nodes = append(a.nodes, node)
	}
	return offset
}

func (a *nodeArena) len() int {
	return len(a.nodes)
}
