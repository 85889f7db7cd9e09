package bvh

import "github.com/achilleasa/raycast/types"

// NodeKind tags the payload carried by a LinearNode.
type NodeKind uint8

const (
	LeafNode NodeKind = iota
	InteriorNode
)

func (k NodeKind) String() string {
	if k == LeafNode {
		return "leaf"
	}
	return "interior"
}

// LinearNode is an entry of the depth-first flattened tree. The first child of
// an interior node always follows it directly in the node array.
type LinearNode struct {
	Bounds types.BBox
	Kind   NodeKind

	// Leaf payload: range of the index primitive list.
	PrimitivesOffset uint32
	PrimitiveCount   uint32

	// Interior payload.
	Axis              types.Axis
	SecondChildOffset uint32
}

// IsLeaf returns true for leaf nodes.
func (n *LinearNode) IsLeaf() bool {
	return n.Kind == LeafNode
}
