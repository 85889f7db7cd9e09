package bvh

// linearize flattens the tree rooted at root into a depth-first node array.
// totalNodes is the node count tallied by the builder and must match the
// number of nodes reachable from root.
func linearize(arena *nodeArena, root int32, totalNodes int) []LinearNode {
	nodes := make([]LinearNode, totalNodes)
	offset := 0

	var flatten func(index int32) uint32
	flatten = func(index int32) uint32 {
		bn := &arena.nodes[index]
		nodeOffset := offset
		offset++

		ln := &nodes[nodeOffset]
		ln.Bounds = bn.bounds
		ln.Kind = bn.kind
		if bn.kind == LeafNode {
			ln.PrimitivesOffset = uint32(bn.firstPrim)
			ln.PrimitiveCount = uint32(bn.primCount)
			return uint32(nodeOffset)
		}

		ln.Axis = bn.axis
		flatten(bn.children[0])
		ln.SecondChildOffset = flatten(bn.children[1])
		return uint32(nodeOffset)
	}
	flatten(root)

	assert(offset == totalNodes, "linearized %d nodes; expected %d", offset, totalNodes)
	return nodes
}
