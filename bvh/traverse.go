package bvh

import (
	"math"

	"github.com/achilleasa/raycast/scene"
	"github.com/achilleasa/raycast/types"
)

// Traversal stacks start with this many entries on the goroutine stack. They
// only grow for trees deeper than any produced by the builders for realistic
// inputs.
const stackSize = 64

// Hit is the result of a nearest hit query.
type Hit struct {
	scene.Intersection

	// The primitive that was hit and its position in Index.Primitives().
	Primitive      scene.Primitive
	PrimitiveIndex int

	// The leaf node containing the primitive. It can be passed back to
	// NearestHitFrom as a hint for rays that are likely to hit the same
	// primitive.
	Node int
}

// Found returns true if the hit refers to a primitive.
func (h *Hit) Found() bool {
	return h.Primitive != nil
}

// NearestHit returns the closest intersection along the ray.
func (idx *Index) NearestHit(ray *types.Ray) (Hit, bool) {
	return idx.NearestHitFrom(ray, -1)
}

// NearestHitFrom returns the closest intersection along the ray, using the
// subtree rooted at node hint to obtain an initial hit distance. The hint only
// affects how much work is done; any value (including -1 or an out of range
// node) is accepted. Typical hints are the Node of a hit returned for a
// neighbouring ray.
func (idx *Index) NearestHitFrom(ray *types.Ray, hint int) (Hit, bool) {
	if idx.Empty() {
		return Hit{}, false
	}

	hit := Hit{Node: -1}
	hit.T = float32(math.Inf(1))

	if hint > 0 && hint < len(idx.nodes) {
		idx.nearest(ray, int32(hint), -1, &hit)
		idx.nearest(ray, 0, int32(hint), &hit)
	} else {
		idx.nearest(ray, 0, -1, &hit)
	}

	if !hit.Found() {
		return Hit{}, false
	}
	return hit, true
}

// nearest visits the subtree rooted at root, skipping the subtree rooted at
// skip, and records any hit closer than hit.T.
func (idx *Index) nearest(ray *types.Ray, root, skip int32, hit *Hit) {
	var buf [stackSize]int32
	stack := buf[:0]

	nodeIndex := root
	for {
		node := &idx.nodes[nodeIndex]
		if _, ok := ray.IntersectBBox(node.Bounds, hit.T); ok && nodeIndex != skip {
			if node.Kind == LeafNode {
				end := node.PrimitivesOffset + node.PrimitiveCount
				for slot := node.PrimitivesOffset; slot < end; slot++ {
					if isect, ok := idx.prims[slot].Intersect(ray, hit.T); ok {
						hit.Intersection = isect
						hit.Primitive = idx.prims[slot]
						hit.PrimitiveIndex = int(slot)
						hit.Node = int(nodeIndex)
					}
				}
			} else {
				// Visit the child closest to the ray origin first.
				near, far := nodeIndex+1, int32(node.SecondChildOffset)
				if ray.DirIsNeg[node.Axis] {
					near, far = far, near
				}
				assert(len(stack) < stackSize, "traversal stack exceeded %d entries", stackSize)
				stack = append(stack, far)
				nodeIndex = near
				continue
			}
		}

		if len(stack) == 0 {
			return
		}
		nodeIndex = stack[len(stack)-1]
		stack = stack[:len(stack)-1]
	}
}

// AnyHit returns true if the ray hits a shadow casting primitive at a
// distance less than maxDistance. Primitives whose material does not cast
// shadows are ignored.
func (idx *Index) AnyHit(ray *types.Ray, maxDistance float32) bool {
	if idx.Empty() {
		return false
	}

	var buf [stackSize]int32
	stack := buf[:0]

	nodeIndex := int32(0)
	for {
		node := &idx.nodes[nodeIndex]
		if _, ok := ray.IntersectBBox(node.Bounds, maxDistance); ok {
			if node.Kind == LeafNode {
				end := node.PrimitivesOffset + node.PrimitiveCount
				for slot := node.PrimitivesOffset; slot < end; slot++ {
					prim := idx.prims[slot]
					if prim.Material().CastsShadow() && prim.IntersectP(ray, maxDistance) {
						return true
					}
				}
			} else {
				near, far := nodeIndex+1, int32(node.SecondChildOffset)
				if ray.DirIsNeg[node.Axis] {
					near, far = far, near
				}
				assert(len(stack) < stackSize, "traversal stack exceeded %d entries", stackSize)
				stack = append(stack, far)
				nodeIndex = near
				continue
			}
		}

		if len(stack) == 0 {
			return false
		}
		nodeIndex = stack[len(stack)-1]
		stack = stack[:len(stack)-1]
	}
}
