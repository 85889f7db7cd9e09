package bvh

import (
	"fmt"
	"math"

	"github.com/achilleasa/raycast/types"
)

// MaxPacketSize is the maximum number of rays accepted by BatchNearestHit.
const MaxPacketSize = 64

type packetStackEntry struct {
	node        int32
	first, last int
}

// BatchNearestHit finds the closest intersection for each ray of a packet.
// The frustum must enclose every ray of the packet; subtrees outside it are
// skipped for all rays at once. A nil frustum disables culling.
//
// Results are written to hits, which must be at least as long as rays. The
// result for each ray matches the one returned by NearestHit.
func (idx *Index) BatchNearestHit(rays []types.Ray, frustum *types.Frustum, hits []Hit) {
	if len(rays) > MaxPacketSize {
		panic(fmt.Sprintf("bvh: packet size %d exceeds %d", len(rays), MaxPacketSize))
	}
	if len(hits) < len(rays) {
		panic(fmt.Sprintf("bvh: hit buffer holds %d entries; need %d", len(hits), len(rays)))
	}
	for i := range rays {
		hits[i] = Hit{Node: -1}
	}
	if idx.Empty() || len(rays) == 0 {
		return
	}

	p := &packet{rays: rays}
	for i := range rays {
		p.best[i] = float32(math.Inf(1))
		p.order[i] = uint8(i)
	}

	var buf [stackSize]packetStackEntry
	stack := buf[:0]

	cur := packetStackEntry{node: 0, first: 0, last: len(rays)}
	for {
		node := &idx.nodes[cur.node]
		if frustum.IntersectsBBox(node.Bounds) {
			first, last, ok := idx.lanes.narrow(p, node.Bounds, cur.first, cur.last)
			if ok {
				if node.Kind == LeafNode {
					idx.intersectLeaf(p, frustum, cur.node, first, last, hits)
				} else {
					// Order children using the direction of the first active ray.
					near, far := cur.node+1, int32(node.SecondChildOffset)
					if rays[p.order[first]].DirIsNeg[node.Axis] {
						near, far = far, near
					}
					assert(len(stack) < stackSize, "packet traversal stack exceeded %d entries", stackSize)
					stack = append(stack, packetStackEntry{node: far, first: first, last: last})
					cur = packetStackEntry{node: near, first: first, last: last}
					continue
				}
			}
		}

		if len(stack) == 0 {
			break
		}
		cur = stack[len(stack)-1]
		stack = stack[:len(stack)-1]
	}

	for i := range rays {
		if !hits[i].Found() {
			hits[i] = Hit{}
		}
	}
}

func (idx *Index) intersectLeaf(p *packet, frustum *types.Frustum, nodeIndex int32, first, last int, hits []Hit) {
	node := &idx.nodes[nodeIndex]
	end := node.PrimitivesOffset + node.PrimitiveCount
	for slot := node.PrimitivesOffset; slot < end; slot++ {
		prim := idx.prims[slot]
		if !frustum.IntersectsBBox(prim.BBox()) {
			continue
		}
		for i := first; i < last; i++ {
			lane := p.order[i]
			isect, ok := prim.Intersect(&p.rays[lane], p.best[lane])
			if !ok {
				continue
			}
			p.best[lane] = isect.T
			hits[lane] = Hit{
				Intersection:   isect,
				Primitive:      prim,
				PrimitiveIndex: int(slot),
				Node:           int(nodeIndex),
			}
		}
	}
}
