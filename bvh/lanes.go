package bvh

import "github.com/achilleasa/raycast/types"

// packet holds the per-call state of a packet traversal.
type packet struct {
	rays []types.Ray
	best [MaxPacketSize]float32

	// Lane permutation. Traversal ranges index this array; it is the
	// identity unless the lane strategy reorders it.
	order [MaxPacketSize]uint8
}

// active returns true if the ray in the given lane may hit something inside
// bounds closer than its current best hit.
func (p *packet) active(lane uint8, bounds types.BBox) bool {
	_, ok := p.rays[lane].IntersectBBox(bounds, p.best[lane])
	return ok
}

// A laneStrategy narrows the [first, last) range of packet lanes that is
// valid for a node down to the range that needs to visit a child node. Lanes
// outside the returned range must be inactive for bounds; lanes inside it
// may be inactive.
type laneStrategy interface {
	narrow(p *packet, bounds types.BBox, first, last int) (int, int, bool)
}

func newLaneStrategy(strategy LaneStrategy) laneStrategy {
	switch strategy {
	case LaneFirstActive:
		return firstActiveLanes{}
	case LanePartition:
		return partitionLanes{}
	}
	return rangedLanes{}
}

// firstActiveLanes skips the leading inactive lanes.
type firstActiveLanes struct{}

func (firstActiveLanes) narrow(p *packet, bounds types.BBox, first, last int) (int, int, bool) {
	for i := first; i < last; i++ {
		if p.active(p.order[i], bounds) {
			return i, last, true
		}
	}
	return 0, 0, false
}

// rangedLanes skips both the leading and the trailing inactive lanes. It
// works best when neighbouring lanes carry coherent rays.
type rangedLanes struct{}

func (rangedLanes) narrow(p *packet, bounds types.BBox, first, last int) (int, int, bool) {
	first, last, ok := firstActiveLanes{}.narrow(p, bounds, first, last)
	if !ok {
		return 0, 0, false
	}
	for last-1 > first && !p.active(p.order[last-1], bounds) {
		last--
	}
	return first, last, true
}

// partitionLanes moves the active lanes to the front of the range so the
// returned range contains active lanes only. The lanes inside [first, last)
// stay the same set, so ranges recorded for pending nodes remain valid.
type partitionLanes struct{}

func (partitionLanes) narrow(p *packet, bounds types.BBox, first, last int) (int, int, bool) {
	end := first
	for i := first; i < last; i++ {
		if p.active(p.order[i], bounds) {
			p.order[end], p.order[i] = p.order[i], p.order[end]
			end++
		}
	}
	return first, end, end > first
}
