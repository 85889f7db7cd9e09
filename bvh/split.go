package bvh

import (
	"math"
	"slices"

	"github.com/achilleasa/raycast/types"
)

const (
	// Number of buckets used by the SAH split search.
	sahBuckets = 12

	// Relative cost of a ray/box test compared to a ray/primitive test.
	sahTraversalCost = 1.0
)

// splitOutcome is the verdict of a splitStrategy for a primitive range.
type splitOutcome uint8

const (
	// The strategy could not partition the range; the next strategy in the
	// chain is consulted.
	splitDeclined splitOutcome = iota

	// The range was partitioned at the returned offset.
	splitPartitioned

	// The range is cheaper to store as a single leaf.
	splitAsLeaf
)

// splitRange describes the primitive range to be partitioned.
type splitRange struct {
	axis           types.Axis
	bounds         types.BBox
	centroidBounds types.BBox
	maxLeafPrims   int
}

// A splitStrategy partitions info in place. When it returns splitPartitioned,
// info[:mid] and info[mid:] are both non-empty.
type splitStrategy interface {
	split(info []primitiveInfo, r splitRange) (mid int, outcome splitOutcome)
}

// splitChain returns the ordered list of strategies tried for a policy. The
// last entry never declines a range with two or more primitives.
func splitChain(policy SplitPolicy) []splitStrategy {
	switch policy {
	case SplitMiddle:
		return []splitStrategy{middleSplit{}, equalCountsSplit{}}
	case SplitEqualCounts:
		return []splitStrategy{equalCountsSplit{}}
	}
	return []splitStrategy{sahSplit{}, equalCountsSplit{}}
}

// middleSplit partitions around the midpoint of the centroid bounds.
type middleSplit struct{}

func (middleSplit) split(info []primitiveInfo, r splitRange) (int, splitOutcome) {
	axis := r.axis
	pMid := 0.5 * (r.centroidBounds.Min[axis] + r.centroidBounds.Max[axis])
	mid := partition(info, func(pi *primitiveInfo) bool {
		return pi.centroid[axis] < pMid
	})
	if mid == 0 || mid == len(info) {
		return 0, splitDeclined
	}
	return mid, splitPartitioned
}

// equalCountsSplit orders the range by centroid and splits it in half.
type equalCountsSplit struct{}

func (equalCountsSplit) split(info []primitiveInfo, r splitRange) (int, splitOutcome) {
	if len(info) < 2 {
		return 0, splitDeclined
	}
	axis := r.axis
	slices.SortStableFunc(info, func(a, b primitiveInfo) int {
		switch {
		case a.centroid[axis] < b.centroid[axis]:
			return -1
		case a.centroid[axis] > b.centroid[axis]:
			return 1
		}
		return 0
	})
	return len(info) / 2, splitPartitioned
}

// sahSplit evaluates the surface area heuristic at the boundaries between
// equally sized buckets along the split axis.
type sahSplit struct{}

func (sahSplit) split(info []primitiveInfo, r splitRange) (int, splitOutcome) {
	if len(info) <= 2 {
		return 0, splitDeclined
	}

	costs, bucketOf := sahBucketCosts(info, r)
	boundary, minCost := minCostBoundary(costs)
	if math.IsInf(float64(minCost), 1) {
		return 0, splitDeclined
	}

	leafCost := float32(len(info))
	if len(info) <= r.maxLeafPrims && minCost >= leafCost {
		return 0, splitAsLeaf
	}

	mid := partition(info, func(pi *primitiveInfo) bool {
		return bucketOf(pi) <= boundary
	})
	assert(mid > 0 && mid < len(info), "sah partition at %d leaves an empty side (range size %d)", mid, len(info))
	return mid, splitPartitioned
}

// sahBucketCosts distributes the range into buckets by centroid and returns
// the cost of splitting after each of the first sahBuckets-1 buckets, plus the
// function used to map an item to its bucket. Boundaries that leave one side
// empty have an infinite cost.
func sahBucketCosts(info []primitiveInfo, r splitRange) ([sahBuckets - 1]float32, func(*primitiveInfo) int) {
	type bucket struct {
		count  int
		bounds types.BBox
	}

	axis := r.axis
	bucketOf := func(pi *primitiveInfo) int {
		b := int(sahBuckets * r.centroidBounds.Offset(pi.centroid)[axis])
		if b >= sahBuckets {
			b = sahBuckets - 1
		} else if b < 0 {
			b = 0
		}
		return b
	}

	var buckets [sahBuckets]bucket
	for i := range buckets {
		buckets[i].bounds = types.EmptyBBox()
	}
	for i := range info {
		b := bucketOf(&info[i])
		assert(b >= 0 && b < sahBuckets, "bucket index %d out of range", b)
		buckets[b].count++
		buckets[b].bounds = buckets[b].bounds.Union(info[i].bounds)
	}

	// Sweep from both ends so every boundary is evaluated in linear time.
	var (
		leftCount, rightCount   [sahBuckets - 1]int
		leftArea, rightArea     [sahBuckets - 1]float32
		leftBounds, rightBounds = types.EmptyBBox(), types.EmptyBBox()
		countBelow, countAbove  int
	)
	for i := 0; i < sahBuckets-1; i++ {
		leftBounds = leftBounds.Union(buckets[i].bounds)
		countBelow += buckets[i].count
		leftCount[i], leftArea[i] = countBelow, leftBounds.SurfaceArea()

		j := sahBuckets - 1 - i
		rightBounds = rightBounds.Union(buckets[j].bounds)
		countAbove += buckets[j].count
		rightCount[j-1], rightArea[j-1] = countAbove, rightBounds.SurfaceArea()
	}

	var invTotalArea float32
	if totalArea := r.bounds.SurfaceArea(); totalArea > 0 {
		invTotalArea = 1 / totalArea
	}

	var costs [sahBuckets - 1]float32
	for i := range costs {
		if leftCount[i] == 0 || rightCount[i] == 0 {
			costs[i] = float32(math.Inf(1))
			continue
		}
		costs[i] = sahTraversalCost +
			(float32(leftCount[i])*leftArea[i]+float32(rightCount[i])*rightArea[i])*invTotalArea
	}
	return costs, bucketOf
}

// minCostBoundary returns the first boundary with the lowest cost.
func minCostBoundary(costs [sahBuckets - 1]float32) (int, float32) {
	best := 0
	for i := 1; i < len(costs); i++ {
		if costs[i] < costs[best] {
			best = i
		}
	}
	return best, costs[best]
}

// partition moves all items matching pred to the front of info, preserving
// their relative order, and returns the number of matching items.
func partition(info []primitiveInfo, pred func(*primitiveInfo) bool) int {
	var rest []primitiveInfo
	mid := 0
	for i := range info {
		if pred(&info[i]) {
			info[mid] = info[i]
			mid++
		} else {
			rest = append(rest, info[i])
		}
	}
	copy(info[mid:], rest)
	return mid
}
