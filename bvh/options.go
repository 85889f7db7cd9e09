package bvh

import (
	"fmt"
	"strings"

	"github.com/achilleasa/raycast/types"
)

// MaxPrimsInLeafLimit is the upper bound for Options.MaxPrimsInLeaf.
const MaxPrimsInLeafLimit = 255

const defaultMaxPrimsInLeaf = 4

// SplitPolicy selects the algorithm used to partition primitives while
// building the tree.
type SplitPolicy uint8

const (
	// Bucketed surface area heuristic search.
	SplitSAH SplitPolicy = iota

	// Split at the midpoint of the centroid bounds; falls back to
	// SplitEqualCounts when all primitives end up on the same side.
	SplitMiddle

	// Split into two halves with the same number of primitives.
	SplitEqualCounts

	// Morton-code clustering into treelets, merged with SAH.
	SplitHLBVH
)

var splitPolicyNames = map[SplitPolicy]string{
	SplitSAH:         "sah",
	SplitMiddle:      "middle",
	SplitEqualCounts: "equal",
	SplitHLBVH:       "hlbvh",
}

func (p SplitPolicy) String() string {
	if name, ok := splitPolicyNames[p]; ok {
		return name
	}
	return fmt.Sprintf("SplitPolicy(%d)", uint8(p))
}

// ParseSplitPolicy maps a policy name (sah, middle, equal, hlbvh) to a
// SplitPolicy.
func ParseSplitPolicy(name string) (SplitPolicy, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for policy, policyName := range splitPolicyNames {
		if policyName == name {
			return policy, nil
		}
	}
	return SplitSAH, fmt.Errorf("bvh: unknown split policy %q", name)
}

// LaneStrategy selects how packet traversal tracks the rays that are still
// active while descending the tree. All strategies return identical results;
// they differ in how many ray/primitive tests they perform.
type LaneStrategy uint8

const (
	// Track the first and last active lane.
	LaneRanged LaneStrategy = iota

	// Track the first active lane only.
	LaneFirstActive

	// Reorder lanes so that active lanes always form a contiguous range.
	LanePartition
)

var laneStrategyNames = map[LaneStrategy]string{
	LaneRanged:      "ranged",
	LaneFirstActive: "first",
	LanePartition:   "partition",
}

func (l LaneStrategy) String() string {
	if name, ok := laneStrategyNames[l]; ok {
		return name
	}
	return fmt.Sprintf("LaneStrategy(%d)", uint8(l))
}

// ParseLaneStrategy maps a strategy name (ranged, first, partition) to a
// LaneStrategy.
func ParseLaneStrategy(name string) (LaneStrategy, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for strategy, strategyName := range laneStrategyNames {
		if strategyName == name {
			return strategy, nil
		}
	}
	return LaneRanged, fmt.Errorf("bvh: unknown lane strategy %q", name)
}

// Options configure index construction and packet traversal. The zero value
// is equivalent to DefaultOptions().
type Options struct {
	// Leaf size target. The builder may exceed it only when primitive
	// centroids coincide. Zero selects the default; other values are
	// clamped to [1, MaxPrimsInLeafLimit].
	MaxPrimsInLeaf int

	Split SplitPolicy
	Lanes LaneStrategy
}

// DefaultOptions returns the options used when none are specified.
func DefaultOptions() Options {
	return Options{
		MaxPrimsInLeaf: defaultMaxPrimsInLeaf,
		Split:          SplitSAH,
		Lanes:          LaneRanged,
	}
}

func (o Options) normalize() Options {
	if o.MaxPrimsInLeaf == 0 {
		o.MaxPrimsInLeaf = defaultMaxPrimsInLeaf
	}
	o.MaxPrimsInLeaf = types.Clamp(o.MaxPrimsInLeaf, 1, MaxPrimsInLeafLimit)
	if _, ok := splitPolicyNames[o.Split]; !ok {
		o.Split = SplitSAH
	}
	if _, ok := laneStrategyNames[o.Lanes]; !ok {
		o.Lanes = LaneRanged
	}
	return o
}
