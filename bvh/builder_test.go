package bvh

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/achilleasa/raycast/scene"
	"github.com/achilleasa/raycast/types"
	"go.viam.com/test"
)

func TestBuildInvariants(t *testing.T) {
	prims := randomPrimitives(600, 1)

	for _, policy := range allPolicies {
		for _, maxLeaf := range []int{1, 4, 16} {
			t.Run(fmt.Sprintf("%s/maxLeaf=%d", policy, maxLeaf), func(t *testing.T) {
				idx := New(prims, Options{Split: policy, MaxPrimsInLeaf: maxLeaf})
				test.That(t, idx.Validate(), test.ShouldBeNil)

				// The reordered primitives are a permutation of the input.
				test.That(t, idx.Primitives(), test.ShouldHaveLength, len(prims))
				seen := make(map[scene.Primitive]int)
				for slot, prim := range idx.Primitives() {
					seen[prim]++
					test.That(t, prim, test.ShouldEqual, prims[idx.PrimitiveOrder()[slot]])
				}
				for _, prim := range prims {
					test.That(t, seen[prim], test.ShouldEqual, 1)
				}

				stats := idx.Stats()
				test.That(t, stats.Nodes, test.ShouldEqual, len(idx.Nodes()))
				test.That(t, stats.Primitives, test.ShouldEqual, len(prims))
				test.That(t, stats.Policy, test.ShouldEqual, policy)
				test.That(t, idx.Bounds(), test.ShouldResemble, boundsOf(prims))
			})
		}
	}
}

func TestBuildLeafSize(t *testing.T) {
	// Primitives with distinct centroids never exceed the leaf size limit.
	mat := scene.NewMaterial("m", types.Vec3{})
	prims := make([]scene.Primitive, 0, 512)
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			for z := 0; z < 8; z++ {
				prims = append(prims, scene.NewSphere(types.Vec3{float32(x), float32(y), float32(z)}, 0.25, mat))
			}
		}
	}

	for _, policy := range allPolicies {
		t.Run(policy.String(), func(t *testing.T) {
			idx := New(prims, Options{Split: policy, MaxPrimsInLeaf: 3})
			test.That(t, idx.Validate(), test.ShouldBeNil)
			test.That(t, idx.Stats().MaxLeafPrims, test.ShouldBeLessThanOrEqualTo, 3)
		})
	}
}

func TestBuildCoincidentCentroids(t *testing.T) {
	mat := scene.NewMaterial("m", types.Vec3{})
	prims := make([]scene.Primitive, 300)
	for i := range prims {
		prims[i] = scene.NewSphere(types.Vec3{1, 2, 3}, float32(i+1)*0.01, mat)
	}

	for _, policy := range allPolicies {
		t.Run(policy.String(), func(t *testing.T) {
			idx := New(prims, Options{Split: policy, MaxPrimsInLeaf: 2})
			test.That(t, idx.Validate(), test.ShouldBeNil)
			test.That(t, idx.Nodes(), test.ShouldHaveLength, 1)
			test.That(t, idx.Nodes()[0].Kind, test.ShouldEqual, LeafNode)
			test.That(t, idx.Nodes()[0].PrimitiveCount, test.ShouldEqual, uint32(300))
		})
	}
}

func TestBuildDeterminism(t *testing.T) {
	prims := randomPrimitives(400, 2)

	for _, policy := range allPolicies {
		t.Run(policy.String(), func(t *testing.T) {
			a := New(prims, Options{Split: policy})
			b := New(prims, Options{Split: policy})
			test.That(t, a.Nodes(), test.ShouldResemble, b.Nodes())
			test.That(t, a.PrimitiveOrder(), test.ShouldResemble, b.PrimitiveOrder())
			test.That(t, a.Fingerprint(), test.ShouldEqual, b.Fingerprint())
		})
	}

	sah := New(prims, Options{Split: SplitSAH})
	hlbvh := New(prims, Options{Split: SplitHLBVH})
	test.That(t, sah.Fingerprint(), test.ShouldNotEqual, hlbvh.Fingerprint())
}

func TestBuildSingleAndEmpty(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		idx := New(nil, DefaultOptions())
		test.That(t, idx.Empty(), test.ShouldBeTrue)
		test.That(t, idx.Nodes(), test.ShouldBeEmpty)
		test.That(t, idx.Bounds().IsEmpty(), test.ShouldBeTrue)
		test.That(t, idx.Validate(), test.ShouldBeNil)
	})

	t.Run("single primitive", func(t *testing.T) {
		for _, policy := range allPolicies {
			sphere := scene.NewSphere(types.Vec3{1, 1, 1}, 1, nil)
			idx := New([]scene.Primitive{sphere}, Options{Split: policy})
			test.That(t, idx.Validate(), test.ShouldBeNil)
			test.That(t, idx.Nodes(), test.ShouldHaveLength, 1)
			test.That(t, idx.Nodes()[0].IsLeaf(), test.ShouldBeTrue)
			test.That(t, idx.Nodes()[0].Bounds, test.ShouldResemble, sphere.BBox())
		}
	})
}

// Two primitives far apart on X produce one interior root split on X with two
// single primitive leaves.
func TestBuildTwoSeparatedPrimitives(t *testing.T) {
	prims := []scene.Primitive{
		scene.NewSphere(types.Vec3{-100, 0, 0}, 1, nil),
		scene.NewSphere(types.Vec3{100, 0.5, 0}, 1, nil),
	}

	idx := New(prims, Options{Split: SplitSAH})
	nodes := idx.Nodes()
	test.That(t, nodes, test.ShouldHaveLength, 3)

	test.That(t, nodes[0].Kind, test.ShouldEqual, InteriorNode)
	test.That(t, nodes[0].Axis, test.ShouldEqual, types.XAxis)
	test.That(t, nodes[0].SecondChildOffset, test.ShouldEqual, uint32(2))
	for _, leaf := range nodes[1:] {
		test.That(t, leaf.Kind, test.ShouldEqual, LeafNode)
		test.That(t, leaf.PrimitiveCount, test.ShouldEqual, uint32(1))
	}
	test.That(t, idx.Validate(), test.ShouldBeNil)
}

func TestSAHPicksCheapestBoundary(t *testing.T) {
	prims := randomPrimitives(200, 5)

	for trial := 0; trial < 20; trial++ {
		info := collectInfo(prims[trial*5 : trial*5+100])
		bounds, centroidBounds := rangeBounds(info)
		r := splitRange{
			axis:           centroidBounds.MaxExtent(),
			bounds:         bounds,
			centroidBounds: centroidBounds,
			maxLeafPrims:   4,
		}

		costs, bucketOf := sahBucketCosts(info, r)
		boundary, minCost := minCostBoundary(costs)
		for _, cost := range costs {
			test.That(t, minCost, test.ShouldBeLessThanOrEqualTo, cost)
		}
		test.That(t, math.IsInf(float64(minCost), 1), test.ShouldBeFalse)

		mid, outcome := sahSplit{}.split(info, r)
		test.That(t, outcome, test.ShouldEqual, splitPartitioned)
		for i := range info {
			test.That(t, bucketOf(&info[i]) <= boundary, test.ShouldEqual, i < mid)
		}
	}
}

func TestSAHPrefersLeafForCheapRanges(t *testing.T) {
	// Three overlapping boxes cost less as a leaf than split.
	mat := scene.NewMaterial("m", types.Vec3{})
	prims := []scene.Primitive{
		scene.NewBox(types.Vec3{0, 0, 0}, types.Vec3{10, 10, 10}, mat),
		scene.NewBox(types.Vec3{0.1, 0, 0}, types.Vec3{10, 10, 10}, mat),
		scene.NewBox(types.Vec3{0.2, 0, 0}, types.Vec3{10, 10, 10}, mat),
	}
	info := collectInfo(prims)
	bounds, centroidBounds := rangeBounds(info)
	r := splitRange{axis: types.XAxis, bounds: bounds, centroidBounds: centroidBounds, maxLeafPrims: 4}

	_, outcome := sahSplit{}.split(info, r)
	test.That(t, outcome, test.ShouldEqual, splitAsLeaf)

	// The same range must be split once it exceeds the leaf size.
	r.maxLeafPrims = 2
	mid, outcome := sahSplit{}.split(info, r)
	test.That(t, outcome, test.ShouldEqual, splitPartitioned)
	test.That(t, mid, test.ShouldBeGreaterThan, 0)
	test.That(t, mid, test.ShouldBeLessThan, 3)

	idx := New(prims, Options{Split: SplitSAH, MaxPrimsInLeaf: 4})
	test.That(t, idx.Nodes(), test.ShouldHaveLength, 1)
}

func TestSplitChain(t *testing.T) {
	test.That(t, splitChain(SplitMiddle), test.ShouldResemble, []splitStrategy{middleSplit{}, equalCountsSplit{}})
	test.That(t, splitChain(SplitSAH), test.ShouldResemble, []splitStrategy{sahSplit{}, equalCountsSplit{}})
	test.That(t, splitChain(SplitEqualCounts), test.ShouldResemble, []splitStrategy{equalCountsSplit{}})

	info := collectInfo(randomPrimitives(10, 9))
	_, centroidBounds := rangeBounds(info)

	// A midpoint below every centroid puts all primitives on one side.
	degenerate := splitRange{
		axis: types.XAxis,
		centroidBounds: types.BBox{
			Min: centroidBounds.Min.Sub(types.Vec3{1000, 0, 0}),
			Max: centroidBounds.Min.Sub(types.Vec3{998, 0, 0}),
		},
	}
	_, outcome := middleSplit{}.split(info, degenerate)
	test.That(t, outcome, test.ShouldEqual, splitDeclined)

	mid, outcome := equalCountsSplit{}.split(info, degenerate)
	test.That(t, outcome, test.ShouldEqual, splitPartitioned)
	test.That(t, mid, test.ShouldEqual, 5)
	for i := 1; i < len(info); i++ {
		test.That(t, info[i-1].centroid[0], test.ShouldBeLessThanOrEqualTo, info[i].centroid[0])
	}

	// SAH hands ranges of two primitives to the next strategy.
	_, outcome = sahSplit{}.split(info[:2], degenerate)
	test.That(t, outcome, test.ShouldEqual, splitDeclined)
}

func TestOptions(t *testing.T) {
	test.That(t, Options{}.normalize(), test.ShouldResemble, DefaultOptions())
	test.That(t, Options{MaxPrimsInLeaf: 1000}.normalize().MaxPrimsInLeaf, test.ShouldEqual, MaxPrimsInLeafLimit)
	test.That(t, Options{MaxPrimsInLeaf: -3}.normalize().MaxPrimsInLeaf, test.ShouldEqual, 1)

	for _, policy := range allPolicies {
		parsed, err := ParseSplitPolicy(policy.String())
		test.That(t, err, test.ShouldBeNil)
		test.That(t, parsed, test.ShouldEqual, policy)
	}
	_, err := ParseSplitPolicy("octree")
	test.That(t, err, test.ShouldNotBeNil)

	for _, lanes := range []LaneStrategy{LaneRanged, LaneFirstActive, LanePartition} {
		parsed, err := ParseLaneStrategy(lanes.String())
		test.That(t, err, test.ShouldBeNil)
		test.That(t, parsed, test.ShouldEqual, lanes)
	}
}

func TestValidateDetectsCorruption(t *testing.T) {
	idx := New(randomPrimitives(50, 4), DefaultOptions())
	test.That(t, idx.Validate(), test.ShouldBeNil)

	idx.nodes[0].Bounds.Max[0] += 1
	err := idx.Validate()
	test.That(t, errors.Is(err, ErrInvariant), test.ShouldBeTrue)

	idx = New(randomPrimitives(50, 4), DefaultOptions())
	idx.primOrder[0] = idx.primOrder[1]
	test.That(t, errors.Is(idx.Validate(), ErrInvariant), test.ShouldBeTrue)
}

// offsetCentroid reports a centroid outside its own bounds.
type offsetCentroid struct {
	*scene.Sphere
}

func (p offsetCentroid) Centroid() types.Vec3 {
	return p.Sphere.Centroid().Add(types.Vec3{0, 0, 10 * p.Radius})
}

func TestValidateDetectsBadCentroids(t *testing.T) {
	prims := randomPrimitives(30, 6)
	s, ok := prims[0].(*scene.Sphere)
	test.That(t, ok, test.ShouldBeTrue)
	prims[0] = offsetCentroid{s}

	idx := New(prims, DefaultOptions())
	test.That(t, errors.Is(idx.Validate(), ErrInvariant), test.ShouldBeTrue)
}

func TestStatsTable(t *testing.T) {
	idx := New(randomPrimitives(100, 6), Options{Split: SplitHLBVH})
	stats := idx.Stats()
	test.That(t, stats.Leaves, test.ShouldBeGreaterThan, 0)
	test.That(t, stats.Treelets, test.ShouldBeGreaterThan, 1)
	test.That(t, stats.SAHCost, test.ShouldBeGreaterThan, 0)

	table := stats.Table()
	test.That(t, table, test.ShouldContainSubstring, "hlbvh")
	test.That(t, table, test.ShouldContainSubstring, "Treelets")
}

func boundsOf(prims []scene.Primitive) types.BBox {
	bounds := types.EmptyBBox()
	for _, prim := range prims {
		bounds = bounds.Union(prim.BBox())
	}
	return bounds
}
