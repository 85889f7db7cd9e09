package bvh

import (
	"github.com/achilleasa/raycast/scene"
	"github.com/achilleasa/raycast/types"
)

// primitiveInfo caches the bounds of a build item. Items are primitives for
// the top-down and treelet builders and treelet roots for the upper tree of
// the HLBVH builder.
type primitiveInfo struct {
	index    int
	bounds   types.BBox
	centroid types.Vec3
}

func collectInfo(prims []scene.Primitive) []primitiveInfo {
	info := make([]primitiveInfo, len(prims))
	for i, prim := range prims {
		info[i] = primitiveInfo{
			index:    i,
			bounds:   prim.BBox(),
			centroid: prim.Centroid(),
		}
	}
	return info
}

// rangeBounds returns the union of the item bounds and the bounds of the item
// centroids.
func rangeBounds(info []primitiveInfo) (bounds, centroidBounds types.BBox) {
	bounds, centroidBounds = types.EmptyBBox(), types.EmptyBBox()
	for i := range info {
		bounds = bounds.Union(info[i].bounds)
		centroidBounds = centroidBounds.UnionPoint(info[i].centroid)
	}
	return bounds, centroidBounds
}
