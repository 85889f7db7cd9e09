package scene

import "github.com/achilleasa/raycast/types"

// Intersections closer than this distance are ignored so that rays spawned
// from a surface do not re-hit it.
const hitEpsilon = 1e-5

// Intersection describes where a ray hit a primitive.
type Intersection struct {
	// Distance along the ray, in multiples of the ray direction length.
	T float32

	Point  types.Vec3
	Normal types.Vec3
}

// Primitive is the capability set a shape must provide in order to be stored
// in a BVH. Implementations must be safe for concurrent reads.
type Primitive interface {
	// World-space bounding box.
	BBox() types.BBox

	// Point used for partitioning primitives during BVH construction.
	Centroid() types.Vec3

	// Find the closest intersection in the (0, tMax) interval.
	Intersect(ray *types.Ray, tMax float32) (Intersection, bool)

	// Check for any intersection in the (0, tMax) interval.
	IntersectP(ray *types.Ray, tMax float32) bool

	// Check whether the primitive may overlap the given box. Implementations
	// are allowed to be conservative.
	IntersectsBBox(box types.BBox) bool

	// The material assigned to the primitive; may be nil.
	Material() *Material
}
