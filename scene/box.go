package scene

import (
	"github.com/achilleasa/raycast/types"
)

// Box is an axis-aligned box primitive.
type Box struct {
	Bounds types.BBox

	material *Material
}

// Create new box primitive centered at origin with the given full extents.
func NewBox(origin types.Vec3, dims types.Vec3, material *Material) *Box {
	half := dims.Mul(0.5)
	return &Box{
		Bounds:   types.BBox{Min: origin.Sub(half), Max: origin.Add(half)},
		material: material,
	}
}

func (b *Box) BBox() types.BBox {
	return b.Bounds
}

func (b *Box) Centroid() types.Vec3 {
	return b.Bounds.Center()
}

func (b *Box) Material() *Material {
	return b.material
}

func (b *Box) IntersectsBBox(box types.BBox) bool {
	return b.Bounds.Overlaps(box)
}

func (b *Box) IntersectP(ray *types.Ray, tMax float32) bool {
	_, _, ok := b.slabs(ray, tMax)
	return ok
}

// Intersect reports the entry point of the ray, or the exit point if the ray
// starts inside the box. The normal always points away from the box.
func (b *Box) Intersect(ray *types.Ray, tMax float32) (Intersection, bool) {
	t, normal, ok := b.slabs(ray, tMax)
	if !ok {
		return Intersection{}, false
	}
	return Intersection{T: t, Point: ray.At(t), Normal: normal}, true
}

func (b *Box) slabs(ray *types.Ray, tMax float32) (float32, types.Vec3, bool) {
	tNear, tFar := float32(-1e30), float32(1e30)
	var nearAxis, farAxis int
	for axis := 0; axis < 3; axis++ {
		if abs32(ray.Dir[axis]) < 1e-9 {
			if ray.Origin[axis] < b.Bounds.Min[axis] || ray.Origin[axis] > b.Bounds.Max[axis] {
				return 0, types.Vec3{}, false
			}
			continue
		}

		t0 := (b.Bounds.Min[axis] - ray.Origin[axis]) * ray.InvDir[axis]
		t1 := (b.Bounds.Max[axis] - ray.Origin[axis]) * ray.InvDir[axis]
		if ray.DirIsNeg[axis] {
			t0, t1 = t1, t0
		}
		if t0 > tNear {
			tNear, nearAxis = t0, axis
		}
		if t1 < tFar {
			tFar, farAxis = t1, axis
		}
	}
	if tNear > tFar {
		return 0, types.Vec3{}, false
	}

	var normal types.Vec3
	t := tNear
	if t > hitEpsilon {
		normal[nearAxis] = -1
		if ray.DirIsNeg[nearAxis] {
			normal[nearAxis] = 1
		}
	} else {
		t = tFar
		normal[farAxis] = 1
		if ray.DirIsNeg[farAxis] {
			normal[farAxis] = -1
		}
	}

	if t <= hitEpsilon || t >= tMax {
		return 0, types.Vec3{}, false
	}
	return t, normal, true
}
