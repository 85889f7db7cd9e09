package types

import "math"

// Directions whose component magnitude falls below this value are treated as
// parallel to the matching slab pair.
const parallelEpsilon = 1e-9

// Slab exit distances are widened by this factor so that rays grazing a box
// edge are not rejected due to rounding.
const slabExitScale = 1 + 4*1.2e-7

// Ray is a half-line with precomputed reciprocal direction and sign flags
// that speed up repeated box tests.
type Ray struct {
	Origin Vec3
	Dir    Vec3

	InvDir   Vec3
	DirIsNeg [3]bool
	parallel [3]bool
}

// NewRay creates a ray. The direction does not need to be normalized; hit
// distances are expressed in multiples of its length.
func NewRay(origin, dir Vec3) Ray {
	r := Ray{Origin: origin, Dir: dir}
	for axis := 0; axis < 3; axis++ {
		r.DirIsNeg[axis] = dir[axis] < 0
		if abs32(dir[axis]) < parallelEpsilon {
			r.parallel[axis] = true
			r.InvDir[axis] = float32(math.Inf(1))
			if r.DirIsNeg[axis] {
				r.InvDir[axis] = float32(math.Inf(-1))
			}
			continue
		}
		r.InvDir[axis] = 1.0 / dir[axis]
	}
	return r
}

// At returns the point at distance t along the ray.
func (r *Ray) At(t float32) Vec3 {
	return r.Origin.Add(r.Dir.Mul(t))
}

// IntersectBBox tests the ray against a box, considering only the [0, tMax)
// interval. It returns the distance at which the ray enters the box (0 if the
// origin is inside it).
func (r *Ray) IntersectBBox(b BBox, tMax float32) (float32, bool) {
	tNear, tFar := float32(0), tMax
	for axis := 0; axis < 3; axis++ {
		if r.parallel[axis] {
			if r.Origin[axis] < b.Min[axis] || r.Origin[axis] > b.Max[axis] {
				return 0, false
			}
			continue
		}

		t0 := (b.Min[axis] - r.Origin[axis]) * r.InvDir[axis]
		t1 := (b.Max[axis] - r.Origin[axis]) * r.InvDir[axis]
		if r.DirIsNeg[axis] {
			t0, t1 = t1, t0
		}
		t1 *= slabExitScale

		if t0 > tNear {
			tNear = t0
		}
		if t1 < tFar {
			tFar = t1
		}
		if tNear > tFar {
			return 0, false
		}
	}

	if tNear >= tMax {
		return 0, false
	}
	return tNear, true
}
