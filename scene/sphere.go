package scene

import (
	"math"

	"github.com/achilleasa/raycast/types"
)

// Sphere is a primitive defined by a center and radius.
type Sphere struct {
	Center types.Vec3
	Radius float32

	material *Material
}

// Create new sphere primitive.
func NewSphere(center types.Vec3, radius float32, material *Material) *Sphere {
	return &Sphere{Center: center, Radius: radius, material: material}
}

func (s *Sphere) BBox() types.BBox {
	r := types.Vec3{s.Radius, s.Radius, s.Radius}
	return types.BBox{Min: s.Center.Sub(r), Max: s.Center.Add(r)}
}

func (s *Sphere) Centroid() types.Vec3 {
	return s.Center
}

func (s *Sphere) Material() *Material {
	return s.material
}

func (s *Sphere) Intersect(ray *types.Ray, tMax float32) (Intersection, bool) {
	t, ok := s.hitDistance(ray, tMax)
	if !ok {
		return Intersection{}, false
	}
	p := ray.At(t)
	return Intersection{
		T:      t,
		Point:  p,
		Normal: p.Sub(s.Center).Mul(1.0 / s.Radius),
	}, true
}

func (s *Sphere) IntersectP(ray *types.Ray, tMax float32) bool {
	_, ok := s.hitDistance(ray, tMax)
	return ok
}

// IntersectsBBox checks the distance between the sphere center and the
// closest point of the box.
func (s *Sphere) IntersectsBBox(box types.BBox) bool {
	var distSq float32
	for axis := 0; axis < 3; axis++ {
		c := s.Center[axis]
		if c < box.Min[axis] {
			d := box.Min[axis] - c
			distSq += d * d
		} else if c > box.Max[axis] {
			d := c - box.Max[axis]
			distSq += d * d
		}
	}
	return distSq <= s.Radius*s.Radius
}

// hitDistance solves the ray/sphere quadratic in float64. The discriminant is
// derived from the distance between the sphere center and the ray line, which
// stays accurate for small spheres far away from the ray origin.
func (s *Sphere) hitDistance(ray *types.Ray, tMax float32) (float32, bool) {
	var oc, dir [3]float64
	for axis := 0; axis < 3; axis++ {
		oc[axis] = float64(ray.Origin[axis]) - float64(s.Center[axis])
		dir[axis] = float64(ray.Dir[axis])
	}
	a := dot64(dir, dir)
	if a == 0 {
		return 0, false
	}
	halfB := dot64(oc, dir)
	r := float64(s.Radius)

	// Center to ray line offset: oc - (oc.d / d.d) d
	var perp [3]float64
	for axis := 0; axis < 3; axis++ {
		perp[axis] = oc[axis] - halfB/a*dir[axis]
	}
	disc := a * (r*r - dot64(perp, perp))
	if disc < 0 {
		return 0, false
	}

	q := -halfB - math.Copysign(math.Sqrt(disc), halfB)
	if q == 0 {
		// Ray origin on the sphere surface, tangent to it.
		return 0, false
	}
	t0, t1 := q/a, (dot64(oc, oc)-r*r)/q
	if t0 > t1 {
		t0, t1 = t1, t0
	}

	t := t0
	if t <= hitEpsilon {
		t = t1
	}
	if t <= hitEpsilon || float32(t) >= tMax {
		return 0, false
	}
	return float32(t), true
}

func dot64(a, b [3]float64) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}
