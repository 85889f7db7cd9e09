package scene

import (
	"github.com/achilleasa/raycast/types"
)

// Triangle is a single triangle primitive with a flat geometric normal.
type Triangle struct {
	Vertices [3]types.Vec3

	edge1, edge2 types.Vec3
	normal       types.Vec3
	material     *Material
}

// Create new triangle primitive. The normal follows the right-hand rule for
// the supplied vertex order.
func NewTriangle(vertices [3]types.Vec3, material *Material) *Triangle {
	tri := &Triangle{
		Vertices: vertices,
		edge1:    vertices[1].Sub(vertices[0]),
		edge2:    vertices[2].Sub(vertices[0]),
		material: material,
	}
	tri.normal = tri.edge1.Cross(tri.edge2).Normalize()
	return tri
}

func (tri *Triangle) BBox() types.BBox {
	return types.NewBBox(tri.Vertices[0], tri.Vertices[1]).UnionPoint(tri.Vertices[2])
}

// Centroid returns the vertex average, clamped to the triangle bounds so
// rounding never moves it outside them.
func (tri *Triangle) Centroid() types.Vec3 {
	c := tri.Vertices[0].Add(tri.Vertices[1]).Add(tri.Vertices[2]).Mul(1.0 / 3.0)
	bounds := tri.BBox()
	return types.MinVec3(types.MaxVec3(c, bounds.Min), bounds.Max)
}

func (tri *Triangle) Material() *Material {
	return tri.material
}

func (tri *Triangle) Intersect(ray *types.Ray, tMax float32) (Intersection, bool) {
	t, ok := tri.hitDistance(ray, tMax)
	if !ok {
		return Intersection{}, false
	}
	return Intersection{T: t, Point: ray.At(t), Normal: tri.normal}, true
}

func (tri *Triangle) IntersectP(ray *types.Ray, tMax float32) bool {
	_, ok := tri.hitDistance(ray, tMax)
	return ok
}

// IntersectsBBox tests the triangle bounds and the triangle plane against the
// box. It is conservative near the triangle edges.
func (tri *Triangle) IntersectsBBox(box types.BBox) bool {
	if !tri.BBox().Overlaps(box) {
		return false
	}

	// Project the box half-extents onto the plane normal and compare with the
	// distance of the box center from the plane.
	c := box.Center()
	h := box.Diagonal().Mul(0.5)
	n := tri.normal
	r := h[0]*abs32(n[0]) + h[1]*abs32(n[1]) + h[2]*abs32(n[2])
	d := n.Dot(c.Sub(tri.Vertices[0]))
	return abs32(d) <= r+hitEpsilon
}

// Möller-Trumbore ray/triangle test.
func (tri *Triangle) hitDistance(ray *types.Ray, tMax float32) (float32, bool) {
	p := ray.Dir.Cross(tri.edge2)
	det := tri.edge1.Dot(p)
	if abs32(det) < 1e-12 {
		return 0, false
	}
	invDet := 1.0 / det

	s := ray.Origin.Sub(tri.Vertices[0])
	u := s.Dot(p) * invDet
	if u < 0 || u > 1 {
		return 0, false
	}

	q := s.Cross(tri.edge1)
	v := ray.Dir.Dot(q) * invDet
	if v < 0 || u+v > 1 {
		return 0, false
	}

	t := tri.edge2.Dot(q) * invDet
	if t <= hitEpsilon || t >= tMax {
		return 0, false
	}
	return t, true
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
