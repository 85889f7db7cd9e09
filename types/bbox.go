package types

import "math"

// BBox is an axis-aligned bounding box. A box with Min > Max on any axis is
// empty; EmptyBBox returns the canonical empty box which acts as the identity
// element for Union.
type BBox struct {
	Min Vec3
	Max Vec3
}

// EmptyBBox returns a box that contains nothing.
func EmptyBBox() BBox {
	return BBox{
		Min: Vec3{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32},
		Max: Vec3{-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32},
	}
}

// NewBBox returns the smallest box containing both points.
func NewBBox(p0, p1 Vec3) BBox {
	return BBox{Min: MinVec3(p0, p1), Max: MaxVec3(p0, p1)}
}

// IsEmpty returns true if the box contains no points.
func (b BBox) IsEmpty() bool {
	return b.Min[0] > b.Max[0] || b.Min[1] > b.Max[1] || b.Min[2] > b.Max[2]
}

// Union returns the smallest box containing both b and other.
func (b BBox) Union(other BBox) BBox {
	return BBox{Min: MinVec3(b.Min, other.Min), Max: MaxVec3(b.Max, other.Max)}
}

// UnionPoint returns the smallest box containing both b and p.
func (b BBox) UnionPoint(p Vec3) BBox {
	return BBox{Min: MinVec3(b.Min, p), Max: MaxVec3(b.Max, p)}
}

// Diagonal returns the vector from Min to Max.
func (b BBox) Diagonal() Vec3 {
	return b.Max.Sub(b.Min)
}

// SurfaceArea returns the total area of the box faces; 0 for empty boxes.
func (b BBox) SurfaceArea() float32 {
	if b.IsEmpty() {
		return 0
	}
	d := b.Diagonal()
	return 2 * (d[0]*d[1] + d[0]*d[2] + d[1]*d[2])
}

// MaxExtent returns the axis along which the box is widest. Ties resolve to
// the lower axis.
func (b BBox) MaxExtent() Axis {
	d := b.Diagonal()
	switch {
	case d[0] >= d[1] && d[0] >= d[2]:
		return XAxis
	case d[1] >= d[2]:
		return YAxis
	}
	return ZAxis
}

// Center returns the box midpoint.
func (b BBox) Center() Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Offset returns the position of p relative to the box corners, where Min maps
// to 0 and Max maps to 1. Axes with zero extent map to 0.
func (b BBox) Offset(p Vec3) Vec3 {
	o := p.Sub(b.Min)
	for axis := 0; axis < 3; axis++ {
		if b.Max[axis] > b.Min[axis] {
			o[axis] /= b.Max[axis] - b.Min[axis]
		} else {
			o[axis] = 0
		}
	}
	return o
}

// Overlaps returns true if the two boxes share at least one point.
func (b BBox) Overlaps(other BBox) bool {
	return b.Min[0] <= other.Max[0] && b.Max[0] >= other.Min[0] &&
		b.Min[1] <= other.Max[1] && b.Max[1] >= other.Min[1] &&
		b.Min[2] <= other.Max[2] && b.Max[2] >= other.Min[2]
}

// Contains returns true if p lies inside the box or on its boundary.
func (b BBox) Contains(p Vec3) bool {
	return p[0] >= b.Min[0] && p[0] <= b.Max[0] &&
		p[1] >= b.Min[1] && p[1] <= b.Max[1] &&
		p[2] >= b.Min[2] && p[2] <= b.Max[2]
}
